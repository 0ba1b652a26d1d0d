package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/writha/writha-server/internal/domain"
	domainerrors "github.com/writha/writha-server/internal/errors"
	"github.com/writha/writha-server/internal/id"
	"github.com/writha/writha-server/internal/store"
)

// WalletService manages wallet funding and story purchases. All amounts are
// in kobo.
type WalletService struct {
	store         store.Store
	notifications *NotificationService
	logger        *slog.Logger
}

// NewWalletService creates a new wallet service.
func NewWalletService(st store.Store, notifications *NotificationService, logger *slog.Logger) *WalletService {
	return &WalletService{store: st, notifications: notifications, logger: logger}
}

// Balance returns the user's wallet, creating it on first use.
func (s *WalletService) Balance(ctx context.Context, userID string) (*domain.Wallet, error) {
	wallet, err := s.store.GetWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return wallet, nil
}

// FundRequest tops up a wallet.
type FundRequest struct {
	// Amount in kobo.
	Amount int64 `json:"amount" validate:"required,gt=0"`
	// Reference is the external payment processor reference. Generated
	// when the processor doesn't supply one.
	Reference string `json:"reference" validate:"max=100"`
}

// Fund credits the user's wallet and records the funding transaction.
func (s *WalletService) Fund(ctx context.Context, userID string, req FundRequest) (*domain.Wallet, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	txnID, err := id.Generate("txn")
	if err != nil {
		return nil, fmt.Errorf("generate transaction ID: %w", err)
	}

	txn := &domain.Transaction{
		ID:        txnID,
		UserID:    userID,
		Kind:      domain.TransactionFund,
		Amount:    req.Amount,
		Reference: reference,
		CreatedAt: time.Now(),
	}

	wallet, err := s.store.FundWallet(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("fund wallet: %w", err)
	}

	s.logger.Info("Wallet funded",
		"user_id", userID,
		"amount", req.Amount,
		"reference", reference,
	)

	s.notifications.notifyBestEffort(ctx, userID, domain.NotificationPayment,
		"Wallet funded",
		fmt.Sprintf("Your wallet was credited with %s.", formatKobo(req.Amount)),
		txnID,
	)

	return wallet, nil
}

// PurchaseStory buys a paid story: the reader's wallet is debited, the
// writer's wallet is credited, and the story is granted to the reader's
// library, all in one transaction.
func (s *WalletService) PurchaseStory(ctx context.Context, userID, storyID string) (*domain.Wallet, error) {
	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("story not found")
		}
		return nil, fmt.Errorf("lookup story: %w", err)
	}
	if story.IsFree {
		return nil, domainerrors.Validation("this story is free, add it to your library instead")
	}
	if story.WriterID == userID {
		return nil, domainerrors.Forbidden("you can't buy your own story")
	}

	owned, err := s.store.InLibrary(ctx, userID, storyID)
	if err != nil {
		return nil, fmt.Errorf("check library: %w", err)
	}
	if owned {
		return nil, domainerrors.AlreadyExists("you already own this story")
	}

	debitID, err := id.Generate("txn")
	if err != nil {
		return nil, fmt.Errorf("generate transaction ID: %w", err)
	}
	creditID, err := id.Generate("txn")
	if err != nil {
		return nil, fmt.Errorf("generate transaction ID: %w", err)
	}

	now := time.Now()
	debit := &domain.Transaction{
		ID:        debitID,
		UserID:    userID,
		Kind:      domain.TransactionPurchase,
		Amount:    -story.Price,
		StoryID:   storyID,
		CreatedAt: now,
	}
	credit := &domain.Transaction{
		ID:        creditID,
		UserID:    story.WriterID,
		Kind:      domain.TransactionEarning,
		Amount:    story.Price,
		StoryID:   storyID,
		CreatedAt: now,
	}

	wallet, err := s.store.Purchase(ctx, debit, credit)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) {
			return nil, domainerrors.InsufficientFunds("not enough balance, fund your wallet first")
		}
		return nil, fmt.Errorf("purchase: %w", err)
	}

	s.logger.Info("Story purchased",
		"story_id", storyID,
		"reader_id", userID,
		"writer_id", story.WriterID,
		"price", story.Price,
	)

	s.notifications.notifyBestEffort(ctx, userID, domain.NotificationPayment,
		"Purchase complete",
		fmt.Sprintf("%s is now in your library.", story.Title),
		storyID,
	)
	s.notifications.notifyBestEffort(ctx, story.WriterID, domain.NotificationPayment,
		"You made a sale",
		fmt.Sprintf("%s sold for %s.", story.Title, formatKobo(story.Price)),
		storyID,
	)

	return wallet, nil
}

// Transactions returns the user's newest wallet transactions.
func (s *WalletService) Transactions(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	txns, err := s.store.ListTransactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

// formatKobo renders a kobo amount as naira for notification copy.
func formatKobo(amount int64) string {
	return fmt.Sprintf("₦%d.%02d", amount/100, amount%100)
}
