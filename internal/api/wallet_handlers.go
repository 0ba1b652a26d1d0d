package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/service"
)

func (s *Server) registerWalletRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getWallet",
		Method:      http.MethodGet,
		Path:        "/api/v1/wallet",
		Summary:     "Wallet balance",
		Description: "Returns the user's wallet, creating it on first use. Amounts are in kobo.",
		Tags:        []string{"Wallet"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetWallet)

	huma.Register(s.api, huma.Operation{
		OperationID: "fundWallet",
		Method:      http.MethodPost,
		Path:        "/api/v1/wallet/fund",
		Summary:     "Fund wallet",
		Description: "Credits the wallet with an external payment. Amounts are in kobo.",
		Tags:        []string{"Wallet"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFundWallet)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTransactions",
		Method:      http.MethodGet,
		Path:        "/api/v1/wallet/transactions",
		Summary:     "List transactions",
		Description: "Returns the user's newest wallet transactions",
		Tags:        []string{"Wallet"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTransactions)

	huma.Register(s.api, huma.Operation{
		OperationID: "purchaseStory",
		Method:      http.MethodPost,
		Path:        "/api/v1/stories/{id}/purchase",
		Summary:     "Purchase story",
		Description: "Buys a paid story: debits the reader, credits the writer, and grants the story to the library in one transaction",
		Tags:        []string{"Wallet"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePurchaseStory)
}

// WalletOutput wraps a wallet for Huma.
type WalletOutput struct {
	Body domain.Wallet
}

// FundWalletInput tops up a wallet.
type FundWalletInput struct {
	Body struct {
		Amount    int64  `json:"amount" validate:"required,gt=0" doc:"Amount in kobo"`
		Reference string `json:"reference,omitempty" validate:"max=100" doc:"External payment processor reference"`
	}
}

// ListTransactionsInput pages wallet transactions.
type ListTransactionsInput struct {
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 50)"`
}

// TransactionsOutput wraps a transaction list for Huma.
type TransactionsOutput struct {
	Body []*domain.Transaction
}

func (s *Server) handleGetWallet(ctx context.Context, _ *struct{}) (*WalletOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	wallet, err := s.services.Wallet.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &WalletOutput{Body: *wallet}, nil
}

func (s *Server) handleFundWallet(ctx context.Context, input *FundWalletInput) (*WalletOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	wallet, err := s.services.Wallet.Fund(ctx, userID, service.FundRequest{
		Amount:    input.Body.Amount,
		Reference: input.Body.Reference,
	})
	if err != nil {
		return nil, err
	}
	return &WalletOutput{Body: *wallet}, nil
}

func (s *Server) handleListTransactions(ctx context.Context, input *ListTransactionsInput) (*TransactionsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	txns, err := s.services.Wallet.Transactions(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}
	return &TransactionsOutput{Body: txns}, nil
}

func (s *Server) handlePurchaseStory(ctx context.Context, input *StoryIDInput) (*WalletOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	wallet, err := s.services.Wallet.PurchaseStory(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &WalletOutput{Body: *wallet}, nil
}
