package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store"
)

func TestGetWallet_CreatesOnFirstUse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeTestUser("user-1", "a@example.com", "alice")); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w, err := s.GetWallet(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if w.Balance != 0 {
		t.Errorf("balance: got %d, want 0", w.Balance)
	}
}

func TestFundWallet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeTestUser("user-1", "a@example.com", "alice")); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	w, err := s.FundWallet(ctx, &domain.Transaction{
		ID:        "tx-1",
		UserID:    "user-1",
		Kind:      domain.TransactionFund,
		Amount:    50000,
		Reference: "ref-abc",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("FundWallet: %v", err)
	}
	if w.Balance != 50000 {
		t.Errorf("balance: got %d, want 50000", w.Balance)
	}

	txs, err := s.ListTransactions(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Reference != "ref-abc" {
		t.Errorf("unexpected transactions: %+v", txs)
	}
}

func TestFundWallet_RejectsNonPositive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.FundWallet(ctx, &domain.Transaction{ID: "tx-1", UserID: "user-1", Amount: -5})
	if err == nil {
		t.Fatal("expected error for negative funding")
	}
}

func TestPurchase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUserAndStory(t, s, "writer-1", "story-1")
	if err := s.CreateUser(ctx, makeTestUser("reader-1", "r@example.com", "reader")); err != nil {
		t.Fatalf("seed reader: %v", err)
	}
	if _, err := s.FundWallet(ctx, &domain.Transaction{
		ID: "tx-fund", UserID: "reader-1", Kind: domain.TransactionFund,
		Amount: 10000, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("FundWallet: %v", err)
	}

	now := time.Now()
	w, err := s.Purchase(ctx,
		&domain.Transaction{ID: "tx-debit", UserID: "reader-1", Kind: domain.TransactionPurchase, Amount: -4000, StoryID: "story-1", CreatedAt: now},
		&domain.Transaction{ID: "tx-credit", UserID: "writer-1", Kind: domain.TransactionEarning, Amount: 4000, StoryID: "story-1", CreatedAt: now},
	)
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if w.Balance != 6000 {
		t.Errorf("reader balance: got %d, want 6000", w.Balance)
	}

	writerWallet, err := s.GetWallet(ctx, "writer-1")
	if err != nil {
		t.Fatalf("GetWallet writer: %v", err)
	}
	if writerWallet.Balance != 4000 {
		t.Errorf("writer balance: got %d, want 4000", writerWallet.Balance)
	}

	// Purchase grants the story to the reader's library.
	in, err := s.InLibrary(ctx, "reader-1", "story-1")
	if err != nil {
		t.Fatalf("InLibrary: %v", err)
	}
	if !in {
		t.Error("expected story in reader library after purchase")
	}
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedUserAndStory(t, s, "writer-1", "story-1")
	if err := s.CreateUser(ctx, makeTestUser("reader-1", "r@example.com", "reader")); err != nil {
		t.Fatalf("seed reader: %v", err)
	}

	now := time.Now()
	_, err := s.Purchase(ctx,
		&domain.Transaction{ID: "tx-debit", UserID: "reader-1", Kind: domain.TransactionPurchase, Amount: -4000, StoryID: "story-1", CreatedAt: now},
		&domain.Transaction{ID: "tx-credit", UserID: "writer-1", Kind: domain.TransactionEarning, Amount: 4000, StoryID: "story-1", CreatedAt: now},
	)
	if !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Nothing moved, nothing granted.
	in, _ := s.InLibrary(ctx, "reader-1", "story-1")
	if in {
		t.Error("expected no library grant on failed purchase")
	}
	txs, _ := s.ListTransactions(ctx, "reader-1", 10)
	if len(txs) != 0 {
		t.Errorf("expected no transactions, got %d", len(txs))
	}
}
