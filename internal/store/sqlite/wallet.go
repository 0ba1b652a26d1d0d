package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/writha/writha-server/internal/domain"
	"github.com/writha/writha-server/internal/store"
)

// GetWallet returns the user's wallet, creating an empty one on first use.
func (s *Store) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	w, err := s.getWallet(ctx, s.db, userID)
	if errors.Is(err, store.ErrNotFound) {
		now := time.Now()
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO wallets (user_id, balance, updated_at) VALUES (?, 0, ?)
			 ON CONFLICT (user_id) DO NOTHING`,
			userID, formatTime(now))
		if err != nil {
			return nil, err
		}
		return s.getWallet(ctx, s.db, userID)
	}
	return w, err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) getWallet(ctx context.Context, q querier, userID string) (*domain.Wallet, error) {
	var (
		w         domain.Wallet
		updatedAt string
	)
	err := q.QueryRowContext(ctx,
		`SELECT user_id, balance, updated_at FROM wallets WHERE user_id = ?`,
		userID).Scan(&w.UserID, &w.Balance, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) applyMovement(ctx context.Context, q querier, tx *domain.Transaction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id)
		DO UPDATE SET balance = balance + excluded.balance, updated_at = excluded.updated_at`,
		tx.UserID, tx.Amount, formatTime(tx.CreatedAt))
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO wallet_transactions (id, user_id, kind, amount, story_id, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID,
		tx.UserID,
		string(tx.Kind),
		tx.Amount,
		nullString(tx.StoryID),
		nullString(tx.Reference),
		formatTime(tx.CreatedAt),
	)
	return err
}

// FundWallet credits the user's wallet and records the funding transaction.
// Returns the updated wallet.
func (s *Store) FundWallet(ctx context.Context, tx *domain.Transaction) (*domain.Wallet, error) {
	if tx.Amount <= 0 {
		return nil, store.ErrInvalidInput.WithMessage("funding amount must be positive")
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback()

	if err := s.applyMovement(ctx, dbTx, tx); err != nil {
		return nil, err
	}
	w, err := s.getWallet(ctx, dbTx, tx.UserID)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(); err != nil {
		return nil, err
	}
	return w, nil
}

// Purchase runs a story purchase atomically: the reader debit, the writer
// earning, both transaction rows, and the library grant. Fails with
// store.ErrInsufficientFunds when the reader's balance cannot cover the
// debit, leaving everything untouched.
func (s *Store) Purchase(ctx context.Context, debit, credit *domain.Transaction) (*domain.Wallet, error) {
	if debit.Amount >= 0 {
		return nil, store.ErrInvalidInput.WithMessage("purchase debit must be negative")
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback()

	wallet, err := s.getWallet(ctx, dbTx, debit.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, store.ErrInsufficientFunds
	}
	if err != nil {
		return nil, err
	}
	if wallet.Balance+debit.Amount < 0 {
		return nil, store.ErrInsufficientFunds
	}

	if err := s.applyMovement(ctx, dbTx, debit); err != nil {
		return nil, err
	}
	if err := s.applyMovement(ctx, dbTx, credit); err != nil {
		return nil, err
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO library (user_id, story_id, added_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, story_id) DO NOTHING`,
		debit.UserID, debit.StoryID, formatTime(debit.CreatedAt))
	if err != nil {
		return nil, err
	}

	wallet, err = s.getWallet(ctx, dbTx, debit.UserID)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(); err != nil {
		return nil, err
	}
	return wallet, nil
}

// ListTransactions returns up to limit wallet transactions for the user,
// newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, amount, story_id, reference, created_at
		FROM wallet_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		var (
			tx        domain.Transaction
			kind      string
			storyID   sql.NullString
			reference sql.NullString
			createdAt string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &kind, &tx.Amount, &storyID, &reference, &createdAt); err != nil {
			return nil, err
		}
		tx.Kind = domain.TransactionKind(kind)
		tx.StoryID = storyID.String
		tx.Reference = reference.String
		if tx.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		txs = append(txs, &tx)
	}
	return txs, rows.Err()
}
