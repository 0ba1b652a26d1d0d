package domain

import "time"

// TransactionKind classifies a wallet movement.
type TransactionKind string

// Transaction kinds. Funding credits a reader wallet, a purchase debits the
// reader and credits the writer as an earning.
const (
	TransactionFund     TransactionKind = "fund"
	TransactionPurchase TransactionKind = "purchase"
	TransactionEarning  TransactionKind = "earning"
)

// Wallet is a user's balance in kobo. Balances never go negative; a
// purchase that would overdraw fails with an insufficient funds error.
type Wallet struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is one signed movement on a wallet. Amount is positive for
// credits and negative for debits. Reference carries the external payment
// reference for funding transactions.
type Transaction struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Kind      TransactionKind `json:"kind"`
	Amount    int64           `json:"amount"`
	StoryID   string          `json:"story_id,omitempty"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
