// Package models defines the canonical transaction shape produced by the
// import pipeline and the derived types stored in the ledger.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TransactionType represents the kind of marketplace transaction
type TransactionType string

const (
	// TypePurchase represents an item bought on the marketplace
	TypePurchase TransactionType = "purchase"
	// TypeSale represents an item sold on the marketplace
	TypeSale TransactionType = "sale"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TypePurchase || t == TypeSale
}

// ParseTransactionType parses and validates a transaction type from string,
// normalizing case and surrounding whitespace.
func ParseTransactionType(s string) (TransactionType, error) {
	normalized := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !normalized.IsValid() {
		return "", fmt.Errorf("invalid transaction type '%s': must be purchase or sale", s)
	}
	return normalized, nil
}

// Transaction is the canonical record emitted by the import pipeline.
// Every field is always present and valid: the pipeline either produces a
// complete Transaction or discards the row entirely.
type Transaction struct {
	Item       string          `json:"item"`
	Game       string          `json:"game"`
	Date       time.Time       `json:"date"`
	PriceCents int64           `json:"price_cents"`
	Type       TransactionType `json:"type"`
}

// NewTransaction creates a new Transaction instance
func NewTransaction(item, game string, date time.Time, priceCents int64, txType TransactionType) *Transaction {
	return &Transaction{
		Item:       strings.TrimSpace(item),
		Game:       strings.TrimSpace(game),
		Date:       date,
		PriceCents: priceCents,
		Type:       txType,
	}
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Item) == "" {
		return fmt.Errorf("item name cannot be empty")
	}

	if strings.TrimSpace(t.Game) == "" {
		return fmt.Errorf("game name cannot be empty")
	}

	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}

	if t.PriceCents < 0 {
		return fmt.Errorf("price cannot be negative: %d", t.PriceCents)
	}

	if !t.Type.IsValid() {
		return fmt.Errorf("invalid transaction type: %s", t.Type)
	}

	return nil
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Item: %s, Game: %s, Date: %s, Price: %d, Type: %s}",
		t.Item, t.Game, t.Date.Format(time.RFC3339), t.PriceCents, t.Type)
}

// MarshalJSON implements custom JSON marshaling, serializing the date as an
// ISO instant.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		Date string `json:"date"`
		*Alias
	}{
		Date:  t.Date.UTC().Format(time.RFC3339),
		Alias: (*Alias)(t),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Transaction
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		Date string `json:"date"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	t.Date, err = time.Parse(time.RFC3339, aux.Date)
	if err != nil {
		return fmt.Errorf("invalid transaction date format: %w", err)
	}

	return nil
}

// Equals compares two Transaction instances for equality
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}

	return t.Item == other.Item &&
		t.Game == other.Game &&
		t.Date.Equal(other.Date) &&
		t.PriceCents == other.PriceCents &&
		t.Type == other.Type
}

// IsSale returns true if the transaction is a sale
func (t *Transaction) IsSale() bool {
	return t.Type == TypeSale
}

// IsPurchase returns true if the transaction is a purchase
func (t *Transaction) IsPurchase() bool {
	return t.Type == TypePurchase
}

// StoredTransaction is a Transaction after the persistence layer has
// assigned its identifier and bookkeeping timestamps. The pipeline never
// constructs one of these.
type StoredTransaction struct {
	ID string `json:"id"`
	Transaction
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// storedTransactionJSON is the flat wire shape. Without it the embedded
// Transaction's marshaler would be promoted and the storage fields lost.
type storedTransactionJSON struct {
	ID         string          `json:"id"`
	Item       string          `json:"item"`
	Game       string          `json:"game"`
	Date       string          `json:"date"`
	PriceCents int64           `json:"price_cents"`
	Type       TransactionType `json:"type"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// MarshalJSON implements custom JSON marshaling for StoredTransaction
func (s *StoredTransaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(&storedTransactionJSON{
		ID:         s.ID,
		Item:       s.Item,
		Game:       s.Game,
		Date:       s.Date.UTC().Format(time.RFC3339),
		PriceCents: s.PriceCents,
		Type:       s.Type,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for StoredTransaction
func (s *StoredTransaction) UnmarshalJSON(data []byte) error {
	var aux storedTransactionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	date, err := time.Parse(time.RFC3339, aux.Date)
	if err != nil {
		return fmt.Errorf("invalid transaction date format: %w", err)
	}

	s.ID = aux.ID
	s.Item = aux.Item
	s.Game = aux.Game
	s.Date = date
	s.PriceCents = aux.PriceCents
	s.Type = aux.Type
	s.CreatedAt = aux.CreatedAt
	s.UpdatedAt = aux.UpdatedAt
	return nil
}

// Totals summarizes a set of transactions in integer cents
type Totals struct {
	GainsCents int64 `json:"gains_cents"`
	SpentCents int64 `json:"spent_cents"`
	NetCents   int64 `json:"net_cents"`
}

// Add accumulates one transaction into the totals: sales count as gains,
// purchases as spend.
func (tt *Totals) Add(t *Transaction) {
	if t.IsSale() {
		tt.GainsCents += t.PriceCents
	} else {
		tt.SpentCents += t.PriceCents
	}
	tt.NetCents = tt.GainsCents - tt.SpentCents
}
