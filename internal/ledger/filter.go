// Package ledger provides queries over stored transactions: filtering,
// per-game grouping and integer-cent totals.
package ledger

import (
	"sort"
	"strings"
	"time"

	"trade-ledger-service/internal/models"
)

// Filter selects a subset of stored transactions. Zero values mean "no
// constraint": an empty filter matches everything.
type Filter struct {
	// Search matches case-insensitively against the item name.
	Search string

	// Game restricts to one game title, compared case-insensitively.
	Game string

	// Type restricts to purchases or sales.
	Type models.TransactionType

	// MinPriceCents and MaxPriceCents bound the price range inclusively.
	// Nil means unbounded on that side.
	MinPriceCents *int64
	MaxPriceCents *int64

	// From and To bound the transaction date inclusively. Zero times are
	// unbounded.
	From time.Time
	To   time.Time
}

// IsEmpty reports whether the filter has no constraints at all.
func (f Filter) IsEmpty() bool {
	return f.Search == "" && f.Game == "" && f.Type == "" &&
		f.MinPriceCents == nil && f.MaxPriceCents == nil &&
		f.From.IsZero() && f.To.IsZero()
}

// Matches reports whether one transaction satisfies every constraint.
func (f Filter) Matches(tx models.StoredTransaction) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(tx.Item), strings.ToLower(f.Search)) {
		return false
	}
	if f.Game != "" && !strings.EqualFold(tx.Game, f.Game) {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.MinPriceCents != nil && tx.PriceCents < *f.MinPriceCents {
		return false
	}
	if f.MaxPriceCents != nil && tx.PriceCents > *f.MaxPriceCents {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	return true
}

// Apply returns the transactions matching the filter, preserving input
// order. The result is always a fresh slice.
func (f Filter) Apply(txs []models.StoredTransaction) []models.StoredTransaction {
	matched := make([]models.StoredTransaction, 0, len(txs))
	for _, tx := range txs {
		if f.Matches(tx) {
			matched = append(matched, tx)
		}
	}
	return matched
}

// UniqueGames returns the distinct game titles present, sorted
// alphabetically.
func UniqueGames(txs []models.StoredTransaction) []string {
	seen := make(map[string]struct{})
	games := make([]string, 0)
	for _, tx := range txs {
		if _, ok := seen[tx.Game]; !ok {
			seen[tx.Game] = struct{}{}
			games = append(games, tx.Game)
		}
	}
	sort.Strings(games)
	return games
}

// PriceBounds returns the lowest and highest price in cents across the
// given transactions. An empty input yields (0, 0).
func PriceBounds(txs []models.StoredTransaction) (min, max int64) {
	if len(txs) == 0 {
		return 0, 0
	}
	min, max = txs[0].PriceCents, txs[0].PriceCents
	for _, tx := range txs[1:] {
		if tx.PriceCents < min {
			min = tx.PriceCents
		}
		if tx.PriceCents > max {
			max = tx.PriceCents
		}
	}
	return min, max
}
