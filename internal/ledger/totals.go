package ledger

import "trade-ledger-service/internal/models"

// CalculateTotals sums gains, spend and net across the given transactions.
// All arithmetic is in integer cents.
func CalculateTotals(txs []models.StoredTransaction) models.Totals {
	var totals models.Totals
	for i := range txs {
		totals.Add(&txs[i].Transaction)
	}
	return totals
}

// CalculateTotalsFor sums only the transactions whose ID is in the
// selection. An empty selection yields zero totals.
func CalculateTotalsFor(txs []models.StoredTransaction, selected map[string]bool) models.Totals {
	var totals models.Totals
	for i := range txs {
		if selected[txs[i].ID] {
			totals.Add(&txs[i].Transaction)
		}
	}
	return totals
}

// TotalsByGame groups transactions by game title and totals each group.
func TotalsByGame(txs []models.StoredTransaction) map[string]models.Totals {
	byGame := make(map[string]models.Totals)
	for i := range txs {
		totals := byGame[txs[i].Game]
		totals.Add(&txs[i].Transaction)
		byGame[txs[i].Game] = totals
	}
	return byGame
}
