package state

import "social-wallet-client-go/internal/models"

// FilterHistory returns the transactions matching filters, in order. It
// never modifies history. The "withdrawal" category also matches every
// payout, whatever its category.
func FilterHistory(history []models.Transaction, filters models.TransactionFilters) []models.Transaction {
	filtered := make([]models.Transaction, 0, len(history))
	for _, tx := range history {
		if matchesFilters(tx, filters) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

func matchesFilters(tx models.Transaction, f models.TransactionFilters) bool {
	if active(f.Type) && tx.Type != f.Type {
		return false
	}
	if active(f.TransactionType) {
		if f.TransactionType == models.TransactionWithdrawal {
			if tx.TransactionType != models.TransactionWithdrawal && tx.Type != models.TypePayout {
				return false
			}
		} else if tx.TransactionType != f.TransactionType {
			return false
		}
	}
	if active(f.Status) && tx.Status != f.Status {
		return false
	}
	return true
}

func active(filter string) bool {
	return filter != "" && filter != models.FilterAll
}
