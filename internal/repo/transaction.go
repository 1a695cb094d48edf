package repo

import "github.com/Eddie1114/portfolio-tracker/internal/models"

func (r *Repository) CreateTransaction(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

// GetTransactionsByPortfolio collects the transactions of every holding in
// the portfolio, newest first.
func (r *Repository) GetTransactionsByPortfolio(portfolioID int64) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Joins("JOIN holdings ON holdings.id = transactions.holding_id").
		Where("holdings.portfolio_id = ?", portfolioID).
		Order("transactions.timestamp DESC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}
