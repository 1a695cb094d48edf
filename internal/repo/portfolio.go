package repo

import "github.com/Eddie1114/portfolio-tracker/internal/models"

func (r *Repository) CreatePortfolio(portfolio *models.Portfolio) error {
	return r.db.Create(portfolio).Error
}

func (r *Repository) GetPortfoliosByUser(userID int64) ([]models.Portfolio, error) {
	var portfolios []models.Portfolio
	if err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&portfolios).Error; err != nil {
		return nil, err
	}
	return portfolios, nil
}

// GetUserPortfolio looks a portfolio up scoped to its owner. A portfolio
// belonging to someone else is indistinguishable from a missing one.
func (r *Repository) GetUserPortfolio(userID, portfolioID int64) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := r.db.Where("id = ? AND user_id = ?", portfolioID, userID).First(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (r *Repository) GetUserPortfolioWithHoldings(userID, portfolioID int64) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := r.db.Preload("Holdings").
		Where("id = ? AND user_id = ?", portfolioID, userID).
		First(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (r *Repository) GetPortfolioByName(userID int64, name string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	if err := r.db.Where("user_id = ? AND name = ?", userID, name).First(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

func (r *Repository) UpdatePortfolio(portfolio *models.Portfolio) error {
	return r.db.Save(portfolio).Error
}

// DeletePortfolio removes the portfolio and its holdings. The lookup is
// owner-scoped so a foreign portfolio id deletes nothing.
func (r *Repository) DeletePortfolio(userID, portfolioID int64) error {
	return r.WithTx(func(tx *Repository) error {
		portfolio, err := tx.GetUserPortfolio(userID, portfolioID)
		if err != nil {
			return err
		}
		if err := tx.db.Where("portfolio_id = ?", portfolio.ID).Delete(&models.Holding{}).Error; err != nil {
			return err
		}
		return tx.db.Delete(portfolio).Error
	})
}
