package repo

import "github.com/Eddie1114/portfolio-tracker/internal/models"

func (r *Repository) CreateHolding(holding *models.Holding) error {
	return r.db.Create(holding).Error
}

func (r *Repository) UpdateHolding(holding *models.Holding) error {
	return r.db.Save(holding).Error
}

// GetHoldingBySymbol is the sync upsert key lookup: one holding per
// (portfolio_id, asset_symbol).
func (r *Repository) GetHoldingBySymbol(portfolioID int64, symbol string) (*models.Holding, error) {
	var holding models.Holding
	if err := r.db.Where("portfolio_id = ? AND asset_symbol = ?", portfolioID, symbol).
		First(&holding).Error; err != nil {
		return nil, err
	}
	return &holding, nil
}

func (r *Repository) GetHoldingsByPortfolio(portfolioID int64) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := r.db.Where("portfolio_id = ?", portfolioID).Order("asset_symbol").Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

// GetUserHolding resolves a holding scoped to its owning user via the
// portfolio row.
func (r *Repository) GetUserHolding(userID, holdingID int64) (*models.Holding, error) {
	var holding models.Holding
	if err := r.db.Joins("JOIN portfolios ON portfolios.id = holdings.portfolio_id").
		Where("holdings.id = ? AND portfolios.user_id = ?", holdingID, userID).
		First(&holding).Error; err != nil {
		return nil, err
	}
	return &holding, nil
}

// DeleteHoldingsExcept removes every holding in the portfolio whose symbol
// is not in keep. Used by the optional prune reconciliation strategy.
func (r *Repository) DeleteHoldingsExcept(portfolioID int64, keep []string) error {
	query := r.db.Where("portfolio_id = ?", portfolioID)
	if len(keep) > 0 {
		query = query.Where("asset_symbol NOT IN ?", keep)
	}
	return query.Delete(&models.Holding{}).Error
}

func (r *Repository) DeleteHolding(holdingID int64) error {
	return r.db.Delete(&models.Holding{}, holdingID).Error
}

func (r *Repository) CountHoldings(portfolioID int64) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Holding{}).Where("portfolio_id = ?", portfolioID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
