package models

import "time"

// AssetType classifies what kind of instrument a holding represents.
type AssetType string

const (
	AssetStock      AssetType = "stock"
	AssetCrypto     AssetType = "crypto"
	AssetETF        AssetType = "etf"
	AssetMutualFund AssetType = "mutual_fund"
	AssetBond       AssetType = "bond"
	AssetCash       AssetType = "cash"
)

// Platform identifies where a holding or transaction originated.
type Platform string

const (
	PlatformGemini   Platform = "gemini"
	PlatformFidelity Platform = "fidelity"
	PlatformManual   Platform = "manual"
)

type User struct {
	ID             int64     `json:"id"         gorm:"primaryKey"`
	Email          string    `json:"email"      gorm:"uniqueIndex"`
	HashedPassword string    `json:"-"`
	FullName       string    `json:"full_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Portfolio struct {
	ID          int64     `json:"id"          gorm:"primaryKey"`
	UserID      int64     `json:"user_id"     gorm:"index"`
	Name        string    `json:"name"        gorm:"index"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Holdings []Holding `json:"holdings,omitempty" gorm:"foreignKey:PortfolioID"`
}

// Holding is the current position in one asset within one portfolio.
// The sync engine keeps at most one row per (portfolio_id, asset_symbol);
// the schema does not enforce that, the lookup-before-upsert does.
type Holding struct {
	ID           int64     `json:"id"            gorm:"primaryKey"`
	PortfolioID  int64     `json:"portfolio_id"  gorm:"index:idx_portfolio_symbol"`
	AssetSymbol  string    `json:"asset_symbol"  gorm:"index:idx_portfolio_symbol"`
	AssetType    AssetType `json:"asset_type"`
	Quantity     float64   `json:"quantity"`
	AveragePrice float64   `json:"average_price"`
	Platform     Platform  `json:"platform"`
	LastUpdated  time.Time `json:"last_updated"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Transaction is an append-only buy/sell event; sync never rewrites these.
type Transaction struct {
	ID              int64     `json:"id"               gorm:"primaryKey"`
	HoldingID       int64     `json:"holding_id"       gorm:"index"`
	TransactionType string    `json:"transaction_type"` // buy or sell
	Quantity        float64   `json:"quantity"`
	Price           float64   `json:"price"`
	Timestamp       time.Time `json:"timestamp"        gorm:"index"`
	Platform        Platform  `json:"platform"`
	CreatedAt       time.Time `json:"created_at"`
}

type PlatformCredential struct {
	ID           int64      `json:"id"       gorm:"primaryKey"`
	UserID       int64      `json:"user_id"  gorm:"index:idx_user_platform"`
	Platform     Platform   `json:"platform" gorm:"index:idx_user_platform"`
	APIKey       string     `json:"api_key"`
	APISecret    string     `json:"-"`
	AccessToken  *string    `json:"-"`
	RefreshToken *string    `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (Portfolio) TableName() string {
	return "portfolios"
}

func (Holding) TableName() string {
	return "holdings"
}

func (Transaction) TableName() string {
	return "transactions"
}

func (PlatformCredential) TableName() string {
	return "platform_credentials"
}
