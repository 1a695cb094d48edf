package repo

import (
	"errors"

	"github.com/Eddie1114/portfolio-tracker/internal/models"

	"gorm.io/gorm"
)

var (
	ErrNilDatabase = errors.New("database cannot be nil")
	ErrNotFound    = gorm.ErrRecordNotFound
)

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.Portfolio{},
		&models.Holding{},
		&models.Transaction{},
		&models.PlatformCredential{},
	)
}

// Ping checks the underlying connection, for health endpoints.
func (r *Repository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// WithTx runs fn against a repository bound to one database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithTx(fn func(*Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}
