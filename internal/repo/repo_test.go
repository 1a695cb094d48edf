package repo

import (
	"errors"
	"testing"
	"time"

	"github.com/Eddie1114/portfolio-tracker/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestRepo(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	r, err := New(db)
	require.NoError(t, err)
	require.NoError(t, r.Migrate())
	return r
}

func TestNew_NilDatabase(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilDatabase)
}

func TestUser_CreateAndLookup(t *testing.T) {
	r := setupTestRepo(t)

	user := &models.User{Email: "alice@example.com", HashedPassword: "x", FullName: "Alice"}
	require.NoError(t, r.CreateUser(user))
	require.NotZero(t, user.ID)

	found, err := r.GetUserByEmail("alice@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	_, err = r.GetUserByEmail("nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPortfolio_OwnershipScoping(t *testing.T) {
	r := setupTestRepo(t)

	alice := &models.User{Email: "alice@example.com"}
	bob := &models.User{Email: "bob@example.com"}
	require.NoError(t, r.CreateUser(alice))
	require.NoError(t, r.CreateUser(bob))

	portfolio := &models.Portfolio{UserID: alice.ID, Name: "Main"}
	require.NoError(t, r.CreatePortfolio(portfolio))

	found, err := r.GetUserPortfolio(alice.ID, portfolio.ID)
	require.NoError(t, err)
	require.Equal(t, "Main", found.Name)

	// Another user's lookup behaves like the row does not exist.
	_, err = r.GetUserPortfolio(bob.ID, portfolio.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHolding_LookupBySymbol(t *testing.T) {
	r := setupTestRepo(t)

	portfolio := &models.Portfolio{UserID: 1, Name: "Gemini Portfolio"}
	require.NoError(t, r.CreatePortfolio(portfolio))

	holding := &models.Holding{
		PortfolioID: portfolio.ID,
		AssetSymbol: "BTC",
		AssetType:   models.AssetCrypto,
		Quantity:    0.5,
		Platform:    models.PlatformGemini,
		LastUpdated: time.Now(),
	}
	require.NoError(t, r.CreateHolding(holding))

	found, err := r.GetHoldingBySymbol(portfolio.ID, "BTC")
	require.NoError(t, err)
	require.Equal(t, holding.ID, found.ID)

	_, err = r.GetHoldingBySymbol(portfolio.ID, "ETH")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHolding_DeleteExcept(t *testing.T) {
	r := setupTestRepo(t)

	portfolio := &models.Portfolio{UserID: 1, Name: "Gemini Portfolio"}
	require.NoError(t, r.CreatePortfolio(portfolio))

	for _, symbol := range []string{"BTC", "ETH", "SOL"} {
		require.NoError(t, r.CreateHolding(&models.Holding{
			PortfolioID: portfolio.ID,
			AssetSymbol: symbol,
			Quantity:    1,
		}))
	}

	require.NoError(t, r.DeleteHoldingsExcept(portfolio.ID, []string{"BTC"}))

	holdings, err := r.GetHoldingsByPortfolio(portfolio.ID)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	require.Equal(t, "BTC", holdings[0].AssetSymbol)
}

func TestCredential_UpsertKeepsOneRow(t *testing.T) {
	r := setupTestRepo(t)

	cred := &models.PlatformCredential{
		UserID:    1,
		Platform:  models.PlatformGemini,
		APIKey:    "key-1",
		APISecret: "secret-1",
	}
	require.NoError(t, r.UpsertPlatformCredential(cred))

	replacement := &models.PlatformCredential{
		UserID:    1,
		Platform:  models.PlatformGemini,
		APIKey:    "key-2",
		APISecret: "secret-2",
	}
	require.NoError(t, r.UpsertPlatformCredential(replacement))
	require.Equal(t, cred.ID, replacement.ID)

	creds, err := r.GetCredentialsByUser(1)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	require.Equal(t, "key-2", creds[0].APIKey)
}

func TestCredential_UserIDs(t *testing.T) {
	r := setupTestRepo(t)

	require.NoError(t, r.UpsertPlatformCredential(&models.PlatformCredential{UserID: 1, Platform: models.PlatformGemini, APIKey: "a", APISecret: "b"}))
	require.NoError(t, r.UpsertPlatformCredential(&models.PlatformCredential{UserID: 1, Platform: models.PlatformFidelity, APIKey: "a", APISecret: "b"}))
	require.NoError(t, r.UpsertPlatformCredential(&models.PlatformCredential{UserID: 2, Platform: models.PlatformGemini, APIKey: "a", APISecret: "b"}))

	ids, err := r.GetCredentialUserIDs()
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestTransaction_ByPortfolio(t *testing.T) {
	r := setupTestRepo(t)

	portfolio := &models.Portfolio{UserID: 1, Name: "Main"}
	require.NoError(t, r.CreatePortfolio(portfolio))

	holding := &models.Holding{PortfolioID: portfolio.ID, AssetSymbol: "AAPL"}
	require.NoError(t, r.CreateHolding(holding))

	other := &models.Holding{PortfolioID: portfolio.ID + 100, AssetSymbol: "MSFT"}
	require.NoError(t, r.CreateHolding(other))

	require.NoError(t, r.CreateTransaction(&models.Transaction{
		HoldingID:       holding.ID,
		TransactionType: "buy",
		Quantity:        5,
		Price:           180,
		Timestamp:       time.Now(),
	}))
	require.NoError(t, r.CreateTransaction(&models.Transaction{
		HoldingID:       other.ID,
		TransactionType: "buy",
		Quantity:        1,
		Price:           400,
		Timestamp:       time.Now(),
	}))

	transactions, err := r.GetTransactionsByPortfolio(portfolio.ID)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	require.Equal(t, holding.ID, transactions[0].HoldingID)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	r := setupTestRepo(t)

	portfolio := &models.Portfolio{UserID: 1, Name: "Main"}
	require.NoError(t, r.CreatePortfolio(portfolio))

	sentinel := errors.New("boom")
	err := r.WithTx(func(tx *Repository) error {
		if err := tx.CreateHolding(&models.Holding{PortfolioID: portfolio.ID, AssetSymbol: "BTC"}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	count, err := r.CountHoldings(portfolio.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}
