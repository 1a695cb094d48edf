package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptySecret         = errors.New("jwt secret cannot be empty")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshDisabled     = errors.New("refresh tokens are not enabled")
	ErrUnknownRefreshToken = errors.New("unknown or expired refresh token")
)

// RefreshStore persists refresh tokens between logins. Redeem consumes the
// token; a refresh token is single-use.
type RefreshStore interface {
	Save(ctx context.Context, token string, userID int64, ttl time.Duration) error
	Redeem(ctx context.Context, token string) (int64, error)
}

// TokenService issues and verifies the API's bearer tokens.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      RefreshStore
}

// New builds a TokenService. store may be nil, which disables refresh
// tokens; logins then return only an access token.
func New(secret string, accessTTL, refreshTTL time.Duration, store RefreshStore) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
	}, nil
}

func (s *TokenService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hashed), nil
}

func (s *TokenService) CheckPassword(hashed, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
}

// IssueAccessToken signs a short-lived HS256 token with the user id in the
// subject claim.
func (s *TokenService) IssueAccessToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// ParseAccessToken verifies the signature and expiry and returns the user id.
func (s *TokenService) ParseAccessToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// IssueRefreshToken stores an opaque token for later redemption.
func (s *TokenService) IssueRefreshToken(ctx context.Context, userID int64) (string, error) {
	if s.store == nil {
		return "", ErrRefreshDisabled
	}
	token := uuid.NewString()
	if err := s.store.Save(ctx, token, userID, s.refreshTTL); err != nil {
		return "", errors.Wrap(err, "failed to store refresh token")
	}
	return token, nil
}

// RefreshEnabled reports whether a refresh store is configured.
func (s *TokenService) RefreshEnabled() bool {
	return s.store != nil
}

// RedeemRefreshToken consumes the refresh token and returns the user it
// belongs to.
func (s *TokenService) RedeemRefreshToken(ctx context.Context, token string) (int64, error) {
	if s.store == nil {
		return 0, ErrRefreshDisabled
	}
	return s.store.Redeem(ctx, token)
}
