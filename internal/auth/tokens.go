package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed payload carried by both token kinds. The account
// identifier travels in the registered subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer mints and verifies the two token kinds. Access tokens are
// short-lived request credentials; refresh tokens are long-lived and signed
// with an independent secret.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// NewIssuer constructs an Issuer with the provided secrets and lifetimes.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	if accessSecret == "" || refreshSecret == "" {
		panic("auth: token secrets must not be empty")
	}
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess signs a short-lived access token for the account.
func (i *Issuer) IssueAccess(accountID string) (string, time.Time, error) {
	return i.issue(accountID, i.accessSecret, i.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the account.
func (i *Issuer) IssueRefresh(accountID string) (string, time.Time, error) {
	return i.issue(accountID, i.refreshSecret, i.refreshTTL)
}

func (i *Issuer) issue(accountID string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	if accountID == "" {
		return "", time.Time{}, errors.New("auth: account id must be provided")
	}

	now := i.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "videotube",
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// VerifyAccess checks an access token's signature and expiry and returns the
// account identifier it was issued for.
func (i *Issuer) VerifyAccess(token string) (string, error) {
	return i.verify(token, i.accessSecret)
}

// VerifyRefresh checks a refresh token's signature and expiry and returns the
// account identifier it was issued for.
func (i *Issuer) VerifyRefresh(token string) (string, error) {
	return i.verify(token, i.refreshSecret)
}

func (i *Issuer) verify(token string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

func (i *Issuer) now() time.Time {
	if i.NowFunc != nil {
		return i.NowFunc().UTC()
	}
	return time.Now().UTC()
}
