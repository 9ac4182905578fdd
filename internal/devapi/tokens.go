package devapi

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"job-portal/internal/domain"
)

const tokenIssuer = "job-portal-devapi"

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

type Claims struct {
	UserID string      `json:"uid"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer emite y valida los bearer tokens de la API.
type TokenIssuer struct {
	secret      []byte
	accessTTL   time.Duration
	rememberTTL time.Duration
	store       TokenStore
}

func NewTokenIssuer(secret string, accessTTL, rememberTTL time.Duration, store TokenStore) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if rememberTTL <= 0 {
		rememberTTL = 30 * 24 * time.Hour
	}
	if store == nil {
		store = NewMemoryTokenStore()
	}
	return &TokenIssuer{
		secret:      []byte(secret),
		accessTTL:   accessTTL,
		rememberTTL: rememberTTL,
		store:       store,
	}
}

// Issue firma un token nuevo; rememberMe alarga su vigencia.
func (t *TokenIssuer) Issue(user domain.User, rememberMe bool) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrTokenInvalid
	}
	ttl := t.accessTTL
	if rememberMe {
		ttl = t.rememberTTL
	}
	now := time.Now().UTC()
	jti := uuid.NewString()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", err
	}
	if err := t.store.Store(jti, user.ID, ttl); err != nil {
		return "", err
	}
	return signed, nil
}

// Parse valida firma, emisor y que el token no haya sido revocado.
func (t *TokenIssuer) Parse(token string) (Claims, error) {
	claims, err := t.parse(token)
	if err != nil {
		return Claims{}, err
	}
	ok, err := t.store.Exists(claims.ID)
	if err != nil || !ok {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

// Revoke invalida el token; uno ya revocado no es error.
func (t *TokenIssuer) Revoke(token string) error {
	claims, err := t.parse(token)
	if err != nil {
		return err
	}
	return t.store.Revoke(claims.ID)
}

func (t *TokenIssuer) parse(token string) (Claims, error) {
	if len(t.secret) == 0 || strings.TrimSpace(token) == "" {
		return Claims{}, ErrTokenInvalid
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.UserID) == "" || claims.Subject != claims.UserID || claims.Issuer != tokenIssuer || claims.ID == "" {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}
