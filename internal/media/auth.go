package media

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

const (
	tokenBlacklistPrefix = "auth:token:blacklist:"
	authCookieName       = "access_token"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Requester is the caller of an HTTP operation. An empty UserID means the
// service runs without authentication.
type Requester struct {
	UserID string
	Role   Role
}

func (r Requester) Anonymous() bool {
	return r.UserID == ""
}

func (r Requester) CanManage(doc Metadata) bool {
	if r.Role == RoleAdmin {
		return true
	}
	return r.UserID == doc.OwnerID
}

type Authorizer interface {
	Authorize(r *http.Request) (Requester, error)
}

type authClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token the authorizer accepts. Each token gets a
// fresh jti so it can be revoked on its own.
func IssueToken(secret []byte, userID string, role Role, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("token secret is required")
	}
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}

	now := time.Now()
	claims := authClaims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

type jwtAuthorizer struct {
	secret []byte
	rdb    *redis.Client
}

// NewAuthorizer verifies HS256 tokens from the Authorization header or the
// access_token cookie. Revoked token IDs are looked up in Redis when rdb is
// set. With an empty secret every request is let through anonymously.
func NewAuthorizer(secret []byte, rdb *redis.Client) Authorizer {
	if len(secret) == 0 {
		return openAuthorizer{}
	}
	return &jwtAuthorizer{secret: secret, rdb: rdb}
}

func (a *jwtAuthorizer) Authorize(r *http.Request) (Requester, error) {
	tokenString, err := tokenFromRequest(r)
	if err != nil {
		return Requester{}, err
	}

	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Requester{}, ErrUnauthorized
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.ID == "" || claims.UserID == "" {
		return Requester{}, ErrUnauthorized
	}

	if a.rdb != nil {
		exists, err := a.rdb.Exists(r.Context(), tokenBlacklistPrefix+claims.ID).Result()
		if err != nil {
			return Requester{}, err
		}
		if exists > 0 {
			return Requester{}, ErrUnauthorized
		}
	}

	role := Role(strings.ToLower(claims.Role))
	if role == "" {
		role = RoleUser
	}
	return Requester{UserID: claims.UserID, Role: role}, nil
}

type openAuthorizer struct{}

func (openAuthorizer) Authorize(*http.Request) (Requester, error) {
	return Requester{Role: RoleAdmin}, nil
}

func tokenFromRequest(r *http.Request) (string, error) {
	if token, err := extractBearerToken(r.Header.Get("Authorization")); err == nil {
		return token, nil
	}

	if cookie, err := r.Cookie(authCookieName); err == nil {
		if token := strings.TrimSpace(cookie.Value); token != "" {
			return token, nil
		}
	}

	return "", ErrUnauthorized
}

func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrUnauthorized
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrUnauthorized
	}
	return token, nil
}
