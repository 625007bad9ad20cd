package media

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithToken(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthorizerAcceptsValidToken(t *testing.T) {
	auth := NewAuthorizer([]byte(testSecret), nil)

	requester, err := auth.Authorize(requestWithToken(signToken(t, "u-1", "ADMIN", "jti")))
	require.NoError(t, err)
	assert.Equal(t, Requester{UserID: "u-1", Role: RoleAdmin}, requester)

	requester, err = auth.Authorize(requestWithToken(signToken(t, "u-2", "", "jti")))
	require.NoError(t, err)
	assert.Equal(t, RoleUser, requester.Role)
}

func TestAuthorizerRejects(t *testing.T) {
	auth := NewAuthorizer([]byte(testSecret), nil)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, authClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, authClaims{
		UserID:           "u-1",
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	otherSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, authClaims{
		UserID:           "u-1",
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti"},
	}).SignedString([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	tests := map[string]string{
		"missing":      "",
		"expired":      expired,
		"wrong alg":    wrongAlg,
		"other secret": otherSecret,
		"no jti":       signToken(t, "u-1", "user", ""),
		"no user":      signToken(t, "", "user", "jti"),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Authorize(requestWithToken(token))
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestOpenAuthorizer(t *testing.T) {
	requester, err := NewAuthorizer(nil, nil).Authorize(requestWithToken(""))
	require.NoError(t, err)
	assert.True(t, requester.Anonymous())
	assert.True(t, requester.CanManage(Metadata{OwnerID: "anyone"}))
}

func TestExtractBearerToken(t *testing.T) {
	token, err := extractBearerToken("bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc"} {
		_, err := extractBearerToken(header)
		assert.ErrorIs(t, err, ErrUnauthorized, header)
	}
}

func TestIssueToken(t *testing.T) {
	token, err := IssueToken([]byte(testSecret), "u-9", RoleAdmin, time.Hour)
	require.NoError(t, err)

	requester, err := NewAuthorizer([]byte(testSecret), nil).Authorize(requestWithToken(token))
	require.NoError(t, err)
	assert.Equal(t, Requester{UserID: "u-9", Role: RoleAdmin}, requester)

	expired, err := IssueToken([]byte(testSecret), "u-9", RoleUser, -time.Minute)
	require.NoError(t, err)
	_, err = NewAuthorizer([]byte(testSecret), nil).Authorize(requestWithToken(expired))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = IssueToken(nil, "u-9", RoleUser, time.Hour)
	assert.Error(t, err)
	_, err = IssueToken([]byte(testSecret), " ", RoleUser, time.Hour)
	assert.Error(t, err)
}
