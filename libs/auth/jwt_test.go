package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHS256RoundTrip(t *testing.T) {
	id := Identity{ID: "user-1", Role: RoleTutor}
	token, err := SignHS256(id, "test-secret", time.Hour, time.Now())
	require.NoError(t, err)

	parsed, err := ParseAndVerifyHS256(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseAndVerifyHS256(token, "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := SignHS256(Identity{ID: "user-1", Role: RoleStudent}, "s", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseAndVerifyHS256(token, "s")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnknownRoleRejected(t *testing.T) {
	claims := Claims{
		ID:   "user-1",
		Role: "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = ParseAndVerifyHS256(token, "s")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequire(t *testing.T) {
	secret := "test-secret"
	h := Require(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		if !ok || id.ID != "user-9" || id.Role != RoleAdmin {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rw.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, rw.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusUnauthorized, rw.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, rw.Body.String())

	token, err := SignHS256(Identity{ID: "user-9", Role: RoleAdmin}, secret, time.Hour, time.Now())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	assert.Equal(t, http.StatusOK, rw.Code)
}
