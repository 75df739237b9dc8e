package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, sub string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Sub:   sub,
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestAuthenticateValidToken(t *testing.T) {
	userID := uuid.New()
	m := NewJWTMiddleware(testSecret)

	var gotUser uuid.UUID
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID.String(), time.Hour))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, userID, gotUser)
}

func TestAuthenticateRejections(t *testing.T) {
	m := NewJWTMiddleware(testSecret)
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + signToken(t, uuid.NewString(), -time.Hour)},
		{"non-uuid subject", "Bearer " + signToken(t, "user-42", time.Hour)},
		{"wrong secret", "Bearer " + func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Sub: uuid.NewString()})
			s, _ := tok.SignedString([]byte("other-secret"))
			return s
		}()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", tc.token)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestUserIDFromContextDefaults(t *testing.T) {
	assert.Equal(t, uuid.Nil, UserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))

	id := uuid.New()
	ctx := WithUserID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), id)
	assert.Equal(t, id, UserIDFromContext(ctx))
}
