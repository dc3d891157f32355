package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loja-escolar/backend/internal/auth"
	"github.com/loja-escolar/backend/internal/user"
)

func newManager(t *testing.T, ttl time.Duration) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager("test-secret", ttl)
	require.NoError(t, err)
	return m
}

func TestManager_IssueAndParse(t *testing.T) {
	m := newManager(t, 30*time.Minute)

	token, err := m.Issue(&user.User{ID: 42, Email: "maria@example.com", IsAdmin: true})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "maria@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
}

func TestManager_ParseRejectsExpired(t *testing.T) {
	m := newManager(t, time.Nanosecond)

	token, err := m.Issue(&user.User{ID: 42, Email: "maria@example.com"})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestManager_ParseRejectsWrongSecret(t *testing.T) {
	issuer := newManager(t, 30*time.Minute)
	verifier, err := auth.NewManager("other-secret", 30*time.Minute)
	require.NoError(t, err)

	token, err := issuer.Issue(&user.User{ID: 42, Email: "maria@example.com"})
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestManager_RejectsEmptyConfig(t *testing.T) {
	_, err := auth.NewManager("", time.Minute)
	assert.Error(t, err)

	_, err = auth.NewManager("secret", 0)
	assert.Error(t, err)
}

func TestAuthenticateMiddleware(t *testing.T) {
	m := newManager(t, 30*time.Minute)
	token, err := m.Issue(&user.User{ID: 42, Email: "maria@example.com"})
	require.NoError(t, err)

	var gotClaims *auth.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "valid_token", header: "Bearer " + token, expectedStatus: http.StatusOK},
		{name: "missing_header", header: "", expectedStatus: http.StatusUnauthorized},
		{name: "not_bearer", header: "Basic abc", expectedStatus: http.StatusUnauthorized},
		{name: "garbage_token", header: "Bearer not.a.token", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims = nil
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			m.Authenticate(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				require.NotNil(t, gotClaims)
				assert.Equal(t, int64(42), gotClaims.UserID)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	m := newManager(t, 30*time.Minute)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	protected := m.Authenticate(auth.RequireAdmin(next))

	adminToken, err := m.Issue(&user.User{ID: 1, Email: "admin@example.com", IsAdmin: true})
	require.NoError(t, err)
	plainToken, err := m.Issue(&user.User{ID: 2, Email: "maria@example.com"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/produtos/1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/produtos/1", nil)
	req.Header.Set("Authorization", "Bearer "+plainToken)
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
