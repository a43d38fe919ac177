package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL}, zap.NewNop())
}

func TestLoginSuccess(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.com", body["email"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "t",
			"user":  map[string]string{"id": "1", "email": "a@b.com"},
		})
	})

	lr, err := c.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "t", lr.Token)
	assert.Equal(t, "a@b.com", lr.User.Email)
	assert.Equal(t, "a@b.com", lr.User.DisplayName())
}

func TestLoginBadCredentialsUsesServerMessage(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "credenciales inválidas"})
	})

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, http.StatusUnauthorized, aerr.Status)
	assert.Equal(t, "credenciales inválidas", aerr.Message)
}

func TestLoginErrorWithoutBodyFallsBackToGeneric(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Login(context.Background(), "a@b.com", "pw")
	var aerr *AuthError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "Error de autenticación", aerr.Message)
}

func TestLoginMalformedPayloadIsAuthError(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "missing token", body: `{"user":{"id":"1","email":"a@b.com"}}`},
		{name: "missing user", body: `{"token":"t"}`},
		{name: "not json", body: `ok`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Login(context.Background(), "a@b.com", "pw")
			var aerr *AuthError
			require.ErrorAs(t, err, &aerr)
			assert.Equal(t, "Respuesta inválida del servidor", aerr.Message)
		})
	}
}

func TestLoginWithoutBaseURL(t *testing.T) {
	c := New(Config{}, zap.NewNop())
	_, err := c.Login(context.Background(), "a@b.com", "pw")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMeSendsBearerToken(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/me", r.URL.Path)
		require.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "1", "email": "a@b.com"})
	})

	u, err := c.Me(context.Background(), "t")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "1", u.ID)
}

func TestMeAcceptsWrappedProfile(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]string{"id": "2", "email": "b@c.com", "name": "B"},
		})
	})

	u, err := c.Me(context.Background(), "t")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "B", u.Name)
}

func TestMeUnauthorizedMeansNoSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		u, err := c.Me(context.Background(), "stale")
		assert.NoError(t, err)
		assert.Nil(t, u)
	}
}

func TestMeServerErrorSwallowedAsNoSession(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	u, err := c.Me(context.Background(), "t")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestMeTransportFailureSwallowedAsNoSession(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on
	c := New(Config{BaseURL: srv.URL}, zap.NewNop())

	u, err := c.Me(context.Background(), "t")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestMeWithoutBaseURL(t *testing.T) {
	c := New(Config{}, zap.NewNop())
	_, err := c.Me(context.Background(), "t")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
