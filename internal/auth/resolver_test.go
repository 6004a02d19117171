package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmagp80/Clyra-sub003/internal/config"
)

func TestResolveValidToken(t *testing.T) {
	var gotAuth, gotAPIKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user-1","email":"ana@example.com","role":"authenticated"}`))
	}))
	defer server.Close()

	resolver, err := NewHTTPResolver(config.AuthConfig{BaseURL: server.URL, APIKey: "anon-key"})
	require.NoError(t, err)

	identity, err := resolver.Resolve(context.Background(), "session-token")
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "user-1", identity.ID)
	assert.Equal(t, "ana@example.com", identity.Email)
	assert.Equal(t, "Bearer session-token", gotAuth)
	assert.Equal(t, "anon-key", gotAPIKey)
}

func TestResolveInvalidTokenIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	resolver, err := NewHTTPResolver(config.AuthConfig{BaseURL: server.URL})
	require.NoError(t, err)

	identity, err := resolver.Resolve(context.Background(), "expired")
	require.NoError(t, err)
	assert.Nil(t, identity)
}

func TestResolveServiceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	resolver, err := NewHTTPResolver(config.AuthConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), "any")
	assert.Error(t, err)
}

func TestResolveRejectsEmptyUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	resolver, err := NewHTTPResolver(config.AuthConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), "token")
	assert.Error(t, err)
}

func TestNewHTTPResolverRequiresURL(t *testing.T) {
	_, err := NewHTTPResolver(config.AuthConfig{})
	assert.Error(t, err)
}
