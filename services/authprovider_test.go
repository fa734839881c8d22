package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocalAuthProvider(t *testing.T) {
	provider := NewLocalAuthProvider()

	assert.NoError(t, provider.InviteByEmail("dana@test.com", "http://localhost:8080/onboarding"))

	t.Run("Malformed token rejected", func(t *testing.T) {
		_, err := provider.ResolveEmail("no-separator")
		assert.Error(t, err)
	})

	t.Run("Uninvited email rejected", func(t *testing.T) {
		_, err := provider.ResolveEmail("other@test.com:sometoken")
		assert.Error(t, err)
	})

	t.Run("Wrong token rejected", func(t *testing.T) {
		_, err := provider.ResolveEmail("dana@test.com:wrong")
		assert.Error(t, err)
	})

	t.Run("Delete is a no-op", func(t *testing.T) {
		assert.NoError(t, provider.DeleteUser("profile-1"))
	})
}

func TestHTTPAuthProvider(t *testing.T) {
	var lastPath string
	var lastAuth string
	var lastBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastPath = r.URL.Path
		lastAuth = r.Header.Get("Authorization")
		lastBody = map[string]string{}
		json.NewDecoder(r.Body).Decode(&lastBody)

		switch r.URL.Path {
		case "/verify":
			if lastBody["token"] == "good-token" {
				json.NewEncoder(w).Encode(map[string]string{"email": "dana@test.com"})
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		case "/admin/invite", "/admin/delete":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	provider := &HTTPAuthProvider{
		baseURL: strings.TrimSuffix(server.URL, "/"),
		apiKey:  "secret-key",
		client:  &http.Client{Timeout: 2 * time.Second},
	}

	t.Run("Invite posts email and redirect", func(t *testing.T) {
		assert.NoError(t, provider.InviteByEmail("dana@test.com", "http://localhost:8080/onboarding"))
		assert.Equal(t, "/admin/invite", lastPath)
		assert.Equal(t, "Bearer secret-key", lastAuth)
		assert.Equal(t, "dana@test.com", lastBody["email"])
		assert.Equal(t, "http://localhost:8080/onboarding", lastBody["redirect_to"])
	})

	t.Run("Verify resolves the email", func(t *testing.T) {
		email, err := provider.ResolveEmail("good-token")
		assert.NoError(t, err)
		assert.Equal(t, "dana@test.com", email)
	})

	t.Run("Rejected token surfaces an error", func(t *testing.T) {
		_, err := provider.ResolveEmail("bad-token")
		assert.Error(t, err)
	})

	t.Run("Delete posts the profile id", func(t *testing.T) {
		assert.NoError(t, provider.DeleteUser("profile-1"))
		assert.Equal(t, "/admin/delete", lastPath)
		assert.Equal(t, "profile-1", lastBody["user_id"])
	})
}
