package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"expert_panel_go/config"

	"golang.org/x/crypto/bcrypt"
)

// AuthProvider is the port to the external identity service. The
// portal never stores passwords; it only asks the provider to invite
// principals by email, delete them, and resolve provider-issued
// tokens to an email during session exchange.
type AuthProvider interface {
	InviteByEmail(email, redirectURL string) error
	DeleteUser(profileID string) error
	ResolveEmail(providerToken string) (string, error)
}

// Auth is the global auth provider
var Auth AuthProvider

// InitializeAuthProvider sets up the auth provider based on configuration
func InitializeAuthProvider(cfg *config.Config) {
	if cfg.AuthProviderURL != "" && cfg.AuthProviderKey != "" {
		Auth = &HTTPAuthProvider{
			baseURL: strings.TrimSuffix(cfg.AuthProviderURL, "/"),
			apiKey:  cfg.AuthProviderKey,
			client:  &http.Client{Timeout: 10 * time.Second},
		}
		log.Printf("Auth provider initialized (remote: %s)", cfg.AuthProviderURL)
		return
	}

	Auth = NewLocalAuthProvider()
	log.Println("Auth provider initialized (local fallback - development only)")
}

// HTTPAuthProvider talks to the external identity service's admin API
type HTTPAuthProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func (p *HTTPAuthProvider) post(path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	return p.client.Do(req)
}

// InviteByEmail asks the provider to send an invite-by-email link
func (p *HTTPAuthProvider) InviteByEmail(email, redirectURL string) error {
	resp, err := p.post("/admin/invite", map[string]string{
		"email":       email,
		"redirect_to": redirectURL,
	})
	if err != nil {
		return fmt.Errorf("auth provider invite failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("auth provider invite failed: status %d", resp.StatusCode)
	}
	return nil
}

// DeleteUser removes the principal from the identity service
func (p *HTTPAuthProvider) DeleteUser(profileID string) error {
	resp, err := p.post("/admin/delete", map[string]string{"user_id": profileID})
	if err != nil {
		return fmt.Errorf("auth provider delete failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("auth provider delete failed: status %d", resp.StatusCode)
	}
	return nil
}

// ResolveEmail verifies a provider-issued token and returns the email
func (p *HTTPAuthProvider) ResolveEmail(providerToken string) (string, error) {
	resp, err := p.post("/verify", map[string]string{"token": providerToken})
	if err != nil {
		return "", fmt.Errorf("auth provider verify failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("auth provider verify failed: status %d", resp.StatusCode)
	}

	var result struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode verify response: %w", err)
	}
	if result.Email == "" {
		return "", fmt.Errorf("auth provider returned no email")
	}
	return result.Email, nil
}

// LocalAuthProvider is the development fallback. Invited principals
// get a generated one-time token, stored bcrypt-hashed and logged to
// the console so developers can complete the flow without a remote
// identity service.
type LocalAuthProvider struct {
	mu     sync.Mutex
	tokens map[string]string // email -> bcrypt hash of the one-time token
}

// NewLocalAuthProvider creates the development fallback provider
func NewLocalAuthProvider() *LocalAuthProvider {
	return &LocalAuthProvider{tokens: make(map[string]string)}
}

// InviteByEmail generates and logs a one-time token for the email
func (p *LocalAuthProvider) InviteByEmail(email, redirectURL string) error {
	token, err := GenerateSessionToken()
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash invite token: %w", err)
	}

	p.mu.Lock()
	p.tokens[email] = string(hash)
	p.mu.Unlock()

	log.Printf("[DEV] Invite for %s: exchange with token %q (redirect %s)", email, email+":"+token, redirectURL)
	return nil
}

// DeleteUser is a no-op locally; the profile row cascade handles cleanup
func (p *LocalAuthProvider) DeleteUser(profileID string) error {
	return nil
}

// ResolveEmail accepts "email:token" pairs issued by InviteByEmail
func (p *LocalAuthProvider) ResolveEmail(providerToken string) (string, error) {
	parts := strings.SplitN(providerToken, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("malformed token")
	}
	email, token := parts[0], parts[1]

	p.mu.Lock()
	hash, ok := p.tokens[email]
	p.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("no invite for %s", email)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		return "", fmt.Errorf("invalid token")
	}
	return email, nil
}
