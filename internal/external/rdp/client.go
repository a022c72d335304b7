package rdp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wonny/esgreport/pkg/config"
	"github.com/wonny/esgreport/pkg/httputil"
	"github.com/wonny/esgreport/pkg/logger"
)

// Client handles communication with the Refinitiv Data Platform (RDP) API
// ⭐ SSOT: RDP API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.RDPConfig

	// Token management
	accessToken string
	tokenExpiry time.Time
	tokenMu     sync.Mutex
}

// NewClient creates a new RDP API client
func NewClient(cfg config.RDPConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		cfg:        cfg,
	}
}

// TokenResponse represents the OAuth2 password grant response
type TokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    flexSecs `json:"expires_in"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// flexSecs accepts expires_in as either a JSON number or a numeric string
type flexSecs int

func (s *flexSecs) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("expires_in: %w", err)
	}
	*s = flexSecs(n)
	return nil
}

// getToken returns a valid access token, logging in if necessary
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{
		"grant_type":   {"password"},
		"username":     {c.cfg.Username},
		"password":     {c.cfg.Password},
		"client_id":    {c.cfg.AppKey},
		"scope":        {c.cfg.Scope},
		"takeExchange": {"true"},
	}

	resp, err := c.httpClient.PostForm(ctx, strings.TrimRight(c.cfg.AuthURL, "/")+"/token", form)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || tokenResp.AccessToken == "" {
		msg := tokenResp.ErrorDescription
		if msg == "" {
			msg = tokenResp.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return "", &AuthError{Status: resp.StatusCode, Message: msg}
	}

	expiresIn := int(tokenResp.ExpiresIn)
	if expiresIn <= 0 {
		expiresIn = 300
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn)*time.Second - 30*time.Second) // 30초 여유

	c.logger.WithFields(map[string]interface{}{
		"expires_in": expiresIn,
	}).Info("RDP session opened")

	return c.accessToken, nil
}

// Close ends the platform session by revoking the current token.
// Safe to call more than once.
func (c *Client) Close(ctx context.Context) error {
	c.tokenMu.Lock()
	token := c.accessToken
	c.accessToken = ""
	c.tokenExpiry = time.Time{}
	c.tokenMu.Unlock()

	if token == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.AuthURL, "/")+"/revoke",
		strings.NewReader(url.Values{"token": {token}}.Encode()))
	if err != nil {
		return fmt.Errorf("create revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AppKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke token: status %d", resp.StatusCode)
	}

	c.logger.Info("RDP session closed")
	return nil
}

// AuthError is returned when the platform rejects the login
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("RDP login failed (status %d): %s", e.Status, e.Message)
}
