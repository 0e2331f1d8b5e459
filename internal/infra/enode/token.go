package enode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"plogo-server/internal/pkg/clock"
	"plogo-server/internal/pkg/config"
	"plogo-server/internal/pkg/errs"
)

// refreshSkew keeps a safety margin so a token never expires mid-request.
const refreshSkew = 30 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenSource issues the bearer credential attached to every platform call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenProvider caches the client-credentials token process-wide. Tokens are
// bearer credentials valid for any concurrent caller, so a single shared
// entry behind a mutex is enough; a redundant exchange under contention is
// harmless.
type TokenProvider struct {
	cfg        config.EnodeConfig
	httpClient *http.Client
	clock      clock.Clock

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenProvider(cfg config.EnodeConfig, clk clock.Clock) *TokenProvider {
	return &TokenProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		clock:      clk,
	}
}

func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	if p.token != "" && p.expiresAt.After(now.Add(refreshSkew)) {
		return p.token, nil
	}

	token, expiresIn, err := p.exchange(ctx)
	if err != nil {
		return "", err
	}

	p.token = token
	p.expiresAt = now.Add(time.Duration(expiresIn) * time.Second)
	return p.token, nil
}

func (p *TokenProvider) exchange(ctx context.Context) (string, int64, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.OAuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, errs.Wrap(err, "failed to build token request")
	}
	req.SetBasicAuth(p.cfg.ClientID, p.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, errs.External(err, 0, "charger platform authentication failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, errs.External(err, 0, "charger platform authentication failed")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		cause := errs.Newf("token exchange returned %d: %s", resp.StatusCode, string(body))
		return "", 0, errs.External(cause, resp.StatusCode, "charger platform authentication failed")
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.AccessToken == "" {
		cause := errs.New("token exchange returned no access token")
		if err != nil {
			cause = errs.Wrap(err, "failed to decode token response")
		}
		return "", 0, errs.External(cause, 0, "charger platform authentication failed")
	}

	return parsed.AccessToken, parsed.ExpiresIn, nil
}
