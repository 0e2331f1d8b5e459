package enode

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"plogo-server/internal/domain/charging"
	"plogo-server/internal/pkg/config"
	"plogo-server/internal/pkg/errs"
)

type ActionKind string

const (
	ActionStart ActionKind = "START"
	ActionStop  ActionKind = "STOP"
)

// Client talks to the charger-control platform. Every call attaches the
// cached bearer token; non-2xx responses surface as external kind errors
// carrying the upstream status and body, never silently swallowed.
type Client struct {
	cfg        config.EnodeConfig
	tokens     TokenSource
	httpClient *http.Client
}

func NewClient(cfg config.EnodeConfig, tokens TokenSource) *Client {
	return &Client{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

// SendAction issues a START or STOP command. The platform confirms actions
// out-of-band, so the snapshot state is usually PENDING. A nil snapshot means
// the platform accepted the command with an empty body.
func (c *Client) SendAction(ctx context.Context, chargerID string, kind ActionKind) (*ActionSnapshot, error) {
	payload := map[string]any{"action": string(kind)}
	decoded, err := c.do(ctx, http.MethodPost, "/chargers/"+chargerID+"/charging", payload, "send charging action")
	if err != nil {
		return nil, err
	}
	return actionFromBody(decoded), nil
}

func (c *Client) FetchAction(ctx context.Context, chargerID, actionID string) (*ActionSnapshot, error) {
	decoded, err := c.do(ctx, http.MethodGet, "/chargers/"+chargerID+"/actions/"+actionID, nil, "fetch charging action")
	if err != nil {
		return nil, err
	}
	return actionFromBody(decoded), nil
}

// FetchStats lists the platform's usage records for a charger over a window.
func (c *Client) FetchStats(ctx context.Context, accountID, chargerID string, from, to time.Time) ([]charging.UsageRecord, error) {
	path := "/users/" + accountID + "/chargers/" + chargerID + "/sessions" +
		"?startDate=" + from.UTC().Format(time.RFC3339) +
		"&endDate=" + to.UTC().Format(time.RFC3339)

	decoded, err := c.do(ctx, http.MethodGet, path, nil, "fetch charging statistics")
	if err != nil {
		return nil, err
	}

	records := make([]charging.UsageRecord, 0)
	for _, item := range listFromBody(decoded) {
		if raw, ok := item.(map[string]any); ok {
			records = append(records, NormalizeUsageRecord(raw))
		}
	}
	return records, nil
}

// CreateLinkSession asks the platform for a vendor-linking URL the owner is
// redirected to. The redirect URI carries the signed state token.
func (c *Client) CreateLinkSession(ctx context.Context, accountID, redirectURI string) (string, error) {
	payload := map[string]any{
		"vendorType":  "charger",
		"scopes":      c.cfg.NormalizedScopes(),
		"redirectUri": redirectURI,
	}

	decoded, err := c.do(ctx, http.MethodPost, "/users/"+accountID+"/link", payload, "create link session")
	if err != nil {
		return "", err
	}

	body, ok := decoded.(map[string]any)
	if !ok {
		return "", errs.External(errs.New("link session response had no body"), 0, "create link session failed")
	}
	linkURL := LinkURL(body)
	if linkURL == "" {
		return "", errs.External(errs.New("link session response carried no url"), 0, "create link session failed")
	}
	return linkURL, nil
}

func (c *Client) ListChargers(ctx context.Context, accountID string) ([]Charger, error) {
	decoded, err := c.do(ctx, http.MethodGet, "/users/"+accountID+"/chargers", nil, "list chargers")
	if err != nil {
		return nil, err
	}

	chargers := make([]Charger, 0)
	for _, item := range listFromBody(decoded) {
		if raw, ok := item.(map[string]any); ok {
			chargers = append(chargers, NormalizeCharger(raw))
		}
	}
	return chargers, nil
}

// do runs one authenticated round trip. Empty bodies decode to nil rather
// than an error; non-JSON bodies are wrapped as {"raw": body}.
func (c *Client) do(ctx context.Context, method, path string, payload any, contextLabel string) (any, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, errs.Wrap(err, "failed to encode request payload")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.APIURL+path, body)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build platform request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.External(err, 0, contextLabel+" failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.External(err, 0, contextLabel+" failed")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apiError(resp.StatusCode, raw, contextLabel)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return map[string]any{"raw": string(raw)}, nil
	}
	return decoded, nil
}

func apiError(status int, raw []byte, contextLabel string) error {
	message := contextLabel + " failed"
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		if extracted := errorMessage(body); extracted != "" {
			message = extracted
		}
	}
	cause := errs.Newf("%s: upstream status %d: %s", contextLabel, status, string(raw))
	return errs.External(cause, status, message)
}

func actionFromBody(decoded any) *ActionSnapshot {
	raw, ok := decoded.(map[string]any)
	if !ok {
		return nil
	}
	snap := NormalizeAction(raw)
	return &snap
}

// listFromBody accepts both a bare JSON array and a {"data": [...]} envelope.
func listFromBody(decoded any) []any {
	switch v := decoded.(type) {
	case []any:
		return v
	case map[string]any:
		if items, ok := v["data"].([]any); ok {
			return items
		}
	}
	return nil
}
