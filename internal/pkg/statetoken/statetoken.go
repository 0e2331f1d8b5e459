// Package statetoken produces and verifies the tamper-evident opaque tokens
// that carry charger-linking context through the external redirect flow.
package statetoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"plogo-server/internal/pkg/clock"
	"plogo-server/internal/pkg/errs"
)

var (
	ErrMalformedToken   = errs.New("malformed state token")
	ErrInvalidSignature = errs.New("state token signature mismatch")
)

type Codec struct {
	secret []byte
	clock  clock.Clock
}

func NewCodec(secret string, clk clock.Clock) *Codec {
	return &Codec{secret: []byte(secret), clock: clk}
}

// Create serializes payload plus a creation timestamp (unix millis, key "ts")
// and returns base64url(payload) + "." + base64url(signature).
func (c *Codec) Create(payload map[string]string) (string, error) {
	doc := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		doc[k] = v
	}
	doc["ts"] = c.clock.Now().UnixMilli()

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", errs.Wrap(err, "failed to serialize state payload")
	}

	return base64.RawURLEncoding.EncodeToString(raw) +
		"." +
		base64.RawURLEncoding.EncodeToString(c.sign(raw)), nil
}

// Verify recomputes the HMAC over the decoded payload bytes and compares in
// constant time. No expiry is enforced; the embedded "ts" is returned for
// callers that wish to apply one.
func (c *Codec) Verify(token string) (map[string]string, error) {
	rawPart, signaturePart, found := strings.Cut(token, ".")
	if !found || rawPart == "" || signaturePart == "" {
		return nil, ErrMalformedToken
	}

	raw, err := decodeSegment(rawPart)
	if err != nil {
		return nil, errs.Mark(err, ErrMalformedToken)
	}
	signature, err := decodeSegment(signaturePart)
	if err != nil {
		return nil, errs.Mark(err, ErrMalformedToken)
	}

	if !hmac.Equal(signature, c.sign(raw)) {
		return nil, ErrInvalidSignature
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.Mark(err, ErrMalformedToken)
	}

	payload := make(map[string]string, len(doc))
	for key, value := range doc {
		switch v := value.(type) {
		case string:
			payload[key] = v
		case float64:
			payload[key] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return payload, nil
}

func (c *Codec) sign(raw []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(raw)
	return mac.Sum(nil)
}

// decodeSegment accepts both padded and unpadded base64url.
func decodeSegment(segment string) ([]byte, error) {
	if strings.ContainsRune(segment, '=') {
		return base64.URLEncoding.DecodeString(segment)
	}
	return base64.RawURLEncoding.DecodeString(segment)
}
