package enode

import (
	"time"

	"plogo-server/internal/domain/charging"
)

// The charger platform aggregates many hardware vendors, so the same logical
// field arrives under different key names depending on the brand. Each lookup
// below is a fixed priority list; the first key holding a non-empty string
// wins.

var chargerIDKeys = []string{"id", "charger_id"}

var chargerBrandKeys = []string{"brand", "manufacturer"}

var vendorLabelKeys = []string{"name", "label", "slug"}

var chargerModelKeys = []string{
	"model",
	"name",
	"charger_name",
	"display_name",
	"product_name",
	"label",
	"product_label",
	"id",
}

var linkURLKeys = []string{"linkUrl", "link_url", "url"}

// errorMessageKeys is the extraction order for upstream error bodies.
var errorMessageKeys = []string{"detail", "title", "error_description", "error"}

// ActionSnapshot is the strongly-typed view of a charging action returned by
// the platform. Raw keeps the untouched payload for persistence.
type ActionSnapshot struct {
	ID            string
	State         charging.ActionState
	CompletedAt   *time.Time
	FailureReason *string
	Raw           map[string]any
}

// Charger is the normalized description of a physical charger on the owner's
// linked vendor account.
type Charger struct {
	ExternalID string
	Brand      *string
	Model      *string
	Raw        map[string]any
}

func NormalizeAction(raw map[string]any) ActionSnapshot {
	snap := ActionSnapshot{Raw: raw}
	snap.ID = stringValue(raw, "id")
	snap.State = charging.ParseActionState(stringValue(raw, "state"))
	if ts := stringValue(raw, "completedAt"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			snap.CompletedAt = &parsed
		}
	}
	if reason := stringValue(raw, "failureReason"); reason != "" {
		snap.FailureReason = &reason
	}
	return snap
}

// NormalizeUsageRecord leaves unparseable timestamps as zero values; the
// stats matcher skips those records.
func NormalizeUsageRecord(raw map[string]any) charging.UsageRecord {
	rec := charging.UsageRecord{Raw: raw}
	if ts := stringValue(raw, "from"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.From = parsed
		}
	}
	if ts := stringValue(raw, "to"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.To = parsed
		}
	}
	if energy, ok := raw["kwhSum"].(float64); ok {
		rec.EnergyKWh = &energy
	}
	return rec
}

func NormalizeCharger(raw map[string]any) Charger {
	charger := Charger{Raw: raw}
	charger.ExternalID = stringValue(raw, chargerIDKeys...)

	if brand := stringValue(raw, chargerBrandKeys...); brand != "" {
		charger.Brand = &brand
	} else if vendor, ok := raw["vendor"].(map[string]any); ok {
		if label := stringValue(vendor, vendorLabelKeys...); label != "" {
			charger.Brand = &label
		}
	}

	if model := stringValue(raw, chargerModelKeys...); model != "" {
		charger.Model = &model
	}
	return charger
}

func LinkURL(raw map[string]any) string {
	return stringValue(raw, linkURLKeys...)
}

func errorMessage(raw map[string]any) string {
	return stringValue(raw, errorMessageKeys...)
}

func stringValue(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := m[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}
