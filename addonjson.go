package gma

import (
	"encoding/json"
	"fmt"
)

// AddonJSON is the JSON sub-document conventionally stored in the
// description field by workshop tooling.
//
// The codec itself treats the description as an opaque string; these
// helpers exist for callers that want to interpret or produce the
// convention.
type AddonJSON struct {
	Description string   `json:"description"`
	Type        string   `json:"type,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// EncodeAddonJSON renders meta as the description sub-document, suitable
// for [Builder.SetDescription].
func EncodeAddonJSON(meta AddonJSON) (string, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("gma: encode addon json: %w", err)
	}
	return string(raw), nil
}

// DecodeAddonJSON parses a description field as the addon JSON
// sub-document. It fails on descriptions that are not JSON objects, which
// is common for archives written by older tools.
func DecodeAddonJSON(description string) (AddonJSON, error) {
	var meta AddonJSON
	if err := json.Unmarshal([]byte(description), &meta); err != nil {
		return AddonJSON{}, fmt.Errorf("gma: decode addon json: %w", err)
	}
	return meta, nil
}
