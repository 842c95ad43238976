// Package event decodes and validates package-status events read from a
// tier topic.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidEvent is returned when a decoded record is missing one of the
// required fields.
var ErrInvalidEvent = errors.New("event: missing required field")

// Event is a package-status notification read from a tier topic.
//
// PackageStatusID is kept as raw JSON because the source produces it as
// either an integer or a string (see wire format); round-tripping through
// a typed field would normalize it, and demotion must forward the original
// bytes unchanged.
type Event struct {
	PkgCode         string          `json:"pkg_code"`
	ShopID          string          `json:"shop_id"`
	PackageStatusID json.RawMessage `json:"package_status_id"`
	WebhookURL      string          `json:"webhook_url"`

	// raw is the exact bytes the record arrived with, preserved for
	// byte-for-byte demotion re-publish.
	raw []byte
}

// Decode parses and validates a tier-topic record value.
func Decode(value []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(value, &e); err != nil {
		return nil, fmt.Errorf("event: decode: %w", err)
	}

	if e.PkgCode == "" || e.ShopID == "" || e.WebhookURL == "" || len(e.PackageStatusID) == 0 {
		return nil, fmt.Errorf("%w: pkg_code=%q shop_id=%q webhook_url=%q", ErrInvalidEvent, e.PkgCode, e.ShopID, e.WebhookURL)
	}

	e.raw = value
	return &e, nil
}

// Raw returns the exact bytes this event was decoded from, for verbatim
// re-publish on demotion.
func (e *Event) Raw() []byte {
	return e.raw
}

// WebhookBody builds the JSON body POSTed to the merchant webhook.
func (e *Event) WebhookBody() ([]byte, error) {
	return json.Marshal(struct {
		PkgCode         string          `json:"pkg_code"`
		PackageStatusID json.RawMessage `json:"package_status_id"`
	}{
		PkgCode:         e.PkgCode,
		PackageStatusID: e.PackageStatusID,
	})
}
