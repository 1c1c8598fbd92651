// Package i18n serves the short client-facing error strings. Every message
// here is deliberately generic: end users, most of whom are minors, never
// see upstream errors, stack traces, or field-level validation detail.
package i18n

import (
	"encoding/json"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message IDs
const (
	MsgRateLimitExceeded  = "rate_limit_exceeded"
	MsgInvalidFormat      = "invalid_format"
	MsgInvalidRequest     = "invalid_request"
	MsgServiceUnavailable = "service_unavailable"
	MsgUpstreamError      = "upstream_error"
)

var enMessages = []byte(`{
	"rate_limit_exceeded": "Too many requests. Please wait a moment and try again.",
	"invalid_format": "Invalid request format.",
	"invalid_request": "Invalid request data.",
	"service_unavailable": "The service is temporarily unavailable.",
	"upstream_error": "Something went wrong. Please try again."
}`)

var elMessages = []byte(`{
	"rate_limit_exceeded": "Πάρα πολλά αιτήματα. Περιμένετε λίγο και δοκιμάστε ξανά.",
	"invalid_format": "Μη έγκυρη μορφή αιτήματος.",
	"invalid_request": "Μη έγκυρα δεδομένα αιτήματος.",
	"service_unavailable": "Η υπηρεσία δεν είναι προσωρινά διαθέσιμη.",
	"upstream_error": "Κάτι πήγε στραβά. Δοκιμάστε ξανά."
}`)

// Localizer resolves message IDs against the embedded message catalogs.
type Localizer struct {
	bundle          *i18n.Bundle
	defaultLanguage string
}

// NewLocalizer builds the bundle from the embedded catalogs.
func NewLocalizer(defaultLanguage string) *Localizer {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	bundle.MustParseMessageFileBytes(enMessages, "en.json")
	bundle.MustParseMessageFileBytes(elMessages, "el.json")

	if defaultLanguage == "" {
		defaultLanguage = "en"
	}

	return &Localizer{
		bundle:          bundle,
		defaultLanguage: defaultLanguage,
	}
}

// Get returns the localized message for the given language preference. The
// lang argument may be an Accept-Language header value; unknown languages
// fall back to the default, unknown IDs fall back to the ID itself.
func (l *Localizer) Get(lang, messageID string) string {
	localizer := i18n.NewLocalizer(l.bundle, lang, l.defaultLanguage)

	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	return msg
}
