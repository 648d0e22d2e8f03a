package log

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked.
// These commonly hold request material that should not be logged.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"proxy-authorization": true,
	"password":            true,
	"secret":              true,
	"token":               true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
	"access_token":        true,
	"session":             true,
	"session_id":          true,
}

// sensitiveQueryParams are URL query parameter names whose values are
// masked when a URL-valued attribute is logged.
var sensitiveQueryParams = map[string]bool{
	"token":        true,
	"access_token": true,
	"api_key":      true,
	"apikey":       true,
	"key":          true,
	"session":      true,
	"sessionid":    true,
	"sid":          true,
	"auth":         true,
	"password":     true,
	"secret":       true,
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SanitizeHandler wraps an slog.Handler and scrubs sensitive information
// from log records: attribute values under known-sensitive keys, userinfo
// embedded in URL-valued attributes, and token-like query parameters.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites stay unaware of sanitization
type SanitizeHandler struct {
	handler slog.Handler
}

// NewSanitizeHandler creates a SanitizeHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSanitizeHandler(handler slog.Handler) *SanitizeHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SanitizeHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *SanitizeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it on.
func (h *SanitizeHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler whose attributes include both the
// receiver's and the (sanitized) arguments.
func (h *SanitizeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		sanitized = append(sanitized, h.sanitizeAttr(a))
	}
	return &SanitizeHandler{handler: h.handler.WithAttrs(sanitized)}
}

// WithGroup returns a new handler with the given group appended.
func (h *SanitizeHandler) WithGroup(name string) slog.Handler {
	return &SanitizeHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr masks or rewrites a single attribute as needed.
func (h *SanitizeHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		sanitized := make([]slog.Attr, 0, len(group))
		for _, ga := range group {
			sanitized = append(sanitized, h.sanitizeAttr(ga))
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitized...)}
	}

	if a.Value.Kind() == slog.KindString {
		if cleaned, changed := SanitizeURL(a.Value.String()); changed {
			return slog.String(a.Key, cleaned)
		}
	}

	return a
}

// SanitizeURL scrubs credentials from a URL string. It strips userinfo and
// masks the values of sensitive query parameters. The second return value
// reports whether anything was changed. Non-URL strings are returned as-is.
func SanitizeURL(s string) (string, bool) {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return s, false
	}

	u, err := url.Parse(s)
	if err != nil {
		return s, false
	}

	changed := false
	if u.User != nil {
		u.User = nil
		changed = true
	}

	if u.RawQuery != "" {
		q := u.Query()
		for name := range q {
			if sensitiveQueryParams[strings.ToLower(name)] {
				q.Set(name, MaskValue)
				changed = true
			}
		}
		if changed {
			u.RawQuery = q.Encode()
		}
	}

	if !changed {
		return s, false
	}
	return u.String(), true
}
