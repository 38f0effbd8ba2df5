package core

import (
	"regexp"
	"strings"
)

const (
	// MaxMessageLength is the rune limit applied to message text before escaping.
	MaxMessageLength = 500
	// MaxNameLength is the rune limit applied to display names before escaping.
	MaxNameLength = 32
)

var (
	roomStrip  = regexp.MustCompile(`[^a-z0-9_-]`)
	nameStrip  = regexp.MustCompile(`[^a-zA-Z0-9 _-]`)
	whitespace = regexp.MustCompile(`\s+`)

	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
)

// EscapeHTML replaces the characters that carry meaning in markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// NormalizeRoom lowercases, trims and strips a requested room key.
// The result may be empty.
func NormalizeRoom(raw string) string {
	return roomStrip.ReplaceAllString(strings.TrimSpace(strings.ToLower(raw)), "")
}

// NormalizeName trims a requested display name, drops disallowed characters
// and collapses whitespace. The result is neither truncated nor escaped.
func NormalizeName(raw string) string {
	name := nameStrip.ReplaceAllString(strings.TrimSpace(raw), "")
	return strings.TrimSpace(whitespace.ReplaceAllString(name, " "))
}

// NormalizeMessage trims, truncates and escapes message text.
// It returns "" when nothing is left to post.
func NormalizeMessage(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	return EscapeHTML(truncate(text, MaxMessageLength))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
