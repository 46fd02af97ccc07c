package app

import (
	"regexp"
	"strings"
)

const fallbackMessage = "Something went wrong"

var (
	leadingTags  = regexp.MustCompile(`^(\[[^\]]*\]\s*)+`)
	serverPrefix = regexp.MustCompile(`(?i)^Server Error\s*`)
	calledBy     = regexp.MustCompile(`(?i)Called by client\s*$`)
	uncaught     = regexp.MustCompile(`(?i)Uncaught Error:\s*([^\n]*?)(?:\s+at\s+|$)`)
	trailingAt   = regexp.MustCompile(`\s+at\s+[\s\S]*$`)
)

// UserMessage reduces err to the short message shown to an admin.
func UserMessage(err error) string {
	if err == nil {
		return fallbackMessage
	}
	return CleanMessage(err.Error())
}

// CleanMessage strips wrapper prefixes and trailing locations from raw and
// keeps the last ": " segment.
func CleanMessage(raw string) string {
	msg := leadingTags.ReplaceAllString(raw, "")
	msg = serverPrefix.ReplaceAllString(msg, "")
	msg = calledBy.ReplaceAllString(msg, "")

	if m := uncaught.FindStringSubmatch(msg); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			return s
		}
		return fallbackMessage
	}

	msg = strings.TrimSpace(trailingAt.ReplaceAllString(msg, ""))
	var parts []string
	for _, p := range strings.Split(msg, ": ") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}
	if msg == "" {
		return fallbackMessage
	}
	return msg
}
