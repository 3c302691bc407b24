// Package tools implements the assistant function-calling surface.
// Functions are resolved by normalized name from a built-in catalog and
// executed server-side; results are reported back to the model.
package tools

import (
	"regexp"
	"strings"
)

// Definition describes a callable function in the shape the realtime
// session.update "tools" field expects.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

var catalog = map[string]Definition{
	"send_webhook": {
		Name:        "send_webhook",
		Description: "Sends data to a webhook URL for integration with external systems",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "Webhook URL to deliver the payload to",
				},
				"event": map[string]any{
					"type":        "string",
					"description": "Event or action type",
				},
				"data": map[string]any{
					"type":        "object",
					"description": "Payload to deliver",
				},
			},
			"required": []string{"url", "event"},
		},
	},
}

var (
	nonWordRE   = regexp.MustCompile(`[^a-zA-Z0-9_]`)
	separatorRE = regexp.MustCompile(`[-\s]+`)
)

// NormalizeName canonicalizes a function name: lower case, separators
// collapsed to underscores, everything else stripped. Returns "" when
// nothing usable remains.
func NormalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = separatorRE.ReplaceAllString(n, "_")
	return nonWordRE.ReplaceAllString(n, "")
}

// Resolve maps a list of requested function names to full definitions,
// dropping names the catalog does not know.
func Resolve(names []string) []Definition {
	var defs []Definition
	for _, name := range names {
		n := NormalizeName(name)
		if n == "" {
			continue
		}
		if d, ok := catalog[n]; ok {
			defs = append(defs, d)
		}
	}
	return defs
}

var webhookURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)webhook\s+URL:\s*(https?://[^\s"'<>]+)`),
	regexp.MustCompile(`(?i)URL\s+webhook:\s*(https?://[^\s"'<>]+)`),
	regexp.MustCompile(`https?://[^\s"'<>]+`),
}

// ExtractWebhookURL pulls a webhook URL out of the assistant system prompt.
// Used as a fallback when the model omits the url argument.
func ExtractWebhookURL(prompt string) string {
	if prompt == "" {
		return ""
	}
	for _, re := range webhookURLPatterns {
		m := re.FindStringSubmatch(prompt)
		if len(m) > 1 {
			return m[1]
		}
		if len(m) == 1 {
			return m[0]
		}
	}
	return ""
}
