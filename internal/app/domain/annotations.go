package domain

import "strings"

// AnnotateCaption derives a compact annotation string for a post from its
// caption and media type: distinct hashtags and mentions in first-seen order,
// plus the normalized media type. Deterministic for identical input.
func AnnotateCaption(caption, mediaType string) string {
	var parts []string

	if mt := strings.ToLower(strings.TrimSpace(mediaType)); mt != "" {
		parts = append(parts, "type:"+mt)
	}

	tags := extractTokens(caption, '#')
	if len(tags) > 0 {
		parts = append(parts, "tags:"+strings.Join(tags, ","))
	}
	mentions := extractTokens(caption, '@')
	if len(mentions) > 0 {
		parts = append(parts, "mentions:"+strings.Join(mentions, ","))
	}

	return strings.Join(parts, " ")
}

func extractTokens(text string, marker byte) []string {
	seen := make(map[string]struct{})
	var order []string
	for _, field := range strings.Fields(text) {
		if len(field) < 2 || field[0] != marker {
			continue
		}
		token := strings.ToLower(strings.TrimFunc(field[1:], func(r rune) bool {
			return !isTokenRune(r)
		}))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; !ok {
			seen[token] = struct{}{}
			order = append(order, token)
		}
	}
	return order
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.':
		return true
	default:
		return false
	}
}
