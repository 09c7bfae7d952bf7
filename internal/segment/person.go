package segment

import "strings"

// PersonName splits a credited name into its parts, dropping bracketed
// citations and tokens that are cross-reference markers rather than name
// material (a #-prefixed anchor or a raw reference path).
func PersonName(raw string) []string {
	clean := bracketRe.ReplaceAllString(raw, "")

	var parts []string
	for _, tok := range strings.Fields(clean) {
		if isReferenceToken(tok) {
			continue
		}
		parts = append(parts, tok)
	}
	return parts
}

// PersonNames applies PersonName to each entry of a list cell.
func PersonNames(items []string) [][]string {
	var out [][]string
	for _, item := range items {
		if parts := PersonName(item); len(parts) > 0 {
			out = append(out, parts)
		}
	}
	return out
}

func isReferenceToken(tok string) bool {
	return strings.HasPrefix(tok, "#") ||
		strings.HasPrefix(tok, "http://") ||
		strings.HasPrefix(tok, "https://") ||
		strings.HasPrefix(tok, "/wiki/")
}

// SplitJoinedNames breaks a run of names glued together without separators
// ("Raj KapoorKaty Mulligan") at each lowercase-to-uppercase boundary, then
// splits on commas and newlines. Used as the last-resort producer cell
// fallback when the cell carries neither list items nor links.
func SplitJoinedNames(raw string) []string {
	var b strings.Builder
	runes := []rune(raw)
	for i, r := range runes {
		if i > 0 && isLower(runes[i-1]) && isUpper(r) {
			b.WriteByte('\n')
		}
		b.WriteRune(r)
	}

	var names []string
	for _, name := range commaLineRe.Split(b.String(), -1) {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
