// Package segment provides pure text segmentation for infobox cell values:
// locations, person names, dates and durations. All functions are total;
// malformed input yields an empty result, never a panic or an error, except
// Date which reports a parse failure the caller can choose to ignore.
package segment

import (
	"regexp"
	"strings"
)

var (
	bracketRe   = regexp.MustCompile(`(?s)\[.*?\]`)
	parenKeepRe = regexp.MustCompile(`\((.*?)\)`)
	inWordRe    = regexp.MustCompile(`\s+in\s+`)
	commaLineRe = regexp.MustCompile(`[,\n]+`)
	blockRe     = regexp.MustCompile(`\n\s*\n`)
	lineNoiseRe = regexp.MustCompile(`\n\[\s*.*?\s*\]\n`)
	commaSepRe  = regexp.MustCompile(`,\s*`)
)

// Location splits a single-venue site cell into ordered location tokens.
// Bracketed citations are dropped, parenthesised content is kept without
// the parentheses, and "X in Y" becomes "X, Y" before splitting on commas
// and newlines.
func Location(raw string) []string {
	clean := bracketRe.ReplaceAllString(raw, "")
	clean = parenKeepRe.ReplaceAllString(clean, "$1")
	clean = inWordRe.ReplaceAllString(clean, ", ")

	var parts []string
	for _, p := range commaLineRe.Split(clean, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// MultiLocation splits a site cell that groups several physically distinct
// venues into one token list per venue. Blocks are separated by blank
// lines; within a block the first line is the venue name and later lines
// contribute comma-split detail tokens. Punctuation-only lines merge into
// the previous line instead of starting a new token, and a line leading
// with a comma but carrying text becomes its own token.
func MultiLocation(raw string) [][]string {
	raw = lineNoiseRe.ReplaceAllString(raw, "\n")

	var locations [][]string
	for _, block := range blockRe.Split(strings.TrimSpace(raw), -1) {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if low := strings.ToLower(line); low == "and" || low == "in" {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}

		var cleaned []string
		for _, line := range lines {
			switch {
			case strings.HasPrefix(line, ","):
				stripped := strings.TrimSpace(strings.TrimLeft(line, ","))
				if stripped == "" {
					if len(cleaned) > 0 {
						cleaned[len(cleaned)-1] += " "
					} else {
						cleaned = append(cleaned, line)
					}
				} else {
					cleaned = append(cleaned, stripped)
				}
			case punctuationOnly(line):
				if len(cleaned) > 0 {
					cleaned[len(cleaned)-1] += " " + strings.TrimSpace(strings.TrimLeft(line, ","))
				} else {
					cleaned = append(cleaned, line)
				}
			default:
				cleaned = append(cleaned, line)
			}
		}

		for i, line := range cleaned {
			cleaned[i] = strings.TrimSpace(strings.NewReplacer("(", "", ")", "").Replace(line))
		}

		venue := cleaned[0]
		details := []string{venue}
		for _, line := range cleaned[1:] {
			for _, part := range commaSepRe.Split(line, -1) {
				if part = strings.TrimSpace(part); part != "" {
					details = append(details, part)
				}
			}
		}
		locations = append(locations, details)
	}
	return locations
}

func punctuationOnly(line string) bool {
	for _, r := range line {
		if !strings.ContainsRune(",.;:", r) {
			return false
		}
	}
	return len(line) > 0
}
