// Package nominations parses a ceremony page's nomination tables into
// category blocks of ordered nominee entries. Two table layouts occur in
// the wild; the scan tries the common one first and falls back to the
// older free-standing-label layout only when the first yields nothing.
package nominations

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/cinegraph/awards-cli/internal/wiki"
)

// Nominee is one entry of a category's nominee list. Title carries the
// film title when the entry had a title–credits separator, otherwise the
// whole entry text. The first entry of each category is the winner.
type Nominee struct {
	Title   string
	Credits []string
	Link    string
	Won     bool
}

// CategoryBlock is one category label with its nominees in page order.
type CategoryBlock struct {
	Name     string
	Nominees []Nominee
}

var (
	bracketNoiseRe = regexp.MustCompile(`\[.*?\]`)
	parenNoiseRe   = regexp.MustCompile(`\(.*?\)`)
	designationRe  = regexp.MustCompile(`[‡†*]`)
	separatorRe    = regexp.MustCompile(`\s+[–—-]\s+`)
	conjunctionRe  = regexp.MustCompile(`(?i)\s+and\s+`)
	capitalRunRe   = regexp.MustCompile(`[A-Z][\pL'.\-]*(?:\s+[A-Z][\pL'.\-]*)+`)
)

// roleNouns are credit-string fragments that label rather than name.
var roleNouns = map[string]bool{
	"producer":  true,
	"producers": true,
	"winner":    true,
	"winners":   true,
}

// Extract scans the page for nomination tables and returns the category
// blocks in page order, plus a name-to-link lookup collected from the
// nominee anchors so callers can resolve a nominee without re-deriving a
// URL from free text.
func Extract(doc *goquery.Document) ([]CategoryBlock, map[string]string) {
	log := zap.L().With(zap.String("component", "nominations"))
	links := make(map[string]string)

	blocks := fromTableCells(doc, links)
	if len(blocks) == 0 {
		log.Debug("no cell-labeled categories found, trying free-standing labels")
		blocks = fromFreeLabels(doc, links)
	}

	log.Info("nomination tables parsed", zap.Int("categories", len(blocks)))
	return blocks, links
}

// fromTableCells handles the common layout: a table cell holding a bold
// category label and the nominee list together. Bold text nested inside
// the list itself is nominee emphasis, not a label.
func fromTableCells(doc *goquery.Document, links map[string]string) []CategoryBlock {
	var blocks []CategoryBlock
	doc.Find("td").Each(func(_ int, cell *goquery.Selection) {
		label := ""
		cell.Find("b").EachWithBreak(func(_ int, b *goquery.Selection) bool {
			if b.ParentsFiltered("ul").Length() > 0 {
				return true
			}
			label = categoryName(b)
			return false
		})
		if label == "" {
			return
		}
		list := cell.Find("ul").First()
		if list.Length() == 0 {
			return
		}
		if block, ok := parseList(label, list, links); ok {
			blocks = append(blocks, block)
		}
	})
	return blocks
}

// fromFreeLabels handles the older layout: a bold label in running text
// with the nominee list as the next element.
func fromFreeLabels(doc *goquery.Document, links map[string]string) []CategoryBlock {
	var blocks []CategoryBlock
	doc.Find("b").Each(func(_ int, b *goquery.Selection) {
		if b.ParentsFiltered("ul").Length() > 0 || b.ParentsFiltered("td").Length() > 0 {
			return
		}
		label := categoryName(b)
		if label == "" {
			return
		}
		list := b.NextFiltered("ul")
		if list.Length() == 0 {
			list = b.Parent().NextFiltered("ul")
		}
		if list.Length() == 0 {
			return
		}
		if block, ok := parseList(label, list, links); ok {
			blocks = append(blocks, block)
		}
	})
	return blocks
}

func categoryName(b *goquery.Selection) string {
	return strings.TrimSpace(bracketNoiseRe.ReplaceAllString(wiki.CompactText(b), ""))
}

// parseList turns one nominee list into a category block. Only the
// top-level items count as nominees; nested lists carry per-nominee
// detail the extraction ignores.
func parseList(label string, list *goquery.Selection, links map[string]string) (CategoryBlock, bool) {
	block := CategoryBlock{Name: label}

	list.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		entry := parseEntry(li, links)
		if entry.Title == "" {
			return
		}
		entry.Won = len(block.Nominees) == 0
		block.Nominees = append(block.Nominees, entry)
	})
	return block, len(block.Nominees) > 0
}

// parseEntry splits one nominee line into title and credits and records
// its anchors in the link lookup.
func parseEntry(li *goquery.Selection, links map[string]string) Nominee {
	li.Find("a").Each(func(_ int, a *goquery.Selection) {
		if wiki.IsCitationAnchor(a) {
			return
		}
		name := strings.TrimSpace(a.Text())
		href, _ := a.Attr("href")
		if name != "" && href != "" {
			links[name] = href
		}
	})

	text := wiki.CompactText(li)
	// Nested detail lists repeat below the headline; keep the first line only.
	if nested := li.ChildrenFiltered("ul"); nested.Length() > 0 {
		own := li.Clone()
		own.ChildrenFiltered("ul").Remove()
		text = wiki.CompactText(own)
	}

	text = designationRe.ReplaceAllString(text, "")
	text = bracketNoiseRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" {
		return Nominee{}
	}

	entry := Nominee{Link: wiki.FirstLinkHref(li)}
	if parts := separatorRe.Split(text, 2); len(parts) == 2 {
		entry.Title = strings.TrimSpace(parts[0])
		entry.Credits = splitCredits(parts[1])
	} else {
		entry.Title = text
	}
	return entry
}

// splitCredits cleans a producer/credit string and splits it into names.
// Comma splitting is preferred; a credit string with no usable commas
// falls back to matching runs of capitalized words.
func splitCredits(raw string) []string {
	clean := parenNoiseRe.ReplaceAllString(raw, "")
	clean = conjunctionRe.ReplaceAllString(clean, ", ")

	if strings.Contains(clean, ",") {
		var names []string
		for _, part := range strings.Split(clean, ",") {
			part = strings.TrimSpace(strings.Trim(part, ";."))
			if part == "" || roleNouns[strings.ToLower(part)] {
				continue
			}
			part = strings.TrimSpace(strings.TrimSuffix(part, " producer"))
			part = strings.TrimSpace(strings.TrimSuffix(part, " producers"))
			names = append(names, part)
		}
		return names
	}

	clean = strings.TrimSpace(strings.Trim(clean, ";."))
	if clean == "" || roleNouns[strings.ToLower(clean)] {
		return nil
	}
	if runs := capitalRunRe.FindAllString(clean, -1); len(runs) > 0 {
		return runs
	}
	return []string{clean}
}
