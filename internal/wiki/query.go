package wiki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// EventInfobox returns the ceremony/film fact table, or an empty selection.
func EventInfobox(doc *goquery.Document) *goquery.Selection {
	return doc.Find("table.infobox.vevent").First()
}

// PersonInfobox returns the biography fact table on a person's page.
func PersonInfobox(doc *goquery.Document) *goquery.Selection {
	return doc.Find("table.infobox.vcard").First()
}

// Rows returns the labeled rows of a fact table.
func Rows(infobox *goquery.Selection) *goquery.Selection {
	return infobox.Find("tr")
}

// RowHeader returns the trimmed header text of a fact-table row, or "".
func RowHeader(row *goquery.Selection) string {
	return strings.TrimSpace(row.Find("th").First().Text())
}

// RowCell returns the value cell of a fact-table row.
func RowCell(row *goquery.Selection) *goquery.Selection {
	return row.Find("td").First()
}

// Hatnotes returns disambiguation notes near the top of an article.
func Hatnotes(doc *goquery.Document) *goquery.Selection {
	return doc.Find("div.hatnote.navigation-not-searchable")
}

// FirstHeading returns the article's main heading text.
func FirstHeading(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("h1#firstHeading").First().Text())
}

// IsMissingArticle reports whether the page is a "no such article"
// placeholder rather than real content.
func IsMissingArticle(doc *goquery.Document) bool {
	return strings.Contains(doc.Find("body").Text(), "Wikipedia does not have an article")
}

// ListItems returns the trimmed text of each list item in a cell, in order.
func ListItems(cell *goquery.Selection) []string {
	var items []string
	cell.Find("li").Each(func(_ int, li *goquery.Selection) {
		if text := CompactText(li); text != "" {
			items = append(items, text)
		}
	})
	return items
}

// LinkTexts returns the trimmed anchor texts of a cell, skipping
// citation-only anchors.
func LinkTexts(cell *goquery.Selection) []string {
	var texts []string
	cell.Find("a").Each(func(_ int, a *goquery.Selection) {
		if IsCitationAnchor(a) {
			return
		}
		if text := strings.TrimSpace(a.Text()); text != "" {
			texts = append(texts, text)
		}
	})
	return texts
}

// LinkCount counts the anchors in a cell. The site-cell shape decision
// (one venue vs several) keys off this.
func LinkCount(cell *goquery.Selection) int {
	return cell.Find("a").Length()
}

// FirstLinkHref returns the href of the first non-citation anchor, or "".
func FirstLinkHref(cell *goquery.Selection) string {
	href := ""
	cell.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if IsCitationAnchor(a) {
			return true
		}
		if h, ok := a.Attr("href"); ok && h != "" {
			href = h
			return false
		}
		return true
	})
	return href
}

// IsCitationAnchor reports whether an anchor is a footnote marker rather
// than a subject link.
func IsCitationAnchor(a *goquery.Selection) bool {
	if href, ok := a.Attr("href"); ok && strings.HasPrefix(href, "#") {
		return true
	}
	text := strings.TrimSpace(a.Text())
	return strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]")
}

// TextWithNewlines renders a cell's text with a newline between adjacent
// text fragments, preserving the visual line structure of multi-line
// cells. Mirrors get_text(separator="\n") semantics.
func TextWithNewlines(sel *goquery.Selection) string {
	var fragments []string
	for _, node := range sel.Nodes {
		collectText(node, &fragments)
	}
	return strings.TrimSpace(strings.Join(fragments, "\n"))
}

func collectText(n *html.Node, fragments *[]string) {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*fragments = append(*fragments, text)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, fragments)
	}
}

// CompactText returns the selection's text with all whitespace runs
// collapsed to single spaces.
func CompactText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
