package wiki

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestEventInfobox_Found(t *testing.T) {
	doc := docFromHTML(t, `<table class="infobox vevent"><tr><th>Date</th><td>March 2, 2025</td></tr></table>`)
	box := EventInfobox(doc)
	assert.Equal(t, 1, box.Length())
	assert.Equal(t, 1, Rows(box).Length())
}

func TestEventInfobox_Missing(t *testing.T) {
	doc := docFromHTML(t, `<p>nothing here</p>`)
	assert.Equal(t, 0, EventInfobox(doc).Length())
}

func TestRowHeaderAndCell(t *testing.T) {
	doc := docFromHTML(t, `<table><tr><th> Hosted by </th><td>Conan O'Brien</td></tr></table>`)
	row := doc.Find("tr").First()
	assert.Equal(t, "Hosted by", RowHeader(row))
	assert.Equal(t, "Conan O'Brien", CompactText(RowCell(row)))
}

func TestHatnotes(t *testing.T) {
	doc := docFromHTML(t, `<div class="hatnote navigation-not-searchable">This article is about the director.</div>`)
	assert.Equal(t, 1, Hatnotes(doc).Length())
}

func TestFirstHeading(t *testing.T) {
	doc := docFromHTML(t, `<h1 id="firstHeading">The Artist</h1>`)
	assert.Equal(t, "The Artist", FirstHeading(doc))
}

func TestListItems(t *testing.T) {
	doc := docFromHTML(t, `<table><tr><td><ul><li>Emma Thomas</li><li>  Charles  Roven </li><li></li></ul></td></tr></table>`)
	assert.Equal(t, []string{"Emma Thomas", "Charles Roven"}, ListItems(doc.Find("td")))
}

func TestLinkTexts_SkipsCitations(t *testing.T) {
	doc := docFromHTML(t, `<table><tr><td><a href="/wiki/ABC">ABC</a><a href="#cite_note-1">[1]</a></td></tr></table>`)
	assert.Equal(t, []string{"ABC"}, LinkTexts(doc.Find("td")))
}

func TestFirstLinkHref_SkipsCitations(t *testing.T) {
	doc := docFromHTML(t, `<table><tr><td><a href="#cite_note-1">[1]</a><a href="/wiki/Dolby_Theatre">Dolby Theatre</a></td></tr></table>`)
	assert.Equal(t, "/wiki/Dolby_Theatre", FirstLinkHref(doc.Find("td")))
}

func TestTextWithNewlines(t *testing.T) {
	doc := docFromHTML(t, `<table><tr><td>Dolby Theatre<br/>Hollywood, Los Angeles</td></tr></table>`)
	assert.Equal(t, "Dolby Theatre\nHollywood, Los Angeles", TextWithNewlines(doc.Find("td")))
}

func TestIsMissingArticle(t *testing.T) {
	doc := docFromHTML(t, `<body><p>Wikipedia does not have an article with this exact name.</p></body>`)
	assert.True(t, IsMissingArticle(doc))
}
