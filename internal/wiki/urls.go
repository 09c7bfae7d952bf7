package wiki

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the article root all page URLs are built under.
const DefaultBaseURL = "https://en.wikipedia.org/wiki"

var ordinalSuffix = [10]string{"th", "st", "nd", "rd", "th", "th", "th", "th", "th", "th"}

// Ordinal renders a number with its English ordinal suffix (1st, 2nd, 11th).
func Ordinal(n int) string {
	if rem := n % 100; rem >= 11 && rem <= 13 {
		return fmt.Sprintf("%dth", n)
	}
	return fmt.Sprintf("%d%s", n, ordinalSuffix[n%10])
}

// EditionURL builds the ceremony page address for edition n.
func EditionURL(base string, n int) string {
	return fmt.Sprintf("%s/%s_Academy_Awards", base, Ordinal(n))
}

// PageURL builds a subject page address from its title, with spaces
// replaced by underscores.
func PageURL(base, title string) string {
	return base + "/" + strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

// RoleQualifiedURL builds the disambiguation-retry variant of a page
// address, suffixing the role in parentheses.
func RoleQualifiedURL(base, title, role string) string {
	return fmt.Sprintf("%s_(%s)", PageURL(base, title), role)
}

// URLFromHref resolves a reference link captured from a document into a
// fetchable address. Relative /wiki/ paths are joined onto the base;
// absolute links pass through.
func URLFromHref(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return base + "/" + strings.TrimPrefix(strings.TrimPrefix(href, "/wiki/"), "/")
}
