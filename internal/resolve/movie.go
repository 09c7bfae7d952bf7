package resolve

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/cinegraph/awards-cli/internal/model"
	"github.com/cinegraph/awards-cli/internal/segment"
	"github.com/cinegraph/awards-cli/internal/store"
	"github.com/cinegraph/awards-cli/internal/wiki"
)

// MovieResolver fetches a film's page, extracts crew, dates, languages,
// countries and production companies from its fact table, and persists the
// movie with its link rows. A film whose page has no fact table is stored
// as a bare name.
type MovieResolver struct {
	fetch  Fetcher
	store  store.Store
	people *PersonResolver
	base   string
	log    *zap.Logger
}

// NewMovieResolver creates a MovieResolver.
func NewMovieResolver(fetch Fetcher, st store.Store, people *PersonResolver, base string) *MovieResolver {
	return &MovieResolver{
		fetch:  fetch,
		store:  st,
		people: people,
		base:   base,
		log:    zap.L().With(zap.String("component", "movie_resolver")),
	}
}

// namedRef is a person or company name with the reference link it carried.
type namedRef struct {
	Name string
	Href string
}

// movieFacts accumulates one page's extracted fields before persistence.
type movieFacts struct {
	crew         map[string][]namedRef // role title -> credited people
	crewOrder    []string
	companies    []namedRef
	releaseDates []string
	languages    []string
	countries    []string
	runTime      int
}

// crewLabels maps fact-table row labels to role titles. Matching is by
// substring on the lower-cased header, in declaration order.
var crewLabels = []struct {
	label string
	role  string
}{
	{"directed by", "Director"},
	{"written by", "Writer"},
	{"produced by", "Producer"},
	{"starring", "Star"},
	{"cinematography", "Cinematographer"},
	{"edited by", "Editor"},
	{"music by", "Composer"},
}

// Resolve resolves a film by title, reference link, or both, returning the
// stored movie id. Fetch failures degrade to a bare name-only record when
// a title is known.
func (r *MovieResolver) Resolve(ctx context.Context, title, link string) Outcome[int64] {
	title = strings.TrimSpace(title)
	if title == "" && link == "" {
		return NotFound[int64]()
	}

	url := wiki.PageURL(r.base, title)
	if link != "" {
		url = wiki.URLFromHref(r.base, link)
	}

	doc, err := r.fetch.Fetch(ctx, url)
	if err != nil {
		r.log.Warn("movie page fetch failed", zap.String("url", url), zap.Error(err))
		if title == "" {
			return Failed[int64](err)
		}
		return r.storeBare(ctx, title)
	}

	name := wiki.FirstHeading(doc)
	if name == "" {
		name = title
	}

	infobox := wiki.EventInfobox(doc)
	if infobox.Length() == 0 {
		r.log.Info("movie has no fact table, storing bare record", zap.String("name", name))
		return r.storeBare(ctx, name)
	}

	facts := &movieFacts{crew: make(map[string][]namedRef)}
	wiki.Rows(infobox).Each(func(_ int, row *goquery.Selection) {
		r.extractRow(row, facts)
	})

	id, created, err := r.store.ResolveOrCreateMovie(ctx, model.Movie{Name: name, RunTime: facts.runTime})
	if err != nil {
		return Failed[int64](err)
	}
	r.log.Info("movie resolved",
		zap.String("name", name),
		zap.Int64("movie_id", id),
		zap.Bool("created", created),
	)

	if err := r.persistFacts(ctx, id, facts); err != nil {
		return Failed[int64](err)
	}
	return Found(id)
}

func (r *MovieResolver) storeBare(ctx context.Context, name string) Outcome[int64] {
	id, _, err := r.store.ResolveOrCreateMovie(ctx, model.Movie{Name: name})
	if err != nil {
		return Failed[int64](err)
	}
	return Found(id)
}

// extractRow dispatches one fact-table row to its field handler by label.
func (r *MovieResolver) extractRow(row *goquery.Selection, facts *movieFacts) {
	header := strings.ToLower(wiki.RowHeader(row))
	if header == "" {
		return
	}
	cell := wiki.RowCell(row)
	if cell.Length() == 0 {
		return
	}

	for _, c := range crewLabels {
		if strings.Contains(header, c.label) {
			if _, seen := facts.crew[c.role]; !seen {
				facts.crewOrder = append(facts.crewOrder, c.role)
			}
			facts.crew[c.role] = append(facts.crew[c.role], personsFromCell(cell)...)
			return
		}
	}

	switch {
	case strings.Contains(header, "production"):
		facts.companies = append(facts.companies, personsFromCell(cell)...)
	case strings.Contains(header, "release date"):
		facts.releaseDates = append(facts.releaseDates, r.releaseDates(cell)...)
	case strings.Contains(header, "running time"):
		facts.runTime = segment.Duration(wiki.CompactText(cell))
	case strings.Contains(header, "language"):
		facts.languages = append(facts.languages, valueList(cell)...)
	case strings.Contains(header, "countr"):
		facts.countries = append(facts.countries, valueList(cell)...)
	}
}

// personsFromCell extracts credited names, preferring list items, then
// top-level links, then the raw cell text as a single name. Citation-only
// anchors never count.
func personsFromCell(cell *goquery.Selection) []namedRef {
	var refs []namedRef

	if items := cell.Find("li"); items.Length() > 0 {
		items.Each(func(_ int, li *goquery.Selection) {
			name := wiki.CompactText(li)
			if name == "" {
				return
			}
			refs = append(refs, namedRef{Name: name, Href: wiki.FirstLinkHref(li)})
		})
		return refs
	}

	links := false
	cell.Find("a").Each(func(_ int, a *goquery.Selection) {
		if wiki.IsCitationAnchor(a) {
			return
		}
		name := strings.TrimSpace(a.Text())
		if name == "" {
			return
		}
		links = true
		href, _ := a.Attr("href")
		refs = append(refs, namedRef{Name: name, Href: href})
	})
	if links {
		return refs
	}

	if name := wiki.CompactText(cell); name != "" {
		refs = append(refs, namedRef{Name: name})
	}
	return refs
}

// releaseDates parses each list item or line of a release-date cell,
// skipping unparseable items with a logged skip.
func (r *MovieResolver) releaseDates(cell *goquery.Selection) []string {
	items := wiki.ListItems(cell)
	if len(items) == 0 {
		for _, line := range strings.Split(wiki.TextWithNewlines(cell), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				items = append(items, line)
			}
		}
	}

	var dates []string
	for _, item := range items {
		clean := bracketContentRe.ReplaceAllString(item, "")
		clean = parenContentRe.ReplaceAllString(clean, "")
		date, err := segment.Date(clean)
		if err != nil {
			r.log.Debug("skipping unparseable release date", zap.String("item", item))
			continue
		}
		dates = append(dates, date)
	}
	return dates
}

// valueList splits a language/country cell into individual values. List
// items and plain lines alike are stripped of bracket noise and split on
// commas, so "United States, United Kingdom" yields two values.
func valueList(cell *goquery.Selection) []string {
	items := wiki.ListItems(cell)
	if len(items) == 0 {
		items = strings.Split(wiki.TextWithNewlines(cell), "\n")
	}

	var values []string
	for _, item := range items {
		clean := bracketContentRe.ReplaceAllString(item, "")
		for _, v := range strings.Split(clean, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

// persistFacts writes the movie's link rows and crew connections. Person
// resolution failures skip that person; store errors abort.
func (r *MovieResolver) persistFacts(ctx context.Context, movieID int64, facts *movieFacts) error {
	for _, date := range facts.releaseDates {
		if _, err := r.store.LinkMovieReleaseDate(ctx, movieID, date); err != nil {
			return err
		}
	}
	for _, lang := range facts.languages {
		if _, err := r.store.LinkMovieLanguage(ctx, movieID, lang); err != nil {
			return err
		}
	}
	for _, country := range facts.countries {
		if _, err := r.store.LinkMovieCountry(ctx, movieID, country); err != nil {
			return err
		}
	}

	for _, company := range facts.companies {
		companyID, err := r.store.ResolveOrCreateCompany(ctx, company.Name)
		if err != nil {
			return err
		}
		if _, err := r.store.LinkMovieCompany(ctx, movieID, companyID); err != nil {
			return err
		}
	}

	for _, role := range facts.crewOrder {
		positionID, err := r.store.ResolveOrCreatePosition(ctx, role)
		if err != nil {
			return err
		}
		for _, ref := range facts.crew[role] {
			parts := segment.PersonName(ref.Name)
			outcome := r.people.Resolve(ctx, PersonCandidate{Parts: parts, Link: ref.Href}, strings.ToLower(role))
			switch outcome.Status {
			case StatusFound:
				if _, err := r.store.LinkMovieCrew(ctx, movieID, outcome.Value, positionID); err != nil {
					return err
				}
			case StatusFailed:
				return outcome.Err
			default:
				r.log.Debug("crew member had no resolvable name", zap.String("raw", ref.Name))
			}
		}
	}
	return nil
}
