// Package edition orchestrates one ceremony: it walks the ceremony page's
// fact table for the edition record and its role connections, then parses
// the nomination tables, resolving every referenced venue, person and
// movie before the dependent rows are written.
package edition

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cinegraph/awards-cli/internal/export"
	"github.com/cinegraph/awards-cli/internal/model"
	"github.com/cinegraph/awards-cli/internal/nominations"
	"github.com/cinegraph/awards-cli/internal/resolve"
	"github.com/cinegraph/awards-cli/internal/segment"
	"github.com/cinegraph/awards-cli/internal/store"
	"github.com/cinegraph/awards-cli/internal/wiki"
)

// Exporter is the optional side channel receiving one record per built
// edition.
type Exporter interface {
	Append(rec export.Record) error
}

// Builder builds one award edition end to end.
type Builder struct {
	fetch    resolve.Fetcher
	store    store.Store
	people   *resolve.PersonResolver
	venues   *resolve.VenueResolver
	movies   *resolve.MovieResolver
	exporter Exporter
	base     string
	log      *zap.Logger
}

// NewBuilder creates a Builder. The exporter may be nil to disable the
// CSV side channel.
func NewBuilder(fetch resolve.Fetcher, st store.Store, people *resolve.PersonResolver, venues *resolve.VenueResolver, movies *resolve.MovieResolver, exporter Exporter, base string) *Builder {
	return &Builder{
		fetch:    fetch,
		store:    st,
		people:   people,
		venues:   venues,
		movies:   movies,
		exporter: exporter,
		base:     base,
		log:      zap.L().With(zap.String("component", "edition_builder")),
	}
}

// roleGroup collects the person candidates of one role-bearing infobox row.
type roleGroup struct {
	role       string
	hint       string
	candidates []resolve.PersonCandidate
}

// editionFacts accumulates one ceremony page's extracted fields.
type editionFacts struct {
	date             string
	siteLists        [][]string
	roles            []roleGroup
	network          string
	duration         int
	bestPictureTitle string
	bestPictureLink  string
}

// Build processes edition n: fetch, extract, resolve, persist. Venues are
// persisted first, then the edition rows, then the role connections and
// nominations, because the later rows hold foreign keys obtained from the
// earlier steps. An edition already in the store is skipped entirely.
func (b *Builder) Build(ctx context.Context, n int) error {
	exists, err := b.store.EditionExists(ctx, n)
	if err != nil {
		return eris.Wrapf(err, "edition: existence check for %d", n)
	}
	if exists {
		b.log.Info("edition already stored, skipping", zap.Int("edition", n))
		return nil
	}

	url := wiki.EditionURL(b.base, n)
	doc, err := b.fetch.Fetch(ctx, url)
	if err != nil {
		return eris.Wrapf(err, "edition: fetch ceremony page %d", n)
	}

	infobox := wiki.EventInfobox(doc)
	if infobox.Length() == 0 {
		return eris.Errorf("edition: ceremony page %d has no fact table", n)
	}

	facts := b.extract(infobox)

	editionID, venueIDs, err := b.persistEdition(ctx, n, facts)
	if err != nil {
		return err
	}
	if err := b.persistRoles(ctx, editionID, facts.roles); err != nil {
		return err
	}
	if facts.bestPictureTitle != "" || facts.bestPictureLink != "" {
		out := b.movies.Resolve(ctx, facts.bestPictureTitle, facts.bestPictureLink)
		if out.Status == resolve.StatusFailed {
			return eris.Wrapf(out.Err, "edition: best picture for %d", n)
		}
	}
	if err := b.persistNominations(ctx, editionID, doc); err != nil {
		return err
	}

	if b.exporter != nil {
		var venueID int64
		if len(venueIDs) > 0 {
			venueID = venueIDs[0]
		}
		rec := export.Record{
			Edition:  n,
			Year:     yearOf(facts.date),
			Date:     facts.date,
			VenueID:  venueID,
			Duration: facts.duration,
			Network:  facts.network,
		}
		if err := b.exporter.Append(rec); err != nil {
			b.log.Warn("edition export append failed", zap.Int("edition", n), zap.Error(err))
		}
	}

	b.log.Info("edition built",
		zap.Int("edition", n),
		zap.String("date", facts.date),
		zap.Int("venues", len(venueIDs)),
	)
	return nil
}

// extract walks the fact-table rows and dispatches each by its header.
func (b *Builder) extract(infobox *goquery.Selection) *editionFacts {
	facts := &editionFacts{}

	wiki.Rows(infobox).Each(func(_ int, row *goquery.Selection) {
		header := strings.ToLower(wiki.RowHeader(row))
		if header == "" {
			return
		}
		cell := wiki.RowCell(row)
		if cell.Length() == 0 {
			return
		}

		switch {
		case strings.Contains(header, "date"):
			date, err := segment.Date(wiki.CompactText(cell))
			if err != nil {
				b.log.Warn("unparseable ceremony date", zap.String("raw", wiki.CompactText(cell)))
				return
			}
			facts.date = date
		case strings.Contains(header, "site"):
			facts.siteLists = siteLists(cell)
		case strings.Contains(header, "hosted by"):
			facts.roles = append(facts.roles, roleGroup{
				role: "Host", candidates: personCandidates(cell, nil),
			})
		case strings.Contains(header, "preshow hosts"):
			facts.roles = append(facts.roles, roleGroup{
				role: "Preshow Host", candidates: personCandidates(cell, nil),
			})
		case strings.Contains(header, "produced by"):
			facts.roles = append(facts.roles, roleGroup{
				role: "Producer", hint: "producer",
				candidates: personCandidates(cell, segment.SplitJoinedNames),
			})
		case strings.Contains(header, "directed by"):
			facts.roles = append(facts.roles, roleGroup{
				role: "Director", hint: "director",
				candidates: personCandidates(cell, nil),
			})
		case strings.Contains(header, "network"):
			facts.network = strings.Join(wiki.LinkTexts(cell), ", ")
		case strings.Contains(header, "duration"):
			facts.duration = segment.Duration(wiki.CompactText(cell))
		case strings.Contains(header, "best picture"):
			facts.bestPictureTitle = wiki.CompactText(cell)
			facts.bestPictureLink = wiki.FirstLinkHref(cell)
		}
	})
	return facts
}

// siteLists segments the site cell into one token list per venue. More
// than three reference links means the cell groups several physically
// distinct venues.
func siteLists(cell *goquery.Selection) [][]string {
	raw := wiki.TextWithNewlines(cell)
	if wiki.LinkCount(cell) > 3 {
		return segment.MultiLocation(raw)
	}
	if tokens := segment.Location(raw); len(tokens) > 0 {
		return [][]string{tokens}
	}
	return nil
}

// personCandidates extracts the people named in a role cell, preferring
// list items, then links, then the raw cell text run through the fallback
// splitter (or taken as one name when no splitter applies). Emcee
// mentions are stage directions, not hosts.
func personCandidates(cell *goquery.Selection, fallbackSplit func(string) []string) []resolve.PersonCandidate {
	var cands []resolve.PersonCandidate
	add := func(name, href string) {
		if strings.Contains(strings.ToLower(name), "emcee") {
			return
		}
		if parts := segment.PersonName(name); len(parts) > 0 {
			cands = append(cands, resolve.PersonCandidate{Parts: parts, Link: href})
		}
	}

	if items := cell.Find("li"); items.Length() > 0 {
		items.Each(func(_ int, li *goquery.Selection) {
			add(wiki.CompactText(li), wiki.FirstLinkHref(li))
		})
		return cands
	}

	found := false
	cell.Find("a").Each(func(_ int, a *goquery.Selection) {
		if wiki.IsCitationAnchor(a) {
			return
		}
		name := strings.TrimSpace(a.Text())
		if name == "" {
			return
		}
		found = true
		href, _ := a.Attr("href")
		add(name, href)
	})
	if found {
		return cands
	}

	raw := wiki.CompactText(cell)
	if fallbackSplit != nil {
		for _, name := range fallbackSplit(raw) {
			add(name, "")
		}
		return cands
	}
	add(raw, "")
	return cands
}

// persistEdition writes the venues and then one edition row per venue.
// The first row's id anchors the edition's connection rows.
func (b *Builder) persistEdition(ctx context.Context, n int, facts *editionFacts) (int64, []int64, error) {
	venueIDs, err := b.venues.ResolveAll(ctx, facts.siteLists)
	if err != nil {
		return 0, nil, eris.Wrapf(err, "edition: venues for %d", n)
	}

	var editionID int64
	for i, venueID := range venueIDs {
		id, created, err := b.store.InsertEditionIfAbsent(ctx, model.AwardEdition{
			Edition:  n,
			Year:     yearOf(facts.date),
			Date:     facts.date,
			VenueID:  venueID,
			Duration: facts.duration,
			Network:  facts.network,
		})
		if err != nil {
			return 0, nil, eris.Wrapf(err, "edition: insert edition %d", n)
		}
		if i == 0 {
			editionID = id
		}
		if !created {
			b.log.Debug("edition row already present",
				zap.Int("edition", n), zap.Int64("venue_id", venueID))
		}
	}

	if editionID == 0 {
		// A ceremony page without a usable site cell still gets its
		// edition recorded, with no venue reference.
		id, _, err := b.store.InsertEditionIfAbsent(ctx, model.AwardEdition{
			Edition:  n,
			Year:     yearOf(facts.date),
			Date:     facts.date,
			Duration: facts.duration,
			Network:  facts.network,
		})
		if err != nil {
			return 0, nil, eris.Wrapf(err, "edition: insert edition %d", n)
		}
		editionID = id
	}
	return editionID, venueIDs, nil
}

// persistRoles resolves each role group's people and links them to the
// edition. Unresolvable names are skipped; store errors abort.
func (b *Builder) persistRoles(ctx context.Context, editionID int64, roles []roleGroup) error {
	for _, group := range roles {
		positionID, err := b.store.ResolveOrCreatePosition(ctx, group.role)
		if err != nil {
			return eris.Wrapf(err, "edition: position %s", group.role)
		}
		for _, cand := range group.candidates {
			out := b.people.Resolve(ctx, cand, group.hint)
			switch out.Status {
			case resolve.StatusFound:
				if _, err := b.store.LinkEditionPerson(ctx, editionID, out.Value, positionID); err != nil {
					return eris.Wrapf(err, "edition: link %s", group.role)
				}
			case resolve.StatusFailed:
				return eris.Wrapf(out.Err, "edition: resolve %s", group.role)
			default:
				b.log.Debug("role cell entry had no resolvable name", zap.String("role", group.role))
			}
		}
	}
	return nil
}

// persistNominations parses the page's nomination tables and writes one
// nomination row per (category, nominee), linking credited people.
func (b *Builder) persistNominations(ctx context.Context, editionID int64, doc *goquery.Document) error {
	blocks, links := nominations.Extract(doc)

	for _, block := range blocks {
		categoryID, err := b.store.ResolveOrCreateCategory(ctx, block.Name)
		if err != nil {
			return eris.Wrapf(err, "edition: category %s", block.Name)
		}

		for _, nominee := range block.Nominees {
			link := nominee.Link
			if link == "" {
				link = links[nominee.Title]
			}
			out := b.movies.Resolve(ctx, nominee.Title, link)
			if out.Status == resolve.StatusFailed {
				return eris.Wrapf(out.Err, "edition: nominee %s", nominee.Title)
			}
			if out.Status != resolve.StatusFound {
				b.log.Debug("nominee had no resolvable title", zap.String("category", block.Name))
				continue
			}

			nominationID, err := b.store.InsertNomination(ctx, model.Nomination{
				EditionID:  editionID,
				MovieID:    out.Value,
				CategoryID: categoryID,
				Won:        nominee.Won,
			})
			if err != nil {
				return eris.Wrapf(err, "edition: nomination %s", nominee.Title)
			}

			for _, credit := range nominee.Credits {
				cand := resolve.PersonCandidate{
					Parts: segment.PersonName(credit),
					Link:  links[credit],
				}
				personOut := b.people.Resolve(ctx, cand, "producer")
				switch personOut.Status {
				case resolve.StatusFound:
					if _, err := b.store.LinkNominationPerson(ctx, nominationID, personOut.Value); err != nil {
						return eris.Wrapf(err, "edition: nomination person %s", credit)
					}
				case resolve.StatusFailed:
					return eris.Wrapf(personOut.Err, "edition: nomination person %s", credit)
				}
			}
		}
	}
	return nil
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
