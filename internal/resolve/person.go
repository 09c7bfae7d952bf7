package resolve

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/cinegraph/awards-cli/internal/model"
	"github.com/cinegraph/awards-cli/internal/segment"
	"github.com/cinegraph/awards-cli/internal/store"
	"github.com/cinegraph/awards-cli/internal/wiki"
)

// Fetcher is the document collaborator surface the resolvers need.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

var (
	parenContentRe   = regexp.MustCompile(`\(.*?\)`)
	bracketContentRe = regexp.MustCompile(`\[.*?\]`)
)

// PersonCandidate is one name awaiting resolution, optionally with the
// reference link captured where the name appeared.
type PersonCandidate struct {
	Parts model.NameParts
	Link  string
}

// PersonResolver follows a person's own page to pick up birth and death
// facts, handles disambiguation retries, and resolves the candidate
// against the store by (first, last, birth date).
type PersonResolver struct {
	fetch Fetcher
	store store.Store
	base  string
	log   *zap.Logger
}

// NewPersonResolver creates a PersonResolver rooted at the given page base.
func NewPersonResolver(fetch Fetcher, st store.Store, base string) *PersonResolver {
	return &PersonResolver{
		fetch: fetch,
		store: st,
		base:  base,
		log:   zap.L().With(zap.String("component", "person_resolver")),
	}
}

// Resolve enriches one candidate from their page and resolves it against
// the store. A failed fetch still resolves the bare name; only an empty
// candidate is NotFound and only a store error is Failed.
func (r *PersonResolver) Resolve(ctx context.Context, cand PersonCandidate, roleHint string) Outcome[int64] {
	if len(cand.Parts) == 0 {
		return NotFound[int64]()
	}

	rec := r.Biography(ctx, cand, roleHint)
	id, created, err := r.store.ResolveOrCreatePerson(ctx, cand.Parts.Person(rec))
	if err != nil {
		return Failed[int64](err)
	}
	if created {
		r.log.Info("person created",
			zap.String("name", strings.Join(cand.Parts, " ")),
			zap.String("birth_date", rec.BirthDate),
			zap.Int64("person_id", id),
		)
	} else {
		r.log.Debug("person already present",
			zap.String("name", strings.Join(cand.Parts, " ")),
			zap.Int64("person_id", id),
		)
	}
	return Found(id)
}

// ResolveAll is the batch form: one BirthRecord per candidate, empty on
// fetch failure, so callers can pair records back up positionally.
func (r *PersonResolver) ResolveAll(ctx context.Context, cands []PersonCandidate, roleHint string) []model.BirthRecord {
	records := make([]model.BirthRecord, len(cands))
	for i, cand := range cands {
		records[i] = r.Biography(ctx, cand, roleHint)
	}
	return records
}

// Biography fetches the candidate's page and extracts birth date,
// birthplace and death date, with fallbacks at each step. Every failure
// degrades to an empty field; the pipeline proceeds without them.
func (r *PersonResolver) Biography(ctx context.Context, cand PersonCandidate, roleHint string) model.BirthRecord {
	doc := r.fetchPage(ctx, cand, roleHint)
	if doc == nil {
		return model.BirthRecord{}
	}
	return extractBiography(doc, strings.Join(cand.Parts, " "))
}

// fetchPage resolves the candidate's page, retrying once with a
// role-qualified URL when a hatnote mentions the role hint. Returns nil
// on fetch failure.
func (r *PersonResolver) fetchPage(ctx context.Context, cand PersonCandidate, roleHint string) *goquery.Document {
	name := strings.Join(cand.Parts, " ")

	url := wiki.PageURL(r.base, name)
	if cand.Link != "" {
		url = wiki.URLFromHref(r.base, cand.Link)
	}

	doc, err := r.fetch.Fetch(ctx, url)
	if err != nil {
		r.log.Warn("person page fetch failed", zap.String("url", url), zap.Error(err))
		return nil
	}

	// A direct reference link is already unambiguous.
	if cand.Link != "" || roleHint == "" {
		return doc
	}

	retry := false
	wiki.Hatnotes(doc).EachWithBreak(func(_ int, note *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(note.Text()), strings.ToLower(roleHint)) {
			retry = true
			return false
		}
		return true
	})
	if !retry {
		return doc
	}

	altURL := wiki.RoleQualifiedURL(r.base, name, roleHint)
	altDoc, err := r.fetch.Fetch(ctx, altURL)
	if err != nil || wiki.IsMissingArticle(altDoc) {
		r.log.Debug("disambiguation retry failed, keeping original page",
			zap.String("url", altURL),
		)
		return doc
	}
	r.log.Info("disambiguation resolved via role-qualified page",
		zap.String("name", name),
		zap.String("role", roleHint),
	)
	return altDoc
}

// extractBiography walks the biography fact table rows for the Born and
// Died markers.
func extractBiography(doc *goquery.Document, selfName string) model.BirthRecord {
	var rec model.BirthRecord

	infobox := wiki.PersonInfobox(doc)
	if infobox.Length() == 0 {
		return rec
	}

	wiki.Rows(infobox).Each(func(_ int, row *goquery.Selection) {
		header := wiki.RowHeader(row)
		if header == "" {
			return
		}
		if strings.Contains(header, "Born") {
			cell := wiki.RowCell(row)
			if bday := strings.TrimSpace(row.Find("span.bday").First().Text()); bday != "" {
				rec.BirthDate = segment.NormalizeISODate(bday)
			}
			rec.BirthCountry = birthplace(row, cell, selfName, rec.BirthDate)
		}
		if strings.Contains(header, "Died") {
			if dday := strings.TrimSpace(row.Find("span.dday").First().Text()); dday != "" {
				rec.DeathDate = segment.NormalizeISODate(dday)
			}
		}
	})
	return rec
}

// birthplace prefers the dedicated birthplace node, falling back to
// free-text parsing of the whole cell. In both cases the last
// comma-separated segment wins, with numeric fragments, citation leftovers
// and the person's own name discarded.
func birthplace(row, cell *goquery.Selection, selfName, birthDate string) string {
	if div := row.Find("div.birthplace").First(); div.Length() > 0 {
		text := strings.NewReplacer(")", "", "]", "").Replace(strings.TrimSpace(div.Text()))
		return lastPlaceSegment(text, selfName)
	}

	if cell.Length() == 0 {
		return ""
	}
	text := wiki.CompactText(cell)
	if birthDate != "" {
		text = strings.ReplaceAll(text, birthDate, "")
	}
	text = parenContentRe.ReplaceAllString(text, "")
	text = bracketContentRe.ReplaceAllString(text, "")
	return lastPlaceSegment(text, selfName)
}

// lastPlaceSegment takes the last usable comma-separated segment.
func lastPlaceSegment(text, selfName string) string {
	parts := strings.Split(text, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		p := strings.TrimSpace(parts[i])
		if p == "" || isNumericFragment(p) || strings.EqualFold(p, selfName) {
			continue
		}
		return p
	}
	return ""
}

func isNumericFragment(s string) bool {
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits > 0 && digits*2 >= len(s)
}
