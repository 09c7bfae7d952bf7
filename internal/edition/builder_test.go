package edition

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinegraph/awards-cli/internal/export"
	"github.com/cinegraph/awards-cli/internal/model"
	"github.com/cinegraph/awards-cli/internal/resolve"
	"github.com/cinegraph/awards-cli/internal/store/storetest"
)

const testBase = "https://example.org/wiki"

type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.fetched = append(f.fetched, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, eris.Errorf("fetch: no page at %s", url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(body))
}

type fakeExporter struct {
	records []export.Record
}

func (f *fakeExporter) Append(rec export.Record) error {
	f.records = append(f.records, rec)
	return nil
}

const ceremonyPage = `<html><body>
<h1 id="firstHeading">96th Academy Awards</h1>
<table class="infobox vevent">
<tr><th>Date</th><td>March 10, 2024</td></tr>
<tr><th>Site</th><td><a href="/wiki/Dolby_Theatre">Dolby Theatre</a> in Hollywood, Los Angeles, California</td></tr>
<tr><th>Hosted by</th><td><a href="/wiki/Jimmy_Kimmel">Jimmy Kimmel</a></td></tr>
<tr><th>Produced by</th><td><ul><li>Raj Kapoor</li><li>Katy Mullan</li></ul></td></tr>
<tr><th>Directed by</th><td><a href="/wiki/Hamish_Hamilton">Hamish Hamilton</a></td></tr>
<tr><th>Best picture</th><td><i><a href="/wiki/Oppenheimer_(film)">Oppenheimer</a></i></td></tr>
<tr><th>Network</th><td><a href="/wiki/American_Broadcasting_Company">ABC</a></td></tr>
<tr><th>Duration</th><td>3 hours, 23 minutes</td></tr>
</table>
<table><tr><td>
<b>Best Picture</b>
<ul>
<li><i><b><a href="/wiki/Oppenheimer_(film)">Oppenheimer</a></b></i> – Emma Thomas, Charles Roven ‡</li>
<li><i><a href="/wiki/Barbie_(film)">Barbie</a></i> – David Heyman</li>
</ul>
</td></tr></table>
</body></html>`

const multiVenuePage = `<html><body>
<h1 id="firstHeading">6th Academy Awards</h1>
<table class="infobox vevent">
<tr><th>Date</th><td>March 16, 1934</td></tr>
<tr><th>Site</th><td><a href="/wiki/Hollywood_Roosevelt_Hotel">Hollywood Roosevelt Hotel</a>
<a href="/wiki/Hollywood">Hollywood</a>, California

and

<a href="/wiki/Ambassador_Hotel">Ambassador Hotel</a>
<a href="/wiki/Los_Angeles">Los Angeles</a>, California</td></tr>
<tr><th>Network</th><td><a href="/wiki/NBC">NBC</a></td></tr>
</table>
</body></html>`

const venuelessPage = `<html><body>
<h1 id="firstHeading">1st Academy Awards</h1>
<table class="infobox vevent">
<tr><th>Date</th><td>May 16, 1929</td></tr>
<tr><th>Duration</th><td>15 minutes</td></tr>
</table>
</body></html>`

func newBuilder(fetch *fakeFetcher, st *storetest.Fake, exporter Exporter) *Builder {
	people := resolve.NewPersonResolver(fetch, st, testBase)
	venues := resolve.NewVenueResolver(st)
	movies := resolve.NewMovieResolver(fetch, st, people, testBase)
	return NewBuilder(fetch, st, people, venues, movies, exporter, testBase)
}

func ceremonyFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{
		testBase + "/96th_Academy_Awards": ceremonyPage,
	}}
}

func indexOf(t *testing.T, calls []string, prefix string) int {
	t.Helper()
	for i, call := range calls {
		if strings.HasPrefix(call, prefix) {
			return i
		}
	}
	t.Fatalf("no call with prefix %q in %v", prefix, calls)
	return -1
}

func TestBuild_PersistsVenueBeforeEditionBeforeConnections(t *testing.T) {
	st := storetest.New()
	b := newBuilder(ceremonyFetcher(), st, nil)

	require.NoError(t, b.Build(context.Background(), 96))

	venue := indexOf(t, st.Calls, "venue:Dolby Theatre")
	edition := indexOf(t, st.Calls, "edition:96")
	connection := indexOf(t, st.Calls, "edition_person:")
	nomination := indexOf(t, st.Calls, "nomination:")
	assert.Less(t, venue, edition)
	assert.Less(t, edition, connection)
	assert.Less(t, connection, nomination)
}

func TestBuild_EditionRecord(t *testing.T) {
	st := storetest.New()
	b := newBuilder(ceremonyFetcher(), st, nil)

	require.NoError(t, b.Build(context.Background(), 96))

	require.Len(t, st.EditionRows, 1)
	for _, e := range st.EditionRows {
		assert.Equal(t, 96, e.Edition)
		assert.Equal(t, 2024, e.Year)
		assert.Equal(t, "2024-03-10", e.Date)
		assert.Equal(t, 203, e.Duration)
		assert.Equal(t, "ABC", e.Network)
		assert.NotZero(t, e.VenueID)
	}

	require.Len(t, st.Venues, 1)
	for _, v := range st.Venues {
		assert.Equal(t, model.Venue{
			Name: "Dolby Theatre", Neighborhood: "Hollywood", City: "Los Angeles",
			State: "California", Country: "U.S.",
		}, v)
	}
}

func TestBuild_RoleConnections(t *testing.T) {
	st := storetest.New()
	b := newBuilder(ceremonyFetcher(), st, nil)

	require.NoError(t, b.Build(context.Background(), 96))

	assert.Contains(t, st.Calls, "position:Host")
	assert.Contains(t, st.Calls, "position:Producer")
	assert.Contains(t, st.Calls, "position:Director")
	assert.Contains(t, st.Calls, "person:Jimmy Kimmel")
	assert.Contains(t, st.Calls, "person:Raj Kapoor")
	assert.Contains(t, st.Calls, "person:Katy Mullan")
	assert.Contains(t, st.Calls, "person:Hamish Hamilton")
}

func TestBuild_Nominations(t *testing.T) {
	st := storetest.New()
	b := newBuilder(ceremonyFetcher(), st, nil)

	require.NoError(t, b.Build(context.Background(), 96))

	assert.Contains(t, st.Calls, "category:best picture")
	require.Len(t, st.Nominations, 2)

	var won, lost int
	for _, n := range st.Nominations {
		if n.Won {
			won++
		} else {
			lost++
		}
		assert.NotZero(t, n.EditionID)
		assert.NotZero(t, n.MovieID)
		assert.NotZero(t, n.CategoryID)
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	assert.Contains(t, st.Calls, "person:Emma Thomas")
	assert.Contains(t, st.Calls, "person:Charles Roven")
	assert.Contains(t, st.Calls, "person:David Heyman")
}

func TestBuild_SkipsStoredEdition(t *testing.T) {
	st := storetest.New()
	_, _, err := st.InsertEditionIfAbsent(context.Background(), model.AwardEdition{Edition: 96})
	require.NoError(t, err)
	calls := len(st.Calls)

	fetch := ceremonyFetcher()
	b := newBuilder(fetch, st, nil)

	require.NoError(t, b.Build(context.Background(), 96))
	assert.Empty(t, fetch.fetched)
	assert.Len(t, st.Calls, calls)
}

func TestBuild_FetchFailure(t *testing.T) {
	st := storetest.New()
	b := newBuilder(&fakeFetcher{pages: map[string]string{}}, st, nil)

	err := b.Build(context.Background(), 96)
	require.Error(t, err)
	assert.Empty(t, st.Calls)
}

func TestBuild_NoFactTable(t *testing.T) {
	st := storetest.New()
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/96th_Academy_Awards": `<html><body><p>stub page</p></body></html>`,
	}}
	b := newBuilder(fetch, st, nil)

	err := b.Build(context.Background(), 96)
	require.Error(t, err)
	assert.Empty(t, st.Calls)
}

func TestBuild_ExportsRecord(t *testing.T) {
	st := storetest.New()
	exporter := &fakeExporter{}
	b := newBuilder(ceremonyFetcher(), st, exporter)

	require.NoError(t, b.Build(context.Background(), 96))

	require.Len(t, exporter.records, 1)
	rec := exporter.records[0]
	assert.Equal(t, 96, rec.Edition)
	assert.Equal(t, 2024, rec.Year)
	assert.Equal(t, "2024-03-10", rec.Date)
	assert.Equal(t, 203, rec.Duration)
	assert.Equal(t, "ABC", rec.Network)
}

func TestBuild_MultiVenueSiteCreatesEditionRowPerVenue(t *testing.T) {
	st := storetest.New()
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/6th_Academy_Awards": multiVenuePage,
	}}
	b := newBuilder(fetch, st, nil)

	require.NoError(t, b.Build(context.Background(), 6))

	require.Len(t, st.Venues, 2)
	names := make(map[string]bool)
	for _, v := range st.Venues {
		names[v.Name] = true
	}
	assert.True(t, names["Hollywood Roosevelt Hotel"])
	assert.True(t, names["Ambassador Hotel"])

	require.Len(t, st.EditionRows, 2)
	venueIDs := make(map[int64]bool)
	for _, e := range st.EditionRows {
		assert.Equal(t, 6, e.Edition)
		assert.Equal(t, "NBC", e.Network)
		venueIDs[e.VenueID] = true
	}
	assert.Len(t, venueIDs, 2)
}

func TestBuild_VenuelessEditionStillExported(t *testing.T) {
	st := storetest.New()
	exporter := &fakeExporter{}
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/1st_Academy_Awards": venuelessPage,
	}}
	b := newBuilder(fetch, st, exporter)

	require.NoError(t, b.Build(context.Background(), 1))

	require.Len(t, st.EditionRows, 1)
	require.Len(t, exporter.records, 1)
	rec := exporter.records[0]
	assert.Equal(t, 1, rec.Edition)
	assert.Zero(t, rec.VenueID)
	assert.Equal(t, "1929-05-16", rec.Date)
	assert.Equal(t, 15, rec.Duration)
}

func TestBuild_RebuildIsNoop(t *testing.T) {
	st := storetest.New()
	b := newBuilder(ceremonyFetcher(), st, nil)

	require.NoError(t, b.Build(context.Background(), 96))
	calls := len(st.Calls)

	require.NoError(t, b.Build(context.Background(), 96))
	assert.Len(t, st.Calls, calls)
}
