package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinegraph/awards-cli/internal/model"
	"github.com/cinegraph/awards-cli/internal/store/storetest"
)

const bioPage = `<html><body>
<h1 id="firstHeading">Jane Example</h1>
<table class="infobox vcard">
<tr><th>Born</th><td>
  <span class="bday">1929-05-16</span>
  <div class="birthplace">Westminster, London, England</div>
</td></tr>
<tr><th>Died</th><td><span class="dday">2003-09-27</span></td></tr>
</table>
</body></html>`

func TestBiography_InfoboxFields(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/Jane_Example": bioPage,
	}}
	r := NewPersonResolver(fetch, storetest.New(), testBase)

	rec := r.Biography(context.Background(), PersonCandidate{Parts: model.NameParts{"Jane", "Example"}}, "")
	assert.Equal(t, model.BirthRecord{
		BirthDate:    "1929-05-16",
		BirthCountry: "England",
		DeathDate:    "2003-09-27",
	}, rec)
}

func TestBiography_PartialBirthYear(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/Old_Timer": `<table class="infobox vcard">
			<tr><th>Born</th><td><span class="bday">1899</span></td></tr></table>`,
	}}
	r := NewPersonResolver(fetch, storetest.New(), testBase)

	rec := r.Biography(context.Background(), PersonCandidate{Parts: model.NameParts{"Old", "Timer"}}, "")
	assert.Equal(t, "1899-01-01", rec.BirthDate)
}

func TestBiography_FreeTextBirthplaceFallback(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/Gary_Cooper": `<table class="infobox vcard">
			<tr><th>Born</th><td><span class="bday">1901-05-07</span> May 7, 1901 Helena, Montana, U.S.</td></tr></table>`,
	}}
	r := NewPersonResolver(fetch, storetest.New(), testBase)

	rec := r.Biography(context.Background(), PersonCandidate{Parts: model.NameParts{"Gary", "Cooper"}}, "")
	assert.Equal(t, "U.S.", rec.BirthCountry)
}

func TestBiography_NoInfobox(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/Mystery_Guest": `<html><body><p>article without a fact table</p></body></html>`,
	}}
	r := NewPersonResolver(fetch, storetest.New(), testBase)

	rec := r.Biography(context.Background(), PersonCandidate{Parts: model.NameParts{"Mystery", "Guest"}}, "")
	assert.Equal(t, model.BirthRecord{}, rec)
}

func TestBiography_FetchFailure(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{}}
	r := NewPersonResolver(fetch, storetest.New(), testBase)

	rec := r.Biography(context.Background(), PersonCandidate{Parts: model.NameParts{"No", "Page"}}, "")
	assert.Equal(t, model.BirthRecord{}, rec)
}

func TestResolveAll_PairsRecordsPositionally(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/Jane_Example": bioPage,
	}}
	r := NewPersonResolver(fetch, storetest.New(), testBase)

	recs := r.ResolveAll(context.Background(), []PersonCandidate{
		{Parts: model.NameParts{"No", "Page"}},
		{Parts: model.NameParts{"Jane", "Example"}},
	}, "")

	require.Len(t, recs, 2)
	assert.Equal(t, model.BirthRecord{}, recs[0])
	assert.Equal(t, "1929-05-16", recs[1].BirthDate)
}

func TestFetchPage_HatnoteTriggersRoleRetry(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/John_Smith": `<html><body>
			<div class="hatnote navigation-not-searchable">For the film producer, see John Smith (producer).</div>
			<p>A politician.</p></body></html>`,
		testBase + "/John_Smith_(producer)": `<table class="infobox vcard">
			<tr><th>Born</th><td><span class="bday">1933-02-02</span></td></tr></table>`,
	}}
	r := NewPersonResolver(fetch, storetest.New(), testBase)

	rec := r.Biography(context.Background(), PersonCandidate{Parts: model.NameParts{"John", "Smith"}}, "producer")
	assert.Equal(t, "1933-02-02", rec.BirthDate)
	assert.Equal(t, []string{
		testBase + "/John_Smith",
		testBase + "/John_Smith_(producer)",
	}, fetch.fetched)
}

func TestFetchPage_RetryMissingArticleKeepsOriginal(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/John_Smith": `<html><body>
			<div class="hatnote navigation-not-searchable">For the film producer, see elsewhere.</div>
			<table class="infobox vcard"><tr><th>Born</th><td><span class="bday">1910-01-01</span></td></tr></table>
			</body></html>`,
		testBase + "/John_Smith_(producer)": `<html><body>
			<p>Wikipedia does not have an article with this exact name.</p></body></html>`,
	}}
	r := NewPersonResolver(fetch, storetest.New(), testBase)

	rec := r.Biography(context.Background(), PersonCandidate{Parts: model.NameParts{"John", "Smith"}}, "producer")
	assert.Equal(t, "1910-01-01", rec.BirthDate)
}

func TestFetchPage_ReferenceLinkSkipsHatnoteCheck(t *testing.T) {
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/Direct_Target": `<html><body>
			<div class="hatnote navigation-not-searchable">For the producer, see elsewhere.</div>
			<table class="infobox vcard"><tr><th>Born</th><td><span class="bday">1950-06-06</span></td></tr></table>
			</body></html>`,
	}}
	r := NewPersonResolver(fetch, storetest.New(), testBase)

	cand := PersonCandidate{Parts: model.NameParts{"Someone", "Else"}, Link: "/wiki/Direct_Target"}
	rec := r.Biography(context.Background(), cand, "producer")
	assert.Equal(t, "1950-06-06", rec.BirthDate)
	assert.Equal(t, []string{testBase + "/Direct_Target"}, fetch.fetched)
}

func TestPersonResolve_EmptyCandidate(t *testing.T) {
	r := NewPersonResolver(&fakeFetcher{}, storetest.New(), testBase)
	out := r.Resolve(context.Background(), PersonCandidate{}, "")
	assert.Equal(t, StatusNotFound, out.Status)
}

func TestPersonResolve_FetchFailureStillStoresName(t *testing.T) {
	st := storetest.New()
	r := NewPersonResolver(&fakeFetcher{pages: map[string]string{}}, st, testBase)

	out := r.Resolve(context.Background(), PersonCandidate{Parts: model.NameParts{"No", "Page"}}, "")
	require.Equal(t, StatusFound, out.Status)
	assert.Len(t, st.Persons, 1)
	assert.Equal(t, "No", st.Persons[out.Value].First)
	assert.Empty(t, st.Persons[out.Value].BirthDate)
}

func TestPersonResolve_SecondCallReusesRecord(t *testing.T) {
	st := storetest.New()
	fetch := &fakeFetcher{pages: map[string]string{
		testBase + "/Jane_Example": bioPage,
	}}
	r := NewPersonResolver(fetch, st, testBase)

	cand := PersonCandidate{Parts: model.NameParts{"Jane", "Example"}}
	first := r.Resolve(context.Background(), cand, "")
	second := r.Resolve(context.Background(), cand, "")
	require.Equal(t, StatusFound, first.Status)
	assert.Equal(t, first.Value, second.Value)
	assert.Len(t, st.Persons, 1)
}
