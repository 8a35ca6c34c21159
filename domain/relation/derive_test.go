package relation

import (
	"bibgraph-backend/domain/entity"
	"bibgraph-backend/domain/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math/rand"
	"testing"
)

func sampleRows() []record.Row {
	return []record.Row{
		{PaperID: "P1", Year: 2020, AuthorID: "A1", MainAuthor: true, VenueName: "SIGMOD", VenueKind: record.VenueConference, Topics: []string{"Indexing"}, CitedPaperID: "P2"},
		{PaperID: "P1", Year: 2020, AuthorID: "A1", MainAuthor: true, VenueName: "SIGMOD", VenueKind: record.VenueConference, Topics: []string{"Indexing"}, CitedPaperID: "P3"},
		{PaperID: "P1", Year: 2020, AuthorID: "A2", VenueName: "SIGMOD", VenueKind: record.VenueConference, Topics: []string{"Indexing"}, CitedPaperID: "P404"},
		{PaperID: "P2", Year: 2021, AuthorID: "A2", MainAuthor: true, VenueName: "TODS", VenueKind: record.VenueJournal, Topics: []string{"Big Data"}, CitedPaperID: "P3"},
		{PaperID: "P3", Year: 2019, AuthorID: "", VenueName: "arXiv", VenueKind: record.VenueOther, Topics: []string{}},
		{PaperID: "P4", Year: 2019, AuthorID: "A3", VenueName: "", VenueKind: record.VenueWorkshop, Topics: []string{}},
	}
}

func TestDeriveEdges(t *testing.T) {
	rows := sampleRows()
	set := entity.Deduplicate(rows, nil)
	result := Derive(rows, set, nil)

	assert.Equal(t, []Edge{
		{Source: "A1", Target: "P1"},
		{Source: "A2", Target: "P1"},
		{Source: "A2", Target: "P2"},
		{Source: "A3", Target: "P4"},
	}, result.AuthorOf)

	assert.Equal(t, []Edge{
		{Source: "A1", Target: "P1"},
		{Source: "A2", Target: "P2"},
	}, result.CorrespondingAuthor)

	assert.Equal(t, []Edge{
		{Source: "P1", Target: "0"},
		{Source: "P2", Target: "1"},
	}, result.About)

	assert.Equal(t, []Edge{
		{Source: "P1", Target: "P2"},
		{Source: "P1", Target: "P3"},
		{Source: "P2", Target: "P3"},
	}, result.Related)

	assert.Equal(t, []Edge{{Source: "P1", Target: "0"}}, result.PublishedIn[record.VenueConference])
	assert.Equal(t, []Edge{{Source: "P2", Target: "0"}}, result.PublishedIn[record.VenueJournal])
	assert.Empty(t, result.PublishedIn[record.VenueWorkshop])

	assert.Equal(t, 1, result.Dropped[AuthorOf], "row with empty author id")
	assert.Equal(t, 1, result.Dropped[Related], "citation of a paper outside the set")
	assert.Equal(t, 1, result.Dropped[PublishedIn], "workshop row without venue name")
	assert.Equal(t, 0, result.Dropped[About])
	assert.Equal(t, []string{"P3", "P4"}, result.OrphanedPapers)
	assert.Equal(t, 2, result.Count(PublishedIn))
}

func TestDeriveHasNoDanglingEdges(t *testing.T) {
	rows := sampleRows()
	rows = append(rows,
		record.Row{PaperID: "", AuthorID: "A9", MainAuthor: true, Topics: []string{"Ghost Topic"}, CitedPaperID: "P1"},
		record.Row{PaperID: "P5", Year: 2022, AuthorID: "A1", VenueName: "SIGMOD", VenueKind: record.VenueConference, Topics: []string{"", "Indexing"}, CitedPaperID: "P1"},
	)
	set := entity.Deduplicate(rows, nil)
	result := Derive(rows, set, NewRandomReviewSource(rand.New(rand.NewSource(3))))

	keywords := set.KeywordMap()
	hasKeyword := func(id string) bool {
		for _, v := range keywords {
			if v == id {
				return true
			}
		}
		return false
	}
	hasReview := make(map[string]bool)
	for _, r := range result.Reviews {
		hasReview[r.ID] = true
	}

	for _, e := range result.AuthorOf {
		assert.True(t, set.HasAuthor(e.Source))
		assert.True(t, set.HasPaper(e.Target))
	}
	for _, e := range result.CorrespondingAuthor {
		assert.True(t, set.HasAuthor(e.Source))
		assert.True(t, set.HasPaper(e.Target))
	}
	for _, e := range result.About {
		assert.True(t, set.HasPaper(e.Source))
		assert.True(t, hasKeyword(e.Target))
	}
	for _, e := range result.Related {
		assert.True(t, set.HasPaper(e.Source))
		assert.True(t, set.HasPaper(e.Target))
	}
	for kind, edges := range result.PublishedIn {
		for _, e := range edges {
			assert.True(t, set.HasPaper(e.Source))
			found := false
			for _, v := range set.Venues[kind] {
				found = found || v.ID == e.Target
			}
			assert.True(t, found, "venue %s/%s", kind, e.Target)
		}
	}
	for _, r := range result.Reviews {
		w := r.WroteEdge()
		assert.True(t, set.HasAuthor(w.Source))
		assert.True(t, hasReview[w.Target])
		rv := r.ReviewsEdge()
		assert.True(t, hasReview[rv.Source])
		assert.True(t, set.HasPaper(rv.Target))
	}
}

func TestDeriveReviews(t *testing.T) {
	rows := sampleRows()
	set := entity.Deduplicate(rows, nil)

	a := Derive(rows, set, NewRandomReviewSource(rand.New(rand.NewSource(42))))
	b := Derive(rows, set, NewRandomReviewSource(rand.New(rand.NewSource(42))))

	require.Len(t, a.Reviews, len(a.AuthorOf), "one review per authorship pair")
	assert.Equal(t, a.Reviews, b.Reviews, "same seed, same reviews")

	for i, r := range a.Reviews {
		assert.Equal(t, a.AuthorOf[i].Source, r.AuthorID)
		assert.Equal(t, a.AuthorOf[i].Target, r.PaperID)
		assert.GreaterOrEqual(t, r.Score, MinScore)
		assert.LessOrEqual(t, r.Score, MaxScore)
		assert.Contains(t, DefaultComments, r.Comment)
		assert.Equal(t, SuggestDecision(r.Score), r.SuggestedDecision)
	}
	assert.Equal(t, len(a.Reviews), a.Count(Wrote))
}

type fixedReviews map[string]int

func (f fixedReviews) Review(authorID, paperID string) (string, int, bool) {
	score, ok := f[authorID+"/"+paperID]
	return "fixed", score, ok
}

func TestDerivePluggableReviewSource(t *testing.T) {
	rows := sampleRows()
	set := entity.Deduplicate(rows, nil)
	result := Derive(rows, set, fixedReviews{"A2/P1": 4})

	require.Len(t, result.Reviews, 1)
	assert.Equal(t, Review{
		ID:                "0",
		AuthorID:          "A2",
		PaperID:           "P1",
		Comment:           "fixed",
		Score:             4,
		SuggestedDecision: DecisionAccept,
	}, result.Reviews[0])
}

func TestSuggestDecision(t *testing.T) {
	assert.Equal(t, DecisionReject, SuggestDecision(1))
	assert.Equal(t, DecisionReject, SuggestDecision(3))
	assert.Equal(t, DecisionAccept, SuggestDecision(4))
	assert.Equal(t, DecisionAccept, SuggestDecision(5))
}
