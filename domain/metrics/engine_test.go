package metrics

import (
	"bibgraph-backend/domain/entity"
	"bibgraph-backend/domain/graph"
	"bibgraph-backend/domain/record"
	"bibgraph-backend/domain/relation"
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/memgraph"
	"context"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func row(paper string, year int, author, venue string, kind record.VenueKind, topic, cited string) record.Row {
	topics := []string{}
	if topic != "" {
		topics = append(topics, topic)
	}
	return record.Row{
		PaperID:      paper,
		Year:         year,
		AuthorID:     author,
		VenueName:    venue,
		VenueKind:    kind,
		Topics:       topics,
		CitedPaperID: cited,
	}
}

func loadedGraph(t *testing.T) *memgraph.Graph {
	conf := record.VenueConference
	rows := make([]record.Row, 0)

	// DB Conf 2020：10 篇论文中 9 篇属于社区
	for i := 0; i < 10; i++ {
		topic := "data management"
		if i == 9 {
			topic = "Vision"
		}
		author := "A2"
		if i < 2 {
			author = "A1"
		}
		rows = append(rows, row(fmt.Sprintf("P%d", i), 2020, author, "DB Conf", conf, topic, ""))
	}
	rows = append(rows,
		row("P1", 2020, "A1", "DB Conf", conf, "data management", "P0"),
		row("M0", 2020, "A3", "ML Conf", conf, "Vision", "P0"),
		row("M0", 2020, "A3", "ML Conf", conf, "Vision", "P1"),
		row("M1", 2021, "A3", "ML Conf", conf, "Vision", "P0"),
		row("M1", 2021, "A3", "ML Conf", conf, "Vision", "J1"),
		row("J1", 2020, "A3", "TODS", record.VenueJournal, "", ""),
		row("", 0, "A9", "", record.VenueOther, "", ""),
	)

	set := entity.Deduplicate(rows, nil)
	rel := relation.Derive(rows, set, nil)

	g := memgraph.New()
	require.Nil(t, graph.Load(context.Background(), g, graph.Assemble(set, rel), logging.NewLogger()))
	return g
}

func testConfig() Config {
	return Config{
		CommunityName:     "Databases",
		CommunityKeywords: []string{"Data Management", "Indexing"},
		CoreThreshold:     0.9,
		TopPaperLimit:     2,
	}
}

func nodesByID(t *testing.T, g *memgraph.Graph, label string) map[string]sink.Row {
	rows, err := g.RunReadQuery(context.Background(), sink.MatchNodes(label))
	require.Nil(t, err)

	ret := make(map[string]sink.Row, len(rows))
	for _, r := range rows {
		ret[sink.String(r, sink.IDKey)] = r
	}
	return ret
}

func TestEngineRun(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))
	g := loadedGraph(t)

	report, err := NewEngine(g, testConfig(), logging.NewLogger()).Run(context.Background())
	require.Nil(t, err)

	assert.Equal(t, Report{
		CommunityKeywords:  1,
		CoreVenues:         1,
		TopPapers:          2,
		PotentialReviewers: 1,
		Gurus:              1,
		AuthorsWithHIndex:  3,
		ImpactFactors:      1,
	}, *report)

	assert.Equal(t, 1, g.NodeCount(graph.LabelCommunity))
	assert.Equal(t, 1, g.EdgeCount(graph.EdgeBelongsTo))

	conferences := nodesByID(t, g, graph.LabelConference)
	assert.True(t, sink.HasLabel(conferences["0"], graph.LabelDatabaseVenue))
	assert.True(t, sink.Bool(conferences["0"], graph.PropIsDatabaseVenue))
	assert.False(t, sink.HasLabel(conferences["1"], graph.LabelDatabaseVenue))
	flag, ok := conferences["1"][graph.PropIsDatabaseVenue]
	assert.True(t, ok)
	assert.Equal(t, false, flag)

	papers := nodesByID(t, g, graph.LabelPaper)
	assert.True(t, sink.HasLabel(papers["P0"], graph.LabelTopPaper))
	assert.True(t, sink.HasLabel(papers["P1"], graph.LabelTopPaper))
	assert.False(t, sink.HasLabel(papers["J1"], graph.LabelTopPaper))
	count, _ := sink.Int(papers["P0"], graph.PropCitationCount)
	assert.Equal(t, 3, count)

	authors := nodesByID(t, g, graph.LabelAuthor)
	assert.True(t, sink.HasLabel(authors["A1"], graph.LabelPotentialReviewer))
	assert.True(t, sink.HasLabel(authors["A1"], graph.LabelGuru))
	assert.False(t, sink.HasLabel(authors["A2"], graph.LabelPotentialReviewer))

	h, ok := sink.Int(authors["A1"], graph.PropHIndex)
	assert.True(t, ok)
	assert.Equal(t, 1, h)
	h, ok = sink.Int(authors["A2"], graph.PropHIndex)
	assert.True(t, ok)
	assert.Equal(t, 0, h)
	_, ok = authors["A9"][graph.PropHIndex]
	assert.False(t, ok, "author without papers has no h-index")

	journals := nodesByID(t, g, graph.LabelJournal)
	assert.Equal(t, false, journals["0"][graph.PropIsDatabaseVenue])
	factor, ok := sink.Float(journals["0"], graph.PropImpactFactor)
	assert.True(t, ok)
	assert.Equal(t, 1.0, factor)
}

func TestEngineRerunOverwrites(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))
	g := loadedGraph(t)
	engine := NewEngine(g, testConfig(), logging.NewLogger())

	first, err := engine.Run(context.Background())
	require.Nil(t, err)
	second, err := engine.Run(context.Background())
	require.Nil(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, g.NodeCount(graph.LabelCommunity))
	assert.Equal(t, 1, g.EdgeCount(graph.EdgeBelongsTo))
	assert.Equal(t, 2, g.NodeCount(graph.LabelTopPaper))

	papers := nodesByID(t, g, graph.LabelPaper)
	count, _ := sink.Int(papers["P0"], graph.PropCitationCount)
	assert.Equal(t, 3, count)
}

func TestEngineKeepsDatabaseVenueFlag(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))
	g := loadedGraph(t)

	// 之前已经标记过的 venue 不会被改回 false
	_, err := g.RunWriteQuery(context.Background(), sink.SetProperty(graph.LabelConference, graph.PropIsDatabaseVenue,
		map[string]interface{}{"1": true}))
	require.Nil(t, err)

	_, err = NewEngine(g, testConfig(), logging.NewLogger()).Run(context.Background())
	require.Nil(t, err)

	conferences := nodesByID(t, g, graph.LabelConference)
	assert.True(t, sink.Bool(conferences["0"], graph.PropIsDatabaseVenue))
	assert.True(t, sink.Bool(conferences["1"], graph.PropIsDatabaseVenue))
	assert.False(t, sink.HasLabel(conferences["1"], graph.LabelDatabaseVenue))
}

type failingSink struct {
	*memgraph.Graph
	failOn sink.Op
}

func (f *failingSink) RunWriteQuery(ctx context.Context, q sink.Query) ([]sink.Row, error) {
	if q.Op == f.failOn {
		return nil, fmt.Errorf("write rejected")
	}
	return f.Graph.RunWriteQuery(ctx, q)
}

func TestEngineStopsOnSinkFailure(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))
	g := loadedGraph(t)

	_, err := NewEngine(&failingSink{Graph: g, failOn: sink.OpAddLabel}, testConfig(), logging.NewLogger()).Run(context.Background())
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "stage 2")

	// 后续阶段没有执行
	assert.Equal(t, 0, g.NodeCount(graph.LabelTopPaper))
	authors := nodesByID(t, g, graph.LabelAuthor)
	_, ok := authors["A1"][graph.PropHIndex]
	assert.False(t, ok)
}
