package pipeline

import (
	"bibgraph-backend/domain/graph"
	"bibgraph-backend/domain/metrics"
	"bibgraph-backend/domain/record"
	"bibgraph-backend/domain/relation"
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/repository/memgraph"
	"bibgraph-backend/repository/metadata"
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

const sampleInput = `PaperId,Title,Year,DOI,AuthorId,Author,Main_Author,Venue,VenueID,Type,FieldOfStudy,Volume,ReferenceId,Reference Name,Abstract
P1,Paper One,2020,10.1/p1,A1,Alice,True,DB Conf,V1,conference,"['Data Management']",,P2,Paper Two,first
P1,Paper One,2020,10.1/p1,A2,Bob,False,DB Conf,V1,conference,"['Data Management']",,,,first
P2,Paper Two,2019,,A2,Bob,True,TODS,V2,journal,Indexing,12,,,
P3,Paper Three,2021,,A3,Carol,True,,,,"['Vision']",,P9,Missing,
`

type fixedAffiliation string

func (f fixedAffiliation) Affiliation(string) string {
	return string(f)
}

type fixedScore int

func (f fixedScore) Review(string, string) (string, int, bool) {
	return "fine", int(f), true
}

type recordNotifier struct {
	emails  []string
	reports []*Report
}

func (n *recordNotifier) NotifyRunReport(email string, report *Report) error {
	n.emails = append(n.emails, email)
	n.reports = append(n.reports, report)
	return nil
}

type failingSink struct {
	*memgraph.Graph
}

func (s failingSink) CreateEdges(context.Context, sink.EdgeBatch) error {
	return errors.New("connection refused")
}

// cancelSink 在第一次写入节点之后取消运行的 context。
type cancelSink struct {
	*memgraph.Graph
	cancel context.CancelFunc
}

func (s cancelSink) CreateEntities(ctx context.Context, batch sink.EntityBatch) error {
	err := s.Graph.CreateEntities(ctx, batch)
	s.cancel()
	return err
}

func testSetting(t *testing.T, s sink.Sink) *Setting {
	return &Setting{
		Sink:         s,
		Affiliations: fixedAffiliation("ETH Zurich"),
		Reviews:      fixedScore(5),
		Metrics: metrics.Config{
			CommunityName:     "Databases",
			CommunityKeywords: []string{"Data Management", "Indexing"},
			CoreThreshold:     0.9,
			TopPaperLimit:     100,
		},
		Logger: logging.NewLogger(),
	}
}

func TestRunnerRun(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	g := memgraph.New()
	report, err := NewRunner(testSetting(t, g)).Run(context.Background(), &Job{
		InputName: "papers.csv",
		Input:     []byte(sampleInput),
	})
	require.Nil(t, err)
	require.True(t, report.Succeeded())

	assert.Equal(t, "papers.csv", report.Desc)
	assert.Equal(t, 1, report.Dropped[relation.Related])
	assert.Equal(t, 1, report.OrphanedPapers)

	assert.Equal(t, 3, g.NodeCount(graph.LabelPaper))
	assert.Equal(t, 3, g.NodeCount(graph.LabelAuthor))
	assert.Equal(t, 1, g.NodeCount(graph.LabelConference))
	assert.Equal(t, 1, g.NodeCount(graph.LabelJournal))
	assert.Equal(t, 4, g.NodeCount(graph.LabelReview))
	assert.Equal(t, 1, g.NodeCount(graph.LabelInstitution))
	assert.Equal(t, 1, g.EdgeCount(string(relation.Related)))

	require.NotNil(t, report.Evolution)
	assert.Equal(t, 4, report.Evolution.Reviews)
	assert.Equal(t, 3, report.Evolution.Accepted)
	assert.Equal(t, 0, report.Evolution.Rejected)

	require.NotNil(t, report.Metrics)
	assert.Equal(t, 2, report.Metrics.CommunityKeywords)
	assert.Equal(t, 2, report.Metrics.TopPapers)

	// 阶段按执行顺序出现
	var order []string
	for _, s := range report.Stages {
		if len(order) == 0 || order[len(order)-1] != s.Stage {
			order = append(order, s.Stage)
		}
	}
	assert.Equal(t, []string{
		StageRead, StageNormalize, StageDedup, StageDerive, StageLoad, StageEvolution, StageMetrics,
	}, order)
	assert.Contains(t, report.Stages, StageCount{Stage: StageNormalize, Name: "rows", Rows: 4})
	assert.Contains(t, report.Stages, StageCount{Stage: StageDedup, Name: graph.LabelPaper, Rows: 3})
}

func TestRunnerSkipEvolution(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	g := memgraph.New()
	setting := testSetting(t, g)
	setting.SkipEvolution = true

	report, err := NewRunner(setting).Run(context.Background(), &Job{Input: []byte(sampleInput)})
	require.Nil(t, err)

	assert.Nil(t, report.Evolution)
	assert.NotNil(t, report.Metrics)
	assert.Equal(t, 0, g.NodeCount(graph.LabelReview))
	assert.Equal(t, 0, g.NodeCount(graph.LabelInstitution))
}

func TestRunnerPersistsRun(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	db, err := metadata.CreateDatabase(metadata.GenerateTestConfig())
	require.Nil(t, err)
	store, err := filesave.CreateStore(filesave.GenerateTestConfig(t))
	require.Nil(t, err)

	runs := metadata.NewRunRepository(db)
	saver := filesave.NewSaver(store, "runs")
	notifier := &recordNotifier{}

	setting := testSetting(t, memgraph.New())
	setting.Runs = runs
	setting.Saver = saver
	setting.Notifier = notifier

	report, err := NewRunner(setting).Run(context.Background(), &Job{
		Desc:      "first import",
		InputName: "papers.csv",
		Input:     []byte(sampleInput),
		Email:     "someone@example.com",
		DryRun:    true,
	})
	require.Nil(t, err)
	require.NotZero(t, report.RunID)

	run, err := runs.Get(report.RunID)
	require.Nil(t, err)

	assert.Equal(t, metadata.RunStatusDone, run.Status)
	assert.Equal(t, "first import", run.Desc)
	assert.True(t, run.DryRun)
	assert.Equal(t, 1, run.OrphanedPapers)
	assert.True(t, run.FinishedAt.Valid)
	assert.Equal(t, len(report.Stages), len(run.Stages))
	assert.Equal(t, report.Stages[0].Stage, run.Stages[0].Stage)

	dropped := make(map[string]int)
	for _, d := range run.Dropped {
		dropped[d.EdgeType] = d.Count
	}
	assert.Equal(t, 1, dropped[string(relation.Related)])

	// 一个输入文件，其余为批次 CSV
	require.Equal(t, len(report.Artifacts)+1, len(run.Files))
	inputs := 0
	for _, f := range run.Files {
		if f.Role == metadata.FileRoleInput {
			inputs++
			assert.Equal(t, "papers.csv", f.Name)
		}
		assert.Len(t, f.Hash, 16)
	}
	assert.Equal(t, 1, inputs)

	// 产物可以按键读回
	var paperKey string
	for _, a := range report.Artifacts {
		if strings.HasSuffix(a.Key, "nodes_paper.csv") {
			paperKey = a.Key
		}
	}
	require.NotEmpty(t, paperKey)
	content, err := saver.LoadFile(context.Background(), paperKey)
	require.Nil(t, err)
	raw, err := record.ReadCSV(strings.NewReader(string(content)))
	require.Nil(t, err)
	assert.Len(t, raw, 3)

	parsed, err := metadata.ParseRunReport(&run.Extra)
	require.Nil(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, 4, parsed.Evolution.Reviews)

	assert.Equal(t, []string{"someone@example.com"}, notifier.emails)
}

func TestRunnerStopsOnSinkFailure(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	db, err := metadata.CreateDatabase(metadata.GenerateTestConfig())
	require.Nil(t, err)
	runs := metadata.NewRunRepository(db)
	notifier := &recordNotifier{}

	g := memgraph.New()
	setting := testSetting(t, failingSink{Graph: g})
	setting.Runs = runs
	setting.Notifier = notifier

	report, err := NewRunner(setting).Run(context.Background(), &Job{
		Input: []byte(sampleInput),
		Email: "someone@example.com",
	})
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrStageFailed))
	assert.Equal(t, StageLoad, report.FailedStage)
	assert.False(t, report.Succeeded())
	assert.Nil(t, report.Evolution)
	assert.Nil(t, report.Metrics)

	// 节点批次在失败前已经写入，不回滚
	assert.Equal(t, 3, g.NodeCount(graph.LabelPaper))

	run, err := runs.Get(report.RunID)
	require.Nil(t, err)
	assert.Equal(t, metadata.RunStatusFail, run.Status)
	assert.Contains(t, run.Error, "connection refused")

	require.Len(t, notifier.reports, 1)
	assert.Equal(t, StageLoad, notifier.reports[0].FailedStage)
}

func TestRunnerRejectsEmptyInput(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	report, err := NewRunner(testSetting(t, memgraph.New())).Run(context.Background(), &Job{})
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, record.ErrEmptyInput))
	assert.Equal(t, StageRead, report.FailedStage)
}

func TestRunnerDryRunJobKeepsSinkEmpty(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	g := memgraph.New()
	report, err := NewRunner(testSetting(t, g)).Run(context.Background(), &Job{
		Input:  []byte(sampleInput),
		DryRun: true,
	})
	require.Nil(t, err)
	require.True(t, report.Succeeded())
	assert.True(t, report.DryRun)

	// 演化与指标在进程内的图上完成
	require.NotNil(t, report.Evolution)
	assert.Equal(t, 4, report.Evolution.Reviews)
	require.NotNil(t, report.Metrics)
	assert.Equal(t, 2, report.Metrics.TopPapers)

	for _, label := range graph.EntityLabels {
		assert.Equal(t, 0, g.NodeCount(label), label)
	}
	assert.Equal(t, 0, g.NodeCount(graph.LabelInstitution))
	assert.Equal(t, 0, g.EdgeCount(string(relation.Related)))
}

func TestRunnerCancelStopsBetweenStages(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := memgraph.New()
	report, err := NewRunner(testSetting(t, cancelSink{Graph: g, cancel: cancel})).Run(ctx, &Job{
		Input: []byte(sampleInput),
	})
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrStageFailed))
	assert.True(t, errors.Is(err, context.Canceled))

	// load 阶段完整执行，下一个阶段开始前停止
	assert.Equal(t, StageEvolution, report.FailedStage)
	assert.Nil(t, report.Evolution)
	assert.Nil(t, report.Metrics)

	assert.Equal(t, 3, g.NodeCount(graph.LabelPaper))
	assert.Equal(t, 3, g.NodeCount(graph.LabelAuthor))
	assert.Equal(t, 1, g.NodeCount(graph.LabelConference))
	assert.Equal(t, 1, g.NodeCount(graph.LabelJournal))
	assert.Equal(t, 1, g.EdgeCount(string(relation.Related)))
	assert.Equal(t, 0, g.NodeCount(graph.LabelReview))

	var loaded []string
	for _, s := range report.Stages {
		if s.Stage == StageLoad {
			loaded = append(loaded, s.Name)
		}
	}
	assert.NotEmpty(t, loaded)
}
