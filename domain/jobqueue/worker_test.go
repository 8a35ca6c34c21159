package jobqueue

import (
	"bibgraph-backend/domain/metrics"
	"bibgraph-backend/domain/pipeline"
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/repository/memgraph"
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const sampleInput = `PaperId,Title,Year,AuthorId,Main_Author,Venue,Type,FieldOfStudy,ReferenceId
P1,Paper One,2020,A1,True,DB Conf,conference,"['Data Management']",P2
P2,Paper Two,2019,A2,True,DB Conf,conference,"['Data Management']",
`

type recordPublisher struct {
	queues  []string
	objects []any
}

func (p *recordPublisher) SendObjectByJSON(queueName string, obj any) error {
	p.queues = append(p.queues, queueName)
	p.objects = append(p.objects, obj)
	return nil
}

func testWorker(t *testing.T) (*Worker, *filesave.Saver, *recordPublisher, *memgraph.Graph) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	store, err := filesave.CreateStore(filesave.GenerateTestConfig(t))
	require.Nil(t, err)
	saver := filesave.NewSaver(store, "uploads")

	g := memgraph.New()
	runner := pipeline.NewRunner(&pipeline.Setting{
		Sink: g,
		Metrics: metrics.Config{
			CommunityName:     "Databases",
			CommunityKeywords: []string{"Data Management"},
			CoreThreshold:     0.9,
			TopPaperLimit:     100,
		},
		SkipEvolution: true,
	})

	pub := &recordPublisher{}
	return &Worker{
		runner:    runner,
		saver:     saver,
		publisher: pub,
		logger:    logging.NewLogger(),
	}, saver, pub, g
}

func TestWorkerHandleInput(t *testing.T) {
	worker, saver, pub, g := testWorker(t)

	resp, err := saver.SaveFile(context.Background(), "inbox", "papers.csv", []byte(sampleInput))
	require.Nil(t, err)

	body, err := json.Marshal(InputSchema{FileKey: resp.Key, Desc: "queued"})
	require.Nil(t, err)
	require.Nil(t, worker.handleInput(body))

	require.Equal(t, []string{QueuePipelineReport}, pub.queues)
	report := pub.objects[0].(ReportSchema)
	assert.Equal(t, resp.Key, report.FileKey)
	require.NotNil(t, report.Report)
	assert.True(t, report.Report.Succeeded())
	assert.Equal(t, "queued", report.Report.Desc)
	assert.False(t, report.Report.DryRun)
	assert.Equal(t, 2, g.NodeCount("Paper"))
}

func TestWorkerDryRunInput(t *testing.T) {
	worker, saver, pub, g := testWorker(t)

	resp, err := saver.SaveFile(context.Background(), "inbox", "papers.csv", []byte(sampleInput))
	require.Nil(t, err)

	body, err := json.Marshal(InputSchema{FileKey: resp.Key, DryRun: true})
	require.Nil(t, err)
	require.Nil(t, worker.handleInput(body))

	require.Len(t, pub.objects, 1)
	report := pub.objects[0].(ReportSchema).Report
	assert.True(t, report.Succeeded())
	assert.True(t, report.DryRun)
	assert.Equal(t, 0, g.NodeCount("Paper"))
}

func TestWorkerPublishesFailedRun(t *testing.T) {
	worker, saver, pub, _ := testWorker(t)

	resp, err := saver.SaveFile(context.Background(), "inbox", "empty.csv", []byte{})
	require.Nil(t, err)

	body, err := json.Marshal(InputSchema{FileKey: resp.Key})
	require.Nil(t, err)
	require.Nil(t, worker.handleInput(body))

	require.Len(t, pub.objects, 1)
	report := pub.objects[0].(ReportSchema).Report
	assert.Equal(t, pipeline.StageRead, report.FailedStage)
	assert.Equal(t, "empty.csv", report.Desc)
}

func TestWorkerMissingInput(t *testing.T) {
	worker, _, pub, _ := testWorker(t)

	body, err := json.Marshal(InputSchema{FileKey: "inbox/missing.csv"})
	require.Nil(t, err)
	assert.NotNil(t, worker.handleInput(body))
	assert.Empty(t, pub.objects)

	assert.NotNil(t, worker.handleInput([]byte("{not json")))
}
