package metadata

import (
	"bibgraph-backend/logging"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestMigration(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	cfg := GenerateTestConfig()
	cfg.CheckMigration = true
	_, err := CreateDatabase(cfg)
	assert.Nil(t, err)
}

func TestUnknownDialect(t *testing.T) {
	_, err := CreateDatabase(&Config{Dialect: "oracle"})
	assert.NotNil(t, err)
}

func TestRunRepository(t *testing.T) {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))

	database, err := CreateDatabase(GenerateTestConfig())
	require.Nil(t, err)
	repo := NewRunRepository(database)

	run := PipelineRun{Desc: "papers.csv", DryRun: true}
	require.Nil(t, repo.Create(&run))
	require.NotZero(t, run.ID)
	assert.Equal(t, RunStatusDoing, run.Status)

	require.Nil(t, repo.AddFiles(run.ID, []File{
		{Role: FileRoleInput, Type: "csv", URL: "runs/1/input.csv", Name: "papers.csv", Hash: make([]byte, 16)},
	}))

	run.OrphanedPapers = 2
	err = repo.Finish(&run,
		[]StageCount{
			{Seq: 1, Stage: "load", Name: "nodes_paper", Rows: 10},
			{Seq: 0, Stage: "normalize", Name: "rows", Rows: 30},
		},
		[]DroppedCount{{EdgeType: "RELATED", Count: 3}},
		&SchemaRunReport{Metrics: &MetricsInfo{TopPapers: 4}},
	)
	require.Nil(t, err)

	got, err := repo.Get(run.ID)
	require.Nil(t, err)
	assert.Equal(t, RunStatusDone, got.Status)
	assert.Equal(t, 2, got.OrphanedPapers)
	assert.True(t, got.FinishedAt.Valid)
	require.Len(t, got.Stages, 2)
	assert.Equal(t, "normalize", got.Stages[0].Stage)
	require.Len(t, got.Dropped, 1)
	assert.Equal(t, 3, got.Dropped[0].Count)
	require.Len(t, got.Files, 1)

	report, err := ParseRunReport(&got.Extra)
	require.Nil(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 4, report.Metrics.TopPapers)
	assert.Nil(t, report.Evolution)

	failed := PipelineRun{Desc: "broken.csv"}
	require.Nil(t, repo.Create(&failed))
	require.Nil(t, repo.Fail(&failed, errors.New("sink unavailable")))

	runs, total, err := repo.List(0, 10)
	require.Nil(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, runs, 2)
	assert.Equal(t, failed.ID, runs[0].ID)
	assert.Equal(t, RunStatusFail, runs[0].Status)
	assert.Equal(t, "sink unavailable", runs[0].Error)

	_, err = repo.Get(9999)
	assert.ErrorIs(t, err, ErrRunNotFound)
}
