package pipeline

import (
	"bibgraph-backend/domain/entity"
	"bibgraph-backend/domain/evolution"
	"bibgraph-backend/domain/graph"
	"bibgraph-backend/domain/metrics"
	"bibgraph-backend/domain/record"
	"bibgraph-backend/domain/relation"
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/repository/memgraph"
	"bibgraph-backend/repository/metadata"
	"bibgraph-backend/utils"
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"math/rand"
	"strconv"
	"sync"
	"time"
)

var ErrStageFailed = errors.New("pipeline stage failed")

// 阶段名
const (
	StageRead      = "read"
	StageNormalize = "normalize"
	StageDedup     = "dedup"
	StageDerive    = "derive"
	StageArtifacts = "artifacts"
	StageLoad      = "load"
	StageEvolution = "evolution"
	StageMetrics   = "metrics"
)

/*
Runner 执行完整的流水线：

	read → normalize → dedup → derive → artifacts → load → evolution → metrics

每个阶段完整消费上一阶段的输出后下一阶段才开始。任一阶段失败时停止，已经写入图存储的数据不回滚。
ctx 的取消和超时只在阶段之间检查，已经开始的阶段总是在不带截止时间的 context 上执行完，
避免图中只留下一部分节点或边。同一个 Runner 上的运行串行执行。
*/
type Runner struct {
	setting Setting
	logger  *logrus.Logger

	lock sync.Mutex
}

func NewRunner(setting *Setting) *Runner {
	logger := setting.Logger
	if logger == nil {
		logger = logging.NewLogger()
	}

	return &Runner{
		setting: *setting,
		logger:  logger,
	}
}

// state 是一次运行中各阶段之间传递的数据。
type state struct {
	job    *Job
	report *Report
	run    *metadata.PipelineRun
	dir    string
	sink   sink.Sink

	raw     []record.RawRow
	rows    []record.Row
	set     *entity.Set
	rel     *relation.Result
	batches *graph.Batches
}

/*
Run 执行一次运行。成功与失败都会返回 Report；失败时 error 同时满足 errors.Is(err, ErrStageFailed)。
运行记录与通知的失败只记录日志，不影响返回值。
*/
func (r *Runner) Run(ctx context.Context, job *Job) (*Report, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	st := &state{
		job: job,
		report: &Report{
			Desc:      job.desc(),
			DryRun:    job.DryRun || r.setting.DryRun,
			Dropped:   make(map[relation.EdgeType]int),
			StartedAt: time.Now(),
		},
	}

	st.sink = r.setting.Sink
	if job.DryRun && !r.setting.DryRun {
		st.sink = memgraph.New()
		r.logger.Infof("run [%s] is a dry run, writing to an in-process graph", st.report.Desc)
	}

	r.createRun(st)

	err := r.runStages(ctx, st)
	st.report.FinishedAt = time.Now()

	if err != nil {
		st.report.Error = err.Error()
		runsTotal.WithLabelValues(metadata.RunStatusName(metadata.RunStatusFail)).Inc()
		r.logger.WithError(err).Errorf("run [%s] fail at stage [%s]", st.report.Desc, st.report.FailedStage)
		r.failRun(st, err)
	} else {
		runsTotal.WithLabelValues(metadata.RunStatusName(metadata.RunStatusDone)).Inc()
		r.logger.Infof("run [%s] done in %s", st.report.Desc, st.report.FinishedAt.Sub(st.report.StartedAt))
		r.finishRun(st)
	}

	r.notify(st)

	return st.report, err
}

func (r *Runner) runStages(ctx context.Context, st *state) error {
	stages := []struct {
		name string
		run  func(ctx context.Context, st *state) error
	}{
		{StageRead, r.read},
		{StageNormalize, r.normalize},
		{StageDedup, r.dedup},
		{StageDerive, r.derive},
		{StageArtifacts, r.saveArtifacts},
		{StageLoad, r.load},
		{StageEvolution, r.evolve},
		{StageMetrics, r.computeMetrics},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			st.report.FailedStage = stage.name
			return fmt.Errorf("%w [%s]: %w", ErrStageFailed, stage.name, err)
		}

		begin := time.Now()
		err := stage.run(context.WithoutCancel(ctx), st)
		stageDuration.WithLabelValues(stage.name).Observe(time.Since(begin).Seconds())

		if err != nil {
			st.report.FailedStage = stage.name
			return fmt.Errorf("%w [%s]: %w", ErrStageFailed, stage.name, err)
		}
	}

	return nil
}

func (r *Runner) read(ctx context.Context, st *state) error {
	raw, err := record.ReadCSV(bytes.NewReader(st.job.Input))
	if err != nil {
		return utils.WrapErrorf(err, "parse input [%s] fail", st.job.InputName)
	}
	st.raw = raw
	st.report.addStage(StageRead, "raw_rows", len(raw))

	if r.setting.Saver == nil || len(st.job.InputName) == 0 {
		return nil
	}

	resp, err := r.setting.Saver.SaveFile(ctx, st.dir, st.job.InputName, st.job.Input)
	if err != nil {
		return utils.WrapError(err, "save input fail")
	}
	r.addFiles(st, metadata.FileRoleInput, []filesave.SaveFileResp{resp}, []string{st.job.InputName})

	return nil
}

func (r *Runner) normalize(_ context.Context, st *state) error {
	st.rows = record.Normalize(st.raw)
	st.report.addStage(StageNormalize, "rows", len(st.rows))

	r.logger.WithFields(logrus.Fields{
		"raw":  len(st.raw),
		"rows": len(st.rows),
	}).Info("normalize done")
	return nil
}

func (r *Runner) dedup(_ context.Context, st *state) error {
	affiliations := r.setting.Affiliations
	if affiliations == nil {
		affiliations = entity.NewRandomAffiliations(r.setting.RandomSeed, nil)
	}

	set := entity.Deduplicate(st.rows, affiliations)
	st.set = set

	fields := logrus.Fields{}
	add := func(name string, rows int) {
		st.report.addStage(StageDedup, name, rows)
		fields[name] = rows
	}
	add(graph.LabelPaper, len(set.Papers))
	add(graph.LabelAuthor, len(set.Authors))
	add(graph.LabelKeyword, len(set.Keywords))
	for _, kind := range record.VenueKinds {
		add(string(kind), len(set.Venues[kind]))
	}

	r.logger.WithFields(fields).Info("dedup done")
	return nil
}

func (r *Runner) derive(_ context.Context, st *state) error {
	reviews := r.setting.Reviews
	if reviews == nil {
		reviews = relation.NewRandomReviewSource(rand.New(rand.NewSource(r.setting.RandomSeed)))
	}

	rel := relation.Derive(st.rows, st.set, reviews)
	st.rel = rel

	st.batches = graph.Assemble(st.set, rel)

	countFields := logrus.Fields{}
	for _, typ := range relation.EdgeTypes {
		st.report.addStage(StageDerive, string(typ), rel.Count(typ))
		countFields[string(typ)] = rel.Count(typ)
	}

	droppedFields := logrus.Fields{}
	for typ, count := range rel.Dropped {
		st.report.Dropped[typ] = count
		droppedEdgesTotal.WithLabelValues(string(typ)).Add(float64(count))
		droppedFields[string(typ)] = count
	}
	st.report.OrphanedPapers = len(rel.OrphanedPapers)

	r.logger.WithFields(countFields).Info("derive done")
	r.logger.WithFields(droppedFields).
		WithField("orphaned_papers", len(rel.OrphanedPapers)).
		Info("derive dropped rows")
	return nil
}

func (r *Runner) saveArtifacts(ctx context.Context, st *state) error {
	if r.setting.Saver == nil {
		return nil
	}

	all := &graph.Batches{}
	all.Append(st.batches)
	if !r.setting.SkipEvolution {
		all.Append(graph.ReviewBatches(st.rel.Reviews))
	}

	artifacts, err := graph.TransBatchesToCSV(all)
	if err != nil {
		return utils.WrapError(err, "build batch csv fail")
	}

	responses := make([]filesave.SaveFileResp, 0, len(artifacts))
	names := make([]string, 0, len(artifacts))
	for i := range artifacts {
		artifact := &artifacts[i]
		resp, err := r.setting.Saver.SaveFile(ctx, st.dir, artifact.FileName(), artifact.Content)
		if err != nil {
			return utils.WrapErrorf(err, "save artifact [%s] fail", artifact.FileName())
		}
		responses = append(responses, resp)
		names = append(names, artifact.Name)
	}

	st.report.Artifacts = responses
	st.report.addStage(StageArtifacts, "files", len(responses))
	r.addFiles(st, metadata.FileRoleArtifact, responses, names)
	return nil
}

// load 写入 derive 阶段组装的批次，评审批次由 evolve 写入。
func (r *Runner) load(ctx context.Context, st *state) error {
	batches := st.batches
	if err := graph.Load(ctx, st.sink, batches, r.logger); err != nil {
		return err
	}

	for _, batch := range batches.Nodes {
		st.report.addStage(StageLoad, batch.Name, len(batch.Rows))
	}
	for _, batch := range batches.Edges {
		st.report.addStage(StageLoad, batch.Name, len(batch.Rows))
	}
	return nil
}

func (r *Runner) evolve(ctx context.Context, st *state) error {
	if r.setting.SkipEvolution {
		r.logger.Info("evolution skipped")
		return nil
	}

	result, err := evolution.NewEvolver(st.sink, r.logger).Evolve(ctx, st.rel.Reviews, st.set.Authors)
	if err != nil {
		return err
	}

	st.report.Evolution = result
	st.report.addStage(StageEvolution, "reviews", result.Reviews)
	st.report.addStage(StageEvolution, "institutions", result.Institutions)
	st.report.addStage(StageEvolution, "accepted", result.Accepted)
	st.report.addStage(StageEvolution, "rejected", result.Rejected)
	return nil
}

func (r *Runner) computeMetrics(ctx context.Context, st *state) error {
	result, err := metrics.NewEngine(st.sink, r.setting.Metrics, r.logger).Run(ctx)
	if err != nil {
		return err
	}

	st.report.Metrics = result
	st.report.addStage(StageMetrics, "community_keywords", result.CommunityKeywords)
	st.report.addStage(StageMetrics, "core_venues", result.CoreVenues)
	st.report.addStage(StageMetrics, "top_papers", result.TopPapers)
	st.report.addStage(StageMetrics, "potential_reviewers", result.PotentialReviewers)
	st.report.addStage(StageMetrics, "gurus", result.Gurus)
	st.report.addStage(StageMetrics, "h_index", result.AuthorsWithHIndex)
	st.report.addStage(StageMetrics, "impact_factor", result.ImpactFactors)
	return nil
}

/////////////////////////////////////////// 运行记录 ///////////////////////////////////////////

func (r *Runner) createRun(st *state) {
	st.dir = st.report.StartedAt.Format("20060102-150405.000")

	if r.setting.Runs == nil {
		return
	}

	run := &metadata.PipelineRun{
		Desc:   st.report.Desc,
		DryRun: st.report.DryRun,
		Email:  st.job.Email,
	}
	if err := r.setting.Runs.Create(run); err != nil {
		r.logger.WithError(err).Errorf("create run record fail: %s", err.Error())
		return
	}

	st.run = run
	st.report.RunID = run.ID
	st.dir = strconv.FormatUint(uint64(run.ID), 10)
}

func (r *Runner) addFiles(st *state, role uint, responses []filesave.SaveFileResp, names []string) {
	if st.run == nil {
		return
	}

	files := make([]metadata.File, 0, len(responses))
	for i, resp := range responses {
		files = append(files, metadata.File{
			Role: role,
			Type: resp.Type,
			URL:  resp.URL,
			Name: names[i],
			Hash: resp.HashBytes(),
		})
	}

	if err := r.setting.Runs.AddFiles(st.run.ID, files); err != nil {
		r.logger.WithError(err).Errorf("record files of run [%d] fail: %s", st.run.ID, err.Error())
	}
}

func (r *Runner) finishRun(st *state) {
	if st.run == nil {
		return
	}

	st.run.OrphanedPapers = st.report.OrphanedPapers
	err := r.setting.Runs.Finish(st.run, st.report.stageCounts(), st.report.droppedCounts(), st.report.runReport())
	if err != nil {
		r.logger.WithError(err).Errorf("finish run [%d] fail: %s", st.run.ID, err.Error())
	}
}

func (r *Runner) failRun(st *state, cause error) {
	if st.run == nil {
		return
	}

	if err := r.setting.Runs.Fail(st.run, cause); err != nil {
		r.logger.WithError(err).Errorf("mark run [%d] fail: %s", st.run.ID, err.Error())
	}
}

func (r *Runner) notify(st *state) {
	if r.setting.Notifier == nil || len(st.job.Email) == 0 {
		return
	}

	if err := r.setting.Notifier.NotifyRunReport(st.job.Email, st.report); err != nil {
		r.logger.WithError(err).Errorf("notify [%s] fail: %s", st.job.Email, err.Error())
	}
}
