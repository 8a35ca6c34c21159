package pipeline

import (
	"bibgraph-backend/domain/evolution"
	"bibgraph-backend/domain/metrics"
	"bibgraph-backend/domain/relation"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/repository/metadata"
	"time"
)

/*
Job 是一次运行的输入。

	Desc 运行描述，为空时使用 InputName；
	InputName 输入文件名；
	Input 输入文件内容，CSV 格式；
	Email 结束后通知的邮箱，可以为空；
	DryRun 为 true 时本次运行写入一个新建的进程内的图，不写入 Setting.Sink；
*/
type Job struct {
	Desc      string
	InputName string
	Input     []byte
	Email     string
	DryRun    bool
}

func (j *Job) desc() string {
	if len(j.Desc) != 0 {
		return j.Desc
	}
	return j.InputName
}

type StageCount struct {
	Stage string `json:"stage"`
	Name  string `json:"name"`
	Rows  int    `json:"rows"`
}

/*
Report 是一次运行的结果，失败的运行同样返回已经完成部分的计数。

	FailedStage 失败的阶段名，成功时为空；
	Evolution 跳过演化时为空；
*/
type Report struct {
	RunID          uint                      `json:"run_id"`
	Desc           string                    `json:"desc"`
	DryRun         bool                      `json:"dry_run"`
	Stages         []StageCount              `json:"stages"`
	Dropped        map[relation.EdgeType]int `json:"dropped"`
	OrphanedPapers int                       `json:"orphaned_papers"`
	Evolution      *evolution.Result         `json:"evolution,omitempty"`
	Metrics        *metrics.Report           `json:"metrics,omitempty"`
	Artifacts      []filesave.SaveFileResp   `json:"artifacts,omitempty"`
	FailedStage    string                    `json:"failed_stage,omitempty"`
	Error          string                    `json:"error,omitempty"`
	StartedAt      time.Time                 `json:"started_at"`
	FinishedAt     time.Time                 `json:"finished_at"`
}

func (r *Report) addStage(stage, name string, rows int) {
	r.Stages = append(r.Stages, StageCount{Stage: stage, Name: name, Rows: rows})
	rowsTotal.WithLabelValues(stage, name).Add(float64(rows))
}

func (r *Report) Succeeded() bool {
	return len(r.FailedStage) == 0
}

func (r *Report) stageCounts() []metadata.StageCount {
	ret := make([]metadata.StageCount, 0, len(r.Stages))
	for i, s := range r.Stages {
		ret = append(ret, metadata.StageCount{
			Seq:   i,
			Stage: s.Stage,
			Name:  s.Name,
			Rows:  s.Rows,
		})
	}
	return ret
}

func (r *Report) droppedCounts() []metadata.DroppedCount {
	var ret []metadata.DroppedCount
	for _, typ := range relation.EdgeTypes {
		count, ok := r.Dropped[typ]
		if !ok {
			continue
		}
		ret = append(ret, metadata.DroppedCount{
			EdgeType: string(typ),
			Count:    count,
		})
	}
	return ret
}

func (r *Report) runReport() *metadata.SchemaRunReport {
	ret := &metadata.SchemaRunReport{}

	if r.Evolution != nil {
		ret.Evolution = &metadata.EvolutionInfo{
			Reviews:      r.Evolution.Reviews,
			Institutions: r.Evolution.Institutions,
			Accepted:     r.Evolution.Accepted,
			Rejected:     r.Evolution.Rejected,
		}
	}

	if r.Metrics != nil {
		ret.Metrics = &metadata.MetricsInfo{
			CommunityKeywords:  r.Metrics.CommunityKeywords,
			CoreVenues:         r.Metrics.CoreVenues,
			TopPapers:          r.Metrics.TopPapers,
			PotentialReviewers: r.Metrics.PotentialReviewers,
			Gurus:              r.Metrics.Gurus,
			AuthorsWithHIndex:  r.Metrics.AuthorsWithHIndex,
			ImpactFactors:      r.Metrics.ImpactFactors,
		}
	}

	return ret
}
