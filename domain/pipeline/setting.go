package pipeline

import (
	"bibgraph-backend/domain/entity"
	"bibgraph-backend/domain/metrics"
	"bibgraph-backend/domain/relation"
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/repository/metadata"
	"github.com/sirupsen/logrus"
)

/*
Notifier 在运行结束后通知提交者，失败的运行同样会通知。
*/
type Notifier interface {
	NotifyRunReport(email string, report *Report) error
}

/*
Setting 描述了一个 Runner 的依赖。

	Sink 图存储，必填；
	Runs 运行记录，为空时不落库；
	Saver 产物存储，为空时不保存输入文件和批次 CSV；
	Notifier 邮件通知，为空时不通知；
	Affiliations 作者机构来源，为空时使用以 RandomSeed 为种子的随机来源；
	Reviews 评审来源，为空时使用以 RandomSeed 为种子的随机来源；
	SkipEvolution 跳过评审与机构的演化阶段；
	DryRun Sink 本身就是进程内的图时置为 true，所有运行都记为 DryRun；
*/
type Setting struct {
	Sink     sink.Sink
	Runs     *metadata.RunRepository
	Saver    *filesave.Saver
	Notifier Notifier

	Affiliations entity.AffiliationSource
	Reviews      relation.ReviewSource

	Metrics       metrics.Config
	RandomSeed    int64
	SkipEvolution bool
	DryRun        bool

	Logger *logrus.Logger
}

var runner *Runner

func Init(setting *Setting) {
	runner = NewRunner(setting)
}

func Default() *Runner {
	return runner
}
