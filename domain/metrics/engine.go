package metrics

import (
	"bibgraph-backend/domain/graph"
	"bibgraph-backend/domain/record"
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/utils"
	"context"
	"github.com/sirupsen/logrus"
)

type Config struct {
	CommunityName     string
	CommunityKeywords []string
	CoreThreshold     float64
	TopPaperLimit     int
}

// Report 是各阶段的产出规模。
type Report struct {
	CommunityKeywords  int
	CoreVenues         int
	TopPapers          int
	PotentialReviewers int
	Gurus              int
	AuthorsWithHIndex  int
	ImpactFactors      int
}

/*
Engine 按顺序执行六个阶段：

 1. 关键词关联到研究社区
 2. 核心 venue 分类
 3. 高被引论文标记
 4. 作者角色分类
 5. H 指数
 6. journal 影响因子

每个阶段的结果写回 sink 之后下一阶段才开始，后续阶段从 sink 中读回前一阶段的标记。
数值结果总是覆盖写入，标签只增不减。任一阶段失败时立即返回，不再执行后续阶段。
*/
type Engine struct {
	sink   sink.Sink
	config Config
	logger *logrus.Logger

	snap   *Snapshot
	counts map[string]int
	report Report
}

func NewEngine(s sink.Sink, config Config, logger *logrus.Logger) *Engine {
	return &Engine{
		sink:   s,
		config: config,
		logger: logger,
	}
}

func (e *Engine) Run(ctx context.Context) (*Report, error) {
	snap, err := LoadSnapshot(ctx, e.sink)
	if err != nil {
		return nil, utils.WrapError(err, "load snapshot fail")
	}
	e.snap = snap
	e.counts = CitationCounts(snap.PaperIDs(), snap.Related)
	e.report = Report{}

	stages := []struct {
		name string
		run  func(ctx context.Context) error
	}{
		{"link community", e.linkCommunity},
		{"classify venues", e.classifyVenues},
		{"mark top papers", e.markTopPapers},
		{"classify authors", e.classifyAuthors},
		{"h-index", e.writeHIndexes},
		{"impact factor", e.writeImpactFactors},
	}

	for i, stage := range stages {
		if err := stage.run(ctx); err != nil {
			return nil, utils.WrapErrorf(err, "stage %d (%s) fail", i+1, stage.name)
		}
		e.logger.Infof("metrics stage %d (%s) done", i+1, stage.name)
	}

	report := e.report
	return &report, nil
}

func (e *Engine) linkCommunity(ctx context.Context) error {
	ids := LinkCommunity(e.snap.Keywords, e.config.CommunityKeywords)

	_, err := e.sink.RunWriteQuery(ctx, sink.MergeNodes(graph.LabelCommunity, graph.PropName,
		[]sink.Row{{graph.PropName: e.config.CommunityName}}))
	if err != nil {
		return utils.WrapError(err, "merge community fail")
	}

	rows := make([]sink.Row, len(ids))
	for i, id := range ids {
		rows[i] = sink.Row{sink.SourceKey: id, sink.TargetKey: e.config.CommunityName}
	}
	_, err = e.sink.RunWriteQuery(ctx, sink.MergeEdges(graph.EdgeBelongsTo,
		graph.LabelKeyword, sink.IDKey, graph.LabelCommunity, graph.PropName, rows))
	if err != nil {
		return utils.WrapError(err, "merge belongs_to fail")
	}

	e.report.CommunityKeywords = len(ids)
	return nil
}

func (e *Engine) classifyVenues(ctx context.Context) error {
	query := sink.MatchEdges(graph.EdgeBelongsTo, graph.LabelKeyword, graph.LabelCommunity)
	query.TargetKey = graph.PropName
	rows, err := e.sink.RunReadQuery(ctx, query)
	if err != nil {
		return utils.WrapError(err, "read community keywords fail")
	}

	keywords := make([]string, 0, len(rows))
	for _, row := range rows {
		if sink.String(row, sink.TargetKey) == e.config.CommunityName {
			keywords = append(keywords, sink.String(row, sink.SourceKey))
		}
	}

	core := ClassifyVenues(e.snap, keywords, e.config.CoreThreshold)

	byKind := make(map[record.VenueKind][]string)
	for _, ref := range core {
		byKind[ref.Kind] = append(byKind[ref.Kind], ref.ID)
	}

	for _, kind := range record.VenueKinds {
		label, _ := graph.VenueLabel(kind)
		ids := byKind[kind]

		if len(ids) != 0 {
			if _, err := e.sink.RunWriteQuery(ctx, sink.AddLabel(label, graph.LabelDatabaseVenue, ids)); err != nil {
				return utils.WrapErrorf(err, "label %s fail", label)
			}
		}

		values, err := e.databaseVenueFlags(ctx, label, ids)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			continue
		}
		if _, err := e.sink.RunWriteQuery(ctx, sink.SetProperty(label, graph.PropIsDatabaseVenue, values)); err != nil {
			return utils.WrapErrorf(err, "flag %s fail", label)
		}
	}

	e.report.CoreVenues = len(core)
	return nil
}

/*
databaseVenueFlags 返回需要写入的 isDatabaseVenue：core 中的 venue 为 true；
其余 venue 只在还没有这个属性时写入 false，已经为 true 的 venue 保持不变。
*/
func (e *Engine) databaseVenueFlags(ctx context.Context, label string, core []string) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(core))
	for _, id := range core {
		values[id] = true
	}

	rows, err := e.sink.RunReadQuery(ctx, sink.MatchNodes(label))
	if err != nil {
		return nil, utils.WrapErrorf(err, "read %s fail", label)
	}
	for _, row := range rows {
		id := sink.String(row, sink.IDKey)
		if _, ok := values[id]; ok {
			continue
		}
		if _, ok := row[graph.PropIsDatabaseVenue]; !ok {
			values[id] = false
		}
	}
	return values, nil
}

func (e *Engine) markTopPapers(ctx context.Context) error {
	candidates := make([]string, 0)
	for _, kind := range record.VenueKinds {
		label, _ := graph.VenueLabel(kind)

		rows, err := e.sink.RunReadQuery(ctx, sink.MatchNodes(label))
		if err != nil {
			return utils.WrapErrorf(err, "read %s fail", label)
		}
		for _, row := range rows {
			if !sink.HasLabel(row, graph.LabelDatabaseVenue) {
				continue
			}
			ref := VenueRef{Kind: kind, ID: sink.String(row, sink.IDKey)}
			candidates = append(candidates, e.snap.PublishedIn[ref]...)
		}
	}

	values := make(map[string]interface{}, len(e.counts))
	for id, count := range e.counts {
		values[id] = count
	}
	if _, err := e.sink.RunWriteQuery(ctx, sink.SetProperty(graph.LabelPaper, graph.PropCitationCount, values)); err != nil {
		return utils.WrapError(err, "write citation count fail")
	}

	top := TopCited(candidates, e.counts, e.config.TopPaperLimit)
	if len(top) > 0 {
		if _, err := e.sink.RunWriteQuery(ctx, sink.AddLabel(graph.LabelPaper, graph.LabelTopPaper, top)); err != nil {
			return utils.WrapError(err, "label top papers fail")
		}
	}

	e.report.TopPapers = len(top)
	return nil
}

func (e *Engine) classifyAuthors(ctx context.Context) error {
	rows, err := e.sink.RunReadQuery(ctx, sink.MatchNodes(graph.LabelTopPaper))
	if err != nil {
		return utils.WrapError(err, "read top papers fail")
	}

	top := make([]string, len(rows))
	for i, row := range rows {
		top[i] = sink.String(row, sink.IDKey)
	}

	reviewers, gurus := ClassifyAuthors(e.snap.AuthorOf, top)

	if len(reviewers) > 0 {
		if _, err := e.sink.RunWriteQuery(ctx, sink.AddLabel(graph.LabelAuthor, graph.LabelPotentialReviewer, reviewers)); err != nil {
			return utils.WrapError(err, "label reviewers fail")
		}
	}
	if len(gurus) > 0 {
		if _, err := e.sink.RunWriteQuery(ctx, sink.AddLabel(graph.LabelAuthor, graph.LabelGuru, gurus)); err != nil {
			return utils.WrapError(err, "label gurus fail")
		}
	}

	e.report.PotentialReviewers = len(reviewers)
	e.report.Gurus = len(gurus)
	return nil
}

func (e *Engine) writeHIndexes(ctx context.Context) error {
	hIndexes := HIndexes(e.snap.Authors, e.snap.AuthorOf, e.counts)

	values := make(map[string]interface{}, len(hIndexes))
	for author, h := range hIndexes {
		if h == nil {
			values[author] = nil
			continue
		}
		values[author] = *h
		e.report.AuthorsWithHIndex++
	}

	if _, err := e.sink.RunWriteQuery(ctx, sink.SetProperty(graph.LabelAuthor, graph.PropHIndex, values)); err != nil {
		return utils.WrapError(err, "write h-index fail")
	}
	return nil
}

func (e *Engine) writeImpactFactors(ctx context.Context) error {
	factors := ImpactFactors(e.snap)

	values := make(map[string]interface{}, len(factors))
	for journal, f := range factors {
		if f == nil {
			values[journal] = nil
			continue
		}
		values[journal] = *f
		e.report.ImpactFactors++
	}

	if _, err := e.sink.RunWriteQuery(ctx, sink.SetProperty(graph.LabelJournal, graph.PropImpactFactor, values)); err != nil {
		return utils.WrapError(err, "write impact factor fail")
	}
	return nil
}
