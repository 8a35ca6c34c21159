package evolution

import (
	"bibgraph-backend/domain/entity"
	"bibgraph-backend/domain/graph"
	"bibgraph-backend/domain/relation"
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/utils"
	"context"
	"github.com/sirupsen/logrus"
)

type Result struct {
	Reviews      int
	Institutions int
	Accepted     int
	Rejected     int
}

/*
Evolver 在已经载入的图上做演化：写入评审节点及 WROTE / REVIEWS 边，
按作者机构建立 Institution 节点和 IS_FROM 边，最后从图中读回评审并设置论文的 finalDecision。
*/
type Evolver struct {
	sink   sink.Sink
	logger *logrus.Logger
}

func NewEvolver(s sink.Sink, logger *logrus.Logger) *Evolver {
	return &Evolver{
		sink:   s,
		logger: logger,
	}
}

func (e *Evolver) Evolve(ctx context.Context, reviews []relation.Review, authors []entity.Author) (*Result, error) {
	result := &Result{}

	if err := graph.Load(ctx, e.sink, graph.ReviewBatches(reviews), e.logger); err != nil {
		return nil, utils.WrapError(err, "load reviews fail")
	}
	result.Reviews = len(reviews)

	institutions, err := e.linkInstitutions(ctx, authors)
	if err != nil {
		return nil, utils.WrapError(err, "link institutions fail")
	}
	result.Institutions = institutions

	decisions, err := e.decide(ctx)
	if err != nil {
		return nil, utils.WrapError(err, "set final decision fail")
	}
	for _, d := range decisions {
		if d == relation.DecisionAccept {
			result.Accepted++
		} else {
			result.Rejected++
		}
	}

	e.logger.Infof("evolution done: reviews=%d institutions=%d accepted=%d rejected=%d",
		result.Reviews, result.Institutions, result.Accepted, result.Rejected)

	return result, nil
}

/*
linkInstitutions 按名称合并 Institution 节点，并从作者连出 IS_FROM 边，返回机构数。没有机构的作者被跳过。
*/
func (e *Evolver) linkInstitutions(ctx context.Context, authors []entity.Author) (int, error) {
	names := make([]sink.Row, 0)
	links := make([]sink.Row, 0, len(authors))
	seen := make(map[string]struct{})

	for i := range authors {
		a := &authors[i]
		if a.Affiliation == "" {
			continue
		}
		if _, ok := seen[a.Affiliation]; !ok {
			seen[a.Affiliation] = struct{}{}
			names = append(names, sink.Row{graph.PropName: a.Affiliation})
		}
		links = append(links, sink.Row{sink.SourceKey: a.ID, sink.TargetKey: a.Affiliation})
	}

	if len(names) == 0 {
		return 0, nil
	}

	_, err := e.sink.RunWriteQuery(ctx, sink.MergeNodes(graph.LabelInstitution, graph.PropName, names))
	if err != nil {
		return 0, utils.WrapError(err, "merge institutions fail")
	}

	_, err = e.sink.RunWriteQuery(ctx, sink.MergeEdges(graph.EdgeIsFrom,
		graph.LabelAuthor, sink.IDKey, graph.LabelInstitution, graph.PropName, links))
	if err != nil {
		return 0, utils.WrapError(err, "merge is_from edges fail")
	}

	return len(names), nil
}

/*
decide 读回图中全部评审及其 REVIEWS 边计算最终结论，并覆盖所有论文的 finalDecision；
没有评审的论文会被清除该属性。
*/
func (e *Evolver) decide(ctx context.Context) (map[string]relation.Decision, error) {
	reviewRows, err := e.sink.RunReadQuery(ctx, sink.MatchNodes(graph.LabelReview))
	if err != nil {
		return nil, utils.WrapError(err, "read reviews fail")
	}

	suggested := make(map[string]relation.Decision, len(reviewRows))
	for _, row := range reviewRows {
		suggested[sink.String(row, sink.IDKey)] = relation.Decision(sink.String(row, graph.PropSuggestedDecision))
	}

	edgeRows, err := e.sink.RunReadQuery(ctx, sink.MatchEdges(string(relation.Reviews), graph.LabelReview, graph.LabelPaper))
	if err != nil {
		return nil, utils.WrapError(err, "read reviews edges fail")
	}

	edges := make([]relation.Edge, len(edgeRows))
	for i, row := range edgeRows {
		edges[i] = relation.Edge{Source: sink.String(row, sink.SourceKey), Target: sink.String(row, sink.TargetKey)}
	}

	decisions := FinalDecisions(suggested, edges)

	paperRows, err := e.sink.RunReadQuery(ctx, sink.MatchNodes(graph.LabelPaper))
	if err != nil {
		return nil, utils.WrapError(err, "read papers fail")
	}

	values := make(map[string]interface{}, len(paperRows))
	for _, row := range paperRows {
		id := sink.String(row, sink.IDKey)
		if d, ok := decisions[id]; ok {
			values[id] = string(d)
		} else {
			values[id] = nil
		}
	}

	_, err = e.sink.RunWriteQuery(ctx, sink.SetProperty(graph.LabelPaper, graph.PropFinalDecision, values))
	if err != nil {
		return nil, utils.WrapError(err, "write final decision fail")
	}

	return decisions, nil
}
