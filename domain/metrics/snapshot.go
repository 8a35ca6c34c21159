package metrics

import (
	"bibgraph-backend/domain/graph"
	"bibgraph-backend/domain/record"
	"bibgraph-backend/domain/relation"
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/utils"
	"context"
)

type Keyword struct {
	ID   string
	Text string
}

// VenueRef 唯一确定一个 venue：不同类型的 venue 的 id 空间相互独立。
type VenueRef struct {
	Kind record.VenueKind
	ID   string
}

type Venue struct {
	VenueRef
	Year int
}

/*
Snapshot 是指标计算所需的图的只读视图，由 LoadSnapshot 从 sink 中读出，也可以在测试中直接构造。
PaperYears 中年份未知的论文为 0。
*/
type Snapshot struct {
	PaperYears  map[string]int
	Authors     []string
	Keywords    []Keyword
	Venues      []Venue
	AuthorOf    []relation.Edge
	About       []relation.Edge
	Related     []relation.Edge
	PublishedIn map[VenueRef][]string
}

func (s *Snapshot) PaperIDs() []string {
	ret := make([]string, 0, len(s.PaperYears))
	for id := range s.PaperYears {
		ret = append(ret, id)
	}
	return sortedStrings(ret)
}

/*
LoadSnapshot 通过 sink 的读查询读回已经写入的节点和边。
*/
func LoadSnapshot(ctx context.Context, s sink.Sink) (*Snapshot, error) {
	snap := &Snapshot{
		PaperYears:  make(map[string]int),
		PublishedIn: make(map[VenueRef][]string),
	}

	papers, err := s.RunReadQuery(ctx, sink.MatchNodes(graph.LabelPaper))
	if err != nil {
		return nil, utils.WrapError(err, "read papers fail")
	}
	for _, row := range papers {
		year, _ := sink.Int(row, graph.PropYear)
		snap.PaperYears[sink.String(row, sink.IDKey)] = year
	}

	authors, err := s.RunReadQuery(ctx, sink.MatchNodes(graph.LabelAuthor))
	if err != nil {
		return nil, utils.WrapError(err, "read authors fail")
	}
	for _, row := range authors {
		snap.Authors = append(snap.Authors, sink.String(row, sink.IDKey))
	}

	keywords, err := s.RunReadQuery(ctx, sink.MatchNodes(graph.LabelKeyword))
	if err != nil {
		return nil, utils.WrapError(err, "read keywords fail")
	}
	for _, row := range keywords {
		snap.Keywords = append(snap.Keywords, Keyword{
			ID:   sink.String(row, sink.IDKey),
			Text: sink.String(row, graph.PropKeyword),
		})
	}

	for _, kind := range record.VenueKinds {
		label, _ := graph.VenueLabel(kind)

		venues, err := s.RunReadQuery(ctx, sink.MatchNodes(label))
		if err != nil {
			return nil, utils.WrapErrorf(err, "read %s fail", label)
		}
		for _, row := range venues {
			year, _ := sink.Int(row, graph.PropYear)
			snap.Venues = append(snap.Venues, Venue{
				VenueRef: VenueRef{Kind: kind, ID: sink.String(row, sink.IDKey)},
				Year:     year,
			})
		}

		published, err := readEdges(ctx, s, sink.MatchEdges(string(relation.PublishedIn), graph.LabelPaper, label))
		if err != nil {
			return nil, utils.WrapErrorf(err, "read published_in of %s fail", label)
		}
		for _, e := range published {
			ref := VenueRef{Kind: kind, ID: e.Target}
			snap.PublishedIn[ref] = append(snap.PublishedIn[ref], e.Source)
		}
	}

	if snap.AuthorOf, err = readEdges(ctx, s, sink.MatchEdges(string(relation.AuthorOf), graph.LabelAuthor, graph.LabelPaper)); err != nil {
		return nil, utils.WrapError(err, "read author_of fail")
	}
	if snap.About, err = readEdges(ctx, s, sink.MatchEdges(string(relation.About), graph.LabelPaper, graph.LabelKeyword)); err != nil {
		return nil, utils.WrapError(err, "read about fail")
	}
	if snap.Related, err = readEdges(ctx, s, sink.MatchEdges(string(relation.Related), graph.LabelPaper, graph.LabelPaper)); err != nil {
		return nil, utils.WrapError(err, "read related fail")
	}

	return snap, nil
}

func readEdges(ctx context.Context, s sink.Sink, query sink.Query) ([]relation.Edge, error) {
	rows, err := s.RunReadQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	ret := make([]relation.Edge, len(rows))
	for i, row := range rows {
		ret[i] = relation.Edge{
			Source: sink.String(row, sink.SourceKey),
			Target: sink.String(row, sink.TargetKey),
		}
	}
	return ret, nil
}
