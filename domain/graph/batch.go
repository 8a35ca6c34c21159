package graph

import (
	"bibgraph-backend/domain/entity"
	"bibgraph-backend/domain/record"
	"bibgraph-backend/domain/relation"
	"bibgraph-backend/domain/sink"
)

/*
NodeBatch 与 RelBatch 在 sink 批次的基础上附带了产物名称和列顺序，用于输出 CSV。
*/
type NodeBatch struct {
	sink.EntityBatch
	Name    string
	Columns []string
}

type RelBatch struct {
	sink.EdgeBatch
	Name    string
	Columns []string
}

/*
Batches 是一次运行要写入图存储的全部批次，按写入顺序排列：先节点，后边。
*/
type Batches struct {
	Nodes []NodeBatch
	Edges []RelBatch
}

func (b *Batches) Append(other *Batches) {
	b.Nodes = append(b.Nodes, other.Nodes...)
	b.Edges = append(b.Edges, other.Edges...)
}

// RowCounts 返回每个批次名到行数的映射。
func (b *Batches) RowCounts() map[string]int {
	ret := make(map[string]int, len(b.Nodes)+len(b.Edges))
	for _, n := range b.Nodes {
		ret[n.Name] = len(n.Rows)
	}
	for _, e := range b.Edges {
		ret[e.Name] = len(e.Rows)
	}
	return ret
}

var edgeColumns = []string{sink.SourceKey, sink.TargetKey}

/*
Assemble 把实体集合和关系结果转换为节点批次和边批次。每种 venue 各占一个节点批次，
PUBLISHED_IN 也按 venue 类型拆分为三个批次。评审不在其中，由演化阶段单独写入。
*/
func Assemble(set *entity.Set, rel *relation.Result) *Batches {
	ret := &Batches{
		Nodes: []NodeBatch{
			paperBatch(set.Papers),
			authorBatch(set.Authors),
			keywordBatch(set.Keywords),
		},
	}

	for _, kind := range record.VenueKinds {
		ret.Nodes = append(ret.Nodes, venueBatch(kind, set.Venues[kind]))
	}

	ret.Edges = append(ret.Edges,
		relBatch(string(relation.AuthorOf), LabelAuthor, LabelPaper, "", rel.AuthorOf),
		relBatch(string(relation.CorrespondingAuthor), LabelAuthor, LabelPaper, "", rel.CorrespondingAuthor),
		relBatch(string(relation.About), LabelPaper, LabelKeyword, "", rel.About),
		relBatch(string(relation.Related), LabelPaper, LabelPaper, "", rel.Related),
	)
	for _, kind := range record.VenueKinds {
		label, _ := VenueLabel(kind)
		ret.Edges = append(ret.Edges, relBatch(string(relation.PublishedIn), LabelPaper, label, string(kind), rel.PublishedIn[kind]))
	}

	return ret
}

/*
ReviewBatches 返回评审节点以及 WROTE、REVIEWS 两种边。
*/
func ReviewBatches(reviews []relation.Review) *Batches {
	rows := make([]sink.Row, len(reviews))
	wrote := make([]relation.Edge, len(reviews))
	reviewsEdges := make([]relation.Edge, len(reviews))

	for i := range reviews {
		r := &reviews[i]
		rows[i] = sink.Row{
			sink.IDKey:            r.ID,
			PropComment:           r.Comment,
			PropScore:             r.Score,
			PropSuggestedDecision: string(r.SuggestedDecision),
		}
		wrote[i] = r.WroteEdge()
		reviewsEdges[i] = r.ReviewsEdge()
	}

	return &Batches{
		Nodes: []NodeBatch{{
			EntityBatch: sink.EntityBatch{Label: LabelReview, Rows: rows},
			Name:        nodeBatchName(LabelReview),
			Columns:     []string{sink.IDKey, PropComment, PropScore, PropSuggestedDecision},
		}},
		Edges: []RelBatch{
			relBatch(string(relation.Wrote), LabelAuthor, LabelReview, "", wrote),
			relBatch(string(relation.Reviews), LabelReview, LabelPaper, "", reviewsEdges),
		},
	}
}

func paperBatch(papers []entity.Paper) NodeBatch {
	rows := make([]sink.Row, len(papers))
	for i := range papers {
		p := &papers[i]
		rows[i] = sink.Row{
			sink.IDKey:   p.ID,
			PropTitle:    p.Title,
			PropYear:     optionalInt(p.Year),
			PropAbstract: p.Abstract,
			PropDOI:      optionalString(p.DOI),
		}
	}

	return NodeBatch{
		EntityBatch: sink.EntityBatch{Label: LabelPaper, Rows: rows},
		Name:        nodeBatchName(LabelPaper),
		Columns:     []string{sink.IDKey, PropTitle, PropYear, PropAbstract, PropDOI},
	}
}

func authorBatch(authors []entity.Author) NodeBatch {
	rows := make([]sink.Row, len(authors))
	for i := range authors {
		a := &authors[i]
		rows[i] = sink.Row{
			sink.IDKey:      a.ID,
			PropName:        a.Name,
			PropAffiliation: optionalString(a.Affiliation),
		}
	}

	return NodeBatch{
		EntityBatch: sink.EntityBatch{Label: LabelAuthor, Rows: rows},
		Name:        nodeBatchName(LabelAuthor),
		Columns:     []string{sink.IDKey, PropName, PropAffiliation},
	}
}

func keywordBatch(keywords []entity.Keyword) NodeBatch {
	rows := make([]sink.Row, len(keywords))
	for i := range keywords {
		rows[i] = sink.Row{
			sink.IDKey:  keywords[i].ID,
			PropKeyword: keywords[i].Text,
		}
	}

	return NodeBatch{
		EntityBatch: sink.EntityBatch{Label: LabelKeyword, Rows: rows},
		Name:        nodeBatchName(LabelKeyword),
		Columns:     []string{sink.IDKey, PropKeyword},
	}
}

func venueBatch(kind record.VenueKind, venues []entity.Venue) NodeBatch {
	label, _ := VenueLabel(kind)
	columns := []string{sink.IDKey, PropVenue, PropYear}
	if kind == record.VenueJournal {
		columns = append(columns, PropVolume)
	}

	rows := make([]sink.Row, len(venues))
	for i := range venues {
		v := &venues[i]
		row := sink.Row{
			sink.IDKey: v.ID,
			PropVenue:  v.Name,
			PropYear:   optionalInt(v.Year),
		}
		if kind == record.VenueJournal {
			row[PropVolume] = v.Volume
		}
		rows[i] = row
	}

	return NodeBatch{
		EntityBatch: sink.EntityBatch{Label: label, Rows: rows},
		Name:        nodeBatchName(label),
		Columns:     columns,
	}
}

func relBatch(typ, sourceLabel, targetLabel, qualifier string, edges []relation.Edge) RelBatch {
	rows := make([]sink.Row, len(edges))
	for i, e := range edges {
		rows[i] = sink.Row{
			sink.SourceKey: e.Source,
			sink.TargetKey: e.Target,
		}
	}

	return RelBatch{
		EdgeBatch: sink.EdgeBatch{
			Type:        typ,
			SourceLabel: sourceLabel,
			TargetLabel: targetLabel,
			Rows:        rows,
		},
		Name:    edgeBatchName(typ, qualifier),
		Columns: edgeColumns,
	}
}

// 缺失值写为 nil，存储中不会出现该属性
func optionalString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func optionalInt(v int) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
