package relation

import "bibgraph-backend/domain/record"

type EdgeType string

const (
	AuthorOf            EdgeType = "AUTHOR_OF"
	CorrespondingAuthor EdgeType = "CORRESPONDING_AUTHOR"
	About               EdgeType = "ABOUT"
	Related             EdgeType = "RELATED"
	PublishedIn         EdgeType = "PUBLISHED_IN"
	Wrote               EdgeType = "WROTE"
	Reviews             EdgeType = "REVIEWS"
)

// EdgeTypes 按写入顺序列出全部边类型。
var EdgeTypes = []EdgeType{AuthorOf, CorrespondingAuthor, About, Related, PublishedIn, Wrote, Reviews}

type Edge struct {
	Source string
	Target string
}

type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// SuggestDecision 评分大于 3 时建议接收。
func SuggestDecision(score int) Decision {
	if score > 3 {
		return DecisionAccept
	}
	return DecisionReject
}

/*
Review 是合成的评审，由 AuthorID 撰写，评审 PaperID。ID 在一次运行内按生成顺序稠密分配。
*/
type Review struct {
	ID                string
	AuthorID          string
	PaperID           string
	Comment           string
	Score             int
	SuggestedDecision Decision
}

func (r *Review) WroteEdge() Edge {
	return Edge{Source: r.AuthorID, Target: r.ID}
}

func (r *Review) ReviewsEdge() Edge {
	return Edge{Source: r.ID, Target: r.PaperID}
}

/*
Result 是关系推导的输出。每种边类型一批，批内 (Source, Target) 唯一。

Dropped 记录每种边类型因端点无法解析而丢弃的行数；OrphanedPapers 是没有任何 PUBLISHED_IN 边的论文数。
*/
type Result struct {
	AuthorOf            []Edge
	CorrespondingAuthor []Edge
	About               []Edge
	Related             []Edge
	PublishedIn         map[record.VenueKind][]Edge
	Reviews             []Review

	Dropped        map[EdgeType]int
	OrphanedPapers []string
}

// Count 返回某种边的条数，WROTE 与 REVIEWS 各与评审数相同。
func (r *Result) Count(typ EdgeType) int {
	switch typ {
	case AuthorOf:
		return len(r.AuthorOf)
	case CorrespondingAuthor:
		return len(r.CorrespondingAuthor)
	case About:
		return len(r.About)
	case Related:
		return len(r.Related)
	case PublishedIn:
		total := 0
		for _, edges := range r.PublishedIn {
			total += len(edges)
		}
		return total
	case Wrote, Reviews:
		return len(r.Reviews)
	}
	return 0
}
