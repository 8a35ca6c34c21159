package relation

import (
	"bibgraph-backend/domain/entity"
	"bibgraph-backend/domain/record"
	"strconv"
)

type edgeCollector struct {
	edges   []Edge
	seen    map[Edge]struct{}
	dropped map[Edge]struct{}
}

func newEdgeCollector() *edgeCollector {
	return &edgeCollector{
		edges:   make([]Edge, 0),
		seen:    make(map[Edge]struct{}),
		dropped: make(map[Edge]struct{}),
	}
}

func (c *edgeCollector) add(e Edge, valid bool) {
	if !valid {
		c.dropped[e] = struct{}{}
		return
	}
	if _, ok := c.seen[e]; ok {
		return
	}
	c.seen[e] = struct{}{}
	c.edges = append(c.edges, e)
}

/*
Derive 把规范化的行投影为各类关系。

只有两个端点都在 set 中的关系才会输出，因此任何一条边都不会引用不存在的实体；
其余的行被丢弃并按边类型计数（同一对端点只计一次）。没有引用的行（CitedPaperID 为空）不计入丢弃。

reviews 不为 nil 时，为每个去重后的 (作者, 论文) 署名对生成一条评审。
*/
func Derive(rows []record.Row, set *entity.Set, reviews ReviewSource) *Result {
	authorOf := newEdgeCollector()
	corresponding := newEdgeCollector()
	about := newEdgeCollector()
	related := newEdgeCollector()

	publishedIn := make(map[record.VenueKind]*edgeCollector, len(record.VenueKinds))
	for _, kind := range record.VenueKinds {
		publishedIn[kind] = newEdgeCollector()
	}
	placed := make(map[string]struct{})

	for i := range rows {
		row := &rows[i]
		hasPaper := set.HasPaper(row.PaperID)

		// 署名与通讯作者
		authorship := Edge{Source: row.AuthorID, Target: row.PaperID}
		validAuthorship := hasPaper && set.HasAuthor(row.AuthorID)
		authorOf.add(authorship, validAuthorship)
		if row.MainAuthor {
			corresponding.add(authorship, validAuthorship)
		}

		// 主题
		for _, topic := range row.Topics {
			if topic == "" {
				continue
			}
			keywordID, ok := set.KeywordID(topic)
			about.add(Edge{Source: row.PaperID, Target: keywordID}, hasPaper && ok)
		}

		// 引用
		if row.CitedPaperID != "" {
			related.add(Edge{Source: row.PaperID, Target: row.CitedPaperID}, hasPaper && set.HasPaper(row.CitedPaperID))
		}

		// 发表
		if row.VenueKind.HasVenueEntity() {
			venueID, ok := set.VenueID(row.VenueKind, row.VenueName, row.Year)
			if !ok {
				venueID = row.VenueName + "@" + strconv.Itoa(row.Year)
			}
			publishedIn[row.VenueKind].add(Edge{Source: row.PaperID, Target: venueID}, hasPaper && ok)
			if hasPaper && ok {
				placed[row.PaperID] = struct{}{}
			}
		}
	}

	result := &Result{
		AuthorOf:            authorOf.edges,
		CorrespondingAuthor: corresponding.edges,
		About:               about.edges,
		Related:             related.edges,
		PublishedIn:         make(map[record.VenueKind][]Edge, len(record.VenueKinds)),
		Reviews:             make([]Review, 0),
		Dropped: map[EdgeType]int{
			AuthorOf:            len(authorOf.dropped),
			CorrespondingAuthor: len(corresponding.dropped),
			About:               len(about.dropped),
			Related:             len(related.dropped),
		},
		OrphanedPapers: make([]string, 0),
	}

	publishedDropped := 0
	for _, kind := range record.VenueKinds {
		result.PublishedIn[kind] = publishedIn[kind].edges
		publishedDropped += len(publishedIn[kind].dropped)
	}
	result.Dropped[PublishedIn] = publishedDropped

	for _, paper := range set.Papers {
		if _, ok := placed[paper.ID]; !ok {
			result.OrphanedPapers = append(result.OrphanedPapers, paper.ID)
		}
	}

	if reviews != nil {
		result.Reviews = generateReviews(result.AuthorOf, reviews)
	}

	return result
}

func generateReviews(authorOf []Edge, source ReviewSource) []Review {
	ret := make([]Review, 0, len(authorOf))
	for _, e := range authorOf {
		comment, score, ok := source.Review(e.Source, e.Target)
		if !ok {
			continue
		}
		ret = append(ret, Review{
			ID:                strconv.Itoa(len(ret)),
			AuthorID:          e.Source,
			PaperID:           e.Target,
			Comment:           comment,
			Score:             score,
			SuggestedDecision: SuggestDecision(score),
		})
	}
	return ret
}
