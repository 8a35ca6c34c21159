package metrics

import (
	"bibgraph-backend/domain/record"
	"bibgraph-backend/domain/relation"
	"bibgraph-backend/utils"
	"math"
	"sort"
	"strings"
)

/*
LinkCommunity 返回文本与 names 中任一名称（不区分大小写）完全相同的关键词 id，按 id 排序。
*/
func LinkCommunity(keywords []Keyword, names []string) []string {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[strings.ToLower(name)] = struct{}{}
	}

	ret := make([]string, 0)
	for _, k := range keywords {
		if _, ok := wanted[strings.ToLower(k.Text)]; ok {
			ret = append(ret, k.ID)
		}
	}
	return sortedStrings(ret)
}

/*
ClassifyVenues 返回核心 venue：在其发表的论文中，涉及社区关键词的论文所占比例不低于 threshold。
两个计数都按不同论文计。没有论文的 venue 不参与分类。
*/
func ClassifyVenues(snap *Snapshot, communityKeywords []string, threshold float64) []VenueRef {
	community := make(map[string]struct{}, len(communityKeywords))
	for _, id := range communityKeywords {
		community[id] = struct{}{}
	}

	communityPapers := make(map[string]struct{})
	for _, e := range snap.About {
		if _, ok := community[e.Target]; ok {
			communityPapers[e.Source] = struct{}{}
		}
	}

	ret := make([]VenueRef, 0)
	for _, v := range snap.Venues {
		papers := distinct(snap.PublishedIn[v.VenueRef])
		if len(papers) == 0 {
			continue
		}

		matched := 0
		for _, p := range papers {
			if _, ok := communityPapers[p]; ok {
				matched++
			}
		}

		if float64(matched)/float64(len(papers)) >= threshold {
			ret = append(ret, v.VenueRef)
		}
	}
	return ret
}

/*
CitationCounts 统计每篇论文被引用的次数（指向它的 RELATED 边数），papers 中未被引用的论文计为 0。
*/
func CitationCounts(papers []string, related []relation.Edge) map[string]int {
	ret := make(map[string]int, len(papers))
	for _, p := range papers {
		ret[p] = 0
	}
	for _, e := range related {
		if _, ok := ret[e.Target]; ok {
			ret[e.Target]++
		}
	}
	return ret
}

/*
TopCited 按被引次数降序选出前 limit 篇论文，次数相同时按论文 id 升序。
*/
func TopCited(candidates []string, counts map[string]int, limit int) []string {
	papers := distinct(candidates)
	sort.Slice(papers, func(i, j int) bool {
		ci, cj := counts[papers[i]], counts[papers[j]]
		if ci != cj {
			return ci > cj
		}
		return papers[i] < papers[j]
	})

	if limit >= 0 && len(papers) > limit {
		papers = papers[:limit]
	}
	return papers
}

/*
ClassifyAuthors 统计每位作者撰写的高被引论文数：至少一篇为 potentialReviewer，至少两篇同时为 guru。
*/
func ClassifyAuthors(authorOf []relation.Edge, top []string) (reviewers []string, gurus []string) {
	topSet := make(map[string]struct{}, len(top))
	for _, p := range top {
		topSet[p] = struct{}{}
	}

	written := make(map[string]map[string]struct{})
	for _, e := range authorOf {
		if _, ok := topSet[e.Target]; !ok {
			continue
		}
		if written[e.Source] == nil {
			written[e.Source] = make(map[string]struct{})
		}
		written[e.Source][e.Target] = struct{}{}
	}

	reviewers, gurus = make([]string, 0), make([]string, 0)
	for author, papers := range written {
		reviewers = append(reviewers, author)
		if len(papers) >= 2 {
			gurus = append(gurus, author)
		}
	}
	return sortedStrings(reviewers), sortedStrings(gurus)
}

/*
HIndex 返回最大的 i，使得第 i 大的被引次数不小于 i。
*/
func HIndex(citations []int) int {
	sorted := append([]int(nil), citations...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	h := 0
	for i, c := range sorted {
		if c >= i+1 {
			h = i + 1
		} else {
			break
		}
	}
	return h
}

/*
HIndexes 计算每位作者的 H 指数。没有论文的作者结果为 nil（不存在），而不是 0。
*/
func HIndexes(authors []string, authorOf []relation.Edge, counts map[string]int) map[string]*int {
	papers := make(map[string]map[string]struct{})
	for _, e := range authorOf {
		if papers[e.Source] == nil {
			papers[e.Source] = make(map[string]struct{})
		}
		papers[e.Source][e.Target] = struct{}{}
	}

	ret := make(map[string]*int, len(authors))
	for _, a := range authors {
		written, ok := papers[a]
		if !ok || len(written) == 0 {
			ret[a] = nil
			continue
		}

		citations := make([]int, 0, len(written))
		for p := range written {
			citations = append(citations, counts[p])
		}
		ret[a] = utils.IntToPtr(HIndex(citations))
	}
	return ret
}

/*
ImpactFactors 计算每个 journal 期次 j（年份 Y）的影响因子：

	citationCount = 年份为 Y+1 或 Y+2 的论文指向 j 中论文的引用数
	pubCount      = j 中年份为 Y 或 Y-1 的论文数

影响因子为二者之比，保留三位小数。pubCount 为 0 或期次年份未知时结果为 nil。
*/
func ImpactFactors(snap *Snapshot) map[string]*float64 {
	citedBy := make(map[string][]string)
	for _, e := range snap.Related {
		citedBy[e.Target] = append(citedBy[e.Target], e.Source)
	}

	ret := make(map[string]*float64)
	for _, v := range snap.Venues {
		if v.Kind != record.VenueJournal {
			continue
		}
		ret[v.ID] = nil
		if v.Year == 0 {
			continue
		}

		citationCount, pubCount := 0, 0
		for _, p := range distinct(snap.PublishedIn[v.VenueRef]) {
			year := snap.PaperYears[p]
			if year == v.Year || year == v.Year-1 {
				pubCount++
			}

			for _, citing := range citedBy[p] {
				y := snap.PaperYears[citing]
				if y == v.Year+1 || y == v.Year+2 {
					citationCount++
				}
			}
		}

		if pubCount == 0 {
			continue
		}
		ret[v.ID] = utils.Float64ToPtr(math.Round(float64(citationCount)/float64(pubCount)*1000) / 1000)
	}
	return ret
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	ret := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		ret = append(ret, v)
	}
	return ret
}

func sortedStrings(values []string) []string {
	sort.Strings(values)
	return values
}
