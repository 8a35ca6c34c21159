package entity

import (
	"bibgraph-backend/domain/record"
	"context"
	"golang.org/x/sync/errgroup"
	"strconv"
)

/*
Deduplicate 从规范化的行中抽取各类唯一实体并分配代理 id。

	Paper、Author 复用源数据中的 id；
	Keyword 按主题文本去重，id 为首次出现顺序的稠密整数；
	Venue 在每个 Kind 内按 (名称, 年份) 去重，每个 Kind 的 id 空间独立编号。

四类实体互不依赖，并发计算；每一类都是对输入的一次顺序扫描，因此 id 只取决于输入行的顺序。
缺少必需键（空 id、空名称）的实体不会进入集合。affiliations 为 nil 时作者没有机构。
*/
func Deduplicate(rows []record.Row, affiliations AffiliationSource) *Set {
	set := &Set{}

	g, _ := errgroup.WithContext(context.Background())

	g.Go(func() error {
		set.Papers, set.paperIndex = collectPapers(rows)
		return nil
	})
	g.Go(func() error {
		set.Authors, set.authorIndex = collectAuthors(rows, affiliations)
		return nil
	})
	g.Go(func() error {
		set.Keywords, set.keywordIndex = collectKeywords(rows)
		return nil
	})
	g.Go(func() error {
		set.Venues, set.venueIndex = collectVenues(rows)
		return nil
	})

	// 所有任务都不返回错误
	_ = g.Wait()

	return set
}

func collectPapers(rows []record.Row) ([]Paper, map[string]int) {
	papers := make([]Paper, 0)
	index := make(map[string]int)

	for i := range rows {
		row := &rows[i]
		if row.PaperID == "" {
			continue
		}
		if _, ok := index[row.PaperID]; ok {
			continue
		}

		index[row.PaperID] = len(papers)
		papers = append(papers, Paper{
			ID:       row.PaperID,
			Title:    row.Title,
			Year:     row.Year,
			Abstract: row.Abstract,
			DOI:      row.DOI,
		})
	}

	return papers, index
}

func collectAuthors(rows []record.Row, affiliations AffiliationSource) ([]Author, map[string]int) {
	authors := make([]Author, 0)
	index := make(map[string]int)

	for i := range rows {
		row := &rows[i]
		if row.AuthorID == "" {
			continue
		}
		if _, ok := index[row.AuthorID]; ok {
			continue
		}

		author := Author{
			ID:   row.AuthorID,
			Name: row.AuthorName,
		}
		if affiliations != nil {
			author.Affiliation = affiliations.Affiliation(row.AuthorID)
		}

		index[row.AuthorID] = len(authors)
		authors = append(authors, author)
	}

	return authors, index
}

func collectKeywords(rows []record.Row) ([]Keyword, map[string]string) {
	keywords := make([]Keyword, 0)
	index := make(map[string]string)

	for i := range rows {
		for _, topic := range rows[i].Topics {
			if topic == "" {
				continue
			}
			if _, ok := index[topic]; ok {
				continue
			}

			id := strconv.Itoa(len(keywords))
			index[topic] = id
			keywords = append(keywords, Keyword{ID: id, Text: topic})
		}
	}

	return keywords, index
}

func collectVenues(rows []record.Row) (map[record.VenueKind][]Venue, map[record.VenueKind]map[VenueKey]string) {
	venues := make(map[record.VenueKind][]Venue, len(record.VenueKinds))
	index := make(map[record.VenueKind]map[VenueKey]string, len(record.VenueKinds))
	for _, kind := range record.VenueKinds {
		venues[kind] = make([]Venue, 0)
		index[kind] = make(map[VenueKey]string)
	}

	for i := range rows {
		row := &rows[i]
		if !row.VenueKind.HasVenueEntity() || row.VenueName == "" {
			continue
		}

		key := VenueKey{Name: row.VenueName, Year: row.Year}
		if _, ok := index[row.VenueKind][key]; ok {
			continue
		}

		venue := Venue{
			ID:   strconv.Itoa(len(venues[row.VenueKind])),
			Name: row.VenueName,
			Year: row.Year,
			Kind: row.VenueKind,
		}
		if row.VenueKind == record.VenueJournal && row.Volume != nil {
			venue.Volume = *row.Volume
		}

		index[row.VenueKind][key] = venue.ID
		venues[row.VenueKind] = append(venues[row.VenueKind], venue)
	}

	return venues, index
}
