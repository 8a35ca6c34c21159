package entity

import "bibgraph-backend/domain/record"

type Paper struct {
	ID       string
	Title    string
	Year     int
	Abstract string
	DOI      string
}

type Author struct {
	ID          string
	Name        string
	Affiliation string
}

type Keyword struct {
	ID   string
	Text string
}

/*
Venue 是某个 venue 的一届（edition），由 (Name, Year) 在同一 Kind 内唯一确定。
Volume 只对 journal 有意义，无数据时为 0。
*/
type Venue struct {
	ID     string
	Name   string
	Year   int
	Kind   record.VenueKind
	Volume int
}

type VenueKey struct {
	Name string
	Year int
}

/*
Set 是去重之后的实体集合。各切片按首次出现顺序排列，索引用于关系推导时的查找。
*/
type Set struct {
	Papers   []Paper
	Authors  []Author
	Keywords []Keyword
	Venues   map[record.VenueKind][]Venue

	paperIndex   map[string]int
	authorIndex  map[string]int
	keywordIndex map[string]string
	venueIndex   map[record.VenueKind]map[VenueKey]string
}

func (s *Set) HasPaper(id string) bool {
	_, ok := s.paperIndex[id]
	return ok
}

func (s *Set) Paper(id string) (Paper, bool) {
	i, ok := s.paperIndex[id]
	if !ok {
		return Paper{}, false
	}
	return s.Papers[i], true
}

func (s *Set) HasAuthor(id string) bool {
	_, ok := s.authorIndex[id]
	return ok
}

func (s *Set) KeywordID(text string) (string, bool) {
	id, ok := s.keywordIndex[text]
	return id, ok
}

func (s *Set) VenueID(kind record.VenueKind, name string, year int) (string, bool) {
	index, ok := s.venueIndex[kind]
	if !ok {
		return "", false
	}
	id, ok := index[VenueKey{Name: name, Year: year}]
	return id, ok
}

// KeywordMap 返回 text -> id 的拷贝。
func (s *Set) KeywordMap() map[string]string {
	ret := make(map[string]string, len(s.keywordIndex))
	for k, v := range s.keywordIndex {
		ret[k] = v
	}
	return ret
}
