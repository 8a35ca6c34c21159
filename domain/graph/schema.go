package graph

import (
	"bibgraph-backend/domain/record"
	"strings"
)

// 节点标签
const (
	LabelPaper       = "Paper"
	LabelAuthor      = "Author"
	LabelKeyword     = "Keyword"
	LabelConference  = "Conference"
	LabelJournal     = "Journal"
	LabelWorkshop    = "Workshop"
	LabelReview      = "Review"
	LabelInstitution = "Institution"
	LabelCommunity   = "ResearchCommunity"

	// 派生标签，只增不减
	LabelDatabaseVenue     = "DatabaseVenue"
	LabelTopPaper          = "TopPaper"
	LabelPotentialReviewer = "PotentialReviewer"
	LabelGuru              = "Guru"
)

// 只在演化和指标阶段出现的边
const (
	EdgeIsFrom    = "IS_FROM"
	EdgeBelongsTo = "BELONGS_TO"
)

// 属性名
const (
	PropTitle             = "title"
	PropYear              = "year"
	PropAbstract          = "abstract"
	PropDOI               = "doi"
	PropName              = "name"
	PropAffiliation       = "affiliation"
	PropKeyword           = "keyword"
	PropVenue             = "venue"
	PropVolume            = "volume"
	PropComment           = "comment"
	PropScore             = "score"
	PropSuggestedDecision = "suggestedDecision"
	PropFinalDecision     = "finalDecision"
	PropIsDatabaseVenue   = "isDatabaseVenue"
	PropCitationCount     = "citationCount"
	PropHIndex            = "hIndex"
	PropImpactFactor      = "impactFactor"
)

// EntityLabels 是以 id 属性标识的节点标签，边按 id 匹配这些节点。
var EntityLabels = []string{
	LabelPaper, LabelAuthor, LabelKeyword, LabelConference, LabelJournal, LabelWorkshop, LabelReview,
}

var venueLabels = map[record.VenueKind]string{
	record.VenueConference: LabelConference,
	record.VenueJournal:    LabelJournal,
	record.VenueWorkshop:   LabelWorkshop,
}

// VenueLabel 返回某类 venue 的节点标签，other 没有对应的节点。
func VenueLabel(kind record.VenueKind) (string, bool) {
	label, ok := venueLabels[kind]
	return label, ok
}

func nodeBatchName(label string) string {
	return "nodes_" + strings.ToLower(label)
}

func edgeBatchName(typ string, qualifier string) string {
	name := "rel_" + strings.ToLower(typ)
	if qualifier != "" {
		name += "_" + strings.ToLower(qualifier)
	}
	return name
}
