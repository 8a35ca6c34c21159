package metadata

import (
	"database/sql"
	"encoding/json"
)

func toJSON(schema interface{}) string {
	bytes, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return string(bytes)
}

/*
SchemaRunReport 是 PipelineRun.Extra 中保存的报告。
*/
type SchemaRunReport struct {
	Evolution *EvolutionInfo `json:"evolution,omitempty"`
	Metrics   *MetricsInfo   `json:"metrics,omitempty"`
}

type EvolutionInfo struct {
	Reviews      int `json:"reviews"`
	Institutions int `json:"institutions"`
	Accepted     int `json:"accepted"`
	Rejected     int `json:"rejected"`
}

type MetricsInfo struct {
	CommunityKeywords  int `json:"community_keywords"`
	CoreVenues         int `json:"core_venues"`
	TopPapers          int `json:"top_papers"`
	PotentialReviewers int `json:"potential_reviewers"`
	Gurus              int `json:"gurus"`
	AuthorsWithHIndex  int `json:"authors_with_h_index"`
	ImpactFactors      int `json:"impact_factors"`
}

func (r *SchemaRunReport) ToJSON() string {
	return toJSON(r)
}

func (r *SchemaRunReport) ToExtra() Extra {
	return Extra{
		ExtraType: sql.NullString{String: ExtraTypeRunReport, Valid: true},
		ExtraJSON: sql.NullString{String: r.ToJSON(), Valid: true},
	}
}

/*
ParseRunReport 解析 Extra 中的报告，Extra 不是报告时返回 nil。
*/
func ParseRunReport(extra *Extra) (*SchemaRunReport, error) {
	if !extra.ExtraType.Valid || extra.ExtraType.String != ExtraTypeRunReport || !extra.ExtraJSON.Valid {
		return nil, nil
	}

	var ret SchemaRunReport
	if err := json.Unmarshal([]byte(extra.ExtraJSON.String), &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}
