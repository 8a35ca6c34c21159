package entity

import "math/rand"

/*
AffiliationSource 为作者生成所属机构。原始数据中没有机构信息，机构是合成数据，
因此做成可注入的能力，测试中可以使用固定种子。
*/
type AffiliationSource interface {
	Affiliation(authorID string) string
}

var DefaultAffiliations = []string{
	"Massachusetts Institute of Technology", "Stanford University", "University of Oxford",
	"University of Cambridge", "Harvard University", "ETH Zurich",
	"Carnegie Mellon University", "University of Tokyo", "Tsinghua University", "University of Toronto",
}

type RandomAffiliations struct {
	rng     *rand.Rand
	choices []string
}

func NewRandomAffiliations(seed int64, choices []string) *RandomAffiliations {
	if len(choices) == 0 {
		choices = DefaultAffiliations
	}
	return &RandomAffiliations{
		rng:     rand.New(rand.NewSource(seed)),
		choices: choices,
	}
}

func (r *RandomAffiliations) Affiliation(string) string {
	return r.choices[r.rng.Intn(len(r.choices))]
}
