package relation

import "math/rand"

/*
ReviewSource 为一个 (作者, 论文) 对产生一条评审。真实的评审数据源可以替换默认的随机实现。
ok 为 false 时不为该对生成评审。
*/
type ReviewSource interface {
	Review(authorID, paperID string) (comment string, score int, ok bool)
}

var DefaultComments = []string{
	"Excellent contribution to the field.",
	"Needs more empirical validation.",
	"Well-structured and informative.",
	"Interesting methodology.",
	"Limited novelty but useful results.",
}

const (
	MinScore = 1
	MaxScore = 5
)

/*
RandomReviewSource 从固定评语中均匀选取一条，评分在 [MinScore, MaxScore] 中均匀选取。
*/
type RandomReviewSource struct {
	rng      *rand.Rand
	comments []string
}

func NewRandomReviewSource(rng *rand.Rand) *RandomReviewSource {
	return &RandomReviewSource{
		rng:      rng,
		comments: DefaultComments,
	}
}

func (s *RandomReviewSource) Review(string, string) (string, int, bool) {
	comment := s.comments[s.rng.Intn(len(s.comments))]
	score := MinScore + s.rng.Intn(MaxScore-MinScore+1)
	return comment, score, true
}
