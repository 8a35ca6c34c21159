package evolution

import "bibgraph-backend/domain/relation"

/*
FinalDecision 汇总一篇论文的全部建议结论：接收数严格大于总数的一半（整除）时接收，否则拒绝。
没有评审时结论不存在，ok 为 false。
*/
func FinalDecision(suggested []relation.Decision) (decision relation.Decision, ok bool) {
	if len(suggested) == 0 {
		return "", false
	}

	accept := 0
	for _, d := range suggested {
		if d == relation.DecisionAccept {
			accept++
		}
	}

	if accept > len(suggested)/2 {
		return relation.DecisionAccept, true
	}
	return relation.DecisionReject, true
}

/*
FinalDecisions 根据评审的建议结论（评审 id -> 结论）以及 REVIEWS 边（评审 -> 论文）计算每篇论文的最终结论。
只有至少被评审一次的论文会出现在结果中。
*/
func FinalDecisions(suggested map[string]relation.Decision, reviews []relation.Edge) map[string]relation.Decision {
	byPaper := make(map[string][]relation.Decision)
	for _, e := range reviews {
		d, ok := suggested[e.Source]
		if !ok {
			continue
		}
		byPaper[e.Target] = append(byPaper[e.Target], d)
	}

	ret := make(map[string]relation.Decision, len(byPaper))
	for paper, decisions := range byPaper {
		if d, ok := FinalDecision(decisions); ok {
			ret[paper] = d
		}
	}
	return ret
}
