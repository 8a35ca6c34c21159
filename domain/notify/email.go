package notify

import (
	"bibgraph-backend/domain/pipeline"
	"bibgraph-backend/domain/relation"
	"bibgraph-backend/utils"
	emailutils "bibgraph-backend/utils/email"
	"fmt"
	"html"
	"strings"
)

const runReportHTMLTemplate = `
<h1>%s</h1>
<p>运行编号：%d</p>
<p>描述：%s</p>
<p>耗时：%s</p>
%s
<h2>各阶段行数</h2>
<p>%s</p>

<h2>丢弃的关系</h2>
<p>%s</p>
<p>没有发表关系的论文数量：%d</p>

<h2>演化与指标</h2>
<p>%s</p>

<p></p>
<p>更多信息请前往系统查看</p>
`

const (
	subjectDone = "【文献图谱系统】流水线运行完成"
	subjectFail = "【文献图谱系统】流水线运行失败"
)

/*
EmailNotifier 把运行报告渲染为 HTML 邮件发送。
*/
type EmailNotifier struct {
	send func(email, subject, htmlContent string) error
}

func NewEmailNotifier() *EmailNotifier {
	return &EmailNotifier{send: emailutils.SendHtml}
}

func (n *EmailNotifier) NotifyRunReport(email string, report *pipeline.Report) error {
	subject := subjectDone
	if !report.Succeeded() {
		subject = subjectFail
	}

	if err := n.send(email, subject, renderRunReportPage(report)); err != nil {
		return utils.WrapErrorf(err, "send email to [%s] fail", email)
	}

	return nil
}

func renderRunReportPage(report *pipeline.Report) string {
	title := "流水线运行成功"
	failure := ""
	if !report.Succeeded() {
		title = "流水线运行失败"
		failure = fmt.Sprintf("<p>失败阶段：%s</p>\n<p>错误信息：%s</p>",
			html.EscapeString(report.FailedStage), html.EscapeString(report.Error))
	}

	stages := make([]string, 0, len(report.Stages))
	for _, s := range report.Stages {
		stages = append(stages, fmt.Sprintf("%s / %s：%d", s.Stage, html.EscapeString(s.Name), s.Rows))
	}

	dropped := make([]string, 0, len(report.Dropped))
	for _, typ := range relation.EdgeTypes {
		if count, ok := report.Dropped[typ]; ok {
			dropped = append(dropped, fmt.Sprintf("%s：%d", typ, count))
		}
	}

	summary := make([]string, 0)
	if e := report.Evolution; e != nil {
		summary = append(summary,
			fmt.Sprintf("评审：%d，机构：%d", e.Reviews, e.Institutions),
			fmt.Sprintf("接收：%d，拒绝：%d", e.Accepted, e.Rejected))
	}
	if m := report.Metrics; m != nil {
		summary = append(summary,
			fmt.Sprintf("社区关键词：%d，核心 venue：%d", m.CommunityKeywords, m.CoreVenues),
			fmt.Sprintf("高被引论文：%d，潜在审稿人：%d，领域专家：%d", m.TopPapers, m.PotentialReviewers, m.Gurus),
			fmt.Sprintf("有 H 指数的作者：%d，有影响因子的 journal：%d", m.AuthorsWithHIndex, m.ImpactFactors))
	}

	return fmt.Sprintf(runReportHTMLTemplate,
		title,
		report.RunID,
		html.EscapeString(report.Desc),
		report.FinishedAt.Sub(report.StartedAt).String(),
		failure,
		strings.Join(stages, "<br/>"),
		strings.Join(dropped, "<br/>"),
		report.OrphanedPapers,
		strings.Join(summary, "<br/>"))
}
