package record

import (
	"bibgraph-backend/utils"
	"math"
	"strconv"
	"strings"
)

// 原始数据中表示“无数据”的占位值
const (
	NoVolumeSentinel = "<no_volume_data>"
	NoTopicSentinel  = "<no_fieldOfStudy_data>"
)

/*
Normalize 将原始行逐行转换为规范类型，输出与输入一一对应。

每个字段的解析都是尽力而为的：无法解析时使用回退值，不会因单行格式错误而中止。
*/
func Normalize(raw []RawRow) []Row {
	ret := make([]Row, len(raw))
	for i := range raw {
		ret[i] = NormalizeRow(&raw[i])
	}
	return ret
}

func NormalizeRow(raw *RawRow) Row {
	venueName := strings.TrimSpace(raw.VenueName)

	year, _ := parseInteger(raw.Year)

	return Row{
		PaperID:        strings.TrimSpace(raw.PaperID),
		Title:          strings.TrimSpace(raw.Title),
		Year:           year,
		DOI:            strings.TrimSpace(raw.DOI),
		Abstract:       strings.TrimSpace(raw.Abstract),
		AuthorID:       strings.TrimSpace(raw.AuthorID),
		AuthorName:     strings.TrimSpace(raw.AuthorName),
		MainAuthor:     parseFlag(raw.MainAuthor),
		VenueName:      venueName,
		VenueID:        strings.TrimSpace(raw.VenueID),
		VenueKind:      NormalizeVenueKind(raw.VenueType, venueName),
		Topics:         ParseTopics(raw.Topics),
		Volume:         ParseVolume(raw.Volume),
		CitedPaperID:   strings.TrimSpace(raw.CitedPaperID),
		CitedPaperName: strings.TrimSpace(raw.CitedPaperName),
	}
}

/*
NormalizeVenueKind 规范化 venue 类型：去空白并转小写，缺失或未知类型记为 other；
venue 名称中包含 "workshop"（不区分大小写）时强制为 workshop。
*/
func NormalizeVenueKind(rawType, venueName string) VenueKind {
	if strings.Contains(strings.ToLower(venueName), "workshop") {
		return VenueWorkshop
	}

	switch kind := VenueKind(strings.ToLower(strings.TrimSpace(rawType))); kind {
	case VenueConference, VenueJournal, VenueWorkshop:
		return kind
	default:
		return VenueOther
	}
}

/*
ParseTopics 解析多值主题字段：

	方括号列表字面量 -> 字符串序列（格式错误时返回空序列）；
	非空标量 -> 单元素序列；
	其它 -> 空序列。

结果中的每一项都已去除首尾空白，空值与占位值被丢弃。
*/
func ParseTopics(raw string) []string {
	trimmed := strings.TrimSpace(raw)

	var items []string
	switch {
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		parsed, ok := parseListLiteral(trimmed)
		if !ok {
			return []string{}
		}
		items = parsed
	case trimmed != "":
		items = []string{trimmed}
	}

	ret := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || item == NoTopicSentinel {
			continue
		}
		ret = append(ret, item)
	}
	return ret
}

/*
ParseVolume 解析卷号：占位值、空值和非数字均视为无数据。
*/
func ParseVolume(raw string) *int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == NoVolumeSentinel {
		return nil
	}

	v, ok := parseInteger(trimmed)
	if !ok {
		return nil
	}
	return utils.IntToPtr(v)
}

// parseInteger 同时接受 "12" 与 "12.0" 这类整数值的浮点写法。
func parseInteger(raw string) (int, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}

	if v, err := strconv.Atoi(trimmed); err == nil {
		return v, true
	}

	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func parseFlag(raw string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "true" {
		return true
	}

	v, ok := parseInteger(trimmed)
	return ok && v == 1
}
