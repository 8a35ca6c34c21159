package record

import (
	"bibgraph-backend/utils"
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// 输入 CSV 的列名
const (
	ColumnPaperID        = "PaperId"
	ColumnTitle          = "Title"
	ColumnYear           = "Year"
	ColumnDOI            = "DOI"
	ColumnAuthorID       = "AuthorId"
	ColumnAuthorName     = "Author"
	ColumnMainAuthor     = "Main_Author"
	ColumnVenueName      = "Venue"
	ColumnVenueID        = "VenueID"
	ColumnVenueType      = "Type"
	ColumnTopics         = "FieldOfStudy"
	ColumnVolume         = "Volume"
	ColumnCitedPaperID   = "ReferenceId"
	ColumnCitedPaperName = "Reference Name"
	ColumnAbstract       = "Abstract"
)

var ErrEmptyInput = errors.New("input has no header")

/*
ReadCSV 按表头读取原始行。缺失的列按空字符串处理，多余的列被忽略。
*/
func ReadCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, utils.WrapError(err, "read csv header fail")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	var ret []RawRow
	next := 2
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, utils.WrapErrorf(err, "read csv record at line %d fail", failedLine(err, next))
		}
		next = nextLine(reader, fields)

		get := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(fields) {
				return ""
			}
			return fields[i]
		}

		ret = append(ret, RawRow{
			PaperID:        get(ColumnPaperID),
			Title:          get(ColumnTitle),
			Year:           get(ColumnYear),
			DOI:            get(ColumnDOI),
			AuthorID:       get(ColumnAuthorID),
			AuthorName:     get(ColumnAuthorName),
			MainAuthor:     get(ColumnMainAuthor),
			VenueName:      get(ColumnVenueName),
			VenueID:        get(ColumnVenueID),
			VenueType:      get(ColumnVenueType),
			Topics:         get(ColumnTopics),
			Volume:         get(ColumnVolume),
			CitedPaperID:   get(ColumnCitedPaperID),
			CitedPaperName: get(ColumnCitedPaperName),
			Abstract:       get(ColumnAbstract),
		})
	}

	return ret, nil
}

// nextLine 返回刚读出的记录之后的物理行号，带引号的字段可以跨越多行。
func nextLine(reader *csv.Reader, fields []string) int {
	last := len(fields) - 1
	line, _ := reader.FieldPos(last)
	return line + strings.Count(fields[last], "\n") + 1
}

func failedLine(err error, next int) int {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.StartLine
	}
	return next
}
