package graph

import (
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/utils"
	"bytes"
	"encoding/csv"
	"fmt"
)

// Artifact 是一个批次序列化后的 CSV 文件。
type Artifact struct {
	Name    string
	Content []byte
}

func (a *Artifact) FileName() string {
	return a.Name + ".csv"
}

/*
TransBatchesToCSV 把每个批次转换为一个 CSV 文件，文件头为批次的列名。顺序与写入顺序一致。
*/
func TransBatchesToCSV(batches *Batches) ([]Artifact, error) {
	ret := make([]Artifact, 0, len(batches.Nodes)+len(batches.Edges))

	for _, batch := range batches.Nodes {
		content, err := buildCSV(batch.Columns, batch.Rows)
		if err != nil {
			return nil, utils.WrapErrorf(err, "build csv of batch [%s] fail", batch.Name)
		}
		ret = append(ret, Artifact{Name: batch.Name, Content: content})
	}

	for _, batch := range batches.Edges {
		content, err := buildCSV(batch.Columns, batch.Rows)
		if err != nil {
			return nil, utils.WrapErrorf(err, "build csv of batch [%s] fail", batch.Name)
		}
		ret = append(ret, Artifact{Name: batch.Name, Content: content})
	}

	return ret, nil
}

func buildCSV(columns []string, rows []sink.Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// 写文件头
	if err := w.Write(columns); err != nil {
		return nil, utils.WrapError(err, "write header fail")
	}

	record := make([]string, len(columns))
	for i, row := range rows {
		for j, column := range columns {
			record[j] = formatCell(row[column])
		}
		if err := w.Write(record); err != nil {
			return nil, utils.WrapErrorf(err, "write row %d fail", i)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, utils.WrapError(err, "flush csv fail")
	}

	return buf.Bytes(), nil
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
