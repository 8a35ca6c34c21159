package neograph

import (
	"bibgraph-backend/domain/sink"
	"fmt"
	"strings"
)

// 标签、类型、属性名都经过 sink.Query.Validate 检查，这里只负责加反引号
func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func createEntitiesCypher(label string) string {
	return fmt.Sprintf("UNWIND $rows AS row CREATE (n:%s) SET n = row", quote(label))
}

func createEdgesCypher(batch *sink.EdgeBatch) string {
	return fmt.Sprintf("UNWIND $rows AS row "+
		"MATCH (s:%s {%s: row.source}) "+
		"MATCH (t:%s {%s: row.target}) "+
		"CREATE (s)-[r:%s]->(t) SET r = row.props",
		quote(batch.SourceLabel), quote(sink.IDKey),
		quote(batch.TargetLabel), quote(sink.IDKey),
		quote(batch.Type))
}

func ensureIndexCypher(label string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS FOR (n:%s) ON (n.%s)", quote(label), quote(sink.IDKey))
}

/*
compile 把类型化查询翻译为 Cypher 语句和参数。带有行的查询都通过 UNWIND 批量执行，
由调用方负责分批。
*/
func compile(q *sink.Query) (string, map[string]interface{}, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	switch q.Op {
	case sink.OpMatchNodes:
		cypher := fmt.Sprintf("MATCH (n:%s) RETURN properties(n) AS props, labels(n) AS %s",
			quote(q.Label), sink.LabelsKey)
		return cypher, nil, nil

	case sink.OpMatchEdges:
		cypher := fmt.Sprintf("MATCH (s:%s)-[r:%s]->(t:%s) RETURN properties(r) AS props, s.%s AS %s, t.%s AS %s",
			quote(q.SourceLabel), quote(q.Type), quote(q.TargetLabel),
			quote(q.SourceKey), sink.SourceKey, quote(q.TargetKey), sink.TargetKey)
		return cypher, nil, nil

	case sink.OpSetProperty:
		cypher := fmt.Sprintf("UNWIND $rows AS row MATCH (n:%s {%s: row.%s}) SET n.%s = row.%s",
			quote(q.Label), quote(sink.IDKey), sink.IDKey, quote(q.Property), sink.ValueKey)
		return cypher, map[string]interface{}{"rows": toParamRows(q.Rows)}, nil

	case sink.OpAddLabel:
		cypher := fmt.Sprintf("UNWIND $ids AS id MATCH (n:%s {%s: id}) SET n:%s",
			quote(q.Label), quote(sink.IDKey), quote(q.NewLabel))
		return cypher, map[string]interface{}{"ids": toParamList(q.IDs)}, nil

	case sink.OpMergeNodes:
		cypher := fmt.Sprintf("UNWIND $rows AS row MERGE (n:%s {%s: row[$key]}) SET n += row",
			quote(q.Label), quote(q.Key))
		return cypher, map[string]interface{}{"rows": toParamRows(q.Rows), "key": q.Key}, nil

	case sink.OpMergeEdges:
		cypher := fmt.Sprintf("UNWIND $rows AS row "+
			"MATCH (s:%s {%s: row.source}) "+
			"MATCH (t:%s {%s: row.target}) "+
			"MERGE (s)-[:%s]->(t)",
			quote(q.SourceLabel), quote(q.SourceKey),
			quote(q.TargetLabel), quote(q.TargetKey),
			quote(q.Type))
		return cypher, map[string]interface{}{"rows": toParamRows(q.Rows)}, nil

	case sink.OpCypher:
		return q.Cypher, q.Params, nil
	}

	return "", nil, fmt.Errorf("unknown query op %s", q.Op)
}

func toParamRows(rows []sink.Row) []interface{} {
	ret := make([]interface{}, len(rows))
	for i, row := range rows {
		ret[i] = map[string]interface{}(row)
	}
	return ret
}

func toParamList(values []string) []interface{} {
	ret := make([]interface{}, len(values))
	for i, v := range values {
		ret[i] = v
	}
	return ret
}

// edgeParamRows 把边的行拆为端点与属性两部分，属性整体写入 r
func edgeParamRows(rows []sink.Row) []interface{} {
	ret := make([]interface{}, len(rows))
	for i, row := range rows {
		props := make(map[string]interface{}, len(row))
		for k, v := range row {
			if k == sink.SourceKey || k == sink.TargetKey {
				continue
			}
			props[k] = v
		}
		ret[i] = map[string]interface{}{
			sink.SourceKey: row[sink.SourceKey],
			sink.TargetKey: row[sink.TargetKey],
			"props":        props,
		}
	}
	return ret
}
