package sink

import (
	"fmt"
	"sort"
)

/*
String、Int、Float 从查询结果中读取一列。不同存储返回的数值类型不同（neo4j 总是 int64 / float64），
这里统一做转换。
*/
func String(row Row, key string) string {
	switch v := row[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func Int(row Row, key string) (int, bool) {
	switch v := row[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func Float(row Row, key string) (float64, bool) {
	switch v := row[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func Bool(row Row, key string) bool {
	v, ok := row[key].(bool)
	return ok && v
}

// HasLabel 判断 MatchNodes 返回的行是否带有某个标签。
func HasLabel(row Row, label string) bool {
	switch labels := row[LabelsKey].(type) {
	case []string:
		for _, l := range labels {
			if l == label {
				return true
			}
		}
	case []interface{}:
		for _, l := range labels {
			if s, ok := l.(string); ok && s == label {
				return true
			}
		}
	}
	return false
}

func sortRowsByID(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		return String(rows[i], IDKey) < String(rows[j], IDKey)
	})
}
