package sink

import (
	"fmt"
	"regexp"
)

type Op int

const (
	OpMatchNodes Op = iota
	OpMatchEdges
	OpSetProperty
	OpAddLabel
	OpMergeNodes
	OpMergeEdges
	OpCypher
)

func (o Op) String() string {
	switch o {
	case OpMatchNodes:
		return "MatchNodes"
	case OpMatchEdges:
		return "MatchEdges"
	case OpSetProperty:
		return "SetProperty"
	case OpAddLabel:
		return "AddLabel"
	case OpMergeNodes:
		return "MergeNodes"
	case OpMergeEdges:
		return "MergeEdges"
	case OpCypher:
		return "Cypher"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

/*
Query 是与存储无关的查询描述。各字段的含义取决于 Op：

	OpMatchNodes   Label；返回节点的全部属性，以及 LabelsKey
	OpMatchEdges   Type, SourceLabel, TargetLabel, SourceKey, TargetKey；返回边属性以及 SourceKey/TargetKey 列
	OpSetProperty  Label, Property, Rows{id, value}；value 为 nil 时删除该属性
	OpAddLabel     Label, NewLabel, IDs
	OpMergeNodes   Label, Key, Rows；按 Key 合并节点，并把行的其余列写为属性
	OpMergeEdges   Type, SourceLabel, SourceKey, TargetLabel, TargetKey, Rows{source, target}
	OpCypher       Cypher, Params；只有支持 Cypher 的存储才能执行
*/
type Query struct {
	Op Op

	Label       string
	Type        string
	SourceLabel string
	TargetLabel string
	SourceKey   string
	TargetKey   string
	Key         string
	Property    string
	NewLabel    string

	IDs  []string
	Rows []Row

	Cypher string
	Params map[string]interface{}
}

// ValueKey 是 SetProperty 的行中存放新值的列
const ValueKey = "value"

func MatchNodes(label string) Query {
	return Query{Op: OpMatchNodes, Label: label}
}

func MatchEdges(typ, sourceLabel, targetLabel string) Query {
	return Query{
		Op:          OpMatchEdges,
		Type:        typ,
		SourceLabel: sourceLabel,
		TargetLabel: targetLabel,
		SourceKey:   IDKey,
		TargetKey:   IDKey,
	}
}

/*
SetProperty 按 id 覆盖节点的某个属性。values 中值为 nil 的节点会删除该属性，
因此重复计算总是覆盖上一次的结果而不是累加。
*/
func SetProperty(label, property string, values map[string]interface{}) Query {
	rows := make([]Row, 0, len(values))
	for id, value := range values {
		rows = append(rows, Row{IDKey: id, ValueKey: value})
	}
	sortRowsByID(rows)
	return Query{Op: OpSetProperty, Label: label, Property: property, Rows: rows}
}

func AddLabel(label, newLabel string, ids []string) Query {
	return Query{Op: OpAddLabel, Label: label, NewLabel: newLabel, IDs: ids}
}

func MergeNodes(label, key string, rows []Row) Query {
	return Query{Op: OpMergeNodes, Label: label, Key: key, Rows: rows}
}

func MergeEdges(typ, sourceLabel, sourceKey, targetLabel, targetKey string, rows []Row) Query {
	return Query{
		Op:          OpMergeEdges,
		Type:        typ,
		SourceLabel: sourceLabel,
		SourceKey:   sourceKey,
		TargetLabel: targetLabel,
		TargetKey:   targetKey,
		Rows:        rows,
	}
}

func Cypher(text string, params map[string]interface{}) Query {
	return Query{Op: OpCypher, Cypher: text, Params: params}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

/*
Validate 检查查询中用作标签、类型、属性名的字段都是合法标识符。
这些名字会被拼接进查询语句，不能来自不可信输入。
*/
func (q *Query) Validate() error {
	check := func(field, value string) error {
		if !identifierPattern.MatchString(value) {
			return fmt.Errorf("%s query: invalid %s %q", q.Op, field, value)
		}
		return nil
	}

	var err error
	switch q.Op {
	case OpMatchNodes:
		err = check("label", q.Label)
	case OpMatchEdges, OpMergeEdges:
		for _, pair := range [][2]string{
			{"type", q.Type},
			{"source label", q.SourceLabel},
			{"target label", q.TargetLabel},
			{"source key", q.SourceKey},
			{"target key", q.TargetKey},
		} {
			if err = check(pair[0], pair[1]); err != nil {
				break
			}
		}
	case OpSetProperty:
		if err = check("label", q.Label); err == nil {
			err = check("property", q.Property)
		}
	case OpAddLabel:
		if err = check("label", q.Label); err == nil {
			err = check("new label", q.NewLabel)
		}
	case OpMergeNodes:
		if err = check("label", q.Label); err == nil {
			err = check("key", q.Key)
		}
	case OpCypher:
		if q.Cypher == "" {
			err = fmt.Errorf("%s query: empty statement", q.Op)
		}
	default:
		err = fmt.Errorf("unknown query op %s", q.Op)
	}
	return err
}
