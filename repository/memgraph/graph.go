package memgraph

import (
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/utils"
	"context"
	"fmt"
	"sort"
	"sync"
)

type node struct {
	labels map[string]struct{}
	props  sink.Row
}

func (n *node) sortedLabels() []string {
	ret := make([]string, 0, len(n.labels))
	for l := range n.labels {
		ret = append(ret, l)
	}
	sort.Strings(ret)
	return ret
}

type edge struct {
	typ    string
	source *node
	target *node
	props  sink.Row
}

type edgeKey struct {
	typ    string
	source *node
	target *node
}

type propKey struct {
	label string
	key   string
}

/*
Graph 是进程内的属性图，实现了 sink.Sink。用于测试和不连接数据库的试运行。

Graph 解释类型化的查询，不支持 Cypher 查询。按属性查找节点时，(标签, 属性) 的索引在第一次查找时建立，
之后随节点的写入维护；边按 (类型, 起点, 终点) 索引。
*/
type Graph struct {
	mu sync.RWMutex

	nodes   []*node
	byLabel map[string][]*node
	indexes map[propKey]map[interface{}][]*node

	edges    map[string][]*edge
	edgeSeen map[edgeKey]struct{}
}

func New() *Graph {
	return &Graph{
		byLabel:  make(map[string][]*node),
		indexes:  make(map[propKey]map[interface{}][]*node),
		edges:    make(map[string][]*edge),
		edgeSeen: make(map[edgeKey]struct{}),
	}
}

var _ sink.Sink = (*Graph)(nil)

func (g *Graph) CreateEntities(ctx context.Context, batch sink.EntityBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for i, row := range batch.Rows {
		if _, ok := row[sink.IDKey]; !ok {
			return fmt.Errorf("create %s: row %d has no %s", batch.Label, i, sink.IDKey)
		}
	}

	for _, row := range batch.Rows {
		props := copyRow(row)
		for k, v := range props {
			if v == nil {
				delete(props, k)
			}
		}
		g.addNode(batch.Label, props)
	}
	return nil
}

func (g *Graph) CreateEdges(ctx context.Context, batch sink.EdgeBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, row := range batch.Rows {
		props := copyRow(row)
		delete(props, sink.SourceKey)
		delete(props, sink.TargetKey)

		for _, s := range g.find(batch.SourceLabel, sink.IDKey, row[sink.SourceKey]) {
			for _, t := range g.find(batch.TargetLabel, sink.IDKey, row[sink.TargetKey]) {
				g.addEdge(batch.Type, s, t, copyRow(props))
			}
		}
	}
	return nil
}

func (g *Graph) RunReadQuery(ctx context.Context, query sink.Query) ([]sink.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	switch query.Op {
	case sink.OpMatchNodes:
		return g.matchNodes(&query), nil
	case sink.OpMatchEdges:
		return g.matchEdges(&query), nil
	default:
		return nil, utils.WrapErrorf(sink.ErrUnsupportedQuery, "read %s", query.Op)
	}
}

func (g *Graph) RunWriteQuery(ctx context.Context, query sink.Query) ([]sink.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch query.Op {
	case sink.OpMatchNodes:
		return g.matchNodes(&query), nil
	case sink.OpMatchEdges:
		return g.matchEdges(&query), nil
	case sink.OpSetProperty:
		g.setProperty(&query)
	case sink.OpAddLabel:
		g.addLabel(&query)
	case sink.OpMergeNodes:
		g.mergeNodes(&query)
	case sink.OpMergeEdges:
		g.mergeEdges(&query)
	default:
		return nil, utils.WrapErrorf(sink.ErrUnsupportedQuery, "write %s", query.Op)
	}
	return nil, nil
}

// NodeCount 返回带有某个标签的节点数。
func (g *Graph) NodeCount(label string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.byLabel[label])
}

// EdgeCount 返回某种类型的边数。
func (g *Graph) EdgeCount(typ string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.edges[typ])
}

func (g *Graph) addNode(label string, props sink.Row) *node {
	n := &node{
		labels: map[string]struct{}{label: {}},
		props:  props,
	}
	g.nodes = append(g.nodes, n)
	g.byLabel[label] = append(g.byLabel[label], n)
	g.indexNode(label, n)
	return n
}

func (g *Graph) addEdge(typ string, source, target *node, props sink.Row) {
	g.edges[typ] = append(g.edges[typ], &edge{typ: typ, source: source, target: target, props: props})
	g.edgeSeen[edgeKey{typ: typ, source: source, target: target}] = struct{}{}
}

func (g *Graph) hasEdge(typ string, source, target *node) bool {
	_, ok := g.edgeSeen[edgeKey{typ: typ, source: source, target: target}]
	return ok
}

func (g *Graph) find(label, key string, value interface{}) []*node {
	if value == nil {
		return nil
	}

	v, ok := indexValue(value)
	if !ok {
		ret := make([]*node, 0, 1)
		for _, n := range g.byLabel[label] {
			if equal(n.props[key], value) {
				ret = append(ret, n)
			}
		}
		return ret
	}

	return g.index(label, key)[v]
}

// index 返回 (label, key) 的索引，不存在时扫描一次标签下的节点建立。
func (g *Graph) index(label, key string) map[interface{}][]*node {
	pk := propKey{label: label, key: key}
	idx, ok := g.indexes[pk]
	if ok {
		return idx
	}

	idx = make(map[interface{}][]*node)
	for _, n := range g.byLabel[label] {
		if v, ok := indexValue(n.props[key]); ok {
			idx[v] = append(idx[v], n)
		}
	}
	g.indexes[pk] = idx
	return idx
}

// indexNode 把 n 加入 label 下已经建立的索引。
func (g *Graph) indexNode(label string, n *node) {
	for pk, idx := range g.indexes {
		if pk.label != label {
			continue
		}
		if v, ok := indexValue(n.props[pk.key]); ok {
			idx[v] = append(idx[v], n)
		}
	}
}

// setProp 修改节点的属性并维护索引，value 为 nil 时删除属性。
func (g *Graph) setProp(n *node, key string, value interface{}) {
	old, hadOld := indexValue(n.props[key])
	if value == nil {
		delete(n.props, key)
	} else {
		n.props[key] = value
	}
	cur, hasCur := indexValue(value)

	if hadOld && hasCur && old == cur {
		return
	}

	for label := range n.labels {
		idx, ok := g.indexes[propKey{label: label, key: key}]
		if !ok {
			continue
		}
		if hadOld {
			idx[old] = removeNode(idx[old], n)
			if len(idx[old]) == 0 {
				delete(idx, old)
			}
		}
		if hasCur {
			idx[cur] = append(idx[cur], n)
		}
	}
}

func removeNode(nodes []*node, n *node) []*node {
	for i, x := range nodes {
		if x == n {
			return append(nodes[:i:i], nodes[i+1:]...)
		}
	}
	return nodes
}

func (g *Graph) matchNodes(q *sink.Query) []sink.Row {
	nodes := g.byLabel[q.Label]
	ret := make([]sink.Row, 0, len(nodes))
	for _, n := range nodes {
		row := copyRow(n.props)
		row[sink.LabelsKey] = n.sortedLabels()
		ret = append(ret, row)
	}
	return ret
}

func (g *Graph) matchEdges(q *sink.Query) []sink.Row {
	ret := make([]sink.Row, 0)
	for _, e := range g.edges[q.Type] {
		if _, ok := e.source.labels[q.SourceLabel]; !ok {
			continue
		}
		if _, ok := e.target.labels[q.TargetLabel]; !ok {
			continue
		}

		row := copyRow(e.props)
		row[sink.SourceKey] = e.source.props[q.SourceKey]
		row[sink.TargetKey] = e.target.props[q.TargetKey]
		ret = append(ret, row)
	}
	return ret
}

func (g *Graph) setProperty(q *sink.Query) {
	for _, row := range q.Rows {
		for _, n := range g.find(q.Label, sink.IDKey, row[sink.IDKey]) {
			g.setProp(n, q.Property, row[sink.ValueKey])
		}
	}
}

func (g *Graph) addLabel(q *sink.Query) {
	for _, id := range q.IDs {
		for _, n := range g.find(q.Label, sink.IDKey, id) {
			if _, ok := n.labels[q.NewLabel]; ok {
				continue
			}
			n.labels[q.NewLabel] = struct{}{}
			g.byLabel[q.NewLabel] = append(g.byLabel[q.NewLabel], n)
			g.indexNode(q.NewLabel, n)
		}
	}
}

func (g *Graph) mergeNodes(q *sink.Query) {
	for _, row := range q.Rows {
		matched := g.find(q.Label, q.Key, row[q.Key])
		if len(matched) == 0 {
			matched = []*node{g.addNode(q.Label, sink.Row{})}
		}
		for _, n := range matched {
			for k, v := range row {
				g.setProp(n, k, v)
			}
		}
	}
}

func (g *Graph) mergeEdges(q *sink.Query) {
	for _, row := range q.Rows {
		for _, s := range g.find(q.SourceLabel, q.SourceKey, row[sink.SourceKey]) {
			for _, t := range g.find(q.TargetLabel, q.TargetKey, row[sink.TargetKey]) {
				if g.hasEdge(q.Type, s, t) {
					continue
				}
				g.addEdge(q.Type, s, t, sink.Row{})
			}
		}
	}
}

func copyRow(row sink.Row) sink.Row {
	ret := make(sink.Row, len(row))
	for k, v := range row {
		ret[k] = v
	}
	return ret
}

// equal 比较两个属性值，整数按数值比较，避免 int 与 int64 不相等。
func equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return false
	}
	ai, aok := toInt64(a)
	bi, bok := toInt64(b)
	if aok && bok {
		return ai == bi
	}
	return a == b
}

// indexValue 返回可以作为索引键的值，整数统一为 int64。
func indexValue(v interface{}) (interface{}, bool) {
	if i, ok := toInt64(v); ok {
		return i, true
	}
	switch v.(type) {
	case string, bool, float64:
		return v, true
	default:
		return nil, false
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	default:
		return 0, false
	}
}
