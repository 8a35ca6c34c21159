package sink

import (
	"context"
	"errors"
)

// Row 是写入或读出图存储的一行，列名到值。
type Row = map[string]interface{}

const (
	// IDKey 是所有节点的标识属性
	IDKey = "id"

	// SourceKey 与 TargetKey 是边的行中两个端点的标识
	SourceKey = "source"
	TargetKey = "target"

	// LabelsKey 是 MatchNodes 返回的行中存放节点全部标签的列
	LabelsKey = "_labels"
)

var ErrUnsupportedQuery = errors.New("query is not supported by this sink")

/*
EntityBatch 是同一标签的一批节点，每行必须带有 IDKey。
*/
type EntityBatch struct {
	Label string
	Rows  []Row
}

/*
EdgeBatch 是同一类型的一批边。每行的 SourceKey / TargetKey 分别按 id 匹配
SourceLabel、TargetLabel 的已有节点，其余列作为边的属性。端点不存在时该行不产生边。
*/
type EdgeBatch struct {
	Type        string
	SourceLabel string
	TargetLabel string
	Rows        []Row
}

/*
Sink 是图存储的最小协议：按批创建节点和边，并执行读写查询。

Sink 不保证幂等：同一批次重复写入会产生重复的节点或边，除非存储本身有唯一约束。
每个方法返回时写入必须已经对后续读可见。
*/
type Sink interface {
	CreateEntities(ctx context.Context, batch EntityBatch) error
	CreateEdges(ctx context.Context, batch EdgeBatch) error
	RunReadQuery(ctx context.Context, query Query) ([]Row, error)
	RunWriteQuery(ctx context.Context, query Query) ([]Row, error)
}
