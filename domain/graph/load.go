package graph

import (
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/utils"
	"context"
	"github.com/sirupsen/logrus"
)

/*
Load 按顺序把全部批次写入 sink：先写全部节点，再写全部边。

任何一个批次失败都会立即返回，已经写入的批次不会回滚。
*/
func Load(ctx context.Context, s sink.Sink, batches *Batches, logger *logrus.Logger) error {
	for _, batch := range batches.Nodes {
		if err := s.CreateEntities(ctx, batch.EntityBatch); err != nil {
			return utils.WrapErrorf(err, "create nodes of batch [%s] fail", batch.Name)
		}
		logger.Infof("loaded %d rows of %s", len(batch.Rows), batch.Name)
	}

	for _, batch := range batches.Edges {
		if err := s.CreateEdges(ctx, batch.EdgeBatch); err != nil {
			return utils.WrapErrorf(err, "create edges of batch [%s] fail", batch.Name)
		}
		logger.Infof("loaded %d rows of %s", len(batch.Rows), batch.Name)
	}

	return nil
}
