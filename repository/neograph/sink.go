package neograph

import (
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/utils"
	"context"
	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
	"github.com/sirupsen/logrus"
)

/*
Sink 是基于 neo4j 的 sink.Sink 实现。带行的写入按 BatchSize 分批，每批一个事务；
批次之间没有跨事务的回滚。
*/
type Sink struct {
	driver    neo4j.Driver
	database  string
	batchSize int
	logger    *logrus.Logger
}

var _ sink.Sink = (*Sink)(nil)

func NewSink(driver neo4j.Driver, config *Config, logger *logrus.Logger) *Sink {
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}

	return &Sink{
		driver:    driver,
		database:  config.Neo4j.Database,
		batchSize: batchSize,
		logger:    logger,
	}
}

/*
EnsureIndexes 为每个标签的 id 属性建立索引，边的写入依赖按 id 匹配端点。
*/
func (s *Sink) EnsureIndexes(ctx context.Context, labels []string) error {
	for _, label := range labels {
		q := sink.MatchNodes(label)
		if err := q.Validate(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.run(neo4j.AccessModeWrite, ensureIndexCypher(label), nil); err != nil {
			return utils.WrapErrorf(err, "create index on %s fail", label)
		}
	}
	return nil
}

func (s *Sink) CreateEntities(ctx context.Context, batch sink.EntityBatch) error {
	q := sink.MatchNodes(batch.Label)
	if err := q.Validate(); err != nil {
		return err
	}

	cypher := createEntitiesCypher(batch.Label)
	return s.runChunks(ctx, toParamRows(batch.Rows), func(chunk []interface{}) error {
		_, err := s.run(neo4j.AccessModeWrite, cypher, map[string]interface{}{"rows": chunk})
		return err
	})
}

func (s *Sink) CreateEdges(ctx context.Context, batch sink.EdgeBatch) error {
	q := sink.MatchEdges(batch.Type, batch.SourceLabel, batch.TargetLabel)
	if err := q.Validate(); err != nil {
		return err
	}

	cypher := createEdgesCypher(&batch)
	return s.runChunks(ctx, edgeParamRows(batch.Rows), func(chunk []interface{}) error {
		_, err := s.run(neo4j.AccessModeWrite, cypher, map[string]interface{}{"rows": chunk})
		return err
	})
}

func (s *Sink) RunReadQuery(ctx context.Context, query sink.Query) ([]sink.Row, error) {
	return s.runQuery(ctx, neo4j.AccessModeRead, &query)
}

func (s *Sink) RunWriteQuery(ctx context.Context, query sink.Query) ([]sink.Row, error) {
	return s.runQuery(ctx, neo4j.AccessModeWrite, &query)
}

func (s *Sink) runQuery(ctx context.Context, mode neo4j.AccessMode, query *sink.Query) ([]sink.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cypher, params, err := compile(query)
	if err != nil {
		return nil, err
	}

	rows, ok := params["rows"].([]interface{})
	if !ok {
		if ids, isIDs := params["ids"].([]interface{}); isIDs {
			rows, ok = ids, true
		}
	}
	if !ok || len(rows) <= s.batchSize {
		ret, err := s.run(mode, cypher, params)
		if err != nil {
			return nil, utils.WrapErrorf(err, "run %s query fail", query.Op)
		}
		return ret, nil
	}

	// 按批执行，每批替换参数中的行
	key := "rows"
	if _, isIDs := params["ids"]; isIDs {
		key = "ids"
	}
	ret := make([]sink.Row, 0)
	err = s.runChunks(ctx, rows, func(chunk []interface{}) error {
		chunkParams := make(map[string]interface{}, len(params))
		for k, v := range params {
			chunkParams[k] = v
		}
		chunkParams[key] = chunk

		result, err := s.run(mode, cypher, chunkParams)
		if err != nil {
			return err
		}
		ret = append(ret, result...)
		return nil
	})
	if err != nil {
		return nil, utils.WrapErrorf(err, "run %s query fail", query.Op)
	}
	return ret, nil
}

func (s *Sink) runChunks(ctx context.Context, rows []interface{}, fn func(chunk []interface{}) error) error {
	for start := 0; start < len(rows); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := fn(rows[start:end]); err != nil {
			return utils.WrapErrorf(err, "rows [%d, %d)", start, end)
		}
	}
	return nil
}

func (s *Sink) run(mode neo4j.AccessMode, cypher string, params map[string]interface{}) ([]sink.Row, error) {
	session := s.driver.NewSession(neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.WithError(err).Warnf("close neo4j session fail")
		}
	}()

	work := func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect()
		if err != nil {
			return nil, err
		}
		return toRows(records), nil
	}

	s.logger.Debugf("cypher: %s", cypher)

	var ret interface{}
	var err error
	if mode == neo4j.AccessModeRead {
		ret, err = session.ReadTransaction(work)
	} else {
		ret, err = session.WriteTransaction(work)
	}
	if err != nil {
		return nil, err
	}
	return ret.([]sink.Row), nil
}

/*
toRows 把结果记录转换为行。名为 props 的列是属性 map，展开到行中。
*/
func toRows(records []*neo4j.Record) []sink.Row {
	ret := make([]sink.Row, len(records))
	for i, record := range records {
		row := make(sink.Row, len(record.Keys))
		for j, key := range record.Keys {
			value := record.Values[j]
			if key == "props" {
				if props, ok := value.(map[string]interface{}); ok {
					for k, v := range props {
						row[k] = v
					}
					continue
				}
			}
			row[key] = value
		}
		ret[i] = row
	}
	return ret
}
