package neograph

import (
	"bibgraph-backend/logging"
	"bibgraph-backend/utils"
	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
	"time"
)

type Neo4jConfig struct {
	URI      string
	User     string
	Pwd      string
	Database string
}

type Config struct {
	Neo4j     Neo4jConfig
	BatchSize int
}

func GenerateTestConfig() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			URI:  "bolt://localhost:7687",
			User: "neo4j",
			Pwd:  "neo4j_test",
		},
		BatchSize: 1000,
	}
}

var (
	driver       neo4j.Driver
	globalConfig Config
)

/*
CreateDriver 创建 neo4j 驱动并检查连通性。
*/
func CreateDriver(config *Config) (neo4j.Driver, error) {
	d, err := neo4j.NewDriver(config.Neo4j.URI, neo4j.BasicAuth(config.Neo4j.User, config.Neo4j.Pwd, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionLifetime = 30 * time.Minute
			c.SocketConnectTimeout = 10 * time.Second
		})
	if err != nil {
		return nil, utils.WrapError(err, "create neo4j driver fail")
	}

	if err := d.VerifyConnectivity(); err != nil {
		_ = d.Close()
		return nil, utils.WrapErrorf(err, "connect neo4j [%s] fail", config.Neo4j.URI)
	}

	return d, nil
}

func Init(config *Config) {
	d, err := CreateDriver(config)
	if err != nil {
		panic(err)
	}

	driver = d
	globalConfig = *config
}

func Close() {
	if driver == nil {
		return
	}
	if err := driver.Close(); err != nil {
		logging.Default().WithError(err).Errorf("close neo4j driver fail")
	}
	driver = nil
}

// DefaultSink 返回基于全局驱动的 Sink，必须在 Init 之后调用。
func DefaultSink() *Sink {
	return NewSink(driver, &globalConfig, logging.NewLogger())
}
