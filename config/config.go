package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Neo4jConfig struct {
	URI       string `envconfig:"NEO4J_URI" default:"bolt://localhost:7687"`
	User      string `envconfig:"NEO4J_USER" default:"neo4j"`
	Password  string `envconfig:"NEO4J_PASSWORD"`
	Database  string `envconfig:"NEO4J_DATABASE"`
	BatchSize int    `envconfig:"NEO4J_BATCH_SIZE" default:"1000"`
}

type MetadataConfig struct {
	Dialect        string `envconfig:"METADATA_DIALECT" default:"mysql"`
	MySQLUser      string `envconfig:"METADATA_MYSQL_USER"`
	MySQLPassword  string `envconfig:"METADATA_MYSQL_PASSWORD"`
	MySQLHost      string `envconfig:"METADATA_MYSQL_HOST" default:"localhost"`
	MySQLDatabase  string `envconfig:"METADATA_MYSQL_DATABASE"`
	SQLitePath     string `envconfig:"METADATA_SQLITE_PATH" default:"bibgraph.db"`
	CheckMigration bool   `envconfig:"METADATA_CHECK_MIGRATION" default:"true"`
}

type RabbitMQConfig struct {
	Enabled bool   `envconfig:"RABBITMQ_ENABLED" default:"false"`
	User    string `envconfig:"RABBITMQ_USER" default:"guest"`
	Pwd     string `envconfig:"RABBITMQ_PWD" default:"guest"`
	Host    string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port    string `envconfig:"RABBITMQ_PORT" default:"5672"`
}

type SMTPConfig struct {
	Identity string `envconfig:"SMTP_IDENTITY"`
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"25"`
	UserName string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
}

type ArtifactConfig struct {
	Backend   string `envconfig:"ARTIFACT_BACKEND" default:"local"`
	LocalDir  string `envconfig:"ARTIFACT_LOCAL_DIR" default:"data"`
	S3URL     string `envconfig:"ARTIFACT_S3_URL"`
	S3Region  string `envconfig:"ARTIFACT_S3_REGION"`
	S3Bucket  string `envconfig:"ARTIFACT_S3_BUCKET"`
	S3Key     string `envconfig:"ARTIFACT_S3_KEY"`
	S3Secret  string `envconfig:"ARTIFACT_S3_SECRET"`
	KeyPrefix string `envconfig:"ARTIFACT_KEY_PREFIX" default:"runs"`
}

type ServerConfig struct {
	Host      string `envconfig:"SERVER_HOST"`
	Port      int    `envconfig:"SERVER_PORT" default:"8003"`
	DebugMode bool   `envconfig:"SERVER_DEBUG" default:"false"`
}

type PipelineConfig struct {
	CommunityName     string   `envconfig:"COMMUNITY_NAME" default:"Databases"`
	CommunityKeywords []string `envconfig:"COMMUNITY_KEYWORDS" default:"Data Management,Indexing,Data Modeling,Big Data,Data Processing,Data Storage,Data Querying"`
	CoreThreshold     float64  `envconfig:"CORE_VENUE_THRESHOLD" default:"0.9"`
	TopPaperLimit     int      `envconfig:"TOP_PAPER_LIMIT" default:"100"`
	RandomSeed        int64    `envconfig:"SYNTHETIC_SEED" default:"0"`
	SkipEvolution     bool     `envconfig:"SKIP_EVOLUTION" default:"false"`
}

type Config struct {
	Neo4j    Neo4jConfig
	Metadata MetadataConfig
	RabbitMQ RabbitMQConfig
	SMTP     SMTPConfig
	Artifact ArtifactConfig
	Server   ServerConfig
	Pipeline PipelineConfig
	LogDir   string `envconfig:"LOG_DIR" default:"logs"`
}

/*
Load 先加载 .env（不存在时忽略），再从环境变量读取配置。
*/
func Load() (*Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}

	return &c, nil
}
