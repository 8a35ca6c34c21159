package main

import (
	"bibgraph-backend/domain/graph"
	"bibgraph-backend/domain/jobqueue"
	"bibgraph-backend/domain/metrics"
	"bibgraph-backend/domain/notify"
	"bibgraph-backend/domain/pipeline"
	"bibgraph-backend/domain/sink"
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/repository/memgraph"
	"bibgraph-backend/repository/metadata"
	"bibgraph-backend/repository/neograph"
	"bibgraph-backend/utils/email"
	"context"
	"github.com/sirupsen/logrus"
	"time"
)

func loggingConf() *logging.Config {
	consoleLevel := logrus.InfoLevel
	if Verbose || conf.Server.DebugMode {
		consoleLevel = logrus.DebugLevel
	}

	return &logging.Config{
		FileLevel:      logrus.DebugLevel,
		ConsoleLevel:   consoleLevel,
		FileDir:        conf.LogDir,
		DisableConsole: false,
	}
}

func emailConf() *email.Config {
	return &email.Config{SMTP: email.SMTPConfig{
		Identity: conf.SMTP.Identity,
		Host:     conf.SMTP.Host,
		Port:     conf.SMTP.Port,
		UserName: conf.SMTP.UserName,
		Password: conf.SMTP.Password,
	}}
}

func metadataConf() *metadata.Config {
	return &metadata.Config{
		Dialect: conf.Metadata.Dialect,
		MySQL: metadata.MySQLConfig{
			User:     conf.Metadata.MySQLUser,
			Password: conf.Metadata.MySQLPassword,
			Host:     conf.Metadata.MySQLHost,
			Database: conf.Metadata.MySQLDatabase,
		},
		SQLitePath:     conf.Metadata.SQLitePath,
		CheckMigration: conf.Metadata.CheckMigration,
	}
}

func filesaveConf() *filesave.Config {
	return &filesave.Config{
		Backend:  conf.Artifact.Backend,
		LocalDir: conf.Artifact.LocalDir,
		S3: filesave.S3Config{
			URL:    conf.Artifact.S3URL,
			Region: conf.Artifact.S3Region,
			Bucket: conf.Artifact.S3Bucket,
			Key:    conf.Artifact.S3Key,
			Secret: conf.Artifact.S3Secret,
		},
		KeyPrefix: conf.Artifact.KeyPrefix,
	}
}

func neographConf() *neograph.Config {
	return &neograph.Config{
		Neo4j: neograph.Neo4jConfig{
			URI:      conf.Neo4j.URI,
			User:     conf.Neo4j.User,
			Pwd:      conf.Neo4j.Password,
			Database: conf.Neo4j.Database,
		},
		BatchSize: conf.Neo4j.BatchSize,
	}
}

func jobqueueConf() *jobqueue.Config {
	return &jobqueue.Config{
		RabbitMQConfig: jobqueue.MQConnectionConfig{
			User: conf.RabbitMQ.User,
			Pwd:  conf.RabbitMQ.Pwd,
			Host: conf.RabbitMQ.Host,
			Port: conf.RabbitMQ.Port,
		},
		GetRunner: pipeline.Default,
		GetSaver:  filesave.Default,
		Timeout:   2 * time.Hour,
	}
}

/*
graphSink 在 dry-run 时返回进程内的图，否则连接 neo4j 并建立 id 索引。返回的 closer 释放连接。
*/
func graphSink(ctx context.Context) (sink.Sink, func(), error) {
	if DryRun {
		return memgraph.New(), func() {}, nil
	}

	neograph.Init(neographConf())
	s := neograph.DefaultSink()
	if err := s.EnsureIndexes(ctx, graph.EntityLabels); err != nil {
		neograph.Close()
		return nil, nil, err
	}
	return s, neograph.Close, nil
}

func pipelineSetting(s sink.Sink) *pipeline.Setting {
	setting := &pipeline.Setting{
		Sink:  s,
		Runs:  metadata.DefaultRunRepository(),
		Saver: filesave.Default(),
		Metrics: metrics.Config{
			CommunityName:     conf.Pipeline.CommunityName,
			CommunityKeywords: conf.Pipeline.CommunityKeywords,
			CoreThreshold:     conf.Pipeline.CoreThreshold,
			TopPaperLimit:     conf.Pipeline.TopPaperLimit,
		},
		RandomSeed:    conf.Pipeline.RandomSeed,
		SkipEvolution: conf.Pipeline.SkipEvolution,
		DryRun:        DryRun,
		Logger:        logging.NewLogger(),
	}

	if email.Enabled() {
		setting.Notifier = notify.NewEmailNotifier()
	}
	return setting
}
