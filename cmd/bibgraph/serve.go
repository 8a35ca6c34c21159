package main

import (
	"bibgraph-backend/domain/jobqueue"
	"bibgraph-backend/domain/pipeline"
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/repository/metadata"
	"bibgraph-backend/server"
	"bibgraph-backend/utils"
	"bibgraph-backend/utils/email"
	"context"
)

func serve() error {
	logger := logging.NewLogger()

	email.Init(emailConf())

	metadata.Init(metadataConf())

	filesave.Init(filesaveConf())

	s, closeSink, err := graphSink(context.Background())
	if err != nil {
		return utils.WrapError(err, "prepare graph sink fail")
	}
	defer closeSink()

	pipeline.Init(pipelineSetting(s))

	if conf.RabbitMQ.Enabled {
		jobqueue.Init(jobqueueConf())
		defer jobqueue.Close()
	}

	srv := server.New(&server.Config{
		Host:      conf.Server.Host,
		Port:      conf.Server.Port,
		DebugMode: conf.Server.DebugMode,
	})
	err = srv.RunServer()
	if err != nil {
		logger.WithError(err).Errorf("run server error=\n%v", err)
	}
	return err
}
