package main

import (
	"bibgraph-backend/domain/pipeline"
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/repository/metadata"
	"bibgraph-backend/utils"
	"bibgraph-backend/utils/email"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

func runOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.NewLogger()

	data, err := os.ReadFile(InputFile)
	if err != nil {
		return utils.WrapErrorf(err, "read input [%s] fail", InputFile)
	}

	email.Init(emailConf())
	metadata.Init(metadataConf())
	filesave.Init(filesaveConf())

	s, closeSink, err := graphSink(ctx)
	if err != nil {
		return utils.WrapError(err, "prepare graph sink fail")
	}
	defer closeSink()

	pipeline.Init(pipelineSetting(s))

	report, err := pipeline.Default().Run(ctx, &pipeline.Job{
		Desc:      Desc,
		InputName: filepath.Base(InputFile),
		Input:     data,
		Email:     Email,
		DryRun:    DryRun,
	})

	out, marshalErr := json.MarshalIndent(report, "", "  ")
	if marshalErr != nil {
		logger.WithError(marshalErr).Error("marshal report fail")
	} else {
		_, _ = os.Stdout.Write(append(out, '\n'))
	}

	return err
}
