package jobqueue

import (
	"bibgraph-backend/domain/pipeline"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/utils"
	"context"
	"encoding/json"
	"github.com/sirupsen/logrus"
	"path"
	"time"
)

type publisher interface {
	SendObjectByJSON(queueName string, obj any) error
}

/*
Worker 处理 pipeline_input 中的任务：从产物存储读取输入，执行流水线，把报告发布到 pipeline_report。
*/
type Worker struct {
	runner    *pipeline.Runner
	saver     *filesave.Saver
	publisher publisher
	timeout   time.Duration
	logger    *logrus.Logger
}

func (w *Worker) handleInput(body []byte) error {
	var input InputSchema
	if err := json.Unmarshal(body, &input); err != nil {
		return utils.WrapError(err, "json unmarshal fail")
	}

	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	data, err := w.saver.LoadFile(ctx, input.FileKey)
	if err != nil {
		return utils.WrapErrorf(err, "load input [%s] fail", input.FileKey)
	}

	name := input.Name
	if len(name) == 0 {
		name = path.Base(input.FileKey)
	}

	report, err := w.runner.Run(ctx, &pipeline.Job{
		Desc:      input.Desc,
		InputName: name,
		Input:     data,
		Email:     input.Email,
		DryRun:    input.DryRun,
	})
	if err != nil {
		w.logger.WithError(err).Errorf("run of [%s] fail: %s", input.FileKey, err.Error())
	}

	err = w.publisher.SendObjectByJSON(QueuePipelineReport, ReportSchema{
		FileKey: input.FileKey,
		Report:  report,
	})
	return utils.WrapErrorf(err, "publish report of [%s] fail", input.FileKey)
}
