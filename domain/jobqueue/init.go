package jobqueue

import (
	"bibgraph-backend/domain/pipeline"
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/filesave"
	"time"
)

/*
Config 描述队列连接和任务的执行方式。

	GetRunner / GetSaver 在 Init 时调用，用于取得全局的 Runner 与 Saver；
	Timeout 单个任务的超时时间，为 0 时不设超时。超时只在阶段之间生效，正在执行的阶段会完整结束；
*/
type Config struct {
	RabbitMQConfig MQConnectionConfig
	GetRunner      func() *pipeline.Runner
	GetSaver       func() *filesave.Saver
	Timeout        time.Duration
}

var globalBroker *broker

const (
	QueuePipelineInput  = "pipeline_input"
	QueuePipelineReport = "pipeline_report"
)

func Init(config *Config) {
	var err error
	globalBroker, err = newBroker(config.RabbitMQConfig.ToURL(), []string{
		QueuePipelineInput,
		QueuePipelineReport,
	})
	if err != nil {
		panic(err)
	}

	worker := &Worker{
		runner:    config.GetRunner(),
		saver:     config.GetSaver(),
		publisher: globalBroker,
		timeout:   config.Timeout,
		logger:    logging.NewLogger(),
	}

	err = globalBroker.ListenOn(QueuePipelineInput, worker.handleInput)
	if err != nil {
		panic(err)
	}
}

// Enabled 在 Init 成功之后返回 true。
func Enabled() bool {
	return globalBroker != nil
}

// Submit 把任务放入 pipeline_input，由本进程或其它进程的 Worker 执行。
func Submit(input InputSchema) error {
	if globalBroker == nil {
		return ErrClosed
	}
	return globalBroker.SendObjectByJSON(QueuePipelineInput, input)
}

func Close() {
	if globalBroker != nil {
		err := globalBroker.Close()
		if err != nil {
			globalBroker.logger.WithError(err).Errorf("globalBroker close fail with err:\n%v", err)
		}
	}
}
