package jobqueue

import "bibgraph-backend/domain/pipeline"

/*
InputSchema 是 pipeline_input 队列中的任务。

	FileKey 输入 CSV 在产物存储中的键；
	Name 输入文件名，为空时取 FileKey 的最后一段；
*/
type InputSchema struct {
	FileKey string `json:"file_key"`
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	Email   string `json:"email"`
	DryRun  bool   `json:"dry_run"`
}

/*
ReportSchema 是 pipeline_report 队列中的运行结果，失败的运行 Report.FailedStage 不为空。
*/
type ReportSchema struct {
	FileKey string           `json:"file_key"`
	Report  *pipeline.Report `json:"report"`
}
