package handler

import (
	"bibgraph-backend/domain/jobqueue"
	"bibgraph-backend/domain/pipeline"
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/server/common"
	"bibgraph-backend/utils"
	"context"
	"fmt"
	"github.com/gin-gonic/gin"
	"io"
	"net/http"
	"strings"
	"time"
)

/*
SubmitRun 接收上传的 CSV 并异步执行一次运行。配置了队列时任务进入 pipeline_input，否则在本进程中执行。
*/
func SubmitRun(ctx *gin.Context) {
	handler := submitRunHandler{
		ctx: ctx,
	}

	if err := handler.checkParam(); err != nil {
		logging.Default().WithError(err).Errorf("parse req error: %s", err.Error())
		ctx.JSON(http.StatusBadRequest, common.MakeParamErrorResp(err.Error()))
		return
	}

	resp, err := handler.produce()
	if err != nil {
		logging.Default().WithError(err).Errorf("produce error: %s", err.Error())
		ctx.JSON(http.StatusInternalServerError, common.MakeUnknownErrorResp())
		return
	}

	ctx.JSON(http.StatusOK, common.MakeSuccessResp(resp))
}

type submitRunHandler struct {
	ctx *gin.Context

	// params
	fileName string
	fileData []byte
	desc     string
}

type submitRunResp struct {
	Queued  bool   `json:"queued"`
	FileKey string `json:"file_key,omitempty"`
}

func (h *submitRunHandler) checkParam() error {
	contentType := h.ctx.GetHeader("Content-Type")
	if !strings.Contains(contentType, "multipart/form-data") {
		return utils.WrapErrorf(common.ErrContentTypeNotMultipartFormData,
			"actual Content-Type = [%s] not 'multipart/form-data'", contentType)
	}

	header, err := h.ctx.FormFile("file")
	if err != nil {
		return utils.WrapError(common.ErrRequestParamEmpty, "form file 'file' is missing")
	}

	file, err := header.Open()
	if err != nil {
		return utils.WrapError(err, "open multipart file fail")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.WrapError(err, "read multipart file fail")
	}
	if len(data) == 0 {
		return utils.WrapError(common.ErrRequestParamEmpty, "uploaded file is empty")
	}

	h.fileName = header.Filename
	h.fileData = data
	h.desc = h.ctx.PostForm("desc")

	return nil
}

func (h *submitRunHandler) produce() (*submitRunResp, error) {
	email := ""
	if user := common.GetUserInfo(h.ctx); user != nil {
		email = user.Email
	}

	if jobqueue.Enabled() {
		return h.enqueue(email)
	}

	runner := pipeline.Default()
	job := &pipeline.Job{
		Desc:      h.desc,
		InputName: h.fileName,
		Input:     h.fileData,
		Email:     email,
	}
	go func() {
		if _, err := runner.Run(context.Background(), job); err != nil {
			logging.Default().WithError(err).Errorf("run of [%s] fail: %s", job.InputName, err.Error())
		}
	}()

	return &submitRunResp{Queued: false}, nil
}

func (h *submitRunHandler) enqueue(email string) (*submitRunResp, error) {
	name := fmt.Sprintf("%s_%s", time.Now().Format("20060102150405"), h.fileName)
	resp, err := filesave.Default().SaveFile(h.ctx.Request.Context(), "inbox", name, h.fileData)
	if err != nil {
		return nil, utils.WrapError(err, "save upload fail")
	}

	err = jobqueue.Submit(jobqueue.InputSchema{
		FileKey: resp.Key,
		Name:    h.fileName,
		Desc:    h.desc,
		Email:   email,
	})
	if err != nil {
		return nil, utils.WrapError(err, "submit job fail")
	}

	return &submitRunResp{Queued: true, FileKey: resp.Key}, nil
}
