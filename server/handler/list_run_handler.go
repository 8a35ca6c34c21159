package handler

import (
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/metadata"
	"bibgraph-backend/server/common"
	"bibgraph-backend/utils"
	"github.com/gin-gonic/gin"
	"net/http"
	"strconv"
	"time"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

func ListRun(ctx *gin.Context) {
	offset, limit, err := parsePage(ctx)
	if err != nil {
		logging.Default().WithError(err).Errorf("parse req error: %s", err.Error())
		ctx.JSON(http.StatusBadRequest, common.MakeParamErrorResp(err.Error()))
		return
	}

	res, err := listRun(offset, limit)
	if err != nil {
		logging.Default().WithError(err).Errorf("ListRun produce error: %s", err.Error())
		ctx.JSON(http.StatusInternalServerError, common.MakeUnknownErrorResp())
		return
	}

	ctx.JSON(http.StatusOK, common.MakeSuccessResp(res))
}

type listRunItem struct {
	ID             uint   `json:"id"`
	Desc           string `json:"desc"`
	Status         string `json:"status"`
	DryRun         bool   `json:"dry_run"`
	OrphanedPapers int    `json:"orphaned_papers"`
	Time           int64  `json:"time"`
	TimeStr        string `json:"time_str"`
	FinishTimeStr  string `json:"finish_time_str,omitempty"`
}

type listRunResp struct {
	Total int64         `json:"total"`
	Runs  []listRunItem `json:"runs"`
}

func parsePage(ctx *gin.Context) (int, int, error) {
	offset, limit := 0, defaultListLimit

	if v := ctx.Query("offset"); len(v) != 0 {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, utils.WrapErrorf(common.ErrRequestParamInvalid, "offset(%#v) invalid", v)
		}
		offset = n
	}

	if v := ctx.Query("limit"); len(v) != 0 {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return 0, 0, utils.WrapErrorf(common.ErrRequestParamInvalid, "limit(%#v) invalid", v)
		}
		limit = n
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return offset, limit, nil
}

func listRun(offset, limit int) (*listRunResp, error) {
	runs, total, err := metadata.DefaultRunRepository().List(offset, limit)
	if err != nil {
		return nil, utils.WrapError(err, "list runs fail")
	}

	ret := &listRunResp{
		Total: total,
		Runs:  make([]listRunItem, 0, len(runs)),
	}
	for i := range runs {
		ret.Runs = append(ret.Runs, runItem(&runs[i]))
	}

	return ret, nil
}

func runItem(run *metadata.PipelineRun) listRunItem {
	item := listRunItem{
		ID:             run.ID,
		Desc:           run.Desc,
		Status:         metadata.RunStatusName(run.Status),
		DryRun:         run.DryRun,
		OrphanedPapers: run.OrphanedPapers,
		Time:           run.CreatedAt.Unix(),
		TimeStr:        run.CreatedAt.Format(time.RFC3339),
	}
	if run.FinishedAt.Valid {
		item.FinishTimeStr = run.FinishedAt.Time.Format(time.RFC3339)
	}
	return item
}
