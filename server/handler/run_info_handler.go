package handler

import (
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/metadata"
	"bibgraph-backend/server/common"
	"bibgraph-backend/utils"
	"encoding/hex"
	"errors"
	"github.com/gin-gonic/gin"
	"net/http"
	"strconv"
)

func GetRunInfo(ctx *gin.Context) {
	handler := getRunInfoHandler{
		ctx: ctx,
	}

	if err := handler.checkParam(); err != nil {
		logging.Default().WithError(err).Errorf("parse req error: %s", err.Error())
		ctx.JSON(http.StatusBadRequest, common.MakeParamErrorResp(err.Error()))
		return
	}

	resp, err := handler.produce()
	if errors.Is(err, metadata.ErrRunNotFound) {
		ctx.JSON(http.StatusNotFound, common.MakeNotFoundResp())
		return
	}
	if err != nil {
		logging.Default().WithError(err).Errorf("produce error: %s", err.Error())
		ctx.JSON(http.StatusInternalServerError, common.MakeUnknownErrorResp())
		return
	}

	ctx.JSON(http.StatusOK, common.MakeSuccessResp(resp))
}

type getRunInfoHandler struct {
	ctx *gin.Context

	// params
	id uint
}

type runStageItem struct {
	Stage string `json:"stage"`
	Name  string `json:"name"`
	Rows  int    `json:"rows"`
}

type runFileItem struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
	Hash string `json:"hash"`
}

type getRunInfoResp struct {
	listRunItem
	Error   string                    `json:"error,omitempty"`
	Stages  []runStageItem            `json:"stages"`
	Dropped map[string]int            `json:"dropped"`
	Files   []runFileItem             `json:"files"`
	Report  *metadata.SchemaRunReport `json:"report,omitempty"`
}

func (h *getRunInfoHandler) checkParam() error {
	id := h.ctx.Param("id")

	idInteger, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return utils.WrapErrorf(common.ErrRequestParamInvalid, "id(%#v) is not a positive integer", id)
	}

	h.id = uint(idInteger)
	return nil
}

func (h *getRunInfoHandler) produce() (*getRunInfoResp, error) {
	run, err := metadata.DefaultRunRepository().Get(h.id)
	if err != nil {
		return nil, err
	}

	report, err := metadata.ParseRunReport(&run.Extra)
	if err != nil {
		return nil, utils.WrapErrorf(err, "parse report of run [%d] fail", run.ID)
	}

	resp := &getRunInfoResp{
		listRunItem: runItem(run),
		Error:       run.Error,
		Stages:      make([]runStageItem, 0, len(run.Stages)),
		Dropped:     make(map[string]int, len(run.Dropped)),
		Files:       make([]runFileItem, 0, len(run.Files)),
		Report:      report,
	}

	for _, s := range run.Stages {
		resp.Stages = append(resp.Stages, runStageItem{Stage: s.Stage, Name: s.Name, Rows: s.Rows})
	}
	for _, d := range run.Dropped {
		resp.Dropped[d.EdgeType] = d.Count
	}
	for _, f := range run.Files {
		resp.Files = append(resp.Files, runFileItem{
			ID:   f.ID,
			Role: fileRoleName(f.Role),
			Name: f.Name,
			Type: f.Type,
			URL:  f.URL,
			Hash: hex.EncodeToString(f.Hash),
		})
	}

	return resp, nil
}

func fileRoleName(role uint) string {
	switch role {
	case metadata.FileRoleInput:
		return "input"
	case metadata.FileRoleArtifact:
		return "artifact"
	}
	return "unknown"
}
