package handler

import (
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/metadata"
	"bibgraph-backend/server/common"
	"bibgraph-backend/utils"
	"fmt"
	"github.com/gin-gonic/gin"
	"net/http"
	"strings"
	"time"
)

/*
ListFile 列出上传过的输入文件，query role=artifact 时列出批次 CSV。
*/
func ListFile(ctx *gin.Context) {
	role := metadata.FileRoleInput
	switch ctx.Query("role") {
	case "", "input":
	case "artifact":
		role = metadata.FileRoleArtifact
	default:
		ctx.JSON(http.StatusBadRequest, common.MakeParamErrorResp("role must be input or artifact"))
		return
	}

	res, err := listFile(role)
	if err != nil {
		logging.Default().WithError(err).Errorf("ListFile produce error: %s", err.Error())
		ctx.JSON(http.StatusInternalServerError, common.MakeUnknownErrorResp())
		return
	}

	ctx.JSON(http.StatusOK, common.MakeSuccessResp(res))
}

type listFileItem struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	RunID         *uint  `json:"run_id"`
	CreateTime    int64  `json:"create_time"`
	CreateTimeStr string `json:"create_time_str"`
}

func listFile(role uint) ([]listFileItem, error) {
	var fileList []metadata.File
	res := metadata.DatabaseRaw().Where(&metadata.File{Role: role}).Order("id desc").Find(&fileList)
	err := res.Error
	if err != nil {
		return nil, utils.WrapError(err, "select files fail")
	}

	ret := make([]listFileItem, 0, res.RowsAffected)
	for _, file := range fileList {
		ret = append(ret, listFileItem{
			ID:            file.ID,
			Name:          fmt.Sprintf("%s.%s", strings.TrimSuffix(file.Name, "."+file.Type), file.Type),
			Type:          file.Type,
			RunID:         file.RunID,
			CreateTime:    file.CreatedAt.Unix(),
			CreateTimeStr: file.CreatedAt.Format(time.RFC3339),
		})
	}

	return ret, nil
}
