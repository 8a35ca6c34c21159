package server

import (
	"bibgraph-backend/domain/metrics"
	"bibgraph-backend/domain/pipeline"
	"bibgraph-backend/logging"
	"bibgraph-backend/repository/filesave"
	"bibgraph-backend/repository/memgraph"
	"bibgraph-backend/repository/metadata"
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleInput = `PaperId,Title,Year,AuthorId,Main_Author,Venue,Type,FieldOfStudy,ReferenceId
P1,Paper One,2020,A1,True,DB Conf,conference,"['Data Management']",P2
P2,Paper Two,2019,A2,True,DB Conf,conference,"['Data Management']",
`

type resp struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func setup(t *testing.T) http.Handler {
	logging.SetDefaultConfig(logging.GenerateTestConfig(t))
	metadata.Init(metadata.GenerateTestConfig())
	filesave.Init(filesave.GenerateTestConfig(t))

	pipeline.Init(&pipeline.Setting{
		Sink:  memgraph.New(),
		Runs:  metadata.DefaultRunRepository(),
		Saver: filesave.Default(),
		Metrics: metrics.Config{
			CommunityName:     "Databases",
			CommunityKeywords: []string{"Data Management"},
			CoreThreshold:     0.9,
			TopPaperLimit:     100,
		},
		DryRun: true,
	})

	return New(&Config{DebugMode: true}).Handler()
}

func do(t *testing.T, h http.Handler, req *http.Request) (int, resp) {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var r resp
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &r), w.Body.String())
	return w.Code, r
}

func uploadRequest(t *testing.T, name, content, desc string) *http.Request {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	require.Nil(t, err)
	_, err = part.Write([]byte(content))
	require.Nil(t, err)
	require.Nil(t, writer.WriteField("desc", desc))
	require.Nil(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/run", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestSubmitAndInspectRun(t *testing.T) {
	h := setup(t)

	code, r := do(t, h, uploadRequest(t, "papers.csv", sampleInput, "upload test"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, r.Code)

	var runs struct {
		Total int64 `json:"total"`
		Runs  []struct {
			ID     uint   `json:"id"`
			Desc   string `json:"desc"`
			Status string `json:"status"`
			DryRun bool   `json:"dry_run"`
		} `json:"runs"`
	}
	require.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/runs", nil))

		var r resp
		if err := json.Unmarshal(w.Body.Bytes(), &r); err != nil {
			return false
		}
		if err := json.Unmarshal(r.Data, &runs); err != nil {
			return false
		}
		return len(runs.Runs) == 1 && runs.Runs[0].Status != "doing"
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, int64(1), runs.Total)
	assert.Equal(t, "upload test", runs.Runs[0].Desc)
	assert.Equal(t, "done", runs.Runs[0].Status)
	assert.True(t, runs.Runs[0].DryRun)

	code, r = do(t, h, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/runs/%d", runs.Runs[0].ID), nil))
	require.Equal(t, http.StatusOK, code)

	var info struct {
		Stages []struct {
			Stage string `json:"stage"`
		} `json:"stages"`
		Files []struct {
			ID   uint   `json:"id"`
			Role string `json:"role"`
			Name string `json:"name"`
		} `json:"files"`
		Report *struct {
			Evolution *struct {
				Reviews int `json:"reviews"`
			} `json:"evolution"`
		} `json:"report"`
	}
	require.Nil(t, json.Unmarshal(r.Data, &info))
	assert.NotEmpty(t, info.Stages)
	require.NotEmpty(t, info.Files)
	assert.Equal(t, "input", info.Files[0].Role)
	assert.Equal(t, "papers.csv", info.Files[0].Name)
	require.NotNil(t, info.Report)
	require.NotNil(t, info.Report.Evolution)
	assert.Equal(t, 2, info.Report.Evolution.Reviews)

	code, r = do(t, h, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/fileinfo?id=%d", info.Files[0].ID), nil))
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(r.Data), `"role":"input"`)

	code, r = do(t, h, httptest.NewRequest(http.MethodGet, "/admin/listfile?role=artifact", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(r.Data), "nodes_paper.csv")
}

func TestRequestErrors(t *testing.T) {
	h := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/run", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	code, _ := do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/admin/runs/abc", nil))
	assert.Equal(t, http.StatusBadRequest, code)

	code, r := do(t, h, httptest.NewRequest(http.MethodGet, "/admin/runs/999", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEqual(t, 0, r.Code)

	code, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/admin/runs?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, h, httptest.NewRequest(http.MethodGet, "/fileinfo?id=999", nil))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := setup(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
