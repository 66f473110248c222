package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/app/models/dto"
	"github.com/yigit/canvasmirror/internal/pkg/apperrors"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error {
	return f.err
}

type fakeRunFinder struct {
	run *models.SyncRun
	err error
}

func (f *fakeRunFinder) Latest(_ context.Context) (*models.SyncRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.run, nil
}

func statusRouter(pinger Pinger, runs RunFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller := NewStatusController(pinger, runs)
	router.GET("/healthz", controller.Health)
	router.GET("/api/v1/status", controller.Status)
	return router
}

func perform(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHealthOK(t *testing.T) {
	router := statusRouter(&fakePinger{}, &fakeRunFinder{})

	recorder := perform(t, router, "/healthz")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"ok"`)
}

func TestHealthDatabaseDown(t *testing.T) {
	router := statusRouter(&fakePinger{err: errors.New("connection refused")}, &fakeRunFinder{})

	recorder := perform(t, router, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)

	var resp struct {
		Error *dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrorCodeDatabaseError, resp.Error.Code)
}

func TestStatusReturnsLatestRun(t *testing.T) {
	finished := time.Now()
	run := &models.SyncRun{
		ID:          uuid.New(),
		StartedAt:   finished.Add(-42 * time.Second),
		FinishedAt:  &finished,
		Status:      models.SyncStatusPartial,
		Courses:     4,
		Assignments: 17,
		Errors:      []string{"assignment 3: connection reset"},
	}
	router := statusRouter(&fakePinger{}, &fakeRunFinder{run: run})

	recorder := perform(t, router, "/api/v1/status")
	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Data dto.SyncRunResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, run.ID.String(), resp.Data.ID)
	assert.Equal(t, "partial", resp.Data.Status)
	assert.Equal(t, 21, resp.Data.Records)
	require.NotNil(t, resp.Data.DurationMs)
	assert.InDelta(t, 42000, *resp.Data.DurationMs, 100)
	assert.Len(t, resp.Data.Errors, 1)
}

func TestStatusNoRunsYet(t *testing.T) {
	finder := &fakeRunFinder{err: fmt.Errorf("%w: no sync runs recorded", apperrors.ErrResourceNotFound)}
	router := statusRouter(&fakePinger{}, finder)

	recorder := perform(t, router, "/api/v1/status")
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var resp struct {
		Error *dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, resp.Error.Code)
}
