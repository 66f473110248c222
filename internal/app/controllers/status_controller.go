package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/canvasmirror/internal/app/models"
	"github.com/yigit/canvasmirror/internal/app/models/dto"
	"github.com/yigit/canvasmirror/internal/middleware"
)

// Pinger reports database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunFinder returns the most recent sync run.
type RunFinder interface {
	Latest(ctx context.Context) (*models.SyncRun, error)
}

// StatusController handles the operational endpoints of daemon mode
type StatusController struct {
	db   Pinger
	runs RunFinder
}

// NewStatusController creates a new StatusController
func NewStatusController(db Pinger, runs RunFinder) *StatusController {
	return &StatusController{
		db:   db,
		runs: runs,
	}
}

// Health reports whether the service and its database are reachable
func (c *StatusController) Health(ctx *gin.Context) {
	if err := c.db.Ping(ctx.Request.Context()); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unreachable").WithDetails(err.Error())
		ctx.JSON(http.StatusServiceUnavailable, dto.NewAPIErrorResponse(errorDetail))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"status": "ok"}))
}

// Status returns the most recent sync run
func (c *StatusController) Status(ctx *gin.Context) {
	run, err := c.runs.Latest(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.FromSyncRun(run)))
}
