package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kotoba/internal/exporters"
	"github.com/mrlokans/kotoba/internal/scheduler"
)

// BackupRunner takes snapshots on demand and reports the last one.
type BackupRunner interface {
	RunNow(ctx context.Context) (exporters.BackupResult, error)
	Status() scheduler.BackupStatus
}

type BackupsController struct {
	runner BackupRunner
}

func NewBackupsController(runner BackupRunner) *BackupsController {
	return &BackupsController{runner: runner}
}

// Status handles GET /api/backups
func (bc *BackupsController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, bc.runner.Status())
}

// Run handles POST /api/backups
func (bc *BackupsController) Run(c *gin.Context) {
	result, err := bc.runner.RunNow(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "run backup")
		return
	}
	respondCreated(c, result)
}
