package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/smallbiznis/livescan/internal/audit/domain"
	exportdomain "github.com/smallbiznis/livescan/internal/export/domain"
	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

// RunExport executes a billing run and streams the generated file back
// as an attachment. Batch metadata travels in response headers so the
// UI can show the outcome without a second request.
func (s *Server) RunExport(c *gin.Context) {
	var req exportdomain.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	actor := currentActor(c)
	req.ActorID = actor.ID
	if user := currentUser(c); user != nil {
		req.ActorEmail = user.Email
	}

	result, err := s.exportSvc.Run(c.Request.Context(), req)
	if err != nil {
		s.recordAudit(c, "export.failed", "export_batch", "", map[string]any{
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
			"format":     req.Format,
			"error":      err.Error(),
		})
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "export.completed", "export_batch", result.Batch.ID, map[string]any{
		"format":       result.Batch.Format,
		"record_count": result.Batch.RecordCount,
		"status":       result.Batch.Status,
	})

	c.Header("X-Export-Batch-Id", result.Batch.ID)
	c.Header("X-Export-Batch-Status", result.Batch.Status)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (s *Server) ExportHistory(c *gin.Context) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	batches, pageInfo, err := s.exportSvc.History(c.Request.Context(), page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batches":   batches,
		"page_info": pageInfo,
	})
}

func (s *Server) GetExportBatch(c *gin.Context) {
	batch, err := s.exportSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) DownloadExport(c *gin.Context) {
	url, err := s.exportSvc.DownloadURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (s *Server) DashboardStats(c *gin.Context) {
	stats, err := s.dashboardSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) ListAuditLogs(c *gin.Context) {
	var req struct {
		Action     string `form:"action"`
		EntityType string `form:"entity_type"`
		EntityID   string `form:"entity_id"`
		ActorID    string `form:"actor_id"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	listReq := auditdomain.ListRequest{
		Pagination: page,
		Action:     req.Action,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		ActorID:    req.ActorID,
	}
	if raw := c.Query("start_at"); raw != "" {
		at, err := parseDateParam(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		listReq.StartAt = &at
	}
	if raw := c.Query("end_at"); raw != "" {
		at, err := parseDateParam(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		listReq.EndAt = &at
	}

	res, err := s.auditSvc.List(c.Request.Context(), listReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func parseDateParam(raw string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", raw, time.UTC)
}
