package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
	"github.com/smallbiznis/livescan/pkg/db/pagination"
)

func (s *Server) CreateServiceRecord(c *gin.Context) {
	var req recorddomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.Actor = currentActor(c)

	record, err := s.recordSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "record.create", "service_record", record.ID, map[string]any{
		"organization": record.OrganizationName,
		"service_date": req.ServiceDate,
	})

	c.JSON(http.StatusCreated, record)
}

func (s *Server) ListServiceRecords(c *gin.Context) {
	var req recorddomain.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.Page = page
	req.Actor = currentActor(c)

	records, pageInfo, err := s.recordSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service_records": records,
		"page_info":       pageInfo,
	})
}

func (s *Server) GetServiceRecord(c *gin.Context) {
	record, err := s.recordSvc.Get(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) UpdateServiceRecord(c *gin.Context) {
	var req recorddomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")
	req.Actor = currentActor(c)

	record, err := s.recordSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "record.update", "service_record", record.ID, nil)
	c.JSON(http.StatusOK, record)
}
