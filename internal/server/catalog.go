package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/smallbiznis/livescan/internal/catalog/domain"
)

func (s *Server) CreateOrganization(c *gin.Context) {
	var req catalogdomain.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.catalogSvc.CreateOrganization(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "organization.create", "organization", org.ID, map[string]any{"name": org.Name})
	c.JSON(http.StatusCreated, org)
}

func (s *Server) ListOrganizations(c *gin.Context) {
	var req catalogdomain.ListOrganizationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	orgs, err := s.catalogSvc.ListOrganizations(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

func (s *Server) GetOrganization(c *gin.Context) {
	org, err := s.catalogSvc.GetOrganization(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

func (s *Server) UpdateOrganization(c *gin.Context) {
	var req catalogdomain.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	org, err := s.catalogSvc.UpdateOrganization(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "organization.update", "organization", org.ID, nil)
	c.JSON(http.StatusOK, org)
}

func (s *Server) CreateService(c *gin.Context) {
	var req catalogdomain.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	svc, err := s.catalogSvc.CreateService(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "service.create", "service", svc.ID, map[string]any{"name": svc.Name})
	c.JSON(http.StatusCreated, svc)
}

func (s *Server) ListServices(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	services, err := s.catalogSvc.ListServices(c.Request.Context(), activeOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (s *Server) UpdateService(c *gin.Context) {
	var req catalogdomain.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	svc, err := s.catalogSvc.UpdateService(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "service.update", "service", svc.ID, nil)
	c.JSON(http.StatusOK, svc)
}

func (s *Server) CreateFee(c *gin.Context) {
	var req catalogdomain.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	fee, err := s.catalogSvc.CreateFee(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "fee.create", "fee", fee.ID, map[string]any{"label": fee.Label})
	c.JSON(http.StatusCreated, fee)
}

func (s *Server) ListFees(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	fees, err := s.catalogSvc.ListFees(c.Request.Context(), activeOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fees": fees})
}

func (s *Server) UpdateFee(c *gin.Context) {
	var req catalogdomain.UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	fee, err := s.catalogSvc.UpdateFee(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "fee.update", "fee", fee.ID, nil)
	c.JSON(http.StatusOK, fee)
}

func (s *Server) CreateTechnician(c *gin.Context) {
	var req catalogdomain.CreateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tech, err := s.catalogSvc.CreateTechnician(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "technician.create", "technician", tech.ID, map[string]any{"name": tech.Name})
	c.JSON(http.StatusCreated, tech)
}

func (s *Server) ListTechnicians(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	technicians, err := s.catalogSvc.ListTechnicians(c.Request.Context(), activeOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"technicians": technicians})
}

func (s *Server) UpdateTechnician(c *gin.Context) {
	var req catalogdomain.UpdateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	tech, err := s.catalogSvc.UpdateTechnician(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "technician.update", "technician", tech.ID, nil)
	c.JSON(http.StatusOK, tech)
}
