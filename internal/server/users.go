package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/smallbiznis/livescan/internal/audit/domain"
	authdomain "github.com/smallbiznis/livescan/internal/auth/domain"
)

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.authSvc.ListUsers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) CreateUser(c *gin.Context) {
	var req authdomain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	user, err := s.authSvc.CreateUser(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "user.create", "user", user.ID, map[string]any{
		"email": user.Email,
		"role":  user.Role,
	})

	c.JSON(http.StatusCreated, user)
}

func (s *Server) UpdateUser(c *gin.Context) {
	var req authdomain.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	user, err := s.authSvc.UpdateUser(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "user.update", "user", user.ID, nil)

	c.JSON(http.StatusOK, user)
}

// recordAudit writes a best-effort audit entry as the signed-in user.
func (s *Server) recordAudit(c *gin.Context, action, entityType, entityID string, metadata map[string]any) {
	actor := currentActor(c)
	var email string
	if user := currentUser(c); user != nil {
		email = user.Email
	}
	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorID:    actor.ID,
		ActorEmail: email,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	})
}
