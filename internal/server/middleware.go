package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	authdomain "github.com/smallbiznis/livescan/internal/auth/domain"
	"github.com/smallbiznis/livescan/internal/auth/session"
	recorddomain "github.com/smallbiznis/livescan/internal/servicerecord/domain"
)

const contextUserKey = "current_user"

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err != nil || strings.TrimSpace(token) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if user.Role != authdomain.RoleAdmin {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *authdomain.UserResponse {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*authdomain.UserResponse)
	if !ok {
		return nil
	}
	return user
}

func currentActor(c *gin.Context) recorddomain.Actor {
	user := currentUser(c)
	if user == nil {
		return recorddomain.Actor{}
	}
	id, _ := strconv.ParseInt(user.ID, 10, 64)
	return recorddomain.Actor{
		ID:    id,
		Admin: user.Role == authdomain.RoleAdmin,
	}
}
