package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	auditdomain "github.com/smallbiznis/livescan/internal/audit/domain"
	authdomain "github.com/smallbiznis/livescan/internal/auth/domain"
	"github.com/smallbiznis/livescan/internal/auth/session"
)

func (s *Server) Login(c *gin.Context) {
	if s.authLimiter.Enabled() {
		allowed, err := s.authLimiter.AllowLogin(c.Request.Context(), c.ClientIP())
		if err == nil && !allowed {
			AbortWithError(c, ErrTooManyTries)
			return
		}
	} else if !s.loginFallback.Allow(c.ClientIP()) {
		AbortWithError(c, ErrTooManyTries)
		return
	}

	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	result, err := s.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
			Action:     "user.login_failed",
			EntityType: "user",
			Metadata:   map[string]any{"email": strings.TrimSpace(req.Email)},
		})
		AbortWithError(c, err)
		return
	}

	s.setSessionCookie(c, result.Token, result.ExpiresAt)

	userID, _ := strconv.ParseInt(result.User.ID, 10, 64)
	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorID:    userID,
		ActorEmail: result.User.Email,
		Action:     "user.login",
		EntityType: "user",
		EntityID:   result.User.ID,
	})

	c.JSON(http.StatusOK, result)
}

func (s *Server) Logout(c *gin.Context) {
	token, err := c.Cookie(session.CookieName)
	if err == nil && strings.TrimSpace(token) != "" {
		if err := s.authSvc.Logout(c.Request.Context(), token); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) ChangePassword(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req authdomain.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	userID, err := strconv.ParseInt(user.ID, 10, 64)
	if err != nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.authSvc.ChangePassword(c.Request.Context(), userID, req); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorID:    userID,
		ActorEmail: user.Email,
		Action:     "user.password_change",
		EntityType: "user",
		EntityID:   user.ID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *Server) ForgotPassword(c *gin.Context) {
	if s.authLimiter.Enabled() {
		allowed, err := s.authLimiter.AllowPasswordReset(c.Request.Context(), c.ClientIP())
		if err == nil && !allowed {
			AbortWithError(c, ErrTooManyTries)
			return
		}
	} else if !s.resetFallback.Allow(c.ClientIP()) {
		AbortWithError(c, ErrTooManyTries)
		return
	}

	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.authSvc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		AbortWithError(c, err)
		return
	}

	// Always the same answer, whether or not the email is known.
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req authdomain.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.authSvc.ResetPassword(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorEmail: strings.TrimSpace(req.Email),
		Action:     "user.password_reset",
		EntityType: "user",
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, maxAge, "/", "", s.cfg.AuthCookieSecure, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", s.cfg.AuthCookieSecure, true)
}
