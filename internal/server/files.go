package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/livescan/internal/storage"
)

// registerFileRoutes exposes locally stored export files. The S3
// backend hands out real presigned URLs instead, so the route is only
// mounted for local storage.
func (s *Server) registerFileRoutes() {
	local, ok := s.store.(*storage.LocalStore)
	if !ok {
		return
	}

	s.engine.GET("/files/*key", func(c *gin.Context) {
		expires, err := strconv.ParseInt(c.Query("expires"), 10, 64)
		if err != nil || local.Expired(expires) {
			AbortWithError(c, ErrNotFound)
			return
		}

		key := strings.TrimPrefix(c.Param("key"), "/")
		if fileName := c.Query("filename"); fileName != "" {
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		}
		c.File(local.DiskPath(key))
	})
}
