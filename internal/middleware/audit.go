package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jucampus/registrar-api/internal/models"
	"github.com/jucampus/registrar-api/internal/repository"
)

// Audit creates a middleware that records audit logs after successful requests.
func Audit(repo *repository.AuditRepository, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			Detail:    fmt.Sprintf("%s %s -> %d in %dms", c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start).Milliseconds()),
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		if id := c.Param("student_id"); id != "" {
			entry.ResourceID = id
		}
		if claims, ok := c.Get(ContextAdminKey); ok {
			admin := claims.(*models.JWTClaims)
			entry.AdminID = admin.AdminID
			entry.AdminEmail = admin.Email
		}

		_ = repo.Insert(c.Request.Context(), entry)
	}
}
