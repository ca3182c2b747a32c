package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/ctxutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
)

const (
	headerOrganizationID = "X-Organization-ID"
	headerTechnicianID   = "X-Technician-ID"
)

type OrgMiddleware struct {
	log *logger.Logger
}

func NewOrgMiddleware(log *logger.Logger) *OrgMiddleware {
	return &OrgMiddleware{log: log.With("Middleware", "OrgMiddleware")}
}

// RequireOrg resolves the calling organization from the request headers and
// stashes it as request data. Every org-scoped route sits behind this;
// authentication proper happens upstream of this service.
func (om *OrgMiddleware) RequireOrg() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerOrganizationID)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing organization header", "code": "unauthorized"},
			})
			return
		}
		orgID, err := uuid.Parse(raw)
		if err != nil || orgID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "invalid organization header", "code": "unauthorized"},
			})
			return
		}

		rd := &ctxutil.RequestData{OrganizationID: orgID}
		if rawTech := c.GetHeader(headerTechnicianID); rawTech != "" {
			if techID, err := uuid.Parse(rawTech); err == nil {
				rd.TechnicianID = techID
			}
		}

		ctx := ctxutil.WithRequestData(c.Request.Context(), rd)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
