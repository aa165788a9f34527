package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insightdesk/insightdesk-be/types"
)

const CompanyIDKey = "companyID"

// TenantMiddleware resolves the tenant from the X-Company-ID header. Session
// verification belongs to the external auth collaborator; this only makes the
// tenant id available to handlers.
func TenantMiddleware(c *gin.Context) {
	companyID := c.GetHeader("X-Company-ID")
	if companyID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "X-Company-ID header is required",
		})
		return
	}
	c.Set(CompanyIDKey, companyID)
	c.Next()
}

// CompanyID returns the tenant id resolved by TenantMiddleware.
func CompanyID(c *gin.Context) string {
	return c.GetString(CompanyIDKey)
}
