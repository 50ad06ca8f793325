package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/coursemart-backend/internal/response"
	"github.com/stemsi/coursemart-backend/internal/service"
)

// RequireRole checks that the authenticated caller holds one of roles.
func RequireRole(roles ...service.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, roleDeniedCode(roles))
	}
}

func roleDeniedCode(roles []service.Role) response.ErrCode {
	if len(roles) == 1 {
		switch roles[0] {
		case service.RoleInstructor:
			return response.ErrInstructorOnly
		case service.RoleStudent:
			return response.ErrStudentAccessOnly
		}
	}
	return response.ErrPermissionDenied
}
