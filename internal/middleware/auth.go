package middleware

import (
	"strings"

	"github.com/DavidJaure/CRUDapiDB/internal/apierror"
	"github.com/DavidJaure/CRUDapiDB/internal/security"

	"github.com/gin-gonic/gin"
)

const (
	ClaimsKey = "claims"
)

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(tokens *security.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abort(c, apierror.NewUnauthenticated("Autenticacion requerida"))
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			abort(c, apierror.NewUnauthenticated("Token invalido o expirado"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireOwner rejects requests whose token subject differs from the path
// parameter. It compares strings and never touches the store, so a 403 says
// nothing about whether the target profile exists.
func RequireOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.Subject != c.Param(param) {
			abort(c, apierror.NewForbidden("solo puede modificar su propio perfil"))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err *apierror.AppError) {
	c.AbortWithStatusJSON(err.StatusCode(), err.Response())
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *security.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*security.Claims)
	return claims
}
