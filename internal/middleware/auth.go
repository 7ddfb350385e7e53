package middleware

import (
	"net/http"
	"strings"

	"github.com/Gilderlan0101/qodo-pdv/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ClaimsKey = "claims"
)

// JWTClaims are the custom claims embedded in every access token. Tenant and
// operator identity always come from the token, never from the request body.
type JWTClaims struct {
	TenantID     string `json:"tenant_id"`
	OperatorID   string `json:"operator_id"`
	OperatorName string `json:"operator_name"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized("authentication required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized("invalid or expired token"))
			return
		}
		if _, err := uuid.Parse(claims.TenantID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized("token is missing a tenant"))
			return
		}
		if _, err := uuid.Parse(claims.OperatorID); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorized("token is missing an operator"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, &apierror.Error{
				Code:   apierror.CodeInvalidInput,
				Detail: "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

// TenantID returns the tenant from the validated token. JWTAuth already
// guaranteed it parses.
func TenantID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(GetClaims(c).TenantID)
	return id
}

// OperatorID returns the operator from the validated token.
func OperatorID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(GetClaims(c).OperatorID)
	return id
}

func unauthorized(detail string) gin.H {
	return gin.H{"code": "UNAUTHORIZED", "detail": detail}
}
