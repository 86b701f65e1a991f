package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"gorm.io/gorm"

	"github.com/Caddilac1/DataHub/internal/models"
	cfgpkg "github.com/Caddilac1/DataHub/pkg/config"
	"github.com/Caddilac1/DataHub/pkg/response"
	"github.com/Caddilac1/DataHub/pkg/types"
)

const userKey = "currentUser"

// AuthMiddleware parses a Bearer token (HS256) and loads the active user it
// names into the gin context. Tokens are issued by the account service;
// login/registration flows are not part of this backend.
func AuthMiddleware(cfg *cfgpkg.Config, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(cfg.Auth.JWTSecret), nil
		})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
			return
		}

		userID, _ := claims["sub"].(string)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).Where("id = ?", userID).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		if !user.Active() {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}

		c.Set(userKey, &user)
		c.Next()
	}
}

// RequireRole rejects requests whose authenticated user lacks the role.
func RequireRole(role types.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, nil))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// RequestMeta collects actor and client metadata for audited mutations.
func RequestMeta(c *gin.Context) types.RequestMeta {
	meta := types.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if u := CurrentUser(c); u != nil {
		meta.ActorID = u.ID
	}
	return meta
}
