package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Caddilac1/DataHub/internal/models"
	cfgpkg "github.com/Caddilac1/DataHub/pkg/config"
	"github.com/Caddilac1/DataHub/pkg/types"
)

const testSecret = "test-secret"

func newAuthTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	cfg := &cfgpkg.Config{Auth: cfgpkg.AuthConfig{JWTSecret: testSecret}}
	r := gin.New()
	authed := r.Group("/", AuthMiddleware(cfg, db))
	authed.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID})
	})
	admin := authed.Group("/admin", RequireRole(types.UserRoleAdmin))
	admin.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r, db
}

func seedUser(t *testing.T, db *gorm.DB, id string, role types.UserRole, status types.AccountStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{
		ID: id, FullName: "Test User", Email: id + "@example.com",
		PhoneNumber: "+2332000" + id[len(id)-6:], Role: role, AccountStatus: status,
	}).Error)
}

func signToken(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doReq(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)
	require.Equal(t, http.StatusUnauthorized, doReq(r, "/me", "").Code)
}

func TestAuthMiddleware_GarbageToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)
	require.Equal(t, http.StatusUnauthorized, doReq(r, "/me", "not-a-jwt").Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	r, db := newAuthTestRouter(t)
	seedUser(t, db, "USR-aabbccddee", types.UserRoleCustomer, types.AccountStatusActive)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "USR-aabbccddee"}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, doReq(r, "/me", token).Code)
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	r, _ := newAuthTestRouter(t)
	require.Equal(t, http.StatusUnauthorized, doReq(r, "/me", signToken(t, "USR-missing001")).Code)
}

func TestAuthMiddleware_InactiveUser(t *testing.T) {
	r, db := newAuthTestRouter(t)
	seedUser(t, db, "USR-suspended1", types.UserRoleCustomer, types.AccountStatusSuspended)
	require.Equal(t, http.StatusForbidden, doReq(r, "/me", signToken(t, "USR-suspended1")).Code)
}

func TestAuthMiddleware_ActiveUserPasses(t *testing.T) {
	r, db := newAuthTestRouter(t)
	seedUser(t, db, "USR-aabbccddee", types.UserRoleCustomer, types.AccountStatusActive)

	w := doReq(r, "/me", signToken(t, "USR-aabbccddee"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "USR-aabbccddee")
}

func TestRequireRole_RejectsNonAdmin(t *testing.T) {
	r, db := newAuthTestRouter(t)
	seedUser(t, db, "USR-customer01", types.UserRoleCustomer, types.AccountStatusActive)
	require.Equal(t, http.StatusForbidden, doReq(r, "/admin/ping", signToken(t, "USR-customer01")).Code)
}

func TestRequireRole_AllowsAdmin(t *testing.T) {
	r, db := newAuthTestRouter(t)
	seedUser(t, db, "USR-admin00001", types.UserRoleAdmin, types.AccountStatusActive)
	require.Equal(t, http.StatusOK, doReq(r, "/admin/ping", signToken(t, "USR-admin00001")).Code)
}
