package middleware

import (
	"fmt"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/chachabrian/parceltrack-backend/internal/database"
	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/chachabrian/parceltrack-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

var dbCounter uint64

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:middleware_%d?mode=memory&cache=shared", atomic.AddUint64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func newUser(t *testing.T, db *gorm.DB, email string, role models.Role) (models.User, string) {
	t.Helper()

	user := models.User{Name: "Test", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(&user)
	require.NoError(t, err)
	return user, token
}

func protectedRouter(db *gorm.DB, role models.Role) *gin.Engine {
	r := gin.New()
	r.GET("/open", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(200, gin.H{"email": c.GetString("email")})
	})
	r.GET("/gated", AuthMiddleware(), RequireRole(db, role), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	db := setupDB(t)
	r := protectedRouter(db, models.RoleAdmin)

	w := get(r, "/open", "")
	assert.Equal(t, 401, w.Code)
}

func TestAuthMiddleware_MalformedToken(t *testing.T) {
	db := setupDB(t)
	r := protectedRouter(db, models.RoleAdmin)

	w := get(r, "/open", "Bearer not-a-jwt")
	assert.Equal(t, 401, w.Code)

	w = get(r, "/open", "Basic abc123")
	assert.Equal(t, 401, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	db := setupDB(t)
	r := protectedRouter(db, models.RoleAdmin)
	_, token := newUser(t, db, "user@example.com", models.RoleUser)

	w := get(r, "/open", "Bearer "+token)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "user@example.com")
}

func TestAuthMiddleware_TokenFromQuery(t *testing.T) {
	db := setupDB(t)
	r := protectedRouter(db, models.RoleAdmin)
	_, token := newUser(t, db, "user@example.com", models.RoleUser)

	w := get(r, "/open?token="+token, "")
	assert.Equal(t, 200, w.Code)
}

func TestRequireRole_WrongRole(t *testing.T) {
	db := setupDB(t)
	r := protectedRouter(db, models.RoleAdmin)
	_, token := newUser(t, db, "user@example.com", models.RoleUser)

	w := get(r, "/gated", "Bearer "+token)
	assert.Equal(t, 403, w.Code)
}

func TestRequireRole_MatchingRole(t *testing.T) {
	db := setupDB(t)
	r := protectedRouter(db, models.RoleAdmin)
	_, token := newUser(t, db, "admin@example.com", models.RoleAdmin)

	w := get(r, "/gated", "Bearer "+token)
	assert.Equal(t, 200, w.Code)
}

// An old token must lose a capability as soon as the stored role changes.
func TestRequireRole_RefetchesRolePerRequest(t *testing.T) {
	db := setupDB(t)
	r := protectedRouter(db, models.RoleAdmin)
	admin, token := newUser(t, db, "admin@example.com", models.RoleAdmin)

	w := get(r, "/gated", "Bearer "+token)
	require.Equal(t, 200, w.Code)

	require.NoError(t, db.Model(&admin).Update("role", models.RoleUser).Error)

	w = get(r, "/gated", "Bearer "+token)
	assert.Equal(t, 403, w.Code)
}

func TestRequireRole_DeletedUser(t *testing.T) {
	db := setupDB(t)
	r := protectedRouter(db, models.RoleAdmin)
	admin, token := newUser(t, db, "admin@example.com", models.RoleAdmin)

	require.NoError(t, db.Unscoped().Delete(&admin).Error)

	w := get(r, "/gated", "Bearer "+token)
	assert.Equal(t, 403, w.Code)
}
