package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/juveniletion/medcore/internal/model"
	"github.com/juveniletion/medcore/internal/service"
)

// NewSessionMiddleware resolves the session cookie on every request
// and, when the session is bound to a user, loads that user into the
// context. Only IDs the store knows about count: a cookie value the
// server never minted stays invisible, so a planted cookie can't
// become someone's session. The middleware never rejects a request;
// the gates below do that.
func NewSessionMiddleware(db *gorm.DB, store *service.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(service.SessionCookie)
		if err == nil && sid != "" {
			if sess := store.Current(sid); sess != nil {
				c.Set("sessionID", sid)

				if sess.UserID != 0 {
					var user model.User

					if err := db.First(&user, sess.UserID).Error; err == nil {
						c.Set("user", &user)
					} else if !errors.Is(err, gorm.ErrRecordNotFound) {
						zap.L().Error("Failed to load session user", zap.Error(err))
					}
				}
			}
		}

		c.Next()
	}
}

// EnsureSession returns the caller's session ID, minting one and
// setting the cookie if the request came without a live session.
func EnsureSession(c *gin.Context, store *service.SessionStore) string {
	if v, ok := c.Get("sessionID"); ok {
		return v.(string)
	}

	sid := store.NewID()
	setSessionCookie(c, sid)
	c.Set("sessionID", sid)

	return sid
}

// RotateSession replaces the caller's session ID with a freshly
// minted one and drops the old session. Called at login so an ID that
// existed before authentication never names an authenticated session.
func RotateSession(c *gin.Context, store *service.SessionStore) string {
	if v, ok := c.Get("sessionID"); ok {
		store.Drop(v.(string))
	}

	sid := store.NewID()
	setSessionCookie(c, sid)
	c.Set("sessionID", sid)

	return sid
}

func setSessionCookie(c *gin.Context, sid string) {
	maxAge := int((time.Duration(viper.GetInt("session.ttl_hours")) * time.Hour).Seconds())
	c.SetCookie(service.SessionCookie, sid, maxAge, "/", "", viper.GetBool("host.ssl.enabled"), true)
}

// CurrentUser returns the authenticated user loaded by the session
// middleware, or nil for anonymous callers.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}

	return v.(*model.User)
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		c.Next()
	}
}

// RequireAdmin rejects anonymous callers and authenticated users
// without the admin role.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authentication required",
			})
			return
		}

		if !u.Role.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Access denied",
			})
			return
		}

		c.Next()
	}
}
