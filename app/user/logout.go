package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juveniletion/medcore/internal"
)

// Logout unbinds the caller's session. The RequireAuth gate in front
// of this handler guarantees a bound session exists.
func Logout(c *gin.Context, d *internal.Deps) {
	if sid, ok := c.Get("sessionID"); ok {
		d.Sessions.Unbind(sid.(string))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
