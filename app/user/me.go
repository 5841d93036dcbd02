package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juveniletion/medcore/internal"
	"github.com/juveniletion/medcore/pkg/middleware"
)

// Me returns the caller's profile, or an explicit anonymous result.
// Never an error.
func Me(c *gin.Context, _ *internal.Deps) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    u.Public(),
	})
}
