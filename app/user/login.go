package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/juveniletion/medcore/internal"
	"github.com/juveniletion/medcore/internal/model"
	"github.com/juveniletion/medcore/pkg/middleware"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login binds the caller's session to the user on success. Every
// failure path returns the same message so callers can't probe which
// emails are registered.
func Login(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	badCreds := func() {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Invalid email or password",
		})
	}

	if data.Email == "" || data.Password == "" {
		badCreds()
		return
	}

	var user model.User

	if err := d.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			badCreds()
			return
		}

		internalError(c, requestID, "Failed to look up user", err)
		return
	}

	ok, err := d.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		internalError(c, requestID, "Failed to verify password", err)
		return
	}

	if !ok {
		badCreds()
		return
	}

	// A fresh ID on every login; whatever cookie the caller showed up
	// with never names the authenticated session
	sid := middleware.RotateSession(c, d.Sessions)
	d.Sessions.BindUser(sid, user.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user.Public(),
	})
}
