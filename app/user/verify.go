package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/juveniletion/medcore/internal"
	"github.com/juveniletion/medcore/internal/model"
	"github.com/juveniletion/medcore/internal/service"
)

type verifyBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Verify completes the signup workflow: it checks the one-time code
// against the newest row issued for the email and, inside one
// transaction, creates the user and burns the code.
func Verify(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data verifyBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	sid, _ := c.Get("sessionID")
	var pending *service.PendingSignup
	if sidStr, ok := sid.(string); ok {
		pending = d.Sessions.Pending(sidStr)
	}

	if pending == nil || pending.Email != data.Email {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Registration session expired",
		})
		return
	}

	rec, err := d.Codes.Check(data.Email, data.Code)
	if err != nil {
		if errors.Is(err, service.ErrCodeInvalid) {
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"message": "Verification code invalid or expired",
			})
			return
		}

		internalError(c, requestID, "Failed to check verification code", err)
		return
	}

	hash, err := d.Argon.GenerateFromPassword(pending.Password)
	if err != nil {
		internalError(c, requestID, "Failed to hash password", err)
		return
	}

	err = d.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.User{
			Username:     pending.Username,
			Email:        pending.Email,
			PasswordHash: hash,
			Role:         model.RoleUser,
		}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.EmailCode{}, rec.ID).Error
	})
	if err != nil {
		// Covers the lost race where another session verified the same
		// email first: the unique index rejects the second insert.
		internalError(c, requestID, "Failed to create user", err)
		return
	}

	d.Sessions.ClearPending(sid.(string))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Registration complete",
	})
}
