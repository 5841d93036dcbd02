package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/juveniletion/medcore/internal"
	"github.com/juveniletion/medcore/internal/model"
	"github.com/juveniletion/medcore/internal/service"
	"github.com/juveniletion/medcore/pkg/middleware"
	"github.com/juveniletion/medcore/validators"
)

type registerBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register starts the signup workflow: it parks the submitted account
// data on the caller's session and emails a one-time code. No user row
// is created until Verify succeeds.
func Register(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.UsernameValidator(data.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   err.Error(),
			"requestID": requestID,
		})
		return
	}

	taken, err := fieldTaken(d.DB, "username", data.Username)
	if err != nil {
		internalError(c, requestID, "Failed to check username", err)
		return
	}
	if taken {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Username already exists",
		})
		return
	}

	taken, err = fieldTaken(d.DB, "email", data.Email)
	if err != nil {
		internalError(c, requestID, "Failed to check email", err)
		return
	}
	if taken {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Email already registered",
		})
		return
	}

	code, err := d.Codes.Issue(data.Email)
	if err != nil {
		internalError(c, requestID, "Failed to issue verification code", err)
		return
	}

	sid := middleware.EnsureSession(c, d.Sessions)
	d.Sessions.SetPending(sid, service.PendingSignup{
		Username: data.Username,
		Email:    data.Email,
		Password: data.Password,
	})

	// Best effort. The code row is already committed, so a mail outage
	// never rolls the registration back; the caller can just retry.
	if err := d.Mail.SendCode(data.Email, code); err != nil {
		zap.L().Warn("Failed to send verification mail",
			zap.String("email", data.Email),
			zap.Error(err),
			zap.String("requestID", requestID),
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Verification code sent",
	})
}

func fieldTaken(db *gorm.DB, column, value string) (bool, error) {
	var found bool

	err := db.Model(model.User{}).
		Select("count(*) > 0").
		Where(column+" = ?", value).
		Find(&found).
		Error

	return found, err
}

func internalError(c *gin.Context, requestID, msg string, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success":   false,
		"message":   "Internal server error",
		"requestID": requestID,
	})

	zap.L().Error(msg, zap.Error(err), zap.String("requestID", requestID))
}
