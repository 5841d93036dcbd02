package article

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/juveniletion/medcore/internal"
	"github.com/juveniletion/medcore/internal/model"
)

// Fetch returns a single article by ID, 404 when it doesn't exist.
func Fetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Article not found",
		})
		return
	}

	var a model.Article

	err = d.DB.Preload("Author").First(&a, uint(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Article not found",
			})
			return
		}

		internalError(c, requestID, "Failed to fetch article", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    a.View(),
	})
}
