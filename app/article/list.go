package article

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/juveniletion/medcore/internal"
	"github.com/juveniletion/medcore/internal/model"
)

const listLimit = 20

// List returns the newest articles, optionally filtered to an exact
// category match, capped at 20.
func List(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	q := d.DB.
		Preload("Author").
		Order("created_at DESC, id DESC").
		Limit(listLimit)

	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var articles []model.Article
	if err := q.Find(&articles).Error; err != nil {
		internalError(c, requestID, "Failed to list articles", err)
		return
	}

	views := make([]model.ArticleView, 0, len(articles))
	for i := range articles {
		views = append(views, articles[i].View())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    views,
	})
}
