package article

import (
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/juveniletion/medcore/internal"
	"github.com/juveniletion/medcore/internal/model"
	"github.com/juveniletion/medcore/pkg/middleware"
	"github.com/juveniletion/medcore/validators"
)

// Create publishes a new article. Admin only (gated in the router).
// The multipart form may carry an optional `attachment` file; one with
// a disallowed extension is dropped without failing the request, so
// the article is stored attachment-less.
func Create(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	caller := middleware.CurrentUser(c)

	title := c.PostForm("title")
	content := c.PostForm("content")
	category := c.DefaultPostForm("category", model.DefaultCategory)
	if category == "" {
		category = model.DefaultCategory
	}

	if title == "" || content == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "Title and content are required",
			"requestID": requestID,
		})
		return
	}

	var attachment string

	if fh, err := c.FormFile("attachment"); err == nil && fh != nil {
		name := validators.SanitizeFilename(fh.Filename)

		if name == "" || !validators.AttachmentAllowed(name) {
			zap.L().Warn("Attachment rejected, storing article without it",
				zap.String("filename", fh.Filename),
				zap.String("requestID", requestID),
			)
		} else {
			f, err := fh.Open()
			if err != nil {
				internalError(c, requestID, "Failed to open attachment", err)
				return
			}
			defer f.Close()

			mime, err := mimetype.DetectReader(f)
			if err != nil {
				internalError(c, requestID, "Failed to sniff attachment type", err)
				return
			}

			if _, err := f.Seek(0, 0); err != nil {
				internalError(c, requestID, "Failed to rewind attachment", err)
				return
			}

			if err := d.Files.Save(c.Request.Context(), name, f, fh.Size, mime.String()); err != nil {
				internalError(c, requestID, "Failed to store attachment", err)
				return
			}

			attachment = name
		}
	}

	err := d.DB.Create(&model.Article{
		Title:      title,
		Content:    content,
		Category:   category,
		AuthorID:   caller.ID,
		Attachment: attachment,
	}).Error
	if err != nil {
		internalError(c, requestID, "Failed to create article", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

func internalError(c *gin.Context, requestID, msg string, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"success":   false,
		"message":   "Internal server error",
		"requestID": requestID,
	})

	zap.L().Error(msg, zap.Error(err), zap.String("requestID", requestID))
}
