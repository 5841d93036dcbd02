package article

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/juveniletion/medcore/internal"
	"github.com/juveniletion/medcore/validators"
)

// ServeAttachment hands out a stored attachment by filename: a local
// file directly, an S3 object via redirect to its public URL.
func ServeAttachment(c *gin.Context, d *internal.Deps) {
	name := validators.SanitizeFilename(c.Param("filename"))
	if name == "" {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "File not found",
		})
		return
	}

	loc := d.Files.Locate(name)

	if loc.URL != "" {
		c.Redirect(http.StatusFound, loc.URL)
		return
	}

	if _, err := os.Stat(loc.Path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "File not found",
		})
		return
	}

	c.File(loc.Path)
}
