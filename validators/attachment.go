package validators

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AttachmentAllowed reports whether the uploaded filename carries one
// of the allow-listed extensions. A rejected attachment does not fail
// the surrounding request; the article is simply stored without it.
func AttachmentAllowed(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}

	for _, allowed := range viper.GetStringSlice("upload.allowed_exts") {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}

	return false
}

// SanitizeFilename strips anything that could be used to escape the
// uploads directory, keeping just the base name.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean(name))

	if name == "." || name == ".." || name == "/" || strings.ContainsRune(name, 0) {
		return ""
	}

	return name
}
