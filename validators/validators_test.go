package validators_test

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/juveniletion/medcore/validators"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, validators.EmailValidator("reader@example.com"))
	assert.ErrorIs(t, validators.EmailValidator(""), validators.ErrEmailEmpty)
	assert.ErrorIs(t, validators.EmailValidator("not-an-email"), validators.ErrEmailInvalid)
	assert.ErrorIs(t, validators.EmailValidator("a@"), validators.ErrEmailInvalid)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, validators.PasswordValidator("longenough"))
	assert.ErrorIs(t, validators.PasswordValidator(""), validators.ErrPasswordEmpty)
	assert.ErrorIs(t, validators.PasswordValidator("short"), validators.ErrPasswordTooShort)
	assert.ErrorIs(t, validators.PasswordValidator(strings.Repeat("x", 256)), validators.ErrPasswordTooLong)
}

func TestUsernameValidator(t *testing.T) {
	assert.NoError(t, validators.UsernameValidator("editor"))
	assert.ErrorIs(t, validators.UsernameValidator(""), validators.ErrUsernameEmpty)
	assert.ErrorIs(t, validators.UsernameValidator(strings.Repeat("x", 51)), validators.ErrUsernameTooLong)
}

func TestAttachmentAllowed(t *testing.T) {
	viper.Set("upload.allowed_exts", []string{"png", "jpg", "jpeg", "gif", "pdf"})

	assert.True(t, validators.AttachmentAllowed("scan.png"))
	assert.True(t, validators.AttachmentAllowed("REPORT.PDF"))
	assert.False(t, validators.AttachmentAllowed("payload.exe"))
	assert.False(t, validators.AttachmentAllowed("noext"))
	assert.False(t, validators.AttachmentAllowed(""))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "scan.png", validators.SanitizeFilename("scan.png"))
	assert.Equal(t, "passwd", validators.SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "evil.png", validators.SanitizeFilename("..\\..\\evil.png"))
	assert.Equal(t, "", validators.SanitizeFilename(".."))
	assert.Equal(t, "", validators.SanitizeFilename("."))
	assert.Equal(t, "", validators.SanitizeFilename("bad\x00name"))
}
