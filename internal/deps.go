package internal

import (
	"gorm.io/gorm"

	"github.com/juveniletion/medcore/internal/service"
	"github.com/juveniletion/medcore/internal/storage"
	"github.com/juveniletion/medcore/pkg/security"
)

// Deps bundles everything handlers need. Built once in app.NewRouter
// and threaded through every handler.
type Deps struct {
	DB       *gorm.DB
	Argon    *security.ArgonHash
	Mail     service.Mailer
	Sessions *service.SessionStore
	Codes    *service.EmailCodes
	Files    storage.Store
}
