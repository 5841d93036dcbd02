package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/juveniletion/medcore/internal/model"
)

const (
	codeLength = 6
	codeTTL    = 10 * time.Minute
)

var ErrCodeInvalid = errors.New("verification code invalid or expired")

// EmailCodes issues and checks the one-time numeric codes sent to an
// email address during registration.
type EmailCodes struct {
	DB *gorm.DB
}

// Issue wipes every code previously issued for the email and stores a
// fresh one, so only the latest code is ever valid. Returns the code
// so the caller can hand it to the mailer.
func (s *EmailCodes) Issue(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code, %w", err)
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&model.EmailCode{}).Error; err != nil {
			return err
		}

		return tx.Create(&model.EmailCode{
			Email:     email,
			Code:      code,
			ExpiresAt: time.Now().Add(codeTTL),
		}).Error
	})
	if err != nil {
		return "", err
	}

	return code, nil
}

// Check looks up the newest code row matching (email, code) and
// returns it. ErrCodeInvalid covers both a wrong code and an expired
// one; callers don't get to tell the difference.
func (s *EmailCodes) Check(email, code string) (*model.EmailCode, error) {
	var rec model.EmailCode

	err := s.DB.
		Where("email = ? AND code = ?", email, code).
		Order("created_at DESC").
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeInvalid
		}
		return nil, err
	}

	if rec.Expired(time.Now()) {
		return nil, ErrCodeInvalid
	}

	return &rec, nil
}

func generateCode() (string, error) {
	digits := make([]byte, codeLength)

	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}

	return string(digits), nil
}
