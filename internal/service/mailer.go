package service

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers verification codes. Delivery is best-effort: the
// registration flow logs a failed send and carries on, so
// implementations should just report the error and not retry.
type Mailer interface {
	SendCode(email, code string) error
}

// NewMailer picks the SMTP mailer, or a log-only one when mail
// delivery is disabled in the config.
func NewMailer() Mailer {
	if !viper.GetBool("mail.enabled") {
		return &logMailer{}
	}

	return &smtpMailer{
		host:     viper.GetString("mail.host"),
		port:     viper.GetInt("mail.port"),
		sender:   viper.GetString("mail.sender"),
		password: viper.GetString("mail.password"),
	}
}

type smtpMailer struct {
	host     string
	port     int
	sender   string
	password string
}

func (m *smtpMailer) SendCode(email, code string) error {
	if email == m.sender {
		return fmt.Errorf("refusing to send to the sender address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "MedCore verification code")
	msg.SetBody("text/plain", fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code))

	d := gomail.NewDialer(m.host, m.port, m.sender, m.password)

	return d.DialAndSend(msg)
}

// logMailer is used in development when no SMTP server is around.
type logMailer struct{}

func (m *logMailer) SendCode(email, code string) error {
	zap.L().Info("Mail disabled, verification code not sent",
		zap.String("email", email),
		zap.String("code", code),
	)
	return nil
}
