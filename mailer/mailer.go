package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/regulens/synapse_backend/config"
	"github.com/regulens/synapse_backend/models"
	"github.com/regulens/synapse_backend/utils"
	"github.com/sirupsen/logrus"
)

// Mailer delivers escalation and assignment notices to every active user of
// a role. Without SMTP settings it degrades to structured log lines so dev
// and test environments need no mail server.
type Mailer struct {
	Logger *logrus.Logger

	host     string
	port     string
	username string
	password string
	from     string
}

func New(logger *logrus.Logger) *Mailer {
	return &Mailer{
		Logger:   logger,
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

func (m *Mailer) NotifyRole(ctx context.Context, role models.UserRole, subject string, body string) error {
	db := config.GetDB()
	var recipients []string
	err := db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_active = 1 AND email IS NOT NULL", role).
		Pluck("email", &recipients).Error
	if err != nil {
		return err
	}
	recipients = utils.UniqueSlice(recipients)
	if len(recipients) == 0 {
		if m.Logger != nil {
			m.Logger.WithFields(logrus.Fields{
				"field":   "Mailer",
				"role":    role,
				"subject": subject,
			}).Warn("no recipients for notification")
		}
		return nil
	}
	return m.send(recipients, subject, body)
}

func (m *Mailer) NotifyUser(ctx context.Context, userId int, subject string, body string) error {
	db := config.GetDB()
	var recipients []string
	err := db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = 1 AND email IS NOT NULL", userId).
		Pluck("email", &recipients).Error
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		if m.Logger != nil {
			m.Logger.WithFields(logrus.Fields{
				"field":   "Mailer",
				"user_id": userId,
				"subject": subject,
			}).Warn("no recipient for notification")
		}
		return nil
	}
	return m.send(recipients, subject, body)
}

func (m *Mailer) send(to []string, subject, body string) error {
	if m.host == "" {
		if m.Logger != nil {
			m.Logger.WithFields(logrus.Fields{
				"field":   "Mailer",
				"to":      strings.Join(to, ","),
				"subject": subject,
			}).Info(body)
		}
		return nil
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, strings.Join(to, ","), subject, body))
	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	return smtp.SendMail(addr, auth, m.from, to, msg)
}
