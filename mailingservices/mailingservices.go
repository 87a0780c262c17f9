package mailingservices

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// Mailer sends the transactional mails the API needs.
type Mailer interface {
	SendResetPassword(userEmail, resetLink string) (string, error)
}

type Mailgun struct {
	Client *mailgun.MailgunImpl
	From   string
}

func (m *Mailgun) Init() {
	domain := os.Getenv("MG_DOMAIN")
	apiKey := os.Getenv("MG_PUBLIC_API_KEY")
	m.Client = mailgun.NewMailgun(domain, apiKey)
	m.From = os.Getenv("EMAIL_FROM")
	if m.From == "" {
		m.From = fmt.Sprintf("GreenLoop <no-reply@%s>", domain)
	}
}

func (m *Mailgun) SendResetPassword(userEmail, resetLink string) (string, error) {
	subject := "Reset your GreenLoop password"
	body := fmt.Sprintf("We received a request to reset your password.\n\nFollow this link to choose a new one (valid for 1 hour):\n%s\n\nIf you didn't request this, you can ignore this email.", resetLink)

	message := m.Client.NewMessage(m.From, subject, body, userEmail)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, id, err := m.Client.Send(ctx, message)
	if err != nil {
		return "", err
	}
	return id, nil
}
