package notify

import (
	"context"
	"fmt"

	"FireGar/internal/config"

	"github.com/wneessen/go-mail"
)

// EmailProvider delivers notifications over SMTP.
type EmailProvider struct {
	client *mail.Client
	from   string
}

// NewEmailProvider creates an SMTP notification provider.
func NewEmailProvider(cfg config.SMTPConfig) (*EmailProvider, error) {
	op := "notify.NewEmailProvider"

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &EmailProvider{
		client: client,
		from:   cfg.From,
	}, nil
}

func (p *EmailProvider) Name() string { return "email" }

// Send delivers one message to the recipient's email address.
func (p *EmailProvider) Send(ctx context.Context, msg Message) error {
	op := "notify.EmailProvider.Send"

	m := mail.NewMsg()
	if err := m.From(p.from); err != nil {
		return fmt.Errorf("%s: from: %w", op, err)
	}
	if err := m.To(msg.Recipient.Email); err != nil {
		return fmt.Errorf("%s: to: %w", op, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := p.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
