package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/kapu/higapro-site/internal/constants"
	"github.com/kapu/higapro-site/pkg/errors"
	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

// Message is one contact inquiry. It is delivered to the site's own mailbox with
// the sender as Reply-To.
type Message struct {
	Name    string
	Email   string
	Subject string
	Text    string
}

type transport interface {
	DialWithContext(ctx context.Context) error
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
	Close() error
}

// Mailer opens a fresh SMTP client for every delivery, so concurrent sends
// never share connection state.
type Mailer struct {
	newClient func() (transport, error)
	user      string
	logger    *zap.Logger
}

// NewMailer connects lazily: nothing is dialed until Verify or Send.
func NewMailer(cfg Config, logger *zap.Logger) (*Mailer, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.Mail.Timeout
	}

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.User),
		gomail.WithPassword(cfg.Password),
		gomail.WithTimeout(timeout),
	}
	newClient := func() (transport, error) {
		client, err := gomail.NewClient(cfg.Host, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create SMTP client: %w", err)
		}
		return client, nil
	}

	// Reject bad options at startup rather than on the first inquiry.
	if _, err := newClient(); err != nil {
		return nil, err
	}

	return &Mailer{newClient: newClient, user: cfg.User, logger: logger}, nil
}

// verify dials and authenticates, then hangs up.
func verify(ctx context.Context, client transport) error {
	if err := client.DialWithContext(ctx); err != nil {
		return errors.NewServiceError("SMTP verification failed", "mail", "verify", err)
	}
	return client.Close()
}

// Send verifies the connection and delivers msg.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	client, err := m.newClient()
	if err != nil {
		return errors.NewServiceError("failed to create SMTP client", "mail", "send", err)
	}

	if err := verify(ctx, client); err != nil {
		m.logger.Error("SMTP verify failed", zap.Error(err))
		return err
	}

	built, err := Build(m.user, msg)
	if err != nil {
		return errors.NewServiceError("failed to build message", "mail", "build", err)
	}

	if err := client.DialAndSendWithContext(ctx, built); err != nil {
		m.logger.Error("SMTP send failed",
			zap.String("reply_to", msg.Email),
			zap.Error(err),
		)
		return errors.NewServiceError("failed to send message", "mail", "send", err)
	}

	m.logger.Info("Contact mail sent", zap.String("reply_to", msg.Email))
	return nil
}

// Build composes the mail for msg addressed to mailbox.
func Build(mailbox string, msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(mailbox); err != nil {
		return nil, err
	}
	if err := m.To(mailbox); err != nil {
		return nil, err
	}
	if err := m.ReplyToFormat(msg.Name, msg.Email); err != nil {
		return nil, err
	}
	m.Subject(constants.Mail.SubjectPrefix + msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	return m, nil
}
