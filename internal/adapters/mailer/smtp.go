// Package mailer delivers outreach messages over SMTP. Every message is
// routed to the configured recipient regardless of the contact's own
// address, so a run can be exercised end to end without emailing strangers.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/docoi/Smart-S/internal/domain"
)

// SMTP sends mail through one authenticated SMTP account using STARTTLS.
type SMTP struct {
	host      string
	port      int
	username  string
	password  string
	from      string
	recipient string
	log       zerolog.Logger
}

// New builds an SMTP mailer. All mail goes to recipient; from defaults to
// username when empty.
func New(host string, port int, username, password, from, recipient string, log zerolog.Logger) *SMTP {
	if from == "" {
		from = username
	}
	return &SMTP{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		from:      from,
		recipient: recipient,
		log:       log.With().Str("component", "mailer").Logger(),
	}
}

// Send delivers one message to the configured recipient.
func (s *SMTP) Send(ctx context.Context, msg domain.OutboundEmail) error {
	m := gomail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := m.To(s.recipient); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	m.AddAlternativeString(gomail.TypeTextHTML, toHTML(msg.Body))

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("building smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending to %s: %w", s.recipient, err)
	}
	s.log.Info().
		Str("contact", msg.Contact.Name).
		Str("contact_email", msg.Contact.Email).
		Str("delivered_to", s.recipient).
		Str("subject", msg.Subject).
		Msg("email sent")
	return nil
}

// toHTML renders the plain-text body as minimal HTML, one paragraph per
// blank-line-separated block.
func toHTML(body string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, para := range strings.Split(body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(para, "\n", "<br>"))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}
