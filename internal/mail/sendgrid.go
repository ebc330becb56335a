package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/benoitkugler/equimark/internal/config"
)

var _ Sender = (*SendGridSender)(nil) // assert interface conformance

// errNoAPIKey makes the send step fail when the secret is missing.
var errNoAPIKey = errors.New("sendgrid api key is not configured")

// SendGridSender sends through the SendGrid v3 mail-send API.
// One request per Send call, no retry.
type SendGridSender struct {
	cfg    config.Mail
	client *sendgrid.Client
}

func NewSendGridSender(cfg config.Mail) *SendGridSender {
	return &SendGridSender{cfg: cfg, client: sendgrid.NewSendClient(cfg.APIKey)}
}

func (s *SendGridSender) Send(ctx context.Context, m Message) error {
	if s.cfg.APIKey == "" {
		return errNoAPIKey
	}
	resp, err := s.client.SendWithContext(ctx, buildSGMail(s.cfg, m))
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// buildSGMail translates a Message into the SendGrid helper structure.
func buildSGMail(cfg config.Mail, m Message) *sgmail.SGMailV3 {
	from := sgmail.NewEmail(cfg.FromName, cfg.FromEmail)
	to := sgmail.NewEmail("", m.To)
	out := sgmail.NewSingleEmail(from, m.Subject, to, m.Text, m.HTML)
	for _, a := range m.Attachments {
		att := sgmail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.MIMEType)
		att.SetFilename(a.Filename)
		if a.Inline {
			att.SetDisposition("inline")
			att.SetContentID(a.CID)
		} else {
			att.SetDisposition("attachment")
		}
		out.AddAttachment(att)
	}
	return out
}
