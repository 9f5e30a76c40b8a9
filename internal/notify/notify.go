package notify

import (
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends run-failure notifications. It lives entirely outside the
// pipeline core: only the watch wrapper, playing the scheduler role, uses
// it, and only after observing a failed run.
type Mailer struct {
	apiKey string
	from   string
	to     string
}

func NewMailer(apiKey, from, to string) *Mailer {
	return &Mailer{apiKey: apiKey, from: from, to: to}
}

// Enabled reports whether a complete sendgrid configuration is present.
func (m *Mailer) Enabled() bool {
	return m.apiKey != "" && m.from != "" && m.to != ""
}

// SendFailure mails the operator about a failed pipeline run.
func (m *Mailer) SendFailure(runID string, runErr error) error {
	if !m.Enabled() {
		return errors.New("mailer not configured")
	}

	from := mail.NewEmail("tepco-rates", m.from)
	to := mail.NewEmail("", m.to)
	subject := fmt.Sprintf("tepco-rates run %s failed", runID)
	body := fmt.Sprintf("Pipeline run %s failed:\n\n%v\n", runID, runErr)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	resp, err := sendgrid.NewSendClient(m.apiKey).Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: %d %s", resp.StatusCode, resp.Body)
	}
	return nil
}
