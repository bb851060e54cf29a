package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Mailer sends transactional mail (password resets) through a Mailgun-style
// HTTP API: POST https://api.mailgun.net/v3/<domain>/messages with the API
// key as basic-auth password.
type Mailer struct {
	domain string
	apiKey string
	from   string
	base   string
	client *http.Client
	log    *zap.Logger
}

// ErrMailerDisabled is returned when no mail credentials are configured.
var ErrMailerDisabled = errors.New("mailer not configured")

func NewMailer(domain, apiKey, from string, log *zap.Logger) *Mailer {
	return &Mailer{
		domain: domain,
		apiKey: apiKey,
		from:   from,
		base:   "https://api.mailgun.net/v3",
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Send posts one plain-text message. In deployments without mail credentials
// the reset link is logged instead so dev flows stay usable.
func (m *Mailer) Send(ctx context.Context, to, subject, text string) error {
	if m.domain == "" || m.apiKey == "" {
		m.log.Info("mailer disabled, mail not sent",
			zap.String("to", to), zap.String("subject", subject))
		return ErrMailerDisabled
	}

	form := url.Values{}
	form.Set("from", m.from)
	form.Set("to", to)
	form.Set("subject", subject)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.base+"/"+m.domain+"/messages", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth("api", m.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Warn("mail send failed", zap.String("to", to), zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errStatus(resp.StatusCode)
	}
	return nil
}
