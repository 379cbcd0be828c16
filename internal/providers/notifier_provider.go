package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"io"
	"net/http"
	"onegoodthing/internal/structures"
	"strings"
	"time"
)

var ErrMailDisabled = errors.New("mail delivery is not configured")

type Email struct {
	To      string
	Subject string
	Text    string
}

type NotifierInterface interface {
	Send(ctx context.Context, mail Email) error
	Enabled() bool
}

// Notifier sends transactional mail through a Resend compatible HTTP API.
type Notifier struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
	logger Logger
}

type sendMailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func NewNotifier(conf *structures.Config, logger Logger) NotifierInterface {
	if !conf.Mail.Enabled || conf.Mail.APIKey == "" {
		logger.Infof(TypeMail, "Mail delivery disabled")
		return &noopNotifier{logger: logger}
	}
	timeout := conf.Mail.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		apiURL: conf.Mail.APIURL,
		apiKey: conf.Mail.APIKey,
		from:   conf.Mail.From,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (n *Notifier) Enabled() bool {
	return true
}

func (n *Notifier) Send(ctx context.Context, mail Email) error {
	if mail.To == "" {
		return errors.New("mail recipient is required")
	}
	payload, err := json.Marshal(sendMailRequest{
		From:    n.from,
		To:      []string{mail.To},
		Subject: mail.Subject,
		Text:    mail.Text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail api error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	n.logger.Debugf(TypeMail, "mail sent to %s: %s", mail.To, mail.Subject)
	return nil
}

type noopNotifier struct {
	logger Logger
}

func (n *noopNotifier) Send(_ context.Context, mail Email) error {
	n.logger.Debugf(TypeMail, "mail disabled, skipping %q to %s", mail.Subject, mail.To)
	return ErrMailDisabled
}

func (n *noopNotifier) Enabled() bool { return false }
