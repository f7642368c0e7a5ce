package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kapu/higapro-site/internal/mail"
	"github.com/kapu/higapro-site/pkg/errors"
	"go.uber.org/zap"
)

// Relay delivers a validated form. One call sends at most one mail.
type Relay interface {
	Relay(ctx context.Context, form Form) error
}

type Sender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// MailRelay sends the form in-process through the SMTP mailer.
type MailRelay struct {
	sender Sender
}

func NewMailRelay(sender Sender) *MailRelay {
	return &MailRelay{sender: sender}
}

func (r *MailRelay) Relay(ctx context.Context, form Form) error {
	return r.sender.Send(ctx, mail.Message{
		Name:    form.Name,
		Email:   form.Email,
		Subject: form.Subject,
		Text:    form.Message,
	})
}

// HTTPRelay posts the form to a remote relay endpoint that answers 200 {} or
// 500 {"error": "..."}.
type HTTPRelay struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPRelay(url string, logger *zap.Logger) *HTTPRelay {
	return &HTTPRelay{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type relayResponse struct {
	Error string `json:"error,omitempty"`
}

func (r *HTTPRelay) Relay(ctx context.Context, form Form) error {
	jsonData, err := json.Marshal(form)
	if err != nil {
		return errors.NewAPIError("failed to marshal request", 400, map[string]any{
			"url": r.url,
		}).WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(jsonData))
	if err != nil {
		return errors.NewAPIError("failed to create request", 500, map[string]any{
			"url": r.url,
		}).WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Error("Mail relay unreachable", zap.String("url", r.url), zap.Error(err))
		return errors.NewAPIError("request failed", 500, map[string]any{
			"url": r.url,
		}).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		message := fmt.Sprintf("Mail relay error: %s", resp.Status)

		var body relayResponse
		if json.Unmarshal(bodyBytes, &body) == nil && body.Error != "" {
			message = body.Error
		}

		r.logger.Warn("Mail relay rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("error", message),
		)
		return errors.NewAPIError(message, resp.StatusCode, map[string]any{
			"url": r.url,
		})
	}

	return nil
}
