// Package notify delivers push notifications through Pushover.
//
// Delivery is asynchronous and best-effort: a failed notification is
// logged and never surfaces to the chat turn that triggered it.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/emissary-ai/emissary/internal/errors"
)

// DefaultURL is the Pushover message endpoint.
const DefaultURL = "https://api.pushover.net/1/messages.json"

// Config configures the Pushover client.
type Config struct {
	URL     string
	User    string
	Token   string
	Timeout time.Duration

	// Retry controls redelivery attempts. Nil uses the slow policy:
	// notifications are a side channel and can afford long backoffs.
	Retry *apperrors.Policy
}

// Pushover sends opaque text payloads to the Pushover API.
type Pushover struct {
	cfg    Config
	client *http.Client
	log    *logrus.Logger
	wg     sync.WaitGroup
}

// New creates a Pushover client.
func New(cfg Config, log *logrus.Logger) *Pushover {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retry == nil {
		cfg.Retry = apperrors.SlowPolicy()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pushover{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// Configured reports whether credentials are present.
func (p *Pushover) Configured() bool {
	return p.cfg.User != "" && p.cfg.Token != ""
}

// Push delivers one message in the background. The delivery outlives the
// caller's context: the chat turn must not wait on, or fail from, the
// side channel.
func (p *Pushover) Push(_ context.Context, message string) {
	if !p.Configured() {
		p.log.Debug("pushover not configured, dropping notification")
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		err := apperrors.Do(ctx, p.cfg.Retry, func() error {
			return p.send(ctx, message)
		})
		if err != nil {
			p.log.WithError(err).Warn("notification delivery failed")
		}
	}()
}

// Flush blocks until all in-flight deliveries finish. Used on shutdown.
func (p *Pushover) Flush() {
	p.wg.Wait()
}

func (p *Pushover) send(ctx context.Context, message string) error {
	form := url.Values{
		"user":    {p.cfg.User},
		"token":   {p.cfg.Token},
		"message": {message},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeNotifyFailed,
			"building pushover request", apperrors.CategoryPermanent)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeNotifyFailed,
			"pushover request failed", apperrors.CategoryTemporary)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		// 4xx means bad credentials or payload, retrying won't help.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return apperrors.Permanent(apperrors.CodeNotifyFailed,
				fmt.Sprintf("pushover rejected message (status %d)", resp.StatusCode))
		}
		return apperrors.Temporary(apperrors.CodeNotifyFailed,
			fmt.Sprintf("pushover error (status %d)", resp.StatusCode))
	}

	return nil
}
