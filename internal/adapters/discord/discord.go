// Package discord posts status messages and drop-window embeds to webhooks
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	stderrs "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/platform/logger"
	ptime "dropwatch/internal/platform/time"
	"dropwatch/internal/services/dropwatch/domain"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRPS     = 0.5
	defaultBurst   = 5

	embedColor  = 7506394
	dropContent = "||drop incoming||"
)

// Options configures the Sink. An empty URL turns that channel into log-only
type Options struct {
	StatusURL string
	DropsURL  string
	RPS       float64
	Burst     int
	Timeout   time.Duration
	Zone      *time.Location
}

// Sink delivers messages to webhooks. Failures are reported to the caller and never retried
type Sink struct {
	http *http.Client
	opts Options
	lim  *rate.Limiter
	log  logger.Logger
	now  ptime.Clock
}

// New constructs a Sink with defaults filled in
func New(o Options) *Sink {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.RPS <= 0 {
		o.RPS = defaultRPS
	}
	if o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	if o.Zone == nil {
		o.Zone = time.UTC
	}
	return &Sink{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		lim:  rate.NewLimiter(rate.Limit(o.RPS), o.Burst),
		log:  *logger.Named("discord"),
		now:  ptime.System,
	}
}

type message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds,omitempty"`
}

type embed struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Color       int     `json:"color"`
	Fields      []field `json:"fields"`
	Footer      footer  `json:"footer"`
	Timestamp   string  `json:"timestamp"`
}

type field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type footer struct {
	Text string `json:"text"`
}

// Send posts text to the status webhook
func (s *Sink) Send(ctx context.Context, text string) error {
	if s.opts.StatusURL == "" {
		s.log.Info().Str("channel", "status").Msg(text)
		return nil
	}
	return s.post(ctx, s.opts.StatusURL, message{Content: text})
}

// NotifyWindow posts an embed describing w to the drops webhook. When the
// embed is refused a short plain message reporting the status follows it
func (s *Sink) NotifyWindow(ctx context.Context, w domain.Window) error {
	if s.opts.DropsURL == "" {
		s.log.Info().Str("channel", "drops").Str("handle", w.Handle).
			Str("begin", domain.FormatInstant(w.Begin, s.opts.Zone)).
			Str("end", domain.FormatInstant(w.End, s.opts.Zone)).
			Msg("drop window")
		return nil
	}
	err := s.post(ctx, s.opts.DropsURL, message{Content: dropContent, Embeds: []embed{s.windowEmbed(w)}})
	if err == nil {
		return nil
	}
	var se *StatusError
	if stderrs.As(err, &se) {
		if ferr := s.post(ctx, s.opts.DropsURL, message{Content: fmt.Sprintf("webhook delivery failed: %d", se.Status)}); ferr != nil {
			s.log.Warn().Err(ferr).Msg("fallback notice not delivered")
		}
	}
	return err
}

func (s *Sink) windowEmbed(w domain.Window) embed {
	return embed{
		Title: w.Handle,
		Description: fmt.Sprintf("%s\n`%s`\n→\n%s\n`%s`",
			domain.FormatInstant(w.Begin, s.opts.Zone), unixMicros(w.Begin),
			domain.FormatInstant(w.End, s.opts.Zone), unixMicros(w.End)),
		Color:     embedColor,
		Fields:    []field{{Name: "Duration", Value: Width(w.Duration()), Inline: true}},
		Footer:    footer{Text: "be careful"},
		Timestamp: s.now().Format(time.RFC3339),
	}
}

// Width renders d as total minutes, seconds and milliseconds
func Width(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%02dm %02ds %03dms", ms/60000, ms%60000/1000, ms%1000)
}

func unixMicros(t time.Time) string {
	us := t.UnixMicro()
	return fmt.Sprintf("%d.%06d", us/1_000_000, us%1_000_000)
}

// StatusError is a non-2xx webhook reply
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook status %d: %s", e.Status, e.Body)
}

func (s *Sink) post(ctx context.Context, url string, m message) error {
	if err := s.lim.Wait(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "webhook pacing")
	}
	body, err := json.Marshal(m)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode webhook payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "new webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "webhook post")
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		return nil
	}
	tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	se := &StatusError{Status: resp.StatusCode, Body: string(tail)}
	code := perr.ErrorCodeUnknown
	if resp.StatusCode == http.StatusTooManyRequests {
		code = perr.ErrorCodeTooManyRequests
	}
	return perr.Wrap(se, code, "webhook rejected")
}
