package mojang

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"

	"github.com/google/uuid"

	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/platform/logger"
	ptime "dropwatch/internal/platform/time"
	"dropwatch/internal/services/dropwatch/domain"
)

const maxBody = 1 << 20

// ProbeOptions configures the request shape; empty lists use the defaults
type ProbeOptions struct {
	BaseURLs   []string
	Paths      []string
	UserAgents []string
}

// Probe performs one bulk lookup and classifies the reply
type Probe struct {
	opts ProbeOptions
	log  logger.Logger
	now  ptime.Clock
	pick func(n int) int
}

// NewProbe constructs a Probe with defaults filled in
func NewProbe(o ProbeOptions) *Probe {
	if len(o.BaseURLs) == 0 {
		o.BaseURLs = DefaultBaseURLs
	}
	if len(o.Paths) == 0 {
		o.Paths = DefaultPaths
	}
	if len(o.UserAgents) == 0 {
		o.UserAgents = DefaultUserAgents
	}
	return &Probe{
		opts: o,
		log:  *logger.Named("probe"),
		now:  ptime.System,
		pick: rand.IntN,
	}
}

// Probe sends batch through c. It never returns an error directly; the
// outcome and any cause travel on the result
func (p *Probe) Probe(ctx context.Context, c domain.Client, batch []string) domain.ProbeResult {
	body, err := json.Marshal(batch)
	if err != nil {
		return other(0, perr.Wrap(err, perr.ErrorCodeJSON, "encode batch"))
	}
	url := p.opts.BaseURLs[p.pick(len(p.opts.BaseURLs))] + p.opts.Paths[p.pick(len(p.opts.Paths))]
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return other(0, perr.Wrapf(err, perr.ErrorCodeUnknown, "new request %s", url))
	}
	req.Header.Set("User-Agent", p.opts.UserAgents[p.pick(len(p.opts.UserAgents))])
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return other(0, perr.Wrapf(err, perr.ErrorCodeUnavailable, "lookup via %s", c.ID()))
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	switch resp.StatusCode {
	case http.StatusOK:
		return p.classifyOK(resp.Body, batch)
	case http.StatusTooManyRequests:
		return domain.ProbeResult{
			Outcome: domain.OutcomeRateLimited,
			Status:  resp.StatusCode,
			Err:     perr.RateLimitedf("lookup via %s rate limited", c.ID()),
		}
	case http.StatusForbidden:
		return domain.ProbeResult{
			Outcome: domain.OutcomeForbidden,
			Status:  resp.StatusCode,
			Err:     perr.Forbiddenf("lookup via %s forbidden", c.ID()),
		}
	case http.StatusBadRequest:
		p.log.Warn().Strs("batch", batch).Msg("lookup rejected batch")
	default:
		p.log.Debug().Int("status", resp.StatusCode).Str("client", c.ID()).Msg("unexpected lookup status")
	}
	return other(resp.StatusCode, perr.Newf(perr.ErrorCodeUnknown, "unexpected status %d", resp.StatusCode))
}

// classifyOK decodes a 200 body. The response time is taken once and shared by every observation
func (p *Probe) classifyOK(r io.Reader, batch []string) domain.ProbeResult {
	at := p.now()
	var profiles []Profile
	if err := json.NewDecoder(io.LimitReader(r, maxBody)).Decode(&profiles); err != nil {
		return other(http.StatusOK, perr.Wrap(err, perr.ErrorCodeJSON, "decode lookup body"))
	}
	if len(profiles) == 0 {
		return domain.ProbeResult{
			Outcome: domain.OutcomeEmpty,
			Status:  http.StatusOK,
			Err:     perr.Emptyf("lookup resolved nothing"),
		}
	}

	ids := make(map[string]string, len(profiles))
	for _, pr := range profiles {
		if _, err := uuid.Parse(pr.ID); err != nil {
			return other(http.StatusOK, perr.Wrapf(err, perr.ErrorCodeJSON, "profile %q has malformed id", pr.Name))
		}
		ids[domain.NormalizeHandle(pr.Name)] = pr.ID
	}

	obs := make([]domain.Observation, len(batch))
	for i, name := range batch {
		obs[i] = domain.Observation{Handle: name, Identity: ids[domain.NormalizeHandle(name)]}
	}
	return domain.ProbeResult{
		Outcome:      domain.OutcomeResolved,
		Status:       http.StatusOK,
		At:           at,
		Observations: obs,
	}
}

func other(status int, err error) domain.ProbeResult {
	return domain.ProbeResult{Outcome: domain.OutcomeOther, Status: status, Err: err}
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
