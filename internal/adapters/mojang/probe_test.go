package mojang

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/services/dropwatch/domain"
)

type srvClient struct{ c *http.Client }

func (s srvClient) ID() string                                   { return "test" }
func (s srvClient) Do(req *http.Request) (*http.Response, error) { return s.c.Do(req) }

func newTestProbe(t *testing.T, h http.HandlerFunc) (*Probe, domain.Client) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	p := NewProbe(ProbeOptions{BaseURLs: []string{srv.URL}, Paths: []string{"/profiles/minecraft"}})
	p.now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }
	return p, srvClient{c: srv.Client()}
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestProbeRequestShape(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	p, c := newTestProbe(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/profiles/minecraft" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		var names []string
		if err := json.NewDecoder(r.Body).Decode(&names); err != nil || len(names) != 2 {
			t.Errorf("body = %v err %v", names, err)
		}
		reply(http.StatusOK, `[{"id":"069a79f444e94726a5befca90e38aaf5","name":"Notch"}]`)(w, r)
	})

	res := p.Probe(context.Background(), c, []string{"notch", "Ghost"})
	if hits.Load() != 1 {
		t.Fatalf("hits = %d", hits.Load())
	}
	if res.Outcome != domain.OutcomeResolved {
		t.Fatalf("outcome = %v err %v", res.Outcome, res.Err)
	}
	if len(res.Observations) != 2 {
		t.Fatalf("observations = %+v", res.Observations)
	}
	if res.Observations[0].Identity != "069a79f444e94726a5befca90e38aaf5" {
		t.Fatalf("case-insensitive match failed: %+v", res.Observations[0])
	}
	if res.Observations[1].Handle != "Ghost" || res.Observations[1].Identity != "" {
		t.Fatalf("missing name should be absent: %+v", res.Observations[1])
	}
	if !res.At.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("At = %v", res.At)
	}
}

func TestProbeClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		h       http.HandlerFunc
		want    domain.Outcome
		code    perr.ErrorCode
		wantErr bool
	}{
		{"empty", reply(http.StatusOK, `[]`), domain.OutcomeEmpty, perr.ErrorCodeEmpty, true},
		{"rate limited", reply(http.StatusTooManyRequests, ``), domain.OutcomeRateLimited, perr.ErrorCodeTooManyRequests, true},
		{"forbidden", reply(http.StatusForbidden, ``), domain.OutcomeForbidden, perr.ErrorCodeForbidden, true},
		{"bad request", reply(http.StatusBadRequest, `{}`), domain.OutcomeOther, perr.ErrorCodeUnknown, true},
		{"server error", reply(http.StatusBadGateway, ``), domain.OutcomeOther, perr.ErrorCodeUnknown, true},
		{"malformed", reply(http.StatusOK, `{"nope":`), domain.OutcomeOther, perr.ErrorCodeJSON, true},
		{"bad id", reply(http.StatusOK, `[{"id":"not-a-uuid","name":"x"}]`), domain.OutcomeOther, perr.ErrorCodeJSON, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p, c := newTestProbe(t, tc.h)
			res := p.Probe(context.Background(), c, []string{"x"})
			if res.Outcome != tc.want {
				t.Fatalf("outcome = %v want %v", res.Outcome, tc.want)
			}
			if tc.wantErr && !perr.IsCode(res.Err, tc.code) {
				t.Fatalf("err code = %v want %v (%v)", perr.CodeOf(res.Err), tc.code, res.Err)
			}
			if len(res.Observations) != 0 {
				t.Fatalf("non-resolved result carried observations")
			}
		})
	}
}

func TestProbeTimeoutIsOther(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	p, c := newTestProbe(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	res := p.Probe(ctx, c, []string{"x"})
	if res.Outcome != domain.OutcomeOther {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	if !perr.IsCode(res.Err, perr.ErrorCodeUnavailable) {
		t.Fatalf("code = %v", perr.CodeOf(res.Err))
	}
}
