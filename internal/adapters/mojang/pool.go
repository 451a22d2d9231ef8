// Package mojang talks to the bulk profile lookup API through a pool of proxied clients
package mojang

import (
	stderrs "errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "dropwatch/internal/platform/errors"
	"dropwatch/internal/platform/logger"
	"dropwatch/internal/services/dropwatch/domain"
)

const (
	defaultPoolCap       = 10000
	defaultClientTimeout = 3 * time.Second
)

// ErrNoClients is returned when no proxy entry produced a usable client
var ErrNoClients = stderrs.New("no usable outbound clients")

// PoolOptions configures NewPool
type PoolOptions struct {
	Cap     int
	Timeout time.Duration
}

// ProxyClient is an HTTP client bound to exactly one proxy
type ProxyClient struct {
	id   string
	http *http.Client
}

// ID returns the proxy host used in logs and metrics (credentials stripped)
func (c *ProxyClient) ID() string { return c.id }

// Do sends req through the bound proxy
func (c *ProxyClient) Do(req *http.Request) (*http.Response, error) { return c.http.Do(req) }

// Pool is the immutable set of outbound clients
type Pool struct {
	clients []domain.Client
}

// NewPool builds one client per parsable endpoint, up to Cap.
// Entries that fail to parse are skipped and logged
func NewPool(endpoints []string, o PoolOptions) (*Pool, error) {
	if o.Cap <= 0 {
		o.Cap = defaultPoolCap
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultClientTimeout
	}
	log := logger.Named("pool")

	p := &Pool{clients: make([]domain.Client, 0, min(len(endpoints), o.Cap))}
	skipped := 0
	seen := make(map[string]int)
	for _, raw := range endpoints {
		if len(p.clients) >= o.Cap {
			break
		}
		u, err := ParseProxy(raw)
		if err != nil {
			skipped++
			log.Debug().Err(err).Msg("proxy entry skipped")
			continue
		}
		c := newProxyClient(u, o.Timeout)
		host := u.Host
		if n := seen[host]; n > 0 {
			c.id = fmt.Sprintf("%s#%d", host, n+1)
		}
		seen[host]++
		p.clients = append(p.clients, c)
	}
	if skipped > 0 {
		log.Warn().Int("skipped", skipped).Int("clients", len(p.clients)).Msg("some proxy entries were unusable")
	}
	if len(p.clients) == 0 {
		return nil, perr.Wrap(ErrNoClients, perr.ErrorCodeUnavailable, "build client pool")
	}
	return p, nil
}

// NewPoolOf wraps already built clients, mostly for tests and direct (unproxied) runs
func NewPoolOf(clients ...domain.Client) (*Pool, error) {
	if len(clients) == 0 {
		return nil, perr.Wrap(ErrNoClients, perr.ErrorCodeUnavailable, "build client pool")
	}
	return &Pool{clients: append([]domain.Client(nil), clients...)}, nil
}

// Len is the number of clients
func (p *Pool) Len() int { return len(p.clients) }

// At returns client i
func (p *Pool) At(i int) domain.Client { return p.clients[i] }

func newProxyClient(u *url.URL, timeout time.Duration) *ProxyClient {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.Proxy = http.ProxyURL(u)
	tr.MaxIdleConnsPerHost = 4
	return &ProxyClient{
		id:   u.Host,
		http: &http.Client{Timeout: timeout, Transport: tr},
	}
}

// ParseProxy accepts scheme://[user:pass@]host:port, bare host:port (http assumed)
// and host:port:user:pass
func ParseProxy(s string) (*url.URL, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, perr.InvalidArgf("empty proxy entry")
	}
	if !strings.Contains(s, "://") {
		parts := strings.Split(s, ":")
		switch len(parts) {
		case 2:
			s = "http://" + s
		case 4:
			s = fmt.Sprintf("http://%s:%s@%s:%s",
				url.QueryEscape(parts[2]), url.QueryEscape(parts[3]), parts[0], parts[1])
		default:
			return nil, perr.InvalidArgf("proxy entry %q: expected host:port or host:port:user:pass", redact(s))
		}
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "proxy entry %q", redact(s))
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, perr.InvalidArgf("proxy entry %q: unsupported scheme %q", redact(s), u.Scheme)
	}
	host, port, err := net.SplitHostPort(u.Host)
	if err != nil || host == "" || port == "" {
		return nil, perr.InvalidArgf("proxy entry %q: missing host or port", redact(s))
	}
	return u, nil
}

// redact drops anything that looks like credentials before logging
func redact(s string) string {
	if i := strings.LastIndex(s, "@"); i >= 0 {
		if j := strings.Index(s, "://"); j >= 0 && j < i {
			return s[:j+3] + "***@" + s[i+1:]
		}
		return "***@" + s[i+1:]
	}
	return s
}
