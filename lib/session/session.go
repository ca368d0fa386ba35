// Package session is the transport every scraper request goes
// through: it resolves paths against a base url, enforces robots.txt,
// validates response statuses against an expected set, and keeps the
// cookie store durable after every exchange.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"contest-assist/lib/cookiestore"
	"contest-assist/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/browser"
	"github.com/temoto/robotstxt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("session")

const defaultUserAgent = "contest-assist/0.1"

// robotsCacheSize bounds the per-host ruleset cache. A session rarely
// talks to more than one host.
const robotsCacheSize = 16

type Options struct {
	// BaseURL, when set, gives "/path" requests a scheme and host,
	// e.g. "https://atcoder.jp".
	BaseURL string
	// Store persists cookies across invocations. Optional: without a
	// store the session is stateless.
	Store *cookiestore.Store
	// UserAgent is sent with every request and matched against
	// robots.txt groups.
	UserAgent string
	Timeout   time.Duration
	// Transport overrides the round tripper, bypassing the cloudflare
	// wrapper. Tests use this to stub the network.
	Transport http.RoundTripper
}

// Session owns one resty client and, optionally, one locked cookie
// store. Workflows run their requests sequentially over a single
// session; the store and robots cache are still guarded so a stray
// concurrent call cannot corrupt them.
type Session struct {
	http      *resty.Client
	base      *url.URL
	store     *cookiestore.Store
	userAgent string

	robotsMu sync.Mutex
	robots   *lru.Cache[string, *robotstxt.RobotsData]
}

func New(opts Options) (*Session, error) {
	var base *url.URL
	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		if !u.IsAbs() || u.Host == "" {
			return nil, fmt.Errorf("base url must be absolute: %q", opts.BaseURL)
		}
		base = u
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	} else {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(timeout)
	// 3xx responses must come back to the caller with a nil error so
	// the acceptable-status contract can see them.
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	telemetry.InstrumentResty(client, "session/http")

	robots, err := lru.New[string, *robotstxt.RobotsData](robotsCacheSize)
	if err != nil {
		return nil, err
	}

	return &Session{
		http:      client,
		base:      base,
		store:     opts.Store,
		userAgent: userAgent,
		robots:    robots,
	}, nil
}

// Resolve turns a request target into an absolute url. Targets
// starting with "/" resolve against the base url; anything else must
// already be absolute.
func (s *Session) Resolve(raw string) (*url.URL, error) {
	if strings.HasPrefix(raw, "/") {
		if s.base == nil {
			return nil, fmt.Errorf("resolve %q: no base url configured", raw)
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", raw, err)
		}
		return s.base.ResolveReference(ref), nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", raw, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("resolve %q: not an absolute url", raw)
	}
	return u, nil
}

type requestConfig struct {
	accept    []int
	acceptSet bool
}

type RequestOption func(*requestConfig)

// Accept declares which response statuses the caller expects; anything
// else fails with UnexpectedStatusError. Without this option a GET
// expects 200 and a POST expects 302. Accept with no arguments accepts
// every status.
func Accept(statuses ...int) RequestOption {
	return func(cfg *requestConfig) {
		cfg.accept = statuses
		cfg.acceptSet = true
	}
}

func (cfg requestConfig) validate(method string, status int, u *url.URL) error {
	accept := cfg.accept
	if !cfg.acceptSet {
		if method == http.MethodPost {
			accept = []int{http.StatusFound}
		} else {
			accept = []int{http.StatusOK}
		}
	}
	if len(accept) == 0 || slices.Contains(accept, status) {
		return nil
	}
	return &UnexpectedStatusError{URL: u.String(), Status: status, Expected: accept}
}

// Get requests url, which may be a path under the base url.
func (s *Session) Get(ctx context.Context, url string, opts ...RequestOption) (*Response, error) {
	return s.do(ctx, http.MethodGet, url, nil, opts)
}

// PostForm sends form urlencoded in the request body.
func (s *Session) PostForm(ctx context.Context, url string, form map[string]string, opts ...RequestOption) (*Response, error) {
	return s.do(ctx, http.MethodPost, url, form, opts)
}

func (s *Session) do(ctx context.Context, method, rawURL string, form map[string]string, opts []RequestOption) (*Response, error) {
	var cfg requestConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	u, err := s.Resolve(rawURL)
	if err != nil {
		return nil, err
	}
	if err := s.checkRobots(ctx, u); err != nil {
		return nil, err
	}
	return s.send(ctx, method, u, form, cfg)
}

// send performs one exchange. Response cookies are merged into the
// store, durably, before the status is validated: a rejected status
// must not lose the session cookies that came with it.
func (s *Session) send(ctx context.Context, method string, u *url.URL, form map[string]string, cfg requestConfig) (*Response, error) {
	ctx, span := tracer.Start(ctx, "session:"+method)
	defer span.End()
	span.SetAttributes(attribute.String("url", u.String()))

	req := s.http.R().SetContext(ctx)
	if s.store != nil {
		for _, c := range s.store.Cookies(u.Hostname()) {
			req.SetCookie(c)
		}
	}
	if form != nil {
		req.SetFormData(form)
	}

	res, err := req.Execute(method, u.String())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("%s %s: %w", method, u, err)
	}

	if s.store != nil {
		if err := s.store.Merge(u.Hostname(), res.Cookies()); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to save cookies")
			return nil, err
		}
	}

	if err := cfg.validate(method, res.StatusCode(), u); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return nil, err
	}
	return &Response{raw: res, url: u}, nil
}

// HasCookies reports whether the store holds anything, which is how a
// fresh invocation tells a possibly-live session from a blank one.
func (s *Session) HasCookies() bool {
	return s.store != nil && s.store.Len() > 0
}

// ClearCookies drops every stored cookie, for retrying a failed login
// from a clean slate.
func (s *Session) ClearCookies() error {
	if s.store == nil {
		return nil
	}
	return s.store.Clear()
}

// OpenBrowser opens url in the user's browser and does not wait on it.
func (s *Session) OpenBrowser(rawURL string) error {
	u, err := s.Resolve(rawURL)
	if err != nil {
		return err
	}
	slog.Info("opening in browser", "url", u.String())
	return browser.OpenURL(u.String())
}

// Close releases the cookie store's file lock.
func (s *Session) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
