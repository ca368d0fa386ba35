package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/temoto/robotstxt"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxRobotsRedirects = 10

var robotsAccept = []int{
	http.StatusOK,
	http.StatusMovedPermanently,
	http.StatusFound,
	http.StatusNotFound,
}

// checkRobots enforces the robots exclusion rules of u's host. The
// ruleset is fetched lazily, at most once per host, and kept for the
// lifetime of the session. Requests for robots.txt itself bypass the
// gate so the fetch cannot recurse.
func (s *Session) checkRobots(ctx context.Context, u *url.URL) error {
	if u.Path == "/robots.txt" {
		return nil
	}

	s.robotsMu.Lock()
	data, ok := s.robots.Get(u.Host)
	if !ok {
		var err error
		data, err = s.fetchRobots(ctx, u)
		if err != nil {
			s.robotsMu.Unlock()
			return err
		}
		s.robots.Add(u.Host, data)
	}
	s.robotsMu.Unlock()

	if !data.FindGroup(s.userAgent).Test(u.Path) {
		return fmt.Errorf("%w: %s", ErrRobotsDisallowed, u)
	}
	return nil
}

// fetchRobots retrieves and parses a host's robots.txt, following
// permanent and temporary redirects itself. A 404 parses into a
// ruleset with no restrictions.
func (s *Session) fetchRobots(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	ctx, span := tracer.Start(ctx, "fetchRobots")
	defer span.End()
	span.SetAttributes(attribute.String("host", u.Host))

	target := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}
	cfg := requestConfig{accept: robotsAccept, acceptSet: true}

	res, err := s.send(ctx, http.MethodGet, target, nil, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch robots.txt")
		return nil, err
	}
	for hops := 0; res.StatusCode() == http.StatusMovedPermanently ||
		res.StatusCode() == http.StatusFound; hops++ {
		if hops >= maxRobotsRedirects {
			err := fmt.Errorf("fetch %s: too many redirects", target)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		location, ok := res.Location()
		if !ok {
			err := fmt.Errorf("fetch %s: redirect without a location", target)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		next, err := res.URL().Parse(location)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "bad redirect location")
			return nil, fmt.Errorf("fetch %s: bad redirect location %q: %w", target, location, err)
		}
		res, err = s.send(ctx, http.MethodGet, next, nil, cfg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch robots.txt")
			return nil, err
		}
	}

	data, err := robotstxt.FromStatusAndBytes(res.StatusCode(), res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse robots.txt")
		return nil, fmt.Errorf("parse %s: %w", target, err)
	}
	return data, nil
}
