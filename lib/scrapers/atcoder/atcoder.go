// Package atcoder drives a logged-in AtCoder session: registering for
// contests, downloading sample suites, restoring submitted sources and
// submitting new ones.
package atcoder

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"contest-assist/lib/session"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/atcoder")

// CredentialProvider supplies the username/password pair for a login
// attempt. Static providers are asked once and a rejection is final;
// non-static (interactive) providers are re-asked until a pair works.
type CredentialProvider interface {
	Credentials(ctx context.Context) (username, password string, err error)
	Static() bool
}

type StaticCredentials struct {
	Username string
	Password string
}

func (c StaticCredentials) Credentials(context.Context) (string, string, error) {
	return c.Username, c.Password, nil
}

func (StaticCredentials) Static() bool { return true }

// PromptFunc adapts an interactive prompt to CredentialProvider.
type PromptFunc func(ctx context.Context) (username, password string, err error)

func (f PromptFunc) Credentials(ctx context.Context) (string, string, error) {
	return f(ctx)
}

func (PromptFunc) Static() bool { return false }

type Client struct {
	session *session.Session
	creds   CredentialProvider
}

type ClientOptions struct {
	Session     *session.Session
	Credentials CredentialProvider
}

func NewClient(opts ClientOptions) *Client {
	return &Client{
		session: opts.Session,
		creds:   opts.Credentials,
	}
}

func (c *Client) getHTML(ctx context.Context, path string, opts ...session.RequestOption) (*goquery.Document, error) {
	res, err := c.session.Get(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return res.HTML()
}

// Login makes sure the session's cookies identify a logged-in user.
func (c *Client) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	err := c.loginIfNot(ctx, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
	}
	return err
}

func (c *Client) loginIfNot(ctx context.Context, announceAlreadyLoggedIn bool) error {
	if c.session.HasCookies() {
		res, err := c.session.Get(ctx, "/settings", session.Accept(200, 302))
		if err != nil {
			return err
		}
		if res.StatusCode() == 200 {
			if announceAlreadyLoggedIn {
				slog.InfoContext(ctx, "already logged in")
			}
			return nil
		}
	}

	for {
		ok, err := c.tryLogin(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		slog.WarnContext(ctx, "login failed, try again")
		if err := c.session.ClearCookies(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// tryLogin runs one login round trip. The /settings probe tells login
// success apart from failure: it stays on 200 for a logged-in user and
// redirects anonymous ones.
func (c *Client) tryLogin(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:tryLogin")
	defer span.End()

	doc, err := c.getHTML(ctx, "/login")
	if err != nil {
		return false, err
	}
	token, err := extractCSRFToken(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "no csrf token on the login page")
		return false, err
	}

	username, password, err := c.creds.Credentials(ctx)
	if err != nil {
		return false, err
	}

	_, err = c.session.PostForm(ctx, "/login", map[string]string{
		"username":   username,
		"password":   password,
		"csrf_token": token,
	})
	if err != nil {
		return false, err
	}

	res, err := c.session.Get(ctx, "/settings", session.Accept(200, 302))
	if err != nil {
		return false, err
	}
	if res.StatusCode() == 200 {
		slog.InfoContext(ctx, "logged in")
		return true, nil
	}
	if c.creds.Static() {
		return false, ErrLoginRejected
	}
	return false, nil
}

// Participate registers for a contest regardless of its phase.
func (c *Client) Participate(ctx context.Context, contest Contest) error {
	ctx, span := tracer.Start(ctx, "client:Participate")
	defer span.End()

	err := c.registerIfActiveOrExplicit(ctx, contest, true)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "participation failed")
	}
	return err
}

func (c *Client) registerIfActiveOrExplicit(ctx context.Context, contest Contest, explicit bool) error {
	res, err := c.session.Get(ctx, contest.TopURL(), session.Accept(200, 302))
	if err != nil {
		return err
	}
	if res.StatusCode() == 302 {
		return &ContestNotFoundError{Contest: contest.String()}
	}
	page, err := res.HTML()
	if err != nil {
		return err
	}
	duration, err := extractContestDuration(page)
	if err != nil {
		return err
	}
	status := duration.StatusAt(time.Now(), contest.String())
	if !explicit {
		if err := status.RequireBegun(); err != nil {
			return err
		}
	}
	if explicit || contest == Practice() || status.Active() {
		if err := c.loginIfNot(ctx, false); err != nil {
			return err
		}
		doc, err := c.getHTML(ctx, contest.TopURL())
		if err != nil {
			return err
		}
		token, err := extractCSRFToken(doc)
		if err != nil {
			return err
		}
		_, err = c.session.PostForm(ctx, contest.RegisterURL(), map[string]string{
			"csrf_token": token,
		})
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "registered", "contest", contest.String())
	}
	return nil
}

// fetchTasksPage gets the contest's tasks page, registering on the fly
// when the site redirects or 404s unregistered visitors.
func (c *Client) fetchTasksPage(ctx context.Context, contest Contest) (*goquery.Document, error) {
	res, err := c.session.Get(ctx, contest.TasksURL(), session.Accept(200, 302, 404))
	if err != nil {
		return nil, err
	}
	if res.StatusCode() == 200 {
		return res.HTML()
	}
	if err := c.registerIfActiveOrExplicit(ctx, contest, false); err != nil {
		return nil, err
	}
	return c.getHTML(ctx, contest.TasksURL())
}

// Languages lists the languages the contest's submit form offers.
func (c *Client) Languages(ctx context.Context, contest Contest) ([]Language, error) {
	ctx, span := tracer.Start(ctx, "client:Languages")
	defer span.End()

	languages, err := c.languages(ctx, contest)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing languages failed")
	}
	return languages, err
}

func (c *Client) languages(ctx context.Context, contest Contest) ([]Language, error) {
	if err := c.loginIfNot(ctx, false); err != nil {
		return nil, err
	}
	doc, err := c.getHTML(ctx, contest.SubmitURL())
	if err != nil {
		return nil, err
	}
	return extractLanguages(doc)
}

func requested(problems []string, name string) bool {
	if len(problems) == 0 {
		return true
	}
	for _, problem := range problems {
		if problem == name {
			return true
		}
	}
	return false
}

// closestName suggests the candidate most similar to name, or ""
// when nothing comes close.
func closestName(name string, candidates []string) string {
	best := ""
	bestScore := 0.5
	for _, candidate := range candidates {
		score := matchr.JaroWinkler(strings.ToLower(name), strings.ToLower(candidate), false)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best
}

// MissingProblem is a requested problem the contest does not have.
type MissingProblem struct {
	Name    string
	Closest string
}

func missingProblems(problems []string, found map[string]bool, candidates []string) []MissingProblem {
	var missing []MissingProblem
	for _, name := range problems {
		if found[name] {
			continue
		}
		missing = append(missing, MissingProblem{
			Name:    name,
			Closest: closestName(name, candidates),
		})
	}
	return missing
}
