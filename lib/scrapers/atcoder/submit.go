package atcoder

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"contest-assist/lib/session"

	"go.opentelemetry.io/otel/codes"
)

type SubmitOptions struct {
	Contest    Contest
	Problem    string
	LanguageID string
	SourcePath string
	// Replace, when set, rewrites the code before it is submitted.
	Replace func(problem, code string) (string, error)
	// SkipChecks bypasses the contest-phase and already-accepted
	// guards.
	SkipChecks  bool
	OpenBrowser bool
}

var submitScreenNameRegex = regexp.MustCompile(`\A/contests/[a-z0-9_\-]+/tasks/([a-z0-9_]+)/?\z`)

// Submit posts a source file as a solution. During an active contest
// it refuses to duplicate an already-accepted solution; the site is
// not asked twice for something it already judged correct.
func (c *Client) Submit(ctx context.Context, opts SubmitOptions) error {
	ctx, span := tracer.Start(ctx, "client:Submit")
	defer span.End()

	err := c.submit(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit failed")
	}
	return err
}

func (c *Client) submit(ctx context.Context, opts SubmitOptions) error {
	tasksPage, err := c.fetchTasksPage(ctx, opts.Contest)
	if err != nil {
		return err
	}

	checkAccepted := false
	if !opts.SkipChecks && opts.Contest != Practice() {
		duration, err := extractContestDuration(tasksPage)
		if err != nil {
			return err
		}
		status := duration.StatusAt(time.Now(), opts.Contest.String())
		if err := status.RequireBegun(); err != nil {
			return err
		}
		checkAccepted = status.Active()
	}

	tasks, err := extractTasks(tasksPage)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if task.Name != opts.Problem {
			continue
		}
		groups := submitScreenNameRegex.FindStringSubmatch(task.URL)
		if groups == nil {
			break
		}
		screenName := groups[1]

		if checkAccepted {
			accepted, err := c.hasAcceptedSubmission(ctx, opts.Contest, screenName)
			if err != nil {
				return err
			}
			if accepted {
				return ErrAlreadyAccepted
			}
		}

		source, err := os.ReadFile(opts.SourcePath)
		if err != nil {
			return err
		}
		code := string(source)
		if opts.Replace != nil {
			code, err = opts.Replace(opts.Problem, code)
			if err != nil {
				return err
			}
		}

		taskPage, err := c.getHTML(ctx, task.URL)
		if err != nil {
			return err
		}
		token, err := extractCSRFToken(taskPage)
		if err != nil {
			return err
		}

		rejected := func(status int, location string) error {
			return &SubmissionRejectedError{
				LanguageID: opts.LanguageID,
				Size:       len(code),
				Status:     status,
				Location:   location,
			}
		}

		res, err := c.session.PostForm(ctx, opts.Contest.SubmitURL(), map[string]string{
			"data.TaskScreenName": screenName,
			"data.LanguageId":     opts.LanguageID,
			"sourceCode":          code,
			"csrf_token":          token,
		})
		if err != nil {
			var statusErr *session.UnexpectedStatusError
			if errors.As(err, &statusErr) {
				return rejected(statusErr.Status, "")
			}
			return err
		}
		location, ok := res.Location()
		if !ok {
			return rejected(res.StatusCode(), "")
		}
		if !strings.HasPrefix(location, "/contests/") || !strings.HasSuffix(location, "/submissions/me") {
			return rejected(res.StatusCode(), location)
		}

		slog.InfoContext(ctx, "submitted",
			"problem", opts.Problem, "language_id", opts.LanguageID, "bytes", len(code))
		if opts.OpenBrowser {
			return c.session.OpenBrowser(opts.Contest.SubmissionsMeURL(1))
		}
		return nil
	}

	return &NoSuchProblemError{
		Name:    opts.Problem,
		Closest: closestName(opts.Problem, taskNames(tasks)),
	}
}

func (c *Client) hasAcceptedSubmission(ctx context.Context, contest Contest, screenName string) (bool, error) {
	page, err := c.getHTML(ctx, contest.SubmissionsMeURL(1))
	if err != nil {
		return false, err
	}
	submissions, numPages, err := extractSubmissions(page)
	if err != nil {
		return false, err
	}
	if anyAccepted(submissions, screenName) {
		return true, nil
	}
	for i := 2; i <= numPages; i++ {
		page, err := c.getHTML(ctx, contest.SubmissionsMeURL(i))
		if err != nil {
			return false, err
		}
		submissions, _, err := extractSubmissions(page)
		if err != nil {
			return false, err
		}
		if anyAccepted(submissions, screenName) {
			return true, nil
		}
	}
	return false, nil
}

func anyAccepted(submissions []Submission, screenName string) bool {
	for _, submission := range submissions {
		if submission.TaskScreenName == screenName && submission.Accepted {
			return true
		}
	}
	return false
}
