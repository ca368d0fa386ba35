package atcoder

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

// SuiteSink receives every downloaded test suite. Implementations
// decide where suites end up (files, a database, both).
type SuiteSink interface {
	SaveSuite(ctx context.Context, contest Contest, task Task, suite TestSuite) error
}

type DownloadOptions struct {
	Contest Contest
	// Problems filters by display name; empty means every task.
	Problems    []string
	Sink        SuiteSink
	OpenBrowser bool
}

type DownloadedSuite struct {
	Task  Task
	Suite TestSuite
}

type DownloadResult struct {
	Suites   []DownloadedSuite
	NotFound []MissingProblem
}

// Download scrapes the test suites of a contest's tasks and hands them
// to the sink. Nothing is saved unless every requested task scraped
// cleanly.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	ctx, span := tracer.Start(ctx, "client:Download")
	defer span.End()

	result, err := c.download(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "download failed")
	}
	return result, err
}

func (c *Client) download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	tasksPage, err := c.fetchTasksPage(ctx, opts.Contest)
	if err != nil {
		return nil, err
	}
	tasks, err := extractTasks(tasksPage)
	if err != nil {
		return nil, err
	}

	var suites []DownloadedSuite
	for _, task := range tasks {
		if !requested(opts.Problems, task.Name) {
			continue
		}
		suite, ok := opts.Contest.PresetSuite()
		if !ok {
			page, err := c.getHTML(ctx, task.URL)
			if err != nil {
				return nil, err
			}
			suite, err = extractTestSuite(page)
			if err != nil {
				return nil, fmt.Errorf("task %s: %w", task.Name, err)
			}
		}
		suites = append(suites, DownloadedSuite{Task: task, Suite: suite})
	}

	found := map[string]bool{}
	for _, entry := range suites {
		if err := opts.Sink.SaveSuite(ctx, opts.Contest, entry.Task, entry.Suite); err != nil {
			return nil, err
		}
		found[entry.Task.Name] = true
	}

	notFound := missingProblems(opts.Problems, found, taskNames(tasks))
	for _, missing := range notFound {
		slog.WarnContext(ctx, "problem not found",
			"name", missing.Name, "closest", missing.Closest)
	}

	if opts.OpenBrowser {
		if err := c.session.OpenBrowser(opts.Contest.SubmissionsMeURL(1)); err != nil {
			return nil, err
		}
		for _, entry := range suites {
			if err := c.session.OpenBrowser(entry.Task.URL); err != nil {
				return nil, err
			}
		}
	}

	return &DownloadResult{Suites: suites, NotFound: notFound}, nil
}

func taskNames(tasks []Task) []string {
	names := make([]string, len(tasks))
	for i, task := range tasks {
		names[i] = task.Name
	}
	return names
}
