package atcoder

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
)

// SourceSink maps a restored submission to a local destination.
// PathFor returning false means no destination is configured for that
// language, which skips the submission with a warning instead of
// failing the restore.
type SourceSink interface {
	PathFor(languageID, taskName string) (string, bool)
	WriteSource(path string, code []byte) error
}

type RestoreOptions struct {
	Contest Contest
	// Problems filters by task name; empty means every task.
	Problems []string
	Sink     SourceSink
	// Replace, when set, rewrites the code before it is written.
	Replace func(languageID, taskName, code string) (string, error)
}

type RestoredSource struct {
	TaskName   string
	Language   string
	LanguageID string
	Path       string
}

type RestoreResult struct {
	Saved    []RestoredSource
	NotFound []MissingProblem
}

// Restore downloads the user's submitted source codes. Submissions are
// listed newest first, so keeping the first (task, language) pair seen
// keeps the most recent code.
func (c *Client) Restore(ctx context.Context, opts RestoreOptions) (*RestoreResult, error) {
	ctx, span := tracer.Start(ctx, "client:Restore")
	defer span.End()

	result, err := c.restore(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "restore failed")
	}
	return result, err
}

func (c *Client) restore(ctx context.Context, opts RestoreOptions) (*RestoreResult, error) {
	firstPage, err := c.getHTML(ctx, opts.Contest.SubmissionsMeURL(1))
	if err != nil {
		return nil, err
	}
	submissions, numPages, err := extractSubmissions(firstPage)
	if err != nil {
		return nil, err
	}

	type dedupKey struct {
		task     string
		language string
	}
	seen := map[dedupKey]bool{}
	var entries []Submission
	collect := func(submissions []Submission) {
		for _, submission := range submissions {
			key := dedupKey{submission.TaskName, submission.Language}
			if seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, submission)
		}
	}

	collect(submissions)
	for page := 2; page <= numPages; page++ {
		doc, err := c.getHTML(ctx, opts.Contest.SubmissionsMeURL(page))
		if err != nil {
			return nil, err
		}
		submissions, _, err := extractSubmissions(doc)
		if err != nil {
			return nil, err
		}
		collect(submissions)
	}

	var saved []RestoredSource
	found := map[string]bool{}
	for _, entry := range entries {
		if !requested(opts.Problems, entry.TaskName) {
			continue
		}
		detail, err := c.getHTML(ctx, entry.DetailURL)
		if err != nil {
			return nil, err
		}
		code, err := extractSubmittedCode(detail)
		if err != nil {
			return nil, err
		}
		// the language selector on page 1 covers the whole contest
		languageID, err := extractLanguageID(firstPage, entry.Language)
		if err != nil {
			return nil, err
		}

		path, ok := opts.Sink.PathFor(languageID, entry.TaskName)
		if !ok {
			slog.WarnContext(ctx, "no source path configured, ignoring",
				"language", entry.Language, "language_id", languageID)
			continue
		}
		if opts.Replace != nil {
			code, err = opts.Replace(languageID, entry.TaskName, code)
			if err != nil {
				return nil, err
			}
		}
		if err := opts.Sink.WriteSource(path, []byte(code)); err != nil {
			return nil, err
		}

		saved = append(saved, RestoredSource{
			TaskName:   entry.TaskName,
			Language:   entry.Language,
			LanguageID: languageID,
			Path:       path,
		})
		found[entry.TaskName] = true
	}

	candidates := make([]string, 0, len(entries))
	for _, entry := range entries {
		candidates = append(candidates, entry.TaskName)
	}
	notFound := missingProblems(opts.Problems, found, candidates)
	for _, missing := range notFound {
		slog.WarnContext(ctx, "problem not found",
			"name", missing.Name, "closest", missing.Closest)
	}
	slog.InfoContext(ctx, "restored submitted sources", "count", len(saved))

	return &RestoreResult{Saved: saved, NotFound: notFound}, nil
}
