package atcoder

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLoginRejected means the site turned down preset credentials.
	// Interactively prompted credentials never produce it, the login
	// loop just asks again.
	ErrLoginRejected = errors.New("atcoder rejected the credentials")

	// ErrAlreadyAccepted guards against re-submitting a solved task.
	ErrAlreadyAccepted = errors.New("an accepted submission for this task already exists")
)

// ExtractError means every fallback strategy for one extraction came
// up empty. Op names what was being extracted.
type ExtractError struct {
	Op string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to extract %s", e.Op)
}

type ContestNotFoundError struct {
	Contest string
}

func (e *ContestNotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Contest)
}

type ContestNotBegunError struct {
	Contest string
	Start   time.Time
}

func (e *ContestNotBegunError) Error() string {
	return fmt.Sprintf(
		"%s will begin at %s",
		e.Contest,
		e.Start.Local().Format("2006-01-02 15:04:05 MST"),
	)
}

type NoSuchProblemError struct {
	Name    string
	Closest string
}

func (e *NoSuchProblemError) Error() string {
	if e.Closest != "" {
		return fmt.Sprintf("no such problem: %q (closest: %q)", e.Name, e.Closest)
	}
	return fmt.Sprintf("no such problem: %q", e.Name)
}

// SubmissionRejectedError reports a submit POST that did not land on
// the submissions page. Location is empty when the response carried
// none.
type SubmissionRejectedError struct {
	LanguageID string
	Size       int
	Status     int
	Location   string
}

func (e *SubmissionRejectedError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf(
			"submission rejected: language id %q, %d bytes, status %d, location %q",
			e.LanguageID, e.Size, e.Status, e.Location,
		)
	}
	return fmt.Sprintf(
		"submission rejected: language id %q, %d bytes, status %d",
		e.LanguageID, e.Size, e.Status,
	)
}
