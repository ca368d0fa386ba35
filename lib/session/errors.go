package session

import (
	"errors"
	"fmt"
)

// ErrRobotsDisallowed is returned before any request is sent when the
// target host's robots.txt excludes the requested path.
var ErrRobotsDisallowed = errors.New("url is disallowed by robots.txt")

// UnexpectedStatusError is returned when a response comes back with a
// status code outside the set the caller declared acceptable. The
// response's cookies have already been saved by the time this is
// returned.
type UnexpectedStatusError struct {
	URL      string
	Status   int
	Expected []int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf(
		"unexpected status %d from %s (expected one of %v)",
		e.Status, e.URL, e.Expected,
	)
}
