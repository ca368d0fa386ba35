package atcoder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BaseURL is the root every contest path below resolves against.
const BaseURL = "https://atcoder.jp"

type contestKind int

const (
	contestOther contestKind = iota
	contestPractice
	contestAPG4b
	contestABC
	contestARC
	contestAGC
	contestATC
	contestAPC
	contestChokudaiSpeedRun
)

// Contest is the canonical identity of an AtCoder contest. Values are
// comparable; two contests are the same iff their identities match.
// URL building always dispatches on the identity, never on the string
// the identity was parsed from.
type Contest struct {
	kind  contestKind
	index int
	raw   string
}

func Practice() Contest { return Contest{kind: contestPractice} }
func APG4b() Contest    { return Contest{kind: contestAPG4b} }
func ABC(n int) Contest { return Contest{kind: contestABC, index: n} }
func ARC(n int) Contest { return Contest{kind: contestARC, index: n} }
func AGC(n int) Contest { return Contest{kind: contestAGC, index: n} }
func ATC(n int) Contest { return Contest{kind: contestATC, index: n} }
func APC(n int) Contest { return Contest{kind: contestAPC, index: n} }

func ChokudaiSpeedRun(n int) Contest {
	return Contest{kind: contestChokudaiSpeedRun, index: n}
}

func OtherContest(raw string) Contest {
	return Contest{kind: contestOther, raw: raw}
}

var contestNameRegex = regexp.MustCompile(`\A\s*([a-zA-Z_]+)(\d{3})\s*\z`)

// ParseContest never fails. Strings it does not recognize become
// "other" contests carrying the verbatim input as their slug.
func ParseContest(s string) Contest {
	if groups := contestNameRegex.FindStringSubmatch(s); groups != nil {
		name := strings.ToLower(groups[1])
		number, _ := strconv.Atoi(groups[2])
		switch name {
		case "abc":
			return ABC(number)
		case "arc":
			return ARC(number)
		case "agc":
			return AGC(number)
		case "atc":
			return ATC(number)
		case "apc":
			return APC(number)
		case "chokudai_s", "chokudais":
			return ChokudaiSpeedRun(number)
		}
	}
	switch s {
	case "practice":
		return Practice()
	case "apg4b":
		return APG4b()
	}
	return OtherContest(s)
}

// Slug is the contest's URL path segment.
func (c Contest) Slug() string {
	switch c.kind {
	case contestPractice:
		return "practice"
	case contestAPG4b:
		return "apg4b"
	case contestABC:
		return fmt.Sprintf("abc%03d", c.index)
	case contestARC:
		return fmt.Sprintf("arc%03d", c.index)
	case contestAGC:
		return fmt.Sprintf("agc%03d", c.index)
	case contestATC:
		return fmt.Sprintf("atc%03d", c.index)
	case contestAPC:
		return fmt.Sprintf("apc%03d", c.index)
	case contestChokudaiSpeedRun:
		return fmt.Sprintf("chokudai_s%03d", c.index)
	}
	return c.raw
}

// String is the display name used in messages.
func (c Contest) String() string {
	switch c.kind {
	case contestPractice:
		return "practice contest"
	case contestAPG4b:
		return "AtCoder Programming Guide for beginners"
	case contestABC:
		return fmt.Sprintf("ABC%03d", c.index)
	case contestARC:
		return fmt.Sprintf("ARC%03d", c.index)
	case contestAGC:
		return fmt.Sprintf("AGC%03d", c.index)
	case contestATC:
		return fmt.Sprintf("ATC%03d", c.index)
	case contestAPC:
		return fmt.Sprintf("APC%03d", c.index)
	case contestChokudaiSpeedRun:
		return fmt.Sprintf("Chokudai SpeedRun %03d", c.index)
	}
	return c.raw
}

func (c Contest) TopURL() string {
	return "/contests/" + c.Slug()
}

func (c Contest) TasksURL() string {
	return c.TopURL() + "/tasks"
}

func (c Contest) RegisterURL() string {
	return c.TopURL() + "/register"
}

func (c Contest) SubmitURL() string {
	return c.TopURL() + "/submit"
}

func (c Contest) SubmissionsMeURL(page int) string {
	return fmt.Sprintf("%s/submissions/me?page=%d", c.TopURL(), page)
}

// PresetSuite returns a fixed test suite for the handful of contests
// whose interactive problems predate any detectable page marker.
func (c Contest) PresetSuite() (TestSuite, bool) {
	switch c {
	case ARC(19):
		return InteractiveSuite(2 * time.Second), true
	case ARC(21):
		return InteractiveSuite(4 * time.Second), true
	}
	return TestSuite{}, false
}

// ContestDuration is the contest window, both bounds in UTC.
type ContestDuration struct {
	Start time.Time
	End   time.Time
}

type Phase int

const (
	PhaseNotBegun Phase = iota
	PhaseActive
	PhaseFinished
)

// Status is the contest phase at some instant, carrying what error
// messages need.
type Status struct {
	Phase   Phase
	Contest string
	Start   time.Time
}

func (d ContestDuration) StatusAt(now time.Time, contestName string) Status {
	switch {
	case now.Before(d.Start):
		return Status{Phase: PhaseNotBegun, Contest: contestName, Start: d.Start}
	case now.After(d.End):
		return Status{Phase: PhaseFinished, Contest: contestName}
	default:
		return Status{Phase: PhaseActive, Contest: contestName}
	}
}

func (s Status) Active() bool {
	return s.Phase == PhaseActive
}

// RequireBegun fails while the contest has not started yet.
func (s Status) RequireBegun() error {
	if s.Phase == PhaseNotBegun {
		return &ContestNotBegunError{Contest: s.Contest, Start: s.Start}
	}
	return nil
}
