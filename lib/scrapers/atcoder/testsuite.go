package atcoder

import (
	"encoding/json"
	"time"
)

type SuiteType string

const (
	SuiteSimple        SuiteType = "simple"
	SuiteInteractive   SuiteType = "interactive"
	SuiteUnsubmittable SuiteType = "unsubmittable"
)

// Sample is one scraped input/output pair. Both sides always end with
// exactly one trailing newline.
type Sample struct {
	Input  string `json:"in"`
	Output string `json:"out"`
}

// TestSuite is what a task page boils down to: the judge's time limit
// plus the sample cases, or the fact that neither applies.
type TestSuite struct {
	Type      SuiteType
	Timelimit time.Duration
	Samples   []Sample
}

func SimpleSuite(timelimit time.Duration, samples []Sample) TestSuite {
	return TestSuite{Type: SuiteSimple, Timelimit: timelimit, Samples: samples}
}

func InteractiveSuite(timelimit time.Duration) TestSuite {
	return TestSuite{Type: SuiteInteractive, Timelimit: timelimit}
}

func UnsubmittableSuite() TestSuite {
	return TestSuite{Type: SuiteUnsubmittable}
}

type suiteJSON struct {
	Type      SuiteType `json:"type"`
	Timelimit string    `json:"timelimit,omitempty"`
	Samples   []Sample  `json:"cases,omitempty"`
}

func (s TestSuite) MarshalJSON() ([]byte, error) {
	out := suiteJSON{Type: s.Type, Samples: s.Samples}
	if s.Timelimit > 0 {
		out.Timelimit = s.Timelimit.String()
	}
	return json.Marshal(out)
}

func (s *TestSuite) UnmarshalJSON(data []byte) error {
	var raw suiteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Type = raw.Type
	s.Samples = raw.Samples
	s.Timelimit = 0
	if raw.Timelimit != "" {
		timelimit, err := time.ParseDuration(raw.Timelimit)
		if err != nil {
			return err
		}
		s.Timelimit = timelimit
	}
	return nil
}
