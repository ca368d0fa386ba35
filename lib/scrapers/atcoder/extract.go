package atcoder

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"contest-assist/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Task is one row of a contest's tasks page.
type Task struct {
	Name string
	URL  string
}

// Submission is one row of the "my submissions" listing.
type Submission struct {
	TaskName       string
	TaskScreenName string
	Language       string
	DetailURL      string
	Accepted       bool
}

func extractCSRFToken(doc *goquery.Document) (string, error) {
	token := ""
	doc.Find(`[name="csrf_token"]`).EachWithBreak(func(_ int, input *goquery.Selection) bool {
		value, ok := input.Attr("value")
		if !ok {
			return true
		}
		token = value
		return false
	})
	if token == "" {
		return "", &ExtractError{Op: "csrf token"}
	}
	return token, nil
}

func extractTasks(doc *goquery.Document) ([]Task, error) {
	var tasks []Task
	failed := false
	doc.Find("#main-container > div.row > div.col-sm-12 > div.panel > table.table > tbody > tr").
		EachWithBreak(func(_ int, row *goquery.Selection) bool {
			anchor := row.Find("td.text-center > a").First()
			if anchor.Length() == 0 {
				failed = true
				return false
			}
			href, ok := anchor.Attr("href")
			if !ok {
				failed = true
				return false
			}
			name, ok := htmlutil.FirstText(anchor.Get(0))
			if !ok {
				failed = true
				return false
			}
			tasks = append(tasks, Task{Name: name, URL: href})
			return true
		})
	if failed || len(tasks) == 0 {
		return nil, &ExtractError{Op: "task list"}
	}
	return tasks, nil
}

// extractTestSuite turns a task page into a test suite. A zero
// timelimit marks the task unsubmittable no matter what else the page
// contains.
func extractTestSuite(doc *goquery.Document) (TestSuite, error) {
	timelimit, err := extractTimelimit(doc)
	if err != nil {
		return TestSuite{}, err
	}
	if timelimit == 0 {
		return UnsubmittableSuite(), nil
	}
	samples, interactive, ok := extractSamples(doc)
	if !ok {
		return TestSuite{}, &ExtractError{Op: "sample cases"}
	}
	if interactive {
		return InteractiveSuite(timelimit), nil
	}
	return SimpleSuite(timelimit, samples), nil
}

var timelimitRegex = regexp.MustCompile(`\A\D*([0-9]{1,9})(\.[0-9]{1,9})?\s*(m?)s(?:ec)?`)

func extractTimelimit(doc *goquery.Document) (time.Duration, error) {
	text := ""
	found := false
	doc.Find("#main-container > div.row > div.col-sm-12 > p").
		EachWithBreak(func(_ int, p *goquery.Selection) bool {
			if t, ok := htmlutil.FirstChildText(p.Get(0)); ok {
				text = t
				found = true
				return false
			}
			return true
		})
	if !found {
		return 0, &ExtractError{Op: "timelimit"}
	}
	timelimit, ok := parseTimelimit(text)
	if !ok {
		return 0, &ExtractError{Op: "timelimit"}
	}
	return timelimit, nil
}

// parseTimelimit keeps the value exact by carrying an integer base and
// a base-10 exponent, materializing nanoseconds only at the end.
// Floats would round "0.0001 sec" style limits.
func parseTimelimit(text string) (time.Duration, bool) {
	groups := timelimitRegex.FindStringSubmatch(text)
	if groups == nil {
		return 0, false
	}
	base, err := strconv.ParseUint(groups[1], 10, 64)
	if err != nil {
		return 0, false
	}
	exponent := 0
	if groups[2] != "" {
		fraction := groups[2][1:]
		for _, c := range fraction {
			base = base*10 + uint64(c-'0')
		}
		exponent -= len(fraction)
	}
	if groups[3] == "" {
		// no "m" prefix, the value is in whole seconds
		exponent += 3
	}
	// base now counts milliseconds; shift into nanoseconds
	exponent += 6
	for ; exponent > 0; exponent-- {
		base *= 10
	}
	for ; exponent < 0; exponent++ {
		base /= 10
	}
	return time.Duration(base), true
}

const contestTimeLayout = "2006-01-02 15:04:05-0700"

func extractContestDuration(doc *goquery.Document) (ContestDuration, error) {
	var texts []string
	doc.Find("time").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		for child := sel.Get(0).FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.TextNode {
				continue
			}
			texts = append(texts, child.Data)
			if len(texts) == 2 {
				return false
			}
		}
		return true
	})
	if len(texts) < 2 {
		return ContestDuration{}, &ExtractError{Op: "contest duration"}
	}
	start, err := time.Parse(contestTimeLayout, texts[0])
	if err != nil {
		return ContestDuration{}, &ExtractError{Op: "contest duration"}
	}
	end, err := time.Parse(contestTimeLayout, texts[1])
	if err != nil {
		return ContestDuration{}, &ExtractError{Op: "contest duration"}
	}
	return ContestDuration{Start: start.UTC(), End: end.UTC()}, nil
}

var (
	sampleInJa  = regexp.MustCompile(`\A[\s\n]*入力例\s*([0-9０-９]{1,2})+[.\n]*\z`)
	sampleOutJa = regexp.MustCompile(`\A[\s\n]*出力例\s*([0-9０-９]{1,2})+[.\n]*\z`)
	sampleInEn  = regexp.MustCompile(`\ASample Input\s?([0-9]{1,2}).*\z`)
	sampleOutEn = regexp.MustCompile(`\ASample Output\s?([0-9]{1,2}).*\z`)
)

type sampleStrategy struct {
	head    string
	content string
	in      *regexp.Regexp
	out     *regexp.Regexp
}

// Sample-section markup shapes, newest first. Each either yields every
// sample on the page or nothing, so the first hit wins.
var sampleStrategies = []sampleStrategy{
	// current pages (Japanese)
	{
		head:    "#task-statement > span.lang > span.lang-ja > div.part > section > h3",
		content: "#task-statement > span.lang > span.lang-ja > div.part > section > pre",
		in:      sampleInJa,
		out:     sampleOutJa,
	},
	// current pages (English)
	{
		head:    "#task-statement > span.lang > span.lang-en > div.part > section > h3",
		content: "#task-statement > span.lang > span.lang-en > div.part > section > pre",
		in:      sampleInEn,
		out:     sampleOutEn,
	},
	// ARC019..ARC057, ABC007..ABC040, ATC001, ATC002
	{
		head:    "#task-statement > div.part > section > h3",
		content: "#task-statement > div.part > section > pre",
		in:      sampleInJa,
		out:     sampleOutJa,
	},
	// ARC002..ARC018, ARC019/C, ABC001..ABC006
	{
		head:    "#task-statement > div.part > h3,pre",
		content: "#task-statement > div.part > section > pre",
		in:      sampleInJa,
		out:     sampleOutJa,
	},
	// ARC001, dwacon2018-final/{A, B}
	{
		head:    "#task-statement > h3,pre",
		content: "#task-statement > section > pre",
		in:      sampleInJa,
		out:     sampleOutJa,
	},
	// ARC046/D, ARC050, ARC052/{A, C}, ARC053, ARC055, ABC036, ABC041
	{
		head:    "#task-statement > section > h3",
		content: "#task-statement > section > pre",
		in:      sampleInJa,
		out:     sampleOutJa,
	},
	// ABC034
	{
		head:    "#task-statement > span.lang > span.lang-ja > section > h3",
		content: "#task-statement > span.lang > span.lang-ja > section > pre",
		in:      sampleInJa,
		out:     sampleOutJa,
	},
	// practice contest (Japanese)
	{
		head:    "#task-statement > span.lang > span.lang-ja > div.part > h3",
		content: "#task-statement > span.lang > span.lang-ja > div.part > section > pre",
		in:      sampleInJa,
		out:     sampleOutJa,
	},
}

func extractSamples(doc *goquery.Document) (samples []Sample, interactive bool, ok bool) {
	if hasInteractiveMarker(doc) {
		return nil, true, true
	}
	for _, strategy := range sampleStrategies {
		if samples, ok := strategy.extract(doc); ok {
			return samples, false, true
		}
	}
	return nil, false, false
}

func hasInteractiveMarker(doc *goquery.Document) bool {
	marker := false
	doc.Find("#task-statement strong").EachWithBreak(func(_ int, strong *goquery.Selection) bool {
		text := strong.Text()
		if strings.Contains(text, "インタラクティブ") || strings.Contains(text, "Interactive") {
			marker = true
			return false
		}
		return true
	})
	return marker
}

type samplePending struct {
	isInput bool
	index   int
}

// extract walks the union of the heading and content selectors in
// document order. A heading that parses as "sample input N" or
// "sample output N" arms the next content node to be recorded under
// index N; content nodes always disarm, matched or not.
func (s sampleStrategy) extract(doc *goquery.Document) ([]Sample, bool) {
	inputs := map[int]string{}
	outputs := map[int]string{}
	var next *samplePending
	aborted := false

	doc.Find(s.head + ", " + s.content).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		switch goquery.NodeName(sel) {
		case "h3":
			text := sel.Text()
			if groups := s.in.FindStringSubmatch(text); groups != nil {
				index, ok := parseSampleIndex(groups[1])
				if !ok {
					aborted = true
					return false
				}
				next = &samplePending{isInput: true, index: index}
			} else if groups := s.out.FindStringSubmatch(text); groups != nil {
				index, ok := parseSampleIndex(groups[1])
				if !ok {
					aborted = true
					return false
				}
				next = &samplePending{isInput: false, index: index}
			}
			// other headings leave the armed classification alone
		case "pre", "section":
			if next != nil {
				if next.isInput {
					inputs[next.index] = sel.Text()
				} else {
					outputs[next.index] = sel.Text()
				}
			}
			next = nil
		}
		return true
	})
	if aborted {
		return nil, false
	}

	indices := make([]int, 0, len(inputs))
	for index := range inputs {
		indices = append(indices, index)
	}
	slices.Sort(indices)

	var samples []Sample
	for _, index := range indices {
		output, ok := outputs[index]
		if !ok {
			continue
		}
		samples = append(samples, Sample{
			Input:  ensureTrailingNewline(inputs[index]),
			Output: ensureTrailingNewline(output),
		})
	}
	for _, sample := range samples {
		if !isValidText(sample.Input) || !isValidText(sample.Output) {
			return nil, false
		}
	}
	if len(samples) == 0 {
		return nil, false
	}
	return samples, true
}

// parseSampleIndex reads a sample number that may be written in
// full-width digits. Mixed-width numbers are rejected.
func parseSampleIndex(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	ascii := make([]byte, 0, len(s))
	for _, c := range s {
		if c < '０' || c > '９' {
			return 0, false
		}
		ascii = append(ascii, byte(c-'０')+'0')
	}
	n, err := strconv.Atoi(string(ascii))
	return n, err == nil
}

func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// isValidText enforces the sample-text shape: ASCII only, space and LF
// as the only whitespace, no leading space or LF. A bare LF passes.
func isValidText(s string) bool {
	if s == "\n" {
		return true
	}
	if strings.HasPrefix(s, " ") || strings.HasPrefix(s, "\n") {
		return false
	}
	for _, c := range s {
		if c >= utf8.RuneSelf {
			return false
		}
		if isASCIIWhitespace(byte(c)) != (c == ' ' || c == '\n') {
			return false
		}
	}
	return true
}

func isASCIIWhitespace(c byte) bool {
	switch c {
	case '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

var (
	submissionTaskRegex       = regexp.MustCompile(`\A(\w+).*\z`)
	submissionScreenNameRegex = regexp.MustCompile(`\A/contests/[\w-]+/tasks/([\w-]+)\z`)
)

// extractSubmissions returns the rows of one submissions page plus the
// total page count from the pagination control. A page with no rows is
// fine, a row that cannot be read fully is not.
func extractSubmissions(doc *goquery.Document) ([]Submission, int, error) {
	numPages := doc.
		Find("#main-container > div.row > div.text-center > ul.pagination > li").
		Length()

	var submissions []Submission
	failed := false
	doc.Find("#main-container > div.row > div.col-sm-12 > div.panel-submission > div.table-responsive > table.table > tbody > tr").
		EachWithBreak(func(_ int, row *goquery.Selection) bool {
			submission, ok := extractSubmissionRow(row)
			if !ok {
				failed = true
				return false
			}
			submissions = append(submissions, submission)
			return true
		})
	if failed {
		return nil, 0, &ExtractError{Op: "submissions"}
	}
	return submissions, numPages, nil
}

func extractSubmissionRow(row *goquery.Selection) (Submission, bool) {
	taskAnchor := row.Find("td > a").First()
	if taskAnchor.Length() == 0 {
		return Submission{}, false
	}
	fullName, ok := htmlutil.FirstText(taskAnchor.Get(0))
	if !ok {
		return Submission{}, false
	}
	nameGroups := submissionTaskRegex.FindStringSubmatch(fullName)
	if nameGroups == nil {
		return Submission{}, false
	}
	href, ok := taskAnchor.Attr("href")
	if !ok {
		return Submission{}, false
	}
	screenGroups := submissionScreenNameRegex.FindStringSubmatch(href)
	if screenGroups == nil {
		return Submission{}, false
	}

	cells := row.Find("td")
	if cells.Length() < 4 {
		return Submission{}, false
	}
	language, ok := htmlutil.FirstText(cells.Get(3))
	if !ok {
		return Submission{}, false
	}

	status, ok := firstChildTextAcross(row.Find("td > span"))
	if !ok {
		return Submission{}, false
	}

	detailURL := ""
	detailFound := false
	row.Find("td.text-center > a").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		text, ok := htmlutil.FirstText(anchor.Get(0))
		if !ok || (text != "詳細" && text != "Detail") {
			return true
		}
		href, ok := anchor.Attr("href")
		if !ok {
			// a matching label without a link, keep looking
			return true
		}
		detailURL = href
		detailFound = true
		return false
	})
	if !detailFound {
		return Submission{}, false
	}

	return Submission{
		TaskName:       nameGroups[1],
		TaskScreenName: screenGroups[1],
		Language:       language,
		DetailURL:      detailURL,
		Accepted:       status == "AC",
	}, true
}

func firstChildTextAcross(sel *goquery.Selection) (string, bool) {
	for _, node := range sel.Nodes {
		if text, ok := htmlutil.FirstChildText(node); ok {
			return text, true
		}
	}
	return "", false
}

// extractSubmittedCode fails when the code element is missing; an
// empty element is an empty (but real) source file.
func extractSubmittedCode(doc *goquery.Document) (string, error) {
	code := doc.Find("#submission-code")
	if code.Length() == 0 {
		return "", &ExtractError{Op: "submitted code"}
	}
	text, ok := htmlutil.FirstText(code.Get(0))
	if !ok {
		return "", nil
	}
	return text, nil
}

func extractLanguageID(doc *goquery.Document, languageName string) (string, error) {
	id := ""
	found := false
	doc.Find("#select-language > option").EachWithBreak(func(_ int, option *goquery.Selection) bool {
		text, ok := htmlutil.FirstText(option.Get(0))
		if !ok || text != languageName {
			return true
		}
		value, ok := option.Attr("value")
		if !ok {
			// the matching option is unusable, bail out
			return false
		}
		id = value
		found = true
		return false
	})
	if !found {
		return "", &ExtractError{Op: fmt.Sprintf("language id for %q", languageName)}
	}
	return id, nil
}

// Language is one entry of the submit form's language selector.
type Language struct {
	ID   string
	Name string
}

func extractLanguages(doc *goquery.Document) ([]Language, error) {
	var languages []Language
	doc.Find("#select-language > option").Each(func(_ int, option *goquery.Selection) {
		value, ok := option.Attr("value")
		if !ok || value == "" {
			return
		}
		name, ok := htmlutil.FirstText(option.Get(0))
		if !ok {
			return
		}
		languages = append(languages, Language{ID: value, Name: name})
	})
	if len(languages) == 0 {
		return nil, &ExtractError{Op: "language list"}
	}
	return languages, nil
}
