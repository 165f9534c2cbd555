package markupguard

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// FallbackHTML replaces an item whose strict sanitization failed. It is
// fixed and known safe; raw input is never returned in its place.
const FallbackHTML = `<p style="color: red;">Error processing HTML content</p>`

// Result is the outcome of sanitizing one item. On failure HTML holds
// FallbackHTML and Err is an *Error.
type Result struct {
	HTML   string
	Report Report
	Err    error
}

// Observation describes one processed item for a Recorder.
type Observation struct {
	Strict bool
	Report Report
	Err    error
}

// Recorder receives one Observation per processed item. Implementations
// must be safe for concurrent use.
type Recorder interface {
	Record(Observation)
}

type nopRecorder struct{}

func (nopRecorder) Record(Observation) {}

// Sanitizer runs the parse, sanitize and serialize pipeline. It holds
// only read-only configuration and is safe for concurrent use.
type Sanitizer struct {
	policy   *Policy
	limits   Limits
	logger   *slog.Logger
	recorder Recorder
	workers  int
}

// Opt configures a Sanitizer.
type Opt func(*Sanitizer)

// WithPolicy replaces the default policy.
func WithPolicy(p *Policy) Opt {
	return func(s *Sanitizer) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithLimits sets the per-item size, depth and node limits.
func WithLimits(l Limits) Opt {
	return func(s *Sanitizer) {
		s.limits = l.withDefaults()
	}
}

// WithLogger sets the logger used for per-item failures.
func WithLogger(l *slog.Logger) Opt {
	return func(s *Sanitizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the Recorder notified for every item.
func WithRecorder(r Recorder) Opt {
	return func(s *Sanitizer) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithWorkers sets how many items SanitizeAll processes concurrently.
// Values below 2 process items sequentially.
func WithWorkers(n int) Opt {
	return func(s *Sanitizer) {
		s.workers = n
	}
}

// New creates a Sanitizer using DefaultPolicy and DefaultLimits unless
// overridden by opts.
func New(opts ...Opt) *Sanitizer {
	s := &Sanitizer{
		policy:   DefaultPolicy(),
		limits:   DefaultLimits(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		recorder: nopRecorder{},
		workers:  1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var defaultSanitizer = New()

// Default returns the Sanitizer used by SanitizeMarkup.
func Default() *Sanitizer { return defaultSanitizer }

// SanitizeMarkup sanitizes raw with the default Sanitizer. With strict
// false raw is returned unchanged; this is an explicit opt-out and the
// caller is responsible for trusting the content.
func SanitizeMarkup(raw string, strict bool) string {
	return defaultSanitizer.Sanitize(raw, strict).HTML
}

// Policy returns the policy in use.
func (s *Sanitizer) Policy() *Policy { return s.policy }

// Sanitize processes one item. In strict mode any failure, including a
// panic in the pipeline, yields FallbackHTML.
func (s *Sanitizer) Sanitize(raw string, strict bool) Result {
	res := s.process(raw, strict)
	if res.Err != nil {
		s.logger.Warn("sanitize markup",
			slog.String("code", string(CodeOf(res.Err))),
			slog.String("error", res.Err.Error()))
	}
	return res
}

// SanitizeAll processes items in order and returns one string per item.
// Nil items are treated as empty strings.
func (s *Sanitizer) SanitizeAll(items []*string, strict bool) []string {
	results := s.SanitizeAllResults(items, strict)
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.HTML
	}
	return out
}

// SanitizeAllResults is SanitizeAll with the structured outcome of each
// item. A failing item only affects its own slot. Item failures are
// logged at debug level; callers that know the row report them.
func (s *Sanitizer) SanitizeAllResults(items []*string, strict bool) []Result {
	results := make([]Result, len(items))
	if s.workers < 2 || len(items) < 2 {
		for i, item := range items {
			results[i] = s.processItem(i, deref(item), strict)
		}
		return results
	}

	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, raw string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.processItem(i, raw, strict)
		}(i, deref(item))
	}
	wg.Wait()
	return results
}

func (s *Sanitizer) processItem(index int, raw string, strict bool) Result {
	res := s.process(raw, strict)
	if res.Err != nil {
		s.logger.Debug("sanitize markup item",
			slog.Int("item", index),
			slog.String("code", string(CodeOf(res.Err))),
			slog.String("error", res.Err.Error()))
	}
	return res
}

func (s *Sanitizer) process(raw string, strict bool) Result {
	if !strict {
		s.recorder.Record(Observation{Strict: false})
		return Result{HTML: raw}
	}

	out, report, err := s.run(raw)
	s.recorder.Record(Observation{Strict: true, Report: report, Err: err})
	if err != nil {
		return Result{HTML: FallbackHTML, Report: report, Err: err}
	}
	return Result{HTML: out, Report: report}
}

func (s *Sanitizer) run(raw string) (out string, report Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = wrapError(CodeInternal, fmt.Sprintf("panic: %v", r), nil)
		}
	}()

	if len(raw) > s.limits.MaxInputBytes {
		return "", report, wrapError(CodeLimitExceeded,
			fmt.Sprintf("markup is %d bytes, limit is %d", len(raw), s.limits.MaxInputBytes), nil)
	}
	if err := checkLimits(raw, s.limits); err != nil {
		return "", report, err
	}
	out, report, err = s.pass(raw)
	if err != nil {
		return "", report, err
	}

	// Foreign content can serialize into markup that parses to a
	// different tree. Only output that survives another pass unchanged
	// is returned.
	again, _, err := s.pass(out)
	if err != nil {
		return "", report, err
	}
	if again != out {
		return "", report, wrapError(CodeSerialize, "serialized markup does not reparse to the same tree", nil)
	}
	return out, report, nil
}

func (s *Sanitizer) pass(raw string) (string, Report, error) {
	doc, err := Parse(raw)
	if err != nil {
		return "", Report{}, err
	}
	report, err := SanitizeDocument(doc, s.policy, s.limits)
	if err != nil {
		return "", report, err
	}
	out, err := Serialize(doc)
	if err != nil {
		return "", report, err
	}
	return out, report, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
