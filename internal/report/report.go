package report

import (
	"time"

	"cogsync/internal/discord/command"
	"cogsync/internal/plugin"
)

type Outcome string

const (
	OutcomeSuccess        Outcome = "SUCCESS"
	OutcomeRateLimited    Outcome = "RATE_LIMITED"
	OutcomeTransportError Outcome = "TRANSPORT_ERROR"
	OutcomeCancelled      Outcome = "CANCELLED"
	OutcomeNotAttempted   Outcome = "NOT_ATTEMPTED"
)

type Status string

const (
	StatusOK      Status = "OK"
	StatusPartial Status = "PARTIAL"
	StatusFailed  Status = "FAILED"
)

// Attempt is the result of synchronizing one scope.
type Attempt struct {
	Scope      command.Scope
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    Outcome

	// Commands sent in the push. On success this is what Discord reports serving.
	Count int

	Cleared  bool
	Added    []string
	Removed  []string
	Retries  int
	Waited   time.Duration
	GaveUpAt time.Time

	ErrorKind string
	Error     string
}

func (a Attempt) Elapsed() time.Duration {
	if a.FinishedAt.IsZero() {
		return 0
	}
	return a.FinishedAt.Sub(a.StartedAt)
}

func (a Attempt) Succeeded() bool {
	return a.Outcome == OutcomeSuccess
}

// NotAttempted marks a scope skipped because the run stopped early.
func NotAttempted(scope command.Scope) Attempt {
	return Attempt{Scope: scope, Outcome: OutcomeNotAttempted}
}

// Report is the result of one run. It is not modified once published.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Status     Status

	Plugins    []plugin.Record
	Collisions []command.Collision
	TreeSize   int
	Attempts   []Attempt
}

// Builder accumulates a report while a run progresses.
type Builder struct {
	report Report
}

func NewBuilder(startedAt time.Time) *Builder {
	return &Builder{report: Report{StartedAt: startedAt}}
}

func (b *Builder) SetPlugins(records []plugin.Record) {
	b.report.Plugins = append([]plugin.Record(nil), records...)
}

func (b *Builder) SetTree(tree *command.Tree) {
	b.report.TreeSize = tree.Size()
	b.report.Collisions = tree.Collisions()
}

func (b *Builder) AddAttempt(a Attempt) {
	b.report.Attempts = append(b.report.Attempts, a)
}

// Publish computes the overall status and returns a copy detached from the builder.
func (b *Builder) Publish(finishedAt time.Time) *Report {
	r := b.report
	r.FinishedAt = finishedAt
	r.Plugins = append([]plugin.Record(nil), b.report.Plugins...)
	r.Collisions = append([]command.Collision(nil), b.report.Collisions...)
	r.Attempts = append([]Attempt(nil), b.report.Attempts...)
	r.Status = ComputeStatus(r.Plugins, r.Attempts)
	return &r
}

// ComputeStatus applies the overall status rule. Without attempts, as when only
// listing the tree, the status reflects plugin loading alone.
func ComputeStatus(plugins []plugin.Record, attempts []Attempt) Status {
	loaded := 0
	for _, p := range plugins {
		if p.Loaded() {
			loaded++
		}
	}
	allLoaded := loaded == len(plugins)

	if len(attempts) == 0 {
		switch {
		case allLoaded:
			return StatusOK
		case loaded > 0:
			return StatusPartial
		default:
			return StatusFailed
		}
	}

	succeeded := 0
	for _, a := range attempts {
		if a.Succeeded() {
			succeeded++
		}
	}

	switch {
	case succeeded == 0:
		return StatusFailed
	case succeeded == len(attempts) && allLoaded:
		return StatusOK
	default:
		return StatusPartial
	}
}

func (r *Report) PluginCounts() (loaded, failed int) {
	for _, p := range r.Plugins {
		if p.Loaded() {
			loaded++
		} else {
			failed++
		}
	}
	return loaded, failed
}

func (r *Report) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
