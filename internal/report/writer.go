package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"cogsync/internal/discord/command"
	"cogsync/internal/plugin"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported report format: [%s]", s)
}

// Line types of the JSON output
const (
	linePlugin    = "plugin"
	lineCollision = "collision"
	lineAttempt   = "attempt"
	lineSummary   = "summary"
	lineCommand   = "command"
)

type pluginLine struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	Commands int    `json:"commands"`
}

type collisionLine struct {
	Type     string `json:"type"`
	Scope    string `json:"scope"`
	Name     string `json:"name"`
	Previous string `json:"previous"`
	Plugin   string `json:"plugin"`
}

type attemptLine struct {
	Type       string     `json:"type"`
	Scope      string     `json:"scope"`
	Outcome    string     `json:"outcome"`
	Count      int        `json:"count"`
	Cleared    bool       `json:"cleared,omitempty"`
	Added      []string   `json:"added,omitempty"`
	Removed    []string   `json:"removed,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Elapsed    string     `json:"elapsed"`
	Retries    int        `json:"retries"`
	Waited     string     `json:"waited"`
	GaveUpAt   *time.Time `json:"gave_up_at,omitempty"`
	ErrorKind  string     `json:"error_kind,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type summaryLine struct {
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	TreeSize      int       `json:"tree_size"`
	PluginsLoaded int       `json:"plugins_loaded"`
	PluginsFailed int       `json:"plugins_failed"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Elapsed       string    `json:"elapsed"`
}

type commandLine struct {
	Type        string   `json:"type"`
	Scope       string   `json:"scope"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Plugin      string   `json:"plugin"`
	Parameters  []string `json:"parameters,omitempty"`
}

// Write prints the report to w in the given format.
func Write(w io.Writer, r *Report, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, r)
	}
	return writeText(w, r)
}

func writeJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	for _, p := range r.Plugins {
		if err := enc.Encode(newPluginLine(p)); err != nil {
			return err
		}
	}
	for _, c := range r.Collisions {
		if err := enc.Encode(newCollisionLine(c)); err != nil {
			return err
		}
	}
	for _, a := range r.Attempts {
		if err := enc.Encode(newAttemptLine(a)); err != nil {
			return err
		}
	}
	return enc.Encode(newSummaryLine(r))
}

func writeText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, p := range r.Plugins {
		detail := fmt.Sprintf("%d commands", p.Commands)
		if !p.Loaded() {
			detail = p.Reason
		}
		fmt.Fprintf(tw, "plugin\t%s\t%s\t%s\n", p.Name, p.Status, detail)
	}
	for _, c := range r.Collisions {
		fmt.Fprintf(tw, "collision\t%s\t%s\t%s replaced by %s\n", c.Scope, c.Name, c.Previous, c.Plugin)
	}
	for _, a := range r.Attempts {
		fmt.Fprintf(tw, "attempt\t%s\t%s\t%s\n", a.Scope, a.Outcome, attemptDetail(a))
	}

	loaded, failed := r.PluginCounts()
	fmt.Fprintf(
		tw, "status\t%s\ttree_size=%d\tplugins_loaded=%d plugins_failed=%d elapsed=%s\n",
		r.Status, r.TreeSize, loaded, failed, r.Elapsed().Round(time.Millisecond),
	)
	return tw.Flush()
}

func attemptDetail(a Attempt) string {
	parts := []string{fmt.Sprintf("count=%d", a.Count)}
	if a.Outcome != OutcomeNotAttempted {
		parts = append(parts, fmt.Sprintf("elapsed=%s", a.Elapsed().Round(time.Millisecond)))
	}
	if a.Cleared {
		parts = append(parts, "cleared")
	}
	if len(a.Added) > 0 {
		parts = append(parts, fmt.Sprintf("added=%s", strings.Join(a.Added, ",")))
	}
	if len(a.Removed) > 0 {
		parts = append(parts, fmt.Sprintf("removed=%s", strings.Join(a.Removed, ",")))
	}
	if a.Retries > 0 || a.Outcome == OutcomeRateLimited {
		parts = append(parts, fmt.Sprintf("retries=%d", a.Retries), fmt.Sprintf("waited=%s", a.Waited))
	}
	if !a.GaveUpAt.IsZero() {
		parts = append(parts, fmt.Sprintf("gave_up_at=%s", a.GaveUpAt.Format(time.RFC3339)))
	}
	if a.ErrorKind != "" {
		parts = append(parts, fmt.Sprintf("error_kind=%s", a.ErrorKind))
	}
	if a.Error != "" {
		parts = append(parts, fmt.Sprintf("error=%q", a.Error))
	}
	return strings.Join(parts, " ")
}

func newPluginLine(p plugin.Record) pluginLine {
	return pluginLine{
		Type:     linePlugin,
		Name:     p.Name,
		Status:   string(p.Status),
		Reason:   p.Reason,
		Commands: p.Commands,
	}
}

func newCollisionLine(c command.Collision) collisionLine {
	return collisionLine{
		Type:     lineCollision,
		Scope:    c.Scope.String(),
		Name:     c.Name,
		Previous: c.Previous,
		Plugin:   c.Plugin,
	}
}

func newAttemptLine(a Attempt) attemptLine {
	return attemptLine{
		Type:       lineAttempt,
		Scope:      a.Scope.String(),
		Outcome:    string(a.Outcome),
		Count:      a.Count,
		Cleared:    a.Cleared,
		Added:      a.Added,
		Removed:    a.Removed,
		StartedAt:  timePtr(a.StartedAt),
		FinishedAt: timePtr(a.FinishedAt),
		Elapsed:    a.Elapsed().String(),
		Retries:    a.Retries,
		Waited:     a.Waited.String(),
		GaveUpAt:   timePtr(a.GaveUpAt),
		ErrorKind:  a.ErrorKind,
		Error:      a.Error,
	}
}

func newSummaryLine(r *Report) summaryLine {
	loaded, failed := r.PluginCounts()
	return summaryLine{
		Type:          lineSummary,
		Status:        string(r.Status),
		TreeSize:      r.TreeSize,
		PluginsLoaded: loaded,
		PluginsFailed: failed,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		Elapsed:       r.Elapsed().String(),
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// WriteTree prints every declared command, guild scopes first.
func WriteTree(w io.Writer, tree *command.Tree, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		for _, scope := range tree.Scopes() {
			for _, d := range tree.Commands(scope) {
				owner, _ := tree.Owner(scope, d.Name)
				if err := enc.Encode(commandLine{
					Type:        lineCommand,
					Scope:       scope.String(),
					Name:        d.Name,
					Description: d.Description,
					Plugin:      owner,
					Parameters:  parameterNames(d),
				}); err != nil {
					return err
				}
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, scope := range tree.Scopes() {
		for _, d := range tree.Commands(scope) {
			owner, _ := tree.Owner(scope, d.Name)
			fmt.Fprintf(tw, "command\t%s\t/%s\t%s\t%s\n", scope, usage(d), owner, d.Description)
		}
	}
	fmt.Fprintf(tw, "tree\tsize=%d\n", tree.Size())
	return tw.Flush()
}

func parameterNames(d command.Descriptor) []string {
	var names []string
	for _, p := range d.Parameters {
		names = append(names, p.Name)
	}
	return names
}

// usage renders "name <required> [optional]".
func usage(d command.Descriptor) string {
	parts := []string{d.Name}
	for _, p := range d.Parameters {
		if p.Required {
			parts = append(parts, "<"+p.Name+">")
		} else {
			parts = append(parts, "["+p.Name+"]")
		}
	}
	return strings.Join(parts, " ")
}
