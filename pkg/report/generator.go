package report

import "context"

// Task carries everything a strategy needs to produce a report.
type Task struct {
	Query        string
	Type         Type
	Source       Source
	SourceURLs   []string
	DocumentURLs []string
	Tone         Tone
	Headers      map[string]string
}

// Result is what a strategy returns on success. MultiAgents pipelines
// return a structured payload; Report is the extracted artifact text.
type Result struct {
	Report string
}

// ProgressEvent is one incremental notification emitted while a strategy runs.
type ProgressEvent struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Output  string `json:"output"`
}

// ProgressSink receives progress notifications pushed by a running strategy.
// Implementations must not block the strategy.
type ProgressSink interface {
	Notify(event ProgressEvent)
}

// SinkFunc adapts a function to the ProgressSink interface.
type SinkFunc func(ProgressEvent)

func (f SinkFunc) Notify(event ProgressEvent) {
	f(event)
}

// Discard swallows all progress notifications. Used on the non-streaming path.
var Discard ProgressSink = SinkFunc(func(ProgressEvent) {})

// Generator is one report-generation strategy. Run blocks until the report
// is complete or the context is cancelled, pushing progress into sink.
type Generator interface {
	Run(ctx context.Context, task Task, sink ProgressSink) (Result, error)
}
