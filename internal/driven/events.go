package driven

import (
	"context"
	"time"
)

// Step names reported to the notifier besides the category names
const (
	StepReport        = "report"
	StepAttackVectors = "attack_vectors"
	StepPlaybooks     = "remediation_playbooks"
	StepAnalysis      = "analysis"
)

// Step statuses
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Analysis outcomes (metrics label and final event status)
const (
	OutcomeSuccess  = "success"
	OutcomeMinor    = "minor_issues"
	OutcomePartial  = "partial"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

// StepEvent - progress of a single analysis step
type StepEvent struct {
	AnalysisID string    `json:"analysis_id,omitempty"`
	// Channel routes the event to its subscribers only; never serialized
	Channel    string    `json:"-"`
	Step       string    `json:"step"`
	Status     string    `json:"status"`
	Findings   int       `json:"findings,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier receives progress events (websocket hub)
type Notifier interface {
	NotifyStep(event StepEvent)
}

// Recorder receives flow and analysis measurements (prometheus)
type Recorder interface {
	ObserveFlow(flow, outcome string, duration time.Duration)
	ObserveAnalysis(outcome string)
}

// PageContextProvider prefetches the analysed URL for the URL flow
type PageContextProvider interface {
	PageContext(ctx context.Context, url string) (string, error)
}

type nopNotifier struct{}

func (nopNotifier) NotifyStep(StepEvent) {}

type nopRecorder struct{}

func (nopRecorder) ObserveFlow(string, string, time.Duration) {}
func (nopRecorder) ObserveAnalysis(string)                    {}

type analysisIDKey struct{}

// WithAnalysisID attaches the id used to tag progress events
func WithAnalysisID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, analysisIDKey{}, id)
}

// AnalysisIDFrom returns the id set by WithAnalysisID
func AnalysisIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(analysisIDKey{}).(string)
	return id
}

type progressChannelKey struct{}

// WithProgressChannel sets the subscription channel of progress events.
// Without one, events reach no websocket client.
func WithProgressChannel(ctx context.Context, channel string) context.Context {
	return context.WithValue(ctx, progressChannelKey{}, channel)
}

func ProgressChannelFrom(ctx context.Context) string {
	ch, _ := ctx.Value(progressChannelKey{}).(string)
	return ch
}
