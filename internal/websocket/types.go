package websocket

import "github.com/BetterCallFirewall/SecurityCenter/internal/driven"

// Message types
const (
	TypeAnalysisStep     = "analysis_step"
	TypeAnalysisComplete = "analysis_complete"
)

type Message struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// NotifyStep forwards orchestrator progress to the clients subscribed to
// the event's channel. The final "analysis" step is sent as analysis_complete.
func (h *Hub) NotifyStep(event driven.StepEvent) {
	msgType := TypeAnalysisStep
	if event.Step == driven.StepAnalysis {
		msgType = TypeAnalysisComplete
	}
	h.Send(event.Channel, msgType, event)
}

var _ driven.Notifier = (*Hub)(nil)
