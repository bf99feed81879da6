package driven

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/BetterCallFirewall/SecurityCenter/internal/llm"
	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
)

// AskAssistant forwards a free-form question to the assistant flow.
// Failures are answered with a fallback text, never returned.
func (o *Orchestrator) AskAssistant(ctx context.Context, in models.GeneralQueryInput) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Assistant panicked: %v", r)
			reply = assistantFallback(fmt.Errorf("internal error: %v", r), o.credentials())
		}
	}()

	if strings.TrimSpace(in.UserQuery) == "" {
		return MsgAssistantEmpty
	}

	start := time.Now()
	out, err := invoke(ctx, llm.FlowGeneralChat, o.invokers.Query, &in)
	o.observe(llm.FlowGeneralChat, err, start)
	if err != nil {
		log.Printf("⚠️ Assistant failed: %v", err)
		return assistantFallback(err, o.credentials())
	}
	return out.AIResponse
}
