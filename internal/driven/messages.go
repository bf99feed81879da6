package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/BetterCallFirewall/SecurityCenter/internal/config"
	"github.com/BetterCallFirewall/SecurityCenter/internal/llm"
)

// User-facing messages
const (
	MsgNoTarget         = "At least one analysis target must be provided."
	MsgNoRunnableTarget = "None of the provided targets has enough information to run an analysis. Cloud analysis needs a provider and a configuration description; dependency analysis needs file content and a file type."

	PrefixAllFailed = "All analyses failed. Errors: "
	PrefixPartial   = "One or more analysis steps failed. Partial results may be shown. Errors: "
	PrefixMinor     = "Minor issues occurred: "

	DefaultReportText = "Report generation failed or there are no analysis results to report."

	MsgNetwork   = "A network error occurred while contacting an analysis service. Please check your internet connection and try again."
	MsgQuota     = "An analysis service quota was exceeded (possibly Google AI). Please try again later or review your account limits."
	MsgCancelled = "The analysis was cancelled before it completed."
	MsgTimeout   = "The analysis timed out before all steps completed. Try again with fewer targets."

	MsgAssistantUnavailable = "Sorry, I couldn't process your question right now. Please try again later."
	MsgAssistantEmpty       = "Please enter a question."
)

// Error labels of the non-category stages
const (
	LabelReport    = "Report"
	LabelAttack    = "Attack vectors"
	LabelPlaybooks = "Remediation playbooks"
)

func msgMissingCredential(name string) string {
	return fmt.Sprintf("Server configuration error: the API key (%s) for the AI service is not configured or still holds the placeholder value. Please check your .env file and the README instructions.", name)
}

func msgInvalidCredential(name string) string {
	return fmt.Sprintf("Server configuration error: the API key (%s) provided for the AI service is not valid. Please verify the key in Google AI Studio and make sure it is set correctly in your .env file.", name)
}

func msgMalformed(detail string) string {
	return fmt.Sprintf("The AI returned an invalid or unexpected format. Details: %s. This may be caused by a temporary model problem, content filters or a malformed prompt. Try again or simplify the input.", detail)
}

func msgCatastrophic(detail string) string {
	return "Analysis failed catastrophically: " + detail
}

func msgAssistantMissingCredential(name string) string {
	return fmt.Sprintf("Assistant configuration error: the API key (%s) for the AI service is not configured or still holds the placeholder value. Please contact the platform administrator.", name)
}

func msgAssistantInvalidCredential(name string) string {
	return fmt.Sprintf("Assistant configuration error: the API key (%s) for the AI service is not valid. Please contact the platform administrator.", name)
}

// classifyFatal maps an error that aborted the whole analysis to its message.
// A missing credential wins over whatever the error says.
func classifyFatal(err error, cred config.CredentialStatus) string {
	switch {
	case !cred.Configured:
		return msgMissingCredential(cred.Name)
	case llm.KindOf(err) == llm.KindCredential:
		return msgInvalidCredential(cred.Name)
	case errors.Is(err, context.Canceled):
		return MsgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	}

	switch llm.KindOf(err) {
	case llm.KindNetwork:
		return MsgNetwork
	case llm.KindQuota:
		return MsgQuota
	case llm.KindMalformedOutput:
		return msgMalformed(err.Error())
	default:
		return msgCatastrophic(err.Error())
	}
}

// assistantFallback is the reply when the assistant flow fails
func assistantFallback(err error, cred config.CredentialStatus) string {
	switch {
	case !cred.Configured:
		return msgAssistantMissingCredential(cred.Name)
	case llm.KindOf(err) == llm.KindCredential:
		return msgAssistantInvalidCredential(cred.Name)
	default:
		return MsgAssistantUnavailable
	}
}
