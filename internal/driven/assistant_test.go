package driven

import (
	"context"
	"errors"
	"testing"

	"github.com/BetterCallFirewall/SecurityCenter/internal/config"
	"github.com/BetterCallFirewall/SecurityCenter/internal/llm"
	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAskAssistant(t *testing.T) {
	f := newFakeFlows()
	o := newTestOrchestrator(f)

	reply := o.AskAssistant(context.Background(), models.GeneralQueryInput{UserQuery: "How do I rotate keys?"})

	assert.Equal(t, "answer to How do I rotate keys?", reply)
	assert.Equal(t, 1, f.count(llm.FlowGeneralChat))
}

func TestAskAssistant_EmptyQuery(t *testing.T) {
	f := newFakeFlows()
	o := newTestOrchestrator(f)

	assert.Equal(t, MsgAssistantEmpty, o.AskAssistant(context.Background(), models.GeneralQueryInput{UserQuery: "   "}))
	assert.Zero(t, f.totalCalls())
}

func TestAskAssistant_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		err  error
		cred config.CredentialStatus
		want string
	}{
		{
			name: "transient failure",
			err:  errors.New("503 service unavailable"),
			cred: configured(),
			want: MsgAssistantUnavailable,
		},
		{
			name: "rejected key",
			err:  errors.New("API key not valid. Please pass a valid API key."),
			cred: configured(),
			want: msgAssistantInvalidCredential(config.GeminiAPIKeyEnv),
		},
		{
			name: "missing key",
			err:  errors.New("whatever"),
			cred: config.CredentialStatus{Name: config.GoogleAPIKeyEnv},
			want: msgAssistantMissingCredential(config.GoogleAPIKeyEnv),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFlows()
			f.errs[llm.FlowGeneralChat] = tt.err
			cred := tt.cred
			o := NewOrchestrator(f.invokers(), WithCredentials(func() config.CredentialStatus { return cred }))

			assert.Equal(t, tt.want, o.AskAssistant(context.Background(), models.GeneralQueryInput{UserQuery: "hi"}))
		})
	}
}

func TestAskAssistant_RecoversPanic(t *testing.T) {
	f := newFakeFlows()
	f.panicOn = llm.FlowGeneralChat
	o := newTestOrchestrator(f)

	assert.Equal(t, MsgAssistantUnavailable, o.AskAssistant(context.Background(), models.GeneralQueryInput{UserQuery: "hi"}))
}

// Without credentials the flows are never defined
func TestUnconfiguredBackend(t *testing.T) {
	missing := func() config.CredentialStatus {
		return config.CredentialStatus{Name: config.GeminiAPIKeyEnv, Configured: false}
	}
	o := NewOrchestrator(Invokers{}, WithCredentials(missing))

	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{
		URL:               "https://a.example",
		ServerDescription: "nginx",
	}, true)
	assertAllSlotsNil(t, res)
	assert.Equal(t, msgMissingCredential(config.GeminiAPIKeyEnv), res.ErrorMessage())

	reply := o.AskAssistant(context.Background(), models.GeneralQueryInput{UserQuery: "hi"})
	assert.Equal(t, msgAssistantMissingCredential(config.GeminiAPIKeyEnv), reply)
}
