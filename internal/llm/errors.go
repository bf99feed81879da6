package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrorKind tags a flow failure so callers can switch on it instead of
// matching raw provider messages
type ErrorKind string

const (
	KindCredential      ErrorKind = "credential"
	KindNetwork         ErrorKind = "network"
	KindQuota           ErrorKind = "quota"
	KindMalformedOutput ErrorKind = "malformed_output"
	KindOther           ErrorKind = "other"
)

// Retryable is false for failures that repeat identically on every attempt
func (k ErrorKind) Retryable() bool {
	return k == KindNetwork || k == KindQuota || k == KindOther
}

// FlowError - failure of a single flow invocation
type FlowError struct {
	Flow string
	Kind ErrorKind
	Err  error
}

func (e *FlowError) Error() string {
	return e.Err.Error()
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// ErrMalformedOutput is returned when the model answers with an unusable shape
var ErrMalformedOutput = errors.New("model returned malformed output")

// wrapFlowError tags err with the flow name and its classified kind
func wrapFlowError(flow string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FlowError
	if errors.As(err, &fe) {
		return err
	}
	return &FlowError{Flow: flow, Kind: Classify(err), Err: err}
}

// KindOf returns the tag of a tagged error, classifying untagged ones
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Classify(err)
}

// Provider error markers. The Gemini and OpenAI-compatible SDKs only expose
// these as text, so they are the last resort after typed checks.
var (
	credentialMarkers = []string{"API key not valid", "API key is invalid", "API_KEY_INVALID", "invalid_api_key", "Incorrect API key"}
	networkMarkers    = []string{"fetch", "network", "ENOTFOUND", "ECONNREFUSED", "connection refused", "no such host", "i/o timeout", "connection reset"}
	quotaMarkers      = []string{"quota", "RESOURCE_EXHAUSTED", "rate limit", "Too Many Requests"}
	malformedMarkers  = []string{"json", "Unexpected token", "output.findings", "output!", "schema", "malformed"}
)

// Classify derives an ErrorKind from an untagged error
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var (
		netErr    net.Error
		urlErr    *url.Error
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, ErrMalformedOutput), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return KindMalformedOutput
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr), errors.As(err, &urlErr):
		return KindNetwork
	}

	msg := err.Error()
	switch {
	case containsAny(msg, credentialMarkers):
		return KindCredential
	case containsAny(msg, quotaMarkers):
		return KindQuota
	case containsAny(msg, networkMarkers):
		return KindNetwork
	case containsAny(strings.ToLower(msg), lower(malformedMarkers)):
		return KindMalformedOutput
	default:
		return KindOther
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// malformed builds a MalformedOutput error with detail
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedOutput, fmt.Sprintf(format, args...))
}
