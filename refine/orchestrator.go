package refine

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"callscribe/ai"
	"callscribe/roles"
	"callscribe/transcript"
)

// Generation bounds. The retry runs colder than the first attempt to reduce
// variance after a failure.
var (
	initialOptions = GenerateOptions{Temperature: 0.1, MaxTokens: 4096, TopP: 0.9}
	retryOptions   = GenerateOptions{Temperature: 0.05, MaxTokens: 4096, TopP: 0.9}
)

// Orchestrator runs the two-attempt refinement chain:
//
//	attempt 1 (neutral prompt)    -> accepted only when the result names
//	                                 both AGENT and CUSTOMER;
//	attempt 2 (hinted prompt)     -> any successful response accepted;
//	fallback                      -> locally composed role-labeled
//	                                 transcript.
//
// Every failure of attempt 1 — transport, bad status, malformed body or
// missing role tokens — moves to attempt 2, never straight to the fallback.
// There is no third attempt and no backoff between attempts.
type Orchestrator struct {
	client *Client
}

// NewOrchestrator wraps a refiner client.
func NewOrchestrator(client *Client) *Orchestrator {
	return &Orchestrator{client: client}
}

// Refine always returns transcript text: refined when the service
// cooperates, the locally resolved transcript otherwise.
func (o *Orchestrator) Refine(ctx context.Context, segments []ai.TranscriptSegment, table roles.Table, assignment roles.Assignment) string {
	text, err := o.client.Generate(ctx, BuildInitialPrompt(segments), initialOptions)
	switch {
	case err != nil:
		logrus.WithError(err).Warn("refinement attempt 1 failed, retrying with role hints")
	case !hasBothRoles(text):
		logrus.Warn("refiner did not identify both agent and customer, retrying with role hints")
	default:
		logrus.Info("refiner accepted transcript on attempt 1")
		return text
	}

	text, err = o.client.Generate(ctx, BuildRetryPrompt(segments, table, assignment), retryOptions)
	if err != nil {
		logrus.WithError(err).Error("refinement attempt 2 failed, using locally resolved transcript")
		return transcript.Compose(segments, assignment)
	}
	logrus.Info("refiner accepted transcript on attempt 2")
	return text
}

// hasBothRoles checks the refined text names both speaker roles.
func hasBothRoles(text string) bool {
	return strings.Contains(text, string(transcript.RoleAgent)) &&
		strings.Contains(text, string(transcript.RoleCustomer))
}
