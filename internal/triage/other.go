package triage

import (
	"context"
	"fmt"

	"mailagent/internal/models"
)

const otherReason = "Categorized as other/nonsense email"

// handleOther never replies; it rates the email so humans can work the
// queue by importance.
func (e *Engine) handleOther(ctx context.Context, msg *models.Message, email *models.ProcessedEmail) error {
	importance := e.rateImportance(ctx, msg.Body)
	if importance.Degraded {
		fmt.Printf("[TRIAGE] WARNING: Importance rating failed for message %s, defaulting to %s: %v\n",
			msg.ID, importance.Value, importance.Cause)
	}
	return e.fileUnhandled(ctx, email, importance.Value, otherReason)
}

func (e *Engine) rateImportance(ctx context.Context, body string) Outcome[models.ImportanceLevel] {
	importance, err := e.assistant.RateImportance(ctx, body)
	if err != nil {
		return Degraded(models.ImportanceMedium, err)
	}
	return Ok(importance)
}
