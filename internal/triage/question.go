package triage

import (
	"context"
	"fmt"

	"mailagent/internal/models"
)

const noKnowledgeReason = "No relevant information found in knowledge base"

// handleQuestion answers a question from the knowledge base, or files
// it for a human when the retrieved context cannot support an answer.
func (e *Engine) handleQuestion(ctx context.Context, mailbox Mailbox, msg *models.Message, email *models.ProcessedEmail) error {
	chunks := e.searchKnowledge(ctx, msg.Body)
	if chunks.Degraded {
		fmt.Printf("[TRIAGE] WARNING: Knowledge search failed for message %s: %v\n", msg.ID, chunks.Cause)
	}
	if len(chunks.Value) == 0 {
		return e.fileUnhandled(ctx, email, models.ImportanceHigh, noKnowledgeReason)
	}

	answer, ok, err := e.assistant.AnswerWithContext(ctx, msg.Body, chunks.Value)
	if err != nil {
		fmt.Printf("[TRIAGE] WARNING: Answer generation failed for message %s: %v\n", msg.ID, err)
		return e.fileUnhandled(ctx, email, models.ImportanceHigh, noKnowledgeReason)
	}
	if !ok {
		// The model saw the context and declared it insufficient.
		return e.fileUnhandled(ctx, email, models.ImportanceHigh, noKnowledgeReason)
	}

	e.sendReply(ctx, mailbox, msg, email, answer)
	return nil
}

func (e *Engine) searchKnowledge(ctx context.Context, query string) Outcome[[]string] {
	chunks, err := e.knowledge.Search(ctx, query, e.searchLimit)
	if err != nil {
		return Degraded[[]string](nil, err)
	}
	return Ok(chunks)
}
