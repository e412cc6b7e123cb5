package triage

import (
	"context"
	"fmt"
	"strings"

	"mailagent/internal/language"
	"mailagent/internal/models"
)

const (
	refundApprovedTemplate = "Thank you for contacting us regarding order %s. We have processed your refund request and the refund will be completed within 3 days. You will receive a confirmation email once the refund has been processed."

	invalidOrderFirstTemplate = "We cannot find order %s in our system. Please check your order ID and try again. You can find your order ID in your purchase confirmation email."

	invalidOrderRepeatTemplate = "We still cannot find order %s in our system. Please double-check your order ID or contact our support team directly for assistance."

	askForOrderIDInstruction = "Customer is requesting a refund but didn't provide an order ID. Ask them to provide their order ID so we can process the refund."

	fallbackReply = "Thank you for contacting us. We have received your message and will get back to you soon."
)

// handleRefund resolves a refund email against the order ledger. Each
// email takes exactly one branch: no extractable id, a matched order,
// or an unknown id.
func (e *Engine) handleRefund(ctx context.Context, mailbox Mailbox, msg *models.Message, email *models.ProcessedEmail) error {
	orderID := e.extractOrderID(ctx, msg.Body)
	if orderID.Degraded {
		fmt.Printf("[TRIAGE] WARNING: Order id extraction failed for message %s, using pattern fallback: %v\n",
			msg.ID, orderID.Cause)
	}

	if orderID.Value == "" {
		return e.requestOrderID(ctx, mailbox, msg, email)
	}

	order, err := e.ledger.GetByOrderID(ctx, orderID.Value)
	if err != nil {
		return fmt.Errorf("failed to look up order %s: %v", orderID.Value, err)
	}
	if order == nil {
		return e.handleInvalidOrder(ctx, mailbox, msg, email, orderID.Value)
	}
	return e.approveRefund(ctx, mailbox, msg, email, order)
}

func (e *Engine) extractOrderID(ctx context.Context, body string) Outcome[string] {
	id, err := e.assistant.ExtractOrderID(ctx, body)
	if err != nil {
		return Degraded(extractOrderIDFallback(body), err)
	}
	if id == "" {
		return Ok(extractOrderIDFallback(body))
	}
	return Ok(strings.ToUpper(id))
}

// requestOrderID asks the customer to supply their order id.
func (e *Engine) requestOrderID(ctx context.Context, mailbox Mailbox, msg *models.Message, email *models.ProcessedEmail) error {
	instruction := askForOrderIDInstruction
	if hint := language.ReplyInstruction(msg.Body); hint != "" {
		instruction += " " + hint
	}

	reply := e.generateReply(ctx, msg.Body, instruction)
	if reply.Degraded {
		fmt.Printf("[TRIAGE] WARNING: Reply generation failed for message %s, using fallback text: %v\n",
			msg.ID, reply.Cause)
	}
	e.sendReply(ctx, mailbox, msg, email, reply.Value)

	return e.createRefundRecord(ctx, &models.RefundRequestRecord{
		EmailID:       email.ID,
		CustomerEmail: email.SenderEmail,
		Status:        models.RefundRequestWaitingForOrderID,
	})
}

// approveRefund marks the matched order as refund requested and
// confirms to the customer.
func (e *Engine) approveRefund(ctx context.Context, mailbox Mailbox, msg *models.Message, email *models.ProcessedEmail, order *models.Order) error {
	if err := e.ledger.SetRefundRequested(ctx, order.ID, email.ProcessedAt); err != nil {
		return fmt.Errorf("failed to mark order %s refund requested: %v", order.OrderID, err)
	}

	e.sendReply(ctx, mailbox, msg, email, fmt.Sprintf(refundApprovedTemplate, order.OrderID))

	return e.createRefundRecord(ctx, &models.RefundRequestRecord{
		EmailID:          email.ID,
		OrderID:          &order.ID,
		CustomerEmail:    email.SenderEmail,
		RequestedOrderID: &order.OrderID,
		Status:           models.RefundRequestApproved,
	})
}

// handleInvalidOrder tracks repeated citations of the same unknown
// order id per customer and escalates tone on the second attempt.
func (e *Engine) handleInvalidOrder(ctx context.Context, mailbox Mailbox, msg *models.Message, email *models.ProcessedEmail, orderID string) error {
	attempts, err := e.records.UpsertInvalidOrderAttempt(ctx, email.SenderEmail, orderID, email.Body)
	if err != nil {
		return fmt.Errorf("failed to record invalid order attempt for %s: %v", orderID, err)
	}

	template := invalidOrderFirstTemplate
	if attempts > 1 {
		template = invalidOrderRepeatTemplate
	}
	e.sendReply(ctx, mailbox, msg, email, fmt.Sprintf(template, orderID))

	return e.createRefundRecord(ctx, &models.RefundRequestRecord{
		EmailID:          email.ID,
		CustomerEmail:    email.SenderEmail,
		RequestedOrderID: &orderID,
		Status:           models.RefundRequestInvalidOrderID,
	})
}

func (e *Engine) generateReply(ctx context.Context, body, instruction string) Outcome[string] {
	reply, err := e.assistant.GenerateReply(ctx, body, instruction)
	if err != nil {
		return Degraded(fallbackReply, err)
	}
	return Ok(reply)
}

func (e *Engine) createRefundRecord(ctx context.Context, rec *models.RefundRequestRecord) error {
	if err := e.records.CreateRefundRequest(ctx, rec); err != nil {
		return fmt.Errorf("failed to create refund request for email %d: %v", rec.EmailID, err)
	}
	return nil
}
