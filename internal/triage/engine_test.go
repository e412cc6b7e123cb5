package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailagent/internal/models"
)

type fakeMailbox struct {
	messages map[string]*models.Message
	unread   []string
	sent     []string
	marked   []string
	fetchErr error
	sendErr  error
	markErr  error
}

func (m *fakeMailbox) ListUnread(ctx context.Context, max int) ([]string, error) {
	return m.unread, nil
}

func (m *fakeMailbox) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	msg, ok := m.messages[id]
	if !ok {
		return nil, fmt.Errorf("no message %s", id)
	}
	return msg, nil
}

func (m *fakeMailbox) SendReply(ctx context.Context, original *models.Message, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, body)
	return nil
}

func (m *fakeMailbox) MarkRead(ctx context.Context, id string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.marked = append(m.marked, id)
	return nil
}

type fakeAssistant struct {
	category      models.EmailCategory
	categoryErr   error
	orderID       string
	orderIDErr    error
	importance    models.ImportanceLevel
	importanceErr error
	reply         string
	replyErr      error
	answer        string
	answerOK      bool
	answerErr     error
}

func (a *fakeAssistant) Categorize(ctx context.Context, subject, body string) (models.EmailCategory, error) {
	return a.category, a.categoryErr
}

func (a *fakeAssistant) ExtractOrderID(ctx context.Context, body string) (string, error) {
	return a.orderID, a.orderIDErr
}

func (a *fakeAssistant) RateImportance(ctx context.Context, body string) (models.ImportanceLevel, error) {
	return a.importance, a.importanceErr
}

func (a *fakeAssistant) GenerateReply(ctx context.Context, emailBody, instruction string) (string, error) {
	return a.reply, a.replyErr
}

func (a *fakeAssistant) AnswerWithContext(ctx context.Context, question string, chunks []string) (string, bool, error) {
	return a.answer, a.answerOK, a.answerErr
}

type fakeKnowledge struct {
	chunks    []string
	searchErr error
}

func (k *fakeKnowledge) Search(ctx context.Context, query string, limit int) ([]string, error) {
	return k.chunks, k.searchErr
}

type unhandledEntry struct {
	emailID    int
	importance models.ImportanceLevel
	reason     string
}

type fakeRecords struct {
	nextID         int
	processed      map[string]*models.ProcessedEmail
	responseSent   map[int]bool
	unhandled      []unhandledEntry
	refundRequests []*models.RefundRequestRecord
	attempts       map[string]*models.InvalidOrderAttempt
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		processed:    make(map[string]*models.ProcessedEmail),
		responseSent: make(map[int]bool),
		attempts:     make(map[string]*models.InvalidOrderAttempt),
	}
}

func (r *fakeRecords) IsProcessed(ctx context.Context, gmailMessageID string) (bool, error) {
	_, ok := r.processed[gmailMessageID]
	return ok, nil
}

func (r *fakeRecords) InsertProcessedEmail(ctx context.Context, email *models.ProcessedEmail) (bool, error) {
	if _, ok := r.processed[email.GmailMessageID]; ok {
		return false, nil
	}
	r.nextID++
	email.ID = r.nextID
	email.ProcessedAt = time.Now()
	stored := *email
	r.processed[email.GmailMessageID] = &stored
	return true, nil
}

func (r *fakeRecords) MarkResponseSent(ctx context.Context, emailID int) error {
	r.responseSent[emailID] = true
	return nil
}

func (r *fakeRecords) CreateUnhandled(ctx context.Context, emailID int, importance models.ImportanceLevel, reason string) error {
	r.unhandled = append(r.unhandled, unhandledEntry{emailID, importance, reason})
	return nil
}

func (r *fakeRecords) CreateRefundRequest(ctx context.Context, rec *models.RefundRequestRecord) error {
	r.refundRequests = append(r.refundRequests, rec)
	return nil
}

func (r *fakeRecords) UpsertInvalidOrderAttempt(ctx context.Context, customerEmail, invalidOrderID, body string) (int, error) {
	key := customerEmail + "|" + invalidOrderID
	attempt, ok := r.attempts[key]
	if !ok {
		r.attempts[key] = &models.InvalidOrderAttempt{
			CustomerEmail:  customerEmail,
			InvalidOrderID: invalidOrderID,
			EmailContent:   body,
			AttemptCount:   1,
		}
		return 1, nil
	}
	attempt.AttemptCount++
	attempt.EmailContent = body
	return attempt.AttemptCount, nil
}

type fakeLedger struct {
	orders map[string]*models.Order
}

func (l *fakeLedger) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	return l.orders[orderID], nil
}

func (l *fakeLedger) SetRefundRequested(ctx context.Context, id int, when time.Time) error {
	for _, order := range l.orders {
		if order.ID == id {
			status := models.RefundRequested
			order.RefundStatus = &status
			order.RefundRequestedAt = &when
			return nil
		}
	}
	return fmt.Errorf("no order with id %d", id)
}

func testUser() *models.User {
	return &models.User{ID: 1, Email: "agent@example.com", IsActive: true}
}

func questionSetup() (*Engine, *fakeMailbox, *fakeRecords) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "Jane Doe <jane@x.com>", Subject: "Shipping?", Body: "How long does shipping take?"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryQuestion, answer: "Shipping takes five days.", answerOK: true}
	knowledge := &fakeKnowledge{chunks: []string{"Shipping takes five business days."}}
	records := newFakeRecords()
	engine := NewEngine(assistant, knowledge, records, &fakeLedger{}, 3)
	return engine, mailbox, records
}

func TestProcessMessage_Idempotency(t *testing.T) {
	engine, mailbox, records := questionSetup()

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))
	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	assert.Len(t, records.processed, 1)
	assert.Len(t, mailbox.sent, 1)
}

func TestProcessMessage_QuestionAnswered(t *testing.T) {
	engine, mailbox, records := questionSetup()

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	require.Len(t, mailbox.sent, 1)
	assert.Equal(t, "Shipping takes five days.", mailbox.sent[0])
	assert.True(t, records.responseSent[1])
	assert.Equal(t, []string{"msg-1"}, mailbox.marked)

	email := records.processed["msg-1"]
	require.NotNil(t, email)
	assert.Equal(t, models.CategoryQuestion, email.Category)
	assert.Equal(t, "jane@x.com", email.SenderEmail)
}

func TestProcessMessage_QuestionEmptyKnowledgeBase(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "jane@x.com", Subject: "Help", Body: "What is your warranty?"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryQuestion}
	records := newFakeRecords()
	engine := NewEngine(assistant, &fakeKnowledge{}, records, &fakeLedger{}, 3)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	assert.Empty(t, mailbox.sent)
	require.Len(t, records.unhandled, 1)
	assert.Equal(t, models.ImportanceHigh, records.unhandled[0].importance)
	assert.Equal(t, noKnowledgeReason, records.unhandled[0].reason)
	assert.False(t, records.responseSent[1])
}

func TestProcessMessage_QuestionInsufficientContext(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "jane@x.com", Subject: "Help", Body: "Do you ship to Mars?"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryQuestion, answerOK: false}
	knowledge := &fakeKnowledge{chunks: []string{"Shipping takes five business days."}}
	records := newFakeRecords()
	engine := NewEngine(assistant, knowledge, records, &fakeLedger{}, 3)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	assert.Empty(t, mailbox.sent)
	require.Len(t, records.unhandled, 1)
	assert.Equal(t, models.ImportanceHigh, records.unhandled[0].importance)
}

func TestProcessMessage_RefundValidOrder(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "jane@x.com", Subject: "Refund", Body: "Please refund order #ORD001"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryRefund, orderID: "ORD001"}
	ledger := &fakeLedger{orders: map[string]*models.Order{
		"ORD001": {ID: 7, OrderID: "ORD001", CustomerEmail: "jane@x.com", Amount: 99.99},
	}}
	records := newFakeRecords()
	engine := NewEngine(assistant, &fakeKnowledge{}, records, ledger, 3)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	order := ledger.orders["ORD001"]
	require.NotNil(t, order.RefundStatus)
	assert.Equal(t, models.RefundRequested, *order.RefundStatus)
	assert.NotNil(t, order.RefundRequestedAt)

	require.Len(t, mailbox.sent, 1)
	assert.Contains(t, mailbox.sent[0], "ORD001")
	assert.Contains(t, mailbox.sent[0], "3 days")

	require.Len(t, records.refundRequests, 1)
	rec := records.refundRequests[0]
	assert.Equal(t, models.RefundRequestApproved, rec.Status)
	require.NotNil(t, rec.OrderID)
	assert.Equal(t, 7, *rec.OrderID)
	assert.True(t, records.responseSent[1])
}

func TestProcessMessage_RefundInvalidOrderEscalates(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "c@x.com", Subject: "Refund", Body: "Refund order XYZ999 now"},
			"msg-2": {ID: "msg-2", Sender: "c@x.com", Subject: "Refund again", Body: "I said refund XYZ999!"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryRefund, orderID: "XYZ999"}
	records := newFakeRecords()
	engine := NewEngine(assistant, &fakeKnowledge{}, records, &fakeLedger{}, 3)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))
	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-2"))

	require.Len(t, records.attempts, 1)
	attempt := records.attempts["c@x.com|XYZ999"]
	require.NotNil(t, attempt)
	assert.Equal(t, 2, attempt.AttemptCount)
	assert.Equal(t, "I said refund XYZ999!", attempt.EmailContent)

	require.Len(t, records.refundRequests, 2)
	for _, rec := range records.refundRequests {
		assert.Equal(t, models.RefundRequestInvalidOrderID, rec.Status)
		assert.Nil(t, rec.OrderID)
		require.NotNil(t, rec.RequestedOrderID)
		assert.Equal(t, "XYZ999", *rec.RequestedOrderID)
	}

	require.Len(t, mailbox.sent, 2)
	assert.NotEqual(t, mailbox.sent[0], mailbox.sent[1])
	assert.Contains(t, mailbox.sent[0], "XYZ999")
	assert.Contains(t, mailbox.sent[1], "still cannot find")
}

func TestProcessMessage_RefundSeparateInvalidIDsTrackedIndependently(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "c@x.com", Subject: "Refund", Body: "Refund order AAA111"},
			"msg-2": {ID: "msg-2", Sender: "c@x.com", Subject: "Refund", Body: "Refund order BBB222"},
		},
	}
	records := newFakeRecords()
	assistant := &fakeAssistant{category: models.CategoryRefund, orderIDErr: errors.New("model unavailable")}
	engine := NewEngine(assistant, &fakeKnowledge{}, records, &fakeLedger{}, 3)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))
	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-2"))

	assert.Len(t, records.attempts, 2)
	assert.Equal(t, 1, records.attempts["c@x.com|AAA111"].AttemptCount)
	assert.Equal(t, 1, records.attempts["c@x.com|BBB222"].AttemptCount)
}

func TestProcessMessage_RefundNoOrderID(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "jane@x.com", Subject: "Refund", Body: "I want my money back"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryRefund, reply: "Could you share your order ID?"}
	records := newFakeRecords()
	engine := NewEngine(assistant, &fakeKnowledge{}, records, &fakeLedger{}, 3)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	require.Len(t, mailbox.sent, 1)
	assert.Equal(t, "Could you share your order ID?", mailbox.sent[0])

	require.Len(t, records.refundRequests, 1)
	rec := records.refundRequests[0]
	assert.Equal(t, models.RefundRequestWaitingForOrderID, rec.Status)
	assert.Nil(t, rec.OrderID)
	assert.True(t, records.responseSent[1])
}

func TestProcessMessage_RefundNoOrderID_GenerationFallback(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "jane@x.com", Subject: "Refund", Body: "money back please"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryRefund, replyErr: errors.New("model down")}
	records := newFakeRecords()
	engine := NewEngine(assistant, &fakeKnowledge{}, records, &fakeLedger{}, 3)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	require.Len(t, mailbox.sent, 1)
	assert.Equal(t, fallbackReply, mailbox.sent[0])
	require.Len(t, records.refundRequests, 1)
	assert.Equal(t, models.RefundRequestWaitingForOrderID, records.refundRequests[0].Status)
}

func TestProcessMessage_OtherFilesUnhandled(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "spam@x.com", Subject: "hello", Body: "buy cheap watches"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryOther, importance: models.ImportanceLow}
	records := newFakeRecords()
	engine := NewEngine(assistant, &fakeKnowledge{}, records, &fakeLedger{}, 3)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	assert.Empty(t, mailbox.sent)
	require.Len(t, records.unhandled, 1)
	assert.Equal(t, models.ImportanceLow, records.unhandled[0].importance)
	assert.Equal(t, otherReason, records.unhandled[0].reason)
}

func TestProcessMessage_ClassifierFailureDegradesToOther(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "jane@x.com", Subject: "??", Body: "???"},
		},
	}
	assistant := &fakeAssistant{
		categoryErr:   errors.New("model timeout"),
		importanceErr: errors.New("model timeout"),
	}
	records := newFakeRecords()
	engine := NewEngine(assistant, &fakeKnowledge{}, records, &fakeLedger{}, 3)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	email := records.processed["msg-1"]
	require.NotNil(t, email)
	assert.Equal(t, models.CategoryOther, email.Category)

	require.Len(t, records.unhandled, 1)
	assert.Equal(t, models.ImportanceMedium, records.unhandled[0].importance)
}

func TestProcessMessage_SendFailureLeavesResponseUnsent(t *testing.T) {
	engine, mailbox, records := questionSetup()
	mailbox.sendErr = errors.New("smtp down")

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	assert.Empty(t, mailbox.sent)
	assert.False(t, records.responseSent[1])
	// The processed record stays so the message is not retried.
	assert.Len(t, records.processed, 1)
}

func TestProcessMessage_MarkReadFailureSwallowed(t *testing.T) {
	engine, mailbox, records := questionSetup()
	mailbox.markErr = errors.New("gmail 500")

	err := engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1")

	require.NoError(t, err)
	assert.Len(t, mailbox.sent, 1)
	assert.True(t, records.responseSent[1])
}

func TestProcessUserEmails_MessageFailureIsolation(t *testing.T) {
	mailbox := &fakeMailbox{
		unread: []string{"missing", "msg-1"},
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "jane@x.com", Subject: "Shipping?", Body: "How long does shipping take?"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryQuestion, answer: "Five days.", answerOK: true}
	knowledge := &fakeKnowledge{chunks: []string{"Shipping takes five business days."}}
	records := newFakeRecords()
	engine := NewEngine(assistant, knowledge, records, &fakeLedger{}, 3)

	require.NoError(t, engine.ProcessUserEmails(context.Background(), mailbox, testUser(), 10))

	assert.Len(t, records.processed, 1)
	assert.Len(t, mailbox.sent, 1)
}

func TestProcessMessage_ReplyLanguageFollowsCustomer(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "jane@x.com", Subject: "החזר", Body: "אני רוצה החזר כספי"},
		},
	}
	var gotInstruction string
	assistant := &instructionRecorder{
		fakeAssistant: fakeAssistant{category: models.CategoryRefund, reply: "בסדר"},
		instruction:   &gotInstruction,
	}
	records := newFakeRecords()
	engine := NewEngine(assistant, &fakeKnowledge{}, records, &fakeLedger{}, 3)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	assert.True(t, strings.Contains(gotInstruction, "Hebrew"))
}

type fakeNotifier struct {
	notified []string
}

func (n *fakeNotifier) NotifyUnhandled(senderEmail, subject, reason string) error {
	n.notified = append(n.notified, senderEmail)
	return nil
}

func TestProcessMessage_HighImportanceEscalated(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "jane@x.com", Subject: "Urgent", Body: "What is your warranty?"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryQuestion}
	records := newFakeRecords()
	notifier := &fakeNotifier{}
	engine := NewEngine(assistant, &fakeKnowledge{}, records, &fakeLedger{}, 3)
	engine.SetNotifier(notifier)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	assert.Equal(t, []string{"jane@x.com"}, notifier.notified)
}

func TestProcessMessage_LowImportanceNotEscalated(t *testing.T) {
	mailbox := &fakeMailbox{
		messages: map[string]*models.Message{
			"msg-1": {ID: "msg-1", Sender: "spam@x.com", Subject: "hi", Body: "buy cheap watches"},
		},
	}
	assistant := &fakeAssistant{category: models.CategoryOther, importance: models.ImportanceLow}
	records := newFakeRecords()
	notifier := &fakeNotifier{}
	engine := NewEngine(assistant, &fakeKnowledge{}, records, &fakeLedger{}, 3)
	engine.SetNotifier(notifier)

	require.NoError(t, engine.ProcessMessage(context.Background(), mailbox, testUser(), "msg-1"))

	assert.Empty(t, notifier.notified)
}

type instructionRecorder struct {
	fakeAssistant
	instruction *string
}

func (a *instructionRecorder) GenerateReply(ctx context.Context, emailBody, instruction string) (string, error) {
	*a.instruction = instruction
	return a.fakeAssistant.GenerateReply(ctx, emailBody, instruction)
}
