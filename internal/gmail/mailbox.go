package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"mailagent/internal/database"
	"mailagent/internal/models"
)

// Mailbox is an authenticated Gmail session for one linked user.
type Mailbox struct {
	service *gmail.Service
}

// NewMailbox builds a mailbox session from a user's stored tokens.
// Refreshed access tokens are written back so the stored credentials
// stay usable across restarts.
func NewMailbox(ctx context.Context, conf *oauth2.Config, user *models.User, users *database.UserStore) (*Mailbox, error) {
	token := &oauth2.Token{
		AccessToken:  user.GmailToken,
		RefreshToken: user.GmailRefreshToken,
	}
	if token.RefreshToken != "" {
		// Stored tokens carry no expiry; force a refresh so a stale
		// access token is replaced before the first API call.
		token.Expiry = time.Now().Add(-time.Minute)
	}

	source := conf.TokenSource(ctx, token)

	fresh, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token for %s: %v", user.Email, err)
	}
	if fresh.AccessToken != user.GmailToken && users != nil {
		if err := users.UpdateAccessToken(ctx, user.ID, fresh.AccessToken); err != nil {
			fmt.Printf("[GMAIL] WARNING: Failed to persist refreshed token for %s: %v\n", user.Email, err)
		}
	}

	service, err := gmail.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %v", err)
	}

	return &Mailbox{service: service}, nil
}

// ListUnread returns the ids of unread inbox messages, capped at max.
func (m *Mailbox) ListUnread(ctx context.Context, max int) ([]string, error) {
	req := m.service.Users.Messages.List("me").Q("is:unread")
	if max > 0 {
		req = req.MaxResults(int64(max))
	}

	resp, err := req.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list unread messages: %v", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

// GetMessage fetches one message with headers and body.
func (m *Mailbox) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	msg, err := m.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %v", id, err)
	}
	return parseMessage(msg), nil
}

// SendReply sends a plain-text reply threaded onto the original
// message.
func (m *Mailbox) SendReply(ctx context.Context, original *models.Message, body string) error {
	raw := buildRawReply(original, body)

	_, err := m.service.Users.Messages.Send("me", &gmail.Message{
		Raw:      base64.URLEncoding.EncodeToString([]byte(raw)),
		ThreadId: original.ThreadID,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to send reply to %s: %v", original.Sender, err)
	}
	return nil
}

// MarkRead removes the UNREAD label from a message.
func (m *Mailbox) MarkRead(ctx context.Context, id string) error {
	_, err := m.service.Users.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	return err
}

func parseMessage(msg *gmail.Message) *models.Message {
	parsed := &models.Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
	}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "From":
				parsed.Sender = header.Value
			case "Subject":
				parsed.Subject = header.Value
			case "Message-ID", "Message-Id":
				parsed.HeaderID = header.Value
			}
		}
		parsed.Body = parseBody(msg.Payload)
	}

	if parsed.Body == "" {
		parsed.Body = msg.Snippet
	}
	return parsed
}

// parseBody walks the MIME tree and returns the first text/plain part,
// falling back to text/html when no plain part exists.
func parseBody(payload *gmail.MessagePart) string {
	text, html := extractParts(payload)
	if text != "" {
		return text
	}
	return html
}

func extractParts(payload *gmail.MessagePart) (text, html string) {
	if payload == nil {
		return "", ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		data, err := base64.URLEncoding.DecodeString(payload.Body.Data)
		if err == nil {
			switch payload.MimeType {
			case "text/plain":
				text = string(data)
			case "text/html":
				html = string(data)
			}
		}
	}

	for _, part := range payload.Parts {
		t, h := extractParts(part)
		if text == "" {
			text = t
		}
		if html == "" {
			html = h
		}
	}

	return text, html
}

func buildRawReply(original *models.Message, body string) string {
	subject := original.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	var sb strings.Builder
	sb.WriteString("To: " + original.Sender + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	if original.HeaderID != "" {
		sb.WriteString("In-Reply-To: " + original.HeaderID + "\r\n")
		sb.WriteString("References: " + original.HeaderID + "\r\n")
	}
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	return sb.String()
}
