// Package scheduler drives the triage engine: a periodic loop that
// walks active users and processes each one's unread mail.
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"mailagent/internal/config"
	"mailagent/internal/models"
	"mailagent/internal/triage"
)

// EmailProcessor is the engine surface the loop drives.
type EmailProcessor interface {
	ProcessUserEmails(ctx context.Context, mailbox triage.Mailbox, user *models.User, max int) error
}

// UserSource lists the users whose inboxes get processed.
type UserSource interface {
	ListActive(ctx context.Context) ([]models.User, error)
}

// MailboxFactory opens an authenticated mailbox session for one user.
type MailboxFactory func(ctx context.Context, user *models.User) (triage.Mailbox, error)

// Scheduler runs processing passes at a fixed interval, backing off
// after a systemic failure. Cancellation takes effect between users,
// never mid-message.
type Scheduler struct {
	processor    EmailProcessor
	users        UserSource
	newMailbox   MailboxFactory
	pollInterval time.Duration
	errorBackoff time.Duration
	maxMessages  int
	running      atomic.Bool
}

func New(cfg *config.Config, processor EmailProcessor, users UserSource, newMailbox MailboxFactory) *Scheduler {
	return &Scheduler{
		processor:    processor,
		users:        users,
		newMailbox:   newMailbox,
		pollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		errorBackoff: time.Duration(cfg.ErrorBackoffSeconds) * time.Second,
		maxMessages:  cfg.MaxMessagesPerUser,
	}
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Run blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	s.running.Store(true)
	defer s.running.Store(false)

	fmt.Printf("[SCHEDULER] Starting, poll interval %s\n", s.pollInterval)

	for {
		delay := s.pollInterval
		if err := s.runPass(ctx); err != nil {
			if ctx.Err() != nil {
				fmt.Printf("[SCHEDULER] Stopped\n")
				return
			}
			fmt.Printf("[SCHEDULER] Pass failed, backing off %s: %v\n", s.errorBackoff, err)
			delay = s.errorBackoff
		}

		select {
		case <-ctx.Done():
			fmt.Printf("[SCHEDULER] Stopped\n")
			return
		case <-time.After(delay):
		}
	}
}

func (s *Scheduler) runPass(ctx context.Context) error {
	users, err := s.users.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active users: %v", err)
	}

	for i := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.ProcessUser(ctx, &users[i]); err != nil {
			fmt.Printf("[SCHEDULER] Failed to process user %s: %v\n", users[i].Email, err)
		}
	}
	return nil
}

// ProcessUser runs one pass over a single user's inbox. Also used by
// the manual-trigger endpoint.
func (s *Scheduler) ProcessUser(ctx context.Context, user *models.User) error {
	mailbox, err := s.newMailbox(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to open mailbox for %s: %v", user.Email, err)
	}
	return s.processor.ProcessUserEmails(ctx, mailbox, user, s.maxMessages)
}
