package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PostMessage appends a message from userID to the public feed.
func (s *Service) PostMessage(ctx context.Context, userID, text string) (*FeedMessage, error) {
	text = strings.TrimSpace(text)
	if userID == "" || text == "" {
		return nil, fmt.Errorf("%w: user id and message are required", ErrValidation)
	}
	author, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m := &Message{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      text,
		CreatedAt: s.timestamp(),
	}
	if err := s.store.CreateMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return &FeedMessage{Message: *m, Username: author.Username}, nil
}

// ListMessages returns the feed, newest first, with author usernames.
func (s *Service) ListMessages(ctx context.Context) ([]FeedMessage, error) {
	return s.store.ListMessages(ctx)
}
