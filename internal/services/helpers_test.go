package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/justsurfingit/jobtracker/internal/database"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/policy"
	"github.com/justsurfingit/jobtracker/internal/queue"
	"github.com/justsurfingit/jobtracker/internal/storage"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	return database.NewTestDB(t)
}

func createUser(t *testing.T, db *gorm.DB, email string, admin bool) (*models.User, *policy.Principal) {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Admin: admin}
	require.NoError(t, db.Create(u).Error)
	return u, &policy.Principal{UserID: u.ID, Admin: admin}
}

func ptr(s string) *string { return &s }

// recordingQueue remembers every enqueued id.
type recordingQueue struct {
	mu  sync.Mutex
	ids []uint
	err error
}

var _ queue.Queue = (*recordingQueue)(nil)

func (q *recordingQueue) Enqueue(_ context.Context, id uint) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}

func (q *recordingQueue) Consume(ctx context.Context, _ int, _ queue.Handler) error {
	<-ctx.Done()
	return nil
}

func (q *recordingQueue) Close() error { return nil }

func (q *recordingQueue) enqueued() []uint {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]uint(nil), q.ids...)
}

// flakyStorage fails Open a fixed number of times before delegating.
type flakyStorage struct {
	inner    storage.Storage
	failures int
	opens    int
}

func (s *flakyStorage) Save(ctx context.Context, key string, r io.Reader, ct string) error {
	return s.inner.Save(ctx, key, r, ct)
}

func (s *flakyStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.opens++
	if s.opens <= s.failures {
		return nil, errors.New("connection reset")
	}
	return s.inner.Open(ctx, key)
}

func (s *flakyStorage) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// scriptedModel answers prompts with canned responses in order.
type scriptedModel struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
	err       error
}

var _ llms.Model = (*scriptedModel)(nil)

func (m *scriptedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	var prompt string
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				prompt += text.Text
			}
		}
	}
	out, err := m.Call(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: out}}}, nil
}

func (m *scriptedModel) Call(_ context.Context, prompt string, _ ...llms.CallOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.responses) == 0 {
		return "", errors.New("no scripted response left")
	}
	out := m.responses[0]
	m.responses = m.responses[1:]
	return out, nil
}
