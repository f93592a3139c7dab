package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/justsurfingit/jobtracker/internal/logger"
	"github.com/justsurfingit/jobtracker/internal/models"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const fullSyncQuery = "subject:(application OR interview OR update OR offer OR rejected OR status) newer_than:7d"

// Mailbox is the slice of the Gmail API the watcher uses.
type Mailbox interface {
	// Recent lists candidate messages from the last week and the current
	// history id.
	Recent(ctx context.Context) ([]*gmail.Message, uint64, error)
	// Since lists messages added after startID and the new history id.
	Since(ctx context.Context, startID uint64) ([]*gmail.Message, uint64, error)
}

type EmailService struct {
	DB       *gorm.DB
	LLM      *LLMService
	Matcher  *MatcherService
	Mailbox  Mailbox
	UserID   uint
	Interval time.Duration
}

func NewEmailService(db *gorm.DB, llm *LLMService, mailbox Mailbox, matcher *MatcherService, userID uint, interval time.Duration) *EmailService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &EmailService{
		DB:       db,
		LLM:      llm,
		Matcher:  matcher,
		Mailbox:  mailbox,
		UserID:   userID,
		Interval: interval,
	}
}

// Run syncs once immediately and then every Interval until ctx is done.
func (s *EmailService) Run(ctx context.Context) {
	if s.Mailbox == nil || s.LLM == nil {
		logger.Warn("Gmail watcher disabled: missing mailbox or LLM client")
		return
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		s.syncOnce(ctx)
		select {
		case <-ctx.Done():
			logger.Info("Gmail watcher stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *EmailService) syncOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := s.SyncEmails(ctx); err != nil {
		logger.WorkerLog("mail_sync", "sync", err, "user_id", s.UserID)
	}
}

// SyncEmails runs one cycle: full sync on first run or after history
// expiry, incremental otherwise.
func (s *EmailService) SyncEmails(ctx context.Context) error {
	state := models.MailboxState{UserID: s.UserID}
	if err := s.DB.WithContext(ctx).Where(models.MailboxState{UserID: s.UserID}).FirstOrCreate(&state).Error; err != nil {
		return fmt.Errorf("load mailbox state: %w", err)
	}

	var (
		messages     []*gmail.Message
		newHistoryID uint64
		err          error
	)
	if state.LastHistoryID == 0 {
		logger.Info("first mail sync, scanning the last 7 days", "user_id", s.UserID)
		messages, newHistoryID, err = s.Mailbox.Recent(ctx)
	} else {
		messages, newHistoryID, err = s.Mailbox.Since(ctx, state.LastHistoryID)
		if err != nil && isHistoryExpiredError(err) {
			logger.Warn("mail history id expired, falling back to full sync", "user_id", s.UserID)
			messages, newHistoryID, err = s.Mailbox.Recent(ctx)
		}
	}
	if err != nil {
		return err
	}

	processed, failed := 0, 0
	for _, msg := range messages {
		seen, err := s.alreadyProcessed(ctx, msg.Id)
		if err != nil {
			return err
		}
		if seen {
			continue
		}
		if err := s.ProcessMessage(ctx, msg); err != nil {
			logger.WorkerLog("mail_sync", "process message", err, "user_id", s.UserID, "message_id", msg.Id)
			failed++
			continue
		}
		if err := s.markProcessed(ctx, msg.Id); err != nil {
			return err
		}
		processed++
	}

	// a failed message must be listed again next cycle, so the bookmark
	// only moves when every candidate was handled
	if failed == 0 && newHistoryID > state.LastHistoryID {
		err := s.DB.WithContext(ctx).Model(&models.MailboxState{}).
			Where("user_id = ?", s.UserID).
			Update("last_history_id", newHistoryID).Error
		if err != nil {
			return fmt.Errorf("save mailbox state: %w", err)
		}
	}
	logger.Info("mail sync finished", "user_id", s.UserID, "candidates", len(messages), "processed", processed, "failed", failed, "history_id", newHistoryID)
	return nil
}

func (s *EmailService) alreadyProcessed(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.ProcessedEmail{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("dedup email %s: %w", id, err)
	}
	return count > 0, nil
}

func (s *EmailService) markProcessed(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedEmail{ID: id}).Error
	if err != nil {
		return fmt.Errorf("mark email %s processed: %w", id, err)
	}
	return nil
}

// ProcessMessage matches one email to a job, asks the LLM what it means and
// applies the new status with an audit event. A nil error means the email is
// done with, including when it is skipped; an error means it should be tried
// again on the next sync.
func (s *EmailService) ProcessMessage(ctx context.Context, msg *gmail.Message) error {
	headers := parseHeaders(msg)
	subject := headers["Subject"]
	log := logger.FromContext(ctx).With("message_id", msg.Id, "user_id", s.UserID)

	company, jobs, err := s.Matcher.FindJobsFromEmail(ctx, s.UserID, subject, headers["From"])
	if err != nil {
		return fmt.Errorf("match email to job: %w", err)
	}
	if len(jobs) == 0 {
		log.Debug("email skipped: no matching active job")
		return nil
	}

	body := getEmailBody(msg)
	target := &jobs[0]
	if len(jobs) > 1 {
		titles := make([]string, len(jobs))
		for i, j := range jobs {
			titles[i] = j.Title
		}
		idx, err := s.LLM.IdentifyJobRole(ctx, titles, subject, body)
		if err != nil {
			return err
		}
		if idx < 0 {
			log.Info("email skipped: could not tell which job it is about", "company", company, "candidates", len(jobs))
			return nil
		}
		target = &jobs[idx]
	}

	analysis, err := s.LLM.AnalyzeEmailStatus(ctx, company, subject, body)
	if err != nil {
		return err
	}
	if analysis.Status == VerdictNoChange || analysis.Status == VerdictUnknown || analysis.Status == target.Status {
		log.Debug("no status change", "job_id", target.ID, "verdict", analysis.Status)
		return nil
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(target).Update("status", analysis.Status).Error; err != nil {
			return err
		}
		return tx.Create(&models.JobEvent{
			JobID:     target.ID,
			EventType: "EMAIL_UPDATE",
			Details:   fmt.Sprintf("Status changed to %s. Summary: %s", analysis.Status, analysis.Summary),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("apply status to job %d: %w", target.ID, err)
	}
	log.Info("job status updated from email", "job_id", target.ID, "status", analysis.Status)
	return nil
}

// GmailMailbox reads the authorized user's mailbox.
type GmailMailbox struct {
	Service *gmail.Service
}

func (m *GmailMailbox) Recent(ctx context.Context) ([]*gmail.Message, uint64, error) {
	resp, err := retry(ctx, gmailRetry(3), func() (*gmail.ListMessagesResponse, error) {
		return m.Service.Users.Messages.List("me").Q(fullSyncQuery).MaxResults(50).Context(ctx).Do()
	})
	if err != nil {
		return nil, 0, err
	}

	// the profile history id becomes the new anchor
	profile, err := m.Service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return nil, 0, err
	}
	return m.expand(ctx, resp.Messages), profile.HistoryId, nil
}

func (m *GmailMailbox) Since(ctx context.Context, startID uint64) ([]*gmail.Message, uint64, error) {
	resp, err := retry(ctx, gmailRetry(3), func() (*gmail.ListHistoryResponse, error) {
		return m.Service.Users.History.List("me").
			StartHistoryId(startID).
			HistoryTypes("messageAdded").
			Context(ctx).Do()
	})
	if err != nil {
		return nil, 0, err
	}

	var headers []*gmail.Message
	for _, h := range resp.History {
		for _, added := range h.MessagesAdded {
			if added.Message != nil {
				headers = append(headers, added.Message)
			}
		}
	}
	return m.expand(ctx, headers), resp.HistoryId, nil
}

// expand fetches full messages; ones that keep failing are skipped.
func (m *GmailMailbox) expand(ctx context.Context, headers []*gmail.Message) []*gmail.Message {
	var full []*gmail.Message
	for _, h := range headers {
		msg, err := retry(ctx, gmailRetry(2), func() (*gmail.Message, error) {
			return m.Service.Users.Messages.Get("me", h.Id).Context(ctx).Do()
		})
		if err != nil {
			logger.Warn("failed to fetch email", "message_id", h.Id, "error", err)
			continue
		}
		full = append(full, msg)
	}
	return full
}

// gmailRetry fails fast on an expired history id so the caller can switch
// to a full sync.
func gmailRetry(attempts int) retryPolicy {
	return retryPolicy{Attempts: attempts, Backoff: time.Second, Permanent: isHistoryExpiredError}
}

func isHistoryExpiredError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusNotFound
	}
	return false
}

func parseHeaders(msg *gmail.Message) map[string]string {
	res := make(map[string]string)
	if msg.Payload == nil {
		return res
	}
	for _, h := range msg.Payload.Headers {
		res[h.Name] = h.Value
	}
	return res
}

// getEmailBody prefers text/plain, then text/html, searching nested parts.
func getEmailBody(msg *gmail.Message) string {
	if msg.Payload == nil {
		return ""
	}
	if msg.Payload.Body != nil && msg.Payload.Body.Data != "" {
		return decodeBody(msg.Payload.Body.Data)
	}
	for _, mime := range []string{"text/plain", "text/html"} {
		if body := findPart(msg.Payload.Parts, mime); body != "" {
			return body
		}
	}
	return ""
}

func findPart(parts []*gmail.MessagePart, mime string) string {
	for _, part := range parts {
		if part.MimeType == mime && part.Body != nil && part.Body.Data != "" {
			return decodeBody(part.Body.Data)
		}
		if body := findPart(part.Parts, mime); body != "" {
			return body
		}
	}
	return ""
}

// decodeBody accepts padded and unpadded base64url.
func decodeBody(data string) string {
	d, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(d)
}
