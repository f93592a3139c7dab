package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/justsurfingit/jobtracker/internal/extractor"
	"github.com/justsurfingit/jobtracker/internal/logger"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/queue"
	"github.com/justsurfingit/jobtracker/internal/storage"
	"gorm.io/gorm"
)

// ExtractionService turns a pending resume into extracted text. Process is
// safe to run any number of times for the same resume.
type ExtractionService struct {
	DB        *gorm.DB
	Storage   storage.Storage
	Extractor *extractor.Extractor
	Queue     queue.Queue
	Retry     retryPolicy
}

func NewExtractionService(db *gorm.DB, store storage.Storage, q queue.Queue) *ExtractionService {
	return &ExtractionService{
		DB:        db,
		Storage:   store,
		Extractor: extractor.New(),
		Queue:     q,
		Retry: retryPolicy{
			Attempts:  3,
			Backoff:   500 * time.Millisecond,
			Permanent: func(err error) bool { return errors.Is(err, storage.ErrNotFound) },
		},
	}
}

// HandleTask is the queue handler. When the last delivery fails the resume is
// marked failed so it does not stay pending.
func (s *ExtractionService) HandleTask(ctx context.Context, m queue.Message) error {
	err := s.Process(ctx, m.ResumeID)
	if err == nil || !m.Final() {
		return err
	}

	logger.CtxWithError(ctx, "resume extraction out of attempts", err, "resume_id", m.ResumeID, "attempt", m.Attempt)
	text := extractor.FailedText
	if ferr := s.finish(ctx, m.ResumeID, &text, models.ExtractionFailed); ferr != nil {
		return errors.Join(err, ferr)
	}
	return err
}

// Process extracts one resume. It returns an error only for transient
// failures worth retrying.
func (s *ExtractionService) Process(ctx context.Context, resumeID uint) error {
	log := logger.FromContext(ctx).With("resume_id", resumeID)

	var resume models.Resume
	err := s.DB.WithContext(ctx).First(&resume, resumeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn("resume vanished before extraction")
		return nil
	}
	if err != nil {
		return err
	}
	if resume.ExtractionStatus != models.ExtractionPending {
		log.Debug("resume already processed, skipping", "status", resume.ExtractionStatus)
		return nil
	}
	if !resume.Attached() {
		return s.finish(ctx, resumeID, nil, models.ExtractionNone)
	}

	start := time.Now()
	rc, err := retry(ctx, s.Retry, func() (io.ReadCloser, error) {
		return s.Storage.Open(ctx, resume.StorageKey)
	})
	if errors.Is(err, storage.ErrNotFound) {
		log.Error("resume file missing from storage", "key", resume.StorageKey)
		text := extractor.FailedText
		return s.finish(ctx, resumeID, &text, models.ExtractionFailed)
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	res := s.Extractor.Extract(resume.FileName, rc)
	status := models.ExtractionDone
	if res.Failed {
		status = models.ExtractionFailed
		log.Warn("resume extraction failed", "kind", res.Kind.String(), "error", res.Err)
	}

	text := res.Text
	if err := s.finish(ctx, resumeID, &text, status); err != nil {
		return err
	}
	log.Info("resume extraction finished", "kind", res.Kind.String(), "status", status, "chars", len(text), "duration", time.Since(start))
	return nil
}

// finish writes the outcome only while the row is still pending, so the text
// is stored once even if two workers race on the same resume.
func (s *ExtractionService) finish(ctx context.Context, resumeID uint, text *string, status string) error {
	res := s.DB.WithContext(ctx).
		Model(&models.Resume{}).
		Where("id = ? AND extraction_status = ?", resumeID, models.ExtractionPending).
		Updates(map[string]any{
			"extracted_text":    text,
			"extraction_status": status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		logger.CtxInfo(ctx, "resume extraction already recorded", "resume_id", resumeID)
	}
	return nil
}

// RecoverPending re-enqueues every resume still waiting for extraction.
func (s *ExtractionService) RecoverPending(ctx context.Context) (int, error) {
	var ids []uint
	err := s.DB.WithContext(ctx).
		Model(&models.Resume{}).
		Where("extraction_status = ?", models.ExtractionPending).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}

	for i, id := range ids {
		if err := s.Queue.Enqueue(ctx, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}

func extractorKind(filename string) string {
	return extractor.KindFor(filename).String()
}
