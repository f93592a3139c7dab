package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/logger"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/policy"
	"github.com/justsurfingit/jobtracker/internal/queue"
	"github.com/justsurfingit/jobtracker/internal/storage"
	"gorm.io/gorm"
)

// Upload is a resume file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ResumeService struct {
	DB      *gorm.DB
	Storage storage.Storage
	Queue   queue.Queue
	MaxSize int64
}

func NewResumeService(db *gorm.DB, store storage.Storage, q queue.Queue, maxSize int64) *ResumeService {
	return &ResumeService{DB: db, Storage: store, Queue: q, MaxSize: maxSize}
}

// Create stores the file, persists the resume as pending and enqueues it for
// extraction once the row exists. A nil upload saves a resume with no file
// and schedules nothing.
func (s *ResumeService) Create(ctx context.Context, p *policy.Principal, up *Upload) (*models.Resume, error) {
	if !policy.Authorize(p, policy.ActionCreate, nil) {
		return nil, apperrors.ErrNotAuthorized
	}

	resume := &models.Resume{UserID: p.UserID, ExtractionStatus: models.ExtractionNone}
	if up == nil {
		if err := s.DB.WithContext(ctx).Create(resume).Error; err != nil {
			return nil, apperrors.InternalError(err)
		}
		return resume, nil
	}

	if s.MaxSize > 0 && up.Size > s.MaxSize {
		return nil, apperrors.ErrFileTooLarge.WithDetails(map[string]int64{"max_bytes": s.MaxSize})
	}

	name := cleanFileName(up.FileName)
	key := storage.NewKey(fmt.Sprintf("resumes/%d", p.UserID), name)
	if err := s.Storage.Save(ctx, key, up.Body, up.ContentType); err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("store resume: %w", err))
	}

	resume.FileName = name
	resume.ContentType = up.ContentType
	resume.SizeBytes = up.Size
	resume.StorageKey = key
	resume.ExtractionStatus = models.ExtractionPending
	if err := s.DB.WithContext(ctx).Create(resume).Error; err != nil {
		if derr := s.Storage.Delete(ctx, key); derr != nil {
			logger.CtxWithError(ctx, "failed to remove orphaned resume file", derr, "key", key)
		}
		return nil, apperrors.InternalError(err)
	}

	// the row stays pending if this fails; RecoverPending picks it up at boot
	if err := s.Queue.Enqueue(ctx, resume.ID); err != nil {
		logger.CtxWithError(ctx, "failed to enqueue resume extraction", err, "resume_id", resume.ID)
	} else {
		logger.CtxInfo(ctx, "resume extraction queued", "resume_id", resume.ID, "kind", extractorKind(name))
	}
	return resume, nil
}

func (s *ResumeService) List(ctx context.Context, p *policy.Principal) ([]models.Resume, error) {
	var resumes []models.Resume
	err := policy.Scope(s.DB.WithContext(ctx), p).
		Order("created_at DESC, id DESC").
		Find(&resumes).Error
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resumes, nil
}

func (s *ResumeService) Get(ctx context.Context, p *policy.Principal, id uint) (*models.Resume, error) {
	if p == nil {
		return nil, apperrors.ErrNotAuthorized
	}

	var resume models.Resume
	err := s.DB.WithContext(ctx).First(&resume, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotAuthorized
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !policy.Authorize(p, policy.ActionView, &resume) {
		return nil, apperrors.ErrNotAuthorized
	}
	return &resume, nil
}

// cleanFileName drops any client supplied directory part.
func cleanFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "resume"
	}
	return name
}
