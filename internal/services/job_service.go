package services

import (
	"context"
	"errors"
	"time"

	"github.com/justsurfingit/jobtracker/internal/apperrors"
	"github.com/justsurfingit/jobtracker/internal/dtos"
	"github.com/justsurfingit/jobtracker/internal/models"
	"github.com/justsurfingit/jobtracker/internal/policy"
	"github.com/justsurfingit/jobtracker/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type JobService struct {
	DB        *gorm.DB
	validator *validator.Validator
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{
		DB:        db,
		validator: validator.New(),
	}
}

// List returns the jobs p may see, newest first.
func (s *JobService) List(ctx context.Context, p *policy.Principal) ([]models.Job, error) {
	var jobs []models.Job
	err := policy.Scope(s.DB.WithContext(ctx), p).
		Order("created_at DESC, id DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return jobs, nil
}

// Get loads a job and checks action against it. A missing job and a job p
// may not touch produce the same error.
func (s *JobService) Get(ctx context.Context, p *policy.Principal, id uint, action policy.Action) (*models.Job, error) {
	if p == nil {
		return nil, apperrors.ErrNotAuthorized
	}

	var job models.Job
	err := s.DB.WithContext(ctx).First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotAuthorized
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !policy.Authorize(p, action, &job) {
		return nil, apperrors.ErrNotAuthorized
	}
	return &job, nil
}

// Create validates params and inserts a job owned by p. On validation
// failure the returned job holds the rejected values and nothing is written.
func (s *JobService) Create(ctx context.Context, p *policy.Principal, params dtos.JobParams) (*models.Job, error) {
	if !policy.Authorize(p, policy.ActionCreate, nil) {
		return nil, apperrors.ErrNotAuthorized
	}

	var form dtos.JobForm
	params.Apply(&form)
	job, err := s.build(&form, &models.Job{UserID: p.UserID})
	if err != nil {
		return job, err
	}

	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return job, nil
}

func (s *JobService) Update(ctx context.Context, p *policy.Principal, id uint, params dtos.JobParams) (*models.Job, error) {
	job, err := s.Get(ctx, p, id, policy.ActionUpdate)
	if err != nil {
		return nil, err
	}

	form := formFromJob(job)
	params.Apply(&form)
	updated, err := s.build(&form, job)
	if err != nil {
		return updated, err
	}

	if err := s.DB.WithContext(ctx).Save(updated).Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return updated, nil
}

// Destroy hard deletes the job.
func (s *JobService) Destroy(ctx context.Context, p *policy.Principal, id uint) error {
	job, err := s.Get(ctx, p, id, policy.ActionDestroy)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(job).Error; err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// build normalizes and validates form, then copies it onto a copy of base.
func (s *JobService) build(form *dtos.JobForm, base *models.Job) (*models.Job, error) {
	form.Normalize()

	job := *base
	job.Title = form.Title
	job.Company = form.Company
	job.Location = form.Location
	job.Description = form.Description
	job.Status = form.Status

	if err := s.validator.Validate(form); err != nil {
		return &job, validationErr(err)
	}

	job.AppliedOn = nil
	if form.AppliedOn != "" {
		t, err := time.ParseInLocation(dateLayout, form.AppliedOn, time.UTC)
		if err != nil {
			return &job, apperrors.ValidationError(map[string]string{"applied_on": "must be a date formatted YYYY-MM-DD"})
		}
		d := datatypes.Date(t)
		job.AppliedOn = &d
	}
	return &job, nil
}

func formFromJob(job *models.Job) dtos.JobForm {
	form := dtos.JobForm{
		Title:       job.Title,
		Company:     job.Company,
		Location:    job.Location,
		Description: job.Description,
		Status:      job.Status,
	}
	if job.AppliedOn != nil {
		form.AppliedOn = time.Time(*job.AppliedOn).Format(dateLayout)
	}
	return form
}

// validationErr converts a validator failure into the 422 AppError.
func validationErr(err error) error {
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return apperrors.ValidationError(verr.Errors)
	}
	return apperrors.InternalError(err)
}
