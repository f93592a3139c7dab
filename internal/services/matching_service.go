package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/justsurfingit/jobtracker/internal/models"
	"gorm.io/gorm"
)

// minCompanyName skips names like "X" or "Go" that would match everything.
const minCompanyName = 3

type MatcherService struct {
	DB *gorm.DB
}

func NewMatcherService(db *gorm.DB) *MatcherService {
	return &MatcherService{DB: db}
}

// ActiveJobs are the user's jobs that can still change status.
func (s *MatcherService) ActiveJobs(ctx context.Context, userID uint) ([]models.Job, error) {
	var jobs []models.Job
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND status NOT IN ?", userID, []string{models.StatusRejected, models.StatusOffer}).
		Order("id").
		Find(&jobs).Error
	return jobs, err
}

// FindJobsFromEmail matches an email to the company of one of the user's
// active jobs and returns that company name with all its active jobs.
// Rules, in order: company in the subject, in the sender display name, in
// the sender domain.
func (s *MatcherService) FindJobsFromEmail(ctx context.Context, userID uint, subject, rawSender string) (string, []models.Job, error) {
	jobs, err := s.ActiveJobs(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	// "Stripe Recruiting <jobs@stripe.com>" -> name="stripe recruiting", addr="jobs@stripe.com"
	senderName, senderAddr := "", strings.ToLower(rawSender)
	if parsed, err := mail.ParseAddress(rawSender); err == nil {
		senderName = strings.ToLower(parsed.Name)
		senderAddr = strings.ToLower(parsed.Address)
	}
	domain := ""
	if at := strings.LastIndexByte(senderAddr, '@'); at >= 0 {
		domain = senderAddr[at+1:]
	}
	subjectLower := strings.ToLower(subject)

	company := ""
	for _, job := range jobs {
		name := strings.ToLower(strings.TrimSpace(job.Company))
		if len(name) < minCompanyName {
			continue
		}
		if strings.Contains(subjectLower, name) ||
			(senderName != "" && strings.Contains(senderName, name)) ||
			(domain != "" && strings.Contains(domain, name)) {
			company = name
			break
		}
	}
	if company == "" {
		return "", nil, nil
	}

	var matched []models.Job
	for _, job := range jobs {
		if strings.ToLower(strings.TrimSpace(job.Company)) == company {
			matched = append(matched, job)
		}
	}
	return matched[0].Company, matched, nil
}
