package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`
	Admin        bool   `gorm:"not null;default:false" json:"admin"`

	// 'omitempty' keeps User -> Jobs -> User from looping in JSON
	Jobs    []Job    `json:"jobs,omitempty"`
	Resumes []Resume `json:"resumes,omitempty"`
}

// Job statuses accepted from clients.
const (
	StatusApplied   = "applied"
	StatusInterview = "interview"
	StatusOffer     = "offer"
	StatusRejected  = "rejected"
	StatusPending   = "pending"
	StatusOther     = "other"
)

var JobStatuses = []string{StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusPending, StatusOther}

// Jobs are hard deleted: no DeletedAt column.
type Job struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Foreign Key
	UserID uint `gorm:"not null;index" json:"user_id"`

	Title       string          `gorm:"not null" json:"title"`
	Company     string          `gorm:"not null" json:"company"`
	Location    string          `gorm:"not null" json:"location"`
	Description string          `gorm:"type:text" json:"description"`
	Status      string          `gorm:"index" json:"status"`
	AppliedOn   *datatypes.Date `json:"applied_on"`
}

func (j *Job) OwnerID() uint { return j.UserID }

// Resume extraction states. ExtractionNone marks a resume saved without a file.
const (
	ExtractionNone    = "none"
	ExtractionPending = "pending"
	ExtractionDone    = "done"
	ExtractionFailed  = "failed"
)

type Resume struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID uint `gorm:"not null;index" json:"user_id"`

	// File attachment; StorageKey is empty until the bytes are stored.
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StorageKey  string `json:"-"`

	ExtractedText    *string `gorm:"type:text" json:"extracted_text"`
	ExtractionStatus string  `gorm:"index;not null;default:'pending'" json:"extraction_status"`
}

func (r *Resume) OwnerID() uint { return r.UserID }

func (r *Resume) Attached() bool { return r.StorageKey != "" }

// Application links a user's job and resume. No handler uses it yet.
type Application struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Status      string          `json:"status"`
	AppliedDate *datatypes.Date `json:"applied_date"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	JobID       uint            `gorm:"not null;index" json:"job_id"`
	ResumeID    uint            `gorm:"not null;index" json:"resume_id"`

	Job    Job    `json:"-"`
	Resume Resume `json:"-"`
}

// JobEvent is an audit row written when a job changes outside a request.
type JobEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     uint      `gorm:"index" json:"job_id"`
	EventType string    `json:"event_type"`
	Details   string    `gorm:"type:text" json:"details"`
}

// MailboxState is the Gmail history bookmark of one user.
type MailboxState struct {
	ID            uint      `gorm:"primaryKey"`
	UpdatedAt     time.Time
	UserID        uint   `gorm:"uniqueIndex;not null"`
	LastHistoryID uint64 `gorm:"not null;default:0"`
}

type ProcessedEmail struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&User{}, &Job{}, &Resume{}, &Application{}, &JobEvent{}, &MailboxState{}, &ProcessedEmail{}}
}
