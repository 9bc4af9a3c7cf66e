// Package job provides the Job aggregate for black bar detection jobs.
// It includes the Job entity with state machine transitions, repository
// interfaces for persistence and the detection use case service.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/blackbarhq/blackbar/internal/detect"
	"github.com/blackbarhq/blackbar/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusQueued indicates the job is waiting to be analyzed.
	StatusQueued Status = "QUEUED"
	// StatusRunning indicates the job is being analyzed.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates the analysis finished successfully.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the analysis encountered an error.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the job was manually cancelled.
	StatusCancelled Status = "CANCELLED"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusQueued:    {StatusRunning, StatusCancelled},
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job represents one black bar detection request.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// Input is the media location given by the caller, either a local
	// path or an s3:// URL.
	Input string
	// WebhookURL, when set, receives the job outcome as a POST.
	WebhookURL string
	// Status is the current job state.
	Status Status
	// Crop is the detected crop rectangle. Nil means no black bars were
	// found; only meaningful once the job is COMPLETED.
	Crop *detect.Rectangle
	// SourceWidth and SourceHeight are the probed frame dimensions.
	SourceWidth  int
	SourceHeight int
	// DurationSec is the probed media duration, 0 when unknown.
	DurationSec float64
	// Error contains any error message if the analysis failed.
	Error string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when the analysis started.
	StartedAt time.Time
	// CompletedAt is when the analysis finished.
	CompletedAt time.Time
}

// New creates a new Job with a generated ID and initial QUEUED status.
func New(input string) *Job {
	now := time.Now()
	return &Job{
		ID:        id.Generate(),
		Input:     input,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewWithID creates a new Job with the specified ID and initial QUEUED status.
// Useful for testing or when the ID needs to be externally generated.
func NewWithID(jobID, input string) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		Input:     input,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	// Set timestamps based on state
	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from QUEUED to RUNNING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Complete transitions the job to COMPLETED and records the outcome.
// A nil rectangle records "no crop needed".
func (j *Job) Complete(crop *detect.Rectangle) error {
	j.mu.Lock()
	if crop != nil {
		c := *crop
		j.Crop = &c
	}
	j.mu.Unlock()
	return j.TransitionTo(StatusCompleted)
}

// Fail transitions the job to FAILED state with an error message.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// Cancel transitions the job to CANCELLED state.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// SetMediaInfo records the probed frame dimensions and duration.
func (j *Job) SetMediaInfo(width, height int, durationSec float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.SourceWidth = width
	j.SourceHeight = height
	j.DurationSec = durationSec
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusCompleted ||
		j.Status == StatusFailed ||
		j.Status == StatusCancelled
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var crop *detect.Rectangle
	if j.Crop != nil {
		c := *j.Crop
		crop = &c
	}

	return &Job{
		ID:           j.ID,
		Input:        j.Input,
		WebhookURL:   j.WebhookURL,
		Status:       j.Status,
		Crop:         crop,
		SourceWidth:  j.SourceWidth,
		SourceHeight: j.SourceHeight,
		DurationSec:  j.DurationSec,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
		StartedAt:    j.StartedAt,
		CompletedAt:  j.CompletedAt,
	}
}
