// Package server provides the HTTP server for the black bar detection API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import (
	"time"

	"github.com/blackbarhq/blackbar/internal/job"
)

// CreateJobRequest is the HTTP request body for creating a new detection job.
type CreateJobRequest struct {
	// Input is a local path or s3:// URL of the media to analyze.
	Input string `json:"input" validate:"required"`
	// WebhookURL optionally receives the job outcome as a POST.
	WebhookURL string `json:"webhook_url" validate:"omitempty,http_url"`
}

// CreateJobResponse is the HTTP response after creating a job.
type CreateJobResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// CropResponse describes a detected crop rectangle.
type CropResponse struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
	// Filter is the ready-to-use ffmpeg crop filter expression.
	Filter string `json:"filter"`
}

// JobResponse is the HTTP response for getting job details.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Input is the media location given at creation.
	Input string `json:"input"`
	// Status is the current job status.
	Status string `json:"status"`
	// Crop is the detected crop rectangle; absent while the job is
	// pending and for no-crop outcomes.
	Crop *CropResponse `json:"crop,omitempty"`
	// SourceWidth and SourceHeight are the probed frame dimensions.
	SourceWidth  int `json:"source_width,omitempty"`
	SourceHeight int `json:"source_height,omitempty"`
	// DurationSec is the probed media duration, 0 when unknown.
	DurationSec float64 `json:"duration_sec,omitempty"`
	// Error contains any error message if the job failed.
	Error string `json:"error,omitempty"`
	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`
	// CompletedAt is when the job reached a terminal state.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobListResponse is the HTTP response for listing jobs.
type JobListResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}

// toJobResponse maps a job aggregate to its HTTP representation.
func toJobResponse(j *job.Job) JobResponse {
	resp := JobResponse{
		ID:           j.ID,
		Input:        j.Input,
		Status:       string(j.Status),
		SourceWidth:  j.SourceWidth,
		SourceHeight: j.SourceHeight,
		DurationSec:  j.DurationSec,
		Error:        j.Error,
		CreatedAt:    j.CreatedAt,
	}
	if j.Crop != nil {
		resp.Crop = &CropResponse{
			Width:  j.Crop.Width,
			Height: j.Crop.Height,
			X:      j.Crop.X,
			Y:      j.Crop.Y,
			Filter: j.Crop.FilterSpec(),
		}
	}
	if !j.CompletedAt.IsZero() {
		completed := j.CompletedAt
		resp.CompletedAt = &completed
	}
	return resp
}
