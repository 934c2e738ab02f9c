package types

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobScheduled  JobStatus = "scheduled"
	JobInProgress JobStatus = "in_progress"
	JobDone       JobStatus = "done"
	JobCancelled  JobStatus = "cancelled"
)

// Job is the unit of scheduled work a staff member executes for a booking.
type Job struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	BookingID   uuid.UUID  `json:"booking_id"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"` // profile id
	Status      JobStatus  `json:"status"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateJobParams struct {
	BookingID   uuid.UUID  `json:"booking_id" binding:"required"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	ScheduledAt time.Time  `json:"scheduled_at" binding:"required"`
	Notes       string     `json:"notes,omitempty"`
}

type UpdateJobParams struct {
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	Status      *JobStatus `json:"status,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}
