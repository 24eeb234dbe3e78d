package entity

import (
	"time"
)

type ReportStatus string

const (
	StatusSubmitted  ReportStatus = "submitted"
	StatusInProgress ReportStatus = "in_progress"
	StatusResolved   ReportStatus = "resolved"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Report is a citizen-filed civic issue.
type Report struct {
	ID             string       `json:"id" firestore:"id"`
	OwnerID        string       `json:"owner_id" firestore:"ownerId"`
	IssueType      string       `json:"issue_type" firestore:"issueType"`
	Description    string       `json:"description" firestore:"description"`
	MediaURL       string       `json:"media_url,omitempty" firestore:"mediaUrl,omitempty"`
	Lat            *float64     `json:"lat,omitempty" firestore:"lat,omitempty"`
	Lon            *float64     `json:"lon,omitempty" firestore:"lon,omitempty"`
	Status         ReportStatus `json:"status" firestore:"status"`
	SubmittedAt    time.Time    `json:"submitted_at" firestore:"submittedAt"`
	InProgressAt   *time.Time   `json:"in_progress_at" firestore:"inProgressAt"`
	ResolvedAt     *time.Time   `json:"resolved_at" firestore:"resolvedAt"`
	DuplicateCount int          `json:"duplicate_count" firestore:"duplicateCount"`

	// Joined for the admin listing, never persisted.
	OwnerEmail string `json:"owner_email,omitempty" firestore:"-"`
}

func (r *Report) HasLocation() bool {
	return r.Lat != nil && r.Lon != nil
}

// ApplyStatus moves the report to target and rewrites the timestamps so that
// submitted has neither timestamp, in_progress only InProgressAt, and resolved
// both (InProgressAt backfilled to now when the report skipped in_progress).
func (r *Report) ApplyStatus(target ReportStatus, now time.Time) {
	switch target {
	case StatusSubmitted:
		r.InProgressAt = nil
		r.ResolvedAt = nil
	case StatusInProgress:
		t := now
		r.InProgressAt = &t
		r.ResolvedAt = nil
	case StatusResolved:
		t := now
		r.ResolvedAt = &t
		if r.InProgressAt == nil {
			b := now
			r.InProgressAt = &b
		}
	}
	r.Status = target
}

// TimestampsConsistent checks the status/timestamp invariant.
func (r *Report) TimestampsConsistent() bool {
	switch r.Status {
	case StatusSubmitted:
		return r.InProgressAt == nil && r.ResolvedAt == nil
	case StatusInProgress:
		return r.InProgressAt != nil && r.ResolvedAt == nil
	case StatusResolved:
		return r.InProgressAt != nil && r.ResolvedAt != nil && !r.InProgressAt.After(*r.ResolvedAt)
	}
	return false
}
