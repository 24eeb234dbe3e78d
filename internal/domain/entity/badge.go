package entity

import (
	"time"
)

// Badge is earned once per resolved report.
type Badge struct {
	ID          string    `json:"id" firestore:"id"`
	OwnerID     string    `json:"owner_id" firestore:"ownerId"`
	ReportID    string    `json:"report_id" firestore:"reportId"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description" firestore:"description"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}
