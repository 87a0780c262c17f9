package models

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses. Transitions only move forward.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusVerified   = "verified"
)

var statusRank = map[string]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
	StatusVerified:   3,
}

// IsValidStatus reports whether s is one of the four lifecycle states.
func IsValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether a report may move from one status to the
// next. Backward moves and skips are rejected.
func CanTransition(from, to string) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// Verification is the structured classification result attached to a
// report, validated at the boundary before persistence.
type Verification struct {
	WasteType  string  `json:"waste_type"`
	Quantity   string  `json:"quantity"`
	Confidence float64 `json:"confidence"`
}

// Report is a user-submitted waste sighting.
type Report struct {
	ID             uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uint         `json:"user_id" gorm:"not null;index"`
	Location       string       `json:"location" gorm:"type:varchar(500);not null"`
	WasteType      string       `json:"waste_type" gorm:"type:varchar(255);not null"`
	Amount         string       `json:"amount" gorm:"type:varchar(255);not null"`
	ImageURL       string       `json:"image_url,omitempty"`
	ThumbnailURL   string       `json:"thumbnail_url,omitempty"`
	Verification   Verification `json:"verification" gorm:"embedded;embeddedPrefix:verification_"`
	SourceVerified bool         `json:"source_verified"`
	Status         string       `json:"status" gorm:"type:varchar(32);not null;default:pending;index"`
	CollectorID    *uint        `json:"collector_id,omitempty" gorm:"index"`
	CreatedAt      time.Time    `json:"created_at"`
}

// CollectedWaste records a confirmed collection for a verified report.
type CollectedWaste struct {
	Model
	ReportID       uuid.UUID `json:"report_id" gorm:"type:uuid;not null;uniqueIndex"`
	CollectorID    uint      `json:"collector_id" gorm:"not null;index"`
	CollectionDate time.Time `json:"collection_date"`
	WasteTypeMatch bool      `json:"waste_type_match"`
	QuantityMatch  bool      `json:"quantity_match"`
	Confidence     float64   `json:"confidence"`
}

// CollectionVerification is the second classification pass comparing the
// collection photo against the original report.
type CollectionVerification struct {
	WasteTypeMatch bool    `json:"wasteTypeMatch"`
	QuantityMatch  bool    `json:"quantityMatch"`
	Confidence     float64 `json:"confidence"`
}

type ClaimTaskRequest struct {
	Status string `json:"status" binding:"required"`
}
