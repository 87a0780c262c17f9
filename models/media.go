package models

import "github.com/google/uuid"

// Media stores the uploaded report image and its derived renditions.
type Media struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	FileType     string    `json:"file_type"`
	FileSize     int64     `json:"file_size"`
	Filename     string    `json:"file_name"`
	UserID       uint      `json:"user_id" gorm:"index"`
	FeedURL      string    `json:"feed_url"`
	FullSizeURL  string    `json:"full_size_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	ReportID     uuid.UUID `json:"report_id" gorm:"type:uuid;index"`
}
