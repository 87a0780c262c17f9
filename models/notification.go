package models

// Notification represents notifications sent to users
type Notification struct {
	Model
	UserID  uint   `json:"user_id" gorm:"not null;index"`
	Message string `json:"message" gorm:"type:text;not null"`
	Type    string `json:"type" gorm:"type:varchar(50);not null"`
	IsRead  bool   `json:"is_read" gorm:"not null;default:false"`
}
