package models

import "time"

const (
	MessageTypeText  = "text"
	MessageTypeAudio = "audio"
)

type Message struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	SenderID    uint       `json:"sender_id" gorm:"not null;index:idx_messages_pair"`
	ReceiverID  uint       `json:"receiver_id" gorm:"not null;index:idx_messages_pair"`
	Content     string     `json:"content" gorm:"not null"`
	MessageType string     `json:"message_type" gorm:"default:text"` // text, audio
	AudioURL    *string    `json:"audio_url,omitempty"`
	IsRead      bool       `json:"is_read" gorm:"default:false"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
}

const (
	NotificationLike         = "like"
	NotificationMatch        = "match"
	NotificationAcceptedLike = "accepted_like"
	NotificationMessage      = "message"
)

// Notification is the persisted inbox entry for a delivered event.
type Notification struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Type       string    `json:"type" gorm:"not null"` // like, match, accepted_like, message
	Message    string    `json:"message" gorm:"not null"`
	FromUserID *uint     `json:"from_user_id,omitempty"`
	IsRead     bool      `json:"is_read" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

type Report struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ReporterID uint      `json:"reporter_id" gorm:"not null;uniqueIndex:idx_reports_pair"`
	ReportedID uint      `json:"reported_id" gorm:"not null;uniqueIndex:idx_reports_pair"`
	Reason     string    `json:"reason" gorm:"not null"`
	Status     string    `json:"status" gorm:"default:pending"` // pending, reviewed, resolved, dismissed
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
