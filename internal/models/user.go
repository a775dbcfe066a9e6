package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the identity document. Every relationship set lives on the row so
// that saving one user is a single atomic write.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Role         string     `json:"role" gorm:"not null;default:user"`
	Bio          *string    `json:"bio,omitempty"`
	DeviceToken  *string    `json:"-"`
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	LastActive   *time.Time `json:"last_active,omitempty"`

	BlockedUsers      IDSet `json:"blocked_users"`
	LikedUsers        IDSet `json:"liked_users"`
	ReceivedLikes     IDSet `json:"received_likes"`
	Matches           IDSet `json:"matches"`
	AcceptedLikesFrom IDSet `json:"accepted_likes_from"`

	Filters   *ProfileFilter `json:"filters,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PublicUser is the view of another user exposed in search results and
// listings. Relationship sets and credentials are omitted.
type PublicUser struct {
	ID      uint           `json:"id"`
	Name    string         `json:"name"`
	Bio     *string        `json:"bio,omitempty"`
	Filters *ProfileFilter `json:"filters,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Bio: u.Bio, Filters: u.Filters}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
