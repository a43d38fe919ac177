package authsvc

import "time"

// User is the persisted account row. IDs are uuids assigned at
// registration; emails are unique and stored lowercased.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Name         string `gorm:"size:255"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

// Profile is the wire shape shared with the lobby: {id, email, name?}.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Email: u.Email, Name: u.Name}
}
