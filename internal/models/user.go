package models

import "time"

// DefaultProfileImage is assigned to users who have not uploaded a profile image.
const DefaultProfileImage = "default-profile.jpg"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfileImage string    `json:"profileImage"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicProfile returns a copy safe to show to other users (no email).
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"username":     u.Username,
		"profileImage": u.ProfileImage,
		"bio":          u.Bio,
		"createdAt":    u.CreatedAt,
	}
}
