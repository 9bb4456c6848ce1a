package domain

import "time"

// AdminUser is an account allowed into the admin panel
type AdminUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// MediaObject is an uploaded file in the media store
type MediaObject struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Notification is an admin toast message
type Notification struct {
	Kind    string    `json:"kind"` // success, info, error
	Title   string    `json:"title"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}
