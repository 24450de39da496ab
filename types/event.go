package types

import "time"

// MovieAddedEvent is published when a catalog sync inserts a title that
// was not previously cached.
type MovieAddedEvent struct {
	ExternalID string    `json:"movieId"`
	Title      string    `json:"title"`
	Genre      string    `json:"genre"`
	AddedAt    time.Time `json:"addedAt"`
}

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	UserID       int       `json:"userId"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}
