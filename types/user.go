package types

import "time"

// User represents an account in the system.
// It contains identity, contact details, and the user's favorites set.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address. Unique across all accounts.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Address is the user's postal address, captured at registration.
	Address string `json:"address" db:"address"`

	// Phone is the user's contact phone number.
	Phone string `json:"phone" db:"phone"`

	// ProfilePicture is the public URL of the user's avatar in object
	// storage. Empty when no picture was uploaded at registration.
	ProfilePicture string `json:"profilePicture,omitempty" db:"profile_picture"`

	// Favorites is the set of catalog movie identifiers the user has
	// favorited. These are provider-native ids, not internal row keys;
	// duplicates are suppressed and order carries no meaning.
	Favorites []string `json:"favorites" db:"favorites"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
