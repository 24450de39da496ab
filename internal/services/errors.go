package services

import "errors"

// ErrEmailTaken is returned when a registration reuses an existing email.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned when login email or password is wrong.
// The message never distinguishes the two.
var ErrInvalidCredentials = errors.New("invalid email or password")
