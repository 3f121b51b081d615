package model

import (
	"time"
)

// User is the account entity backing authorship, favorites and follow
// edges. PasswordHash never leaves the domain.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Bio          *string   `json:"bio"`
	Image        *string   `json:"image"`
	Role         string    `json:"-"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the public author view nested inside reviews and comments.
// Following is viewer-dependent: nil for anonymous requests, so it is
// omitted rather than rendered as false.
type Profile struct {
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	Image     *string `json:"image"`
	Following *bool   `json:"following,omitempty"`
}

// AuthenticatedUser is the login/registration response: the account plus
// its freshly issued token.
type AuthenticatedUser struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Bio      *string `json:"bio"`
	Image    *string `json:"image"`
	Token    string  `json:"token"`
}

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)
