package domain

import (
	"strings"
	"time"
)

// Role enumerates authorization levels carried inside tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the domain model for registered accounts.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Slugify normalizes first and last name into their stored display form.
func (u *User) Slugify() {
	u.FirstName = titleSlug(u.FirstName)
	u.LastName = titleSlug(u.LastName)
}

func titleSlug(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, "-")
}
