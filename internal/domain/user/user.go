package user

import "errors"

var ErrNotFound = errors.New("user not found")

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never expose hash in JSON
	IsActive     bool   `json:"isActive"`
	Role         string `json:"role"`
}
