package domain

import "time"

// Account es el registro del lado servidor detras de un User.
type Account struct {
	User
	PasswordHash string     `json:"-"`
	Disabled     bool       `json:"-"`
	OtpCodeHash  string     `json:"-"`
	OtpExpiresAt *time.Time `json:"-"`
}
