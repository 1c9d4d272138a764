package models

import "time"

// User is an identity-provider account. Anonymous users have no email or
// password hash; they exist only to scope an inventory collection.
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash string    `bson:"password_hash,omitempty" json:"-"`
	Anonymous    bool      `bson:"anonymous" json:"anonymous"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
}

// RegisterRequest is the email/password sign-up payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the email/password sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued token and its subject.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}
