package model

import "time"

// User is an account that can act in sessions. Guests are throwaway
// accounts created from just a display name.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	IsGuest      bool      `json:"isGuest" bson:"isGuest"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// Actor returns the identity handed to session operations.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Username}
}
