package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the JWT claims issued to registered and guest users.
type UserClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsGuest  bool   `json:"isGuest"`
	jwt.RegisteredClaims
}

// CredentialsRequest is the request body for register and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// GuestLoginRequest is the request body for guest login.
type GuestLoginRequest struct {
	Username string `json:"username"`
}

// AuthResponse is returned after a successful register/login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
