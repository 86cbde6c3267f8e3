package dto

// LoginRequest defines the credentials for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a still-valid token to exchange for a fresh one.
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token     string   `json:"token"`
	UserID    string   `json:"userID"`
	Workspace string   `json:"workspace"`
	Roles     []string `json:"roles"`
}
