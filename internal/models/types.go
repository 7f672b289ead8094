package models

import "time"

// Role distinguishes regular storytellers from reviewing administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account that can submit and own questionnaire responses.
// The password hash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Question is one prompt of the fixed questionnaire, carrying the English
// text and its Jamaican Patois rendering. Order defines presentation sequence.
type Question struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	TextPatois string `json:"textPatois,omitempty"`
	Section    string `json:"section,omitempty"`
	Order      int    `json:"order"`
}

// Response is a user's answer to one question. At most one row exists per
// (UserID, QuestionID) pair; saving again overwrites the mutable fields.
type Response struct {
	ID             int64     `json:"id"`
	QuestionID     int64     `json:"questionId"`
	UserID         int64     `json:"userId"`
	TextResponse   string    `json:"textResponse,omitempty"`
	AudioURL       string    `json:"audioUrl,omitempty"`
	Transcriptions []string  `json:"transcriptions"`
	CreatedAt      time.Time `json:"createdAt"`
}
