package model

// Recipient is a single addressee of a dispatch run. Uniqueness is not
// enforced; duplicate names or emails are sent independently.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
