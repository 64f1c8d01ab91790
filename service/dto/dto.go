package dto

import "time"

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BulkRequest struct {
	Users []User `json:"users"`
}

type FailedUser struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

type BulkResults struct {
	Success []User       `json:"success"`
	Failed  []FailedUser `json:"failed"`
}

type BulkResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Results BulkResults `json:"results"`
}

type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Error struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type Entry struct {
	Id        uint32            `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Data      map[string]string `json:"data"`
}

type UploadResponse struct {
	Success bool  `json:"success"`
	Entry   Entry `json:"entry"`
}

type Page struct {
	Success bool    `json:"success"`
	Page    int     `json:"page"`
	Limit   int     `json:"limit"`
	Total   int     `json:"total"`
	HasMore bool    `json:"hasMore"`
	Items   []Entry `json:"items"`
}

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
