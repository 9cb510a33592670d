package model

import "time"

// Redirect is a single slug -> destination mapping.
type Redirect struct {
	Slug        string `json:"slug" yaml:"slug"`
	Destination string `json:"destination" yaml:"destination"`
}

type CreateReq struct {
	Slug        string `json:"slug"`
	Destination string `json:"destination" binding:"required"`
}

// Response is the envelope returned by every JSON endpoint.
type Response struct {
	OK        bool      `json:"ok"`
	Result    any       `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Ping struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Cache       bool   `json:"cache"`
}
