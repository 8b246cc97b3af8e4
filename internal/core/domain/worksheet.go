package domain

import (
	"errors"
	"time"
)

var ErrWorksheetNotFound = errors.New("worksheet not found")

// Worksheet is a viewable document in the catalog. Content delivery is by
// reference; the platform stores metadata only.
type Worksheet struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	Level       string    `json:"level,omitempty"`
	PageCount   int       `json:"page_count"`
	DocumentURL string    `json:"document_url"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
