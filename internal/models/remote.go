package models

import "time"

// RemoteFile is a file as reported by the provider's storage API.
type RemoteFile struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Purpose   string    `json:"purpose,omitempty"`
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status,omitempty"`
	URI       string    `json:"uri,omitempty"`
	MIMEType  string    `json:"mime_type,omitempty"`
}
