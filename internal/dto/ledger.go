package dto

import (
	"time"

	"fin-extract/internal/models"

	"github.com/dustin/go-humanize"
)

type LedgerResponse struct {
	Files          []models.FileRecord    `json:"files"`
	UploadSessions []models.UploadSession `json:"upload_sessions"`
	TotalSize      int64                  `json:"total_size"`
	TotalSizeHuman string                 `json:"total_size_human"`
}

func NewLedgerResponse(l models.Ledger) LedgerResponse {
	size := l.TotalSize()
	return LedgerResponse{
		Files:          l.Files,
		UploadSessions: l.UploadSessions,
		TotalSize:      size,
		TotalSizeHuman: humanize.Bytes(uint64(max(size, 0))),
	}
}

type RemoteFileResponse struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
	Bytes     int64  `json:"bytes"`
	CreatedAt string `json:"created_at,omitempty"`
	Status    string `json:"status,omitempty"`
	Tracked   bool   `json:"tracked"`
}

// NewRemoteFileResponse marks files that also have a local record.
func NewRemoteFileResponse(f models.RemoteFile, tracked bool) RemoteFileResponse {
	r := RemoteFileResponse{
		ID:       f.ID,
		Filename: f.Filename,
		Purpose:  f.Purpose,
		Bytes:    f.Bytes,
		Status:   f.Status,
		Tracked:  tracked,
	}
	if !f.CreatedAt.IsZero() {
		r.CreatedAt = f.CreatedAt.UTC().Format(time.RFC3339)
	}
	return r
}
