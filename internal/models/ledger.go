package models

// FileRecord describes one file uploaded to the provider.
type FileRecord struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalPath string `json:"original_path"`
	Purpose      string `json:"purpose"`
	UploadedAt   string `json:"uploaded_at"`
	Size         int64  `json:"size"`
	Status       string `json:"status"`
}

// UploadSession groups the files uploaded by a single invocation.
type UploadSession struct {
	Directory  string   `json:"directory"`
	UploadedAt string   `json:"uploaded_at"`
	FileCount  int      `json:"file_count"`
	FileIDs    []string `json:"file_ids"`
}

// Ledger is the persisted record of what the local process believes is uploaded.
type Ledger struct {
	Files          []FileRecord    `json:"files"`
	UploadSessions []UploadSession `json:"upload_sessions"`
}

// IsEmpty reports whether the ledger has neither records nor sessions.
func (l Ledger) IsEmpty() bool {
	return len(l.Files) == 0 && len(l.UploadSessions) == 0
}

// FileIDs returns the identifiers of all records in ledger order.
func (l Ledger) FileIDs() []string {
	ids := make([]string, 0, len(l.Files))
	for _, f := range l.Files {
		ids = append(ids, f.ID)
	}
	return ids
}

// TotalSize is the sum of all record sizes in bytes.
func (l Ledger) TotalSize() int64 {
	var total int64
	for _, f := range l.Files {
		total += f.Size
	}
	return total
}
