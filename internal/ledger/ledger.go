// Package ledger keeps the local record of files uploaded to the provider.
//
// Operations take a models.Ledger value and return a new one; nothing here
// touches the provider. Store handles reading and writing the JSON file.
package ledger

import (
	"fmt"
	"slices"
	"time"

	"fin-extract/internal/models"
)

// Timestamp formats t the way uploaded_at values are written to the ledger.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// AppendUpload adds the records of one upload batch and a session that
// references exactly those records. A batch without records adds nothing.
func AppendUpload(l models.Ledger, directory string, records []models.FileRecord, at time.Time) models.Ledger {
	out := clone(l)
	if len(records) == 0 {
		return out
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		out.Files = append(out.Files, r)
		ids = append(ids, r.ID)
	}
	out.UploadSessions = append(out.UploadSessions, models.UploadSession{
		Directory:  directory,
		UploadedAt: Timestamp(at),
		FileCount:  len(ids),
		FileIDs:    ids,
	})
	return out
}

// RemoveFiles drops the records with the given ids and strips those ids from
// every session. Sessions emptied by the removal are dropped as well.
func RemoveFiles(l models.Ledger, ids []string) models.Ledger {
	if len(ids) == 0 {
		return clone(l)
	}
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}

	out := models.Ledger{
		Files:          make([]models.FileRecord, 0, len(l.Files)),
		UploadSessions: make([]models.UploadSession, 0, len(l.UploadSessions)),
	}
	for _, f := range l.Files {
		if _, ok := gone[f.ID]; !ok {
			out.Files = append(out.Files, f)
		}
	}
	for _, s := range l.UploadSessions {
		kept := make([]string, 0, len(s.FileIDs))
		for _, id := range s.FileIDs {
			if _, ok := gone[id]; !ok {
				kept = append(kept, id)
			}
		}
		if len(s.FileIDs) > 0 && len(kept) == 0 {
			continue
		}
		if len(kept) != len(s.FileIDs) {
			s.FileCount = len(kept)
		}
		s.FileIDs = kept
		out.UploadSessions = append(out.UploadSessions, s)
	}
	return out
}

// RemoveSession drops the session at index without touching file records.
func RemoveSession(l models.Ledger, index int) (models.Ledger, error) {
	if index < 0 || index >= len(l.UploadSessions) {
		return l, fmt.Errorf("session %d out of range (have %d)", index, len(l.UploadSessions))
	}
	out := clone(l)
	out.UploadSessions = slices.Delete(out.UploadSessions, index, index+1)
	return out, nil
}

// Clear returns an empty ledger.
func Clear() models.Ledger {
	return models.Ledger{
		Files:          []models.FileRecord{},
		UploadSessions: []models.UploadSession{},
	}
}

// Lookup finds the record with the given id.
func Lookup(l models.Ledger, id string) (models.FileRecord, bool) {
	for _, f := range l.Files {
		if f.ID == id {
			return f, true
		}
	}
	return models.FileRecord{}, false
}

// Dangling returns session ids that have no matching file record.
func Dangling(l models.Ledger) []string {
	known := make(map[string]struct{}, len(l.Files))
	for _, f := range l.Files {
		known[f.ID] = struct{}{}
	}
	var out []string
	for _, s := range l.UploadSessions {
		for _, id := range s.FileIDs {
			if _, ok := known[id]; !ok {
				out = append(out, id)
			}
		}
	}
	return out
}

func clone(l models.Ledger) models.Ledger {
	out := models.Ledger{
		Files:          slices.Clone(l.Files),
		UploadSessions: make([]models.UploadSession, 0, len(l.UploadSessions)),
	}
	if out.Files == nil {
		out.Files = []models.FileRecord{}
	}
	for _, s := range l.UploadSessions {
		s.FileIDs = slices.Clone(s.FileIDs)
		out.UploadSessions = append(out.UploadSessions, s)
	}
	return out
}
