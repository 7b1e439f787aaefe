package filemanager

import (
	"fmt"
	"time"

	"github.com/dalemusser/coconsult/internal/domain/models"
)

// FormatFileSize formats a file size in bytes to a human-readable string.
func FormatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FileTypeIcon returns the icon name for a file type reported by the
// file service.
func FileTypeIcon(fileType string) string {
	switch fileType {
	case models.FileTypeDocument:
		return "file-text"
	case models.FileTypeZip:
		return "archive"
	case models.FileTypeImage:
		return "image"
	case models.FileTypeVideo:
		return "video"
	case models.FileTypeFolder:
		return "folder"
	default:
		return "file"
	}
}

// FormatModified formats a last-modified time for the listing. Times from
// today show only the clock time.
func FormatModified(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return t.Format("3:04 PM")
	}
	if y1 == y2 {
		return t.Format("Jan 2")
	}
	return t.Format("Jan 2, 2006")
}
