package models

import "time"

// File types reported by the file service.
const (
	FileTypeDocument = "document"
	FileTypeZip      = "zip"
	FileTypeImage    = "image"
	FileTypeVideo    = "video"
	FileTypeFolder   = "folder"
	FileTypeOther    = "other"
)

// FileItem is a file as reported by the remote file service.
// The service owns its lifecycle; this app only reads it and requests
// mutations (star, trash, share, move).
type FileItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Owner        string    `json:"owner"`
	LastModified time.Time `json:"lastModified"`
	Size         int64     `json:"size"`
	Starred      bool      `json:"starred"`
}

// KnownType returns the file type, mapping anything unrecognised to "other".
func (f FileItem) KnownType() string {
	switch f.Type {
	case FileTypeDocument, FileTypeZip, FileTypeImage, FileTypeVideo, FileTypeFolder:
		return f.Type
	}
	return FileTypeOther
}
