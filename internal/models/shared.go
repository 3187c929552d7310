package models

import "time"

// SharedEntry describes one file or directory of the shared volume. It is
// computed on every request and never stored.
type SharedEntry struct {
	Name         string    `json:"name"`
	RelativePath string    `json:"relativePath"`
	Size         int64     `json:"size"`
	IsDirectory  bool      `json:"isDirectory"`
	MimeType     string    `json:"mimeType"`
	ModifiedAt   time.Time `json:"modifiedAt"`
}
