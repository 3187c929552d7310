package models

import (
	"strings"
	"time"
)

type SourceKind string

const (
	SourceUpload SourceKind = "upload"
	SourceShared SourceKind = "shared"
)

// Source says where a link's bytes come from: a stored upload (FileID) or a
// path relative to the shared volume (Path). Exactly one is set, per Kind.
type Source struct {
	Kind   SourceKind
	FileID string
	Path   string
}

func UploadSource(fileID string) Source {
	return Source{Kind: SourceUpload, FileID: fileID}
}

func SharedSource(path string) Source {
	return Source{Kind: SourceShared, Path: path}
}

// Ref is the value persisted in ShareLink.SourceRef.
func (s Source) Ref() string {
	if s.Kind == SourceShared {
		return s.Path
	}
	return s.FileID
}

type ShareLink struct {
	ID            uint       `json:"-" gorm:"primaryKey"`
	Token         string     `json:"token" gorm:"uniqueIndex;size:64;not null"` // secure random token
	SourceKind    SourceKind `json:"sourceType" gorm:"size:16;not null;index:idx_share_links_source,priority:1"`
	SourceRef     string     `json:"-" gorm:"not null;index:idx_share_links_source,priority:2"`
	FileName      string     `json:"fileName" gorm:"not null"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"index"`
	ExpiresAt     time.Time  `json:"expiresAt" gorm:"index;not null"`
	DownloadCount int64      `json:"downloadCount" gorm:"not null;default:0"`
	MaxDownloads  *int64     `json:"maxDownloads"`
	PasswordHash  *string    `json:"-"`
	PinHash       *string    `json:"-"`
	AllowedIPs    string     `json:"-"` // comma separated IPs or CIDRs
}

func (l *ShareLink) Source() Source {
	if l.SourceKind == SourceShared {
		return SharedSource(l.SourceRef)
	}
	return UploadSource(l.SourceRef)
}

func (l *ShareLink) HasPassword() bool { return l.PasswordHash != nil && *l.PasswordHash != "" }

func (l *ShareLink) HasPin() bool { return l.PinHash != nil && *l.PinHash != "" }

// AllowList returns the parsed allowlist entries, empty when unrestricted.
func (l *ShareLink) AllowList() []string {
	if strings.TrimSpace(l.AllowedIPs) == "" {
		return nil
	}
	var out []string
	for _, e := range strings.Split(l.AllowedIPs, ",") {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}
