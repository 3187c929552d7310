package models

import "time"

// File is an upload held by the storage engine. The ID is a string so that
// chunked uploads can keep the identifier chosen for their chunk session.
type File struct {
	ID           string    `json:"id" gorm:"primaryKey;size:128"`
	OriginalName string    `json:"originalName" gorm:"not null"`
	Size         int64     `json:"size" gorm:"not null"` // bytes
	MimeType     string    `json:"mimeType" gorm:"not null"`
	StorageKey   string    `json:"-" gorm:"not null"` // blob store key
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
	ExpiresAt    time.Time `json:"expiresAt" gorm:"index;not null"`
}

func (f *File) IsExpired(now time.Time) bool {
	return !now.Before(f.ExpiresAt)
}
