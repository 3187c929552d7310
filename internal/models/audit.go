package models

import "time"

type AuditStatus string

const (
	AuditSuccess AuditStatus = "success"
	AuditFailure AuditStatus = "failure"
)

// AuditLog is one security-relevant event. Details holds a JSON object.
type AuditLog struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time   `json:"createdAt" gorm:"index"`
	EventType    string      `json:"eventType" gorm:"index;size:32;not null"`
	Actor        string      `json:"actor" gorm:"size:16;not null"` // admin or public
	IPAddress    string      `json:"ipAddress" gorm:"index;size:64"`
	UserAgent    string      `json:"userAgent,omitempty"`
	ResourceType string      `json:"resourceType,omitempty" gorm:"size:16"`
	ResourceID   string      `json:"resourceId,omitempty" gorm:"index;size:512"`
	Action       string      `json:"action" gorm:"size:16;not null"`
	Status       AuditStatus `json:"status" gorm:"size:16;not null"`
	Details      string      `json:"details,omitempty"`
}
