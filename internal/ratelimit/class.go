package ratelimit

import "time"

// Class is a named limit applied to one kind of operation.
type Class struct {
	Name   string
	Max    int
	Window time.Duration
}

var (
	Upload   = Class{Name: "upload", Max: 100, Window: time.Hour}
	Download = Class{Name: "download", Max: 100, Window: time.Hour}
	API      = Class{Name: "api", Max: 60, Window: time.Minute}
	Login    = Class{Name: "login", Max: 3, Window: time.Minute}
)

// Key builds the composite limiter key for a client.
func (c Class) Key(clientID string) string {
	return c.Name + ":" + clientID
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Admit checks clientID against class c and reports the resulting window state.
func (l *Limiter) Admit(c Class, clientID string) Decision {
	key := c.Key(clientID)
	allowed := l.Check(key, c.Max, c.Window)
	return Decision{
		Allowed:   allowed,
		Limit:     c.Max,
		Remaining: l.Remaining(key, c.Max),
		ResetAt:   l.ResetAt(key),
	}
}
