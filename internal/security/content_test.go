package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedMimeType(t *testing.T) {
	tests := []struct {
		name  string
		mime  string
		allow []string
		want  bool
	}{
		{"empty list allows all", "application/x-anything", nil, true},
		{"wildcard", "image/png", []string{"image/*"}, true},
		{"wildcard other category", "video/mp4", []string{"image/*"}, false},
		{"exact", "application/pdf", []string{"text/plain", "application/pdf"}, true},
		{"case sensitive", "image/PNG", []string{"image/png"}, false},
		{"prefix is not a category", "imagex/png", []string{"image/*"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowedMimeType(tt.mime, tt.allow))
		})
	}
}

func TestIsDangerousExtension(t *testing.T) {
	for _, name := range []string{"setup.exe", "RUN.BAT", "x.tar.sh", "lib.Jar", "a.ps1"} {
		assert.True(t, IsDangerousExtension(name), name)
	}
	for _, name := range []string{"exe", "Makefile", "photo.jpg", "script.sh.txt", "notes."} {
		assert.False(t, IsDangerousExtension(name), name)
	}
}
