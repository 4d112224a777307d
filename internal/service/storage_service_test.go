package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"photo.jpg":          "photo.jpg",
		"my photo (2).png":   "my_photo_2_.png",
		"../../etc/passwd":   "passwd",
		`C:\Users\me\a.heic`: "a.heic",
		"###":                "file",
		"":                   "file",
		"été.webp":           "t_.webp",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestObjectKey(t *testing.T) {
	now := time.Date(2025, 1, 2, 23, 30, 0, 0, time.FixedZone("X", -5*3600))

	key, err := ObjectKey(12, "a b.png", now)
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^user_12/2025-01-03/1735878600000_[A-Za-z0-9_-]{10}_a_b\.png$`), key)

	other, err := ObjectKey(12, "a b.png", now)
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}
