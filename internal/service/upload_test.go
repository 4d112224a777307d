package service

import (
	"testing"

	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0}
	pdfHeader  = []byte("%PDF-1.7\n")
)

func TestNewLocalFileSniffsType(t *testing.T) {
	f, err := NewLocalFile("cover.bin", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", f.MimeType)
	assert.Equal(t, "cover.bin", f.DisplayName)

	f, err = NewLocalFile("a.jpg", jpegHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", f.MimeType)
}

func TestNewLocalFileRejects(t *testing.T) {
	_, err := NewLocalFile("doc.pdf", pdfHeader)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = NewLocalFile("empty.png", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = NewLocalFile("noise", []byte("hello world"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
