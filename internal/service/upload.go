package service

import (
	"fmt"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/carousel-scheduler/internal/apperr"
	"github.com/maheshrc27/carousel-scheduler/internal/board"
)

// MaxUploadBytes caps one slide image.
const MaxUploadBytes = 20 << 20

var allowedImageTypes = map[string]struct{}{
	"jpg": {}, "png": {}, "webp": {}, "heif": {},
}

// NewLocalFile sniffs data and wraps it as a board occupant. The declared
// content type is ignored in favour of the sniffed one.
func NewLocalFile(name string, data []byte) (board.LocalFile, error) {
	if len(data) == 0 {
		return board.LocalFile{}, fmt.Errorf("%w: %s is empty", apperr.ErrValidation, name)
	}
	if len(data) > MaxUploadBytes {
		return board.LocalFile{}, fmt.Errorf("%w: %s is larger than %d MB", apperr.ErrValidation, name, MaxUploadBytes>>20)
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return board.LocalFile{}, fmt.Errorf("%w: %s is not a recognised image", apperr.ErrValidation, name)
	}
	if _, ok := allowedImageTypes[kind.Extension]; !ok {
		return board.LocalFile{}, fmt.Errorf("%w: file type %s is not allowed", apperr.ErrValidation, kind.Extension)
	}

	return board.LocalFile{Bytes: data, DisplayName: name, MimeType: kind.MIME.Value}, nil
}
