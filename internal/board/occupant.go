package board

import "fmt"

// Occupant is the content of one slot. The set of implementations is closed:
// Empty, LocalFile and LibraryRef. Consumers switch over the concrete type and
// treat anything else as a programming error.
type Occupant interface {
	occupant()
	Name() string
}

type Empty struct{}

// LocalFile is image data uploaded into the board that has not been persisted yet.
type LocalFile struct {
	Bytes       []byte
	DisplayName string
	MimeType    string
}

// LibraryRef points at an object already stored in the user's media library.
type LibraryRef struct {
	Bucket      string
	Path        string
	DisplayName string
	SizeBytes   int64
}

func (Empty) occupant()      {}
func (LocalFile) occupant()  {}
func (LibraryRef) occupant() {}

func (Empty) Name() string        { return "" }
func (f LocalFile) Name() string  { return f.DisplayName }
func (r LibraryRef) Name() string { return r.DisplayName }

// IsEmpty reports whether o holds nothing. A nil Occupant counts as empty.
func IsEmpty(o Occupant) bool {
	switch o.(type) {
	case nil, Empty:
		return true
	case LocalFile, LibraryRef:
		return false
	default:
		panic(fmt.Sprintf("board: unknown occupant %T", o))
	}
}

// KindOf returns the wire name of the occupant variant.
func KindOf(o Occupant) string {
	switch o.(type) {
	case nil, Empty:
		return "empty"
	case LocalFile:
		return "file"
	case LibraryRef:
		return "library"
	default:
		panic(fmt.Sprintf("board: unknown occupant %T", o))
	}
}
