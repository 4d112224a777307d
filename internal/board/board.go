package board

import (
	"errors"
	"fmt"
)

// SlotCount is the number of fixed slots on a board.
const SlotCount = 10

var (
	ErrSlotOutOfRange = errors.New("slot index out of range")
	ErrBoardFull      = errors.New("all slots are occupied")
)

type slot struct {
	occupant Occupant
	// handle is set for LocalFile occupants, previewURL for LibraryRef ones.
	handle     string
	previewURL string
}

// SlotView is a read-only copy of one slot.
type SlotView struct {
	Index         int
	Occupant      Occupant
	PreviewHandle string
	PreviewURL    string
}

// Draft is a non-empty slot handed to persistence, tagged by its occupant.
type Draft struct {
	SlotIndex int
	Occupant  Occupant
}

// Board holds SlotCount ordered slots. It is not safe for concurrent use;
// callers serialize access per editing session.
type Board struct {
	slots    [SlotCount]slot
	previews Previews
}

func New(previews Previews) *Board {
	b := &Board{previews: previews}
	for i := range b.slots {
		b.slots[i].occupant = Empty{}
	}
	return b
}

func checkIndex(i int) error {
	if i < 0 || i >= SlotCount {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, i)
	}
	return nil
}

// SetSlot replaces the occupant of slot i, releasing the old preview handle.
func (b *Board) SetSlot(i int, occ Occupant) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	if occ == nil {
		occ = Empty{}
	}

	var next slot
	switch o := occ.(type) {
	case Empty:
		next.occupant = o
	case LocalFile:
		handle, err := b.previews.Acquire(o)
		if err != nil {
			return err
		}
		next = slot{occupant: o, handle: handle}
	case LibraryRef:
		next.occupant = o
	default:
		panic(fmt.Sprintf("board: unknown occupant %T", occ))
	}

	b.release(i)
	b.slots[i] = next
	return nil
}

// SetPreviewURL attaches a rendered preview URL to a library slot.
func (b *Board) SetPreviewURL(i int, url string) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	if _, ok := b.slots[i].occupant.(LibraryRef); !ok {
		return fmt.Errorf("slot %d does not hold a library reference", i)
	}
	b.slots[i].previewURL = url
	return nil
}

func (b *Board) ClearSlot(i int) error {
	return b.SetSlot(i, Empty{})
}

// MoveOrSwap moves the occupant of from into an empty destination, or swaps
// the two occupants when the destination is filled. Preview handles travel
// with their occupant.
func (b *Board) MoveOrSwap(from, to int) error {
	if err := checkIndex(from); err != nil {
		return err
	}
	if err := checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	if IsEmpty(b.slots[to].occupant) {
		b.slots[to] = b.slots[from]
		b.slots[from] = slot{occupant: Empty{}}
		return nil
	}
	b.slots[from], b.slots[to] = b.slots[to], b.slots[from]
	return nil
}

// FirstFreeSlot returns the lowest empty index, or false when the board is full.
func (b *Board) FirstFreeSlot() (int, bool) {
	for i := range b.slots {
		if IsEmpty(b.slots[i].occupant) {
			return i, true
		}
	}
	return -1, false
}

func (b *Board) Occupant(i int) (Occupant, error) {
	if err := checkIndex(i); err != nil {
		return nil, err
	}
	return b.slots[i].occupant, nil
}

func (b *Board) Occupied() int {
	n := 0
	for i := range b.slots {
		if !IsEmpty(b.slots[i].occupant) {
			n++
		}
	}
	return n
}

func (b *Board) Slots() []SlotView {
	out := make([]SlotView, SlotCount)
	for i, s := range b.slots {
		out[i] = SlotView{
			Index:         i,
			Occupant:      s.occupant,
			PreviewHandle: s.handle,
			PreviewURL:    s.previewURL,
		}
	}
	return out
}

// Drafts returns the non-empty slots in index order.
func (b *Board) Drafts() []Draft {
	var drafts []Draft
	for i, s := range b.slots {
		if IsEmpty(s.occupant) {
			continue
		}
		drafts = append(drafts, Draft{SlotIndex: i, Occupant: s.occupant})
	}
	return drafts
}

// Close empties the board and releases every preview handle.
func (b *Board) Close() {
	for i := range b.slots {
		b.release(i)
		b.slots[i] = slot{occupant: Empty{}}
	}
}

func (b *Board) release(i int) {
	if h := b.slots[i].handle; h != "" {
		b.previews.Release(h)
		b.slots[i].handle = ""
	}
}
