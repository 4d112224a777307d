package board

type DragState int

const (
	Idle DragState = iota
	Dragging
)

func (s DragState) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// DragEngine turns pointer drag-and-drop events into board mutations.
type DragEngine struct {
	board  *Board
	state  DragState
	source int
	ghost  int
}

func NewDragEngine(b *Board) *DragEngine {
	return &DragEngine{board: b, source: -1, ghost: -1}
}

func (e *DragEngine) State() (DragState, int) {
	return e.state, e.source
}

// Ghost reports which slot currently shows the drag preview.
func (e *DragEngine) Ghost() (int, bool) {
	return e.ghost, e.ghost >= 0
}

// DragStart begins dragging slot i. Starting on an empty or invalid slot
// leaves the engine idle and returns false.
func (e *DragEngine) DragStart(i int) bool {
	if e.state != Idle {
		return false
	}
	occ, err := e.board.Occupant(i)
	if err != nil || IsEmpty(occ) {
		return false
	}
	e.state = Dragging
	e.source = i
	e.ghost = i
	return true
}

// DropOnSlot finishes a drag on dst. Dropping without an active drag, or on
// the source itself, changes nothing.
func (e *DragEngine) DropOnSlot(dst int) error {
	if e.state != Dragging {
		return nil
	}
	src := e.source
	e.reset()
	if src == dst {
		return nil
	}
	return e.board.MoveOrSwap(src, dst)
}

// DropWithExternalFiles handles a drop that carries files from outside the
// board. It wins over any slot drag in progress.
func (e *DragEngine) DropWithExternalFiles(dst int, files []LocalFile) (int, error) {
	e.reset()
	return UploadIntoSlot(e.board, dst, files)
}

// DragEnd cancels a drag that ended outside a drop target.
func (e *DragEngine) DragEnd() {
	e.reset()
}

func (e *DragEngine) reset() {
	e.state = Idle
	e.source = -1
	e.ghost = -1
}

// UploadIntoSlot places the first file at dst, replacing what was there, and
// the rest into the next free slots. It returns how many files were placed
// and ErrBoardFull if some did not fit.
func UploadIntoSlot(b *Board, dst int, files []LocalFile) (int, error) {
	if err := checkIndex(dst); err != nil {
		return 0, err
	}
	placed := 0
	for n, f := range files {
		target := dst
		if n > 0 {
			free, ok := b.FirstFreeSlot()
			if !ok {
				return placed, ErrBoardFull
			}
			target = free
		}
		if err := b.SetSlot(target, f); err != nil {
			return placed, err
		}
		placed++
	}
	return placed, nil
}

// AddFiles fills the first free slots in index order.
func AddFiles(b *Board, files []LocalFile) (int, error) {
	placed := 0
	for _, f := range files {
		free, ok := b.FirstFreeSlot()
		if !ok {
			return placed, ErrBoardFull
		}
		if err := b.SetSlot(free, f); err != nil {
			return placed, err
		}
		placed++
	}
	return placed, nil
}
