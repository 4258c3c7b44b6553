package boolfuck

// Tape is the unbounded bit memory. Non-negative positions live in Positive
// (index == position), negative positions live in Negative
// (index == -position - 1). Cells that were never written read as false.
type Tape struct {
	Positive []bool
	Negative []bool
	Head     int
}

func NewTape() *Tape {
	return &Tape{
		Positive: []bool{},
		Negative: []bool{},
		Head:     0,
	}
}

func (t *Tape) Reset() {
	t.Positive = t.Positive[:0]
	t.Negative = t.Negative[:0]
	t.Head = 0
}

func (t *Tape) cells(pos int) (*[]bool, int) {
	if pos >= 0 {
		return &t.Positive, pos
	}
	return &t.Negative, -pos - 1
}

func (t *Tape) Read(pos int) bool {
	cells, index := t.cells(pos)
	if index >= len(*cells) {
		return false
	}
	return (*cells)[index]
}

// Write stores v at pos, growing the backing slice with false cells when pos
// is past the current extreme.
func (t *Tape) Write(pos int, v bool) {
	cells, index := t.cells(pos)
	if index >= len(*cells) {
		*cells = append(*cells, make([]bool, index+1-len(*cells))...)
	}
	(*cells)[index] = v
}

func (t *Tape) GetCurrentCell() bool {
	return t.Read(t.Head)
}

func (t *Tape) SetCurrentCell(v bool) {
	t.Write(t.Head, v)
}

func (t *Tape) Flip() {
	t.SetCurrentCell(!t.GetCurrentCell())
}

func (t *Tape) MovePointerLeft() {
	t.Head = t.Head - 1
}

func (t *Tape) MovePointerRight() {
	t.Head = t.Head + 1
}

// Extent reports the lowest and highest positions backed by storage.
func (t *Tape) Extent() (int, int) {
	return -len(t.Negative), len(t.Positive) - 1
}
