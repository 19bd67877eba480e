package model

// Face values of the notes the machine holds, largest first.
const (
	Denom2000 int64 = 2000
	Denom500  int64 = 500
	Denom200  int64 = 200
	Denom100  int64 = 100
)

// NoteBundle is a count of notes per denomination. It doubles as the
// machine inventory and as the mix dispensed for a single withdrawal.
type NoteBundle struct {
	Note2000 int
	Note500  int
	Note200  int
	Note100  int
}

// DefaultInventory is the stock assumed when no inventory record exists.
func DefaultInventory() NoteBundle {
	return NoteBundle{Note2000: 10, Note500: 20, Note200: 50, Note100: 100}
}

// Total returns the cash value of the bundle.
func (b NoteBundle) Total() int64 {
	return int64(b.Note2000)*Denom2000 +
		int64(b.Note500)*Denom500 +
		int64(b.Note200)*Denom200 +
		int64(b.Note100)*Denom100
}

// Add returns a bundle with o's counts added.
func (b NoteBundle) Add(o NoteBundle) NoteBundle {
	return NoteBundle{
		Note2000: b.Note2000 + o.Note2000,
		Note500:  b.Note500 + o.Note500,
		Note200:  b.Note200 + o.Note200,
		Note100:  b.Note100 + o.Note100,
	}
}

// Subtract returns a bundle with o's counts removed.
func (b NoteBundle) Subtract(o NoteBundle) NoteBundle {
	return NoteBundle{
		Note2000: b.Note2000 - o.Note2000,
		Note500:  b.Note500 - o.Note500,
		Note200:  b.Note200 - o.Note200,
		Note100:  b.Note100 - o.Note100,
	}
}

// HasNegative reports whether any count is below zero.
func (b NoteBundle) HasNegative() bool {
	return b.Note2000 < 0 || b.Note500 < 0 || b.Note200 < 0 || b.Note100 < 0
}
