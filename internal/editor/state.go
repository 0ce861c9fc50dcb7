package editor

import "fmt"

// Mode is the editor's top-level state.
type Mode int

const (
	ModeInitial Mode = iota
	ModeEdit
	ModeAdd
)

func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModeAdd:
		return "add"
	default:
		return "initial"
	}
}

// state is one of initialState, *editingState or *addingState. Data that only
// exists while editing (the window, pinned fields, the original transaction
// id) lives on the state value, so it cannot be reached from initial.
type state interface {
	mode() Mode
}

type initialState struct{}

func (initialState) mode() Mode { return ModeInitial }

// session is shared by edit and add: the editable window [start, end) and the
// pinned fields written to every split on save.
type session struct {
	id          string
	start, end  int
	date        string
	description string
}

func (s *session) contains(row int) bool { return row >= s.start && row < s.end }

func (s *session) size() int { return s.end - s.start }

type editingState struct {
	session
	transactionID int64
}

func (*editingState) mode() Mode { return ModeEdit }

type addingState struct {
	session
}

func (*addingState) mode() Mode { return ModeAdd }

// Session is a read-only view of the active edit or add session.
type Session struct {
	ID            string
	Mode          Mode
	TransactionID int64 // zero when adding
	Date          string
	Description   string
	Start, End    int
}

func (s Session) String() string {
	return fmt.Sprintf("%s[%d,%d)", s.Mode, s.Start, s.End)
}
