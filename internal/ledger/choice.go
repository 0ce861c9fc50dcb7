package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// Choice is one option of an account or fund dropdown.
type Choice struct {
	ID    int64
	Label string
}

// NewChoice builds a choice for a reference row.
func NewChoice(id int64, name string) Choice {
	return Choice{ID: id, Label: name}
}

// String is the cell text shown for the choice ("id:name").
func (c Choice) String() string {
	return fmt.Sprintf("%d:%s", c.ID, c.Label)
}

// ParseChoice decodes cell text produced by String. The id is everything
// before the first ':'. Blank text is the zero choice.
func ParseChoice(s string) (Choice, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Choice{}, nil
	}
	idPart, label, _ := strings.Cut(s, ":")
	idPart = strings.TrimSpace(idPart)
	if idPart == "" {
		return Choice{Label: label}, nil
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return Choice{}, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
	}
	return Choice{ID: id, Label: label}, nil
}

// FindChoice returns the option matching text, by exact text first and then by id.
func FindChoice(options []Choice, text string) (int, bool) {
	for i, o := range options {
		if o.String() == text {
			return i, true
		}
	}
	c, err := ParseChoice(text)
	if err != nil || strings.TrimSpace(text) == "" {
		return -1, false
	}
	for i, o := range options {
		if o.ID == c.ID {
			return i, true
		}
	}
	return -1, false
}
