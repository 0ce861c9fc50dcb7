// Package prefs keeps small pieces of UI state between runs.
package prefs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/jask/tallis/internal/database/repository"
)

const stateFile = "state.toml"

// Filter is the last ledger view the user looked at. Both selector values are
// kept so switching kinds restores the other selector too.
type Filter struct {
	Kind      repository.FilterKind `toml:"kind"`
	AccountID int64                 `toml:"account_id"`
	FundID    int64                 `toml:"fund_id"`
}

// Active returns the repository filter for the stored kind.
func (f Filter) Active() repository.Filter {
	if f.Kind == repository.FilterFund {
		return repository.Filter{Kind: repository.FilterFund, ID: f.FundID}
	}
	return repository.Filter{Kind: repository.FilterAccount, ID: f.AccountID}
}

// Store reads and writes the state file in Dir.
type Store struct {
	Dir string
}

// Default is the store under the user config dir.
func Default() (Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Store{}, err
	}
	return Store{Dir: filepath.Join(dir, "tallis")}, nil
}

func (s Store) path() string { return filepath.Join(s.Dir, stateFile) }

func (s Store) SaveFilter(f Filter) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(f)
	if err != nil {
		return err
	}
	path := s.path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFilter returns the saved filter. ok is false when nothing was saved yet.
func (s Store) LoadFilter() (f Filter, ok bool, err error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Filter{}, false, nil
		}
		return Filter{}, false, err
	}
	if err := toml.Unmarshal(data, &f); err != nil {
		return Filter{}, false, err
	}
	if !f.Kind.Valid() {
		f.Kind = repository.FilterAccount
	}
	return f, true, nil
}
