package editor

import (
	"context"
	"fmt"

	"github.com/jask/tallis/internal/database/repository"
	"github.com/jask/tallis/internal/grid"
	"github.com/jask/tallis/internal/ledger"
)

// Save validates the window and writes it as one transaction. In edit mode the
// original transaction is soft-deleted in the same unit. On success the editor
// returns to initial and the new transaction id is returned. On any failure the
// window and pinned fields are left as they were.
func (e *Editor) Save(ctx context.Context) (int64, error) {
	s, err := e.active()
	if err != nil {
		return 0, err
	}
	log := e.sessionLog(s)

	amounts, err := e.windowAmounts(s)
	if err != nil {
		return 0, err
	}
	if err := ledger.CheckBalanced(amounts); err != nil {
		log.Info().Err(err).Msg("save rejected")
		return 0, err
	}
	splits := make([]repository.SplitInput, 0, s.size())
	for i, r := 0, s.start; r < s.end; i, r = i+1, r+1 {
		fund, err := e.grid.ChoiceAt(r, ColFund)
		if err != nil {
			return 0, fmt.Errorf("row %d fund: %w", r, err)
		}
		account, err := e.grid.ChoiceAt(r, ColAccount)
		if err != nil {
			return 0, fmt.Errorf("row %d account: %w", r, err)
		}
		splits = append(splits, repository.SplitInput{Amount: amounts[i], FundID: fund.ID, AccountID: account.ID})
	}
	date, err := ledger.NormalizeDate(s.date)
	if err != nil {
		return 0, err
	}

	var oldID *int64
	if st, ok := e.state.(*editingState); ok {
		id := st.transactionID
		oldID = &id
	}
	newID, err := e.store.ReplaceTransaction(ctx, oldID, date, s.description, splits)
	if err != nil {
		log.Error().Err(err).Msg("save failed")
		return 0, fmt.Errorf("save transaction: %w", err)
	}
	ev := log.Info().Int64("transaction", newID).Int("splits", len(splits))
	if oldID != nil {
		ev = ev.Int64("replaced", *oldID)
	}
	ev.Msg("transaction saved")
	return newID, e.finish(ctx, s)
}

// Cancel discards the window and returns to the canonical view.
func (e *Editor) Cancel(ctx context.Context) error {
	s, err := e.active()
	if err != nil {
		return err
	}
	e.sessionLog(s).Debug().Msg("cancelled")
	return e.finish(ctx, s)
}

// DeleteTransaction soft-deletes the transaction being edited. confirmed is the
// user's answer to the confirmation prompt. Only valid in edit mode.
func (e *Editor) DeleteTransaction(ctx context.Context, confirmed bool) error {
	st, ok := e.state.(*editingState)
	if !ok {
		return ErrWrongMode
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	log := e.sessionLog(&st.session)
	if err := e.store.SoftDeleteTransaction(ctx, st.transactionID); err != nil {
		log.Error().Err(err).Int64("transaction", st.transactionID).Msg("delete failed")
		return fmt.Errorf("delete transaction %d: %w", st.transactionID, err)
	}
	log.Info().Int64("transaction", st.transactionID).Msg("transaction deleted")
	return e.finish(ctx, &st.session)
}

// finish clears the session and reloads the canonical filtered view. The
// cursor returns to the row the session started on. When the reload fails the
// stale rows stay but are shown neutral and readonly.
func (e *Editor) finish(ctx context.Context, s *session) error {
	start := s.start
	e.state = initialState{}
	e.accounts.SetEnabled(true)
	e.funds.SetEnabled(true)
	if e.buttons != nil {
		e.buttons.Show(ModeInitial)
	}
	if err := e.showCanonical(ctx); err != nil {
		for i := 0; i < e.grid.Len(); i++ {
			e.grid.HighlightRow(i, grid.StyleNeutral)
		}
		e.grid.SetAllReadonly(true)
		return err
	}
	if n := e.grid.Len(); n > 0 {
		if start >= n {
			start = n - 1
		}
		e.grid.SetFocus(start, ColDate)
	}
	return nil
}
