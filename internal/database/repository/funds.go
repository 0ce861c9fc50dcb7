package repository

import (
	"context"
	"database/sql"
)

// FundRepo handles funds.
type FundRepo struct {
	db *sql.DB
}

func NewFundRepo(db *sql.DB) *FundRepo {
	return &FundRepo{db: db}
}

func (r *FundRepo) Upsert(ctx context.Context, f Fund) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO fund(id, name) VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET name=excluded.name;
	`, f.ID, f.Name)
	return err
}

func (r *FundRepo) List(ctx context.Context) ([]Fund, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM fund ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Fund
	for rows.Next() {
		var f Fund
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
