package repository

import (
	"context"
	"database/sql"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Upsert(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(id, parent_id, name, sort_order)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 parent_id=excluded.parent_id,
	 name=excluded.name,
	 sort_order=excluded.sort_order;
	`, c.ID, c.ParentID, c.Name, c.SortOrder)
	return err
}

// GetByName resolves a category by exact name under the given parent;
// parentID nil means a top-level category.
func (r *CategoryRepo) GetByName(ctx context.Context, parentID *string, name string) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, parent_id, name, sort_order FROM categories
	WHERE COALESCE(parent_id, '') = COALESCE(?, '') AND name = ?
	`, parentID, name)
	var c Category
	if err := row.Scan(&c.ID, &c.ParentID, &c.Name, &c.SortOrder); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, parent_id, name, sort_order FROM categories WHERE id = ?`, id)
	var c Category
	if err := row.Scan(&c.ID, &c.ParentID, &c.Name, &c.SortOrder); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, parent_id, name, sort_order FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
