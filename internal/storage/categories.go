package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/models"
)

const categoryColumns = `id, user_id, name, color, parent_id, created_at`

// CreateCategory inserts c, filling in ID and CreatedAt when they are empty.
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = s.newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Color, nullString(c.ParentID), dateutils.ToStorage(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetCategory returns the category if it belongs to userID.
func (s *Store) GetCategory(ctx context.Context, userID, id string) (models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = ? AND user_id = ?`, id, userID)

	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// ListCategories returns the user's categories ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE user_id = ?
		ORDER BY name COLLATE NOCASE ASC, created_at ASC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory overwrites name, color and parent.
func (s *Store) UpdateCategory(ctx context.Context, c models.Category) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, color = ?, parent_id = ?
		WHERE id = ? AND user_id = ?`,
		c.Name, c.Color, nullString(c.ParentID), c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireAffected(res)
}

// DeleteCategory removes the category. Subcategories and rules cascade;
// transactions lose their category.
func (s *Store) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireAffected(res)
}

func scanCategory(sc scanner) (models.Category, error) {
	var (
		c         models.Category
		parentID  sql.NullString
		createdAt string
	)
	if err := sc.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &parentID, &createdAt); err != nil {
		return models.Category{}, err
	}
	c.ParentID = stringPtr(parentID)

	var err error
	if c.CreatedAt, err = dateutils.FromStorage(createdAt); err != nil {
		return models.Category{}, err
	}
	return c, nil
}
