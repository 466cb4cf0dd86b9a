package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/models"

	"github.com/shopspring/decimal"
)

const ruleColumns = `id, user_id, category_id, name, match_field, match_pattern,
	min_amount, max_amount, priority, is_active, created_at, updated_at`

// Rules are returned in evaluation order.
const ruleOrder = `ORDER BY priority DESC, created_at ASC, rowid ASC`

// CreateRule inserts r, filling in ID and timestamps when they are empty.
func (s *Store) CreateRule(ctx context.Context, r *models.CategorizationRule) error {
	if r.ID == "" {
		r.ID = s.newID()
	}
	now := s.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categorization_rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.CategoryID, r.Name, string(r.MatchField), r.MatchPattern,
		nullDecimal(r.MinAmount), nullDecimal(r.MaxAmount), r.Priority, boolInt(r.IsActive),
		dateutils.ToStorage(r.CreatedAt), dateutils.ToStorage(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}
	return nil
}

// GetRule returns the rule if it belongs to userID.
func (s *Store) GetRule(ctx context.Context, userID, id string) (models.CategorizationRule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+ruleColumns+`
		FROM categorization_rules
		WHERE id = ? AND user_id = ?`, id, userID)

	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CategorizationRule{}, ErrNotFound
	}
	if err != nil {
		return models.CategorizationRule{}, fmt.Errorf("failed to get rule: %w", err)
	}
	return r, nil
}

// ListRules returns all of the user's rules in evaluation order.
func (s *Store) ListRules(ctx context.Context, userID string) ([]models.CategorizationRule, error) {
	return s.queryRules(ctx, `WHERE user_id = ? `+ruleOrder, userID)
}

// ListActiveRules returns the user's active rules in evaluation order.
func (s *Store) ListActiveRules(ctx context.Context, userID string) ([]models.CategorizationRule, error) {
	return s.queryRules(ctx, `WHERE user_id = ? AND is_active = 1 `+ruleOrder, userID)
}

func (s *Store) queryRules(ctx context.Context, where string, args ...any) ([]models.CategorizationRule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ruleColumns+` FROM categorization_rules `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []models.CategorizationRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// UpdateRule overwrites every mutable field and bumps UpdatedAt.
func (s *Store) UpdateRule(ctx context.Context, r *models.CategorizationRule) error {
	r.UpdatedAt = s.now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE categorization_rules
		SET category_id = ?, name = ?, match_field = ?, match_pattern = ?,
		    min_amount = ?, max_amount = ?, priority = ?, is_active = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		r.CategoryID, r.Name, string(r.MatchField), r.MatchPattern,
		nullDecimal(r.MinAmount), nullDecimal(r.MaxAmount), r.Priority, boolInt(r.IsActive),
		dateutils.ToStorage(r.UpdatedAt), r.ID, r.UserID)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	return requireAffected(res)
}

// DeleteRule removes a rule.
func (s *Store) DeleteRule(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categorization_rules WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return requireAffected(res)
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func decimalPtr(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", ns.String, err)
	}
	return &d, nil
}

func scanRule(sc scanner) (models.CategorizationRule, error) {
	var (
		r                    models.CategorizationRule
		matchField           string
		minAmount, maxAmount sql.NullString
		isActive             int
		createdAt, updatedAt string
	)
	if err := sc.Scan(&r.ID, &r.UserID, &r.CategoryID, &r.Name, &matchField, &r.MatchPattern,
		&minAmount, &maxAmount, &r.Priority, &isActive, &createdAt, &updatedAt); err != nil {
		return models.CategorizationRule{}, err
	}
	r.MatchField = models.MatchField(matchField)
	r.IsActive = isActive != 0

	var err error
	if r.MinAmount, err = decimalPtr(minAmount); err != nil {
		return models.CategorizationRule{}, err
	}
	if r.MaxAmount, err = decimalPtr(maxAmount); err != nil {
		return models.CategorizationRule{}, err
	}
	if r.CreatedAt, err = dateutils.FromStorage(createdAt); err != nil {
		return models.CategorizationRule{}, err
	}
	if r.UpdatedAt, err = dateutils.FromStorage(updatedAt); err != nil {
		return models.CategorizationRule{}, err
	}
	return r, nil
}
