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

const accountColumns = `id, user_id, name, type, currency, balance, description, created_at`

// CreateAccount inserts a, filling in ID and CreatedAt when they are empty.
func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	if a.ID == "" {
		a.ID = s.newID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, a.Type, a.Currency, a.Balance.String(), a.Description,
		dateutils.ToStorage(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetAccount returns the account if it belongs to userID.
func (s *Store) GetAccount(ctx context.Context, userID, id string) (models.Account, error) {
	return getAccount(ctx, s.db, userID, id)
}

func getAccount(ctx context.Context, q execer, userID, id string) (models.Account, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = ? AND user_id = ?`, id, userID)

	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to get account: %w", err)
	}
	return a, nil
}

// ListAccounts returns the user's accounts, newest first.
func (s *Store) ListAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccount overwrites the mutable fields of an existing account.
func (s *Store) UpdateAccount(ctx context.Context, a models.Account) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, type = ?, currency = ?, balance = ?, description = ?
		WHERE id = ? AND user_id = ?`,
		a.Name, a.Type, a.Currency, a.Balance.String(), a.Description, a.ID, a.UserID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return requireAffected(res)
}

// DeleteAccount removes the account and, by cascade, its transactions.
func (s *Store) DeleteAccount(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return requireAffected(res)
}

// adjustBalance adds delta to the account balance inside tx.
func adjustBalance(ctx context.Context, tx *sql.Tx, accountID string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}

	var raw string
	err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("corrupt balance %q on account %s: %w", raw, accountID, err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`,
		balance.Add(delta).String(), accountID); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(sc scanner) (models.Account, error) {
	var (
		a         models.Account
		balance   string
		createdAt string
	)
	if err := sc.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Currency, &balance, &a.Description, &createdAt); err != nil {
		return models.Account{}, err
	}

	var err error
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return models.Account{}, fmt.Errorf("invalid balance %q: %w", balance, err)
	}
	if a.CreatedAt, err = dateutils.FromStorage(createdAt); err != nil {
		return models.Account{}, err
	}
	return a, nil
}
