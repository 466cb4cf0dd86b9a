package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/spendwise/internal/dateutils"
	"fjacquet/spendwise/internal/logging"
	"fjacquet/spendwise/internal/models"

	"github.com/shopspring/decimal"
)

const transactionColumns = `t.id, t.account_id, t.amount, t.type, t.date, t.description, t.category_id,
	t.latitude, t.longitude, t.location_name, t.is_recurring, t.recurring_frequency,
	t.created_at, t.updated_at`

// TransactionFilter narrows ListTransactions. Zero values mean no filter.
type TransactionFilter struct {
	AccountID  string
	Direction  models.Direction
	CategoryID string
	// Description matches a case-insensitive substring of the description.
	Description string
	// From is inclusive, To exclusive.
	From, To time.Time
	Limit    int
	Offset   int
}

// CreateTransaction inserts tx and moves the account balance by its signed
// amount in one database transaction.
func (s *Store) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	s.prepareTransaction(tx)
	return s.withTx(ctx, func(sqlTx *sql.Tx) error {
		if err := insertTransaction(ctx, sqlTx, tx); err != nil {
			return err
		}
		return adjustBalance(ctx, sqlTx, tx.AccountID, tx.SignedAmount())
	})
}

// InsertTransactions stores every candidate on accountID and adjusts the
// balance once by their signed sum, atomically.
func (s *Store) InsertTransactions(ctx context.Context, accountID string, candidates []models.Candidate) ([]models.Transaction, error) {
	out := make([]models.Transaction, 0, len(candidates))
	for _, c := range candidates {
		tx := models.Transaction{
			AccountID:    accountID,
			Amount:       c.Amount.Abs(),
			Direction:    c.Direction,
			Date:         c.Date,
			Description:  c.Description,
			CategoryID:   c.CategoryID,
			Latitude:     c.Latitude,
			Longitude:    c.Longitude,
			LocationName: c.LocationName,
		}
		s.prepareTransaction(&tx)
		out = append(out, tx)
	}

	err := s.withTx(ctx, func(sqlTx *sql.Tx) error {
		for i := range out {
			if err := insertTransaction(ctx, sqlTx, &out[i]); err != nil {
				return err
			}
		}
		return adjustBalance(ctx, sqlTx, accountID, models.SumSigned(candidates))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Inserted transactions",
		logging.F(logging.FieldAccountID, accountID),
		logging.F(logging.FieldCount, len(out)))
	return out, nil
}

func (s *Store) prepareTransaction(tx *models.Transaction) {
	if tx.ID == "" {
		tx.ID = s.newID()
	}
	now := s.now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	if tx.UpdatedAt.IsZero() {
		tx.UpdatedAt = tx.CreatedAt
	}
}

func insertTransaction(ctx context.Context, q execer, tx *models.Transaction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (id, account_id, amount, type, date, description, category_id,
			latitude, longitude, location_name, is_recurring, recurring_frequency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.AccountID, tx.Amount.Abs().String(), string(tx.Direction), dateutils.ToStorage(tx.Date),
		tx.Description, nullString(tx.CategoryID), nullFloat(tx.Latitude), nullFloat(tx.Longitude),
		nullString(tx.LocationName), boolInt(tx.IsRecurring), nullFrequency(tx.RecurringFrequency),
		dateutils.ToStorage(tx.CreatedAt), dateutils.ToStorage(tx.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction returns the transaction if its account belongs to userID.
func (s *Store) GetTransaction(ctx context.Context, userID, id string) (models.Transaction, error) {
	return getTransaction(ctx, s.db, userID, id)
}

func getTransaction(ctx context.Context, q execer, userID, id string) (models.Transaction, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.id = ? AND a.user_id = ?`, id, userID)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns one page of the user's transactions, newest date
// first, together with the total number of matches.
func (s *Store) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]models.Transaction, int, error) {
	conds := []string{"a.user_id = ?"}
	args := []any{userID}
	if f.AccountID != "" {
		conds = append(conds, "t.account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.Direction != "" {
		conds = append(conds, "t.type = ?")
		args = append(args, string(f.Direction))
	}
	if f.CategoryID != "" {
		conds = append(conds, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Description != "" {
		conds = append(conds, "instr(lower(t.description), lower(?)) > 0")
		args = append(args, f.Description)
	}
	if !f.From.IsZero() {
		conds = append(conds, "t.date >= ?")
		args = append(args, dateutils.ToStorage(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "t.date < ?")
		args = append(args, dateutils.ToStorage(f.To))
	}
	where := "WHERE " + strings.Join(conds, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id ` + where + `
		ORDER BY t.date DESC, t.created_at DESC, t.rowid DESC`
	pageArgs := append([]any(nil), args...)
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		pageArgs = append(pageArgs, f.Limit, max(f.Offset, 0))
	}

	txns, err := queryTransactions(ctx, s.db, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// TransactionsBetween returns the account's transactions dated in [from, to).
func (s *Store) TransactionsBetween(ctx context.Context, accountID string, from, to time.Time) ([]models.Transaction, error) {
	return queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions t
		WHERE t.account_id = ? AND t.date >= ? AND t.date < ?
		ORDER BY t.date ASC, t.rowid ASC`,
		accountID, dateutils.ToStorage(from), dateutils.ToStorage(to))
}

func queryTransactions(ctx context.Context, q execer, query string, args ...any) ([]models.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, tx)
	}
	return txns, rows.Err()
}

// UpdateTransaction loads the transaction, applies mutate and writes it
// back. The account balance moves by the difference between the new and
// the old signed amounts. Everything happens in one database transaction.
func (s *Store) UpdateTransaction(ctx context.Context, userID, id string, mutate func(*models.Transaction) error) (models.Transaction, error) {
	var updated models.Transaction
	err := s.withTx(ctx, func(sqlTx *sql.Tx) error {
		old, err := getTransaction(ctx, sqlTx, userID, id)
		if err != nil {
			return err
		}

		updated = old
		if err := mutate(&updated); err != nil {
			return err
		}
		// identity and ownership are not editable
		updated.ID, updated.AccountID, updated.CreatedAt = old.ID, old.AccountID, old.CreatedAt
		updated.UpdatedAt = s.now()

		if _, err := sqlTx.ExecContext(ctx, `
			UPDATE transactions
			SET amount = ?, type = ?, date = ?, description = ?, category_id = ?,
			    latitude = ?, longitude = ?, location_name = ?, is_recurring = ?,
			    recurring_frequency = ?, updated_at = ?
			WHERE id = ?`,
			updated.Amount.Abs().String(), string(updated.Direction), dateutils.ToStorage(updated.Date),
			updated.Description, nullString(updated.CategoryID), nullFloat(updated.Latitude),
			nullFloat(updated.Longitude), nullString(updated.LocationName), boolInt(updated.IsRecurring),
			nullFrequency(updated.RecurringFrequency), dateutils.ToStorage(updated.UpdatedAt), id); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		delta := updated.SignedAmount().Sub(old.SignedAmount())
		return adjustBalance(ctx, sqlTx, old.AccountID, delta)
	})
	if err != nil {
		return models.Transaction{}, err
	}
	return updated, nil
}

// DeleteTransaction removes the transaction and reverses its effect on the
// account balance.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	return s.withTx(ctx, func(sqlTx *sql.Tx) error {
		old, err := getTransaction(ctx, sqlTx, userID, id)
		if err != nil {
			return err
		}
		if _, err := sqlTx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return adjustBalance(ctx, sqlTx, old.AccountID, old.SignedAmount().Neg())
	})
}

func nullFrequency(f *models.Frequency) sql.NullString {
	if f == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*f), Valid: true}
}

func scanTransaction(sc scanner) (models.Transaction, error) {
	var (
		tx                   models.Transaction
		amount, direction    string
		date                 string
		categoryID, location sql.NullString
		lat, lon             sql.NullFloat64
		isRecurring          int
		frequency            sql.NullString
		createdAt, updatedAt string
	)
	if err := sc.Scan(&tx.ID, &tx.AccountID, &amount, &direction, &date, &tx.Description, &categoryID,
		&lat, &lon, &location, &isRecurring, &frequency, &createdAt, &updatedAt); err != nil {
		return models.Transaction{}, err
	}

	var err error
	if tx.Amount, err = decimal.NewFromString(amount); err != nil {
		return models.Transaction{}, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	tx.Direction = models.Direction(direction)
	if tx.Date, err = dateutils.FromStorage(date); err != nil {
		return models.Transaction{}, err
	}
	tx.CategoryID = stringPtr(categoryID)
	tx.Latitude = floatPtr(lat)
	tx.Longitude = floatPtr(lon)
	tx.LocationName = stringPtr(location)
	tx.IsRecurring = isRecurring != 0
	if frequency.Valid {
		f := models.Frequency(frequency.String)
		tx.RecurringFrequency = &f
	}
	if tx.CreatedAt, err = dateutils.FromStorage(createdAt); err != nil {
		return models.Transaction{}, err
	}
	if tx.UpdatedAt, err = dateutils.FromStorage(updatedAt); err != nil {
		return models.Transaction{}, err
	}
	return tx, nil
}
