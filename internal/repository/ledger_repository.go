package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/soundry/Royalty-Ledger-Backend/internal/apperrors"
	"github.com/soundry/Royalty-Ledger-Backend/internal/model"
)

// LedgerRepository provides data access methods for ledger records and their
// embedded collections (platform earnings, splits, payouts, notifications).
// A record is loaded and persisted as one aggregate; child rows are owned
// exclusively by their record and rewritten on every save.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new LedgerRepository with the provided database connection.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const ledgerRecordColumns = `
	id, user_id, song_id, white_label_domain, period,
	total, pending, available, withdrawn,
	withholding_rate, withheld_amount,
	last_calculated, next_payout_date, payout_threshold,
	minimum_payout_reached, currency, version, created_at, updated_at
`

// GetByID retrieves a single ledger record aggregate by its ID.
// Returns apperrors.ErrLedgerRecordNotFound if no record exists.
func (r *LedgerRepository) GetByID(id string) (*model.LedgerRecord, error) {
	query := `SELECT ` + ledgerRecordColumns + ` FROM ledger_record WHERE id = ?`
	return r.getOne(query, id)
}

// GetByKey retrieves a ledger record by its (user, song, period) identity.
// Returns apperrors.ErrLedgerRecordNotFound if no record exists.
func (r *LedgerRepository) GetByKey(userID, songID, period string) (*model.LedgerRecord, error) {
	query := `SELECT ` + ledgerRecordColumns + ` FROM ledger_record
		WHERE user_id = ? AND song_id = ? AND period = ?`
	return r.getOne(query, userID, songID, period)
}

// FindByPayoutID retrieves the ledger record that owns the given payout.
// Returns apperrors.ErrPayoutNotFound if no payout with that ID exists.
func (r *LedgerRepository) FindByPayoutID(payoutID string) (*model.LedgerRecord, error) {
	var recordID string
	err := r.db.QueryRow(`SELECT ledger_record_id FROM payout WHERE id = ?`, payoutID).Scan(&recordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrPayoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up payout owner: %w", err)
	}

	return r.GetByID(recordID)
}

func (r *LedgerRepository) getOne(query string, args ...any) (*model.LedgerRecord, error) {
	record, err := scanLedgerRecord(r.db.QueryRow(query, args...))
	if err != nil {
		return nil, err
	}

	if err := r.loadChildren([]*model.LedgerRecord{record}); err != nil {
		return nil, err
	}

	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedgerRecord(row rowScanner) (*model.LedgerRecord, error) {
	var rec model.LedgerRecord
	var domain, lastCalculated, nextPayoutDate, createdAt, updatedAt sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.SongID,
		&domain,
		&rec.Period,
		&rec.Totals.Total,
		&rec.Totals.Pending,
		&rec.Totals.Available,
		&rec.Totals.Withdrawn,
		&rec.Tax.Rate,
		&rec.Tax.WithheldAmount,
		&lastCalculated,
		&nextPayoutDate,
		&rec.Metadata.PayoutThreshold,
		&rec.Metadata.MinimumPayoutReached,
		&rec.Metadata.Currency,
		&rec.Version,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrLedgerRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ledger_record row: %w", err)
	}

	rec.WhiteLabelDomain = domain.String

	for _, field := range []struct {
		src sql.NullString
		dst *time.Time
	}{
		{lastCalculated, &rec.Metadata.LastCalculated},
		{nextPayoutDate, &rec.Metadata.NextPayoutDate},
		{createdAt, &rec.CreatedAt},
		{updatedAt, &rec.UpdatedAt},
	} {
		if !field.src.Valid || field.src.String == "" {
			continue
		}
		t, err := ParseTime(field.src.String)
		if err != nil {
			return nil, err
		}
		*field.dst = t
	}

	return &rec, nil
}

// loadChildren populates the embedded collections of the given records with
// batched IN queries, one per child table.
func (r *LedgerRepository) loadChildren(records []*model.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}

	byID := make(map[string]*model.LedgerRecord, len(records))
	args := make([]any, 0, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
		args = append(args, rec.ID)
		rec.Platforms = []model.PlatformEarning{}
		rec.Splits = []model.Split{}
		rec.Payouts = []model.Payout{}
		rec.Notifications = []model.Notification{}
	}
	in := placeholders(len(records))

	if err := r.loadPlatforms(in, args, byID); err != nil {
		return err
	}
	if err := r.loadSplits(in, args, byID); err != nil {
		return err
	}
	if err := r.loadPayouts(in, args, byID); err != nil {
		return err
	}
	return r.loadNotifications(in, args, byID)
}

func (r *LedgerRepository) loadPlatforms(in string, args []any, byID map[string]*model.LedgerRecord) error {
	query := `
		SELECT id, ledger_record_id, name, amount, plays, status, playlists, saves, shares
		FROM platform_earning
		WHERE ledger_record_id IN (` + in + `)
		ORDER BY rowid ASC
	`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query platform_earning table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID string
		var p model.PlatformEarning
		err := rows.Scan(&p.ID, &recordID, &p.Name, &p.Amount, &p.Plays, &p.Status, &p.Playlists, &p.Saves, &p.Shares)
		if err != nil {
			return fmt.Errorf("failed to scan platform_earning row: %w", err)
		}
		if rec := byID[recordID]; rec != nil {
			rec.Platforms = append(rec.Platforms, p)
		}
	}
	return rows.Err()
}

func (r *LedgerRepository) loadSplits(in string, args []any, byID map[string]*model.LedgerRecord) error {
	query := `
		SELECT id, ledger_record_id, collaborator_id, role, percentage, amount
		FROM split
		WHERE ledger_record_id IN (` + in + `)
		ORDER BY rowid ASC
	`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query split table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID string
		var role sql.NullString
		var s model.Split
		err := rows.Scan(&s.ID, &recordID, &s.CollaboratorID, &role, &s.Percentage, &s.Amount)
		if err != nil {
			return fmt.Errorf("failed to scan split row: %w", err)
		}
		s.Role = role.String
		if rec := byID[recordID]; rec != nil {
			rec.Splits = append(rec.Splits, s)
		}
	}
	return rows.Err()
}

func (r *LedgerRepository) loadPayouts(in string, args []any, byID map[string]*model.LedgerRecord) error {
	query := `
		SELECT id, ledger_record_id, amount, method, status, transaction_id, requested_at, processed_at, notes
		FROM payout
		WHERE ledger_record_id IN (` + in + `)
		ORDER BY rowid ASC
	`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query payout table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID string
		p, err := scanPayout(rows, &recordID)
		if err != nil {
			return err
		}
		if rec := byID[recordID]; rec != nil {
			rec.Payouts = append(rec.Payouts, p)
		}
	}
	return rows.Err()
}

func scanPayout(row rowScanner, recordID *string) (model.Payout, error) {
	var p model.Payout
	var transactionID, requestedAt, processedAt, notes sql.NullString

	err := row.Scan(&p.ID, recordID, &p.Amount, &p.Method, &p.Status, &transactionID, &requestedAt, &processedAt, &notes)
	if err != nil {
		return p, fmt.Errorf("failed to scan payout row: %w", err)
	}

	p.TransactionID = transactionID.String
	p.Notes = notes.String

	if requestedAt.Valid {
		p.RequestedAt, err = ParseTime(requestedAt.String)
		if err != nil {
			return p, err
		}
	}
	if processedAt.Valid && processedAt.String != "" {
		t, err := ParseTime(processedAt.String)
		if err != nil {
			return p, err
		}
		p.ProcessedAt = &t
	}

	return p, nil
}

func (r *LedgerRepository) loadNotifications(in string, args []any, byID map[string]*model.LedgerRecord) error {
	query := `
		SELECT id, ledger_record_id, type, message, date, read
		FROM notification
		WHERE ledger_record_id IN (` + in + `)
		ORDER BY rowid ASC
	`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query notification table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recordID, dateStr string
		var n model.Notification
		err := rows.Scan(&n.ID, &recordID, &n.Type, &n.Message, &dateStr, &n.Read)
		if err != nil {
			return fmt.Errorf("failed to scan notification row: %w", err)
		}
		n.Date, err = ParseTime(dateStr)
		if err != nil {
			return err
		}
		if rec := byID[recordID]; rec != nil {
			rec.Notifications = append(rec.Notifications, n)
		}
	}
	return rows.Err()
}

// Insert persists a new ledger record aggregate.
func (r *LedgerRepository) Insert(ctx context.Context, rec *model.LedgerRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
		INSERT INTO ledger_record (` + ledgerRecordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.SongID,
		nullString(rec.WhiteLabelDomain),
		rec.Period,
		rec.Totals.Total,
		rec.Totals.Pending,
		rec.Totals.Available,
		rec.Totals.Withdrawn,
		rec.Tax.Rate,
		rec.Tax.WithheldAmount,
		nullTime(rec.Metadata.LastCalculated),
		nullTime(rec.Metadata.NextPayoutDate),
		rec.Metadata.PayoutThreshold,
		rec.Metadata.MinimumPayoutReached,
		rec.Metadata.Currency,
		rec.Version,
		FormatTime(rec.CreatedAt),
		FormatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger_record: %w", err)
	}

	if err := insertChildren(ctx, tx, rec); err != nil {
		return err
	}

	return tx.Commit()
}

// Update persists an existing ledger record aggregate. The record's version
// is compared against the stored version; if another writer got there first
// the update is rejected with apperrors.ErrVersionConflict. On success the
// in-memory version is incremented to match the stored row.
func (r *LedgerRepository) Update(ctx context.Context, rec *model.LedgerRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
		UPDATE ledger_record SET
			white_label_domain = ?,
			total = ?, pending = ?, available = ?, withdrawn = ?,
			withholding_rate = ?, withheld_amount = ?,
			last_calculated = ?, next_payout_date = ?, payout_threshold = ?,
			minimum_payout_reached = ?, currency = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := tx.ExecContext(ctx, query,
		nullString(rec.WhiteLabelDomain),
		rec.Totals.Total,
		rec.Totals.Pending,
		rec.Totals.Available,
		rec.Totals.Withdrawn,
		rec.Tax.Rate,
		rec.Tax.WithheldAmount,
		nullTime(rec.Metadata.LastCalculated),
		nullTime(rec.Metadata.NextPayoutDate),
		rec.Metadata.PayoutThreshold,
		rec.Metadata.MinimumPayoutReached,
		rec.Metadata.Currency,
		FormatTime(rec.UpdatedAt),
		rec.ID,
		rec.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger_record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Either the record vanished or a concurrent writer bumped the
		// version. Records are never deleted, so report a conflict.
		return apperrors.ErrVersionConflict
	}

	// Child rows are rewritten wholesale; the record owns them exclusively.
	for _, table := range []string{"platform_earning", "split", "payout", "notification"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE ledger_record_id = ?`, rec.ID); err != nil {
			return fmt.Errorf("failed to clear %s rows: %w", table, err)
		}
	}

	if err := insertChildren(ctx, tx, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	rec.Version++
	return nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, rec *model.LedgerRecord) error {
	for _, p := range rec.Platforms {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO platform_earning (id, ledger_record_id, name, amount, plays, status, playlists, saves, shares)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, rec.ID, p.Name, p.Amount, p.Plays, p.Status, p.Playlists, p.Saves, p.Shares,
		)
		if err != nil {
			return fmt.Errorf("failed to insert platform_earning: %w", err)
		}
	}

	for _, s := range rec.Splits {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO split (id, ledger_record_id, collaborator_id, role, percentage, amount)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, rec.ID, s.CollaboratorID, nullString(s.Role), s.Percentage, s.Amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	for _, p := range rec.Payouts {
		var processedAt any
		if p.ProcessedAt != nil {
			processedAt = FormatTime(*p.ProcessedAt)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO payout (id, ledger_record_id, amount, method, status, transaction_id, requested_at, processed_at, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, rec.ID, p.Amount, p.Method, p.Status, nullString(p.TransactionID), FormatTime(p.RequestedAt), processedAt, nullString(p.Notes),
		)
		if err != nil {
			return fmt.Errorf("failed to insert payout: %w", err)
		}
	}

	for _, n := range rec.Notifications {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notification (id, ledger_record_id, type, message, date, read)
			VALUES (?, ?, ?, ?, ?, ?)`,
			n.ID, rec.ID, n.Type, n.Message, FormatTime(n.Date), n.Read,
		)
		if err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}
	}

	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return FormatTime(t)
}
