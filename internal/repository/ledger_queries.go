package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/soundry/Royalty-Ledger-Backend/internal/apperrors"
	"github.com/soundry/Royalty-Ledger-Backend/internal/model"
)

// ListByUser retrieves all ledger records for a user, newest period first.
// startPeriod/endPeriod filter on the YYYY-MM token (inclusive, lexicographic
// comparison matches chronological order); empty strings disable the bound.
// domain, when non-empty, filters on the white-label domain.
func (r *LedgerRepository) ListByUser(userID, startPeriod, endPeriod, domain string) ([]*model.LedgerRecord, error) {
	query := `SELECT ` + ledgerRecordColumns + ` FROM ledger_record WHERE user_id = ?`
	args := []any{userID}

	if startPeriod != "" {
		query += ` AND period >= ?`
		args = append(args, startPeriod)
	}
	if endPeriod != "" {
		query += ` AND period <= ?`
		args = append(args, endPeriod)
	}
	if domain != "" {
		query += ` AND white_label_domain = ?`
		args = append(args, domain)
	}
	query += ` ORDER BY period DESC, song_id ASC`

	return r.list(query, args...)
}

// ListBySong retrieves all ledger records for a song, newest period first.
func (r *LedgerRepository) ListBySong(songID string) ([]*model.LedgerRecord, error) {
	query := `SELECT ` + ledgerRecordColumns + ` FROM ledger_record
		WHERE song_id = ? ORDER BY period DESC`
	return r.list(query, songID)
}

func (r *LedgerRepository) list(query string, args ...any) ([]*model.LedgerRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger_record table: %w", err)
	}
	defer rows.Close()

	records := []*model.LedgerRecord{}
	for rows.Next() {
		rec, err := scanLedgerRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger_record table: %w", err)
	}

	if err := r.loadChildren(records); err != nil {
		return nil, err
	}

	return records, nil
}

// Summary aggregates a user's earnings for one period across all songs.
func (r *LedgerRepository) Summary(userID, period string) (model.EarningsSummary, error) {
	summary := model.EarningsSummary{
		UserID:    userID,
		Period:    period,
		Platforms: []model.PlatformSummary{},
	}

	query := `
		SELECT COUNT(*), COALESCE(SUM(total), 0), COALESCE(SUM(pending), 0),
			COALESCE(SUM(available), 0), COALESCE(SUM(withdrawn), 0)
		FROM ledger_record
		WHERE user_id = ? AND period = ?
	`
	err := r.db.QueryRow(query, userID, period).Scan(
		&summary.Records,
		&summary.Total,
		&summary.Pending,
		&summary.Available,
		&summary.Withdrawn,
	)
	if err != nil {
		return summary, fmt.Errorf("failed to aggregate ledger_record table: %w", err)
	}

	platformQuery := `
		SELECT pe.name, SUM(pe.amount), SUM(pe.plays)
		FROM platform_earning pe
		JOIN ledger_record lr ON pe.ledger_record_id = lr.id
		WHERE lr.user_id = ? AND lr.period = ?
		GROUP BY pe.name
		ORDER BY SUM(pe.amount) DESC
	`
	rows, err := r.db.Query(platformQuery, userID, period)
	if err != nil {
		return summary, fmt.Errorf("failed to aggregate platform_earning table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.PlatformSummary
		if err := rows.Scan(&p.Name, &p.Amount, &p.Plays); err != nil {
			return summary, fmt.Errorf("failed to scan platform summary row: %w", err)
		}
		summary.Platforms = append(summary.Platforms, p)
	}

	return summary, rows.Err()
}

// ListPayoutsByUser retrieves all payouts across a user's ledger records,
// newest first, together with the total of completed payout amounts.
func (r *LedgerRepository) ListPayoutsByUser(userID string) (model.PayoutHistory, error) {
	history := model.PayoutHistory{Payouts: []model.PayoutEntry{}}

	query := `
		SELECT p.id, p.ledger_record_id, p.amount, p.method, p.status,
			p.transaction_id, p.requested_at, p.processed_at, p.notes,
			lr.song_id, lr.period, lr.currency
		FROM payout p
		JOIN ledger_record lr ON p.ledger_record_id = lr.id
		WHERE lr.user_id = ?
		ORDER BY p.requested_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return history, fmt.Errorf("failed to query payout table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry model.PayoutEntry
		var recordID string
		p, err := scanPayoutEntry(rows, &recordID, &entry)
		if err != nil {
			return history, err
		}
		entry.Payout = p
		entry.LedgerRecordID = recordID
		history.Payouts = append(history.Payouts, entry)
		if p.Status == model.PayoutStatusCompleted {
			history.TotalPaid += p.Amount
		}
	}

	return history, rows.Err()
}

func scanPayoutEntry(row rowScanner, recordID *string, entry *model.PayoutEntry) (model.Payout, error) {
	var p model.Payout
	var transactionID, requestedAt, processedAt, notes sql.NullString

	err := row.Scan(&p.ID, recordID, &p.Amount, &p.Method, &p.Status,
		&transactionID, &requestedAt, &processedAt, &notes,
		&entry.SongID, &entry.Period, &entry.Currency)
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

// ListMaturedRecordIDs returns the IDs of records whose next payout date has
// passed and that still hold pending platform earnings. These are the records
// the maturation job needs to roll over.
func (r *LedgerRepository) ListMaturedRecordIDs(asOf time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT lr.id
		FROM ledger_record lr
		JOIN platform_earning pe ON pe.ledger_record_id = lr.id
		WHERE lr.next_payout_date IS NOT NULL
		AND lr.next_payout_date <= ?
		AND pe.status = ?
	`
	rows, err := r.db.Query(query, FormatTime(asOf), model.PlatformStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to query matured records: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan record id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// MarkNotificationRead flips a notification's read flag in place. This is a
// child-row touch-up that does not alter balances, so it bypasses the
// aggregate version check.
func (r *LedgerRepository) MarkNotificationRead(ctx context.Context, recordID, notificationID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notification SET read = TRUE WHERE id = ? AND ledger_record_id = ?`,
		notificationID, recordID,
	)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotificationNotFound
	}

	return nil
}
