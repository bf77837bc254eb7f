package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/soundry/Royalty-Ledger-Backend/internal/api/request"
	"github.com/soundry/Royalty-Ledger-Backend/internal/apperrors"
	"github.com/soundry/Royalty-Ledger-Backend/internal/model"
	"github.com/soundry/Royalty-Ledger-Backend/internal/repository"
)

// ValidPayoutMethod contains the allowed payout method values.
var ValidPayoutMethod = map[string]bool{
	model.PayoutMethodPayPal:       true,
	model.PayoutMethodBankTransfer: true,
	model.PayoutMethodCrypto:       true,
}

// validProcessStatus contains the allowed target statuses for ProcessPayout.
var validProcessStatus = map[string]bool{
	model.PayoutStatusProcessing: true,
	model.PayoutStatusCompleted:  true,
	model.PayoutStatusFailed:     true,
}

// LedgerDefaults holds the defaults applied to newly created ledger records.
type LedgerDefaults struct {
	Currency        string
	PayoutThreshold float64
}

// LedgerService handles earnings ledger business logic: ingestion, payout
// lifecycle, split management and reporting. All mutations take a per-record
// lock and go through a single recompute before persisting, so balances are
// always internally consistent.
type LedgerService struct {
	ledgerRepo *repository.LedgerRepository
	locks      *recordLocks
	defaults   LedgerDefaults
}

// NewLedgerService creates a new LedgerService with the provided repository
// and record defaults.
func NewLedgerService(ledgerRepo *repository.LedgerRepository, defaults LedgerDefaults) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
		locks:      newRecordLocks(),
		defaults:   defaults,
	}
}

// Ingest merges a platform royalty report line into the ledger record for
// (userID, songID, period), creating the record on first ingestion. The
// platform entry is matched case-insensitively on the trimmed name; deltas
// are additive. Totals, splits and tax withholding are recomputed before the
// record is persisted.
func (s *LedgerService) Ingest(ctx context.Context, req request.IngestEarningsRequest) (*model.LedgerRecord, error) {
	if req.Revenue < 0 || req.Plays < 0 {
		return nil, apperrors.ErrInvalidAmount
	}

	rec, err := s.getOrCreateRecord(ctx, req)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(rec.ID)
	defer unlock()

	// Reload under the lock; the unlocked lookup above may be stale.
	rec, err = s.ledgerRepo.GetByID(rec.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	applyIngest(rec, req)
	recompute(rec, now)

	if err := s.ledgerRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

func (s *LedgerService) getOrCreateRecord(ctx context.Context, req request.IngestEarningsRequest) (*model.LedgerRecord, error) {
	rec, err := s.ledgerRepo.GetByKey(req.UserID, req.SongID, req.Period)
	if err == nil {
		return rec, nil
	}
	if err != apperrors.ErrLedgerRecordNotFound {
		return nil, err
	}

	now := time.Now().UTC()
	rec = &model.LedgerRecord{
		ID:               uuid.New().String(),
		UserID:           req.UserID,
		SongID:           req.SongID,
		WhiteLabelDomain: req.WhiteLabelDomain,
		Period:           req.Period,
		Platforms:        []model.PlatformEarning{},
		Splits:           []model.Split{},
		Payouts:          []model.Payout{},
		Notifications:    []model.Notification{},
		Metadata: model.Metadata{
			NextPayoutDate:  firstOfNextMonth(now),
			PayoutThreshold: s.defaults.PayoutThreshold,
			Currency:        s.defaults.Currency,
			LastCalculated:  now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.ledgerRepo.Insert(ctx, rec); err != nil {
		// A concurrent ingestion may have created the record between the
		// lookup and the insert; the unique (user, song, period) constraint
		// rejects the duplicate, so fall back to the existing row.
		if existing, getErr := s.ledgerRepo.GetByKey(req.UserID, req.SongID, req.Period); getErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create ledger record: %w", err)
	}

	return rec, nil
}

func applyIngest(rec *model.LedgerRecord, req request.IngestEarningsRequest) {
	key := normalizePlatform(req.Platform)

	for i := range rec.Platforms {
		if normalizePlatform(rec.Platforms[i].Name) != key {
			continue
		}
		rec.Platforms[i].Amount += req.Revenue
		rec.Platforms[i].Plays += req.Plays
		rec.Platforms[i].Playlists += req.Playlists
		rec.Platforms[i].Saves += req.Saves
		rec.Platforms[i].Shares += req.Shares
		return
	}

	rec.Platforms = append(rec.Platforms, model.PlatformEarning{
		ID:        uuid.New().String(),
		Name:      trimmedName(req.Platform),
		Amount:    req.Revenue,
		Plays:     req.Plays,
		Status:    model.PlatformStatusPending,
		Playlists: req.Playlists,
		Saves:     req.Saves,
		Shares:    req.Shares,
	})
}

// RequestPayout validates and records a withdrawal request against a
// record's available balance. The amount is reserved (available moves to
// pending) and a pending payout entry is appended, to be finalized later by
// ProcessPayout once the payment collaborator reports back.
func (s *LedgerService) RequestPayout(ctx context.Context, req request.CreatePayoutRequest) (*model.Payout, error) {
	if req.Amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if !ValidPayoutMethod[req.Method] {
		return nil, apperrors.ErrInvalidMethod
	}

	unlock := s.locks.lock(req.LedgerRecordID)
	defer unlock()

	rec, err := s.ledgerRepo.GetByID(req.LedgerRecordID)
	if err != nil {
		return nil, err
	}

	if req.Amount > rec.Totals.Available {
		return nil, apperrors.ErrInsufficientBalance
	}
	if req.Amount < rec.Metadata.PayoutThreshold {
		return nil, apperrors.ErrBelowMinimumThreshold
	}

	now := time.Now().UTC()
	payout := model.Payout{
		ID:          uuid.New().String(),
		Amount:      req.Amount,
		Method:      req.Method,
		Status:      model.PayoutStatusPending,
		RequestedAt: now,
		Notes:       req.Notes,
	}
	rec.Payouts = append(rec.Payouts, payout)

	rec.Notifications = append(rec.Notifications, model.Notification{
		ID:   uuid.New().String(),
		Type: model.NotificationPayoutRequested,
		Message: fmt.Sprintf("Payout request of %s %s via %s has been submitted.",
			formatAmount(req.Amount), rec.Metadata.Currency, req.Method),
		Date: now,
	})

	recompute(rec, now)

	if err := s.ledgerRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	return &payout, nil
}

// ProcessPayout applies the payment collaborator's result to a payout:
// processing updates the status only, completed moves the reserved amount to
// withdrawn, failed returns it to available. A payout that already reached a
// terminal state is rejected with apperrors.ErrPayoutFinalized, so reporting
// the same result twice cannot double-apply balance changes.
func (s *LedgerService) ProcessPayout(ctx context.Context, payoutID string, req request.ProcessPayoutRequest) (*model.Payout, error) {
	if !validProcessStatus[req.Status] {
		return nil, apperrors.ErrInvalidStatus
	}

	owner, err := s.ledgerRepo.FindByPayoutID(payoutID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(owner.ID)
	defer unlock()

	rec, err := s.ledgerRepo.GetByID(owner.ID)
	if err != nil {
		return nil, err
	}

	var payout *model.Payout
	for i := range rec.Payouts {
		if rec.Payouts[i].ID == payoutID {
			payout = &rec.Payouts[i]
			break
		}
	}
	if payout == nil {
		return nil, apperrors.ErrPayoutNotFound
	}
	if payout.Terminal() {
		return nil, apperrors.ErrPayoutFinalized
	}

	now := time.Now().UTC()
	payout.Status = req.Status
	payout.ProcessedAt = &now
	if req.TransactionID != "" {
		payout.TransactionID = req.TransactionID
	}
	if req.Notes != "" {
		payout.Notes = req.Notes
	}

	switch req.Status {
	case model.PayoutStatusCompleted:
		rec.Notifications = append(rec.Notifications, model.Notification{
			ID:   uuid.New().String(),
			Type: model.NotificationPayoutCompleted,
			Message: fmt.Sprintf("Payout of %s %s has been processed.",
				formatAmount(payout.Amount), rec.Metadata.Currency),
			Date: now,
		})
	case model.PayoutStatusFailed:
		rec.Notifications = append(rec.Notifications, model.Notification{
			ID:   uuid.New().String(),
			Type: model.NotificationPayoutFailed,
			Message: fmt.Sprintf("Payout of %s %s has failed.",
				formatAmount(payout.Amount), rec.Metadata.Currency),
			Date: now,
		})
	}

	recompute(rec, now)

	if err := s.ledgerRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	result := *payout
	return &result, nil
}

// UpdateSplits replaces a record's revenue splits and, optionally, its tax
// withholding rate, then recomputes derived amounts. Percentages are checked
// individually against 0-100 but are not required to sum to 100.
func (s *LedgerService) UpdateSplits(ctx context.Context, recordID string, req request.UpdateSplitsRequest) (*model.LedgerRecord, error) {
	for _, split := range req.Splits {
		if split.Percentage < 0 || split.Percentage > 100 {
			return nil, apperrors.ErrInvalidPercentage
		}
	}
	if req.WithholdingRate != nil && (*req.WithholdingRate < 0 || *req.WithholdingRate > 100) {
		return nil, apperrors.ErrInvalidPercentage
	}

	unlock := s.locks.lock(recordID)
	defer unlock()

	rec, err := s.ledgerRepo.GetByID(recordID)
	if err != nil {
		return nil, err
	}

	splits := make([]model.Split, 0, len(req.Splits))
	for _, in := range req.Splits {
		splits = append(splits, model.Split{
			ID:             uuid.New().String(),
			CollaboratorID: in.CollaboratorID,
			Role:           in.Role,
			Percentage:     in.Percentage,
		})
	}
	rec.Splits = splits

	if req.WithholdingRate != nil {
		rec.Tax.Rate = *req.WithholdingRate
	}

	recompute(rec, time.Now().UTC())

	if err := s.ledgerRepo.Update(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// GetRecord retrieves a single ledger record aggregate by ID.
func (s *LedgerService) GetRecord(recordID string) (*model.LedgerRecord, error) {
	return s.ledgerRepo.GetByID(recordID)
}

// History retrieves a user's ledger records, newest period first, optionally
// bounded by an inclusive period range and filtered by white-label domain.
func (s *LedgerService) History(userID, startPeriod, endPeriod, domain string) ([]*model.LedgerRecord, error) {
	return s.ledgerRepo.ListByUser(userID, startPeriod, endPeriod, domain)
}

// SongEarnings retrieves all ledger records for a song, newest period first.
func (s *LedgerService) SongEarnings(songID string) ([]*model.LedgerRecord, error) {
	return s.ledgerRepo.ListBySong(songID)
}

// Summary aggregates a user's earnings for one period across all songs.
func (s *LedgerService) Summary(userID, period string) (model.EarningsSummary, error) {
	return s.ledgerRepo.Summary(userID, period)
}

// PayoutHistory retrieves all payouts across a user's records, newest first.
func (s *LedgerService) PayoutHistory(userID string) (model.PayoutHistory, error) {
	return s.ledgerRepo.ListPayoutsByUser(userID)
}

// Notifications returns the notification list of a ledger record.
func (s *LedgerService) Notifications(recordID string) ([]model.Notification, error) {
	rec, err := s.ledgerRepo.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	return rec.Notifications, nil
}

// MarkNotificationRead flips a notification's read flag.
func (s *LedgerService) MarkNotificationRead(ctx context.Context, recordID, notificationID string) error {
	if _, err := s.ledgerRepo.GetByID(recordID); err != nil {
		return err
	}
	return s.ledgerRepo.MarkNotificationRead(ctx, recordID, notificationID)
}

// formatAmount renders a monetary amount for notification messages without
// trailing zeros, e.g. 60 -> "60", 60.5 -> "60.5".
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
