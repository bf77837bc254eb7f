package service

import (
	"context"
	"time"

	"github.com/soundry/Royalty-Ledger-Backend/internal/model"
	"golang.org/x/sync/errgroup"
)

// maturationConcurrency bounds how many records the maturation job rolls
// over in parallel. Records are independent, so parallelism is safe; the
// limit keeps the SQLite write pressure modest.
const maturationConcurrency = 4

// MatureDue rolls over every record whose next payout date has passed:
// pending platform earnings become available, derived fields are recomputed
// and the next payout date advances to the first of the following month.
// Returns the number of records rolled over.
func (s *LedgerService) MatureDue(ctx context.Context, asOf time.Time) (int, error) {
	ids, err := s.ledgerRepo.ListMaturedRecordIDs(asOf)
	if err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maturationConcurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			return s.matureRecord(ctx, id, asOf)
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	return len(ids), nil
}

func (s *LedgerService) matureRecord(ctx context.Context, recordID string, asOf time.Time) error {
	unlock := s.locks.lock(recordID)
	defer unlock()

	rec, err := s.ledgerRepo.GetByID(recordID)
	if err != nil {
		return err
	}

	for i := range rec.Platforms {
		if rec.Platforms[i].Status == model.PlatformStatusPending {
			rec.Platforms[i].Status = model.PlatformStatusAvailable
		}
	}
	rec.Metadata.NextPayoutDate = firstOfNextMonth(asOf)

	recompute(rec, time.Now().UTC())

	return s.ledgerRepo.Update(ctx, rec)
}
