// Package ledger keeps each temple's running donation points total.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sharath018/temple-waste-backend/internal/apperr"
)

type Strategy string

const (
	// StrategyAtomic lets the database add the delta in a single UPDATE.
	StrategyAtomic Strategy = "atomic"
	// StrategyReadModifyWrite reads the total, adds in process and writes it
	// back. Two overlapping calls for one temple can lose an update.
	StrategyReadModifyWrite Strategy = "read-modify-write"
)

const (
	templesTable = "temples"
	logsTable    = "temple_daily_logs"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyAtomic:
		return StrategyAtomic, nil
	case StrategyReadModifyWrite:
		return StrategyReadModifyWrite, nil
	default:
		return "", fmt.Errorf("unknown ledger strategy %q", s)
	}
}

type Ledger struct {
	db       *gorm.DB
	strategy Strategy
	log      *zap.SugaredLogger

	// beforeWrite runs between the read and the write of a read-modify-write
	// apply. Tests use it to interleave two callers.
	beforeWrite func(templeCode string, current int64)
}

func New(db *gorm.DB, strategy Strategy, log *zap.SugaredLogger) *Ledger {
	if strategy == "" {
		strategy = StrategyAtomic
	}
	return &Ledger{db: db, strategy: strategy, log: log.With("service", "PointsLedger")}
}

func (l *Ledger) Strategy() Strategy { return l.strategy }

// WithTx binds the ledger to an open transaction.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	cp := *l
	cp.db = tx
	return &cp
}

// ApplyPointsDelta adds delta to the temple's donation points. An unknown
// temple code is NotFound.
func (l *Ledger) ApplyPointsDelta(ctx context.Context, templeCode string, delta int64) error {
	if templeCode == "" {
		return apperr.Validation("temple code is required")
	}
	if delta == 0 {
		return l.ensureTemple(ctx, templeCode)
	}
	var err error
	if l.strategy == StrategyReadModifyWrite {
		err = l.readModifyWrite(ctx, templeCode, delta)
	} else {
		err = l.increment(ctx, templeCode, delta)
	}
	if err != nil {
		return err
	}
	l.log.Debugw("points applied", "temple_code", templeCode, "delta", delta, "strategy", l.strategy)
	return nil
}

func (l *Ledger) increment(ctx context.Context, templeCode string, delta int64) error {
	res := l.db.WithContext(ctx).Table(templesTable).
		Where("unique_code = ?", templeCode).
		Updates(map[string]interface{}{
			"donation_points": gorm.Expr("donation_points + ?", delta),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("increment points for %s: %w", templeCode, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("temple %q not found", templeCode)
	}
	return nil
}

func (l *Ledger) readModifyWrite(ctx context.Context, templeCode string, delta int64) error {
	current, err := l.Points(ctx, templeCode)
	if err != nil {
		return err
	}
	if l.beforeWrite != nil {
		l.beforeWrite(templeCode, current)
	}
	return l.set(ctx, templeCode, current+delta)
}

// Points reads the temple's current total.
func (l *Ledger) Points(ctx context.Context, templeCode string) (int64, error) {
	return l.read(ctx, l.db, templeCode)
}

// Lock reads the temple's total and holds a row lock on it until the
// surrounding transaction ends. Callers must be bound with WithTx.
func (l *Ledger) Lock(ctx context.Context, templeCode string) (int64, error) {
	return l.read(ctx, l.db.Clauses(clause.Locking{Strength: "UPDATE"}), templeCode)
}

func (l *Ledger) read(ctx context.Context, db *gorm.DB, templeCode string) (int64, error) {
	var row struct{ DonationPoints int64 }
	err := db.WithContext(ctx).Table(templesTable).
		Select("donation_points").
		Where("unique_code = ?", templeCode).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.NotFound("temple %q not found", templeCode)
	}
	if err != nil {
		return 0, fmt.Errorf("read points for %s: %w", templeCode, err)
	}
	return row.DonationPoints, nil
}

// RecomputePoints rebuilds the temple total as the sum of its daily log
// points and stores it. It returns the new total.
func (l *Ledger) RecomputePoints(ctx context.Context, templeCode string) (int64, error) {
	if err := l.ensureTemple(ctx, templeCode); err != nil {
		return 0, err
	}
	var sum struct{ Total int64 }
	err := l.db.WithContext(ctx).Table(logsTable).
		Select("COALESCE(SUM(points), 0) AS total").
		Where("temple_code = ?", templeCode).
		Scan(&sum).Error
	if err != nil {
		return 0, fmt.Errorf("sum log points for %s: %w", templeCode, err)
	}
	if err := l.set(ctx, templeCode, sum.Total); err != nil {
		return 0, err
	}
	l.log.Infow("points recomputed", "temple_code", templeCode, "total", sum.Total)
	return sum.Total, nil
}

func (l *Ledger) set(ctx context.Context, templeCode string, total int64) error {
	res := l.db.WithContext(ctx).Table(templesTable).
		Where("unique_code = ?", templeCode).
		Updates(map[string]interface{}{"donation_points": total, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("write points for %s: %w", templeCode, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("temple %q not found", templeCode)
	}
	return nil
}

func (l *Ledger) ensureTemple(ctx context.Context, templeCode string) error {
	_, err := l.Points(ctx, templeCode)
	return err
}
