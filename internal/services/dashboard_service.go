package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Zigorr/Wallet-Fullstack/internal/cache"
	"github.com/Zigorr/Wallet-Fullstack/internal/core"
	"github.com/Zigorr/Wallet-Fullstack/internal/storage"
)

// Overview is the dashboard headline: the dominant-currency summary plus the
// untouched per-currency aggregates behind it.
type Overview struct {
	Summary    core.Summary
	Aggregates []core.CurrencyAggregate
}

// DashboardService serves the analytics reads. Overviews are cached per user
// and invalidated on every write through the OnChange hooks.
type DashboardService struct {
	storage   *storage.SQLiteRepository
	overviews *cache.LRUCache[Overview]
}

func NewDashboardService(st *storage.SQLiteRepository, manager *cache.Manager) *DashboardService {
	overviews := cache.NewLRUCache[Overview](1000, 5*time.Minute)
	if manager != nil {
		manager.Register(overviews)
	}
	return &DashboardService{storage: st, overviews: overviews}
}

func (s *DashboardService) Overview(ctx context.Context, ownerID int64) (Overview, error) {
	key := strconv.FormatInt(ownerID, 10)
	if cached, ok := s.overviews.Get(key); ok {
		return cached, nil
	}

	aggs, err := s.storage.CurrencyAggregates(ctx, ownerID)
	if err != nil {
		return Overview{}, fmt.Errorf("currency aggregates: %w", err)
	}

	ov := Overview{Summary: core.BuildSummary(aggs), Aggregates: aggs}
	s.overviews.Set(key, ov)
	return ov, nil
}

// Invalidate drops the cached overview for one user. Wire it to the write
// services' OnChange hooks.
func (s *DashboardService) Invalidate(ownerID int64) {
	s.overviews.Delete(strconv.FormatInt(ownerID, 10))
}

func (s *DashboardService) CategoryBreakdown(ctx context.Context, ownerID int64, typ core.TransactionType, from, to core.Date) ([]core.CategoryAmount, error) {
	if typ != core.TransactionIncome && typ != core.TransactionExpense {
		return nil, fmt.Errorf("%w: breakdown type must be INCOME or EXPENSE", core.ErrValidation)
	}
	return s.storage.CategoryBreakdown(ctx, ownerID, typ, from, to)
}

// MonthlySeries returns the income/expense series for one calendar year.
func (s *DashboardService) MonthlySeries(ctx context.Context, ownerID int64, year int) ([]core.MonthlyPoint, error) {
	if year < 1970 || year > 9999 {
		return nil, fmt.Errorf("%w: year %d out of range", core.ErrValidation, year)
	}
	points, err := s.storage.MonthlySeries(ctx, ownerID, core.NewDate(year, 1, 1))
	if err != nil {
		return nil, err
	}
	out := points[:0]
	for _, p := range points {
		if p.Year == year {
			out = append(out, p)
		}
	}
	return out, nil
}
