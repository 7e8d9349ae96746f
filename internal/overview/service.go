package overview

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/inventory-dashboard/internal/inventoryapi"
	"github.com/wichananm65/inventory-dashboard/internal/reportquery"
)

// Source is the subset of the inventory API the overview reads.
type Source interface {
	IncomeStatement(ctx context.Context, w inventoryapi.Window) (inventoryapi.IncomeStatement, error)
	InventoryValuation(ctx context.Context, branchID *int64) (decimal.Decimal, error)
	Bestsellers(ctx context.Context, w inventoryapi.Window, limit int) ([]inventoryapi.BestSeller, error)
	SlowMovers(ctx context.Context, w inventoryapi.Window, threshold int) ([]inventoryapi.SlowMover, error)
	ExpiringBatches(ctx context.Context, withinDays int, branchID *int64) ([]inventoryapi.ExpiringBatch, error)
}

type Service struct {
	source Source
}

func NewService(s Source) *Service {
	return &Service{source: s}
}

// Get fetches all report endpoints concurrently. Any failure fails the overview.
func (s *Service) Get(ctx context.Context, q reportquery.Query) (Overview, error) {
	var (
		inc      inventoryapi.IncomeStatement
		value    decimal.Decimal
		best     []inventoryapi.BestSeller
		slow     []inventoryapi.SlowMover
		expiring []inventoryapi.ExpiringBatch
	)
	w := q.Window

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if inc, err = s.source.IncomeStatement(gctx, w); err != nil {
			err = fmt.Errorf("income statement: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		if value, err = s.source.InventoryValuation(gctx, w.BranchID); err != nil {
			err = fmt.Errorf("inventory valuation: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		if best, err = s.source.Bestsellers(gctx, w, BestsellerLimit); err != nil {
			err = fmt.Errorf("bestsellers: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		if slow, err = s.source.SlowMovers(gctx, w, SlowMoverThreshold); err != nil {
			err = fmt.Errorf("slow movers: %w", err)
		}
		return err
	})
	g.Go(func() (err error) {
		if expiring, err = s.source.ExpiringBatches(gctx, ExpiryAlertDays, w.BranchID); err != nil {
			err = fmt.Errorf("expiring batches: %w", err)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	gross, margin := grossFigures(inc)
	out := Overview{
		From:              q.From.Format(inventoryapi.DateLayout),
		To:                q.To.Format(inventoryapi.DateLayout),
		BranchID:          q.BranchID,
		Revenue:           inc.Revenue,
		COGS:              inc.COGS,
		GrossProfit:       gross,
		GrossMarginPct:    margin,
		InventoryValue:    value,
		ExpiringSoonCount: len(expiring),
		Bestsellers:       nonNil(best),
		SlowMovers:        nonNil(slow),
	}
	for _, b := range expiring {
		out.ExpiringSoonQuantity += b.Quantity
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
