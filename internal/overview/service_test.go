package overview

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/inventory-dashboard/internal/inventoryapi"
	"github.com/wichananm65/inventory-dashboard/internal/reportquery"
)

type stubSource struct {
	income    inventoryapi.IncomeStatement
	value     decimal.Decimal
	expiring  []inventoryapi.ExpiringBatch
	failValue error

	bestLimit     int
	slowThreshold int
	expiringDays  int
}

func (s *stubSource) IncomeStatement(context.Context, inventoryapi.Window) (inventoryapi.IncomeStatement, error) {
	return s.income, nil
}

func (s *stubSource) InventoryValuation(context.Context, *int64) (decimal.Decimal, error) {
	return s.value, s.failValue
}

func (s *stubSource) Bestsellers(_ context.Context, _ inventoryapi.Window, limit int) ([]inventoryapi.BestSeller, error) {
	s.bestLimit = limit
	return []inventoryapi.BestSeller{{ProductID: 1, ProductName: "Milk", TotalQuantity: 40}}, nil
}

func (s *stubSource) SlowMovers(_ context.Context, _ inventoryapi.Window, threshold int) ([]inventoryapi.SlowMover, error) {
	s.slowThreshold = threshold
	return nil, nil
}

func (s *stubSource) ExpiringBatches(_ context.Context, withinDays int, _ *int64) ([]inventoryapi.ExpiringBatch, error) {
	s.expiringDays = withinDays
	return s.expiring, nil
}

func query() reportquery.Query {
	return reportquery.Query{Window: inventoryapi.Window{
		From: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}}
}

func TestGet_ComputesKPIs(t *testing.T) {
	src := &stubSource{
		income: inventoryapi.IncomeStatement{
			Revenue: decimal.RequireFromString("1000.00"),
			COGS:    decimal.RequireFromString("650.00"),
		},
		value: decimal.RequireFromString("12345.67"),
		expiring: []inventoryapi.ExpiringBatch{
			{BatchID: 1, Quantity: 12},
			{BatchID: 2, Quantity: 3},
		},
	}

	out, err := NewService(src).Get(context.Background(), query())
	require.NoError(t, err)

	assert.Equal(t, "350", out.GrossProfit.String())
	require.NotNil(t, out.GrossMarginPct)
	assert.Equal(t, "35", out.GrossMarginPct.String())
	assert.Equal(t, "12345.67", out.InventoryValue.String())
	assert.Equal(t, 2, out.ExpiringSoonCount)
	assert.Equal(t, 15, out.ExpiringSoonQuantity)
	assert.Len(t, out.Bestsellers, 1)
	assert.NotNil(t, out.SlowMovers)

	assert.Equal(t, BestsellerLimit, src.bestLimit)
	assert.Equal(t, SlowMoverThreshold, src.slowThreshold)
	assert.Equal(t, ExpiryAlertDays, src.expiringDays)
}

func TestGet_PrefersBackendGrossProfit(t *testing.T) {
	gross := decimal.RequireFromString("600.25")
	src := &stubSource{income: inventoryapi.IncomeStatement{
		Revenue:     decimal.RequireFromString("1500.50"),
		COGS:        decimal.RequireFromString("900.00"),
		GrossProfit: &gross,
	}}

	out, err := NewService(src).Get(context.Background(), query())
	require.NoError(t, err)
	assert.Equal(t, "600.25", out.GrossProfit.String())
	require.NotNil(t, out.GrossMarginPct)
	assert.Equal(t, "40", out.GrossMarginPct.String())
}

func TestGet_NoRevenueHasNoMargin(t *testing.T) {
	out, err := NewService(&stubSource{}).Get(context.Background(), query())
	require.NoError(t, err)
	assert.Nil(t, out.GrossMarginPct)
	assert.True(t, out.GrossProfit.IsZero())
}

func TestGet_AnyFailureFails(t *testing.T) {
	_, err := NewService(&stubSource{failValue: inventoryapi.ErrUnavailable}).Get(context.Background(), query())
	require.Error(t, err)
	assert.True(t, errors.Is(err, inventoryapi.ErrUnavailable))
	assert.Contains(t, err.Error(), "inventory valuation")
}

func TestOverviewRoute(t *testing.T) {
	app := fiber.New()
	NewHandler(NewService(&stubSource{income: inventoryapi.IncomeStatement{Revenue: decimal.NewFromInt(10)}}),
		reportquery.Defaults{WindowDays: 30, HorizonDays: 30}).RegisterRoutes(app)

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/overview?from=2025-01-01&to=2025-01-31", nil))
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"grossMarginPct":"100"`) {
		t.Fatalf("unexpected body: %s", string(b))
	}

	res2, _ := app.Test(httptest.NewRequest("GET", "/api/v1/overview?from=2025-02-01&to=2025-01-01", nil))
	if res2.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res2.StatusCode)
	}
}
