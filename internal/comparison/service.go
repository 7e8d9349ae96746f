package comparison

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/wichananm65/inventory-dashboard/internal/inventoryapi"
	"github.com/wichananm65/inventory-dashboard/internal/logging"
	"github.com/wichananm65/inventory-dashboard/internal/metrics"
	"github.com/wichananm65/inventory-dashboard/internal/recommendation"
	"github.com/wichananm65/inventory-dashboard/internal/reportquery"
	"github.com/wichananm65/inventory-dashboard/internal/snapshot"
)

// FeedSource fetches the raw recommendation feeds.
type FeedSource interface {
	RuleRecommendations(ctx context.Context, q inventoryapi.RuleQuery) ([]gjson.Result, error)
	MLRecommendations(ctx context.Context, q inventoryapi.MLQuery) (inventoryapi.MLEnvelope, error)
}

type Options struct {
	TTEWindowDays    int
	ExpiryWindowDays int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service reconciles the rule engine and ML feeds.
type Service struct {
	source    FeedSource
	snapshots snapshot.Repository
	opts      Options
}

func NewService(src FeedSource, snapshots snapshot.Repository, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{source: src, snapshots: snapshots, opts: opts}
}

func (s *Service) ruleQuery(q reportquery.Query) inventoryapi.RuleQuery {
	return inventoryapi.RuleQuery{
		Window:           q.Window,
		TTEWindowDays:    s.opts.TTEWindowDays,
		ExpiryWindowDays: s.opts.ExpiryWindowDays,
	}
}

func mlQuery(q reportquery.Query) inventoryapi.MLQuery {
	return inventoryapi.MLQuery{Window: q.Window, HorizonDays: q.HorizonDays}
}

func modelMetrics(env inventoryapi.MLEnvelope) ModelMetrics {
	return ModelMetrics{
		HorizonDays: env.HorizonDays,
		RMSE:        env.RMSE,
		MAPE:        env.MAPE,
		SampleCount: env.SampleCount,
	}
}

// RuleFeed returns the normalized rule engine feed.
func (s *Service) RuleFeed(ctx context.Context, q reportquery.Query) (RuleFeed, error) {
	raw, err := s.source.RuleRecommendations(ctx, s.ruleQuery(q))
	if err != nil {
		return RuleFeed{}, fmt.Errorf("rule feed: %w", err)
	}
	items := recommendation.NormalizeRules(raw)
	return RuleFeed{
		From:     q.From.Format(inventoryapi.DateLayout),
		To:       q.To.Format(inventoryapi.DateLayout),
		BranchID: q.BranchID,
		Counts:   recommendation.CountRuleCategories(items),
		Items:    items,
	}, nil
}

// MLFeed returns the normalized ML feed with its model metrics.
func (s *Service) MLFeed(ctx context.Context, q reportquery.Query) (MLFeed, error) {
	env, err := s.source.MLRecommendations(ctx, mlQuery(q))
	if err != nil {
		return MLFeed{}, fmt.Errorf("ml feed: %w", err)
	}
	items := recommendation.NormalizeMLs(env.Items)
	return MLFeed{
		From:     q.From.Format(inventoryapi.DateLayout),
		To:       q.To.Format(inventoryapi.DateLayout),
		BranchID: q.BranchID,
		Model:    modelMetrics(env),
		Counts:   recommendation.CountMLCategories(items),
		Items:    items,
	}, nil
}

// Compare reconciles both feeds and records the outcome: counters, the
// conflict gauge and a snapshot. A snapshot failure is only logged.
func (s *Service) Compare(ctx context.Context, q reportquery.Query) (Result, error) {
	res, err := s.Reconcile(ctx, q)
	if err != nil {
		metrics.ComparisonsTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}
	cmp := res.Comparison

	metrics.ComparisonsTotal.WithLabelValues("ok").Inc()
	metrics.ComparisonConflicts.Set(float64(len(cmp.Conflicts)))
	logging.Info().
		Str("from", res.From).
		Str("to", res.To).
		Int("matched", cmp.Matched).
		Int("conflicts", len(cmp.Conflicts)).
		Msg("recommendation comparison computed")

	if s.snapshots != nil {
		snap := snapshot.New(res.From, res.To, res.BranchID, cmp, s.opts.Now())
		if err := s.snapshots.Save(ctx, snap); err != nil {
			metrics.SnapshotWriteErrors.Inc()
			logging.Warn().Err(err).Str("snapshot", snap.ID.String()).Msg("failed to store comparison snapshot")
		} else {
			res.SnapshotID = &snap.ID
		}
	}
	return res, nil
}

// Reconcile fetches both feeds concurrently and reconciles them once both
// have arrived. A failure of either feed fails the reconciliation. Nothing
// is recorded, so exports can re-derive a comparison without adding to the
// history or the comparison counters.
func (s *Service) Reconcile(ctx context.Context, q reportquery.Query) (Result, error) {
	var (
		rawRules []gjson.Result
		env      inventoryapi.MLEnvelope
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if rawRules, err = s.source.RuleRecommendations(gctx, s.ruleQuery(q)); err != nil {
			return fmt.Errorf("rule feed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if env, err = s.source.MLRecommendations(gctx, mlQuery(q)); err != nil {
			return fmt.Errorf("ml feed: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{
		From:       q.From.Format(inventoryapi.DateLayout),
		To:         q.To.Format(inventoryapi.DateLayout),
		BranchID:   q.BranchID,
		Model:      modelMetrics(env),
		Comparison: recommendation.Compare(recommendation.NormalizeRules(rawRules), recommendation.NormalizeMLs(env.Items)),
	}, nil
}

// History lists the most recent comparison snapshots, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]snapshot.Snapshot, error) {
	if s.snapshots == nil {
		return []snapshot.Snapshot{}, nil
	}
	return s.snapshots.List(ctx, limit)
}
