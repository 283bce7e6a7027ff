// Package insights composes the store, the normalizers and the engine
// primitives into the named business-intelligence views.
//
// Every view is a pure function of the entity snapshot behind the
// store.Reader: parameters are validated before any read, an empty result
// is reported as ErrNoData, and no partial result is ever returned.
package insights

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/spektr-org/bizlens/engine"
	"github.com/spektr-org/bizlens/logging"
	"github.com/spektr-org/bizlens/metrics"
	"github.com/spektr-org/bizlens/store"
)

// Service computes views over a store.Reader. It holds no mutable state
// and is safe for concurrent use.
type Service struct {
	reader store.Reader
	limits Limits
	log    zerolog.Logger
}

// New creates a Service reading from r.
func New(r store.Reader, opts ...Option) *Service {
	s := &Service{
		reader: r,
		limits: DefaultLimits(),
		log:    logging.Component("insights"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the effective limits.
func (s *Service) Limits() Limits { return s.limits }

// run validates params, computes the view, maps an empty result to
// ErrNoData and records metrics and a debug log line.
func run[P any, R any](ctx context.Context, s *Service, view string, params P, compute func(context.Context, P) ([]R, error)) ([]R, error) {
	start := time.Now()

	if err := validateParams(params); err != nil {
		metrics.ObserveView(view, time.Since(start), 0, metrics.OutcomeValidation)
		return nil, err
	}

	rows, err := compute(ctx, params)
	if err == nil && len(rows) == 0 {
		err = ErrNoData
	}
	if err != nil {
		rows = nil
	}

	took := time.Since(start)
	outcome := outcomeOf(err)
	metrics.ObserveView(view, took, len(rows), outcome)

	ev := s.log.Debug()
	if outcome == metrics.OutcomeStore || outcome == metrics.OutcomeOther {
		ev = s.log.Warn().Err(err)
	}
	ev.Str("view", view).
		Str("outcome", outcome).
		Int("rows", len(rows)).
		Dur("took", took).
		Msg("view computed")

	return rows, err
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrNoData):
		return metrics.OutcomeNoData
	case errors.Is(err, ErrValidation):
		return metrics.OutcomeValidation
	case errors.Is(err, ErrStoreUnavailable):
		return metrics.OutcomeStore
	default:
		return metrics.OutcomeOther
	}
}

// noParams is the parameter type of views without parameters.
type noParams struct{}

// ============================================================================
// STORE ACCESS — every read goes through storeError
// ============================================================================

func (s *Service) businesses(ctx context.Context, city string) ([]store.Business, error) {
	bs, err := s.reader.Businesses(ctx, city)
	return bs, storeError(err)
}

func (s *Service) business(ctx context.Context, id string) (store.Business, error) {
	b, err := s.reader.Business(ctx, id)
	return b, storeError(err)
}

func (s *Service) reviews(ctx context.Context, filter store.ReviewFilter) ([]store.Review, error) {
	rs, err := s.reader.Reviews(ctx, filter)
	return rs, storeError(err)
}

func (s *Service) checkins(ctx context.Context, businessIDs []string) ([]store.Checkin, error) {
	cs, err := s.reader.Checkins(ctx, businessIDs...)
	return cs, storeError(err)
}

func (s *Service) users(ctx context.Context, ids []string) ([]store.User, error) {
	us, err := s.reader.Users(ctx, ids...)
	return us, storeError(err)
}

// reviewAdapter exposes reviews to the engine. date sorts chronologically
// as a string.
var reviewAdapter = engine.NewDomainAdapter[store.Review]().
	Dimension("business_id", func(r store.Review) string { return r.BusinessID }).
	Dimension("user_id", func(r store.Review) string { return r.UserID }).
	Dimension("date", func(r store.Review) string { return r.Date.Format(store.TimestampLayout) }).
	Dimension("star", func(r store.Review) string { return strconv.Itoa(r.Stars) }).
	Measure("stars", func(r store.Review) float64 { return float64(r.Stars) }).
	Measure("useful", func(r store.Review) float64 { return float64(r.Useful) }).
	Measure("feedback", func(r store.Review) float64 { return float64(r.Useful + r.Funny + r.Cool) })

func businessIDs(bs []store.Business) []string {
	ids := make([]string, len(bs))
	for i, b := range bs {
		ids[i] = b.ID
	}
	return ids
}

func indexBusinesses(bs []store.Business) map[string]store.Business {
	m := make(map[string]store.Business, len(bs))
	for _, b := range bs {
		m[b.ID] = b
	}
	return m
}

// checkinEvents explodes the checkins of bs, logging skipped timestamps.
func (s *Service) checkinEvents(ctx context.Context, bs []store.Business) ([]CheckinEvent, error) {
	if len(bs) == 0 {
		return nil, nil
	}
	raw, err := s.checkins(ctx, businessIDs(bs))
	if err != nil {
		return nil, err
	}
	byBusiness := make(map[string][]store.Checkin)
	for _, c := range raw {
		byBusiness[c.BusinessID] = append(byBusiness[c.BusinessID], c)
	}

	var events []CheckinEvent
	skipped := 0
	for _, b := range bs {
		ev, n := ExplodeCheckins(b, byBusiness[b.ID])
		events = append(events, ev...)
		skipped += n
	}
	if skipped > 0 {
		s.log.Warn().Int("skipped", skipped).Msg("malformed checkin timestamps skipped")
	}
	return events, ctx.Err()
}
