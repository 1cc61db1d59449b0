package service

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/domain"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/period"
)

// SummaryAnalyst measures one record class over the current and previous
// periods and over the four segments of the current one.
func (s *reportService) SummaryAnalyst(ctx context.Context, req domain.SummaryAnalystRequest) (domain.SummaryAnalystResponse, error) {
	fields := logrus.Fields{
		"Function":    "SummaryAnalyst",
		"TypeSummary": req.TypeSummary,
		"Period":      req.Period,
	}
	s.Logger.WithFields(fields).Info("Computing summary analyst")

	kind := req.Period
	if kind == "" {
		kind = period.Month
	}
	periods, err := s.resolver.Resolve(kind, req.DateRange)
	if err != nil {
		s.fail(fields, err, "Failed to resolve summary period")
		return domain.SummaryAnalystResponse{}, err
	}
	m, err := summaryMetric(req.TypeSummary)
	if err != nil {
		s.fail(fields, err, "Unknown summary type")
		return domain.SummaryAnalystResponse{}, err
	}

	var (
		current, previous float64
		series            [period.SegmentCount]float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		current, err = measure(gctx, s.repo, m, periods.Current)
		return err
	})
	g.Go(func() (err error) {
		previous, err = measure(gctx, s.repo, m, periods.Previous)
		return err
	})
	for i, seg := range period.Segments(periods.Current) {
		g.Go(func() (err error) {
			series[i], err = measure(gctx, s.repo, m, seg)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.fail(fields, err, "Failed to measure summary")
		return domain.SummaryAnalystResponse{}, err
	}

	s.Logger.WithFields(fields).WithFields(logrus.Fields{
		"Total":    current,
		"Previous": previous,
	}).Info("Summary analyst computed successfully")

	return domain.SummaryAnalystResponse{
		Percent: ChangeFraction(current, previous),
		Total:   current,
		Series:  series,
	}, nil
}
