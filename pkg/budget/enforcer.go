// Package budget enforces spend limits over the interaction tracker.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clinsight-ai/clinsight/pkg/models"
	"github.com/clinsight-ai/clinsight/pkg/tracker"
)

// ErrSpendLimitExceeded is returned when a request would exceed a policy.
var ErrSpendLimitExceeded = errors.New("spend limit exceeded")

// Enforcer checks estimated spend against configured policies.
type Enforcer struct {
	tracker  tracker.Tracker
	policies []models.SpendPolicy
	now      func() time.Time
}

// New creates an Enforcer over a tracker and a set of policies.
func New(t tracker.Tracker, policies []models.SpendPolicy) *Enforcer {
	return &Enforcer{tracker: t, policies: policies, now: time.Now}
}

// periodStart returns the UTC start of the current period.
func periodStart(period models.SpendPeriod, now time.Time) time.Time {
	now = now.UTC()
	switch period {
	case models.SpendMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// applies reports whether a policy constrains the given model. A policy with
// no model applies to everything.
func applies(p models.SpendPolicy, model string) bool {
	return p.Model == "" || strings.EqualFold(p.Model, model)
}

// Check returns ErrSpendLimitExceeded when recording estimatedCost for model
// would push any applicable policy past its limit.
func (e *Enforcer) Check(ctx context.Context, model string, estimatedCost float64) error {
	for _, p := range e.policies {
		if !applies(p, model) {
			continue
		}
		used, err := e.tracker.SpendSince(ctx, p.Model, periodStart(p.Period, e.now()))
		if err != nil {
			return fmt.Errorf("check spend for policy %q: %w", p.Model, err)
		}
		if used+estimatedCost > p.MaxUSD {
			return fmt.Errorf("%w: %s limit $%.2f, used $%.4f, request $%.4f",
				ErrSpendLimitExceeded, p.Period, p.MaxUSD, used, estimatedCost)
		}
	}
	return nil
}

// Status reports current usage against every policy.
func (e *Enforcer) Status(ctx context.Context) ([]models.SpendStatus, error) {
	statuses := make([]models.SpendStatus, 0, len(e.policies))
	for _, p := range e.policies {
		used, err := e.tracker.SpendSince(ctx, p.Model, periodStart(p.Period, e.now()))
		if err != nil {
			return nil, fmt.Errorf("spend status for policy %q: %w", p.Model, err)
		}
		remaining := p.MaxUSD - used
		if remaining < 0 {
			remaining = 0
		}
		statuses = append(statuses, models.SpendStatus{Policy: p, Used: used, Remaining: remaining})
	}
	return statuses, nil
}
