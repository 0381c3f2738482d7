package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"drawbot/domain"
	"drawbot/domain/entities"
	"drawbot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultFetchTimeout = 15 * time.Second
	DefaultMaxAttempts  = 3
	DefaultRetryDelay   = 2 * time.Second
)

// ResolverOptions bounds how long resolution may wait on the membership source
type ResolverOptions struct {
	FetchTimeout time.Duration
	MaxAttempts  int
	RetryDelay   time.Duration
}

func (o ResolverOptions) withDefaults() ResolverOptions {
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}

// EligibilityResolver builds the candidate pool of a lottery at draw time
type EligibilityResolver struct {
	source        interfaces.MembershipSource
	blockedRoleID string
	opts          ResolverOptions
	metrics       interfaces.DrawMetrics
}

// NewEligibilityResolver creates a resolver. An empty blockedRoleID disables the exclusion.
func NewEligibilityResolver(source interfaces.MembershipSource, blockedRoleID string, opts ResolverOptions) *EligibilityResolver {
	return &EligibilityResolver{
		source:        source,
		blockedRoleID: blockedRoleID,
		opts:          opts.withDefaults(),
	}
}

// WithMetrics attaches a metrics sink for degraded fetches
func (r *EligibilityResolver) WithMetrics(metrics interfaces.DrawMetrics) *EligibilityResolver {
	r.metrics = metrics
	return r
}

// Resolve returns the eligible candidates for lottery, sorted by ID.
//
// Membership failures never fail resolution: they are logged as transient and the
// pool is built from whatever data is available. The only error returned is the
// context error when ctx is cancelled.
func (r *EligibilityResolver) Resolve(ctx context.Context, lottery *entities.Lottery) ([]entities.Candidate, error) {
	members, err := r.source.FetchMembersWithRole(ctx, lottery.TargetRoleID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.degraded(ctx, lottery, &domain.TransientFetchError{Op: "fetch", Err: err})
		members = nil
	}

	for attempt := 1; len(members) == 0 && attempt <= r.opts.MaxAttempts; attempt++ {
		refreshErr := r.refresh(ctx)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		members, err = r.source.FetchMembersWithRole(ctx, lottery.TargetRoleID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.degraded(ctx, lottery, &domain.TransientFetchError{Op: "fetch", Err: err})
			members = nil
		}

		if refreshErr == nil {
			// A completed refresh means an empty result is the real membership
			break
		}
		r.degraded(ctx, lottery, &domain.TransientFetchError{Op: "refresh", Err: refreshErr})

		if len(members) == 0 && attempt < r.opts.MaxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.opts.RetryDelay):
			}
		}
	}

	return FilterEligible(members, lottery, r.blockedRoleID), nil
}

// refresh races a bulk member refresh against the fetch timeout
func (r *EligibilityResolver) refresh(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- r.source.Refresh(fetchCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-fetchCtx.Done():
		return fetchCtx.Err()
	}
}

func (r *EligibilityResolver) degraded(ctx context.Context, lottery *entities.Lottery, err *domain.TransientFetchError) {
	reason := err.Op
	if errors.Is(err.Err, context.DeadlineExceeded) {
		reason = "timeout"
	}

	log.WithFields(log.Fields{
		"lottery_id":     lottery.ID,
		"target_role_id": lottery.TargetRoleID,
		"reason":         reason,
	}).WithError(err).Warn("Membership data degraded, continuing with partial member list")

	if r.metrics != nil {
		r.metrics.RecordMembershipDegraded(ctx, reason)
	}
}

// FilterEligible applies the eligibility rules: the candidate holds the target role, holds
// the clan role when the lottery is clan scoped, does not hold the blocked role and is not
// a bot. Duplicates are collapsed and the result is sorted by ID.
func FilterEligible(members []entities.Candidate, lottery *entities.Lottery, blockedRoleID string) []entities.Candidate {
	seen := make(map[string]bool, len(members))
	eligible := make([]entities.Candidate, 0, len(members))

	for _, m := range members {
		if seen[m.ID] || m.IsBot {
			continue
		}
		if !m.HasRole(lottery.TargetRoleID) {
			continue
		}
		if lottery.IsClanScoped() && !m.HasRole(*lottery.ClanRoleID) {
			continue
		}
		if blockedRoleID != "" && m.HasRole(blockedRoleID) {
			continue
		}
		seen[m.ID] = true
		eligible = append(eligible, m)
	}

	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].ID < eligible[j].ID
	})
	return eligible
}
