package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"drawbot/domain"
	"drawbot/domain/entities"
	"drawbot/domain/events"
	"drawbot/domain/interfaces"
	"drawbot/domain/services"

	log "github.com/sirupsen/logrus"
)

// dueTolerance absorbs timer jitter when deciding whether a fire belongs to the current draw
const dueTolerance = time.Minute

// LifecycleConfig holds the settings the controller needs from configuration
type LifecycleConfig struct {
	// ClanRoles maps a clan key to its role ID
	ClanRoles map[string]string
}

// LifecycleController ties the store, scheduler, resolver and notifier together and owns the
// lifecycle of every lottery: creation, warnings, draws, rerolls, removal and recovery.
//
// Mutating operations are serialized so timer handlers and commands never interleave.
type LifecycleController struct {
	store     interfaces.LotteryStore
	scheduler *Scheduler
	resolver  CandidateResolver
	notifier  interfaces.Notifier
	publisher interfaces.EventPublisher
	metrics   interfaces.DrawMetrics
	clock     Clock
	clanRoles map[string]string

	opMu sync.Mutex

	phaseMu sync.Mutex
	phases  map[string]Phase
}

// NewLifecycleController creates a new lifecycle controller
func NewLifecycleController(
	store interfaces.LotteryStore,
	scheduler *Scheduler,
	resolver CandidateResolver,
	notifier interfaces.Notifier,
	publisher interfaces.EventPublisher,
	metrics interfaces.DrawMetrics,
	clock Clock,
	cfg LifecycleConfig,
) *LifecycleController {
	clanRoles := make(map[string]string, len(cfg.ClanRoles))
	for key, role := range cfg.ClanRoles {
		clanRoles[strings.ToLower(key)] = role
	}

	return &LifecycleController{
		store:     store,
		scheduler: scheduler,
		resolver:  resolver,
		notifier:  notifier,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
		clanRoles: clanRoles,
		phases:    make(map[string]Phase),
	}
}

// Start runs the timer dispatch loop in the background and returns its stop function
func (c *LifecycleController) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	runCtx, cancel := context.WithCancel(ctx)

	go func() {
		log.Info("Lottery timer dispatcher started")
		c.scheduler.Run(runCtx, c.HandleTimer)
		log.Info("Lottery timer dispatcher stopped")
	}()

	go func() {
		select {
		case <-ctx.Done():
		case <-stopChan:
		}
		cancel()
	}()

	return func() {
		close(stopChan)
		c.scheduler.Stop()
	}
}

// Create validates, persists and schedules a new lottery
func (c *LifecycleController) Create(ctx context.Context, req CreateLotteryRequest) (*entities.Lottery, error) {
	day, err := entities.ParseWeekday(req.DayOfWeek)
	if err != nil {
		return nil, err
	}

	lottery := &entities.Lottery{
		Name:          strings.TrimSpace(req.Name),
		TargetRoleID:  req.TargetRoleID,
		FrequencyDays: req.FrequencyDays,
		DayOfWeek:     day,
		Hour:          req.Hour,
		Minute:        req.Minute,
		WinnersCount:  req.WinnersCount,
		ChannelID:     req.ChannelID,
		CreatedBy:     req.CreatedBy,
	}

	if key := strings.ToLower(strings.TrimSpace(req.ClanKey)); key != "" {
		role, ok := c.clanRoles[key]
		if !ok {
			return nil, domain.NewConfigurationError("clanKey", req.ClanKey, "unknown clan")
		}
		lottery.ClanKey = &key
		lottery.ClanRoleID = &role
	}

	if err := lottery.Validate(); err != nil {
		return nil, err
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	now := c.clock.Now()
	loc := c.scheduler.Location()
	lottery.CreatedAt = now
	lottery.NextDrawAt = services.FirstDrawAt(lottery, now, loc)
	lottery.ID = entities.NewLotteryID(lottery.NextDrawAt.In(loc), lottery.TargetRoleID, lottery.ScopeKey())
	if lottery.Name == "" {
		lottery.Name = entities.DefaultLotteryName(lottery.ScopeKey())
	}

	var active int
	if err := c.store.Update(ctx, func(state *entities.State) error {
		state.ActiveLotteries[lottery.ID] = lottery.Clone()
		active = len(state.ActiveLotteries)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to save lottery: %w", err)
	}

	if err := c.scheduler.Schedule(lottery.ID, lottery.NextDrawAt, day.Std(), lottery.Hour, lottery.Minute); err != nil {
		if rollbackErr := c.store.Update(ctx, func(state *entities.State) error {
			delete(state.ActiveLotteries, lottery.ID)
			return nil
		}); rollbackErr != nil {
			log.WithError(rollbackErr).WithField("lottery_id", lottery.ID).Error("Failed to roll back lottery after scheduling error")
		}
		return nil, fmt.Errorf("failed to schedule lottery: %w", err)
	}

	c.setPhase(lottery.ID, PhaseScheduled)
	c.metrics.SetActiveLotteries(active)
	c.publish(events.LotteryCreatedEvent{
		LotteryID:    lottery.ID,
		TargetRoleID: lottery.TargetRoleID,
		ClanKey:      lottery.ScopeKey(),
		NextDrawAt:   lottery.NextDrawAt,
		CreatedBy:    lottery.CreatedBy,
	})

	log.WithFields(log.Fields{
		"lottery_id":     lottery.ID,
		"target_role_id": lottery.TargetRoleID,
		"clan_key":       lottery.ScopeKey(),
		"frequency_days": lottery.FrequencyDays,
		"next_draw_at":   lottery.NextDrawAt,
		"created_by":     lottery.CreatedBy,
	}).Info("Lottery created")

	return lottery, nil
}

// HandleTimer is the dispatch target of the scheduler
func (c *LifecycleController) HandleTimer(ctx context.Context, fire TimerFire) {
	c.metrics.RecordTimerFire(ctx, string(fire.Kind))

	lottery, err := c.findLottery(ctx, fire.LotteryID)
	if err != nil {
		if errors.Is(err, domain.ErrLotteryNotFound) {
			log.WithField("lottery_id", fire.LotteryID).Warn("Timer fired for unknown lottery, cancelling its timers")
			c.scheduler.Cancel(fire.LotteryID)
			c.clearPhase(fire.LotteryID)
			return
		}
		log.WithError(err).WithField("lottery_id", fire.LotteryID).Error("Failed to load lottery for timer")
		return
	}

	if !fireIsDue(lottery, fire) {
		log.WithFields(log.Fields{
			"lottery_id":   fire.LotteryID,
			"kind":         fire.Kind,
			"fired_at":     fire.At,
			"next_draw_at": lottery.NextDrawAt,
		}).Debug("Timer fired outside the current draw cycle, skipping")
		return
	}

	if kind, ok := fire.Kind.NotificationKind(); ok {
		c.sendWarning(ctx, lottery, fire.Kind, kind)
		return
	}

	if _, err := c.Execute(ctx, fire.LotteryID); err != nil {
		log.WithError(err).WithField("lottery_id", fire.LotteryID).Error("Lottery draw failed")
	}
}

func (c *LifecycleController) sendWarning(ctx context.Context, lottery *entities.Lottery, timer TimerKind, kind entities.NotificationKind) {
	phase := PhaseFinalWarningSent
	if timer == entities.TimerClosingWarning {
		phase = PhaseClosingWarningSent
	}
	c.setPhase(lottery.ID, phase)

	notification := entities.Notification{Kind: kind, Lottery: lottery, DrawAt: lottery.NextDrawAt}
	if err := c.notifier.SendNotification(ctx, lottery.ChannelID, notification); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"lottery_id": lottery.ID,
			"kind":       kind,
		}).Warn("Failed to send lottery warning")
		return
	}

	log.WithFields(log.Fields{
		"lottery_id": lottery.ID,
		"kind":       kind,
	}).Info("Lottery warning sent")
}

// Execute performs the draw of a lottery now: resolve, draw, persist, reschedule or complete,
// then announce. An empty pool produces a result with no winners.
func (c *LifecycleController) Execute(ctx context.Context, lotteryID string) (*entities.DrawResult, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	lottery, err := c.findLottery(ctx, lotteryID)
	if err != nil {
		if errors.Is(err, domain.ErrLotteryNotFound) {
			c.scheduler.Cancel(lotteryID)
			c.clearPhase(lotteryID)
		}
		return nil, err
	}

	c.setPhase(lotteryID, PhaseDrawing)

	pool, err := c.resolver.Resolve(ctx, lottery)
	if err != nil {
		c.setPhase(lotteryID, PhaseScheduled)
		return nil, fmt.Errorf("failed to resolve candidates: %w", err)
	}

	winners, err := services.Draw(pool, lottery.WinnersCount)
	if err != nil {
		c.setPhase(lotteryID, PhaseScheduled)
		return nil, fmt.Errorf("failed to draw winners: %w", err)
	}

	now := c.clock.Now()
	loc := c.scheduler.Location()
	result := entities.NewDrawResult(lottery, pool, winners, now)

	var (
		updated *entities.Lottery
		active  int
	)
	if err := c.store.Update(ctx, func(state *entities.State) error {
		state.AppendResult(result)

		current, ok := state.ActiveLotteries[lotteryID]
		if ok && current.IsRecurring() {
			drawnAt := now
			current.LastDrawAt = &drawnAt
			current.NextDrawAt = services.NextRecurringDrawAt(current, now, loc)
			updated = current.Clone()
		} else if ok {
			delete(state.ActiveLotteries, lotteryID)
		}
		active = len(state.ActiveLotteries)
		return nil
	}); err != nil {
		c.setPhase(lotteryID, PhaseScheduled)
		return nil, fmt.Errorf("failed to save draw result: %w", err)
	}

	if updated != nil {
		if err := c.scheduler.Reschedule(lotteryID, updated.NextDrawAt, updated.DayOfWeek.Std(), updated.Hour, updated.Minute); err != nil {
			log.WithError(err).WithField("lottery_id", lotteryID).Error("Failed to reschedule lottery after draw")
		}
		c.setPhase(lotteryID, PhaseScheduled)
	} else {
		c.scheduler.Cancel(lotteryID)
		c.clearPhase(lotteryID)
		c.publish(events.LotteryRemovedEvent{LotteryID: lotteryID, Completed: true})
	}

	c.metrics.SetActiveLotteries(active)
	c.metrics.RecordDraw(ctx, lotteryID, len(pool), len(winners))

	if err := c.notifier.SendNotification(ctx, lottery.ChannelID, entities.Notification{
		Kind:    entities.NotificationResult,
		Lottery: lottery,
		Result:  result,
		DrawAt:  now,
	}); err != nil {
		log.WithError(err).WithField("lottery_id", lotteryID).Warn("Failed to announce draw result")
	}

	winnerIDs := make([]string, len(result.Winners))
	for i, w := range result.Winners {
		winnerIDs[i] = w.ID
	}
	c.publish(events.DrawCompletedEvent{
		ResultID:         result.ID,
		LotteryID:        lotteryID,
		ParticipantCount: result.ParticipantCount,
		WinnerIDs:        winnerIDs,
		DrawnAt:          now,
	})

	fields := log.Fields{
		"lottery_id":   lotteryID,
		"result_id":    result.ID,
		"participants": result.ParticipantCount,
		"winners":      len(result.Winners),
		"recurring":    updated != nil,
	}
	if updated != nil {
		fields["next_draw_at"] = updated.NextDrawAt
	}
	log.WithFields(fields).Info("Lottery draw completed")

	return result, nil
}

// TriggerNow runs the draw of a lottery immediately, outside its schedule
func (c *LifecycleController) TriggerNow(ctx context.Context, lotteryID string) (*entities.DrawResult, error) {
	log.WithField("lottery_id", lotteryID).Info("Manual lottery draw requested")
	return c.Execute(ctx, lotteryID)
}

// Reroll draws additional winners for a history entry and records the reroll
func (c *LifecycleController) Reroll(ctx context.Context, req RerollRequest) (*entities.RerollRecord, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	var (
		record *entities.RerollRecord
		result *entities.DrawResult
	)
	if err := c.store.Update(ctx, func(state *entities.State) error {
		var err error
		result, err = state.ResultAt(req.Index)
		if err != nil {
			return err
		}
		record, err = services.Reroll(state, req.Index, req.AdditionalWinners, req.RequestedBy, c.clock.Now())
		if err != nil {
			return err
		}
		state.AppendReroll(record)
		return nil
	}); err != nil {
		return nil, err
	}

	c.metrics.RecordReroll(ctx, record.LotteryID, len(record.NewWinners))

	if err := c.notifier.SendNotification(ctx, result.ChannelID, entities.Notification{
		Kind:   entities.NotificationReroll,
		Result: result,
		Reroll: record,
		DrawAt: record.Timestamp,
	}); err != nil {
		log.WithError(err).WithField("reroll_id", record.ID).Warn("Failed to announce reroll")
	}

	winnerIDs := make([]string, len(record.NewWinners))
	for i, w := range record.NewWinners {
		winnerIDs[i] = w.ID
	}
	c.publish(events.RerollCreatedEvent{
		RerollID:    record.ID,
		BaseID:      record.BaseID,
		LotteryID:   record.LotteryID,
		WinnerIDs:   winnerIDs,
		RequestedBy: record.RequestedBy,
	})

	log.WithFields(log.Fields{
		"reroll_id":    record.ID,
		"base_id":      record.BaseID,
		"new_winners":  len(record.NewWinners),
		"requested_by": record.RequestedBy,
	}).Info("Lottery reroll completed")

	return record, nil
}

// Remove cancels and deletes an active lottery. Its history is kept.
func (c *LifecycleController) Remove(ctx context.Context, lotteryID string) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	var active int
	if err := c.store.Update(ctx, func(state *entities.State) error {
		if _, ok := state.ActiveLotteries[lotteryID]; !ok {
			return fmt.Errorf("failed to remove %s: %w", lotteryID, domain.ErrLotteryNotFound)
		}
		delete(state.ActiveLotteries, lotteryID)
		active = len(state.ActiveLotteries)
		return nil
	}); err != nil {
		return err
	}

	c.scheduler.Cancel(lotteryID)
	c.clearPhase(lotteryID)
	c.metrics.SetActiveLotteries(active)
	c.publish(events.LotteryRemovedEvent{LotteryID: lotteryID})

	log.WithField("lottery_id", lotteryID).Info("Lottery removed")
	return nil
}

// RemoveResult deletes a history entry (0 is the newest)
func (c *LifecycleController) RemoveResult(ctx context.Context, index int) (*entities.DrawResult, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	var removed *entities.DrawResult
	if err := c.store.Update(ctx, func(state *entities.State) error {
		var err error
		removed, err = state.RemoveResult(index)
		return err
	}); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"result_id": removed.ID,
		"index":     index,
	}).Info("Lottery result removed from history")
	return removed, nil
}

// Recover schedules every persisted lottery after a restart. Draws whose time elapsed while
// the process was down are skipped: their NextDrawAt is moved to the next future slot.
// It returns the number of lotteries scheduled.
func (c *LifecycleController) Recover(ctx context.Context) (int, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	state, err := c.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load lottery state: %w", err)
	}

	now := c.clock.Now()
	loc := c.scheduler.Location()

	type missedDraw struct {
		id       string
		missedAt time.Time
	}
	var missed []missedDraw
	for id, l := range state.ActiveLotteries {
		if !l.NextDrawAt.After(now) {
			missed = append(missed, missedDraw{id: id, missedAt: l.NextDrawAt})
		}
	}

	if len(missed) > 0 {
		if err := c.store.Update(ctx, func(s *entities.State) error {
			for _, m := range missed {
				if l, ok := s.ActiveLotteries[m.id]; ok {
					l.NextDrawAt = services.ComputeNextOccurrence(l.DayOfWeek.Std(), l.Hour, l.Minute, now, loc)
				}
			}
			state = s
			return nil
		}); err != nil {
			return 0, fmt.Errorf("failed to persist recovered schedules: %w", err)
		}

		for _, m := range missed {
			l, ok := state.ActiveLotteries[m.id]
			if !ok {
				continue
			}
			log.WithFields(log.Fields{
				"lottery_id":   m.id,
				"missed_at":    m.missedAt,
				"next_draw_at": l.NextDrawAt,
			}).Warn("Missed lottery draw skipped")
			c.publish(events.MissedDrawSkippedEvent{LotteryID: m.id, MissedAt: m.missedAt, NextDrawAt: l.NextDrawAt})
		}
	}

	scheduled := 0
	for id, l := range state.ActiveLotteries {
		if err := c.scheduler.Schedule(id, l.NextDrawAt, l.DayOfWeek.Std(), l.Hour, l.Minute); err != nil {
			log.WithError(err).WithField("lottery_id", id).Error("Failed to schedule recovered lottery")
			continue
		}
		c.setPhase(id, PhaseScheduled)
		scheduled++
	}

	c.metrics.SetActiveLotteries(len(state.ActiveLotteries))

	log.WithFields(log.Fields{
		"active":    len(state.ActiveLotteries),
		"scheduled": scheduled,
		"missed":    len(missed),
	}).Info("Lottery schedules recovered")

	return scheduled, nil
}

// ListActive returns the active lotteries ordered by next draw time
func (c *LifecycleController) ListActive(ctx context.Context) ([]*entities.Lottery, error) {
	state, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lottery state: %w", err)
	}

	lotteries := make([]*entities.Lottery, 0, len(state.ActiveLotteries))
	for _, l := range state.ActiveLotteries {
		lotteries = append(lotteries, l)
	}
	sort.Slice(lotteries, func(i, j int) bool {
		if lotteries[i].NextDrawAt.Equal(lotteries[j].NextDrawAt) {
			return lotteries[i].ID < lotteries[j].ID
		}
		return lotteries[i].NextDrawAt.Before(lotteries[j].NextDrawAt)
	})
	return lotteries, nil
}

// GetHistory returns the stored draw results, newest first
func (c *LifecycleController) GetHistory(ctx context.Context) ([]*entities.DrawResult, error) {
	state, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lottery state: %w", err)
	}
	return state.Results, nil
}

// GetRerolls returns every stored reroll in the order they happened
func (c *LifecycleController) GetRerolls(ctx context.Context) ([]*entities.RerollRecord, error) {
	state, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lottery state: %w", err)
	}
	return state.Rerolls, nil
}

// Phase returns the in-memory phase of a lottery
func (c *LifecycleController) Phase(lotteryID string) Phase {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	return c.phases[lotteryID]
}

// PendingTimers returns the number of armed timers for a lottery
func (c *LifecycleController) PendingTimers(lotteryID string) int {
	return c.scheduler.Pending(lotteryID)
}

func (c *LifecycleController) findLottery(ctx context.Context, lotteryID string) (*entities.Lottery, error) {
	state, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lottery state: %w", err)
	}
	lottery, ok := state.ActiveLotteries[lotteryID]
	if !ok {
		return nil, fmt.Errorf("failed to find %s: %w", lotteryID, domain.ErrLotteryNotFound)
	}
	return lottery, nil
}

func (c *LifecycleController) setPhase(lotteryID string, phase Phase) {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	c.phases[lotteryID] = phase
}

func (c *LifecycleController) clearPhase(lotteryID string) {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	delete(c.phases, lotteryID)
}

func (c *LifecycleController) publish(event events.Event) {
	if err := c.publisher.Publish(event); err != nil {
		log.WithError(err).WithField("event_type", event.Type()).Warn("Failed to publish lottery event")
	}
}

// fireIsDue reports whether a fire belongs to the draw cycle ending at lottery.NextDrawAt.
// Lotteries with a frequency above seven days keep weekly timers, so off-week fires land
// well before the expected instant and are ignored.
func fireIsDue(lottery *entities.Lottery, fire TimerFire) bool {
	expected := lottery.NextDrawAt
	switch fire.Kind {
	case entities.TimerFinalWarning:
		expected = expected.Add(-services.FinalWarningOffset)
	case entities.TimerClosingWarning:
		expected = expected.Add(-services.ClosingWarningOffset)
	}
	return !fire.At.Before(expected.Add(-dueTolerance))
}
