package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"drawbot/domain/entities"
	"drawbot/domain/services"

	log "github.com/sirupsen/logrus"
)

// TimerKind identifies one of the three weekly timers of a lottery
type TimerKind = entities.TimerKind

const fireBufferSize = 64

// TimerFire is delivered to the dispatch loop when a lottery timer comes due
type TimerFire struct {
	LotteryID  string
	Kind       TimerKind
	At         time.Time
	generation uint64
}

// TimerHandler processes a fire on the dispatch goroutine
type TimerHandler func(ctx context.Context, fire TimerFire)

type timerSet struct {
	generation uint64
	timers     map[TimerKind]Timer
	next       map[TimerKind]time.Time
}

// Scheduler owns the registry of pending timer sets, one set of three weekly timers per
// lottery. Fires are funnelled into a single channel and handled one at a time by Run.
type Scheduler struct {
	clock Clock
	loc   *time.Location

	mu         sync.Mutex
	sets       map[string]*timerSet
	generation uint64

	fires chan TimerFire
	done  chan struct{}
	once  sync.Once
}

// NewScheduler creates a scheduler computing wall-clock slots in loc
func NewScheduler(clock Clock, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		clock: clock,
		loc:   loc,
		sets:  make(map[string]*timerSet),
		fires: make(chan TimerFire, fireBufferSize),
		done:  make(chan struct{}),
	}
}

// Location returns the scheduling time zone
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Schedule installs the three weekly timers for a lottery, replacing any existing set.
// The first draw fire lands on nextDrawAt, or on the next future slot if it has elapsed.
// Invalid slot values are rejected before anything is touched.
func (s *Scheduler) Schedule(lotteryID string, nextDrawAt time.Time, day time.Weekday, hour, minute int) error {
	if err := entities.ValidateSchedule(entities.Weekday(day), hour, minute); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked(lotteryID)

	s.generation++
	set := &timerSet{
		generation: s.generation,
		timers:     make(map[TimerKind]Timer, 3),
		next:       make(map[TimerKind]time.Time, 3),
	}
	s.sets[lotteryID] = set

	now := s.clock.Now()
	from := nextDrawAt.AddDate(0, 0, -7)
	if from.Before(now) {
		from = now
	}

	for _, slot := range services.TimerSlots(day, hour, minute) {
		at := services.ComputeNextOccurrence(slot.Day, slot.Hour, slot.Minute, from, s.loc)
		s.armLocked(lotteryID, set, slot, at, now)
	}

	log.WithFields(log.Fields{
		"lottery_id":    lotteryID,
		"next_draw_at":  set.next[entities.TimerDraw],
		"final_warning": set.next[entities.TimerFinalWarning],
	}).Debug("Scheduled lottery timers")

	return nil
}

// Reschedule replaces the timer set of a lottery
func (s *Scheduler) Reschedule(lotteryID string, nextDrawAt time.Time, day time.Weekday, hour, minute int) error {
	return s.Schedule(lotteryID, nextDrawAt, day, hour, minute)
}

// Cancel stops every timer of a lottery. Fires already queued for the cancelled set are
// discarded by the dispatch loop. Cancelling an unknown lottery is a no-op.
func (s *Scheduler) Cancel(lotteryID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(lotteryID)
}

// Pending returns the number of armed timers for a lottery
func (s *Scheduler) Pending(lotteryID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.sets[lotteryID]; ok {
		return len(set.timers)
	}
	return 0
}

// PendingIDs returns the lotteries with armed timers, sorted
func (s *Scheduler) PendingIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sets))
	for id := range s.sets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NextFires returns when each timer of a lottery will next fire
func (s *Scheduler) NextFires(lotteryID string) map[TimerKind]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[lotteryID]
	if !ok {
		return nil
	}
	out := make(map[TimerKind]time.Time, len(set.next))
	for k, v := range set.next {
		out[k] = v
	}
	return out
}

// Fires exposes the fire queue consumed by Run
func (s *Scheduler) Fires() <-chan TimerFire {
	return s.fires
}

// Run dispatches fires to handler until ctx is cancelled or Stop is called. Only one
// handler invocation is ever in flight.
func (s *Scheduler) Run(ctx context.Context, handler TimerHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case fire := <-s.fires:
			s.Dispatch(ctx, fire, handler)
		}
	}
}

// Dispatch invokes handler for fire unless its timer set has been cancelled or replaced
func (s *Scheduler) Dispatch(ctx context.Context, fire TimerFire, handler TimerHandler) bool {
	if !s.isCurrent(fire.LotteryID, fire.generation) {
		log.WithFields(log.Fields{
			"lottery_id": fire.LotteryID,
			"kind":       fire.Kind,
		}).Debug("Dropping stale timer fire")
		return false
	}
	handler(ctx, fire)
	return true
}

// Stop cancels every timer and ends Run
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		s.mu.Lock()
		for id := range s.sets {
			s.cancelLocked(id)
		}
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *Scheduler) isCurrent(lotteryID string, generation uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[lotteryID]
	return ok && set.generation == generation
}

func (s *Scheduler) cancelLocked(lotteryID string) {
	set, ok := s.sets[lotteryID]
	if !ok {
		return
	}
	for _, t := range set.timers {
		t.Stop()
	}
	delete(s.sets, lotteryID)
}

func (s *Scheduler) armLocked(lotteryID string, set *timerSet, slot services.TimerSlot, at, now time.Time) {
	generation := set.generation
	set.next[slot.Kind] = at
	set.timers[slot.Kind] = s.clock.AfterFunc(at.Sub(now), func() {
		s.onTimer(lotteryID, generation, slot, at)
	})
}

// onTimer runs on the clock's goroutine. It re-arms the slot for the following week and
// hands the fire to the dispatch loop.
func (s *Scheduler) onTimer(lotteryID string, generation uint64, slot services.TimerSlot, at time.Time) {
	s.mu.Lock()
	set, ok := s.sets[lotteryID]
	if !ok || set.generation != generation {
		s.mu.Unlock()
		return
	}
	now := s.clock.Now()
	from := at
	if now.After(from) {
		from = now
	}
	next := services.ComputeNextOccurrence(slot.Day, slot.Hour, slot.Minute, from, s.loc)
	s.armLocked(lotteryID, set, slot, next, now)
	s.mu.Unlock()

	fire := TimerFire{LotteryID: lotteryID, Kind: slot.Kind, At: at, generation: generation}
	select {
	case s.fires <- fire:
	case <-s.done:
	}
}
