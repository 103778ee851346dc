package supervisor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultSpawnRetryDelay = time.Second
	defaultStopTimeout     = 10 * time.Second
)

// Process ishga tushirilgan worker jarayoni
type Process interface {
	Pid() int
	Wait() error
	Stop() error
	Kill() error
}

// Spawner slot uchun yangi worker ishga tushiradi
type Spawner interface {
	Spawn(ctx context.Context, slot int) (Process, error)
}

// EventKind supervisor hodisasi turi
type EventKind string

const (
	EventSpawned     EventKind = "spawned"
	EventExited      EventKind = "exited"
	EventSpawnFailed EventKind = "spawn_failed"
	EventDeferred    EventKind = "restart_deferred"
)

// Event supervisor hodisasi (test va monitoring uchun)
type Event struct {
	Kind    EventKind
	Slot    int
	Pid     int
	Restart bool
	Delay   time.Duration
	Err     error
}

// Options pool sozlamalari
type Options struct {
	Size            int
	RestartBudget   int
	RestartWindow   time.Duration
	SpawnRetryDelay time.Duration
	StopTimeout     time.Duration
	OnEvent         func(Event)
	Now             func() time.Time
}

// PoolSize WORKER_COUNT berilmasa CPU-1, kamida 1
func PoolSize(workerCount, numCPU int) int {
	if workerCount > 0 {
		return workerCount
	}
	if n := numCPU - 1; n > 0 {
		return n
	}
	return 1
}

type exit struct {
	slot     int
	pid      int
	err      error
	neverRan bool
}

// Supervisor doimiy hajmdagi worker pool: chiqqan har bir worker o'rniga
// bitta yangisi ishga tushiriladi, restart budjeti tugasa kechiktiriladi.
type Supervisor struct {
	spawner Spawner
	opts    Options
	logger  *zerolog.Logger

	mu       sync.Mutex
	live     map[int]Process
	restarts []time.Time
}

// New yangi Supervisor
func New(spawner Spawner, opts Options, logger *zerolog.Logger) *Supervisor {
	if opts.Size <= 0 {
		opts.Size = 1
	}
	if opts.SpawnRetryDelay <= 0 {
		opts.SpawnRetryDelay = defaultSpawnRetryDelay
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Supervisor{
		spawner: spawner,
		opts:    opts,
		logger:  logger,
		live:    make(map[int]Process),
	}
}

// Size hozir ishlayotgan workerlar soni
func (s *Supervisor) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Run poolni ishga tushiradi va ctx tugaguncha nazorat qiladi.
func (s *Supervisor) Run(ctx context.Context) error {
	exits := make(chan exit, s.opts.Size)

	s.logger.Info().Int("workers", s.opts.Size).Msg("worker pool ishga tushmoqda")
	for slot := 0; slot < s.opts.Size; slot++ {
		s.start(ctx, slot, false, exits)
	}

	for {
		select {
		case <-ctx.Done():
			s.shutdown(exits)
			return nil
		case ex := <-exits:
			if !ex.neverRan {
				s.mu.Lock()
				delete(s.live, ex.slot)
				s.mu.Unlock()

				s.emit(Event{Kind: EventExited, Slot: ex.slot, Pid: ex.pid, Err: ex.err})
				s.logger.Warn().Err(ex.err).Int("slot", ex.slot).Int("worker_pid", ex.pid).Msg("worker to'xtadi, yangisi ishga tushiriladi")
			}

			if !s.waitForBudget(ctx, ex.slot) {
				s.shutdown(exits)
				return nil
			}
			s.start(ctx, ex.slot, true, exits)
		}
	}
}

func (s *Supervisor) start(ctx context.Context, slot int, restart bool, exits chan<- exit) {
	proc, err := s.spawner.Spawn(ctx, slot)
	if err != nil {
		s.emit(Event{Kind: EventSpawnFailed, Slot: slot, Restart: restart, Err: err})
		s.logger.Error().Err(err).Int("slot", slot).Dur("retry_in", s.opts.SpawnRetryDelay).Msg("worker ishga tushmadi")

		go func() {
			timer := time.NewTimer(s.opts.SpawnRetryDelay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			select {
			case exits <- exit{slot: slot, err: err, neverRan: true}:
			case <-ctx.Done():
			}
		}()
		return
	}

	s.mu.Lock()
	s.live[slot] = proc
	s.mu.Unlock()

	if restart {
		s.recordRestart()
	}
	s.emit(Event{Kind: EventSpawned, Slot: slot, Pid: proc.Pid(), Restart: restart})
	s.logger.Info().Int("slot", slot).Int("worker_pid", proc.Pid()).Bool("restart", restart).Msg("worker ishga tushdi")

	go func() {
		err := proc.Wait()
		exits <- exit{slot: slot, pid: proc.Pid(), err: err}
	}()
}

// waitForBudget budjet bo'shaguncha kutadi; ctx tugasa false
func (s *Supervisor) waitForBudget(ctx context.Context, slot int) bool {
	for {
		delay := s.restartDelay()
		if delay <= 0 {
			return true
		}

		s.emit(Event{Kind: EventDeferred, Slot: slot, Delay: delay})
		s.logger.Warn().Int("slot", slot).Dur("delay", delay).Int("budget", s.opts.RestartBudget).Msg("restart budjeti tugadi, qayta ishga tushirish kechiktirildi")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

func (s *Supervisor) restartDelay() time.Duration {
	if s.opts.RestartBudget <= 0 || s.opts.RestartWindow <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now()
	cutoff := now.Add(-s.opts.RestartWindow)
	fresh := s.restarts[:0]
	for _, t := range s.restarts {
		if t.After(cutoff) {
			fresh = append(fresh, t)
		}
	}
	s.restarts = fresh

	if len(s.restarts) < s.opts.RestartBudget {
		return 0
	}
	return s.restarts[0].Add(s.opts.RestartWindow).Sub(now)
}

func (s *Supervisor) recordRestart() {
	if s.opts.RestartBudget <= 0 || s.opts.RestartWindow <= 0 {
		return
	}
	s.mu.Lock()
	s.restarts = append(s.restarts, s.opts.Now())
	s.mu.Unlock()
}

// shutdown hammasiga SIGTERM, StopTimeout dan keyin qolganlarini o'ldiradi
func (s *Supervisor) shutdown(exits <-chan exit) {
	s.mu.Lock()
	procs := make(map[int]Process, len(s.live))
	for slot, p := range s.live {
		procs[slot] = p
	}
	s.mu.Unlock()

	if len(procs) == 0 {
		return
	}

	s.logger.Info().Int("workers", len(procs)).Msg("workerlar to'xtatilmoqda")
	for slot, p := range procs {
		if err := p.Stop(); err != nil {
			s.logger.Warn().Err(err).Int("slot", slot).Msg("workerga signal yuborib bo'lmadi")
		}
	}

	deadline := time.NewTimer(s.opts.StopTimeout)
	defer deadline.Stop()
	killed := false

	for len(procs) > 0 {
		select {
		case ex := <-exits:
			if ex.neverRan {
				continue
			}
			delete(procs, ex.slot)
			s.mu.Lock()
			delete(s.live, ex.slot)
			s.mu.Unlock()
			s.emit(Event{Kind: EventExited, Slot: ex.slot, Pid: ex.pid, Err: ex.err})
		case <-deadline.C:
			if killed {
				s.logger.Error().Int("remaining", len(procs)).Msg("workerlar to'xtamadi")
				return
			}
			killed = true
			for slot, p := range procs {
				s.logger.Warn().Int("slot", slot).Int("worker_pid", p.Pid()).Msg("worker majburan to'xtatildi")
				_ = p.Kill()
			}
			deadline.Reset(s.opts.StopTimeout)
		}
	}
}

func (s *Supervisor) emit(ev Event) {
	if s.opts.OnEvent != nil {
		s.opts.OnEvent(ev)
	}
}
