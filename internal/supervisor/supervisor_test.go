package supervisor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	applog "github.com/yourusername/anon-relay-bot/internal/log"
)

type fakeProcess struct {
	pid  int
	done chan struct{}
	once sync.Once
	err  error
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Wait() error {
	<-p.done
	return p.err
}

func (p *fakeProcess) exit(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

func (p *fakeProcess) Stop() error {
	p.exit(errors.New("terminated"))
	return nil
}

func (p *fakeProcess) Kill() error {
	p.exit(errors.New("killed"))
	return nil
}

type fakeSpawner struct {
	mu       sync.Mutex
	nextPid  int
	procs    []*fakeProcess
	failures int
}

func (s *fakeSpawner) Spawn(_ context.Context, _ int) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("fork failed")
	}
	s.nextPid++
	p := &fakeProcess{pid: 1000 + s.nextPid, done: make(chan struct{})}
	s.procs = append(s.procs, p)
	return p, nil
}

func (s *fakeSpawner) spawned() []*fakeProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeProcess(nil), s.procs...)
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
	ch     chan Event
}

func newEventLog() *eventLog {
	return &eventLog{ch: make(chan Event, 64)}
}

func (l *eventLog) record(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	l.ch <- ev
}

func (l *eventLog) waitFor(t *testing.T, kind EventKind, restart bool) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-l.ch:
			if ev.Kind == kind && (kind != EventSpawned || ev.Restart == restart) {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s event", kind)
			return Event{}
		}
	}
}

func startSupervisor(t *testing.T, spawner Spawner, opts Options) (*Supervisor, context.CancelFunc, <-chan error) {
	t.Helper()
	sup := New(spawner, opts, applog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()
	return sup, cancel, done
}

func TestPoolSize(t *testing.T) {
	cases := []struct {
		workers, cpus, want int
	}{
		{0, 8, 7},
		{0, 2, 1},
		{0, 1, 1},
		{3, 16, 3},
	}
	for _, tc := range cases {
		if got := PoolSize(tc.workers, tc.cpus); got != tc.want {
			t.Errorf("PoolSize(%d, %d) = %d, want %d", tc.workers, tc.cpus, got, tc.want)
		}
	}
}

func TestWorkerExitSpawnsExactlyOneReplacement(t *testing.T) {
	spawner := &fakeSpawner{}
	events := newEventLog()
	sup, cancel, done := startSupervisor(t, spawner, Options{
		Size:          3,
		RestartBudget: 10,
		RestartWindow: time.Minute,
		OnEvent:       events.record,
	})

	for i := 0; i < 3; i++ {
		events.waitFor(t, EventSpawned, false)
	}

	victim := spawner.spawned()[1]
	victim.exit(errors.New("exit status 1"))

	exited := events.waitFor(t, EventExited, false)
	if exited.Pid != victim.pid {
		t.Errorf("exited pid = %d, want %d", exited.Pid, victim.pid)
	}
	replacement := events.waitFor(t, EventSpawned, true)
	if replacement.Slot != exited.Slot {
		t.Errorf("replacement slot = %d, want %d", replacement.Slot, exited.Slot)
	}

	if got := len(spawner.spawned()); got != 4 {
		t.Errorf("spawn count = %d, want 4", got)
	}
	if got := sup.Size(); got != 3 {
		t.Errorf("pool size = %d, want 3", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if got := sup.Size(); got != 0 {
		t.Errorf("pool size after shutdown = %d, want 0", got)
	}
	if got := len(spawner.spawned()); got != 4 {
		t.Errorf("spawn count after shutdown = %d, want 4", got)
	}
}

func TestRestartBudgetDefersReplacement(t *testing.T) {
	spawner := &fakeSpawner{}
	events := newEventLog()
	window := 150 * time.Millisecond
	sup, cancel, done := startSupervisor(t, spawner, Options{
		Size:          2,
		RestartBudget: 1,
		RestartWindow: window,
		OnEvent:       events.record,
	})
	defer func() {
		cancel()
		<-done
	}()

	events.waitFor(t, EventSpawned, false)
	events.waitFor(t, EventSpawned, false)

	spawner.spawned()[0].exit(nil)
	events.waitFor(t, EventSpawned, true)

	start := time.Now()
	spawner.spawned()[1].exit(nil)
	deferred := events.waitFor(t, EventDeferred, false)
	if deferred.Delay <= 0 || deferred.Delay > window {
		t.Errorf("deferred delay = %s, want within (0, %s]", deferred.Delay, window)
	}

	events.waitFor(t, EventSpawned, true)
	if elapsed := time.Since(start); elapsed < window/2 {
		t.Errorf("second restart after %s, want it deferred", elapsed)
	}
	if got := sup.Size(); got != 2 {
		t.Errorf("pool size = %d, want 2", got)
	}
}

func TestSpawnFailureIsRetried(t *testing.T) {
	spawner := &fakeSpawner{failures: 2}
	events := newEventLog()
	sup, cancel, done := startSupervisor(t, spawner, Options{
		Size:            1,
		SpawnRetryDelay: 10 * time.Millisecond,
		OnEvent:         events.record,
	})
	defer func() {
		cancel()
		<-done
	}()

	events.waitFor(t, EventSpawnFailed, false)
	events.waitFor(t, EventSpawnFailed, false)
	events.waitFor(t, EventSpawned, true)

	if got := sup.Size(); got != 1 {
		t.Errorf("pool size = %d, want 1", got)
	}
}

type stubbornProcess struct {
	*fakeProcess
}

func (p stubbornProcess) Stop() error { return nil }

type stubbornSpawner struct {
	proc stubbornProcess
}

func (s *stubbornSpawner) Spawn(context.Context, int) (Process, error) {
	return s.proc, nil
}

func TestShutdownKillsWorkersIgnoringSignal(t *testing.T) {
	proc := stubbornProcess{&fakeProcess{pid: 77, done: make(chan struct{})}}
	events := newEventLog()
	_, cancel, done := startSupervisor(t, &stubbornSpawner{proc: proc}, Options{
		Size:        1,
		StopTimeout: 20 * time.Millisecond,
		OnEvent:     events.record,
	})

	events.waitFor(t, EventSpawned, false)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if proc.err == nil || proc.err.Error() != "killed" {
		t.Errorf("process err = %v, want killed", proc.err)
	}
}

func TestZeroBudgetRestartsWithoutDeferral(t *testing.T) {
	spawner := &fakeSpawner{}
	events := newEventLog()
	_, cancel, done := startSupervisor(t, spawner, Options{
		Size:          1,
		RestartWindow: time.Minute,
		OnEvent:       events.record,
	})
	defer func() {
		cancel()
		<-done
	}()

	events.waitFor(t, EventSpawned, false)
	for i := 0; i < 5; i++ {
		procs := spawner.spawned()
		procs[len(procs)-1].exit(nil)
		events.waitFor(t, EventSpawned, true)
	}

	events.mu.Lock()
	defer events.mu.Unlock()
	for _, ev := range events.events {
		if ev.Kind == EventDeferred {
			t.Fatalf("restart deferred with budget disabled: %+v", ev)
		}
	}
}
