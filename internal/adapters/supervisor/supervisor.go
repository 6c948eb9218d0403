// Package supervisor runs a vigil worker as a child process and drives
// its control channel, demultiplexing event batches back to per-watch
// handlers. It is the parent-side counterpart of the serve loop.
package supervisor

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"path/filepath"
	"sync"

	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

// Handler receives one flushed batch of records for a single watch.
type Handler func(batch []domain.Record)

// WatchRequest describes one subscription. The uid is assigned by the
// supervisor, everything else mirrors the register payload.
type WatchRequest struct {
	Cwd                string
	Patterns           []string
	Events             []string
	Ignores            []string
	Initial            bool
	FollowSymlinks     bool
	Polling            bool
	PollInterval       int
	PollIntervalBinary int
	DebounceChanges    *int
	Debug              bool
}

// Supervisor owns a worker process and the two pipes connecting to it.
type Supervisor struct {
	logger ports.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	nextUID  int
	handlers map[int]Handler
	pending  []domain.Record
	running  bool

	done chan struct{}
}

// New creates a supervisor that is not yet attached to a worker.
func New(logger ports.Logger) *Supervisor {
	return &Supervisor{
		logger:   logger,
		nextUID:  1,
		handlers: make(map[int]Handler),
		done:     make(chan struct{}),
	}
}

// Start spawns `<binary> serve` and attaches to its pipes.
func (s *Supervisor) Start(ctx context.Context, binary string) error {
	cmd := exec.CommandContext(ctx, binary, "serve")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return zerr.Wrap(domain.ErrWorkerSpawnFailed, err.Error())
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return zerr.Wrap(domain.ErrWorkerSpawnFailed, err.Error())
	}

	if err := cmd.Start(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrWorkerSpawnFailed, err.Error()), "binary", binary)
	}

	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()

	s.Attach(stdout, stdin)
	return nil
}

// Attach connects the supervisor to an already running worker through
// its output and control streams. Start uses it internally; tests use
// it directly with in-memory pipes.
func (s *Supervisor) Attach(out io.Reader, in io.WriteCloser) {
	s.mu.Lock()
	s.stdin = in
	s.running = true
	s.mu.Unlock()

	go s.readLoop(out)
}

// Watch registers a new subscription and returns its uid. The handler
// is invoked once per flushed batch, in batch order.
func (s *Supervisor) Watch(req WatchRequest, handler Handler) (int, error) {
	cwd, err := filepath.Abs(req.Cwd)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to resolve watch root")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return 0, domain.ErrWorkerNotRunning
	}

	uid := s.nextUID
	s.nextUID++

	cmd := domain.Command{
		Register: &domain.RegisterPayload{
			UID:                uid,
			Cwd:                cwd,
			Patterns:           req.Patterns,
			Events:             req.Events,
			Ignores:            req.Ignores,
			Initial:            req.Initial,
			FollowSymlinks:     req.FollowSymlinks,
			Polling:            req.Polling,
			PollInterval:       req.PollInterval,
			PollIntervalBinary: req.PollIntervalBinary,
			DebounceChanges:    req.DebounceChanges,
			Debug:              req.Debug,
		},
	}
	if err := s.sendLocked(cmd); err != nil {
		return 0, err
	}

	s.handlers[uid] = handler
	return uid, nil
}

// Unwatch removes a subscription. Events already in flight for the uid
// are dropped on arrival.
func (s *Supervisor) Unwatch(uid int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return domain.ErrWorkerNotRunning
	}
	if _, ok := s.handlers[uid]; !ok {
		return zerr.With(domain.ErrWatcherNotFound, "uid", uid)
	}

	delete(s.handlers, uid)
	return s.sendLocked(domain.Command{Unregister: &uid})
}

// Close signals the worker to shut down by sending the empty close line
// and waits for the output stream to drain.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stdin := s.stdin
	cmd := s.cmd
	s.mu.Unlock()

	_, _ = io.WriteString(stdin, "\n")
	_ = stdin.Close()

	<-s.done

	if cmd != nil {
		return cmd.Wait()
	}
	return nil
}

func (s *Supervisor) sendLocked(cmd domain.Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return zerr.Wrap(err, "failed to encode command")
	}
	data = append(data, '\n')

	if _, err := s.stdin.Write(data); err != nil {
		return zerr.Wrap(err, "failed to write command")
	}
	return nil
}

// readLoop parses the worker's output stream: record lines accumulate
// until the flush sentinel, then the batch is split by uid and handed
// to the registered handlers.
func (s *Supervisor) readLoop(out io.Reader) {
	defer close(s.done)

	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		line := scanner.Text()
		if line == domain.FlushSentinel {
			s.deliver()
			continue
		}

		record, err := domain.ParseRecord(line)
		if err != nil {
			s.logger.Error(err)
			continue
		}
		s.mu.Lock()
		s.pending = append(s.pending, record)
		s.mu.Unlock()
	}

	// Flush whatever is left so no records are lost on shutdown.
	s.deliver()
}

func (s *Supervisor) deliver() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil

	grouped := make(map[int][]domain.Record)
	order := make([]int, 0, 2)
	for _, record := range pending {
		if _, seen := grouped[record.UID]; !seen {
			order = append(order, record.UID)
		}
		grouped[record.UID] = append(grouped[record.UID], record)
	}

	type delivery struct {
		handler Handler
		batch   []domain.Record
	}
	deliveries := make([]delivery, 0, len(order))
	for _, uid := range order {
		if handler, ok := s.handlers[uid]; ok {
			deliveries = append(deliveries, delivery{handler: handler, batch: grouped[uid]})
		}
	}
	s.mu.Unlock()

	for _, d := range deliveries {
		d.handler(d.batch)
	}
}
