package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/vigil/internal/core/domain"
	"go.trai.ch/vigil/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxLineSize bounds a single control command.
const maxLineSize = 1 << 20

// Dispatcher applies parsed commands to the watch registry.
type Dispatcher interface {
	Register(ctx context.Context, payload *domain.RegisterPayload) error
	Unregister(uid int) error
}

// Reader consumes newline-delimited JSON commands from the control
// channel and dispatches them. Malformed lines are reported and
// skipped; only an empty line or end-of-input ends the loop.
type Reader struct {
	in         io.Reader
	dispatcher Dispatcher
	logger     ports.Logger
	defaults   domain.Defaults
}

// NewReader creates a Reader for the given control stream.
func NewReader(in io.Reader, dispatcher Dispatcher, logger ports.Logger, defaults domain.Defaults) *Reader {
	return &Reader{
		in:         in,
		dispatcher: dispatcher,
		logger:     logger,
		defaults:   defaults,
	}
}

// Run processes commands until the channel closes. An empty line is the
// explicit close signal; both that and plain end-of-input return nil.
func (r *Reader) Run(ctx context.Context) error {
	tracer := otel.Tracer("vigil")

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Only the exactly empty line closes the channel; a whitespace
		// line is a malformed command like any other.
		if scanner.Text() == "" {
			r.logger.Info("control channel closed")
			return nil
		}

		cmd, err := domain.ParseCommand(scanner.Bytes())
		if err != nil {
			r.logger.Error(err)
			continue
		}
		if cmd.Empty() {
			r.logger.Error(domain.ErrUnknownCommand)
			continue
		}

		cmdCtx, span := tracer.Start(ctx, "command")
		r.dispatch(cmdCtx, cmd)
		span.End()
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
		return zerr.Wrap(err, "control channel read failed")
	}
	r.logger.Info("control channel closed")
	return nil
}

// dispatch applies one command. When both variants are present the
// unregister runs first, so a caller can atomically replace a watcher
// under the same uid with a single line.
func (r *Reader) dispatch(ctx context.Context, cmd domain.Command) {
	span := trace.SpanFromContext(ctx)

	if cmd.Unregister != nil {
		span.SetAttributes(attribute.Int("unregister.uid", *cmd.Unregister))
		if err := r.dispatcher.Unregister(*cmd.Unregister); err != nil {
			r.logger.Error(err)
		}
	}

	if cmd.Register != nil {
		payload := cmd.Register
		payload.ApplyDefaults(r.defaults)
		span.SetAttributes(attribute.Int("register.uid", payload.UID))

		if err := r.dispatcher.Register(ctx, payload); err != nil {
			r.logger.Error(err)
			return
		}
		if payload.Debug {
			r.logger.Info(fmt.Sprintf("registered uid %d for %s", payload.UID, payload.Cwd))
		}
	}
}
