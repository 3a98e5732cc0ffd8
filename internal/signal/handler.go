// Package signal cancels a pipeline run on SIGINT or SIGTERM.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler owns a context that is canceled by the first interrupt.
type Handler struct {
	ctx         context.Context //nolint:containedctx // the handler owns this context's lifetime
	cancel      context.CancelFunc
	interrupted chan struct{}
	stop        chan struct{}
	sigs        chan os.Signal

	interruptOnce sync.Once
	stopOnce      sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM. Call Stop when done.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		stop:        make(chan struct{}),
		sigs:        make(chan os.Signal, 1),
	}
	signal.Notify(h.sigs, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()
	return h
}

// Context is canceled on the first signal or on Stop.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted closes when a signal has been received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// WasInterrupted reports whether a signal has been received.
func (h *Handler) WasInterrupted() bool {
	select {
	case <-h.interrupted:
		return true
	default:
		return false
	}
}

// Stop releases the signal subscription and cancels the context.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigs)
		close(h.stop)
		h.cancel()
	})
}

func (h *Handler) interrupt() {
	h.interruptOnce.Do(func() {
		close(h.interrupted)
		h.cancel()
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.stop:
			return
		case <-h.sigs:
			// Later signals are drained and ignored.
			h.interrupt()
		}
	}
}
