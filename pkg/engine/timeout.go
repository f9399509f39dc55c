package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/segnet/pkg/config"
	"github.com/chazu/segnet/pkg/network"
)

var (
	// ErrTimeout is returned when a scene script runs longer than the
	// configured engine timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after a
	// newer one had started. The network it built is dropped.
	ErrSuperseded = errors.New("engine: evaluation superseded by a newer one")
)

// evalResult is what an evaluation goroutine sends back.
type evalResult struct {
	network *network.Network
	errors  []EvalError
	err     error
}

// timeout returns the configured evaluation limit.
func (e *Engine) timeout() time.Duration {
	if d := e.cfg.Engine.Timeout; d > 0 {
		return d
	}
	return config.DefaultEvalTimeout
}

// currentGeneration returns the generation of the latest Evaluate call.
func (e *Engine) currentGeneration() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// wait blocks until evaluation gen reports on ch or the timeout passes.
//
// On timeout the goroutine keeps running; whatever network it eventually
// builds is never handed out because nothing reads ch again.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*network.Network, []EvalError, error) {
	limit := e.timeout()
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		if current := e.currentGeneration(); gen != current {
			return nil, nil, fmt.Errorf("%w: generation %d finished after %d started", ErrSuperseded, gen, current)
		}
		return res.network, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	}
}
