package hashing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hasbyte1/go-yescrypt/kdf"
)

// Pool is a fixed set of Hashers sharing one parameter set and mode. It is
// the way to hash from many goroutines: each call borrows an idle Hasher
// for its duration, so no region is ever used by two calls at once.
//
// # Thread safety
//
// All Pool methods are safe for concurrent use. Waiting for an idle Hasher
// honours ctx; a derivation that has started always runs to completion.
type Pool struct {
	mu      sync.Mutex
	closed  bool
	idle    chan *Hasher
	hashers []*Hasher
	log     logrus.FieldLogger
}

// NewPool builds size Hashers from opts. Every Hasher allocates its own
// region, so memory use is size times that of one Hasher.
func NewPool(opts Options, size int) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: pool size must be at least 1, got %d", ErrArgument, size)
	}
	opts = opts.withDefaults()

	p := &Pool{
		idle:    make(chan *Hasher, size),
		hashers: make([]*Hasher, 0, size),
		log:     opts.Logger.WithField("package", "hashing").WithField("pool_size", size),
	}
	for i := 0; i < size; i++ {
		h, err := New(opts)
		if err != nil {
			for _, built := range p.hashers {
				_ = built.Close()
			}
			return nil, fmt.Errorf("hashing: building pool member %d of %d: %w", i+1, size, err)
		}
		p.hashers = append(p.hashers, h)
		p.idle <- h
	}
	p.log.Debug("hasher pool ready")
	return p, nil
}

// Size returns the number of Hashers in the pool.
func (p *Pool) Size() int { return len(p.hashers) }

// Mode returns the artifact encoding shared by the pool.
func (p *Pool) Mode() Mode { return p.hashers[0].Mode() }

// Params returns the parameter set shared by the pool.
func (p *Pool) Params() kdf.Params { return p.hashers[0].Params() }

// Digest runs [Hasher.Digest] on an idle Hasher.
func (p *Pool) Digest(ctx context.Context, password, salt, settings []byte, hashLength int) ([]byte, error) {
	var out []byte
	err := p.with(ctx, func(h *Hasher) (err error) {
		out, err = h.Digest(password, salt, settings, hashLength)
		return err
	})
	return out, err
}

// Hash runs [Hasher.Hash] on an idle Hasher.
func (p *Pool) Hash(ctx context.Context, password, salt []byte) ([]byte, error) {
	return p.Digest(ctx, password, salt, nil, DefaultHashLength)
}

// Make runs [Hasher.Make] on an idle Hasher.
func (p *Pool) Make(ctx context.Context, password []byte) ([]byte, error) {
	var out []byte
	err := p.with(ctx, func(h *Hasher) (err error) {
		out, err = h.Make(password)
		return err
	})
	return out, err
}

// Compare runs [Hasher.Compare] on an idle Hasher.
func (p *Pool) Compare(ctx context.Context, password, stored, salt []byte) error {
	return p.with(ctx, func(h *Hasher) error {
		return h.Compare(password, stored, salt)
	})
}

// Close waits for every borrowed Hasher to come back and closes them all.
// Calls waiting for a Hasher fail with [ErrClosed]. Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	var errs []error
	for range p.hashers {
		h := <-p.idle
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	close(p.idle)
	p.log.Debug("hasher pool closed")
	return errors.Join(errs...)
}

func (p *Pool) with(ctx context.Context, fn func(*Hasher) error) error {
	h, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer p.release(h)
	return fn(h)
}

func (p *Pool) acquire(ctx context.Context) (*Hasher, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	select {
	case h, ok := <-p.idle:
		if !ok {
			return nil, ErrClosed
		}
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pool) release(h *Hasher) {
	p.idle <- h
}
