package hashing_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hasbyte1/go-yescrypt/hashing"
	"github.com/hasbyte1/go-yescrypt/kdf"
)

func newTestPool(t *testing.T, mode hashing.Mode, size int) *hashing.Pool {
	t.Helper()
	p, err := hashing.NewPool(fastOptions(mode), size)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestNewPool_Size(t *testing.T) {
	_, err := hashing.NewPool(fastOptions(hashing.ModeStructured), 0)
	assert.ErrorIs(t, err, hashing.ErrArgument)

	p := newTestPool(t, hashing.ModeCompact, 3)
	assert.Equal(t, 3, p.Size())
	assert.Equal(t, hashing.ModeCompact, p.Mode())
	assert.Equal(t, kdf.NewParams(1<<10, 8, 0, 1), p.Params())
}

func TestNewPool_PartialFailureFreesRegions(t *testing.T) {
	m := &mockCapability{}
	m.On("InitRegion", mock.Anything).Return(kdf.NewRegion(0), nil).Twice()
	m.On("InitRegion", mock.Anything).Return(nil, kdf.ErrRegionTooLarge).Once()
	m.On("FreeRegion", mock.Anything).Return(nil).Twice()

	_, err := hashing.NewPool(mockOptions(m, hashing.ModeRaw), 4)
	assert.ErrorIs(t, err, hashing.ErrInitialization)
	m.AssertExpectations(t)
}

func TestPool_Concurrent(t *testing.T) {
	p := newTestPool(t, hashing.ModeStructured, 2)
	ctx := context.Background()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < 8; i++ {
		password := []byte(fmt.Sprintf("password-%d", i))
		g.Go(func() error {
			stored, err := p.Make(ctx, password)
			if err != nil {
				return err
			}
			return p.Compare(ctx, password, stored, nil)
		})
	}
	require.NoError(t, g.Wait())
}

func TestPool_MatchesHasher(t *testing.T) {
	p := newTestPool(t, hashing.ModeRaw, 1)
	h := newTestHasher(t, hashing.ModeRaw)

	want, err := h.Hash(testPassword, testSalt)
	require.NoError(t, err)
	got, err := p.Hash(context.Background(), testPassword, testSalt)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = p.Digest(context.Background(), testPassword, testSalt, nil, 16)
	require.NoError(t, err)
	assert.Len(t, got, 16)
}

func TestPool_WaitHonoursContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	m := newMockCapability()
	m.On("DeriveKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil).Once()

	p, err := hashing.NewPool(mockOptions(m, hashing.ModeRaw), 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	done := make(chan error, 1)
	go func() {
		_, err := p.Hash(context.Background(), testPassword, testSalt)
		done <- err
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = p.Hash(ctx, testPassword, testSalt)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	assert.NoError(t, <-done)
}

func TestPool_Close(t *testing.T) {
	m := newMockCapability()
	p, err := hashing.NewPool(mockOptions(m, hashing.ModeRaw), 2)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	m.AssertNumberOfCalls(t, "FreeRegion", 2)

	_, err = p.Hash(context.Background(), testPassword, testSalt)
	assert.ErrorIs(t, err, hashing.ErrClosed)
	assert.ErrorIs(t, p.Compare(context.Background(), testPassword, []byte("k"), testSalt), hashing.ErrClosed)
}
