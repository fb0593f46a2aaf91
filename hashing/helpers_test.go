package hashing_test

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-yescrypt/hashing"
	"github.com/hasbyte1/go-yescrypt/kdf"
)

// fastOptions returns options cheap enough for unit tests (1 MiB of memory).
// Never use these parameters for real passwords.
func fastOptions(mode hashing.Mode) hashing.Options {
	return hashing.Options{
		N:      1 << 10,
		R:      8,
		Mode:   mode,
		Logger: quietLogger(),
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestHasher builds a Hasher with fastOptions and closes it on cleanup.
// It accepts testing.TB so benchmarks can use it too.
func newTestHasher(tb testing.TB, mode hashing.Mode) *hashing.Hasher {
	tb.Helper()
	h, err := hashing.New(fastOptions(mode))
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = h.Close() })
	return h
}

// newLoggedHasher is newTestHasher with a capturing logger.
func newLoggedHasher(t *testing.T, opts hashing.Options) (*hashing.Hasher, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	opts.Logger = logger
	h, err := hashing.New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h, hook
}

// mockCapability is a mock implementation of kdf.Capability.
type mockCapability struct {
	mock.Mock
}

func (m *mockCapability) InitRegion(p kdf.Params) (*kdf.Region, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kdf.Region), args.Error(1)
}

func (m *mockCapability) FreeRegion(r *kdf.Region) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *mockCapability) DeriveKey(r *kdf.Region, p kdf.Params, password, salt, out []byte) error {
	args := m.Called(r, p, password, salt, out)
	return args.Error(0)
}

func (m *mockCapability) DeriveFromSettings(r *kdf.Region, password, settings, out []byte) (int, error) {
	args := m.Called(r, password, settings, out)
	return args.Int(0), args.Error(1)
}

func (m *mockCapability) EncodeSettings(p kdf.Params, salt []byte) ([]byte, error) {
	args := m.Called(p, salt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// newMockCapability returns a mock whose region lifecycle always succeeds.
func newMockCapability() *mockCapability {
	m := &mockCapability{}
	m.On("InitRegion", mock.Anything).Return(kdf.NewRegion(0), nil).Maybe()
	m.On("FreeRegion", mock.Anything).Return(nil).Maybe()
	return m
}

func mockOptions(m *mockCapability, mode hashing.Mode) hashing.Options {
	opts := fastOptions(mode)
	opts.Capability = m
	return opts
}
