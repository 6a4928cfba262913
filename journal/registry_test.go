package journal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubJournal satisfies Journal for registry tests.
type stubJournal struct {
	dsn string
}

func (s *stubJournal) Append(context.Context, EntityID, []byte) error    { return nil }
func (s *stubJournal) ReadAll(context.Context, EntityID) ([][]byte, error) { return nil, nil }
func (s *stubJournal) Close() error                                        { return nil }

func TestRegistry_OpenResolvesFactory(t *testing.T) {
	Register("registry-test-backend", func(dsn string) (Journal, error) {
		return &stubJournal{dsn: dsn}, nil
	})

	j, err := Open("registry-test-backend", "some-dsn")
	require.NoError(t, err)

	stub, ok := j.(*stubJournal)
	require.True(t, ok)
	assert.Equal(t, "some-dsn", stub.dsn)
}

func TestRegistry_OpenUnknownBackend(t *testing.T) {
	_, err := Open("never-registered", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownBackend)
	assert.Contains(t, err.Error(), "never-registered")
}

func TestRegistry_OpenWrapsFactoryError(t *testing.T) {
	boom := errors.New("backend unavailable")
	Register("registry-test-failing", func(string) (Journal, error) {
		return nil, boom
	})

	_, err := Open("registry-test-failing", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "registry-test-failing")
}

func TestRegistry_RegisterNilFactoryPanics(t *testing.T) {
	assert.Panics(t, func() { Register("registry-test-nil", nil) })
}

func TestRegistry_RegisterDuplicatePanics(t *testing.T) {
	Register("registry-test-dup", func(string) (Journal, error) {
		return &stubJournal{}, nil
	})
	assert.Panics(t, func() {
		Register("registry-test-dup", func(string) (Journal, error) {
			return &stubJournal{}, nil
		})
	})
}

func TestBackends_Sorted(t *testing.T) {
	Register("registry-test-zz", func(string) (Journal, error) { return &stubJournal{}, nil })
	Register("registry-test-aa", func(string) (Journal, error) { return &stubJournal{}, nil })

	names := Backends()
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "registry-test-aa")
	assert.Contains(t, names, "registry-test-zz")
}

func TestNewEntityID_Unique(t *testing.T) {
	seen := make(map[EntityID]bool)
	for i := 0; i < 1000; i++ {
		id := NewEntityID()
		require.Len(t, id.String(), 36)
		require.False(t, seen[id], "entity ids must be unique")
		seen[id] = true
	}
}
