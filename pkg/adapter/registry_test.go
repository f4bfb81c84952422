package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	BaseSQLAdapter
}

func (*stubAdapter) Connect(context.Context, Config) error { return nil }
func (*stubAdapter) DialectName() string                  { return "snowflake" }

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "fake_db")
	assert.Contains(t, msg, "[duckdb postgres]")
	assert.Contains(t, msg, "unknown target type")
	assert.Contains(t, msg, "semgen.yaml")
}

func TestRegister(t *testing.T) {
	Register("test_adapter_internal", func(l *slog.Logger) Adapter {
		return &stubAdapter{BaseSQLAdapter: NewBase(l)}
	})

	assert.True(t, IsRegistered("test_adapter_internal"))
	assert.Contains(t, ListAdapters(), "test_adapter_internal")

	factory, ok := Get("test_adapter_internal")
	require.True(t, ok)
	require.NotNil(t, factory)

	a, err := NewAdapter(Config{Type: "test_adapter_internal"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "snowflake", a.DialectName())
}

func TestRegister_CaseInsensitive(t *testing.T) {
	Register("MixedCase_Stub", func(l *slog.Logger) Adapter {
		return &stubAdapter{BaseSQLAdapter: NewBase(l)}
	})

	assert.Contains(t, ListAdapters(), "mixedcase_stub")
	for _, name := range []string{"mixedcase_stub", "MIXEDCASE_STUB", " MixedCase_Stub "} {
		assert.True(t, IsRegistered(name), name)
		a, err := NewAdapter(Config{Type: name}, nil)
		require.NoError(t, err, name)
		assert.NotNil(t, a)
	}
}

func TestNewAdapter_Errors(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	assert.ErrorIs(t, err, ErrTypeRequired)

	_, err = NewAdapter(Config{Type: "  "}, nil)
	assert.ErrorIs(t, err, ErrTypeRequired)

	_, err = NewAdapter(Config{Type: "unknown_db"}, nil)
	var unknown *UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "unknown_db", unknown.Type)
	assert.False(t, IsRegistered("unknown_db"))
}

func TestListAdapters_Sorted(t *testing.T) {
	Register("zz_stub", func(*slog.Logger) Adapter { return &stubAdapter{} })
	Register("aa_stub", func(*slog.Logger) Adapter { return &stubAdapter{} })

	names := ListAdapters()
	assert.IsIncreasing(t, names)
}
