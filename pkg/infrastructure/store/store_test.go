package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErrorLSC/QMS/pkg/infrastructure/config"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/store/sqlite"
)

func TestOpen(t *testing.T) {
	s, err := Open(config.StoreConfig{Driver: "SQLite", DSN: ":memory:"})
	require.NoError(t, err)
	require.IsType(t, &sqlite.Store{}, s)
	defer s.Close()
	recs, err := s.Latest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)

	none, err := Open(config.StoreConfig{Driver: "none"})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StoreConfig
		want string
	}{
		{"unknown driver", config.StoreConfig{Driver: "mongo", DSN: "x"}, `unknown store driver "mongo"`},
		{"sqlite without dsn", config.StoreConfig{Driver: "sqlite"}, "sqlite store needs a dsn"},
		{"postgres without dsn", config.StoreConfig{Driver: "postgres"}, "postgres store needs a dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.cfg)
			assert.EqualError(t, err, tt.want)
		})
	}
}
