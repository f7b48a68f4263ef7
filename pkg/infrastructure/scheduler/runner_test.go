package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParser(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"0 6 * * 1-5", false},
		{"30 0 6 * * *", false},
		{"@every 15m", false},
		{"@daily", false},
		{"not a spec", true},
		{"61 * * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := Parser.Parse(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunner_AddRejectsBadSpec(t *testing.T) {
	r := New(zap.NewNop(), context.Background())
	_, err := r.Add("every now and then", func(context.Context) {})
	assert.Error(t, err)
}

func TestRunner_RunsJob(t *testing.T) {
	r := New(nil, context.Background())
	var runs atomic.Int32
	_, err := r.Add("@every 1s", func(ctx context.Context) {
		require.NotNil(t, ctx)
		runs.Add(1)
	})
	require.NoError(t, err)

	r.Start()
	defer r.Stop()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestRunner_SkipsAfterContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(nil, ctx)
	var runs atomic.Int32
	_, err := r.Add("@every 1s", func(context.Context) { runs.Add(1) })
	require.NoError(t, err)

	r.Start()
	time.Sleep(1500 * time.Millisecond)
	r.Stop()
	assert.Equal(t, int32(0), runs.Load())
}
