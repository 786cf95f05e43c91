package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kotoba/internal/exporters"
)

type countingBackuper struct {
	calls atomic.Int32
	err   error
}

func (b *countingBackuper) Export(ctx context.Context) (exporters.BackupResult, error) {
	b.calls.Add(1)
	if b.err != nil {
		return exporters.BackupResult{}, b.err
	}
	return exporters.BackupResult{Path: "/tmp/decks-x.json", Bytes: 2}, nil
}

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 3 * * *"))
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
	assert.Error(t, ValidateCronSchedule("every day"))
	assert.Error(t, ValidateCronSchedule("0 0 3 * * *"))
}

func TestBackupScheduler_StartStop(t *testing.T) {
	s := NewBackupScheduler(&countingBackuper{}, "0 3 * * *")

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.NotNil(t, s.GetNextRunTime())

	require.NoError(t, s.Start(context.Background()), "second start is a no-op")

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestBackupScheduler_InvalidSchedule(t *testing.T) {
	s := NewBackupScheduler(&countingBackuper{}, "whenever")

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestBackupScheduler_RunNowRecordsStatus(t *testing.T) {
	backuper := &countingBackuper{}
	s := NewBackupScheduler(backuper, "0 3 * * *")

	result, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Bytes)
	assert.Equal(t, int32(1), backuper.calls.Load())

	status := s.Status()
	assert.False(t, status.Running)
	require.NotNil(t, status.LastRun)
	require.NotNil(t, status.Last)
	assert.Empty(t, status.LastErr)

	backuper.err = errors.New("disk full")
	_, err = s.RunNow(context.Background())
	require.Error(t, err)

	status = s.Status()
	assert.Equal(t, "disk full", status.LastErr)
	require.NotNil(t, status.Last, "previous successful result is kept")
}

func TestBackupScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewBackupScheduler(&countingBackuper{}, "0 3 * * *")
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
