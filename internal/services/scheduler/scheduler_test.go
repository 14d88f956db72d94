package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/balma1115/marketingplatformproject-sub003/internal/common"
)

func TestScheduler_DisabledIsNoop(t *testing.T) {
	s := NewScheduler(nil, common.SchedulerConfig{Enabled: false}, arbor.NewLogger())

	require.NoError(t, s.Start(context.Background()))
	s.Stop() // Must be safe without a running cron
}

func TestScheduler_InvalidScheduleRejected(t *testing.T) {
	config := common.SchedulerConfig{
		Enabled:            true,
		SmartplaceSchedule: "not a cron expression",
	}
	s := NewScheduler(nil, config, arbor.NewLogger())

	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_StartAndStop(t *testing.T) {
	config := common.SchedulerConfig{
		Enabled:            true,
		SmartplaceSchedule: "0 2 * * *",
		BlogSchedule:       "30 2 * * *",
	}
	s := NewScheduler(nil, config, arbor.NewLogger())

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
