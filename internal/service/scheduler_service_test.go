package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "07:30", want: "0 30 7 * * *"},
		{in: " 23:59 ", want: "0 59 23 * * *"},
		{in: "0:00", want: "0 0 0 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "12:30:00", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := buildDailySpec(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchedulerNextRun(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	s := NewSchedulerService(loc, nil)

	id, err := s.ScheduleDailyContext("06:15", time.Second, "noop", func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	_, err = s.ScheduleDaily("bad", func() {})
	assert.Error(t, err)

	s.Start()
	defer s.Stop()

	next := s.Next(id).In(loc)
	require.False(t, next.IsZero())
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 15, next.Minute())
	assert.True(t, next.After(time.Now()))
}
