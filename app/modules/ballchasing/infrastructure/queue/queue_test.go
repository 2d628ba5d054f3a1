package bcqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Black-And-White-Club/rsc-league-bot/app/eventbus"
	bcservice "github.com/Black-And-White-Club/rsc-league-bot/app/modules/ballchasing/application"
	"github.com/Black-And-White-Club/rsc-league-bot/app/observability"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"
)

type insertCall struct {
	args river.JobArgs
	opts *river.InsertOpts
}

type fakeInserter struct {
	calls     []insertCall
	duplicate bool
	err       error
}

func (f *fakeInserter) Insert(_ context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	f.calls = append(f.calls, insertCall{args: args, opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return &rivertype.JobInsertResult{
		Job:                      &rivertype.JobRow{ID: int64(len(f.calls))},
		UniqueSkippedAsDuplicate: f.duplicate,
	}, nil
}

var now = time.Date(2026, time.March, 4, 17, 0, 0, 0, time.UTC)

func newTestService(ins inserter) *Service {
	s := newService(ins, observability.NopLogger(), observability.NoOpMetrics{})
	s.now = func() time.Time { return now }
	return s
}

func TestScheduleMatchDayReport(t *testing.T) {
	at := now.Add(12 * time.Hour)

	tests := []struct {
		name      string
		at        time.Time
		inserter  *fakeInserter
		wantCalls int
		wantErr   bool
	}{
		{name: "future", at: at, inserter: &fakeInserter{}, wantCalls: 1},
		{name: "already scheduled", at: at, inserter: &fakeInserter{duplicate: true}, wantCalls: 1},
		{name: "in the past", at: now.Add(-time.Minute), inserter: &fakeInserter{}, wantCalls: 0},
		{name: "insert fails", at: at, inserter: &fakeInserter{err: errors.New("db down")}, wantCalls: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(tt.inserter)
			err := s.ScheduleMatchDayReport(context.Background(), "guild-1", 3, tt.at)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, tt.inserter.calls, tt.wantCalls)
			if tt.wantCalls == 0 {
				return
			}

			call := tt.inserter.calls[0]
			require.Equal(t, MatchDayReportJob{GuildID: "guild-1", MatchDay: 3, ReportAt: at.Unix()}, call.args)
			require.Equal(t, "match_day_report", call.args.Kind())
			require.Equal(t, queueName, call.opts.Queue)
			require.Equal(t, at, call.opts.ScheduledAt)
			require.True(t, call.opts.UniqueOpts.ByArgs)
		})
	}
}

func TestMatchDayReportWorker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := eventbus.NewInMemoryBus(observability.NopLogger())
	defer bus.Close()
	msgs, err := bus.Subscribe(ctx, eventbus.MatchDayReportRequestedV1)
	require.NoError(t, err)

	worker := NewMatchDayReportWorker(bus, observability.NopLogger())
	job := &river.Job[MatchDayReportJob]{
		JobRow: &rivertype.JobRow{ID: 11, Attempt: 1},
		Args:   MatchDayReportJob{GuildID: "guild-1", MatchDay: 4, ReportAt: now.Unix()},
	}
	require.NoError(t, worker.Work(ctx, job))

	select {
	case msg := <-msgs:
		msg.Ack()
		payload, err := eventbus.Decode[bcservice.MatchDayReportRequestedPayload](msg)
		require.NoError(t, err)
		require.Equal(t, bcservice.MatchDayReportRequestedPayload{GuildID: "guild-1", MatchDay: 4}, payload)
		require.Equal(t, "guild-1", msg.Metadata.Get(eventbus.MetadataGuildID))
	case <-ctx.Done():
		t.Fatal("timed out waiting for report request")
	}
}
