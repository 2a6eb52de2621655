package models

import (
	"errors"
	"testing"
	"time"
)

func TestDate(t *testing.T) {
	t.Run("NewDate truncates time of day", func(t *testing.T) {
		d := NewDate(time.Date(2020, 5, 17, 23, 59, 1, 0, time.FixedZone("X", 3600)))
		if d.String() != "2020-05-17" {
			t.Errorf("expected 2020-05-17, got %s", d)
		}
	})

	t.Run("Days round trip", func(t *testing.T) {
		for _, s := range []string{"1970-01-01", "2020-01-01", "1969-12-31", "2024-02-29"} {
			parsed, err := time.Parse(time.DateOnly, s)
			if err != nil {
				t.Fatal(err)
			}
			d := NewDate(parsed)
			if got := DateFromDays(d.Days()).String(); got != s {
				t.Errorf("round trip of %s gave %s", s, got)
			}
		}
	})

	t.Run("Epoch is day zero", func(t *testing.T) {
		if days := NewDate(time.Unix(0, 0)).Days(); days != 0 {
			t.Errorf("expected 0, got %d", days)
		}
	})
}

func TestJobRun(t *testing.T) {
	t.Run("NewJobRun", func(t *testing.T) {
		run := NewJobRun("transform_spotify_data")
		if run.Status != RunRunning {
			t.Errorf("expected running, got %s", run.Status)
		}
		if err := run.Validate(); err != nil {
			t.Errorf("new run should validate: %v", err)
		}
		if run.Duration() != 0 {
			t.Error("running job should have zero duration")
		}
	})

	t.Run("Finish", func(t *testing.T) {
		tc := []struct {
			name   string
			err    error
			status RunStatus
		}{
			{name: "success", status: RunSucceeded},
			{name: "failure", err: errors.New("boom"), status: RunFailed},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				run := NewJobRun("job")
				run.Finish(RunCounts{ObjectsRead: 3, SongsWritten: 2}, tt.err)

				if run.Status != tt.status {
					t.Errorf("expected %s, got %s", tt.status, run.Status)
				}
				if run.CompletedAt == nil {
					t.Fatal("completed_at should be set")
				}
				if run.ObjectsRead != 3 || run.SongsWritten != 2 {
					t.Errorf("counts not recorded: %+v", run.RunCounts)
				}
				if tt.err != nil && run.ErrorMessage != "boom" {
					t.Errorf("expected error message boom, got %q", run.ErrorMessage)
				}
				if err := run.Validate(); err != nil {
					t.Errorf("finished run should validate: %v", err)
				}
			})
		}
	})

	t.Run("Validate", func(t *testing.T) {
		cases := map[string]*JobRun{
			"missing name":      {Status: RunRunning},
			"unknown status":    {JobName: "job", Status: "paused"},
			"done without time": {JobName: "job", Status: RunSucceeded},
		}
		for name, run := range cases {
			t.Run(name, func(t *testing.T) {
				if err := run.Validate(); err == nil {
					t.Error("expected validation error")
				}
			})
		}
	})
}

func TestLease(t *testing.T) {
	now := time.Now()
	lease := &Lease{Resource: "raw_data/to_process/", Owner: "run-1", AcquiredAt: now, ExpiresAt: now.Add(time.Minute)}

	if err := lease.Validate(); err != nil {
		t.Fatalf("lease should validate: %v", err)
	}
	if lease.Expired(now) {
		t.Error("lease should be live at acquisition")
	}
	if !lease.Expired(now.Add(time.Minute)) {
		t.Error("lease should be expired at expires_at")
	}

	lease.ExpiresAt = now
	if err := lease.Validate(); err == nil {
		t.Error("expected error for zero-length lease")
	}
}
