package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	logx "workstarter/pkg/logx"
)

func sampleRun(id string, start time.Time) RunRecord {
	return RunRecord{
		ID:        id,
		Start:     start,
		Finished:  start.Add(3 * time.Second),
		Tasks:     2,
		Succeeded: 1,
		Failed:    1,
		Results: []TaskRecord{
			{
				Index: 0, ID: "0", Name: "open site: example.com", Type: "open_link", Target: "https://example.com",
				State: "done", Scheduled: start, Started: start.Add(time.Millisecond), Finished: start.Add(2 * time.Millisecond),
			},
			{
				Index: 1, ID: "1", Name: "start program: missing", Type: "open_program", Target: "/nope/missing",
				State: "error", Scheduled: start.Add(2 * time.Second), Started: start.Add(2 * time.Second), Finished: start.Add(2 * time.Second),
				Error: "launch failed: no such file",
			},
		},
	}
}

func TestStoreDrivers(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "nested", "history.db")
			st, err := Open(Config{Driver: driver, Path: path}, logx.Nop())
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer st.Close()
			ctx := context.Background()

			if runs, err := st.Runs(ctx, 0); err != nil || len(runs) != 0 {
				t.Fatalf("empty Runs = %v, %v", runs, err)
			}

			base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
			for i := 0; i < 3; i++ {
				if err := st.AppendRun(ctx, sampleRun(fmt.Sprint("run-", i), base.Add(time.Duration(i)*time.Hour))); err != nil {
					t.Fatalf("AppendRun %d: %v", i, err)
				}
			}
			if err := st.AppendEvent(ctx, EventRecord{RunID: "run-2", TaskID: "0", Name: "x", State: "start", At: base}); err != nil {
				t.Fatalf("AppendEvent: %v", err)
			}

			runs, err := st.Runs(ctx, 0)
			if err != nil {
				t.Fatalf("Runs: %v", err)
			}
			if len(runs) != 3 || runs[0].ID != "run-2" || runs[2].ID != "run-0" {
				t.Fatalf("runs not newest first: %+v", runs)
			}

			got := runs[0]
			want := sampleRun("run-2", base.Add(2*time.Hour))
			if !got.Start.Equal(want.Start) || !got.Finished.Equal(want.Finished) || got.Failed != 1 {
				t.Fatalf("run = %+v, want %+v", got, want)
			}
			if len(got.Results) != 2 {
				t.Fatalf("results = %d, want 2", len(got.Results))
			}
			if r := got.Results[1]; r.Error != want.Results[1].Error || r.Type != "open_program" || !r.Scheduled.Equal(want.Results[1].Scheduled) {
				t.Fatalf("task record = %+v", r)
			}

			limited, err := st.Runs(ctx, 2)
			if err != nil || len(limited) != 2 || limited[1].ID != "run-1" {
				t.Fatalf("Runs(2) = %+v, %v", limited, err)
			}
		})
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			cfg := Config{Driver: driver, Path: filepath.Join(t.TempDir(), "history.db")}
			st, err := Open(cfg, logx.Nop())
			if err != nil {
				t.Fatal(err)
			}
			if err := st.AppendRun(context.Background(), sampleRun("a", time.Now())); err != nil {
				t.Fatal(err)
			}
			if err := st.Close(); err != nil {
				t.Fatal(err)
			}

			st, err = Open(cfg, logx.Nop())
			if err != nil {
				t.Fatal(err)
			}
			defer st.Close()
			runs, err := st.Runs(context.Background(), 0)
			if err != nil || len(runs) != 1 || runs[0].ID != "a" {
				t.Fatalf("Runs after reopen = %+v, %v", runs, err)
			}
		})
	}
}

func TestFileStoreSkipsTornLine(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "history.jsonl")}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	if err := st.AppendRun(context.Background(), sampleRun("ok", time.Now())); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "history.runs.jsonl"), os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(`{"id":"torn","start":`)
	_ = f.Close()

	runs, err := st.Runs(context.Background(), 0)
	if err != nil || len(runs) != 1 || runs[0].ID != "ok" {
		t.Fatalf("Runs = %+v, %v", runs, err)
	}
}

func TestOpenDisabledAndUnknown(t *testing.T) {
	t.Parallel()
	for _, d := range []string{"", "none", " NONE "} {
		st, err := Open(Config{Driver: d}, logx.Nop())
		if st != nil || err != nil {
			t.Fatalf("Open(%q) = %v, %v; want disabled", d, st, err)
		}
	}
	if _, err := Open(Config{Driver: "postgres", Path: "x"}, logx.Nop()); err == nil {
		t.Fatal("unknown driver should fail")
	}
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); err == nil {
		t.Fatal("file driver without a path should fail")
	}
}
