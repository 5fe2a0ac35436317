package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/corpusprep/internal/corpus"
)

func TestNewJob(t *testing.T) {
	a := NewJob("/in", "/out")
	b := NewJob("/in", "/out")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if a.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, a.Status)
	}
	if a.InputRoot != "/in" || a.OutputRoot != "/out" {
		t.Errorf("unexpected roots %q %q", a.InputRoot, a.OutputRoot)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("/in", "/out")

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusBuilding, "building"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Done(t *testing.T) {
	for status, want := range map[JobStatus]bool{
		StatusQueued:    false,
		StatusBuilding:  false,
		StatusCompleted: true,
		StatusFailed:    true,
	} {
		if got := status.Done(); got != want {
			t.Errorf("%q.Done() = %v, want %v", status, got, want)
		}
	}
}

func TestJob_SnapshotCopiesErrors(t *testing.T) {
	job := NewJob("/in", "/out")
	job.AddError("de: write failed")

	snap := job.Snapshot()
	job.AddError("fr: write failed")

	if len(snap.Errors) != 1 {
		t.Fatalf("snapshot should not see later errors, got %v", snap.Errors)
	}
	if snap.Errors[0] != "de: write failed" {
		t.Errorf("unexpected error %q", snap.Errors[0])
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	snap := NewJob("/in", "/out").Snapshot()
	if snap.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Report != nil {
		t.Error("expected no report before the build ran")
	}
}

func TestJob_SetReport(t *testing.T) {
	job := NewJob("/in", "/out")
	job.SetReport(&corpus.Report{InputRoot: "/in"})
	if snap := job.Snapshot(); snap.Report == nil || snap.Report.InputRoot != "/in" {
		t.Errorf("expected report in snapshot, got %+v", snap.Report)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("/in", "/out")
	store.Put(job)

	if got := store.Get(job.ID); got != job {
		t.Fatal("expected to get job back")
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	finished := NewJob("/in", "/out")
	finished.SetStatus(StatusCompleted, "done")
	store.Put(finished)

	running := NewJob("/in", "/out")
	running.SetStatus(StatusBuilding, "building")
	store.Put(running)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := NewJob("/in", "/out")
	fresh.SetStatus(StatusFailed, "building")
	store.Put(fresh)

	store.Cleanup()

	if store.Get(finished.ID) != nil {
		t.Error("expected expired finished job to be cleaned up")
	}
	if store.Get(running.ID) == nil {
		t.Error("running jobs must survive cleanup")
	}
	if store.Get(fresh.ID) == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}
