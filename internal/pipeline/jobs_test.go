package pipeline

import (
	"testing"
	"time"

	"paperlens/internal/annotate"
	"paperlens/internal/toc"
)

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusWalking, "walking"},
		{StatusRendering, "rendering"},
		{StatusClassifying, "classifying"},
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

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("walk: bad xml")
	job.AddError("render: missing part")

	snap := job.Snapshot()
	if len(snap.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Errors))
	}
	if snap.Errors[0] != "walk: bad xml" {
		t.Errorf("expected first error %q, got %q", "walk: bad xml", snap.Errors[0])
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Errors))
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SetResultReleasesUpload(t *testing.T) {
	job := &Job{ID: "result-test"}
	job.SetFileData([]byte("upload"))
	job.SetResult(&Result{HTML: "<p>x</p>", Chapters: []*toc.Node{}})

	if job.FileData() != nil {
		t.Error("expected upload bytes released after SetResult")
	}
	r := job.Result()
	if r == nil || r.HTML != "<p>x</p>" {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestJob_AnnotateKnownChapter(t *testing.T) {
	job := &Job{ID: "anno-test"}
	job.SetResult(&Result{Chapters: []*toc.Node{
		{ID: "section-5-ch1", Children: []*toc.Node{{ID: "section-7-sub"}}},
	}})

	a := &annotate.Annotation{ChapterID: "section-7-sub", Commentary: "note", CreatedAt: time.Now()}
	if !job.Annotate(a) {
		t.Fatal("expected annotation on nested chapter to succeed")
	}
	got := job.Annotations()
	if got["section-7-sub"] == nil || got["section-7-sub"].Commentary != "note" {
		t.Errorf("unexpected annotations: %+v", got)
	}
}

func TestJob_AnnotateUnknownChapter(t *testing.T) {
	job := &Job{ID: "anno-miss"}
	job.SetResult(&Result{Chapters: []*toc.Node{{ID: "section-1-a"}}})

	a := &annotate.Annotation{ChapterID: "section-9-z", CreatedAt: time.Now()}
	if job.Annotate(a) {
		t.Error("expected annotation on unknown chapter to fail")
	}
}

func TestJob_AnnotateBeforeResult(t *testing.T) {
	job := &Job{ID: "anno-early"}
	a := &annotate.Annotation{ChapterID: "section-1-a", CreatedAt: time.Now()}
	if job.Annotate(a) {
		t.Error("expected annotation before completion to fail")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestNewJobID_UniqueAndSorted(t *testing.T) {
	a := NewJobID()
	b := NewJobID()
	if len(a) != 26 || len(b) != 26 {
		t.Fatalf("expected 26-char ids, got %q and %q", a, b)
	}
	if a == b {
		t.Error("expected distinct ids")
	}
	// Ids generated later never sort before earlier ones.
	if b < a {
		t.Errorf("expected monotonic ids, got %q then %q", a, b)
	}
}
