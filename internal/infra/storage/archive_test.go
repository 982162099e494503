package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aldealabs/aldea/internal/events"
)

func TestArchiveDayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	evs := []events.WorldEvent{
		{
			ID:        events.NewEventID(),
			Timestamp: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
			Type:      events.EventTypeAgentRegistered,
			ActorID:   "Alex",
			GameDay:   5,
		},
		{
			ID:        events.NewEventID(),
			Timestamp: time.Date(2026, 3, 1, 8, 5, 0, 0, time.UTC),
			Type:      events.EventTypeAgentMoved,
			ActorID:   "Alex",
			TargetID:  "(1,0)",
			GameDay:   5,
		},
	}

	if err := ArchiveDay(dir, 5, evs); err != nil {
		t.Fatalf("archive: %v", err)
	}

	got, err := ReadArchive(filepath.Join(dir, "day-0005.jsonl.zst"))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("events: got %d, want 2", len(got))
	}
	if got[0].Type != events.EventTypeAgentRegistered || got[1].TargetID != "(1,0)" {
		t.Errorf("events not restored: %+v", got)
	}
}

func TestArchiveEmptyDay(t *testing.T) {
	dir := t.TempDir()
	if err := ArchiveDay(dir, 1, nil); err != nil {
		t.Fatalf("empty archive: %v", err)
	}
	got, err := ReadArchive(filepath.Join(dir, "day-0001.jsonl.zst"))
	if err != nil {
		t.Fatalf("read empty archive: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("events: got %d, want 0", len(got))
	}
}
