package events

import (
	"errors"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
	"github.com/starford/ansuz/internal/testutil"
)

func tempRepo(t *testing.T) (*Repository, *store.Store) {
	t.Helper()
	_, st := testutil.TestStore(t)
	r, err := NewRepository(st, nil)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return r, st
}

func TestAddEmptyTitleIsNoOp(t *testing.T) {
	r, _ := tempRepo(t)
	e, err := r.Add("2024-05-01", "  ", models.EventExam, "Math")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if e != nil {
		t.Errorf("expected nil event, got %+v", e)
	}
	if len(r.All()) != 0 {
		t.Error("collection should be unchanged")
	}
}

func TestAddValidatesDate(t *testing.T) {
	r, _ := tempRepo(t)
	cases := []string{"", "01-05-2024", "2024/05/01", "2024-13-40", "tomorrow"}
	for _, date := range cases {
		_, err := r.Add(date, "Mock exam", models.EventExam, "Math")
		if !errors.Is(err, apperr.ErrInvalidDate) {
			t.Errorf("Add(date=%q) err = %v, want ErrInvalidDate", date, err)
		}
	}
	if len(r.All()) != 0 {
		t.Error("no event should be persisted")
	}
}

func TestAddValidatesType(t *testing.T) {
	r, _ := tempRepo(t)
	_, err := r.Add("2024-05-01", "Mock exam", models.EventType("party"), "Math")
	if !errors.Is(err, apperr.ErrInvalidType) {
		t.Errorf("err = %v, want ErrInvalidType", err)
	}

	for _, typ := range models.EventTypes() {
		if _, err := r.Add("2024-05-01", "ok", typ, "Math"); err != nil {
			t.Errorf("Add(type=%q): %v", typ, err)
		}
	}
}

func TestAddPrependsAndPersists(t *testing.T) {
	r, st := tempRepo(t)
	first, _ := r.Add("2024-05-01", "first", models.EventTest, "Math")
	second, _ := r.Add("2024-05-02", "second", models.EventHomework, "History")

	all := r.All()
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Errorf("collection not most-recent-first: %+v", all)
	}

	r2, err := NewRepository(st, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(r2.All()) != 2 {
		t.Errorf("persisted len = %d, want 2", len(r2.All()))
	}
}

func TestRemove(t *testing.T) {
	r, _ := tempRepo(t)
	e, _ := r.Add("2024-05-01", "gone", models.EventDeadline, "Math")
	if err := r.Remove(e.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(r.All()) != 0 {
		t.Error("event still present")
	}
	if err := r.Remove("no-such-id"); err != nil {
		t.Errorf("absent id should be a no-op: %v", err)
	}
}

func TestFilterByDate(t *testing.T) {
	r, _ := tempRepo(t)
	// Prepend order: e3 (d2), e2 (d1), e1 (d1).
	e1, _ := r.Add("2024-05-01", "one", models.EventExam, "Math")
	e2, _ := r.Add("2024-05-01", "two", models.EventTest, "Math")
	_, _ = r.Add("2024-05-02", "three", models.EventHomework, "History")

	got := FilterByDate(r.All(), "2024-05-01")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Relative order within the collection snapshot must be preserved.
	if got[0].ID != e2.ID || got[1].ID != e1.ID {
		t.Errorf("order not preserved: %+v", got)
	}

	if got := FilterByDate(r.All(), "2024-06-01"); len(got) != 0 {
		t.Errorf("expected no events, got %+v", got)
	}
}
