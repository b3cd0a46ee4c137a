package index

import (
	"os"
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ansuz-index-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertAndSearch(t *testing.T) {
	db := testDB(t)
	err := db.Upsert(models.Note{ID: "n1", Title: "Derivatives", Subject: "Math AA", Content: "chain rule and product rule"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	hits, err := db.Search("chain", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "n1" {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].Title != "Derivatives" || hits[0].Subject != "Math AA" {
		t.Errorf("hit = %+v", hits[0])
	}
}

func TestUpsertReplaces(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(models.Note{ID: "n1", Title: "old", Content: "alpha"})
	_ = db.Upsert(models.Note{ID: "n1", Title: "new", Content: "beta"})

	if hits, _ := db.Search("alpha", 10); len(hits) != 0 {
		t.Errorf("stale content still searchable: %+v", hits)
	}
	hits, _ := db.Search("beta", 10)
	if len(hits) != 1 || hits[0].Title != "new" {
		t.Errorf("hits = %+v", hits)
	}
	if n, _ := db.Count(); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(models.Note{ID: "n1", Title: "gone", Content: "ephemeral"})
	if err := db.Delete("n1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if hits, _ := db.Search("ephemeral", 10); len(hits) != 0 {
		t.Errorf("deleted note still searchable: %+v", hits)
	}
}

func TestRebuild(t *testing.T) {
	db := testDB(t)
	_ = db.Upsert(models.Note{ID: "stale", Title: "stale", Content: "old state"})

	err := db.Rebuild([]models.Note{
		{ID: "n1", Title: "Photosynthesis", Subject: "Biology", Content: "light reactions"},
		{ID: "n2", Title: "Cold War", Subject: "History", Content: "containment"},
	})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if n, _ := db.Count(); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	if hits, _ := db.Search("old state", 10); len(hits) != 0 {
		t.Errorf("stale entry survived rebuild: %+v", hits)
	}
	hits, _ := db.Search("containment", 10)
	if len(hits) != 1 || hits[0].ID != "n2" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestSearchLimit(t *testing.T) {
	db := testDB(t)
	for _, id := range []string{"a", "b", "c"} {
		_ = db.Upsert(models.Note{ID: id, Title: "osmosis " + id, Content: "osmosis notes"})
	}
	hits, err := db.Search("osmosis", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Errorf("len = %d, want 2", len(hits))
	}
}
