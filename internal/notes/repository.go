// Package notes maintains the persisted study-note collection.
package notes

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// SubjectAll is the sentinel subject value that bypasses filtering.
const SubjectAll = "All"

// DefaultTitle is assigned when a note is created with content but no title.
const DefaultTitle = "Untitled"

// ChangeCallback is invoked after a successful mutation.
// kind is "created" or "deleted".
type ChangeCallback func(kind string, note models.Note)

// Repository holds the note collection in memory, most-recent-first, and
// persists the full collection through the store on every mutation. It
// is the sole writer for its storage key.
type Repository struct {
	store    *store.Store
	logger   *slog.Logger
	onChange ChangeCallback

	mu    sync.RWMutex
	notes []models.Note
}

// NewRepository loads the persisted collection and returns the repository.
func NewRepository(st *store.Store, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Repository{store: st, logger: logger}
	if err := st.Load(store.NotesKey, &r.notes); err != nil {
		return nil, fmt.Errorf("notes: load: %w", err)
	}
	return r, nil
}

// SetOnChange registers a callback fired after each mutation.
// Must be called before the repository is shared across goroutines.
func (r *Repository) SetOnChange(cb ChangeCallback) {
	r.onChange = cb
}

// Add creates a note and prepends it to the collection.
//
// Title and content are trimmed; when both are empty the operation is a
// no-op and returns (nil, nil). An empty title with non-empty content
// falls back to DefaultTitle. A persistence failure is returned to the
// caller but does not roll back the in-memory record: the next
// successful mutation persists it.
func (r *Repository) Add(subject, title, content string) (*models.Note, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" && content == "" {
		return nil, nil
	}
	if title == "" {
		title = DefaultTitle
	}

	now := time.Now().UnixMilli()
	note := models.Note{
		ID:        uuid.New().String(),
		Subject:   subject,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.notes = append([]models.Note{note}, r.notes...)
	err := r.persistLocked()
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("notes: persist after add failed",
			slog.String("id", note.ID), slog.String("error", err.Error()))
		return &note, err
	}
	r.notify("created", note)
	return &note, nil
}

// Remove deletes the note with the given id. Absent ids are a no-op.
func (r *Repository) Remove(id string) error {
	r.mu.Lock()
	var removed *models.Note
	for i, n := range r.notes {
		if n.ID == id {
			removed = &n
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			break
		}
	}
	if removed == nil {
		r.mu.Unlock()
		return nil
	}
	err := r.persistLocked()
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("notes: persist after remove failed",
			slog.String("id", id), slog.String("error", err.Error()))
		return err
	}
	r.notify("deleted", *removed)
	return nil
}

// All returns a snapshot of the collection in stored order.
func (r *Repository) All() []models.Note {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Note, len(r.notes))
	copy(out, r.notes)
	return out
}

// Reload replaces the in-memory collection with the persisted state.
// Used when the store detects an external change to the backing file.
func (r *Repository) Reload() error {
	var loaded []models.Note
	if err := r.store.Load(store.NotesKey, &loaded); err != nil {
		return fmt.Errorf("notes: reload: %w", err)
	}
	r.mu.Lock()
	r.notes = loaded
	r.mu.Unlock()
	return nil
}

func (r *Repository) persistLocked() error {
	return r.store.Save(store.NotesKey, r.notes)
}

func (r *Repository) notify(kind string, note models.Note) {
	if r.onChange != nil {
		r.onChange(kind, note)
	}
}

// FilterBySubject returns the subsequence of notes whose subject equals
// the given value, order preserved. The SubjectAll sentinel returns the
// input unchanged.
func FilterBySubject(notes []models.Note, subject string) []models.Note {
	if subject == SubjectAll || subject == "" {
		return notes
	}
	var out []models.Note
	for _, n := range notes {
		if n.Subject == subject {
			out = append(out, n)
		}
	}
	return out
}
