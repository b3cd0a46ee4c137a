// Package events maintains the persisted calendar-event collection.
package events

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// ChangeCallback is invoked after a successful mutation.
// kind is "created" or "deleted".
type ChangeCallback func(kind string, event models.Event)

// Repository holds the event collection in memory, most-recent-first,
// and persists the full collection through the store on every mutation.
// It is the sole writer for its storage key.
type Repository struct {
	store    *store.Store
	logger   *slog.Logger
	onChange ChangeCallback

	mu     sync.RWMutex
	events []models.Event
}

// NewRepository loads the persisted collection and returns the repository.
func NewRepository(st *store.Store, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Repository{store: st, logger: logger}
	if err := st.Load(store.EventsKey, &r.events); err != nil {
		return nil, fmt.Errorf("events: load: %w", err)
	}
	return r, nil
}

// SetOnChange registers a callback fired after each mutation.
// Must be called before the repository is shared across goroutines.
func (r *Repository) SetOnChange(cb ChangeCallback) {
	r.onChange = cb
}

// Add creates an event and prepends it to the collection.
//
// The title is trimmed; an empty title makes the operation a no-op
// returning (nil, nil). A malformed date or unknown type is rejected
// with apperr.ErrInvalidDate / apperr.ErrInvalidType so the persisted
// collection only ever holds well-formed events.
func (r *Repository) Add(date, title string, typ models.EventType, subject string) (*models.Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	if err := validation.Validate(date, validation.Required, validation.Date("2006-01-02")); err != nil {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidDate, date)
	}
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidType, typ)
	}

	event := models.Event{
		ID:      uuid.New().String(),
		Date:    date,
		Title:   title,
		Type:    typ,
		Subject: subject,
	}

	r.mu.Lock()
	r.events = append([]models.Event{event}, r.events...)
	err := r.persistLocked()
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("events: persist after add failed",
			slog.String("id", event.ID), slog.String("error", err.Error()))
		return &event, err
	}
	r.notify("created", event)
	return &event, nil
}

// Remove deletes the event with the given id. Absent ids are a no-op.
func (r *Repository) Remove(id string) error {
	r.mu.Lock()
	var removed *models.Event
	for i, e := range r.events {
		if e.ID == id {
			removed = &e
			r.events = append(r.events[:i], r.events[i+1:]...)
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
		r.logger.Error("events: persist after remove failed",
			slog.String("id", id), slog.String("error", err.Error()))
		return err
	}
	r.notify("deleted", *removed)
	return nil
}

// All returns a snapshot of the collection in stored order.
func (r *Repository) All() []models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reload replaces the in-memory collection with the persisted state.
func (r *Repository) Reload() error {
	var loaded []models.Event
	if err := r.store.Load(store.EventsKey, &loaded); err != nil {
		return fmt.Errorf("events: reload: %w", err)
	}
	r.mu.Lock()
	r.events = loaded
	r.mu.Unlock()
	return nil
}

func (r *Repository) persistLocked() error {
	return r.store.Save(store.EventsKey, r.events)
}

func (r *Repository) notify(kind string, event models.Event) {
	if r.onChange != nil {
		r.onChange(kind, event)
	}
}

// FilterByDate returns the subsequence of events on the given date,
// order preserved.
func FilterByDate(events []models.Event, date string) []models.Event {
	var out []models.Event
	for _, e := range events {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}
