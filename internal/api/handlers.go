package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/calendar"
	"github.com/starford/ansuz/internal/curriculum"
	"github.com/starford/ansuz/internal/events"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notes"
	"github.com/starford/ansuz/internal/tutor"
)

// upcomingLimit caps how much calendar context is handed to the planner.
const upcomingLimit = 20

// Handler holds API route handlers.
type Handler struct {
	notes      *notes.Repository
	events     *events.Repository
	curriculum curriculum.Curriculum
	searcher   index.Searcher
	library    *library.Client
	tutor      *tutor.Planner
}

// NewHandler creates a new Handler. searcher, lib and planner may be nil;
// the corresponding endpoints then report the feature unavailable.
func NewHandler(
	noteRepo *notes.Repository,
	eventRepo *events.Repository,
	cur curriculum.Curriculum,
	searcher index.Searcher,
	lib *library.Client,
	planner *tutor.Planner,
) *Handler {
	return &Handler{
		notes:      noteRepo,
		events:     eventRepo,
		curriculum: cur,
		searcher:   searcher,
		library:    lib,
		tutor:      planner,
	}
}

// ListNotes handles GET /notes with an optional subject filter.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	items := notes.FilterBySubject(h.notes.All(), subject)
	if items == nil {
		items = []models.Note{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: len(items)})
}

// CreateNote handles POST /notes. An input that normalizes to nothing
// (empty title and content) is a silent no-op answered with 204.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	note, err := h.notes.Add(req.Subject, req.Title, req.Content)
	if note == nil {
		if err != nil {
			slog.Error("create note failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		// Record accepted in memory; persistence will be retried on the
		// next mutation. Surface it in the log, not to the client.
		slog.Error("note persistence failed", slog.String("id", note.ID), slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusCreated, note)
}

// DeleteNote handles DELETE /notes/{id}. Deleting an absent id is a 204.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	if err := h.notes.Remove(id); err != nil {
		slog.Error("delete note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEvents handles GET /events with an optional date filter.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	items := h.events.All()
	if date := r.URL.Query().Get("date"); date != "" {
		items = events.FilterByDate(items, date)
	}
	if items == nil {
		items = []models.Event{}
	}
	writeJSON(w, http.StatusOK, EventListResponse{Events: items, Total: len(items)})
}

// CreateEvent handles POST /events. An empty title is a silent no-op
// (204); a malformed date or unknown type is a 400.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	event, err := h.events.Add(req.Date, req.Title, models.EventType(req.Type), req.Subject)
	if event == nil {
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperr.ErrInvalidDate), errors.Is(err, apperr.ErrInvalidType):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("create event failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if err != nil {
		slog.Error("event persistence failed", slog.String("id", event.ID), slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusCreated, event)
}

// DeleteEvent handles DELETE /events/{id}.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	if err := h.events.Remove(id); err != nil {
		slog.Error("delete event failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Calendar handles GET /calendar?selected=YYYY-MM-DD, returning the
// marking map for the calendar renderer.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("selected")
	if err := validation.Validate(selected, validation.Required, validation.Date("2006-01-02")); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("selected must be a YYYY-MM-DD date"))
		return
	}
	writeJSON(w, http.StatusOK, calendar.Aggregate(h.events.All(), selected))
}

// Curriculum handles GET /curriculum.
func (h *Handler) Curriculum(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.curriculum)
}

// Subjects handles GET /subjects, the flat subject list.
func (h *Handler) Subjects(w http.ResponseWriter, _ *http.Request) {
	subjects := h.curriculum.Subjects()
	if subjects == nil {
		subjects = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"subjects": subjects})
}

// Search handles GET /search, full-text search across local notes.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	if h.searcher == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("search index not available"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.searcher.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Library handles GET /library, proxying the Open Library book search.
func (h *Handler) Library(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	if h.library == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("library search not available"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	books, err := h.library.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("library search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("library search failed"))
		return
	}
	writeJSON(w, http.StatusOK, LibraryResponse{Books: books})
}

// Tutor handles POST /tutor, the study-planner chat endpoint.
func (h *Handler) Tutor(w http.ResponseWriter, r *http.Request) {
	if !h.tutor.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("tutor not configured"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req TutorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("message is required"))
		return
	}

	upcoming := upcomingEvents(h.events.All(), time.Now().Format("2006-01-02"))
	reply, err := h.tutor.Plan(r.Context(), req.Message, upcoming)
	if err != nil {
		slog.Error("tutor failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("tutor request failed"))
		return
	}
	writeJSON(w, http.StatusOK, TutorResponse{Reply: reply})
}

// upcomingEvents returns the events on or after today sorted by date,
// capped at upcomingLimit. Events sharing a date keep their collection
// order.
func upcomingEvents(all []models.Event, today string) []models.Event {
	upcoming := make([]models.Event, 0, len(all))
	for _, e := range all {
		if e.Date >= today {
			upcoming = append(upcoming, e)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Date < upcoming[j].Date })
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}
	return upcoming
}
