package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/myenglish/internal/entity"
	"github.com/eslsoft/myenglish/internal/repository"
	"github.com/eslsoft/myenglish/internal/usecase"
	"github.com/eslsoft/myenglish/pkg/filterexpr"
)

// statusClientClosedRequest mirrors the nginx convention for requests the
// client abandoned; cancelled upstream calls are not failures.
const statusClientClosedRequest = 499

// Handler exposes the usecases over JSON HTTP.
type Handler struct {
	vocab  usecase.VocabUsecase
	review usecase.ReviewUsecase
	lookup usecase.LookupUsecase
	chat   usecase.ChatUsecase
	logger *logrus.Logger
}

type translateRequest struct {
	Text string `json:"text"`
}

func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	result, err := h.lookup.Translate(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.lookup.History(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	req := listRequest{
		filter:  r.URL.Query().Get("filter"),
		orderBy: r.URL.Query().Get("order_by"),
	}
	var query repository.ListEntryQuery
	if err := filterexpr.Bind(req, &query, listEntriesSchema); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.vocab.ListEntries(r.Context(), &query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

type createEntryRequest struct {
	Word        string              `json:"word"`
	Phonetic    string              `json:"phonetic"`
	Pos         string              `json:"pos"`
	Translation string              `json:"translation"`
	Definitions []entity.Definition `json:"definitions"`
	Examples    []entity.Example    `json:"examples"`
	Tags        []string            `json:"tags"`
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	entry, err := h.vocab.AddSingle(r.Context(), entity.EntryDraft{
		Word:        req.Word,
		Phonetic:    req.Phonetic,
		Pos:         req.Pos,
		Translation: req.Translation,
		Definitions: req.Definitions,
		Examples:    req.Examples,
		Tags:        req.Tags,
	}, entity.SourceManual)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.vocab.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.vocab.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addTagRequest struct {
	Tag string `json:"tag"`
}

func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	var req addTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	entry, err := h.vocab.AddTag(r.Context(), chi.URLParam(r, "id"), req.Tag)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) StartLearning(w http.ResponseWriter, r *http.Request) {
	entry, err := h.review.StartLearning(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.vocab.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

type previewImportRequest struct {
	Raw string `json:"raw"`
}

func (h *Handler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	var req previewImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	candidates, err := h.vocab.ParseImportBatch(r.Context(), req.Raw)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

type confirmImportRequest struct {
	Candidates []entity.ImportCandidate `json:"candidates"`
}

func (h *Handler) ConfirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	inserted, err := h.vocab.ConfirmImportBatch(r.Context(), req.Candidates)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"inserted": inserted})
}

func (h *Handler) DueForReview(w http.ResponseWriter, r *http.Request) {
	due, err := h.review.DueForReview(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if due == nil {
		due = []entity.VocabEntry{}
	}
	h.writeJSON(w, http.StatusOK, due)
}

func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.review.Forecast(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if buckets == nil {
		buckets = []entity.ForecastBucket{}
	}
	h.writeJSON(w, http.StatusOK, buckets)
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.review.StartSession(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, session)
}

type recordOutcomeRequest struct {
	Mastered bool `json:"mastered"`
}

func (h *Handler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var req recordOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	outcome, err := h.review.RecordOutcome(r.Context(), chi.URLParam(r, "id"), req.Mastered)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, outcome)
}

type chatRequest struct {
	Mode     string            `json:"mode"`
	Messages []entity.ChatTurn `json:"messages"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	reply, err := h.chat.Reply(r.Context(), entity.ParseChatMode(req.Mode), req.Messages)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("encode response failed")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		// Superseded by a newer request; no error body.
		w.WriteHeader(statusClientClosedRequest)
	case errors.Is(err, entity.ErrEntryNotFound), errors.Is(err, entity.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, entity.ErrDuplicateEntry), errors.Is(err, entity.ErrEntryNotNew), errors.Is(err, entity.ErrSessionFinished):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, entity.ErrInvalidEntryWord), errors.Is(err, entity.ErrEmptyLookupQuery):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.WithError(err).Error("request failed")
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
