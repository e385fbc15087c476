package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/myenglish/internal/infrastructure/server"
	"github.com/eslsoft/myenglish/internal/usecase"
)

// NewRouter assembles the API surface.
func NewRouter(
	vocab usecase.VocabUsecase,
	review usecase.ReviewUsecase,
	lookup usecase.LookupUsecase,
	chat usecase.ChatUsecase,
	logger *logrus.Logger,
) http.Handler {
	h := &Handler{vocab: vocab, review: review, lookup: lookup, chat: chat, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(server.RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/translate", h.Translate)
		r.Get("/history", h.History)
		r.Get("/stats", h.Stats)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Get("/{id}", h.GetEntry)
			r.Delete("/{id}", h.DeleteEntry)
			r.Post("/{id}/tags", h.AddTag)
			r.Post("/{id}/start", h.StartLearning)
		})

		r.Route("/import", func(r chi.Router) {
			r.Post("/preview", h.PreviewImport)
			r.Post("/confirm", h.ConfirmImport)
		})

		r.Route("/review", func(r chi.Router) {
			r.Get("/due", h.DueForReview)
			r.Get("/forecast", h.Forecast)
			r.Post("/sessions", h.StartSession)
			r.Post("/sessions/{id}/outcomes", h.RecordOutcome)
		})

		r.Post("/chat", h.Chat)
	})

	return r
}
