// Package server exposes the hosted model over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"codeberg.org/snonux/agritranslate/internal/lang"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

const maxBodySize = 1 << 20

// CapabilitySource hands out capabilities of a model loaded once at startup
type CapabilitySource interface {
	For(pair lang.Pair) (translation.Capability, error)
}

type translateRequest struct {
	Text   *string `json:"text"`
	ToLang *string `json:"to_lang"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type statusResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type handler struct {
	model  CapabilitySource
	logger *slog.Logger
}

// NewRouter returns the HTTP handler serving model
func NewRouter(model CapabilitySource, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{model: model, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/status", h.status)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/translate", h.translate)
	})
	return r
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{OK: true, Message: "Translation service is up"})
}

func (h *handler) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Malformed request body."})
		return
	}
	if req.Text == nil || req.ToLang == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Fields text and to_lang are required."})
		return
	}

	if !lang.IsSupported(*req.ToLang) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Language not supported."})
		return
	}

	pair := lang.NewPair(lang.Source, *req.ToLang)
	capability, err := h.model.For(pair)
	if err != nil {
		if errors.Is(err, translation.ErrUnsupportedLanguagePair) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Language not supported."})
			return
		}
		h.fail(w, r, pair, err)
		return
	}

	translated, err := capability.Translate(r.Context(), *req.Text)
	if err != nil {
		h.fail(w, r, pair, &translation.InvocationError{Pair: pair, Err: err})
		return
	}

	writeJSON(w, http.StatusOK, translateResponse{TranslatedText: translated})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, pair lang.Pair, err error) {
	h.logger.Error("translation failed",
		"pair", pair.String(),
		"request_id", middleware.GetReqID(r.Context()),
		"error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Translation failed."})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
