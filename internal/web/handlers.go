package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-mood-mixer/internal/mood"
	"github.com/justestif/go-spotify-mood-mixer/internal/recommend"
	"github.com/justestif/go-spotify-mood-mixer/internal/sentiment"
)

// maxBodyBytes caps request bodies on the API endpoints.
const maxBodyBytes = 64 << 10

// User-facing error messages.
const (
	msgTextRequired    = "Text is required"
	msgMoodRequired    = "Mood is required"
	msgAnalyzeFailed   = "Failed to analyze sentiment"
	msgRecommendFailed = "Failed to get music recommendations"
)

// Recommender turns a mood assessment into a playlist.
type Recommender interface {
	Recommend(ctx context.Context, assessment mood.Assessment) (*recommend.PlaylistResult, error)
}

// Handlers contains HTTP handlers for the web application.
type Handlers struct {
	sentiment      sentiment.Classifier
	recommender    Recommender
	templates      *Templates
	log            logrus.FieldLogger
	requestTimeout time.Duration
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(classifier sentiment.Classifier, recommender Recommender, templates *Templates, log logrus.FieldLogger) *Handlers {
	return &Handlers{
		sentiment:      classifier,
		recommender:    recommender,
		templates:      templates,
		log:            log,
		requestTimeout: DefaultRequestTimeout,
	}
}

// requestContext bounds all upstream calls made for one request.
func (h *Handlers) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.requestTimeout)
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type recommendRequest struct {
	Mood         *mood.Assessment `json:"mood"`
	MoodAnalysis *mood.Assessment `json:"moodAnalysis"`
}

func (r recommendRequest) assessment() (mood.Assessment, bool) {
	a := r.Mood
	if a == nil {
		a = r.MoodAnalysis
	}
	if a == nil || strings.TrimSpace(string(a.Mood)) == "" {
		return mood.Assessment{}, false
	}
	out := *a
	out.Mood = mood.Normalize(string(out.Mood))
	return out, true
}

type errorResponse struct {
	Error string `json:"error"`
}

// logFor tags log entries with the request ID assigned by the middleware.
func (h *Handlers) logFor(r *http.Request) logrus.FieldLogger {
	return h.log.WithField("request_id", middleware.GetReqID(r.Context()))
}

// analyze validates text, calls the sentiment service and classifies.
func (h *Handlers) analyze(ctx context.Context, text string) (mood.Assessment, error) {
	if err := mood.ValidateText(text); err != nil {
		return mood.Assessment{}, err
	}
	signal, err := h.sentiment.Classify(ctx, text)
	if err != nil {
		return mood.Assessment{}, err
	}
	return mood.Classify(text, signal)
}

// AnalyzeMood handles POST /analyze-mood.
func (h *Handlers) AnalyzeMood(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgTextRequired)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	assessment, err := h.analyze(ctx, req.Text)
	if err != nil {
		if errors.Is(err, mood.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, msgTextRequired)
			return
		}
		h.logFor(r).WithError(err).Error("mood analysis failed")
		writeError(w, http.StatusInternalServerError, msgAnalyzeFailed)
		return
	}

	h.logFor(r).WithFields(logrus.Fields{
		"mood":       assessment.Mood,
		"confidence": assessment.Confidence,
	}).Debug("mood analyzed")

	writeJSON(w, http.StatusOK, assessment)
}

// RecommendTracks handles POST /recommend-tracks.
func (h *Handlers) RecommendTracks(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgMoodRequired)
		return
	}

	assessment, ok := req.assessment()
	if !ok {
		writeError(w, http.StatusBadRequest, msgMoodRequired)
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	result, err := h.recommender.Recommend(ctx, assessment)
	if err != nil {
		h.logFor(r).WithError(err).WithField("mood", assessment.Mood).Error("recommendation failed")
		writeError(w, http.StatusInternalServerError, msgRecommendFailed)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Home handles the home page (GET /).
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "home", HomePageData{
		PageData: PageData{Title: "Mood Mixer", CurrentPath: r.URL.Path},
	})
}

// Mix handles the form submission (POST /): classify, retrieve, render.
func (h *Handlers) Mix(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	text := r.PostFormValue("text")

	data := HomePageData{
		PageData: PageData{Title: "Mood Mixer", CurrentPath: r.URL.Path},
		Text:     text,
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	assessment, err := h.analyze(ctx, text)
	if err != nil {
		status := http.StatusInternalServerError
		data.Flash = &FlashMessage{Type: "error", Message: msgAnalyzeFailed}
		if errors.Is(err, mood.ErrInvalidInput) {
			status = http.StatusBadRequest
			data.Flash.Message = msgTextRequired
		} else {
			h.logFor(r).WithError(err).Error("mood analysis failed")
		}
		h.render(w, status, "home", data)
		return
	}

	result, err := h.recommender.Recommend(ctx, assessment)
	if err != nil {
		h.logFor(r).WithError(err).WithField("mood", assessment.Mood).Error("recommendation failed")
		data.Flash = &FlashMessage{Type: "error", Message: msgRecommendFailed}
		h.render(w, http.StatusInternalServerError, "home", data)
		return
	}

	h.render(w, http.StatusOK, "results", ResultsPageData{
		PageData: PageData{Title: "Your " + string(assessment.Mood) + " mix", CurrentPath: r.URL.Path},
		Text:     text,
		Result:   result,
	})
}

func (h *Handlers) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := h.templates.Render(&buf, page, data); err != nil {
		h.log.WithError(err).WithField("page", page).Error("failed to render template")
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
