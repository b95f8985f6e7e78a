package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-mood-mixer/internal/auth"
	"github.com/justestif/go-spotify-mood-mixer/internal/mood"
	"github.com/justestif/go-spotify-mood-mixer/internal/recommend"
	"github.com/justestif/go-spotify-mood-mixer/internal/sentiment"
	assets "github.com/justestif/go-spotify-mood-mixer/web"
)

type fakeSentiment struct {
	signal mood.SentimentSignal
	err    error
	calls  int
}

func (f *fakeSentiment) Classify(_ context.Context, _ string) (mood.SentimentSignal, error) {
	f.calls++
	return f.signal, f.err
}

type fakeRecommender struct {
	tracks []mood.Track
	err    error
	got    *mood.Assessment
}

func (f *fakeRecommender) Recommend(_ context.Context, a mood.Assessment) (*recommend.PlaylistResult, error) {
	f.got = &a
	if f.err != nil {
		return nil, f.err
	}
	tracks := f.tracks
	source := recommend.SourceSuccess
	if len(tracks) == 0 {
		tracks = []mood.Track{}
		source = recommend.SourceNoTracks
	}
	return &recommend.PlaylistResult{
		ID:        uuid.New(),
		Tracks:    tracks,
		Mood:      a,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Source:    source,
	}, nil
}

func newTestServer(t *testing.T, s *fakeSentiment, r *fakeRecommender) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	srv, err := NewServer(ServerConfig{
		Sentiment:   s,
		Recommender: r,
		Logger:      log,
		TemplatesFS: assets.Templates(),
		StaticFS:    assets.Static(),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv.Handler()
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body: %v (%s)", err, rec.Body.String())
	}
	return body.Error
}

func TestAnalyzeMood(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		signal     mood.SentimentSignal
		err        error
		wantStatus int
		wantMood   mood.Tag
		wantError  string
		wantCalls  int
	}{
		{
			name:       "keyword rule wins",
			body:       `{"text":"I am so excited for tonight"}`,
			signal:     mood.SentimentSignal{Label: "NEGATIVE", Score: 0.7},
			wantStatus: http.StatusOK,
			wantMood:   mood.Energetic,
			wantCalls:  1,
		},
		{
			name:       "sentiment label",
			body:       `{"text":"today went fine"}`,
			signal:     mood.SentimentSignal{Label: "POSITIVE", Score: 0.9},
			wantStatus: http.StatusOK,
			wantMood:   mood.Happy,
			wantCalls:  1,
		},
		{
			name:       "blank text",
			body:       `{"text":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgTextRequired,
		},
		{
			name:       "missing text",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgTextRequired,
		},
		{
			name:       "malformed body",
			body:       `{"text":`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgTextRequired,
		},
		{
			name:       "upstream failure",
			body:       `{"text":"hello"}`,
			err:        sentiment.ErrUpstreamUnavailable,
			wantStatus: http.StatusInternalServerError,
			wantError:  msgAnalyzeFailed,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSentiment{signal: tt.signal, err: tt.err}
			h := newTestServer(t, fs, &fakeRecommender{})

			rec := postJSON(t, h, "/analyze-mood", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if fs.calls != tt.wantCalls {
				t.Errorf("sentiment calls = %d, want %d", fs.calls, tt.wantCalls)
			}
			if tt.wantError != "" {
				if got := decodeError(t, rec); got != tt.wantError {
					t.Errorf("error = %q, want %q", got, tt.wantError)
				}
				return
			}

			var got mood.Assessment
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decoding assessment: %v", err)
			}
			if got.Mood != tt.wantMood {
				t.Errorf("mood = %q, want %q", got.Mood, tt.wantMood)
			}
			if got.Confidence != tt.signal.Score {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.signal.Score)
			}
		})
	}
}

func TestAnalyzeMoodHidesInternalErrors(t *testing.T) {
	fs := &fakeSentiment{err: errors.New("dial tcp 10.0.0.1:443: connection refused")}
	h := newTestServer(t, fs, &fakeRecommender{})

	rec := postJSON(t, h, "/analyze-mood", `{"text":"hello"}`)

	if strings.Contains(rec.Body.String(), "10.0.0.1") {
		t.Errorf("response leaks internal detail: %s", rec.Body.String())
	}
}

func TestRecommendTracks(t *testing.T) {
	tracks := []mood.Track{
		{ID: "t1", Title: "One", Artists: []string{"A"}, AlbumName: "X", ExternalURL: "https://open.spotify.com/track/t1"},
	}

	tests := []struct {
		name       string
		body       string
		recErr     error
		tracks     []mood.Track
		wantStatus int
		wantSource recommend.Source
		wantMood   mood.Tag
		wantError  string
	}{
		{
			name:       "mood key",
			body:       `{"mood":{"mood":"happy","confidence":0.9,"energy":0.8,"valence":0.9,"description":"d"}}`,
			tracks:     tracks,
			wantStatus: http.StatusOK,
			wantSource: recommend.SourceSuccess,
			wantMood:   mood.Happy,
		},
		{
			name:       "moodAnalysis key",
			body:       `{"moodAnalysis":{"mood":"Sad","confidence":0.4}}`,
			tracks:     tracks,
			wantStatus: http.StatusOK,
			wantSource: recommend.SourceSuccess,
			wantMood:   mood.Sad,
		},
		{
			name:       "no tracks",
			body:       `{"mood":{"mood":"chill"}}`,
			wantStatus: http.StatusOK,
			wantSource: recommend.SourceNoTracks,
			wantMood:   mood.Chill,
		},
		{
			name:       "missing mood",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgMoodRequired,
		},
		{
			name:       "empty tag",
			body:       `{"mood":{"mood":""}}`,
			wantStatus: http.StatusBadRequest,
			wantError:  msgMoodRequired,
		},
		{
			name:       "auth failure",
			body:       `{"mood":{"mood":"happy"}}`,
			recErr:     auth.ErrAuthentication,
			wantStatus: http.StatusInternalServerError,
			wantError:  msgRecommendFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := &fakeRecommender{tracks: tt.tracks, err: tt.recErr}
			h := newTestServer(t, &fakeSentiment{}, fr)

			rec := postJSON(t, h, "/recommend-tracks", tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantError != "" {
				if got := decodeError(t, rec); got != tt.wantError {
					t.Errorf("error = %q, want %q", got, tt.wantError)
				}
				return
			}

			var got recommend.PlaylistResult
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decoding result: %v", err)
			}
			if got.Source != tt.wantSource {
				t.Errorf("source = %q, want %q", got.Source, tt.wantSource)
			}
			if got.Mood.Mood != tt.wantMood {
				t.Errorf("mood = %q, want %q", got.Mood.Mood, tt.wantMood)
			}
			if got.Tracks == nil {
				t.Error("tracks should be an array, not null")
			}
			if got.Timestamp.IsZero() {
				t.Error("timestamp missing")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &fakeSentiment{}, &fakeRecommender{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q, want 200 ok", rec.Code, rec.Body.String())
	}
}

func TestHomePage(t *testing.T) {
	h := newTestServer(t, &fakeSentiment{}, &fakeRecommender{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<form method="post" action="/"`) {
		t.Error("home page missing mood form")
	}
	if len(QuickMoods) != 6 {
		t.Errorf("len(QuickMoods) = %d, want 6", len(QuickMoods))
	}
	for _, q := range QuickMoods {
		want := `name="text" value="` + template.HTMLEscapeString(q) + `"`
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("home page missing quick mood button %q", q)
		}
	}
}

func TestQuickMoodsClassify(t *testing.T) {
	tests := []struct {
		text string
		want mood.Tag
	}{
		{QuickMoods[1], mood.Stressed},
		{QuickMoods[2], mood.Romantic},
		{QuickMoods[4], mood.Workout},
		{QuickMoods[5], mood.Tired},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			fr := &fakeRecommender{}
			h := newTestServer(t, &fakeSentiment{signal: mood.SentimentSignal{Label: "NEUTRAL", Score: 0.5}}, fr)

			if rec := postForm(h, tt.text); rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if fr.got == nil || fr.got.Mood != tt.want {
				t.Errorf("recommended for %v, want %q", fr.got, tt.want)
			}
		})
	}
}

func postForm(h http.Handler, text string) *httptest.ResponseRecorder {
	form := url.Values{"text": {text}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMixPage(t *testing.T) {
	tracks := []mood.Track{
		{ID: "t1", Title: "Sunny Song", Artists: []string{"Ann", "Bo"}, AlbumName: "Album", ExternalURL: "https://open.spotify.com/track/t1", PreviewURL: "https://p.scdn.co/t1.mp3"},
	}
	fs := &fakeSentiment{signal: mood.SentimentSignal{Label: "POSITIVE", Score: 0.93}}
	h := newTestServer(t, fs, &fakeRecommender{tracks: tracks})

	rec := postForm(h, "great day")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Sunny Song", "Ann, Bo", "93%", "Upbeat Party", "hsl(", "<audio"} {
		if !strings.Contains(body, want) {
			t.Errorf("results page missing %q", want)
		}
	}
	if strings.Contains(body, "ZgotmplZ") {
		t.Error("results page contains an escaped template value")
	}
}

func TestMixPageStates(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		sentErr    error
		recErr     error
		wantStatus int
		wantText   string
	}{
		{"no tracks", "meh", nil, nil, http.StatusOK, "No tracks found"},
		{"blank text", " ", nil, nil, http.StatusBadRequest, msgTextRequired},
		{"sentiment down", "hello", sentiment.ErrUpstreamUnavailable, nil, http.StatusInternalServerError, msgAnalyzeFailed},
		{"catalog auth", "hello", nil, auth.ErrAuthentication, http.StatusInternalServerError, msgRecommendFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeSentiment{signal: mood.SentimentSignal{Label: "NEUTRAL", Score: 0.5}, err: tt.sentErr}
			h := newTestServer(t, fs, &fakeRecommender{err: tt.recErr})

			rec := postForm(h, tt.text)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantText) {
				t.Errorf("page missing %q", tt.wantText)
			}
		})
	}
}

func TestStaticAssets(t *testing.T) {
	h := newTestServer(t, &fakeSentiment{}, &fakeRecommender{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("static status = %d, want 200", rec.Code)
	}
}

func TestNewServerRequiresCollaborators(t *testing.T) {
	if _, err := NewServer(ServerConfig{TemplatesFS: assets.Templates()}); err == nil {
		t.Error("NewServer() without collaborators should fail")
	}
}

type blockingSentiment struct{}

func (blockingSentiment) Classify(ctx context.Context, _ string) (mood.SentimentSignal, error) {
	<-ctx.Done()
	return mood.SentimentSignal{}, ctx.Err()
}

func TestRequestDeadline(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	srv, err := NewServer(ServerConfig{
		RequestTimeout: 50 * time.Millisecond,
		Sentiment:      blockingSentiment{},
		Recommender:    &fakeRecommender{},
		Logger:         log,
		TemplatesFS:    assets.Templates(),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	if got, want := srv.WriteTimeout(), 50*time.Millisecond+writeMargin; got != want {
		t.Errorf("WriteTimeout() = %v, want %v", got, want)
	}

	start := time.Now()
	rec := postJSON(t, srv.Handler(), "/analyze-mood", `{"text":"hello"}`)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("request took %v, want it cut off near the deadline", elapsed)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeError(t, rec); got != msgAnalyzeFailed {
		t.Errorf("error = %q, want %q", got, msgAnalyzeFailed)
	}
}

func TestDefaultWriteTimeoutExceedsRequestTimeout(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	srv, err := NewServer(ServerConfig{
		Sentiment:   &fakeSentiment{},
		Recommender: &fakeRecommender{},
		Logger:      log,
		TemplatesFS: assets.Templates(),
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if srv.WriteTimeout() <= DefaultRequestTimeout {
		t.Errorf("WriteTimeout() = %v, want more than %v", srv.WriteTimeout(), DefaultRequestTimeout)
	}
}
