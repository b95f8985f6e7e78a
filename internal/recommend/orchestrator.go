// Package recommend retrieves catalog tracks matching a mood through a
// sequence of fallback searches.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/justestif/go-spotify-mood-mixer/internal/auth"
	"github.com/justestif/go-spotify-mood-mixer/internal/mood"
	"github.com/justestif/go-spotify-mood-mixer/internal/spotify"
)

// MaxTracks is the most tracks a result ever holds.
const MaxTracks = 20

const (
	keywordSearchLimit = 50
	playlistTrackLimit = 20
	genreSearchLimit   = 20
)

// Catalog is the subset of the music catalog the orchestrator needs.
type Catalog interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]mood.Track, error)
	FirstPlaylist(ctx context.Context, query string) (id string, ok bool, err error)
	PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]mood.Track, error)
	SearchGenre(ctx context.Context, genre string, limit int) ([]mood.Track, error)
}

// Credentials supplies the catalog bearer token.
type Credentials interface {
	TokenContext(ctx context.Context) (*oauth2.Token, error)
	// Invalidate drops the current token so the next call fetches a new one.
	Invalidate()
}

// Stage names the fallback step that produced a result.
type Stage string

// Retrieval stages in the order they are attempted.
const (
	StageNone     Stage = ""
	StageKeyword  Stage = "keyword"
	StagePlaylist Stage = "playlist"
	StageGenre    Stage = "genre"
)

// Source tells the presentation layer whether any tracks were found.
type Source string

// Result sources.
const (
	SourceSuccess  Source = "success"
	SourceNoTracks Source = "no_tracks_found"
)

// PlaylistResult is the outcome of one recommendation request.
type PlaylistResult struct {
	ID        uuid.UUID       `json:"id"`
	Tracks    []mood.Track    `json:"tracks"`
	Mood      mood.Assessment `json:"mood"`
	Timestamp time.Time       `json:"timestamp"`
	Source    Source          `json:"source"`
	Stage     Stage           `json:"stage,omitempty"`
}

// Orchestrator runs the keyword, playlist and genre searches in turn.
type Orchestrator struct {
	catalog Catalog
	creds   Credentials
	log     logrus.FieldLogger
	now     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// New creates an orchestrator.
func New(catalog Catalog, creds Credentials, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		catalog: catalog,
		creds:   creds,
		log:     logrus.StandardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type stage struct {
	name Stage
	run  func(ctx context.Context) ([]mood.Track, error)
}

// Retrieve returns up to MaxTracks tracks for a mood and the stage that found
// them. A stage that fails or finds nothing hands over to the next one. If the
// catalog rejects the token, it is renewed once and the stage retried; a second
// rejection or a failed renewal is returned as ErrAuthentication.
func (o *Orchestrator) Retrieve(ctx context.Context, profile mood.AudioProfile, tag mood.Tag) ([]mood.Track, Stage, error) {
	if _, err := o.creds.TokenContext(ctx); err != nil {
		return nil, StageNone, authError(err)
	}

	p := PhrasesFor(tag)
	log := o.log.WithField("mood", tag)

	stages := []stage{
		{StageKeyword, func(ctx context.Context) ([]mood.Track, error) {
			return o.catalog.SearchTracks(ctx, p.Keyword, keywordSearchLimit)
		}},
		{StagePlaylist, func(ctx context.Context) ([]mood.Track, error) {
			return o.playlistStage(ctx, p.Playlist)
		}},
		{StageGenre, func(ctx context.Context) ([]mood.Track, error) {
			genre := profile.PrimaryGenre()
			if genre == "" {
				return nil, nil
			}
			return o.catalog.SearchGenre(ctx, genre, genreSearchLimit)
		}},
	}

	renewed := false
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, StageNone, err
		}

		tracks, err := s.run(ctx)
		if errors.Is(err, spotify.ErrUnauthorized) && !renewed {
			renewed = true
			log.WithField("stage", s.name).Warn("catalog rejected token, renewing")
			o.creds.Invalidate()
			if _, err := o.creds.TokenContext(ctx); err != nil {
				return nil, StageNone, authError(err)
			}
			tracks, err = s.run(ctx)
		}
		if isAuthFailure(err) {
			log.WithField("stage", s.name).WithError(err).Error("catalog authentication failed")
			return nil, StageNone, authError(err)
		}
		if err != nil {
			log.WithField("stage", s.name).WithError(err).Warn("retrieval stage failed, trying next")
			continue
		}
		if len(tracks) == 0 {
			log.WithField("stage", s.name).Debug("retrieval stage found no tracks")
			continue
		}

		log.WithFields(logrus.Fields{"stage": s.name, "tracks": len(tracks)}).Info("retrieved tracks")
		return truncate(tracks), s.name, nil
	}

	log.Info("no tracks found in any stage")
	return []mood.Track{}, StageNone, nil
}

func isAuthFailure(err error) bool {
	return errors.Is(err, spotify.ErrUnauthorized) || errors.Is(err, auth.ErrAuthentication)
}

// authError makes sure err matches auth.ErrAuthentication.
func authError(err error) error {
	if errors.Is(err, auth.ErrAuthentication) {
		return err
	}
	return fmt.Errorf("%w: %w", auth.ErrAuthentication, err)
}

func (o *Orchestrator) playlistStage(ctx context.Context, query string) ([]mood.Track, error) {
	id, ok, err := o.catalog.FirstPlaylist(ctx, query)
	if err != nil || !ok {
		return nil, err
	}
	return o.catalog.PlaylistTracks(ctx, id, playlistTrackLimit)
}

// Recommend maps an assessment to its audio profile, retrieves tracks and
// packages the result.
func (o *Orchestrator) Recommend(ctx context.Context, assessment mood.Assessment) (*PlaylistResult, error) {
	profile := mood.ToAudioProfile(assessment.Mood)

	tracks, stage, err := o.Retrieve(ctx, profile, assessment.Mood)
	if err != nil {
		return nil, err
	}

	source := SourceSuccess
	if len(tracks) == 0 {
		source = SourceNoTracks
	}

	return &PlaylistResult{
		ID:        uuid.New(),
		Tracks:    tracks,
		Mood:      assessment,
		Timestamp: o.now().UTC(),
		Source:    source,
		Stage:     stage,
	}, nil
}

func truncate(tracks []mood.Track) []mood.Track {
	if len(tracks) > MaxTracks {
		return tracks[:MaxTracks]
	}
	return tracks
}
