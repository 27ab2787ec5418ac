// Package assets abstracts the optional remote asset store. The media
// service picks local or remote behavior purely through the Store interface;
// an unconfigured deployment gets the disabled implementation and runs
// local-only, which is the normal path, not an error.
package assets

import (
	"context"
	"errors"

	"bitstorm/internal/config"
	"bitstorm/internal/domain"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// ErrUnavailable is returned by the disabled store's operations.
var ErrUnavailable = errors.New("remote asset store not configured")

// File is an asset payload plus the metadata the remote store files it under.
type File struct {
	Name        string
	Content     []byte
	Category    domain.Category
	Description string
}

// Upload is the durable remote location of a stored asset.
type Upload struct {
	URL  string
	Path string
}

type Store interface {
	// Available reports whether uploads can be attempted at all.
	Available() bool
	// UploadFile stores the asset and returns its durable location.
	UploadFile(ctx context.Context, f File) (Upload, error)
	// PutMediaList mirrors the full media collection to the remote store.
	PutMediaList(ctx context.Context, items []domain.MediaItem) error
	// FetchMediaList returns the remotely mirrored collection, empty when
	// none exists.
	FetchMediaList(ctx context.Context) ([]domain.MediaItem, error)
}

// New selects the implementation from config.
func New(cfg *config.Config, logger zerolog.Logger) Store {
	if cfg.GitHubToken == "" {
		logger.Info().Msg("remote asset store disabled, media persists locally only")
		return disabled{}
	}
	return NewGitHubStore(cfg, logger)
}

type disabled struct{}

func (disabled) Available() bool { return false }

func (disabled) UploadFile(context.Context, File) (Upload, error) {
	return Upload{}, ErrUnavailable
}

func (disabled) PutMediaList(context.Context, []domain.MediaItem) error {
	return ErrUnavailable
}

func (disabled) FetchMediaList(context.Context) ([]domain.MediaItem, error) {
	return nil, ErrUnavailable
}

var Module = fx.Provide(New)
