package service

import (
	"context"
	"fmt"
	"time"

	"bitstorm/internal/assets"
	"bitstorm/internal/constants"
	"bitstorm/internal/domain"
	"bitstorm/internal/repository"

	"github.com/rs/zerolog"
)

// MediaService orchestrates media writes: remote delegation first when an
// asset payload is present and the remote store is configured, local
// persistence always. A failed delegation is logged and falls back to the
// item's original src; only a failed local write surfaces to the caller.
type MediaService struct {
	repo   *repository.MediaRepository
	assets assets.Store
	logger zerolog.Logger
}

func NewMediaService(repo *repository.MediaRepository, st assets.Store, logger zerolog.Logger) *MediaService {
	return &MediaService{repo: repo, assets: st, logger: logger}
}

// Add records a media item, delegating the asset to the remote store when
// possible. The returned item reflects the remote location on successful
// delegation.
func (s *MediaService) Add(ctx context.Context, item domain.MediaItem, file *assets.File) (domain.MediaItem, error) {
	remote := false
	if file != nil && s.assets.Available() {
		up, err := s.uploadWithRetry(ctx, *file)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", file.Name).Msg("remote upload failed, keeping local src")
		} else {
			item.Src = up.URL
			item.RemotePath = up.Path
			remote = true
		}
	}

	created, err := s.repo.Add(ctx, item)
	if err != nil {
		return domain.MediaItem{}, fmt.Errorf("record media item: %w", err)
	}

	if remote {
		// Best effort: the local record is already durable.
		if err := s.mirrorMediaList(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to mirror media list to remote store")
		}
	}
	return created, nil
}

func (s *MediaService) Update(ctx context.Context, id string, upd repository.MediaUpdate) (*domain.MediaItem, error) {
	return s.repo.Update(ctx, id, upd)
}

func (s *MediaService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}

// Sync pulls the remotely mirrored collection, replacing the local one when
// the remote has content. Used once at startup; failure leaves the local
// collection authoritative.
func (s *MediaService) Sync(ctx context.Context) error {
	if !s.assets.Available() {
		return nil
	}

	items, err := s.assets.FetchMediaList(ctx)
	if err != nil {
		return fmt.Errorf("fetch remote media list: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	if err := s.repo.ReplaceAll(ctx, items); err != nil {
		return err
	}
	s.logger.Info().Int("count", len(items)).Msg("media collection synced from remote store")
	return nil
}

// The source left the delegation timeout and retry policy open; uploads here
// get RemoteUploadTimeout per attempt and RemoteUploadAttempts tries total.
func (s *MediaService) uploadWithRetry(ctx context.Context, file assets.File) (assets.Upload, error) {
	var lastErr error
	for attempt := 1; attempt <= constants.RemoteUploadAttempts; attempt++ {
		upCtx, cancel := context.WithTimeout(ctx, constants.RemoteUploadTimeout)
		up, err := s.assets.UploadFile(upCtx, file)
		cancel()
		if err == nil {
			return up, nil
		}
		lastErr = err
		s.logger.Debug().Err(err).Int("attempt", attempt).Msg("remote upload attempt failed")
		if ctx.Err() != nil {
			break
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	return assets.Upload{}, lastErr
}

func (s *MediaService) mirrorMediaList(ctx context.Context) error {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return err
	}
	mirrorCtx, cancel := context.WithTimeout(ctx, constants.RemoteUploadTimeout)
	defer cancel()
	return s.assets.PutMediaList(mirrorCtx, items)
}
