package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bitstorm/internal/constants"
	"bitstorm/internal/domain"
	"bitstorm/internal/events"
	"bitstorm/internal/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// MediaRepository owns the media collection. A collection that is absent or
// unreadable recovers to the fixed seed set, which is persisted before being
// returned. Every mutation broadcasts TopicMediaUpdated so concurrently open
// views re-fetch.
type MediaRepository struct {
	store  *store.Store
	bus    *events.Bus
	logger zerolog.Logger
	mu     sync.Mutex
}

func NewMediaRepository(st *store.Store, bus *events.Bus, logger zerolog.Logger) *MediaRepository {
	return &MediaRepository{store: st, bus: bus, logger: logger}
}

// MediaUpdate carries a partial update; nil fields keep their current value.
type MediaUpdate struct {
	Src        *string           `json:"src"`
	Alt        *string           `json:"alt"`
	Caption    *string           `json:"caption"`
	Category   *domain.Category  `json:"category"`
	Type       *domain.MediaType `json:"type"`
	RemotePath *string           `json:"remotePath"`
}

// seedMedia is the deployment's default gallery, used whenever no stored
// collection exists.
func seedMedia() []domain.MediaItem {
	now := time.Now().UTC()
	return []domain.MediaItem{
		{
			ID:         "5",
			Src:        "/images/gallery/WhatsApp Image 2025-10-01 at 01.31.34.jpeg",
			Alt:        "BITStorm team celebration",
			Caption:    "Team Victory Celebration",
			Category:   domain.CategoryGallery,
			Type:       domain.MediaImage,
			UploadedAt: now,
		},
		{
			ID:         "6",
			Src:        "/images/gallery/WhatsApp Image 2025-10-01 at 01.31.35.jpeg",
			Alt:        "BITStorm group photo",
			Caption:    "Team Group Photo",
			Category:   domain.CategoryGallery,
			Type:       domain.MediaImage,
			UploadedAt: now,
		},
		{
			ID:         "7",
			Src:        "/images/gallery/WhatsApp Image 2025-10-01 at 01.31.36.jpeg",
			Alt:        "BITStorm celebration moment",
			Caption:    "Celebration Moment",
			Category:   domain.CategoryGallery,
			Type:       domain.MediaImage,
			UploadedAt: now,
		},
		{
			ID:         "8",
			Src:        "/images/gallery/WhatsApp Image 2025-10-01 at 01.31.37.jpeg",
			Alt:        "BITStorm match celebration",
			Caption:    "Match Victory Celebration",
			Category:   domain.CategoryMatches,
			Type:       domain.MediaImage,
			UploadedAt: now,
		},
		{
			ID:         "9",
			Src:        "/images/gallery/WhatsApp Image 2025-10-01 at 01.31.37 (1).jpeg",
			Alt:        "BITStorm man of the match",
			Caption:    "Man of the Match Award",
			Category:   domain.CategoryEvents,
			Type:       domain.MediaImage,
			UploadedAt: now,
		},
	}
}

// load returns the stored collection, seeding the defaults when nothing
// usable is stored.
func (r *MediaRepository) load(ctx context.Context) ([]domain.MediaItem, error) {
	raw, found, err := r.store.Get(ctx, constants.StoreKeyMedia)
	if err != nil {
		return nil, err
	}
	if found {
		var items []domain.MediaItem
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items, nil
		}
		r.logger.Warn().Msg("stored media collection is unreadable, reseeding defaults")
	}

	items := seedMedia()
	if err := r.save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MediaRepository) save(ctx context.Context, items []domain.MediaItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal media: %w", err)
	}
	if err := r.store.Set(ctx, constants.StoreKeyMedia, string(raw)); err != nil {
		return err
	}
	r.bus.Publish(events.TopicMediaUpdated)
	return nil
}

func (r *MediaRepository) GetAll(ctx context.Context) ([]domain.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *MediaRepository) GetByCategory(ctx context.Context, category domain.Category) ([]domain.MediaItem, error) {
	items, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MediaItem, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *MediaRepository) GetByType(ctx context.Context, mediaType domain.MediaType) ([]domain.MediaItem, error) {
	items, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MediaItem, 0, len(items))
	for _, it := range items {
		if it.Type == mediaType {
			out = append(out, it)
		}
	}
	return out, nil
}

// Add assigns a collision-resistant id, stamps UploadedAt, and persists.
// Src and RemotePath are recorded as given; remote delegation is the media
// service's concern.
func (r *MediaRepository) Add(ctx context.Context, item domain.MediaItem) (domain.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := gonanoid.New()
	if err != nil {
		return domain.MediaItem{}, fmt.Errorf("generate media id: %w", err)
	}
	item.ID = id
	item.UploadedAt = time.Now().UTC()

	items, err := r.load(ctx)
	if err != nil {
		return domain.MediaItem{}, err
	}
	items = append(items, item)
	if err := r.save(ctx, items); err != nil {
		return domain.MediaItem{}, err
	}

	r.logger.Info().Str("media_id", item.ID).Str("category", string(item.Category)).Msg("media item added")
	return item, nil
}

// Update merges the given fields into the item with id. A nil item with nil
// error means the id is unknown.
func (r *MediaRepository) Update(ctx context.Context, id string, upd MediaUpdate) (*domain.MediaItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, it := range items {
		if it.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil
	}

	it := items[idx]
	if upd.Src != nil {
		it.Src = *upd.Src
	}
	if upd.Alt != nil {
		it.Alt = *upd.Alt
	}
	if upd.Caption != nil {
		it.Caption = *upd.Caption
	}
	if upd.Category != nil {
		it.Category = *upd.Category
	}
	if upd.Type != nil {
		it.Type = *upd.Type
	}
	if upd.RemotePath != nil {
		it.RemotePath = *upd.RemotePath
	}
	items[idx] = it

	if err := r.save(ctx, items); err != nil {
		return nil, err
	}
	return &it, nil
}

// Delete removes the item with id and reports whether it existed.
func (r *MediaRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	kept := items[:0:0]
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return false, nil
	}

	if err := r.save(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceAll swaps in a full collection, e.g. one synced from the remote
// asset store.
func (r *MediaRepository) ReplaceAll(ctx context.Context, items []domain.MediaItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, items)
}

// Search returns items whose caption or alt text contains query,
// case-insensitively. An empty result is a valid outcome.
func (r *MediaRepository) Search(ctx context.Context, query string) ([]domain.MediaItem, error) {
	items, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	out := make([]domain.MediaItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Caption), q) || strings.Contains(strings.ToLower(it.Alt), q) {
			out = append(out, it)
		}
	}
	return out, nil
}

// GetRecent returns the limit most recently uploaded items.
func (r *MediaRepository) GetRecent(ctx context.Context, limit int) ([]domain.MediaItem, error) {
	if limit <= 0 {
		limit = constants.RecentMediaLimit
	}
	items, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UploadedAt.After(items[j].UploadedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
