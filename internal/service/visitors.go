package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"bitstorm/internal/constants"
	"bitstorm/internal/store"

	"github.com/rs/zerolog"
)

// VisitorService counts distinct browsing sessions. The running total is
// durable; the set of already-counted sessions is process-local and resets on
// restart, matching the session-scoped marker it replaces.
type VisitorService struct {
	store  *store.Store
	logger zerolog.Logger

	mu      sync.Mutex
	counted map[string]struct{}
}

func NewVisitorService(st *store.Store, logger zerolog.Logger) *VisitorService {
	return &VisitorService{store: st, logger: logger, counted: make(map[string]struct{})}
}

// Count registers a visit for sessionID and returns the running total plus
// whether this session was newly counted.
func (s *VisitorService) Count(ctx context.Context, sessionID string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total, err := s.total(ctx)
	if err != nil {
		return 0, false, err
	}

	if _, seen := s.counted[sessionID]; seen {
		return total, false, nil
	}

	total++
	if err := s.store.Set(ctx, constants.StoreKeyVisitorCount, strconv.FormatInt(total, 10)); err != nil {
		return 0, false, err
	}
	s.counted[sessionID] = struct{}{}

	s.logger.Debug().Int64("total", total).Msg("new visitor counted")
	return total, true, nil
}

func (s *VisitorService) total(ctx context.Context) (int64, error) {
	raw, found, err := s.store.Get(ctx, constants.StoreKeyVisitorCount)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	total, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Corrupt counter restarts at zero.
		s.logger.Warn().Str("value", raw).Msg("stored visitor count is unreadable, resetting")
		return 0, nil
	}
	return total, nil
}

// FormatCount renders a total for display: 1532 -> "1.5K", 2100000 -> "2.1M".
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return strconv.FormatInt(n, 10)
}
