package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"bitstorm/internal/constants"
	"bitstorm/internal/domain"
	"bitstorm/internal/store"

	"github.com/rs/zerolog"
)

// MatchRepository owns the match collection. Every mutation re-serializes the
// whole collection to the store; every read re-fetches it, so reads observe
// all prior writes from this process.
type MatchRepository struct {
	store  *store.Store
	logger zerolog.Logger
	mu     sync.Mutex
}

func NewMatchRepository(st *store.Store, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{store: st, logger: logger}
}

// MatchForm is a candidate match. Field validation (non-blank text, trimmed
// key events) is the submitting form's job; the repository accepts the record
// as given.
type MatchForm struct {
	Date          string        `json:"date"`
	Opponent      string        `json:"opponent"`
	Venue         string        `json:"venue"`
	Result        domain.Result `json:"result"`
	OurScore      string        `json:"ourScore"`
	OpponentScore string        `json:"opponentScore"`
	KeyEvents     []string      `json:"keyEvents"`
	ManOfTheMatch string        `json:"manOfTheMatch"`
}

// MatchUpdate carries a partial update; nil fields keep their current value.
type MatchUpdate struct {
	Date          *string        `json:"date"`
	Opponent      *string        `json:"opponent"`
	Venue         *string        `json:"venue"`
	Result        *domain.Result `json:"result"`
	OurScore      *string        `json:"ourScore"`
	OpponentScore *string        `json:"opponentScore"`
	KeyEvents     []string       `json:"keyEvents"`
	ManOfTheMatch *string        `json:"manOfTheMatch"`
}

// matchCollection is the persisted shape under StoreKeyMatches.
type matchCollection struct {
	Matches []domain.Match `json:"matches"`
}

func (r *MatchRepository) load(ctx context.Context) ([]domain.Match, error) {
	raw, found, err := r.store.Get(ctx, constants.StoreKeyMatches)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var col matchCollection
	if err := json.Unmarshal([]byte(raw), &col); err != nil {
		// Corrupt data reads as an empty collection.
		r.logger.Warn().Err(err).Msg("stored match collection is unreadable, starting empty")
		return nil, nil
	}
	return col.Matches, nil
}

func (r *MatchRepository) save(ctx context.Context, matches []domain.Match) error {
	raw, err := json.Marshal(matchCollection{Matches: matches})
	if err != nil {
		return fmt.Errorf("marshal matches: %w", err)
	}
	return r.store.Set(ctx, constants.StoreKeyMatches, string(raw))
}

// GetAll returns every match, most recent date first. Ties in date keep
// their stored order.
func (r *MatchRepository) GetAll(ctx context.Context) ([]domain.Match, error) {
	matches, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Day().After(matches[j].Day())
	})
	return matches, nil
}

// GetRecent returns the first limit matches of GetAll.
func (r *MatchRepository) GetRecent(ctx context.Context, limit int) ([]domain.Match, error) {
	if limit <= 0 {
		limit = constants.RecentMatchesLimit
	}
	matches, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *MatchRepository) GetByYear(ctx context.Context, year int) ([]domain.Match, error) {
	matches, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Match, 0, len(matches))
	for _, m := range matches {
		if m.Day().Year() == year {
			out = append(out, m)
		}
	}
	return out, nil
}

// GetByMonth filters by year and 1-based month.
func (r *MatchRepository) GetByMonth(ctx context.Context, year, month int) ([]domain.Match, error) {
	matches, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Match, 0, len(matches))
	for _, m := range matches {
		d := m.Day()
		if d.Year() == year && int(d.Month()) == month {
			out = append(out, m)
		}
	}
	return out, nil
}

// Add assigns the next id (max existing + 1, starting at 1), stamps
// CreatedAt, and persists the collection with the new match at the front.
func (r *MatchRepository) Add(ctx context.Context, form MatchForm) (domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches, err := r.load(ctx)
	if err != nil {
		return domain.Match{}, err
	}

	var maxID int64
	for _, m := range matches {
		if m.ID > maxID {
			maxID = m.ID
		}
	}

	match := domain.Match{
		ID:            maxID + 1,
		Date:          form.Date,
		Opponent:      form.Opponent,
		Venue:         form.Venue,
		Result:        form.Result,
		OurScore:      form.OurScore,
		OpponentScore: form.OpponentScore,
		KeyEvents:     form.KeyEvents,
		ManOfTheMatch: form.ManOfTheMatch,
		CreatedAt:     time.Now().UTC(),
	}

	matches = append([]domain.Match{match}, matches...)
	if err := r.save(ctx, matches); err != nil {
		return domain.Match{}, err
	}

	r.logger.Info().Int64("match_id", match.ID).Str("opponent", match.Opponent).Msg("match added")
	return match, nil
}

// Update merges the given fields into the match with id and persists. A nil
// match with nil error means the id is unknown.
func (r *MatchRepository) Update(ctx context.Context, id int64, upd MatchUpdate) (*domain.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, m := range matches {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, nil
	}

	m := matches[idx]
	if upd.Date != nil {
		m.Date = *upd.Date
	}
	if upd.Opponent != nil {
		m.Opponent = *upd.Opponent
	}
	if upd.Venue != nil {
		m.Venue = *upd.Venue
	}
	if upd.Result != nil {
		m.Result = *upd.Result
	}
	if upd.OurScore != nil {
		m.OurScore = *upd.OurScore
	}
	if upd.OpponentScore != nil {
		m.OpponentScore = *upd.OpponentScore
	}
	if upd.KeyEvents != nil {
		m.KeyEvents = upd.KeyEvents
	}
	if upd.ManOfTheMatch != nil {
		m.ManOfTheMatch = *upd.ManOfTheMatch
	}
	matches[idx] = m

	if err := r.save(ctx, matches); err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes the match with id and reports whether it existed.
func (r *MatchRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches, err := r.load(ctx)
	if err != nil {
		return false, err
	}

	kept := matches[:0:0]
	found := false
	for _, m := range matches {
		if m.ID == id {
			found = true
			continue
		}
		kept = append(kept, m)
	}
	if !found {
		return false, nil
	}

	if err := r.save(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// Stats derives the win/loss record. WinPercentage is rounded to the nearest
// whole percent and 0 for an empty collection.
func (r *MatchRepository) Stats(ctx context.Context) (domain.MatchStats, error) {
	matches, err := r.load(ctx)
	if err != nil {
		return domain.MatchStats{}, err
	}

	stats := domain.MatchStats{Total: len(matches)}
	for _, m := range matches {
		switch m.Result {
		case domain.ResultWon:
			stats.Won++
		case domain.ResultLost:
			stats.Lost++
		case domain.ResultTied:
			stats.Tied++
		}
	}
	if stats.Total > 0 {
		stats.WinPercentage = int(float64(stats.Won)/float64(stats.Total)*100 + 0.5)
	}
	return stats, nil
}

// AvailableYears returns the distinct years present, newest first.
func (r *MatchRepository) AvailableYears(ctx context.Context) ([]int, error) {
	matches, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	var years []int
	for _, m := range matches {
		y := m.Day().Year()
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// AvailableMonths returns the distinct 1-based months present for year,
// descending.
func (r *MatchRepository) AvailableMonths(ctx context.Context, year int) ([]int, error) {
	matches, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	var months []int
	for _, m := range matches {
		d := m.Day()
		if d.Year() != year {
			continue
		}
		mo := int(d.Month())
		if _, ok := seen[mo]; !ok {
			seen[mo] = struct{}{}
			months = append(months, mo)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(months)))
	return months, nil
}
