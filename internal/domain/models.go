package domain

import (
	"time"
)

// DateLayout is the calendar-date format used by Match.Date.
const DateLayout = "2006-01-02"

type Result string

const (
	ResultWon  Result = "won"
	ResultLost Result = "lost"
	ResultTied Result = "tied"
)

func (r Result) Valid() bool {
	switch r {
	case ResultWon, ResultLost, ResultTied:
		return true
	}
	return false
}

type Match struct {
	ID            int64     `json:"id"`
	Date          string    `json:"date"` // ISO calendar date, see DateLayout
	Opponent      string    `json:"opponent"`
	Venue         string    `json:"venue"`
	Result        Result    `json:"result"`
	OurScore      string    `json:"ourScore"`
	OpponentScore string    `json:"opponentScore"`
	KeyEvents     []string  `json:"keyEvents"`
	ManOfTheMatch string    `json:"manOfTheMatch"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Day parses the match date. Unparseable dates yield the zero time, which
// sorts last in date-descending views.
func (m Match) Day() time.Time {
	t, err := time.Parse(DateLayout, m.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

type MatchStats struct {
	Total         int `json:"total"`
	Won           int `json:"won"`
	Lost          int `json:"lost"`
	Tied          int `json:"tied"`
	WinPercentage int `json:"winPercentage"`
}

type Category string

const (
	CategoryTeam    Category = "team"
	CategoryGallery Category = "gallery"
	CategoryMatches Category = "matches"
	CategoryEvents  Category = "events"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryTeam, CategoryGallery, CategoryMatches, CategoryEvents:
		return true
	}
	return false
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

func (t MediaType) Valid() bool {
	return t == MediaImage || t == MediaVideo
}

type MediaItem struct {
	ID         string    `json:"id"`
	Src        string    `json:"src"`
	Alt        string    `json:"alt"`
	Caption    string    `json:"caption"`
	Category   Category  `json:"category"`
	Type       MediaType `json:"type"`
	UploadedAt time.Time `json:"uploadedAt"`
	// RemotePath is set only when the asset lives in the remote store.
	RemotePath string `json:"remotePath,omitempty"`
}

type AdminUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
