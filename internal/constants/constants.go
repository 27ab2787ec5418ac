package constants

import "time"

// Store keys. One logical namespace per collection; the keys never overlap,
// so the two repositories cannot clobber each other's data.
const (
	StoreKeyMatches      = "bitstorm_matches"
	StoreKeyMedia        = "bitstorm_media"
	StoreKeyAdminAuth    = "bitstorm_admin_auth"
	StoreKeyVisitorCount = "bitstorm_visitor_count"
)

const (
	RemoteUploadTimeout  = 10 * time.Second
	RemoteUploadAttempts = 2
	DatabaseTimeout      = 5 * time.Second
	RequestTimeout       = 30 * time.Second
)

const (
	RecentMatchesLimit = 4
	RecentMediaLimit   = 10
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	SessionCookie = "bitstorm_session"
)
