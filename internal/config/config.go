package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Lich/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Lich"
	AppID             = "com.github.tartampluch.go-lich"
	KeyringService    = "com.github.tartampluch.go-lich"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SettingsFileName  = "settings.yaml"
	EnvFileName       = ".env"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagDebug   = "debug"
	FlagConfig  = "config"
	FlagDate    = "date"
	FlagBirth   = "birth"
	FlagPurpose = "purpose"
	FlagJSON    = "json"
	FlagYear    = "year"
	FlagMonth   = "month"
	FlagPort    = "port"
	FlagUser    = "user"

	FlagDescDebug   = "Enable debug logging"
	FlagDescConfig  = "Path to the settings file (YAML)"
	FlagDescDate    = "Target date (YYYY-MM-DD), defaults to today in UTC+7"
	FlagDescBirth   = "Birth year of the querent"
	FlagDescPurpose = "Purpose of the undertaking"
	FlagDescJSON    = "Print the result as JSON"
	FlagDescYear    = "Gregorian year of the month grid"
	FlagDescMonth   = "Gregorian month of the month grid (1-12)"
	FlagDescPort    = "Override the HTTP port from settings"
	FlagDescUser    = "CardDAV user name, defaults to web_user from settings"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Calendar Domain
// -----------------------------------------------------------------------------

const (
	// TimezoneOffsetSeconds is the fixed UTC+7 offset used to decide "today".
	TimezoneOffsetSeconds = 7 * 60 * 60
	TimezoneName          = "UTC+7"

	// SynodicMonthDays is the mean length of a lunation.
	SynodicMonthDays = 29.530588

	// Lunar reference epoch: 2000-01-01 is the 25th day of a lunar month.
	EpochDay      = 1
	EpochMonth    = 1
	EpochYear     = 2000
	EpochLunarDay = 25

	MaxLunarDay = 30

	DateLayout = "2006-01-02"

	// Grid layout for the month view (Monday first).
	DaysPerWeek = 7
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	DefaultLanguage = "vi"

	TKeyEvtSummary     = "event_summary"     // Requires DayLabel, Category, Score
	TKeyEvtDescription = "event_description" // Requires LunarDay, LunarMonth, LunarYear, YearLabel, Hours, Advice
	TKeyAdvice         = "advice"            // Requires Purpose, Category
	TKeyHoangDaoDay    = "hoang_dao_day"
	TKeyHacDaoDay      = "hac_dao_day"
	TKeyAge            = "age" // Requires Age
	TKeyBasis          = "basis"
	TKeyLunarLabel     = "lunar_label" // Requires Day, Month, YearLabel
	TKeyHoursLabel     = "hours_label"
	TKeyContactLine    = "contact_line" // Requires Name, Chi, Category, Score

	// Category explanations, suffixed with lich.Category.Key().
	TKeyCategoryPrefix = "category_"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeNone       = "none"
	SourceModeWeb        = "web"
	SourceModeLocal      = "local"
	DefaultPort          = 18081
	DefaultRefreshMin    = 60
	DefaultBirthYear     = 1995
	DefaultPurpose       = "Khai trương"
	DefaultHorizonDays   = 60
	MaxHorizonDays       = 366
	DefaultReminderValue = 1
	UIDSalt              = "go-lich-v1-" // Salt for deterministic UID generation
	DayCacheSize         = 512
	DayCacheTTL          = 6 * time.Hour
)

// Purposes lists the undertakings an advisory can be phrased for.
var Purposes = []string{
	"Xuất hành",
	"Khai trương",
	"Ký kết",
	"Cưới hỏi",
	"Động thổ",
	"Xây dựng",
	"Về nhà mới",
}

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISOTimePrefix     = "T"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// Environment Overrides
// -----------------------------------------------------------------------------

const (
	EnvPort      = "LICH_PORT"
	EnvBirthYear = "LICH_BIRTH_YEAR"
	EnvPurpose   = "LICH_PURPOSE"
	EnvMode      = "LICH_SOURCE_MODE"
	EnvLocalPath = "LICH_LOCAL_PATH"
	EnvWebURL    = "LICH_WEB_URL"
	EnvWebUser   = "LICH_WEB_USER"
	EnvHorizon   = "LICH_HORIZON_DAYS"
	EnvRefresh   = "LICH_REFRESH_INTERVAL_MIN"

	EnvReminderEnabled   = "LICH_REMINDER_ENABLED"
	EnvReminderValue     = "LICH_REMINDER_VALUE"
	EnvReminderUnit      = "LICH_REMINDER_UNIT"
	EnvReminderDirection = "LICH_REMINDER_DIRECTION"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Lich//Engine//VI"
	ICalCalName   = "Lịch Hoàng Đạo"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "golich"
	ICalTimezone  = "Asia/Ho_Chi_Minh"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropXWRTimezone = "X-WR-TIMEZONE"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort      = 1
	MaxPort      = 65535
	MinBirthYear = 1
	MaxBirthYear = 9999

	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteRoot     = "/"
	RouteFeed     = "/lich.ics"
	RouteHealth   = "/healthz"
	RouteMetrics  = "/metrics"
	RouteAPI      = "/api"
	RouteDay      = "/day"
	RouteMonth    = "/month"
	RouteHours    = "/hours/{chi}"
	RouteCompat   = "/compat"
	RouteContacts = "/contacts"

	ParamDate    = "date"
	ParamBirth   = "birth"
	ParamPurpose = "purpose"
	ParamYear    = "year"
	ParamMonth   = "month"
	ParamChi     = "chi"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAccept          = "Accept"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeVCard           = "text/vcard"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidDate     = "invalid calendar date"
	ErrInvalidChi      = "unknown earthly branch"
	ErrInvalidPurpose  = "unknown purpose"
	ErrLocalPathEmpty  = "configuration error: local path is empty"
	ErrWebURLEmpty     = "configuration error: web URL is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrModeUnsupport   = "configuration error: unsupported source mode"
	ErrSettingsRead    = "failed to read settings file"
	ErrSettingsParse   = "failed to parse settings file"
	ErrSettingsInvalid = "invalid settings"
	ErrEnvOverride     = "invalid environment override"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrConfigDir       = "could not determine user config dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrBadQuery        = "invalid query parameters"
	ErrContactsSource  = "failed to open contacts source"
	ErrRequestBuild    = "failed to create request"
	ErrNetwork         = "network error during fetch"
	ErrFetchStatus     = "server returned unexpected status"
	ErrFetchAuth       = "address book rejected the credentials"
	ErrBookTooLarge    = "address book exceeds the size limit"
	ErrBookRead        = "failed to read address book"
	ErrUserRequired    = "a user name is required"
	ErrKeyringSet      = "failed to update keyring entry"
	ErrInvalidBirth    = "birth year out of range (1-9999)"
	ErrInvalidPort     = "port out of range (1-65535)"
	ErrPasswordRead    = "failed to read password from stdin"
	ErrPasswordEmpty   = "password is empty"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgOK           = "ok"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary  = "%s · %s (%d%%)"
	FallbackAdvice   = "Đối với việc %s, ngày này được xem là %s."
	FallbackName     = "Unknown"
	FallbackHoangDao = "Ngày Hoàng Đạo"
	FallbackHacDao   = "Ngày Hắc Đạo"

	MsgSyncStarted   = "Synchronization started..."
	MsgSyncFailed    = "Synchronization failed. Check logs."
	MsgSyncReq       = "Sync requested"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgAppStop       = "Application stopped gracefully"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgSkippedNoYear = "Skipping birthday without year"
	MsgGenSuccess    = "Calendar generation successful"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgCacheSame     = "Calendar unchanged, cache kept"
	MsgContactsSet   = "Contact survey updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgLocaleBadName = "Skipping locale file with empty language code"
	MsgTransMissing  = "Missing translation key"
	MsgPassFail      = "Password retrieval failed (might be empty)"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgEnvMissing    = "No .env file loaded"
	MsgSettingsNone  = "Settings file not found, using defaults"
	MsgSettingsOK    = "Settings loaded"
	MsgDayCacheHit   = "Day report served from cache"
	MsgRequest       = "HTTP request"
	MsgSyncDone      = "Sync finished"
	MsgFetchStart    = "Initiating vCard download"
	MsgFetchOK       = "vCards downloading"
	MsgFetchBadStat  = "Server returned error status"
	MsgContactsDone  = "Contact survey complete"
	MsgResyncSignal  = "Resync requested by signal"
	MsgPasswordSaved = "Password stored in the OS keyring for %s\n"
	MsgPasswordGone  = "Password removed from the OS keyring for %s\n"
	MsgPasswordAsk   = "Password for %s: "
)

// -----------------------------------------------------------------------------
// Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_cards"
	LogKeyFound     = "contacts_found"
	LogKeyDays      = "days"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDate      = "date"
	LogKeyBirthYear = "birth_year"
	LogKeyDuration  = "duration_ms"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyRequestID = "request_id"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"

	LogKeySettings = "settings"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine   = "engine"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompSettings = "settings"
)
