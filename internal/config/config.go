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

// UserAgent identifies the HTTP client used to fetch remote author directories.
var UserAgent = "Go-Birthday-Web/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Birthday Web"
	AppID             = "com.github.tartampluch.go-birthday-web"
	KeyringService    = "com.github.tartampluch.go-birthday-web"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "server.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
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
	FlagVersion     = "version"
	FlagDebug       = "debug"
	FlagPort        = "port"
	FlagBind        = "bind"
	FlagLang        = "lang"
	FlagAuthorsFile = "authors-file"
	FlagAuthorsURL  = "authors-url"
	FlagAuthorsUser = "authors-user"
	FlagSetPassword = "set-authors-password"

	FlagDescVersion     = "Show application version and exit"
	FlagDescDebug       = "Enable debug logging"
	FlagDescPort        = "Port to listen on"
	FlagDescBind        = "Address to bind the HTTP server to"
	FlagDescLang        = "Default response language (ISO 639-1)"
	FlagDescAuthorsFile = "Optional .vcf file with extra authors"
	FlagDescAuthorsURL  = "Optional http(s) URL of a vCard stream with extra authors"
	FlagDescAuthorsUser = "Basic auth user for -authors-url (password is read from the OS keyring)"
	FlagDescSetPassword = "Read the -authors-user password from stdin, store it in the OS keyring and exit"

	MsgVersionOutput  = "%s version %s (commit %s, built %s, %s/%s)\n"
	MsgPasswordPrompt = "Password for %s: "
	MsgPasswordStored = "Password stored in the OS keyring"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort     = "8000"
	DefaultLanguage = "en"

	// Profile page content.
	ProfileName = "Guido van Rossum"
	ProfileAge  = 62

	UIDSalt = "go-birthday-web-v1-" // Salt for deterministic UID generation
)

// SupportedLanguages defines the list of available response languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Birthday Web//Anniversaries//EN"
	ICalCalName = "Anniversaries"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gobirthdayweb"

	// iCal Fields
	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	// vCard Fields
	VCardBDAY        = "BDAY"
	VCardFN          = "FN"
	VCardN           = "N"
	VCardNote        = "NOTE"
	VCardNationality = "X-NATIONALITY"

	DefaultICalRefresh = 24 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// DateFormatISO is the only accepted textual date layout (YYYY-MM-DD).
	DateFormatISO = "2006-01-02"
	// DateFormatBasic is the compact vCard BDAY layout.
	DateFormatBasic = "20060102"
	// FormatDay zero-pads the day of month on the date page, as '%d' does.
	FormatDay = "%02d"
	// DateFormatBorn renders an author's birth date on the detail page.
	DateFormatBorn = "January 2, 2006"

	MinYear = 1
	MaxYear = 9999

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// VCardExtensions lists the file extensions accepted for -authors-file.
var VCardExtensions = []string{ExtVCF, ExtVCard}

// VCardMediaTypes lists the Content-Types accepted from a remote author stream.
// Plain text and octet-stream cover servers that do not know the vCard types.
var VCardMediaTypes = []string{
	"text/vcard",
	"text/x-vcard",
	"text/directory",
	"text/plain",
	"application/octet-stream",
}

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB of vCards is plenty for an author list
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// Routes & URL Parameters
// -----------------------------------------------------------------------------

const (
	RouteHelloWorld       = "/hello-world/"
	RouteDate             = "/date/"
	RouteMyAge            = "/my-age/{year:[0-9]+}/{month:[0-9]+}/{day:[0-9]+}/"
	RouteNextBirthday     = "/next-birthday/{birthday}/"
	RouteNextBirthdayICS  = "/next-birthday/{birthday}/calendar.ics"
	RouteProfile          = "/profile/"
	RouteAuthors          = "/authors/"
	RouteAuthorsICS       = "/authors/calendar.ics"
	RouteAuthor           = "/author/{last_name}"
	RouteAuthorVCard      = "/author/{last_name}/vcard"
	RouteMetrics          = "/metrics"
	ParamYear             = "year"
	ParamMonth            = "month"
	ParamDay              = "day"
	ParamBirthday         = "birthday"
	ParamAuthorsLastName  = "last_name"
	RouteLabelUnmatched   = "unmatched"
	FormatVCardFileSuffix = ".vcf"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderCacheControl       = "Cache-Control"
	HeaderETag               = "ETag"
	HeaderXContentType       = "X-Content-Type-Options"
	HeaderUserAgent          = "User-Agent"
	HeaderIfNoneMatch        = "If-None-Match"
	HeaderAcceptLanguage     = "Accept-Language"
	HeaderRequestID          = "X-Request-ID"

	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeTextHTML        = "text/html; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextVCard       = "text/vcard; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
	// FormatAttachment expects a file name.
	FormatAttachment = `attachment; filename="%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrDateParse        = "invalid calendar date"
	ErrDateFormat       = "date must be formatted as YYYY-MM-DD"
	ErrDateRange        = "date does not exist on the Gregorian calendar"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrAuthorsFileExt   = "author file must have a .vcf or .vcard extension"
	ErrUserRequired     = "configuration error: -authors-user is required"
	ErrContentType      = "remote author stream is not a vCard"
	ErrFetchNetwork     = "network error during fetch"
	ErrFetchStatus      = "server returned unexpected status"
	ErrPasswordRead     = "failed to read password"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrLanguage         = "unsupported language"
	ErrFlagParse        = "failed to parse command line"
	ErrDirectoryLoad    = "failed to load author directory"
	ErrDirectoryOpen    = "failed to open author file"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrVCardEncode      = "failed to encode vCard"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrTemplateParse    = "failed to parse templates"
	ErrTemplateRender   = "failed to render template"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrPanicRecovered   = "panic recovered"
	ErrCredentialLookup = "failed to read credentials from keyring"
	ErrCredentialStore  = "failed to store credentials in keyring"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInternalErr = "Internal Server Error"
	HTTPMsgNotFound    = "Not Found"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackName = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgAppStop         = "Application stopped gracefully"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgHTTPRequest     = "http request"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping author with invalid birthday"
	MsgSkippedDup      = "Skipping author already present in directory"
	MsgDirectoryLoaded = "Author directory loaded"
	MsgCalendarBuilt   = "Anniversary calendar generated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgBadDate         = "Rejected malformed date"
	MsgAuthorMissing   = "Author not found"
	MsgFetchStart      = "Initiating vCard download"
	MsgFetchStatus     = "Server returned error status"
	MsgFetchDownload   = "vCards downloading"
	MsgLocalesReady    = "Response languages available"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyHelloWorld     = "hello_world"
	TKeyTodayIs        = "today_is"        // Requires Day, Month, Year
	TKeyDaysUntil      = "days_until_next" // Requires Days
	TKeyBadRequest     = "bad_request"
	TKeyAuthorNotFound = "author_not_found" // Requires Key
	TKeyAuthorsTitle   = "authors_title"
	TKeyProfileTitle   = "profile_title"
	TKeyEvtAnniversary = "event_anniversary" // Requires Name

	// TKeyMonthPrefix is followed by the month number (1-12).
	TKeyMonthPrefix = "month_"
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
	LogKeyLangs     = "languages"
	LogKeyMediaType = "content_type"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyUser      = "user"
	LogKeyValue     = "value"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDuration  = "duration_ms"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyRequestID = "request_id"
	LogKeyRemote    = "remote_addr"
	LogKeyStack     = "stack"
	LogKeySizeBytes = "size_bytes"
	LogKeyLength    = "content_length"

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
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine    = "engine"
	CompDirectory = "directory"
	CompServer    = "server"
	CompFetcher   = "fetcher"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompHTTP      = "http"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace = "gobirthdayweb"
	MetricLabelRoute = "route"
	MetricLabelCode  = "code"
)
