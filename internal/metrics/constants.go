package metrics

// Metric names
const (
	MetricNameHTTPRequestsTotal    = "golich_http_requests_total"
	MetricNameHTTPRequestDuration  = "golich_http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "golich_http_requests_in_flight"
	MetricNameSyncRuns             = "golich_sync_runs_total"
	MetricNameFeedEvents           = "golich_feed_events"
	MetricNameContacts             = "golich_contacts_surveyed"
	MetricNameDayCache             = "golich_day_cache_lookups_total"
)

// Help texts
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Number of HTTP requests currently being served"
	HelpTextSyncRuns             = "Number of advisory synchronizations by result"
	HelpTextFeedEvents           = "Number of events in the last generated calendar feed"
	HelpTextContacts             = "Number of contacts in the last compatibility survey"
	HelpTextDayCache             = "Day report cache lookups by result"
)

// Labels
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelResult = "result"
)

// Label values
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultHit   = "hit"
	ResultMiss  = "miss"

	// UnmatchedRoute labels requests that no route pattern matched.
	UnmatchedRoute = "unmatched"
)

// HTTPLatencyBuckets covers local calendar and JSON requests.
var HTTPLatencyBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1}
