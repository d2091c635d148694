package srfax

import (
	"time"

	"go.uber.org/zap"

	"github.com/vingd/srfax-go/internal/api"
)

// Doer executes HTTP requests. *http.Client implements it; tests may supply
// any round-tripper.
type Doer = api.Doer

// MetricsObserver receives one callback per completed round trip.
// *metrics.Collector implements it.
type MetricsObserver = api.Observer

// clientConfig holds configuration for the client.
type clientConfig struct {
	callerID    string
	senderEmail string
	accountCode string
	baseURL     string
	httpClient  Doer
	timeout     time.Duration
	logger      *zap.Logger
	observer    MetricsObserver
}

// queueConfig holds per-call settings for QueueFax.
type queueConfig struct {
	callerID    string
	senderEmail string
	accountCode string
	scheduledAt time.Time
	coverPage   *CoverPage
	notifyURL   string
}

// listConfig holds per-call settings for the listing operations.
type listConfig struct {
	viewed          ViewedFilter
	includeSubUsers bool
}

// faxConfig holds per-call settings for operations on a single fax folder.
type faxConfig struct {
	direction  Direction
	markViewed bool
}

// Option configures the client.
type Option func(*clientConfig)

// QueueOption configures a QueueFax call.
type QueueOption func(*queueConfig)

// ListOption configures GetSentFaxes and GetReceivedFaxes.
type ListOption func(*listConfig)

// FaxOption configures RetrieveFax, DeleteFax and MarkViewed.
type FaxOption func(*faxConfig)

// WithCallerID sets the default sender fax number (10 digits).
func WithCallerID(callerID string) Option {
	return func(c *clientConfig) {
		c.callerID = callerID
	}
}

// WithSenderEmail sets the default address the service sends confirmations to.
func WithSenderEmail(email string) Option {
	return func(c *clientConfig) {
		c.senderEmail = email
	}
}

// WithAccountCode sets the default internal reference attached to sent faxes.
func WithAccountCode(code string) Option {
	return func(c *clientConfig) {
		c.accountCode = code
	}
}

// WithBaseURL sets the API endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client Doer) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout.
// Default: 30 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for request tracing.
// Default: no logging
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithMetrics records every round trip on m.
func WithMetrics(m MetricsObserver) Option {
	return func(c *clientConfig) {
		c.observer = m
	}
}

// CoverPage selects one of the account's cover page templates.
type CoverPage struct {
	Template string // Basic, Standard, Company or Personal
	Subject  string
	Comments string
}

// WithSender overrides the client's caller ID and sender email for one fax.
// Empty values keep the client defaults.
func WithSender(callerID, email string) QueueOption {
	return func(c *queueConfig) {
		if callerID != "" {
			c.callerID = callerID
		}
		if email != "" {
			c.senderEmail = email
		}
	}
}

// WithFaxAccountCode overrides the client's account code for one fax.
func WithFaxAccountCode(code string) QueueOption {
	return func(c *queueConfig) {
		c.accountCode = code
	}
}

// WithSchedule delays transmission until at. The time is sent in its own
// location, which should match the account's time zone.
func WithSchedule(at time.Time) QueueOption {
	return func(c *queueConfig) {
		c.scheduledAt = at
	}
}

// WithCoverPage adds a cover page to the fax.
func WithCoverPage(cp CoverPage) QueueOption {
	return func(c *queueConfig) {
		c.coverPage = &cp
	}
}

// WithNotifyURL asks the service to call url when the fax completes.
func WithNotifyURL(url string) QueueOption {
	return func(c *queueConfig) {
		c.notifyURL = url
	}
}

// ViewedFilter restricts received fax listings by read state.
type ViewedFilter string

// Viewed filters.
const (
	ViewedAll    ViewedFilter = "ALL"
	ViewedRead   ViewedFilter = "READ"
	ViewedUnread ViewedFilter = "UNREAD"
)

// WithViewed filters received faxes by read state. It is ignored for
// sent fax listings.
func WithViewed(filter ViewedFilter) ListOption {
	return func(c *listConfig) {
		c.viewed = filter
	}
}

// WithSubUsers includes faxes of the account's sub users.
func WithSubUsers() ListOption {
	return func(c *listConfig) {
		c.includeSubUsers = true
	}
}

// WithDirection selects the fax folder.
// Default: Outbound
func WithDirection(d Direction) FaxOption {
	return func(c *faxConfig) {
		c.direction = d
	}
}

// WithMarkViewed marks the fax as read when it is retrieved.
func WithMarkViewed() FaxOption {
	return func(c *faxConfig) {
		c.markViewed = true
	}
}
