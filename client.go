package srfax

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/vingd/srfax-go/internal/api"
	"github.com/vingd/srfax-go/internal/validate"
)

// MaxDocuments is the number of documents one fax can carry, and the
// number of faxes one DeleteFax call can remove.
const MaxDocuments = api.MaxFiles

// Client is the SRFax client. It holds only immutable configuration and is
// safe for concurrent use.
type Client struct {
	apiClient   *api.Client
	validator   *validate.Validator
	callerID    string
	senderEmail string
	accountCode string
}

// faxJob is the validated shape of an outbound fax.
type faxJob struct {
	To          []string `validate:"required,min=1,dive,faxnumber"`
	CallerID    string   `validate:"required"`
	SenderEmail string   `validate:"required,email"`
	Documents   int      `validate:"min=1,max=5"`
	NotifyURL   string   `validate:"omitempty,url"`
}

// New creates a new SRFax client for the given account credentials.
// No network call is made.
func New(accessID, accessPassword string, opts ...Option) (*Client, error) {
	if accessID == "" {
		return nil, &ConfigurationError{Field: "accessID", Err: ErrMissingAccessID}
	}
	if accessPassword == "" {
		return nil, &ConfigurationError{Field: "accessPassword", Err: ErrMissingAccessPassword}
	}

	cfg := &clientConfig{
		baseURL: api.DefaultBaseURL,
		timeout: api.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.timeout < 0 {
		return nil, &ConfigurationError{Field: "timeout", Err: ErrInvalidArgument}
	}

	apiClient, err := api.New(api.Config{
		BaseURL:        cfg.baseURL,
		AccessID:       accessID,
		AccessPassword: accessPassword,
		HTTPClient:     cfg.httpClient,
		Timeout:        cfg.timeout,
		Logger:         cfg.logger,
		Observer:       cfg.observer,
	})
	if err != nil {
		return nil, err //coverage:ignore
	}

	return &Client{
		apiClient:   apiClient,
		validator:   validate.New(),
		callerID:    cfg.callerID,
		senderEmail: cfg.senderEmail,
		accountCode: cfg.accountCode,
	}, nil
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.apiClient.BaseURL()
}

// checkConfigured rejects calls on a Client that was not built with New.
func (c *Client) checkConfigured() error {
	if c == nil || c.apiClient == nil {
		return &ConfigurationError{Field: "client", Err: ErrNotConfigured}
	}
	return nil
}

// QueueFax sends docs to every number in to and returns the id assigned
// by the service. Numbers must be in E.164 format (+15551234567). More than
// one number sends a broadcast.
func (c *Client) QueueFax(ctx context.Context, to []string, docs []Document, opts ...QueueOption) (FaxID, error) {
	if err := c.checkConfigured(); err != nil {
		return "", err
	}

	cfg := &queueConfig{
		callerID:    c.callerID,
		senderEmail: c.senderEmail,
		accountCode: c.accountCode,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	job := faxJob{
		To:          to,
		CallerID:    cfg.callerID,
		SenderEmail: cfg.senderEmail,
		Documents:   len(docs),
		NotifyURL:   cfg.notifyURL,
	}
	if errs := c.validator.Struct(job); len(errs) > 0 {
		return "", jobError(errs[0])
	}

	numbers, err := validate.DialStrings(to)
	if err != nil {
		return "", validationError("to", ErrInvalidNumber, "%v", err) //coverage:ignore
	}

	files := make([]api.File, 0, len(docs))
	for i, d := range docs {
		f, err := d.load(i)
		if err != nil {
			return "", err
		}
		files = append(files, f)
	}

	params := &api.QueueFaxParams{
		CallerID:     cfg.callerID,
		SenderEmail:  cfg.senderEmail,
		AccountCode:  cfg.accountCode,
		ToFaxNumbers: numbers,
		Files:        files,
		ScheduledAt:  cfg.scheduledAt,
		NotifyURL:    cfg.notifyURL,
	}
	if cfg.coverPage != nil {
		params.CoverPage = &api.CoverPage{
			Template: cfg.coverPage.Template,
			Subject:  cfg.coverPage.Subject,
			Comments: cfg.coverPage.Comments,
		}
	}

	id, err := c.apiClient.QueueFax(ctx, params)
	if err != nil {
		return "", wrapError(err)
	}
	return FaxID(id), nil
}

// jobError maps the first failed constraint of a faxJob onto a ValidationError.
func jobError(fe validate.FieldError) *ValidationError {
	switch {
	case fe.Field == "To":
		return validationError("to", ErrNoDestination, "no destination fax number")
	case strings.HasPrefix(fe.Field, "To["):
		return validationError(strings.ToLower(fe.Field[:1])+fe.Field[1:], ErrInvalidNumber, "%v is not an E.164 number", fe.Value)
	case fe.Field == "Documents" && fe.Tag == "max":
		return validationError("docs", ErrInvalidDocument, "at most %d documents per fax, got %v", MaxDocuments, fe.Value)
	case fe.Field == "Documents":
		return validationError("docs", ErrInvalidDocument, "at least one document is required")
	case fe.Field == "CallerID", fe.Tag == "required":
		return validationError(fe.Field, ErrMissingSender, "%s is required", fe.Field)
	}
	return validationError(fe.Field, ErrInvalidArgument, "%s", fe.String())
}

// GetFaxStatus returns the delivery status of a sent fax.
func (c *Client) GetFaxStatus(ctx context.Context, id FaxID) (*FaxStatus, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if err := checkIDs([]FaxID{id}, 1); err != nil {
		return nil, err
	}

	r, err := c.apiClient.GetFaxStatus(ctx, id.DetailsID())
	if err != nil {
		return nil, wrapError(err)
	}

	st, err := fromStatus(id, r)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetFaxStatuses returns the status of several sent faxes in one call,
// in the order the service reports them.
func (c *Client) GetFaxStatuses(ctx context.Context, ids []FaxID) ([]FaxStatus, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if err := checkIDs(ids, 0); err != nil {
		return nil, err
	}

	detailIDs := make([]string, len(ids))
	for i, id := range ids {
		detailIDs[i] = id.DetailsID()
	}

	results, err := c.apiClient.GetMultiFaxStatus(ctx, detailIDs)
	if err != nil {
		return nil, wrapError(err)
	}

	byDetailsID := make(map[string]FaxID, len(ids))
	for i, id := range ids {
		if _, ok := byDetailsID[detailIDs[i]]; !ok {
			byDetailsID[detailIDs[i]] = id
		}
	}

	out := make([]FaxStatus, 0, len(results))
	for i := range results {
		// Records are matched to the requested ids by FileName; position
		// is only trusted when the FileName names none of them.
		reported := api.DetailsID(results[i].FileName)
		id, ok := byDetailsID[reported]
		switch {
		case ok && reported != "":
		case len(results) == len(ids):
			id = ids[i]
		default:
			id = FaxID(reported)
		}
		st, err := fromStatus(id, &results[i])
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// GetSentFaxes lists faxes sent between start and end, oldest first.
// Zero start and end list the whole history.
func (c *Client) GetSentFaxes(ctx context.Context, start, end time.Time, opts ...ListOption) ([]FaxListEntry, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	cfg := applyList(opts)

	entries, err := c.apiClient.GetFaxOutbox(ctx, &api.ListParams{
		Start:           start,
		End:             end,
		IncludeSubUsers: cfg.includeSubUsers,
	})
	if err != nil {
		return nil, wrapError(err)
	}

	out := make([]FaxListEntry, 0, len(entries))
	for i := range entries {
		out = append(out, fromOutbox(&entries[i]))
	}
	sortChronologically(out)
	return out, nil
}

// GetReceivedFaxes lists faxes received between start and end, oldest first.
// Zero start and end list the whole history.
func (c *Client) GetReceivedFaxes(ctx context.Context, start, end time.Time, opts ...ListOption) ([]FaxListEntry, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	cfg := applyList(opts)

	switch cfg.viewed {
	case "", ViewedAll, ViewedRead, ViewedUnread:
	default:
		return nil, validationError("viewed", ErrInvalidArgument, "unknown viewed filter %q", cfg.viewed)
	}

	entries, err := c.apiClient.GetFaxInbox(ctx, &api.ListParams{
		Start:           start,
		End:             end,
		ViewedStatus:    string(cfg.viewed),
		IncludeSubUsers: cfg.includeSubUsers,
	})
	if err != nil {
		return nil, wrapError(err)
	}

	out := make([]FaxListEntry, 0, len(entries))
	for i := range entries {
		out = append(out, fromInbox(&entries[i]))
	}
	sortChronologically(out)
	return out, nil
}

// RetrieveFax downloads a fax document in the given format.
func (c *Client) RetrieveFax(ctx context.Context, id FaxID, format FileFormat, opts ...FaxOption) (*FaxFile, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if err := checkIDs([]FaxID{id}, 1); err != nil {
		return nil, err
	}
	if format != FormatPDF && format != FormatTIFF {
		return nil, validationError("format", ErrInvalidArgument, "unsupported format %q", format)
	}
	cfg, err := applyFax(opts)
	if err != nil {
		return nil, err
	}

	content, err := c.apiClient.RetrieveFax(ctx, &api.RetrieveParams{
		FaxID:      string(id),
		Direction:  string(cfg.direction),
		Format:     string(format),
		MarkViewed: cfg.markViewed,
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return &FaxFile{ID: id, Format: format, Content: content}, nil
}

// DeleteFax removes up to MaxDocuments faxes from one folder.
func (c *Client) DeleteFax(ctx context.Context, ids []FaxID, opts ...FaxOption) error {
	if err := c.checkConfigured(); err != nil {
		return err
	}
	if err := checkIDs(ids, MaxDocuments); err != nil {
		return err
	}
	cfg, err := applyFax(opts)
	if err != nil {
		return err
	}

	refs := make([]string, len(ids))
	for i, id := range ids {
		refs[i] = string(id)
	}
	return wrapError(c.apiClient.DeleteFax(ctx, string(cfg.direction), refs))
}

// StopFax cancels a queued fax that has not been sent yet.
func (c *Client) StopFax(ctx context.Context, id FaxID) error {
	if err := c.checkConfigured(); err != nil {
		return err
	}
	if err := checkIDs([]FaxID{id}, 1); err != nil {
		return err
	}
	return wrapError(c.apiClient.StopFax(ctx, id.DetailsID()))
}

// MarkViewed sets the read state of a fax.
func (c *Client) MarkViewed(ctx context.Context, id FaxID, viewed bool, opts ...FaxOption) error {
	if err := c.checkConfigured(); err != nil {
		return err
	}
	if err := checkIDs([]FaxID{id}, 1); err != nil {
		return err
	}
	cfg, err := applyFax(opts)
	if err != nil {
		return err
	}
	return wrapError(c.apiClient.UpdateViewedStatus(ctx, string(id), string(cfg.direction), viewed))
}

// GetUsage reports fax usage between start and end. Zero start and end
// cover the whole account history.
func (c *Client) GetUsage(ctx context.Context, start, end time.Time) ([]Usage, error) {
	if err := c.checkConfigured(); err != nil {
		return nil, err
	}
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	entries, err := c.apiClient.GetFaxUsage(ctx, &api.ListParams{Start: start, End: end})
	if err != nil {
		return nil, wrapError(err)
	}

	out := make([]Usage, 0, len(entries))
	for i := range entries {
		out = append(out, fromUsage(&entries[i]))
	}
	return out, nil
}

// checkRange accepts a closed range or no range at all.
func checkRange(start, end time.Time) error {
	switch {
	case start.IsZero() && end.IsZero():
		return nil
	case start.IsZero():
		return validationError("start", ErrInvalidDateRange, "start is required when end is set")
	case end.IsZero():
		return validationError("end", ErrInvalidDateRange, "end is required when start is set")
	case day(start).After(day(end)):
		return validationError("start", ErrInvalidDateRange, "start %s is after end %s",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return nil
}

// day truncates t to its calendar date in t's own location, which is all
// the service receives of a range bound.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// checkIDs requires at least one id, no empty ids, and at most limit ids
// when limit is positive.
func checkIDs(ids []FaxID, limit int) error {
	if len(ids) == 0 {
		return validationError("ids", ErrInvalidFaxID, "at least one fax id is required")
	}
	if limit > 0 && len(ids) > limit {
		return validationError("ids", ErrInvalidFaxID, "at most %d fax ids per call, got %d", limit, len(ids))
	}
	for _, id := range ids {
		if strings.TrimSpace(string(id)) == "" {
			return validationError("ids", ErrInvalidFaxID, "empty fax id")
		}
	}
	return nil
}

func applyList(opts []ListOption) *listConfig {
	cfg := &listConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func applyFax(opts []FaxOption) (*faxConfig, error) {
	cfg := &faxConfig{direction: Outbound}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.direction != Outbound && cfg.direction != Inbound {
		return nil, validationError("direction", ErrInvalidArgument, "unknown direction %q", cfg.direction)
	}
	return cfg, nil
}

// sortChronologically orders entries oldest first, keeping the service's
// order for equal timestamps.
func sortChronologically(entries []FaxListEntry) {
	slices.SortStableFunc(entries, func(a, b FaxListEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}
