package srfax

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vingd/srfax-go/internal/api"
)

// FaxID identifies a fax at the service. It is either a numeric
// FaxDetailsID ("31525948") or a full fax file name
// ("20240101120000-1234-5_1|31525948") as returned by the listings.
type FaxID string

// String returns the id as sent by the service.
func (id FaxID) String() string {
	return string(id)
}

// DetailsID returns the numeric FaxDetailsID part of the id.
func (id FaxID) DetailsID() string {
	return api.DetailsID(string(id))
}

// Direction selects the outbound (sent) or inbound (received) fax folder.
type Direction string

// Fax folders.
const (
	Outbound Direction = "OUT"
	Inbound  Direction = "IN"
)

// FileFormat is the document format of a retrieved fax.
type FileFormat string

// Supported retrieval formats.
const (
	FormatPDF  FileFormat = "PDF"
	FormatTIFF FileFormat = "TIFF"
)

// FaxState is the delivery state of an outbound fax.
type FaxState string

// Delivery states.
const (
	StateQueued    FaxState = "Queued"
	StateSending   FaxState = "Sending"
	StateDelivered FaxState = "Delivered"
	StateFailed    FaxState = "Failed"
)

// parseState maps the service's SentStatus text onto a FaxState.
func parseState(s string) (FaxState, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sent", "delivered":
		return StateDelivered, true
	case "sending":
		return StateSending, true
	case "queued", "in progress":
		return StateQueued, true
	case "failed":
		return StateFailed, true
	}
	return "", false
}

// FaxStatus is the status record of one outbound fax.
type FaxStatus struct {
	ID          FaxID
	State       FaxState
	StatusText  string // SentStatus as reported by the service
	FileName    string
	ToNumber    string
	AccountCode string
	QueuedAt    time.Time
	SentAt      time.Time
	Pages       int
	Duration    time.Duration
	RemoteID    string // CSID of the receiving machine
	ErrorText   string // set when State is StateFailed
	Size        int64
}

// FaxListEntry is one row of a sent or received fax listing.
type FaxListEntry struct {
	ID           FaxID
	FileName     string
	Direction    Direction
	RemoteNumber string
	Timestamp    time.Time
	Pages        int
	Size         int64
	Available    bool // the document can be retrieved
	Viewed       bool
	StatusText   string
}

// FaxFile is a retrieved fax document.
type FaxFile struct {
	ID      FaxID
	Format  FileFormat
	Content []byte
}

// Usage is the account usage of one billing period.
type Usage struct {
	Period        string
	ClientName    string
	SubUserID     string
	BillingNumber string
	Faxes         int
	Pages         int
}

// Document is one file attached to an outbound fax. Build it with
// FileDocument or BytesDocument. Path and Content are mutually exclusive.
type Document struct {
	Name    string
	Path    string
	Content []byte
}

// FileDocument references a file on disk. It is read when the fax is queued.
func FileDocument(path string) Document {
	return Document{Path: path}
}

// BytesDocument wraps in-memory content. The service uses name's extension
// to detect the file type.
func BytesDocument(name string, content []byte) Document {
	return Document{Name: name, Content: content}
}

// load resolves the document into a wire file.
func (d Document) load(index int) (api.File, error) {
	field := "docs[" + strconv.Itoa(index) + "]"

	if d.Path != "" && len(d.Content) > 0 {
		return api.File{}, validationError(field, ErrInvalidDocument, "document sets both path %s and content", d.Path)
	}

	if d.Path != "" {
		content, err := os.ReadFile(d.Path)
		if err != nil {
			return api.File{}, validationError(field, ErrInvalidDocument, "cannot read %s: %v", d.Path, err)
		}
		if len(content) == 0 {
			return api.File{}, validationError(field, ErrInvalidDocument, "file is empty: %s", d.Path)
		}
		name := d.Name
		if name == "" {
			name = filepath.Base(d.Path)
		}
		return api.File{Name: name, Content: content}, nil
	}

	if d.Name == "" {
		return api.File{}, validationError(field, ErrInvalidDocument, "document has neither path nor name")
	}
	if len(d.Content) == 0 {
		return api.File{}, validationError(field, ErrInvalidDocument, "document %s is empty", d.Name)
	}
	return api.File{Name: d.Name, Content: d.Content}, nil
}

// listingLayout is the service's human-readable timestamp format.
const listingLayout = "Jan 02/2006 03:04 PM"

// timestamp prefers the epoch value and falls back to the formatted date.
// Unparseable values yield the zero time.
func timestamp(epoch api.Int, formatted string) time.Time {
	if epoch > 0 {
		return time.Unix(int64(epoch), 0).UTC()
	}
	t, err := time.Parse(listingLayout, strings.TrimSpace(formatted))
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDate(formatted string) time.Time {
	return timestamp(0, formatted)
}

func fromStatus(id FaxID, r *api.FaxStatusResult) (FaxStatus, error) {
	state, ok := parseState(r.SentStatus)
	if !ok {
		return FaxStatus{}, &RemoteError{
			Action:    api.ActionGetFaxStatus,
			Status:    api.StatusSuccess,
			Message:   "unknown SentStatus " + r.SentStatus,
			malformed: true,
		}
	}

	st := FaxStatus{
		ID:          id,
		State:       state,
		StatusText:  r.SentStatus,
		FileName:    r.FileName,
		ToNumber:    r.ToFaxNumber,
		AccountCode: r.AccountCode,
		QueuedAt:    parseDate(r.DateQueued),
		SentAt:      timestamp(r.EpochTime, r.DateSent),
		Pages:       int(r.Pages),
		Duration:    time.Duration(r.Duration) * time.Second,
		RemoteID:    r.RemoteID,
		Size:        int64(r.Size),
	}
	if state == StateFailed {
		st.ErrorText = r.ErrorCode
	}
	return st, nil
}

func fromOutbox(e *api.OutboxEntry) FaxListEntry {
	return FaxListEntry{
		ID:           FaxID(e.FileName),
		FileName:     e.FileName,
		Direction:    Outbound,
		RemoteNumber: e.ToFaxNumber,
		Timestamp:    timestamp(e.EpochTime, e.DateSent),
		Pages:        int(e.Pages),
		Size:         int64(e.Size),
		Available:    e.Size > 0,
		StatusText:   e.SentStatus,
	}
}

func fromInbox(e *api.InboxEntry) FaxListEntry {
	return FaxListEntry{
		ID:           FaxID(e.FileName),
		FileName:     e.FileName,
		Direction:    Inbound,
		RemoteNumber: e.CallerID,
		Timestamp:    timestamp(e.EpochTime, e.Date),
		Pages:        int(e.Pages),
		Size:         int64(e.Size),
		Available:    strings.EqualFold(e.ReceiveStatus, "Ok") && e.Size > 0,
		Viewed:       strings.EqualFold(e.ViewedStatus, "Y"),
		StatusText:   e.ReceiveStatus,
	}
}

func fromUsage(e *api.UsageEntry) Usage {
	return Usage{
		Period:        e.Period,
		ClientName:    e.ClientName,
		SubUserID:     e.SubUserID,
		BillingNumber: e.BillingNumber,
		Faxes:         int(e.NumberOfFaxes),
		Pages:         int(e.NumberOfPages),
	}
}
