package srfaxtest

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SentFax is an outbound fax held by the fake service.
type SentFax struct {
	ID          int64
	FileName    string
	CallerID    string
	SenderEmail string
	AccountCode string
	To          []string // dialing strings as received
	Files       []File
	NotifyURL   string
	CoverPage   string
	Status      string
	ErrorCode   string
	QueuedAt    time.Time
	SentAt      time.Time
	ScheduledAt string // raw sQueueFaxDate + sQueueFaxTime
	Viewed      bool
}

// File is one document attached to a SentFax.
type File struct {
	Name    string
	Content []byte
}

// InboundFax is a received fax seeded with Server.AddInbound.
type InboundFax struct {
	CallerID   string
	RemoteID   string
	Pages      int
	Content    []byte
	ReceivedAt time.Time
	Failed     bool // reception failed: no document is available
}

type receivedFax struct {
	InboundFax
	id       int64
	fileName string
	viewed   bool
}

// store is the in-memory state of one Server.
type store struct {
	mu     sync.Mutex
	nextID int64
	now    func() time.Time
	sent   []*SentFax
	recv   []*receivedFax
}

func newStore(startID int64, now func() time.Time) *store {
	return &store{nextID: startID, now: now}
}

// fileName builds a name in the service's "<timestamp>-<tag>_<n>|<id>" form.
func fileName(at time.Time, id int64) string {
	tag := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return at.Format("20060102150405") + "-" + tag + "_0|" + strconv.FormatInt(id, 10)
}

func (s *store) queue(f *SentFax) *SentFax {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.ID = s.nextID
	s.nextID++
	f.QueuedAt = s.now()
	f.FileName = fileName(f.QueuedAt, f.ID)
	if f.ScheduledAt == "" {
		// Transmission is instant.
		f.Status = "Sent"
		f.SentAt = f.QueuedAt
	} else {
		f.Status = "Queued"
	}
	s.sent = append(s.sent, f)
	return f
}

func (s *store) receive(in InboundFax) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.ReceivedAt.IsZero() {
		in.ReceivedAt = s.now()
	}
	r := &receivedFax{InboundFax: in, id: s.nextID}
	s.nextID++
	r.fileName = fileName(in.ReceivedAt, r.id)
	s.recv = append(s.recv, r)
	return r.fileName
}

// findSent looks a fax up by FaxDetailsID or file name. Callers hold mu.
func (s *store) findSent(ref string) (*SentFax, int) {
	for i, f := range s.sent {
		if ref == f.FileName || ref == strconv.FormatInt(f.ID, 10) {
			return f, i
		}
	}
	return nil, -1
}

// findRecv looks a fax up by FaxDetailsID or file name. Callers hold mu.
func (s *store) findRecv(ref string) (*receivedFax, int) {
	for i, f := range s.recv {
		if ref == f.fileName || ref == strconv.FormatInt(f.id, 10) {
			return f, i
		}
	}
	return nil, -1
}

func (s *store) snapshotSent() []SentFax {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SentFax, 0, len(s.sent))
	for _, f := range s.sent {
		c := *f
		c.To = slices.Clone(f.To)
		c.Files = slices.Clone(f.Files)
		out = append(out, c)
	}
	return out
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
	s.recv = nil
}

// inRange reports whether t falls on a day between start and end
// (YYYYMMDD, inclusive). Empty bounds are open.
func inRange(t time.Time, start, end string) bool {
	day := t.Format(dateFormat)
	if start != "" && day < start {
		return false
	}
	if end != "" && day > end {
		return false
	}
	return true
}
