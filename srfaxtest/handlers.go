package srfaxtest

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vingd/srfax-go/internal/api"
)

// maxRefs mirrors the service's limit on files per fax and faxes per delete.
const maxRefs = api.MaxFiles

type actionHandler func(w http.ResponseWriter, r *http.Request)

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeFailure(w, "Unable to parse request: "+err.Error())
		return
	}

	action := r.PostFormValue("action")
	s.logger.Debug("srfax request",
		zap.String("action", action),
		zap.String("request_id", r.Header.Get(api.RequestIDHeader)),
	)

	if r.PostFormValue("access_id") != s.accessID || r.PostFormValue("access_pwd") != s.accessPassword {
		writeFailure(w, AuthFailureMessage)
		return
	}

	handlers := map[string]actionHandler{
		api.ActionQueueFax:           s.queueFax,
		api.ActionGetFaxStatus:       s.getFaxStatus,
		api.ActionGetMultiFaxStatus:  s.getMultiFaxStatus,
		api.ActionGetFaxOutbox:       s.getFaxOutbox,
		api.ActionGetFaxInbox:        s.getFaxInbox,
		api.ActionRetrieveFax:        s.retrieveFax,
		api.ActionDeleteFax:          s.deleteFax,
		api.ActionStopFax:            s.stopFax,
		api.ActionUpdateViewedStatus: s.updateViewedStatus,
		api.ActionGetFaxUsage:        s.getFaxUsage,
	}
	h, ok := handlers[action]
	if !ok {
		writeFailure(w, "Invalid action: "+action)
		return
	}
	h(w, r)
}

func (s *Server) queueFax(w http.ResponseWriter, r *http.Request) {
	f := &SentFax{
		CallerID:    r.PostFormValue("sCallerID"),
		SenderEmail: r.PostFormValue("sSenderEmail"),
		AccountCode: r.PostFormValue("sAccountCode"),
		NotifyURL:   r.PostFormValue("sNotifyURL"),
		CoverPage:   r.PostFormValue("sCoverPage"),
	}
	if f.CallerID == "" {
		writeFailure(w, "Caller ID is required")
		return
	}
	if f.SenderEmail == "" {
		writeFailure(w, "Sender Email is required")
		return
	}

	faxType := r.PostFormValue("sFaxType")
	to := r.PostFormValue("sToFaxNumber")
	if to == "" {
		writeFailure(w, "Fax Number is required")
		return
	}
	f.To = strings.Split(to, "|")
	switch {
	case faxType == "SINGLE" && len(f.To) == 1, faxType == "BROADCAST" && len(f.To) > 1:
	default:
		writeFailure(w, "Invalid Fax Type")
		return
	}

	for i := 1; i <= maxRefs; i++ {
		n := strconv.Itoa(i)
		name := r.PostFormValue("sFileName_" + n)
		if name == "" {
			break
		}
		content, err := base64.StdEncoding.DecodeString(r.PostFormValue("sFileContent_" + n))
		if err != nil || len(content) == 0 {
			writeFailure(w, "Invalid file content for "+name)
			return
		}
		f.Files = append(f.Files, File{Name: name, Content: content})
	}
	if len(f.Files) == 0 {
		writeFailure(w, "No files to send")
		return
	}

	if date := r.PostFormValue("sQueueFaxDate"); date != "" {
		f.ScheduledAt = date + " " + r.PostFormValue("sQueueFaxTime")
	}

	f = s.store.queue(f)
	writeSuccess(w, f.ID)
}

// statusRecord renders a fax the way Get_FaxStatus reports it. Callers hold
// the store lock.
func statusRecord(f *SentFax) map[string]any {
	rec := map[string]any{
		"FileName":    f.FileName,
		"SentStatus":  f.Status,
		"AccountCode": f.AccountCode,
		"DateQueued":  f.QueuedAt.Format(listingLayout),
		"DateSent":    "",
		"EpochTime":   "",
		"ToFaxNumber": strings.Join(f.To, "|"),
		"Pages":       len(f.Files),
		"Duration":    0,
		"RemoteID":    "",
		"ErrorCode":   f.ErrorCode,
		"Size":        fileSize(f.Files),
	}
	if !f.SentAt.IsZero() {
		rec["DateSent"] = f.SentAt.Format(listingLayout)
		rec["EpochTime"] = f.SentAt.Unix()
		rec["Duration"] = 30 * len(f.Files)
		rec["RemoteID"] = "SRFAXTEST"
	}
	return rec
}

func fileSize(files []File) int {
	n := 0
	for _, f := range files {
		n += len(f.Content)
	}
	return n
}

func (s *Server) getFaxStatus(w http.ResponseWriter, r *http.Request) {
	ref := r.PostFormValue("sFaxDetailsID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	f, _ := s.store.findSent(ref)
	if f == nil {
		writeFailure(w, "Invalid Fax Details ID: "+ref)
		return
	}
	writeSuccess(w, statusRecord(f))
}

func (s *Server) getMultiFaxStatus(w http.ResponseWriter, r *http.Request) {
	refs := strings.Split(r.PostFormValue("sFaxDetailsID"), "|")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]map[string]any, 0, len(refs))
	for _, ref := range refs {
		f, _ := s.store.findSent(ref)
		if f == nil {
			writeFailure(w, "Invalid Fax Details ID: "+ref)
			return
		}
		out = append(out, statusRecord(f))
	}
	writeSuccess(w, out)
}

// period parses sPeriod, sStartDate and sEndDate into inclusive day bounds.
func period(r *http.Request) (start, end string, ok bool) {
	switch r.PostFormValue("sPeriod") {
	case "", api.PeriodAll:
		return "", "", true
	case api.PeriodRange:
		start, end = r.PostFormValue("sStartDate"), r.PostFormValue("sEndDate")
		for _, d := range []string{start, end} {
			if _, err := time.Parse(dateFormat, d); err != nil {
				return "", "", false
			}
		}
		return start, end, start <= end
	}
	return "", "", false
}

func (s *Server) getFaxOutbox(w http.ResponseWriter, r *http.Request) {
	start, end, ok := period(r)
	if !ok {
		writeFailure(w, "Invalid Period")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]map[string]any, 0, len(s.store.sent))
	for _, f := range s.store.sent {
		if !inRange(f.QueuedAt, start, end) {
			continue
		}
		rec := statusRecord(f)
		rec["Subject"] = ""
		out = append(out, rec)
	}
	if len(out) == 0 {
		// An empty folder is reported as an empty string.
		writeSuccess(w, "")
		return
	}
	writeSuccess(w, out)
}

func (s *Server) getFaxInbox(w http.ResponseWriter, r *http.Request) {
	start, end, ok := period(r)
	if !ok {
		writeFailure(w, "Invalid Period")
		return
	}
	viewed := r.PostFormValue("sViewedStatus")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]map[string]any, 0, len(s.store.recv))
	for _, f := range s.store.recv {
		if !inRange(f.ReceivedAt, start, end) {
			continue
		}
		if (viewed == "READ" && !f.viewed) || (viewed == "UNREAD" && f.viewed) {
			continue
		}
		status, size := "Ok", len(f.Content)
		if f.Failed {
			status, size = "Failed", 0
		}
		out = append(out, map[string]any{
			"FileName":      f.fileName,
			"ReceiveStatus": status,
			"Date":          f.ReceivedAt.Format(listingLayout),
			"EpochTime":     f.ReceivedAt.Unix(),
			"CallerID":      f.CallerID,
			"RemoteID":      f.RemoteID,
			"Pages":         f.Pages,
			"Size":          size,
			"ViewedStatus":  yesNo(f.viewed),
		})
	}
	if len(out) == 0 {
		writeSuccess(w, "")
		return
	}
	writeSuccess(w, out)
}

// faxRef returns the fax reference of a request, by file name or details id.
func faxRef(r *http.Request, suffix string) string {
	if name := r.PostFormValue("sFaxFileName" + suffix); name != "" {
		return name
	}
	return r.PostFormValue("sFaxDetailsID" + suffix)
}

func (s *Server) retrieveFax(w http.ResponseWriter, r *http.Request) {
	ref := faxRef(r, "")
	direction := r.PostFormValue("sDirection")
	markViewed := r.PostFormValue("sMarkasViewed") == "Y"

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var content []byte
	switch direction {
	case "OUT":
		f, _ := s.store.findSent(ref)
		if f == nil {
			writeFailure(w, "Fax not found: "+ref)
			return
		}
		if len(f.Files) > 0 {
			content = f.Files[0].Content
		}
		if markViewed {
			f.Viewed = true
		}
	case "IN":
		f, _ := s.store.findRecv(ref)
		if f == nil {
			writeFailure(w, "Fax not found: "+ref)
			return
		}
		if f.Failed {
			writeFailure(w, "Fax file not available: "+ref)
			return
		}
		content = f.Content
		if markViewed {
			f.viewed = true
		}
	default:
		writeFailure(w, "Invalid Direction")
		return
	}
	writeSuccess(w, base64.StdEncoding.EncodeToString(content))
}

func (s *Server) deleteFax(w http.ResponseWriter, r *http.Request) {
	direction := r.PostFormValue("sDirection")
	if direction != "IN" && direction != "OUT" {
		writeFailure(w, "Invalid Direction")
		return
	}

	var refs []string
	for i := 1; i <= maxRefs; i++ {
		ref := faxRef(r, "_"+strconv.Itoa(i))
		if ref == "" {
			break
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		writeFailure(w, "No faxes to delete")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	// Resolve every reference before deleting any, so a bad id deletes nothing.
	for _, ref := range refs {
		found := false
		if direction == "OUT" {
			f, _ := s.store.findSent(ref)
			found = f != nil
		} else {
			f, _ := s.store.findRecv(ref)
			found = f != nil
		}
		if !found {
			writeFailure(w, "Fax not found: "+ref)
			return
		}
	}
	for _, ref := range refs {
		if direction == "OUT" {
			_, i := s.store.findSent(ref)
			s.store.sent = append(s.store.sent[:i], s.store.sent[i+1:]...)
		} else {
			_, i := s.store.findRecv(ref)
			s.store.recv = append(s.store.recv[:i], s.store.recv[i+1:]...)
		}
	}
	writeSuccess(w, "Fax(es) deleted")
}

func (s *Server) stopFax(w http.ResponseWriter, r *http.Request) {
	ref := r.PostFormValue("sFaxDetailsID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	f, _ := s.store.findSent(ref)
	if f == nil {
		writeFailure(w, "Invalid Fax Details ID: "+ref)
		return
	}
	if f.Status != "Queued" {
		writeFailure(w, "Fax cannot be stopped: already "+f.Status)
		return
	}
	f.Status = "Failed"
	f.ErrorCode = "Fax Cancelled"
	writeSuccess(w, "Fax Cancelled")
}

func (s *Server) updateViewedStatus(w http.ResponseWriter, r *http.Request) {
	ref := faxRef(r, "")
	viewed := r.PostFormValue("sMarkasViewed") == "Y"

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	switch r.PostFormValue("sDirection") {
	case "OUT":
		f, _ := s.store.findSent(ref)
		if f == nil {
			writeFailure(w, "Fax not found: "+ref)
			return
		}
		f.Viewed = viewed
	case "IN":
		f, _ := s.store.findRecv(ref)
		if f == nil {
			writeFailure(w, "Fax not found: "+ref)
			return
		}
		f.viewed = viewed
	default:
		writeFailure(w, "Invalid Direction")
		return
	}
	writeSuccess(w, "Viewed status updated")
}

func (s *Server) getFaxUsage(w http.ResponseWriter, r *http.Request) {
	start, end, ok := period(r)
	if !ok {
		writeFailure(w, "Invalid Period")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	faxes, pages := 0, 0
	billing := ""
	for _, f := range s.store.sent {
		if !inRange(f.QueuedAt, start, end) {
			continue
		}
		faxes++
		pages += len(f.Files) * len(f.To)
		billing = f.CallerID
	}

	label := api.PeriodAll
	if start != "" {
		label = start + "-" + end
	}
	writeSuccess(w, []map[string]any{{
		"Period":        label,
		"ClientName":    "srfaxtest",
		"SubUserID":     "0",
		"BillingNumber": billing,
		"NumberOfFaxes": faxes,
		"NumberOfPages": pages,
	}})
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
