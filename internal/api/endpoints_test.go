package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestQueueFax_FormAndID(t *testing.T) {
	t.Parallel()
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		want := map[string]string{
			"action":         ActionQueueFax,
			"sCallerID":      "5551234567",
			"sSenderEmail":   "fax@example.com",
			"sFaxType":       faxTypeBroadcast,
			"sToFaxNumber":   "15551234567|011385123456789",
			"sFileName_1":    "doc.pdf",
			"sFileContent_1": base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
			"sQueueFaxDate":  "2026-10-19",
			"sQueueFaxTime":  "09:30",
			"sCoverPage":     "Basic",
			"sCPSubject":     "Invoice",
		}
		for k, v := range want {
			if got := r.PostForm.Get(k); got != v {
				t.Errorf("form %s = %q, want %q", k, got, v)
			}
		}
		w.Write([]byte(`{"Status":"Success","Result":42}`))
	})

	id, err := client.QueueFax(context.Background(), &QueueFaxParams{
		CallerID:     "5551234567",
		SenderEmail:  "fax@example.com",
		ToFaxNumbers: []string{"15551234567", "011385123456789"},
		Files:        []File{{Name: "doc.pdf", Content: []byte("%PDF-1.4")}},
		ScheduledAt:  time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		CoverPage:    &CoverPage{Template: "Basic", Subject: "Invoice"},
	})
	if err != nil {
		t.Fatalf("QueueFax() error = %v", err)
	}
	if id != "42" {
		t.Errorf("id = %q, want 42", id)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestQueueFax_SingleType(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostForm.Get("sFaxType"); got != faxTypeSingle {
			t.Errorf("sFaxType = %q, want SINGLE", got)
		}
		if r.PostForm.Has("sQueueFaxDate") {
			t.Error("sQueueFaxDate sent for an unscheduled fax")
		}
		w.Write([]byte(`{"Status":"Success","Result":"0042"}`))
	})

	id, err := client.QueueFax(context.Background(), &QueueFaxParams{ToFaxNumbers: []string{"15551234567"}})
	if err != nil {
		t.Fatalf("QueueFax() error = %v", err)
	}
	if id != "0042" {
		t.Errorf("id = %q, want 0042 unmodified", id)
	}
}

func TestQueueFax_EmptyID(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status":"Success","Result":""}`))
	})

	_, err := client.QueueFax(context.Background(), &QueueFaxParams{ToFaxNumbers: []string{"15551234567"}})
	if !IsMalformed(err) {
		t.Errorf("error = %v, want malformed", err)
	}
}

func TestGetFaxStatus_ObjectAndList(t *testing.T) {
	t.Parallel()
	bodies := map[string]string{
		"object": `{"Status":"Success","Result":{"FileName":"a|42","SentStatus":"Sent","Pages":"3","EpochTime":1700000000}}`,
		"list":   `{"Status":"Success","Result":[{"FileName":"a|42","SentStatus":"Sent","Pages":3,"EpochTime":"1700000000"}]}`,
	}
	for name, body := range bodies {
		body := body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			status, err := client.GetFaxStatus(context.Background(), "42")
			if err != nil {
				t.Fatalf("GetFaxStatus() error = %v", err)
			}
			if status.SentStatus != "Sent" || status.Pages != 3 || status.EpochTime != 1700000000 {
				t.Errorf("status = %+v", status)
			}
		})
	}
}

func TestGetFaxStatus_MissingSentStatus(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status":"Success","Result":{"FileName":"a|42"}}`))
	})

	_, err := client.GetFaxStatus(context.Background(), "42")
	if !IsMalformed(err) {
		t.Errorf("error = %v, want malformed", err)
	}
}

func TestGetMultiFaxStatus_JoinsIDs(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if got := r.PostForm.Get("sFaxDetailsID"); got != "1|2" {
			t.Errorf("sFaxDetailsID = %q, want 1|2", got)
		}
		w.Write([]byte(`{"Status":"Success","Result":[{"SentStatus":"Sent"},{"SentStatus":"Failed"}]}`))
	})

	results, err := client.GetMultiFaxStatus(context.Background(), []string{"1", "2"})
	if err != nil {
		t.Fatalf("GetMultiFaxStatus() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
}

func TestGetFaxOutbox_RangeParams(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("sPeriod") != PeriodRange {
			t.Errorf("sPeriod = %q, want RANGE", r.PostForm.Get("sPeriod"))
		}
		if r.PostForm.Get("sStartDate") != "20260101" || r.PostForm.Get("sEndDate") != "20260131" {
			t.Errorf("dates = %q..%q", r.PostForm.Get("sStartDate"), r.PostForm.Get("sEndDate"))
		}
		w.Write([]byte(`{"Status":"Success","Result":[{"FileName":"x|7","SentStatus":"Sent"}]}`))
	})

	entries, err := client.GetFaxOutbox(context.Background(), &ListParams{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("GetFaxOutbox() error = %v", err)
	}
	if len(entries) != 1 || entries[0].FileName != "x|7" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestGetFaxInbox_EmptyFolder(t *testing.T) {
	t.Parallel()
	for _, result := range []string{`""`, `null`, `[]`} {
		result := result
		t.Run(result, func(t *testing.T) {
			t.Parallel()
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				r.ParseForm()
				if r.PostForm.Get("sPeriod") != PeriodAll {
					t.Errorf("sPeriod = %q, want ALL", r.PostForm.Get("sPeriod"))
				}
				w.Write([]byte(`{"Status":"Success","Result":` + result + `}`))
			})
			entries, err := client.GetFaxInbox(context.Background(), &ListParams{})
			if err != nil {
				t.Fatalf("GetFaxInbox() error = %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("len(entries) = %d, want 0", len(entries))
			}
		})
	}
}

func TestGetFaxInbox_MissingFileName(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status":"Success","Result":[{"CallerID":"5551234567"}]}`))
	})

	_, err := client.GetFaxInbox(context.Background(), &ListParams{})
	if !IsMalformed(err) {
		t.Errorf("error = %v, want malformed", err)
	}
}

func TestRetrieveFax_DecodesContent(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("sFaxDetailsID") != "42" {
			t.Errorf("sFaxDetailsID = %q", r.PostForm.Get("sFaxDetailsID"))
		}
		if r.PostForm.Get("sDirection") != "OUT" || r.PostForm.Get("sFaxFormat") != "TIFF" {
			t.Errorf("direction/format = %q/%q", r.PostForm.Get("sDirection"), r.PostForm.Get("sFaxFormat"))
		}
		writeEnvelope(w, StatusSuccess, base64.StdEncoding.EncodeToString([]byte("II*\x00")))
	})

	content, err := client.RetrieveFax(context.Background(), &RetrieveParams{FaxID: "42", Direction: "OUT", Format: "TIFF"})
	if err != nil {
		t.Fatalf("RetrieveFax() error = %v", err)
	}
	if string(content) != "II*\x00" {
		t.Errorf("content = %q", content)
	}
}

func TestRetrieveFax_NotBase64(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, StatusSuccess, "***")
	})

	_, err := client.RetrieveFax(context.Background(), &RetrieveParams{FaxID: "42", Direction: "IN"})
	if !IsMalformed(err) {
		t.Errorf("error = %v, want malformed", err)
	}
}

func TestDeleteFax_NumberedRefs(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("sFaxDetailsID_1") != "42" {
			t.Errorf("sFaxDetailsID_1 = %q", r.PostForm.Get("sFaxDetailsID_1"))
		}
		if r.PostForm.Get("sFaxFileName_2") != "20260101-1_1|43" {
			t.Errorf("sFaxFileName_2 = %q", r.PostForm.Get("sFaxFileName_2"))
		}
		writeEnvelope(w, StatusSuccess, nil)
	})

	if err := client.DeleteFax(context.Background(), "IN", []string{"42", "20260101-1_1|43"}); err != nil {
		t.Fatalf("DeleteFax() error = %v", err)
	}
}

func TestUpdateViewedStatus_Flag(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("sMarkasViewed") != "N" {
			t.Errorf("sMarkasViewed = %q, want N", r.PostForm.Get("sMarkasViewed"))
		}
		writeEnvelope(w, StatusSuccess, "")
	})

	if err := client.UpdateViewedStatus(context.Background(), "42", "IN", false); err != nil {
		t.Fatalf("UpdateViewedStatus() error = %v", err)
	}
}

func TestGetFaxUsage(t *testing.T) {
	t.Parallel()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Status":"Success","Result":[{"Period":"ALL","NumberOfFaxes":"4","NumberOfPages":9}]}`))
	})

	usage, err := client.GetFaxUsage(context.Background(), &ListParams{})
	if err != nil {
		t.Fatalf("GetFaxUsage() error = %v", err)
	}
	if len(usage) != 1 || usage[0].NumberOfFaxes != 4 || usage[0].NumberOfPages != 9 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestIsFileName(t *testing.T) {
	tests := map[string]bool{
		"42":                          false,
		"":                            false,
		"20260101120000-1_1|31525948": true,
		"abc":                         true,
	}
	for id, want := range tests {
		if got := IsFileName(id); got != want {
			t.Errorf("IsFileName(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestDetailsID(t *testing.T) {
	tests := map[string]string{
		"20260101120000-1_1|31525948": "31525948",
		"31525948":                    "31525948",
		"trailing|":                   "trailing|",
	}
	for name, want := range tests {
		if got := DetailsID(name); got != want {
			t.Errorf("DetailsID(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestID_UnmarshalJSON(t *testing.T) {
	tests := map[string]ID{
		`42`:     "42",
		`"42"`:   "42",
		`null`:   "",
		`"abc1"`: "abc1",
	}
	for raw, want := range tests {
		var id ID
		if err := id.UnmarshalJSON([]byte(raw)); err != nil {
			t.Errorf("UnmarshalJSON(%s) error = %v", raw, err)
			continue
		}
		if id != want {
			t.Errorf("UnmarshalJSON(%s) = %q, want %q", raw, id, want)
		}
	}

	var id ID
	if err := id.UnmarshalJSON([]byte(`{}`)); err == nil {
		t.Error("UnmarshalJSON({}) should fail")
	}
}

func TestInt_UnmarshalJSON(t *testing.T) {
	var n Int
	if err := n.UnmarshalJSON([]byte(`"12"`)); err != nil || n != 12 {
		t.Errorf("quoted: n = %d, err = %v", n, err)
	}
	if err := n.UnmarshalJSON([]byte(`""`)); err != nil || n != 0 {
		t.Errorf("empty: n = %d, err = %v", n, err)
	}
	if err := n.UnmarshalJSON([]byte(`"x"`)); err == nil {
		t.Error("UnmarshalJSON(\"x\") should fail")
	}
	if err := n.UnmarshalJSON([]byte(`7`)); err != nil || n != 7 {
		t.Errorf("bare: n = %d, err = %v", n, err)
	}
}

func TestRemoteError_NotTransport(t *testing.T) {
	var err error = &RemoteError{Action: ActionQueueFax, Message: "x"}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		t.Error("RemoteError matched TransportError")
	}
}
