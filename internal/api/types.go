package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Action names understood by the service.
const (
	ActionQueueFax           = "Queue_Fax"
	ActionGetFaxStatus       = "Get_FaxStatus"
	ActionGetMultiFaxStatus  = "Get_MultiFaxStatus"
	ActionGetFaxInbox        = "Get_Fax_Inbox"
	ActionGetFaxOutbox       = "Get_Fax_Outbox"
	ActionRetrieveFax        = "Retrieve_Fax"
	ActionDeleteFax          = "Delete_Fax"
	ActionStopFax            = "Stop_Fax"
	ActionUpdateViewedStatus = "Update_Viewed_Status"
	ActionGetFaxUsage        = "Get_Fax_Usage"
)

// StatusSuccess is the envelope Status of a successful call.
const StatusSuccess = "Success"

// StatusFailed is the envelope Status the service uses for rejected calls.
const StatusFailed = "Failed"

// Envelope is the top-level shape of every response.
type Envelope struct {
	Status string          `json:"Status"`
	Result json.RawMessage `json:"Result"`
}

// ID is an identifier the service may send either as a JSON string or a
// JSON number. The textual form is kept exactly as sent.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier is neither string nor number: %s", data)
	}
	*id = ID(n.String())
	return nil
}

// Int is an integer the service may quote. Empty strings decode as zero.
type Int int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		*n = Int(v)
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Int(v)
	return nil
}

// FaxStatusResult is one element of the Get_FaxStatus / Get_MultiFaxStatus Result.
type FaxStatusResult struct {
	FileName    string `json:"FileName"`
	SentStatus  string `json:"SentStatus"`
	AccountCode string `json:"AccountCode"`
	DateQueued  string `json:"DateQueued"`
	DateSent    string `json:"DateSent"`
	EpochTime   Int    `json:"EpochTime"`
	ToFaxNumber string `json:"ToFaxNumber"`
	Pages       Int    `json:"Pages"`
	Duration    Int    `json:"Duration"`
	RemoteID    string `json:"RemoteID"`
	ErrorCode   string `json:"ErrorCode"`
	Size        Int    `json:"Size"`
}

// InboxEntry is one element of the Get_Fax_Inbox Result.
type InboxEntry struct {
	FileName      string `json:"FileName"`
	ReceiveStatus string `json:"ReceiveStatus"`
	Date          string `json:"Date"`
	EpochTime     Int    `json:"EpochTime"`
	CallerID      string `json:"CallerID"`
	RemoteID      string `json:"RemoteID"`
	Pages         Int    `json:"Pages"`
	Size          Int    `json:"Size"`
	ViewedStatus  string `json:"ViewedStatus"`
}

// OutboxEntry is one element of the Get_Fax_Outbox Result.
type OutboxEntry struct {
	FileName    string `json:"FileName"`
	SentStatus  string `json:"SentStatus"`
	DateQueued  string `json:"DateQueued"`
	DateSent    string `json:"DateSent"`
	EpochTime   Int    `json:"EpochTime"`
	ToFaxNumber string `json:"ToFaxNumber"`
	Pages       Int    `json:"Pages"`
	Duration    Int    `json:"Duration"`
	RemoteID    string `json:"RemoteID"`
	ErrorCode   string `json:"ErrorCode"`
	AccountCode string `json:"AccountCode"`
	Subject     string `json:"Subject"`
	Size        Int    `json:"Size"`
}

// UsageEntry is one element of the Get_Fax_Usage Result.
type UsageEntry struct {
	Period        string `json:"Period"`
	ClientName    string `json:"ClientName"`
	SubUserID     string `json:"SubUserID"`
	BillingNumber string `json:"BillingNumber"`
	NumberOfFaxes Int    `json:"NumberOfFaxes"`
	NumberOfPages Int    `json:"NumberOfPages"`
}

// File is one document attached to a Queue_Fax request.
type File struct {
	Name    string
	Content []byte
}

// CoverPage selects one of the account's cover page templates.
type CoverPage struct {
	Template string // Basic, Standard, Company or Personal
	Subject  string
	Comments string
}

// QueueFaxParams are the inputs of Queue_Fax. ToFaxNumbers are already in
// the service's dialing format.
type QueueFaxParams struct {
	CallerID     string
	SenderEmail  string
	AccountCode  string
	ToFaxNumbers []string
	Files        []File
	ScheduledAt  time.Time
	CoverPage    *CoverPage
	NotifyURL    string
}

// Period values for listing and usage queries.
const (
	PeriodAll   = "ALL"
	PeriodRange = "RANGE"
)

// ListParams are the inputs of Get_Fax_Inbox, Get_Fax_Outbox and Get_Fax_Usage.
type ListParams struct {
	Start           time.Time
	End             time.Time
	ViewedStatus    string // inbox only: READ, UNREAD or ALL
	IncludeSubUsers bool
}

// RetrieveParams are the inputs of Retrieve_Fax.
type RetrieveParams struct {
	FaxID      string
	Direction  string
	Format     string
	MarkViewed bool
}
