package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	faxTypeSingle    = "SINGLE"
	faxTypeBroadcast = "BROADCAST"

	// MaxFiles is the number of documents a single Queue_Fax accepts, and the
	// number of faxes a single Delete_Fax removes.
	MaxFiles = 5

	dateFormat      = "20060102"
	queueDateFormat = "2006-01-02"
	queueTimeFormat = "15:04"
)

// QueueFax queues a fax and returns the FaxDetailsID assigned by the service.
func (c *Client) QueueFax(ctx context.Context, p *QueueFaxParams) (string, error) {
	faxType := faxTypeSingle
	if len(p.ToFaxNumbers) > 1 {
		faxType = faxTypeBroadcast
	}

	params := url.Values{}
	params.Set("sCallerID", p.CallerID)
	params.Set("sSenderEmail", p.SenderEmail)
	params.Set("sFaxType", faxType)
	params.Set("sToFaxNumber", strings.Join(p.ToFaxNumbers, "|"))
	params.Set("sAccountCode", p.AccountCode)

	if !p.ScheduledAt.IsZero() {
		params.Set("sQueueFaxDate", p.ScheduledAt.Format(queueDateFormat))
		params.Set("sQueueFaxTime", p.ScheduledAt.Format(queueTimeFormat))
	}
	if p.CoverPage != nil {
		params.Set("sCoverPage", p.CoverPage.Template)
		params.Set("sCPSubject", p.CoverPage.Subject)
		params.Set("sCPComments", p.CoverPage.Comments)
	}
	if p.NotifyURL != "" {
		params.Set("sNotifyURL", p.NotifyURL)
	}

	for i, f := range p.Files {
		n := strconv.Itoa(i + 1)
		params.Set("sFileName_"+n, f.Name)
		params.Set("sFileContent_"+n, base64.StdEncoding.EncodeToString(f.Content))
	}

	var id ID
	err := c.Do(ctx, ActionQueueFax, params, func(result json.RawMessage) error {
		if err := json.Unmarshal(result, &id); err != nil {
			return err
		}
		if id == "" {
			return errors.New("empty fax id in Result")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return string(id), nil
}

// GetFaxStatus returns the status of a single sent fax.
func (c *Client) GetFaxStatus(ctx context.Context, faxID string) (*FaxStatusResult, error) {
	params := url.Values{}
	params.Set("sFaxDetailsID", faxID)

	var results []FaxStatusResult
	err := c.Do(ctx, ActionGetFaxStatus, params, func(result json.RawMessage) error {
		var err error
		if results, err = decodeStatuses(result); err != nil {
			return err
		}
		if len(results) != 1 {
			return fmt.Errorf("expected one status record, got %d", len(results))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

// GetMultiFaxStatus returns the status of several sent faxes in one call.
func (c *Client) GetMultiFaxStatus(ctx context.Context, faxIDs []string) ([]FaxStatusResult, error) {
	params := url.Values{}
	params.Set("sFaxDetailsID", strings.Join(faxIDs, "|"))

	var results []FaxStatusResult
	err := c.Do(ctx, ActionGetMultiFaxStatus, params, func(result json.RawMessage) error {
		var err error
		results, err = decodeStatuses(result)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetFaxInbox lists received faxes.
func (c *Client) GetFaxInbox(ctx context.Context, p *ListParams) ([]InboxEntry, error) {
	params := listValues(p)
	if p.ViewedStatus != "" {
		params.Set("sViewedStatus", p.ViewedStatus)
	}

	var entries []InboxEntry
	err := c.Do(ctx, ActionGetFaxInbox, params, func(result json.RawMessage) error {
		if err := decodeList(result, &entries); err != nil {
			return err
		}
		for i := range entries {
			if entries[i].FileName == "" {
				return fmt.Errorf("FileName missing in entry %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetFaxOutbox lists sent faxes.
func (c *Client) GetFaxOutbox(ctx context.Context, p *ListParams) ([]OutboxEntry, error) {
	var entries []OutboxEntry
	err := c.Do(ctx, ActionGetFaxOutbox, listValues(p), func(result json.RawMessage) error {
		if err := decodeList(result, &entries); err != nil {
			return err
		}
		for i := range entries {
			if entries[i].FileName == "" {
				return fmt.Errorf("FileName missing in entry %d", i)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetFaxUsage returns account usage per billing period.
func (c *Client) GetFaxUsage(ctx context.Context, p *ListParams) ([]UsageEntry, error) {
	var entries []UsageEntry
	err := c.Do(ctx, ActionGetFaxUsage, listValues(p), func(result json.RawMessage) error {
		return decodeList(result, &entries)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// RetrieveFax downloads a fax document and returns its decoded bytes.
func (c *Client) RetrieveFax(ctx context.Context, p *RetrieveParams) ([]byte, error) {
	params := url.Values{}
	setFaxRef(params, "", p.FaxID)
	params.Set("sDirection", p.Direction)
	if p.Format != "" {
		params.Set("sFaxFormat", p.Format)
	}
	if p.MarkViewed {
		params.Set("sMarkasViewed", "Y")
	}

	var content []byte
	err := c.Do(ctx, ActionRetrieveFax, params, func(result json.RawMessage) error {
		var encoded string
		if err := json.Unmarshal(result, &encoded); err != nil {
			return err
		}
		if encoded == "" {
			return errors.New("empty file content")
		}
		var err error
		if content, err = base64.StdEncoding.DecodeString(encoded); err != nil {
			return fmt.Errorf("file content is not base64: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// DeleteFax deletes faxes from one folder. Callers keep len(faxIDs) within MaxFiles.
func (c *Client) DeleteFax(ctx context.Context, direction string, faxIDs []string) error {
	params := url.Values{}
	params.Set("sDirection", direction)
	for i, id := range faxIDs {
		setFaxRef(params, "_"+strconv.Itoa(i+1), id)
	}
	return c.Do(ctx, ActionDeleteFax, params, nil)
}

// StopFax cancels a fax that has not been sent yet.
func (c *Client) StopFax(ctx context.Context, faxID string) error {
	params := url.Values{}
	params.Set("sFaxDetailsID", faxID)
	return c.Do(ctx, ActionStopFax, params, nil)
}

// UpdateViewedStatus marks a fax as read or unread.
func (c *Client) UpdateViewedStatus(ctx context.Context, faxID, direction string, viewed bool) error {
	params := url.Values{}
	setFaxRef(params, "", faxID)
	params.Set("sDirection", direction)
	if viewed {
		params.Set("sMarkasViewed", "Y")
	} else {
		params.Set("sMarkasViewed", "N")
	}
	return c.Do(ctx, ActionUpdateViewedStatus, params, nil)
}

func listValues(p *ListParams) url.Values {
	params := url.Values{}
	if p.Start.IsZero() && p.End.IsZero() {
		params.Set("sPeriod", PeriodAll)
	} else {
		params.Set("sPeriod", PeriodRange)
		params.Set("sStartDate", p.Start.Format(dateFormat))
		params.Set("sEndDate", p.End.Format(dateFormat))
	}
	if p.IncludeSubUsers {
		params.Set("sIncludeSubUsers", "Y")
	}
	return params
}

// decodeList decodes a listing Result. An empty folder comes back as
// "", null or [].
func decodeList(raw json.RawMessage, out any) error {
	switch strings.TrimSpace(string(raw)) {
	case `""`, "null":
		return nil
	}
	return json.Unmarshal(raw, out)
}

// decodeStatuses accepts a single status object or a list of them.
func decodeStatuses(raw json.RawMessage) ([]FaxStatusResult, error) {
	var list []FaxStatusResult
	if strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
	} else {
		var one FaxStatusResult
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, err
		}
		list = []FaxStatusResult{one}
	}
	for i := range list {
		if list[i].SentStatus == "" {
			return nil, fmt.Errorf("SentStatus missing in record %d", i)
		}
	}
	return list, nil
}

// setFaxRef addresses a fax either by its FaxDetailsID or, for ids that
// are full file names ("20240101120000-1234-5_1|31525948"), by file name.
func setFaxRef(params url.Values, suffix, faxID string) {
	if IsFileName(faxID) {
		params.Set("sFaxFileName"+suffix, faxID)
		return
	}
	params.Set("sFaxDetailsID"+suffix, faxID)
}

// IsFileName reports whether id is a fax file name rather than a numeric
// FaxDetailsID.
func IsFileName(id string) bool {
	for _, r := range id {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

// DetailsID extracts the FaxDetailsID from a file name of the form
// "<name>|<id>". Names without a separator are returned unchanged.
func DetailsID(fileName string) string {
	if i := strings.LastIndexByte(fileName, '|'); i >= 0 && i < len(fileName)-1 {
		return fileName[i+1:]
	}
	return fileName
}
