package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	srfax "github.com/vingd/srfax-go"
)

// printer writes command results as JSON or YAML.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(format string, w io.Writer) (*printer, error) {
	switch format {
	case "json", "yaml":
		return &printer{format: format, w: w}, nil
	}
	return nil, fmt.Errorf("unknown output format %q (want json or yaml)", format)
}

func (p *printer) print(v any) error {
	if p.format == "yaml" {
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type QueueOutput struct {
	ID string `json:"id" yaml:"id"`
}

type StatusOutput struct {
	ID          string `json:"id" yaml:"id"`
	State       string `json:"state" yaml:"state"`
	StatusText  string `json:"statusText" yaml:"statusText"`
	ToNumber    string `json:"toNumber,omitempty" yaml:"toNumber,omitempty"`
	Pages       int    `json:"pages" yaml:"pages"`
	QueuedAt    string `json:"queuedAt,omitempty" yaml:"queuedAt,omitempty"`
	SentAt      string `json:"sentAt,omitempty" yaml:"sentAt,omitempty"`
	ErrorText   string `json:"error,omitempty" yaml:"error,omitempty"`
	AccountCode string `json:"accountCode,omitempty" yaml:"accountCode,omitempty"`
}

type EntryOutput struct {
	ID           string `json:"id" yaml:"id"`
	Direction    string `json:"direction" yaml:"direction"`
	RemoteNumber string `json:"remoteNumber" yaml:"remoteNumber"`
	Timestamp    string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Pages        int    `json:"pages" yaml:"pages"`
	Available    bool   `json:"available" yaml:"available"`
	Viewed       bool   `json:"viewed" yaml:"viewed"`
	Status       string `json:"status" yaml:"status"`
}

type UsageOutput struct {
	Period        string `json:"period" yaml:"period"`
	ClientName    string `json:"clientName" yaml:"clientName"`
	BillingNumber string `json:"billingNumber" yaml:"billingNumber"`
	Faxes         int    `json:"faxes" yaml:"faxes"`
	Pages         int    `json:"pages" yaml:"pages"`
}

type FileOutput struct {
	ID     string `json:"id" yaml:"id"`
	Format string `json:"format" yaml:"format"`
	Path   string `json:"path" yaml:"path"`
	Bytes  int    `json:"bytes" yaml:"bytes"`
}

type AckOutput struct {
	Success bool `json:"success" yaml:"success"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func statusOutput(s *srfax.FaxStatus) StatusOutput {
	return StatusOutput{
		ID:          s.ID.String(),
		State:       string(s.State),
		StatusText:  s.StatusText,
		ToNumber:    s.ToNumber,
		Pages:       s.Pages,
		QueuedAt:    formatTime(s.QueuedAt),
		SentAt:      formatTime(s.SentAt),
		ErrorText:   s.ErrorText,
		AccountCode: s.AccountCode,
	}
}

func entryOutputs(entries []srfax.FaxListEntry) []EntryOutput {
	out := make([]EntryOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntryOutput{
			ID:           e.ID.String(),
			Direction:    string(e.Direction),
			RemoteNumber: e.RemoteNumber,
			Timestamp:    formatTime(e.Timestamp),
			Pages:        e.Pages,
			Available:    e.Available,
			Viewed:       e.Viewed,
			Status:       e.StatusText,
		})
	}
	return out
}

func usageOutputs(usage []srfax.Usage) []UsageOutput {
	out := make([]UsageOutput, 0, len(usage))
	for _, u := range usage {
		out = append(out, UsageOutput{
			Period:        u.Period,
			ClientName:    u.ClientName,
			BillingNumber: u.BillingNumber,
			Faxes:         u.Faxes,
			Pages:         u.Pages,
		})
	}
	return out
}
