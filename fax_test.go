package srfax

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vingd/srfax-go/internal/api"
)

func TestFaxID_DetailsID(t *testing.T) {
	assert.Equal(t, "42", FaxID("42").DetailsID())
	assert.Equal(t, "31525948", FaxID("20240101120000-1234-5_1|31525948").DetailsID())
	assert.Equal(t, "42", FaxID("42").String())
}

func TestParseState_Unknown(t *testing.T) {
	_, ok := parseState("Teleported")
	assert.False(t, ok)

	state, ok := parseState("  sent ")
	assert.True(t, ok)
	assert.Equal(t, StateDelivered, state)
}

func TestTimestamp(t *testing.T) {
	epoch := timestamp(api.Int(1700000000), "ignored")
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), epoch)

	formatted := timestamp(0, "Mar 05/2024 02:15 PM")
	assert.Equal(t, time.Date(2024, 3, 5, 14, 15, 0, 0, time.UTC), formatted)

	assert.True(t, timestamp(0, "").IsZero())
	assert.True(t, timestamp(0, "yesterday").IsZero())
}

func TestDocument_Load(t *testing.T) {
	path := writeDoc(t, "scan.tiff", []byte("II*"))

	f, err := FileDocument(path).load(0)
	require.NoError(t, err)
	assert.Equal(t, "scan.tiff", f.Name)
	assert.Equal(t, []byte("II*"), f.Content)

	named := Document{Name: "renamed.tif", Path: path}
	f, err = named.load(0)
	require.NoError(t, err)
	assert.Equal(t, "renamed.tif", f.Name)

	f, err = BytesDocument("note.txt", []byte("hello")).load(1)
	require.NoError(t, err)
	assert.Equal(t, "note.txt", f.Name)

	_, err = BytesDocument("note.txt", nil).load(2)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "docs[2]", valErr.Field)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	both := Document{Name: "note.txt", Path: path, Content: []byte("hello")}
	_, err = both.load(3)
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "docs[3]", valErr.Field)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestFromInbox(t *testing.T) {
	e := fromInbox(&api.InboxEntry{
		FileName:      "a|1",
		ReceiveStatus: "Ok",
		Date:          "Jan 02/2024 09:00 AM",
		CallerID:      "5551234567",
		Pages:         3,
		Size:          1024,
		ViewedStatus:  "Y",
	})

	assert.Equal(t, FaxID("a|1"), e.ID)
	assert.Equal(t, Inbound, e.Direction)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), e.Timestamp)
	assert.Equal(t, 3, e.Pages)
	assert.True(t, e.Available)
	assert.True(t, e.Viewed)
}

func TestFromUsage(t *testing.T) {
	u := fromUsage(&api.UsageEntry{Period: "ALL", ClientName: "Acme", NumberOfFaxes: 4, NumberOfPages: 9})
	assert.Equal(t, Usage{Period: "ALL", ClientName: "Acme", Faxes: 4, Pages: 9}, u)
}
