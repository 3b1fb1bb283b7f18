package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateChecksum(t *testing.T) {
	valid := strings.Repeat("ab12", 16)
	require.NoError(t, ValidateChecksum("content_checksum", valid))

	tests := []struct {
		name     string
		checksum string
	}{
		{"too short", strings.Repeat("a", 63)},
		{"too long", strings.Repeat("a", 65)},
		{"empty", ""},
		{"uppercase hex", strings.Repeat("A", 64)},
		{"non-hex char", strings.Repeat("a", 63) + "g"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, ValidateChecksum("content_checksum", tc.checksum))
		})
	}
}

func TestNewRecordValidatesDigest(t *testing.T) {
	_, err := NewRecord("nothex")
	assert.Error(t, err)

	record, err := NewRecord(strings.Repeat("0", 64))
	require.NoError(t, err)
	assert.Equal(t, StatusActive, record.Status)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"active", "archived", "deleted"} {
		parsed, ok := ParseStatus(s)
		assert.True(t, ok)
		assert.Equal(t, Status(s), parsed)
	}
	_, ok := ParseStatus("bogus")
	assert.False(t, ok)
}

func TestRecordProjectionRoundTrip(t *testing.T) {
	record, err := NewRecord(strings.Repeat("f", 64))
	require.NoError(t, err)
	title := "Eligibility rules"
	fileName := "handbook.pdf"
	page := int64(12)
	record.Title = &title
	record.FileName = &fileName
	record.PageNumber = &page

	got, err := FromProjection(record.Projection())
	require.NoError(t, err)
	assert.Equal(t, record.Checksum, got.Checksum)
	assert.Equal(t, record.Status, got.Status)
	require.NotNil(t, got.Title)
	assert.Equal(t, title, *got.Title)
	require.NotNil(t, got.PageNumber)
	assert.Equal(t, page, *got.PageNumber)
}

func TestFromProjectionRejectsUnknownStatus(t *testing.T) {
	record, err := NewRecord(strings.Repeat("f", 64))
	require.NoError(t, err)
	m := record.Projection()
	m["status"] = "nonsense"
	_, err = FromProjection(m)
	assert.Error(t, err)
}
