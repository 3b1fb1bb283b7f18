// Package content models content-addressed source records. The checksum is
// THE identity: two contents with the same digest are identical regardless of
// file-level metadata. Location fields are for human reference only and never
// participate in equality or change detection.
package content

import (
	"time"

	"github.com/knowbase/faqprov/pkg/faqerrors"
	"github.com/knowbase/faqprov/pkg/projection"
)

// ChecksumLength is the required digest length (SHA-256, hex encoded).
const ChecksumLength = 64

// Record is the master content record, keyed by content checksum.
type Record struct {
	Checksum  string    `gorm:"primaryKey;column:content_checksum;type:varchar(64)"`
	Status    Status    `gorm:"column:status;index;not null;default:active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	// Content properties.
	FileType      *string `gorm:"column:file_type"`
	ContentFormat *string `gorm:"column:content_format"`
	Title         *string `gorm:"column:title"`
	WordCount     *int64  `gorm:"column:word_count"`
	CharCount     *int64  `gorm:"column:char_count"`
	Domain        *string `gorm:"column:domain;index"`
	Service       *string `gorm:"column:service"`

	// Location metadata, descriptive only.
	FileName       *string `gorm:"column:file_name"`
	PageNumber     *int64  `gorm:"column:page_number"`
	SectionName    *string `gorm:"column:section_name"`
	URL            *string `gorm:"column:url"`
	Breadcrumb     *string `gorm:"column:breadcrumb"`
	SourceFilePath *string `gorm:"column:source_file_path"`
	FileVersion    *string `gorm:"column:file_version"`

	// Content storage.
	MarkdownFilePath *string `gorm:"column:markdown_file_path"`
	ContentText      *string `gorm:"column:content_text;type:text"`
}

// TableName returns the GORM table name.
func (Record) TableName() string { return "content_checksums" }

// ValidateChecksum checks the digest shape: exactly 64 lowercase hex chars.
func ValidateChecksum(field, checksum string) error {
	if len(checksum) != ChecksumLength {
		return faqerrors.Validationf(field, "must be %d chars, got %d", ChecksumLength, len(checksum))
	}
	for _, c := range checksum {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return faqerrors.Validationf(field, "must be lowercase hex, got %q", c)
		}
	}
	return nil
}

// NewRecord constructs a content record from a pre-computed digest. The
// digest is the only locally checkable invariant; all other fields are
// descriptive and may be set directly on the returned record.
func NewRecord(checksum string) (*Record, error) {
	if err := ValidateChecksum("content_checksum", checksum); err != nil {
		return nil, err
	}
	return &Record{
		Checksum:  checksum,
		Status:    StatusActive,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Projection returns the flat key-value form of the record.
func (r *Record) Projection() projection.Flat {
	m := projection.Flat{}
	projection.SetString(m, "content_checksum", r.Checksum)
	projection.SetString(m, "status", string(r.Status))
	projection.SetTime(m, "created_at", r.CreatedAt)
	projection.SetOptString(m, "file_type", r.FileType)
	projection.SetOptString(m, "content_format", r.ContentFormat)
	projection.SetOptString(m, "title", r.Title)
	projection.SetOptInt(m, "word_count", r.WordCount)
	projection.SetOptInt(m, "char_count", r.CharCount)
	projection.SetOptString(m, "domain", r.Domain)
	projection.SetOptString(m, "service", r.Service)
	projection.SetOptString(m, "file_name", r.FileName)
	projection.SetOptInt(m, "page_number", r.PageNumber)
	projection.SetOptString(m, "section_name", r.SectionName)
	projection.SetOptString(m, "url", r.URL)
	projection.SetOptString(m, "breadcrumb", r.Breadcrumb)
	projection.SetOptString(m, "source_file_path", r.SourceFilePath)
	projection.SetOptString(m, "file_version", r.FileVersion)
	projection.SetOptString(m, "markdown_file_path", r.MarkdownFilePath)
	projection.SetOptString(m, "content_text", r.ContentText)
	return m
}

// FromProjection reconstructs a record from its flat projection.
func FromProjection(m projection.Flat) (*Record, error) {
	checksum, err := projection.String(m, "content_checksum")
	if err != nil {
		return nil, err
	}
	r, err := NewRecord(checksum)
	if err != nil {
		return nil, err
	}
	statusTag, err := projection.String(m, "status")
	if err != nil {
		return nil, err
	}
	status, ok := ParseStatus(statusTag)
	if !ok {
		return nil, faqerrors.Validationf("status", "unknown status %q", statusTag)
	}
	r.Status = status
	if r.CreatedAt, err = projection.Time(m, "created_at"); err != nil {
		return nil, err
	}
	if r.FileType, err = projection.OptString(m, "file_type"); err != nil {
		return nil, err
	}
	if r.ContentFormat, err = projection.OptString(m, "content_format"); err != nil {
		return nil, err
	}
	if r.Title, err = projection.OptString(m, "title"); err != nil {
		return nil, err
	}
	if r.WordCount, err = projection.OptInt(m, "word_count"); err != nil {
		return nil, err
	}
	if r.CharCount, err = projection.OptInt(m, "char_count"); err != nil {
		return nil, err
	}
	if r.Domain, err = projection.OptString(m, "domain"); err != nil {
		return nil, err
	}
	if r.Service, err = projection.OptString(m, "service"); err != nil {
		return nil, err
	}
	if r.FileName, err = projection.OptString(m, "file_name"); err != nil {
		return nil, err
	}
	if r.PageNumber, err = projection.OptInt(m, "page_number"); err != nil {
		return nil, err
	}
	if r.SectionName, err = projection.OptString(m, "section_name"); err != nil {
		return nil, err
	}
	if r.URL, err = projection.OptString(m, "url"); err != nil {
		return nil, err
	}
	if r.Breadcrumb, err = projection.OptString(m, "breadcrumb"); err != nil {
		return nil, err
	}
	if r.SourceFilePath, err = projection.OptString(m, "source_file_path"); err != nil {
		return nil, err
	}
	if r.FileVersion, err = projection.OptString(m, "file_version"); err != nil {
		return nil, err
	}
	if r.MarkdownFilePath, err = projection.OptString(m, "markdown_file_path"); err != nil {
		return nil, err
	}
	if r.ContentText, err = projection.OptString(m, "content_text"); err != nil {
		return nil, err
	}
	return r, nil
}
