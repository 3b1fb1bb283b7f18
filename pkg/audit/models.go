// Package audit maintains the append-only change trail. Every mutation of a
// governed table lands here as one entry with before/after snapshots; entries
// are never updated or rewritten, only appended and eventually aged out by
// retention.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/knowbase/faqprov/pkg/dbtypes"
	"github.com/knowbase/faqprov/pkg/faqerrors"
	"github.com/knowbase/faqprov/pkg/projection"
)

// Action classifies what happened to the audited record.
type Action string

const (
	ActionInsert              Action = "INSERT"
	ActionUpdate              Action = "UPDATE"
	ActionDelete              Action = "DELETE"
	ActionInvalidate          Action = "INVALIDATE"
	ActionRestore             Action = "RESTORE"
	ActionSelectiveInvalidate Action = "SELECTIVE_INVALIDATE"
)

// ParseAction validates an action tag.
func ParseAction(s string) (Action, bool) {
	switch Action(s) {
	case ActionInsert, ActionUpdate, ActionDelete, ActionInvalidate,
		ActionRestore, ActionSelectiveInvalidate:
		return Action(s), true
	}
	return "", false
}

// Entry is one audit trail record. OldValues and NewValues are flat
// projections of the record before and after the mutation; inserts carry
// only NewValues, deletes only OldValues.
type Entry struct {
	AuditID  string `gorm:"primaryKey;column:audit_id;type:varchar(36)"`
	Table    string `gorm:"column:table_name;index;type:varchar(64);not null"`
	RecordID string `gorm:"column:record_id;index;type:varchar(64);not null"`
	Action   Action `gorm:"column:action;type:varchar(32);not null"`

	OldValues dbtypes.JSONAny `gorm:"column:old_values;type:text"`
	NewValues dbtypes.JSONAny `gorm:"column:new_values;type:text"`

	ChangedBy      string  `gorm:"column:changed_by;type:varchar(255);not null"`
	ChangeReason   *string `gorm:"column:change_reason;type:text"`
	DetectionRunID *string `gorm:"column:detection_run_id;index;type:varchar(36)"`

	CreatedAt time.Time `gorm:"column:changed_at;index;not null"`
}

func (Entry) TableName() string { return "faq_audit_log" }

// NewEntry constructs an audit entry with a fresh identifier.
func NewEntry(table, recordID string, action Action, changedBy string) (*Entry, error) {
	if table == "" {
		return nil, faqerrors.Validationf("table_name", "must not be empty")
	}
	if recordID == "" {
		return nil, faqerrors.Validationf("record_id", "must not be empty")
	}
	if _, ok := ParseAction(string(action)); !ok {
		return nil, faqerrors.Validationf("action", "unknown action %q", action)
	}
	if changedBy == "" {
		return nil, faqerrors.Validationf("changed_by", "must not be empty")
	}
	return &Entry{
		AuditID:   uuid.NewString(),
		Table:     table,
		RecordID:  recordID,
		Action:    action,
		ChangedBy: changedBy,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Projection returns the entry's flat projection.
func (e *Entry) Projection() projection.Flat {
	m := projection.Flat{}
	projection.SetString(m, "audit_id", e.AuditID)
	projection.SetString(m, "table_name", e.Table)
	projection.SetString(m, "record_id", e.RecordID)
	projection.SetString(m, "action", string(e.Action))
	projection.SetString(m, "changed_by", e.ChangedBy)
	projection.SetOptString(m, "change_reason", e.ChangeReason)
	projection.SetOptString(m, "detection_run_id", e.DetectionRunID)
	projection.SetTime(m, "changed_at", e.CreatedAt)
	if e.OldValues != nil {
		m["old_values"] = e.OldValues
	}
	if e.NewValues != nil {
		m["new_values"] = e.NewValues
	}
	return m
}

// EntryFromProjection reconstructs an entry from its flat projection.
func EntryFromProjection(m projection.Flat) (*Entry, error) {
	auditID, err := projection.String(m, "audit_id")
	if err != nil {
		return nil, err
	}
	table, err := projection.String(m, "table_name")
	if err != nil {
		return nil, err
	}
	recordID, err := projection.String(m, "record_id")
	if err != nil {
		return nil, err
	}
	actionTag, err := projection.String(m, "action")
	if err != nil {
		return nil, err
	}
	action, ok := ParseAction(actionTag)
	if !ok {
		return nil, faqerrors.Validationf("action", "unknown action %q", actionTag)
	}
	changedBy, err := projection.String(m, "changed_by")
	if err != nil {
		return nil, err
	}
	changedAt, err := projection.Time(m, "changed_at")
	if err != nil {
		return nil, err
	}
	changeReason, err := projection.OptString(m, "change_reason")
	if err != nil {
		return nil, err
	}
	runID, err := projection.OptString(m, "detection_run_id")
	if err != nil {
		return nil, err
	}

	e := &Entry{
		AuditID:        auditID,
		Table:          table,
		RecordID:       recordID,
		Action:         action,
		ChangedBy:      changedBy,
		ChangeReason:   changeReason,
		DetectionRunID: runID,
		CreatedAt:      changedAt,
	}
	e.OldValues = snapshotValue(m["old_values"])
	e.NewValues = snapshotValue(m["new_values"])
	return e, nil
}

// snapshotValue accepts either the native JSONAny or the plain map a JSON
// round-trip produces.
func snapshotValue(v any) dbtypes.JSONAny {
	switch s := v.(type) {
	case dbtypes.JSONAny:
		return s
	case map[string]any:
		return s
	}
	return nil
}
