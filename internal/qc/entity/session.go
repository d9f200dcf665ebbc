package entity

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/draft"
)

// Attachment is a file held in the session until submit uploads it.
type Attachment struct {
	Section     string    `json:"section"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Data        []byte    `json:"data,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

// GroupMetadata is the remarks/attachment pair shared by a block of rows.
type GroupMetadata struct {
	Remarks    string `json:"remarks"`
	Attachment string `json:"attachment,omitempty"`
}

// FormSession is the server-side state of one open inspection screen.
type FormSession struct {
	ID           string   `json:"id"`
	Kind         FormKind `json:"kind"`
	TrialID      string   `json:"trial_id,omitempty"`
	Username     string   `json:"username"`
	Name         string   `json:"name,omitempty"`
	Role         string   `json:"role"`
	DepartmentID int      `json:"department_id"`

	EditEnabled  bool                   `json:"edit_enabled"`
	RecordExists bool                   `json:"record_exists"`
	Draft        draft.Machine          `json:"draft"`
	Form         json.RawMessage        `json:"form"`
	Attachments  map[string]*Attachment `json:"attachments,omitempty"`
	PatternCode  string                 `json:"pattern_code,omitempty"`
	PartName     string                 `json:"part_name,omitempty"`
	PublicIP     string                 `json:"public_ip,omitempty"`
	ClientIP     string                 `json:"client_ip,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// IsReviewer reports whether the session acts on an existing trial as HOD.
func (s *FormSession) IsReviewer() bool {
	return IsHOD(s.Role) && s.TrialID != ""
}

// AttachmentList returns held attachments without their bytes, ordered by
// section.
func (s *FormSession) AttachmentList() []Attachment {
	out := make([]Attachment, 0, len(s.Attachments))
	for _, a := range s.Attachments {
		meta := *a
		meta.Data = nil
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Section < out[j].Section })
	return out
}
