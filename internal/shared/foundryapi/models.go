package foundryapi

import (
	"encoding/json"
	"strings"
)

// Trial status values
const (
	TrialStatusCreated = "CREATED"
	TrialStatusClosed  = "CLOSED"
)

// MasterPart is read-only reference data. Spec fields are kept as they
// arrive; callers parse them.
type MasterPart struct {
	ID                  int             `json:"id,omitempty"`
	PatternCode         string          `json:"pattern_code"`
	PartName            string          `json:"part_name"`
	MaterialGrade       string          `json:"material_grade"`
	ChemicalComposition json.RawMessage `json:"chemical_composition,omitempty"`
	Tensile             string          `json:"tensile"`
	MicroStructure      string          `json:"micro_structure"`
	Hardness            string          `json:"hardness"`
	Xray                string          `json:"xray"`
	MPI                 string          `json:"mpi"`
}

// ChemicalInput returns the composition in a shape the chemical parser
// accepts: a JSON string unwraps to its text, anything else stays raw.
func (m MasterPart) ChemicalInput() any {
	raw := strings.TrimSpace(string(m.ChemicalComposition))
	if raw == "" || raw == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		return s
	}
	return json.RawMessage(raw)
}

// Progress is one pending department assignment.
type Progress struct {
	TrialID        string `json:"trial_id"`
	DepartmentID   int    `json:"department_id"`
	Username       string `json:"username"`
	ApprovalStatus string `json:"approval_status"`
}

// UpdateDepartmentRequest advances a trial to the next department.
type UpdateDepartmentRequest struct {
	TrialID          string `json:"trial_id"`
	NextDepartmentID int    `json:"next_department_id"`
	Username         string `json:"username"`
	Role             string `json:"role"`
	Remarks          string `json:"remarks"`
}

// UpdateDepartmentRoleRequest marks the role-level step of the current
// department complete.
type UpdateDepartmentRoleRequest struct {
	TrialID             string `json:"trial_id"`
	CurrentDepartmentID int    `json:"current_department_id"`
	Username            string `json:"username"`
	Role                string `json:"role"`
	ApprovalStatus      string `json:"approval_status"`
}

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadRequest tags files with their trial and uploader.
type UploadRequest struct {
	TrialID    string
	Category   string
	UploadedBy string
	Remarks    string
	Files      []UploadFile
}

// UploadedDocument is returned for each stored file.
type UploadedDocument struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}
