package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/forms"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/gin-gonic/gin"
)

// maxAttachmentSize limits one held file.
const maxAttachmentSize = 20 << 20

// FormHandler serves form sessions.
type FormHandler struct {
	svc *service.FormService
}

func NewFormHandler(svc *service.FormService) *FormHandler {
	return &FormHandler{svc: svc}
}

// Kinds lists the form kinds with their departments.
// GET /api/v1/forms
func (h *FormHandler) Kinds(c *gin.Context) {
	type kindInfo struct {
		Kind         entity.FormKind `json:"kind"`
		Title        string          `json:"title"`
		DepartmentID int             `json:"department_id"`
		Department   string          `json:"department"`
	}
	items := make([]kindInfo, 0, len(entity.FormKinds))
	for _, k := range entity.FormKinds {
		items = append(items, kindInfo{
			Kind:         k,
			Title:        k.Title(),
			DepartmentID: k.Department(),
			Department:   entity.DepartmentName(k.Department()),
		})
	}
	Success(c, gin.H{"items": items})
}

// Schema returns the layout of one form kind.
// GET /api/v1/forms/:kind/schema
func (h *FormHandler) Schema(c *gin.Context) {
	schema, err := forms.SchemaFor(entity.FormKind(c.Param("kind")))
	if err != nil {
		NotFound(c, err.Error())
		return
	}
	Success(c, schema)
}

type openSessionRequest struct {
	TrialID string `json:"trial_id"`
}

// Open starts a session.
// POST /api/v1/forms/:kind/sessions
func (h *FormHandler) Open(c *gin.Context) {
	kind, ok := entity.ParseFormKind(c.Param("kind"))
	if !ok {
		NotFound(c, "unknown form kind: "+c.Param("kind"))
		return
	}
	var req openSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	if req.TrialID == "" {
		req.TrialID = c.Query("trial_id")
	}

	view, err := h.svc.OpenSession(requestContext(c), GetActor(c), kind, req.TrialID)
	if err != nil {
		handleError(c, err)
		return
	}
	Created(c, view)
}

// Get GET /api/v1/sessions/:id
func (h *FormHandler) Get(c *gin.Context) {
	view, err := h.svc.GetSession(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	Success(c, view)
}

// Close DELETE /api/v1/sessions/:id
func (h *FormHandler) Close(c *gin.Context) {
	if err := h.svc.CloseSession(c.Request.Context(), GetActor(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	Success(c, nil)
}

// UpdateFields PATCH /api/v1/sessions/:id/fields
func (h *FormHandler) UpdateFields(c *gin.Context) {
	var patch service.FieldsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.respond(c)(h.svc.UpdateFields(requestContext(c), GetActor(c), c.Param("id"), patch))
}

type toggleEditRequest struct {
	Enabled bool `json:"enabled"`
}

// ToggleEdit POST /api/v1/sessions/:id/edit
func (h *FormHandler) ToggleEdit(c *gin.Context) {
	var req toggleEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.respond(c)(h.svc.ToggleEdit(c.Request.Context(), GetActor(c), c.Param("id"), req.Enabled))
}

type columnRequest struct {
	Label string `json:"label"`
}

// AddColumn POST /api/v1/sessions/:id/grids/:grid/columns
func (h *FormHandler) AddColumn(c *gin.Context) {
	var req columnRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	h.respond(c)(h.svc.AddColumn(c.Request.Context(), GetActor(c), c.Param("id"), c.Param("grid"), req.Label))
}

// RemoveColumn DELETE /api/v1/sessions/:id/grids/:grid/columns/:index
func (h *FormHandler) RemoveColumn(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	h.respond(c)(h.svc.RemoveColumn(c.Request.Context(), GetActor(c), c.Param("id"), c.Param("grid"), index))
}

// SetColumnLabel PUT /api/v1/sessions/:id/grids/:grid/labels/:index
func (h *FormHandler) SetColumnLabel(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var req columnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.respond(c)(h.svc.SetColumnLabel(c.Request.Context(), GetActor(c), c.Param("id"), c.Param("grid"), index, req.Label))
}

type cellsRequest struct {
	Cells []service.CellEdit `json:"cells" binding:"required,dive"`
}

// SetCells PUT /api/v1/sessions/:id/grids/:grid/cells
func (h *FormHandler) SetCells(c *gin.Context) {
	var req cellsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.respond(c)(h.svc.SetCells(c.Request.Context(), GetActor(c), c.Param("id"), c.Param("grid"), req.Cells))
}

type addRowRequest struct {
	Label string       `json:"label" binding:"required"`
	Kind  grid.RowKind `json:"kind"`
}

// AddRow POST /api/v1/sessions/:id/grids/:grid/rows
func (h *FormHandler) AddRow(c *gin.Context) {
	var req addRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.respond(c)(h.svc.AddRow(c.Request.Context(), GetActor(c), c.Param("id"), c.Param("grid"), req.Label, req.Kind))
}

// UpdateRow PUT /api/v1/sessions/:id/grids/:grid/rows/:rowId
func (h *FormHandler) UpdateRow(c *gin.Context) {
	var req service.RowEdit
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	h.respond(c)(h.svc.UpdateRow(c.Request.Context(), GetActor(c), c.Param("id"), c.Param("grid"), c.Param("rowId"), req))
}

// RemoveRow DELETE /api/v1/sessions/:id/grids/:grid/rows/:rowId
func (h *FormHandler) RemoveRow(c *gin.Context) {
	h.respond(c)(h.svc.RemoveRow(c.Request.Context(), GetActor(c), c.Param("id"), c.Param("grid"), c.Param("rowId")))
}

// AddAttachment holds one file for a section until submit.
// POST /api/v1/sessions/:id/attachments (multipart: section, file)
func (h *FormHandler) AddAttachment(c *gin.Context) {
	section := c.PostForm("section")
	if section == "" {
		BadRequest(c, "section is required")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required: "+err.Error())
		return
	}
	if fh.Size > maxAttachmentSize {
		BadRequest(c, fmt.Sprintf("file exceeds %d MB", maxAttachmentSize>>20))
		return
	}
	src, err := fh.Open()
	if err != nil {
		InternalError(c, "read upload: "+err.Error())
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		InternalError(c, "read upload: "+err.Error())
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	h.respond(c)(h.svc.AddAttachment(c.Request.Context(), GetActor(c), c.Param("id"), entity.Attachment{
		Section:     section,
		FileName:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}))
}

// RemoveAttachment DELETE /api/v1/sessions/:id/attachments/:section
func (h *FormHandler) RemoveAttachment(c *gin.Context) {
	h.respond(c)(h.svc.RemoveAttachment(c.Request.Context(), GetActor(c), c.Param("id"), c.Param("section")))
}

// Preview validates and freezes the form (Save & Continue).
// POST /api/v1/sessions/:id/preview
func (h *FormHandler) Preview(c *gin.Context) {
	h.respond(c)(h.svc.Preview(c.Request.Context(), GetActor(c), c.Param("id")))
}

// Back POST /api/v1/sessions/:id/back
func (h *FormHandler) Back(c *gin.Context) {
	h.respond(c)(h.svc.BackToEdit(c.Request.Context(), GetActor(c), c.Param("id")))
}

// Submit confirms the preview, or approves it for an HOD.
// POST /api/v1/sessions/:id/submit
func (h *FormHandler) Submit(c *gin.Context) {
	var req service.SubmitRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}
	res, err := h.svc.Submit(requestContext(c), GetActor(c), c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	Success(c, res)
}

// Print GET /api/v1/sessions/:id/print
func (h *FormHandler) Print(c *gin.Context) {
	html, err := h.svc.Print(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// Export GET /api/v1/sessions/:id/export
func (h *FormHandler) Export(c *gin.Context) {
	f, filename, err := h.svc.Export(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}

func (h *FormHandler) respond(c *gin.Context) func(*service.SessionView, error) {
	return func(view *service.SessionView, err error) {
		if err != nil {
			handleError(c, err)
			return
		}
		Success(c, view)
	}
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		BadRequest(c, "invalid column index")
		return 0, false
	}
	return index, true
}
