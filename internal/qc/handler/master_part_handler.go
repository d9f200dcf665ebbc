package handler

import (
	"strings"

	"github.com/bitfantasy/nimo-qc/internal/qc/gate"
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/gin-gonic/gin"
)

// MasterPartHandler serves reference data and assignments.
type MasterPartHandler struct {
	svc *service.FormService
}

func NewMasterPartHandler(svc *service.FormService) *MasterPartHandler {
	return &MasterPartHandler{svc: svc}
}

// List GET /api/v1/master-parts?q=
func (h *MasterPartHandler) List(c *gin.Context) {
	parts, err := h.svc.MasterParts(requestContext(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		filtered := make([]foundryapi.MasterPart, 0, len(parts))
		for _, p := range parts {
			if strings.Contains(strings.ToLower(p.PatternCode), q) || strings.Contains(strings.ToLower(p.PartName), q) {
				filtered = append(filtered, p)
			}
		}
		parts = filtered
	}
	Success(c, gin.H{"items": parts})
}

// Specs returns the parsed specification of one part.
// GET /api/v1/master-parts/:code/specs
func (h *MasterPartHandler) Specs(c *gin.Context) {
	specs, err := h.svc.MasterPartSpecs(requestContext(c), c.Param("code"))
	if err != nil {
		handleError(c, err)
		return
	}
	Success(c, specs)
}

type progressItem struct {
	foundryapi.Progress
	Assigned bool `json:"assigned"`
}

// Progress lists the caller's pending trials, marking those at the
// caller's own department.
// GET /api/v1/progress
func (h *MasterPartHandler) Progress(c *gin.Context) {
	actor := GetActor(c)
	progress, err := h.svc.Progress(requestContext(c), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	items := make([]progressItem, 0, len(progress))
	for _, p := range progress {
		items = append(items, progressItem{
			Progress: p,
			Assigned: gate.IsAssigned([]foundryapi.Progress{p}, actor.Username, actor.DepartmentID),
		})
	}
	Success(c, gin.H{"items": items})
}
