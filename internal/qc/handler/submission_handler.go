package handler

import (
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/gin-gonic/gin"
)

// SubmissionHandler exposes the submit/approve audit trail.
type SubmissionHandler struct {
	svc *service.FormService
}

func NewSubmissionHandler(svc *service.FormService) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

// List GET /api/v1/submissions?trial_id=&kind=&username=
func (h *SubmissionHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	logs, total, err := h.svc.Submissions(c.Request.Context(), repository.SubmissionFilter{
		TrialID:  c.Query("trial_id"),
		Kind:     c.Query("kind"),
		Username: c.Query("username"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		InternalError(c, "list submissions: "+err.Error())
		return
	}
	Success(c, ListResponse{
		Items: logs,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: (int(total) + pageSize - 1) / pageSize,
		},
	})
}
