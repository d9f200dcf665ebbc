package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/bitfantasy/nimo-qc/internal/middleware"
	"github.com/bitfantasy/nimo-qc/internal/qc/draft"
	"github.com/bitfantasy/nimo-qc/internal/qc/forms"
	"github.com/bitfantasy/nimo-qc/internal/qc/gate"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/qc/service"
	"github.com/bitfantasy/nimo-qc/internal/qc/sse"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers.
type Handlers struct {
	Form       *FormHandler
	MasterPart *MasterPartHandler
	Submission *SubmissionHandler
	SSE        *SSEHandler
	Health     *HealthHandler
}

// NewHandlers wires the handlers to the form service.
func NewHandlers(svc *service.FormService, hub *sse.Hub, health *HealthHandler) *Handlers {
	if health == nil {
		health = NewHealthHandler("dev", "unknown")
	}
	return &Handlers{
		Form:       NewFormHandler(svc),
		MasterPart: NewMasterPartHandler(svc),
		Submission: NewSubmissionHandler(svc),
		SSE:        NewSSEHandler(hub),
		Health:     health,
	}
}

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps a page of items.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes code with the HTTP status code/100.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithData is Error carrying details, such as field messages.
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code/100, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

func BadGateway(c *gin.Context, message string) {
	Error(c, 50200, message)
}

// handleError maps service errors to responses.
func handleError(c *gin.Context, err error) {
	var (
		verr   *forms.ValidationError
		serr   *service.SubmitError
		apiErr *foundryapi.APIError
	)
	switch {
	case errors.As(err, &verr):
		ErrorWithData(c, 40000, "Please correct the highlighted fields.", gin.H{"fields": verr.Fields})
	case errors.As(err, &serr):
		code := 50200
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			code = 40400
		}
		ErrorWithData(c, code, serr.Message, gin.H{"detail": serr.Err.Error()})
	case errors.Is(err, gate.ErrReadOnly), errors.Is(err, gate.ErrNotAssigned):
		Forbidden(c, err.Error())
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrPartNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, forms.ErrUnknownKind), errors.Is(err, forms.ErrUnknownField),
		errors.Is(err, forms.ErrUnknownGrid), errors.Is(err, forms.ErrFixedColumns),
		errors.Is(err, forms.ErrFixedRows), errors.Is(err, grid.ErrColumnOutOfRange),
		errors.Is(err, grid.ErrRowNotFound), errors.Is(err, grid.ErrReadOnlyRow),
		errors.Is(err, service.ErrNoPreview):
		BadRequest(c, err.Error())
	case errors.Is(err, draft.ErrInvalidTransition), errors.Is(err, draft.ErrSubmitInFlight),
		errors.Is(err, service.ErrNotEditable):
		Conflict(c, err.Error())
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusNotFound {
			NotFound(c, apiErr.Message)
			return
		}
		BadGateway(c, apiErr.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetActor reads the caller set by JWTAuth.
func GetActor(c *gin.Context) service.Actor {
	actor := service.Actor{
		Username:     c.GetString(middleware.CtxUsername),
		Role:         c.GetString(middleware.CtxRole),
		DepartmentID: c.GetInt(middleware.CtxDepartmentID),
		ClientIP:     c.ClientIP(),
	}
	if claims, ok := c.Get(middleware.CtxClaims); ok {
		if jc, ok := claims.(*middleware.JWTClaims); ok {
			actor.Name = jc.Name
		}
	}
	return actor
}

// requestContext carries the caller's token to foundry API calls.
func requestContext(c *gin.Context) context.Context {
	return foundryapi.WithToken(c.Request.Context(), c.GetString(middleware.CtxToken))
}

// GetPagination reads page and page_size, defaulting to 1 and 20.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
