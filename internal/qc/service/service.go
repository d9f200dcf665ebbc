// Package service runs the inspection form sessions: open, edit, preview
// and the submit/approve flows against the foundry API.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/qc/sse"
	"github.com/bitfantasy/nimo-qc/internal/qc/theme"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = repository.ErrNotFound
	ErrNotEditable     = errors.New("form is not in editing state")
	ErrNoPreview       = errors.New("save the form before printing")
	ErrPartNotFound    = errors.New("master part not found")
)

// User-facing messages of a failed primary call.
const (
	SubmitFailedMessage  = "Failed to submit. Please try again."
	ApproveFailedMessage = "Failed to approve. Please try again."
)

// Foundry is the subset of the foundry API the forms use.
type Foundry interface {
	ListMasterParts(ctx context.Context) ([]foundryapi.MasterPart, error)
	GetRecord(ctx context.Context, kind, trialID string) (json.RawMessage, error)
	CreateRecord(ctx context.Context, kind string, payload json.RawMessage) (json.RawMessage, error)
	UpdateRecord(ctx context.Context, kind string, payload json.RawMessage) (json.RawMessage, error)
	GetProgress(ctx context.Context, username string) ([]foundryapi.Progress, error)
	UpdateDepartment(ctx context.Context, req foundryapi.UpdateDepartmentRequest) error
	UpdateDepartmentRole(ctx context.Context, req foundryapi.UpdateDepartmentRoleRequest) error
	UploadFiles(ctx context.Context, req foundryapi.UploadRequest) ([]foundryapi.UploadedDocument, error)
	PublicIP(ctx context.Context) (string, error)
}

// MasterPartCache holds the master part list between requests.
type MasterPartCache interface {
	Get(ctx context.Context) ([]foundryapi.MasterPart, error)
	Set(ctx context.Context, parts []foundryapi.MasterPart) error
}

// SubmissionLogStore records successful submits.
type SubmissionLogStore interface {
	Create(ctx context.Context, log *entity.SubmissionLog) error
	List(ctx context.Context, f repository.SubmissionFilter) ([]entity.SubmissionLog, int64, error)
}

// PrintArchiveStore indexes archived printouts.
type PrintArchiveStore interface {
	Upsert(ctx context.Context, a *entity.PrintArchive) error
}

// Actor is the authenticated caller.
type Actor struct {
	Username     string
	Name         string
	Role         string
	DepartmentID int
	ClientIP     string
}

// Option configures a FormService.
type Option func(*FormService)

func WithMasterPartCache(c MasterPartCache) Option {
	return func(s *FormService) { s.parts = c }
}

func WithSubmissionLog(l SubmissionLogStore) Option {
	return func(s *FormService) { s.logs = l }
}

// WithPrintArchive stores a printout of every submitted form.
func WithPrintArchive(index PrintArchiveStore, objects repository.ObjectStore) Option {
	return func(s *FormService) {
		s.archives = index
		s.objects = objects
	}
}

func WithHub(h *sse.Hub) Option {
	return func(s *FormService) { s.hub = h }
}

func WithDashboardPath(p string) Option {
	return func(s *FormService) {
		if p != "" {
			s.dashboard = p
		}
	}
}

func WithPalette(p theme.Palette) Option {
	return func(s *FormService) { s.palette = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *FormService) { s.now = now }
}

// FormService owns form sessions. Calls on one session are serialised.
type FormService struct {
	api      Foundry
	sessions repository.SessionStore
	logger   *zap.Logger

	parts     MasterPartCache
	logs      SubmissionLogStore
	archives  PrintArchiveStore
	objects   repository.ObjectStore
	hub       *sse.Hub
	dashboard string
	palette   theme.Palette
	now       func() time.Time

	locks sync.Map
}

func NewFormService(api Foundry, sessions repository.SessionStore, logger *zap.Logger, opts ...Option) *FormService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FormService{
		api:       api,
		sessions:  sessions,
		logger:    logger,
		dashboard: "/dashboard",
		palette:   theme.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FormService) lock(id string) func() {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// load fetches a session of actor. Sessions of other users are reported as
// missing.
func (s *FormService) load(ctx context.Context, actor Actor, id string) (*entity.FormSession, error) {
	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		// expired or closed; its mutex is no longer needed
		s.locks.Delete(id)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if sess.Username != actor.Username {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *FormService) save(ctx context.Context, sess *entity.FormSession) error {
	sess.UpdatedAt = s.now()
	return s.sessions.Save(ctx, sess)
}
