package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-qc/internal/qc/draft"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/forms"
	"github.com/bitfantasy/nimo-qc/internal/qc/gate"
	"github.com/bitfantasy/nimo-qc/internal/qc/render"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SessionView is what the screen renders.
type SessionView struct {
	ID           string              `json:"id"`
	Kind         entity.FormKind     `json:"kind"`
	TrialID      string              `json:"trial_id,omitempty"`
	Role         string              `json:"role"`
	State        draft.State         `json:"state"`
	Locked       bool                `json:"locked"`
	EditEnabled  bool                `json:"edit_enabled"`
	RecordExists bool                `json:"record_exists"`
	PatternCode  string              `json:"pattern_code,omitempty"`
	PartName     string              `json:"part_name,omitempty"`
	PublicIP     string              `json:"public_ip,omitempty"`
	Schema       forms.Schema        `json:"schema"`
	Form         forms.View          `json:"form"`
	Attachments  []entity.Attachment `json:"attachments"`
	Preview      *render.Document    `json:"preview,omitempty"`
	LastError    string              `json:"last_error,omitempty"`
	Warnings     []string            `json:"warnings,omitempty"`
}

// OpenSession starts a form of kind. With a trial id the prior record is
// loaded; an HOD must also be assigned to the trial at the form's
// department.
func (s *FormService) OpenSession(ctx context.Context, actor Actor, kind entity.FormKind, trialID string) (*SessionView, error) {
	form, err := forms.New(kind)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &entity.FormSession{
		ID:           uuid.New().String(),
		Kind:         kind,
		TrialID:      trialID,
		Username:     actor.Username,
		Name:         actor.Name,
		Role:         actor.Role,
		DepartmentID: actor.DepartmentID,
		Draft:        *draft.New(),
		ClientIP:     actor.ClientIP,
		CreatedAt:    now,
	}

	var (
		record   json.RawMessage
		parts    []foundryapi.MasterPart
		progress []foundryapi.Progress
		publicIP string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ip, err := s.api.PublicIP(gctx)
		if err != nil {
			s.logger.Warn("public ip lookup failed", zap.Error(err))
			return nil
		}
		publicIP = ip
		return nil
	})
	if trialID != "" {
		g.Go(func() error {
			p, err := s.MasterParts(gctx)
			if err != nil {
				return fmt.Errorf("load master parts: %w", err)
			}
			parts = p
			return nil
		})
		g.Go(func() error {
			rec, err := s.api.GetRecord(gctx, string(kind), trialID)
			if err != nil {
				if errors.Is(err, foundryapi.ErrNotFound) {
					return nil
				}
				return fmt.Errorf("load record: %w", err)
			}
			record = rec
			return nil
		})
		if sess.IsReviewer() {
			g.Go(func() error {
				p, err := s.api.GetProgress(gctx, actor.Username)
				if err != nil {
					return fmt.Errorf("load progress: %w", err)
				}
				progress = p
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if sess.IsReviewer() && !gate.IsAssignedTrial(progress, actor.Username, kind.Department(), trialID) {
		return nil, gate.ErrNotAssigned
	}
	if record != nil {
		if err := form.LoadRecord(record); err != nil {
			return nil, err
		}
		sess.RecordExists = true
	}
	if part, err := findPart(parts, form.Field("pattern_code")); err == nil {
		setPart(sess, part)
	}
	sess.PublicIP = publicIP

	if sess.Form, err = form.Encode(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("form session opened",
		zap.String("session_id", sess.ID),
		zap.String("kind", string(kind)),
		zap.String("trial_id", trialID),
		zap.String("username", actor.Username),
		zap.Bool("record_exists", sess.RecordExists),
	)
	return s.view(sess, form)
}

// GetSession returns the current state of a session.
func (s *FormService) GetSession(ctx context.Context, actor Actor, id string) (*SessionView, error) {
	sess, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	form, err := forms.Decode(sess.Form)
	if err != nil {
		return nil, err
	}
	return s.view(sess, form)
}

// CloseSession discards a session with its preview and attachments.
func (s *FormService) CloseSession(ctx context.Context, actor Actor, id string) error {
	unlock := s.lock(id)
	defer unlock()
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	s.locks.Delete(id)
	return nil
}

func (s *FormService) view(sess *entity.FormSession, form *forms.Form) (*SessionView, error) {
	schema, err := forms.SchemaFor(sess.Kind)
	if err != nil {
		return nil, err
	}
	v := &SessionView{
		ID:           sess.ID,
		Kind:         sess.Kind,
		TrialID:      sess.TrialID,
		Role:         sess.Role,
		State:        sess.Draft.State,
		Locked:       gate.Locked(sess.Role, sess.TrialID, sess.EditEnabled),
		EditEnabled:  sess.EditEnabled,
		RecordExists: sess.RecordExists,
		PatternCode:  sess.PatternCode,
		PartName:     sess.PartName,
		PublicIP:     sess.PublicIP,
		Schema:       schema,
		Form:         form.View(),
		Attachments:  sess.AttachmentList(),
		LastError:    sess.Draft.LastError,
		Warnings:     sess.Draft.Warnings,
	}
	if len(sess.Draft.Snapshot) > 0 {
		doc, err := forms.BuildDocument(sess.Kind, sess.Draft.Snapshot, attachmentNames(sess))
		if err != nil {
			return nil, err
		}
		v.Preview = &doc
	}
	return v, nil
}

func attachmentNames(sess *entity.FormSession) map[string]string {
	out := make(map[string]string, len(sess.Attachments))
	for section, a := range sess.Attachments {
		out[section] = a.FileName
	}
	return out
}

// edit applies fn to an editable session and stores the result.
func (s *FormService) edit(ctx context.Context, actor Actor, id string, fn func(sess *entity.FormSession, form *forms.Form) error) (*SessionView, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := gate.CheckEdit(sess); err != nil {
		return nil, err
	}
	if !sess.Draft.Editable() {
		return nil, ErrNotEditable
	}
	form, err := forms.Decode(sess.Form)
	if err != nil {
		return nil, err
	}
	if err := fn(sess, form); err != nil {
		return nil, err
	}
	if sess.Form, err = form.Encode(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return s.view(sess, form)
}

// FieldsPatch is one batch of field and remarks edits. A nil field value
// clears the field.
type FieldsPatch struct {
	Fields  map[string]any    `json:"fields"`
	Remarks map[string]string `json:"remarks"`
}

// UpdateFields applies a patch. Selecting a new pattern code prefills the
// form from the master part.
func (s *FormService) UpdateFields(ctx context.Context, actor Actor, id string, patch FieldsPatch) (*SessionView, error) {
	return s.edit(ctx, actor, id, func(sess *entity.FormSession, form *forms.Form) error {
		before := form.Field("pattern_code")
		if err := form.SetFields(patch.Fields); err != nil {
			return err
		}
		for section, text := range patch.Remarks {
			if err := form.SetRemarks(section, text); err != nil {
				return err
			}
		}
		if code := form.Field("pattern_code"); code != "" && code != before {
			s.prefill(ctx, sess, form, code)
		}
		return nil
	})
}

func (s *FormService) prefill(ctx context.Context, sess *entity.FormSession, form *forms.Form, code string) {
	part, err := s.FindMasterPart(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrPartNotFound) {
			s.logger.Warn("master part prefill failed", zap.String("pattern_code", code), zap.Error(err))
		}
		return
	}
	form.Prefill(*part)
	setPart(sess, part)
}

func setPart(sess *entity.FormSession, part *foundryapi.MasterPart) {
	sess.PatternCode = part.PatternCode
	sess.PartName = part.PartName
}

// ToggleEdit flips the HOD edit toggle while the form is being edited.
// Edits made while it was on stay.
func (s *FormService) ToggleEdit(ctx context.Context, actor Actor, id string, on bool) (*SessionView, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !sess.Draft.Editable() {
		return nil, ErrNotEditable
	}
	if gate.ToggleEdit(sess, on) {
		if err := s.save(ctx, sess); err != nil {
			return nil, err
		}
	}
	form, err := forms.Decode(sess.Form)
	if err != nil {
		return nil, err
	}
	return s.view(sess, form)
}

// AddAttachment holds a file for a group section until submit, replacing
// an earlier one.
func (s *FormService) AddAttachment(ctx context.Context, actor Actor, id string, a entity.Attachment) (*SessionView, error) {
	return s.edit(ctx, actor, id, func(sess *entity.FormSession, form *forms.Form) error {
		if !form.HasGroup(a.Section) {
			return fmt.Errorf("%w: %s", forms.ErrUnknownField, a.Section)
		}
		if sess.Attachments == nil {
			sess.Attachments = map[string]*entity.Attachment{}
		}
		a.Size = int64(len(a.Data))
		a.AddedAt = s.now()
		sess.Attachments[a.Section] = &a
		return nil
	})
}

// RemoveAttachment drops the held file of a section.
func (s *FormService) RemoveAttachment(ctx context.Context, actor Actor, id, section string) (*SessionView, error) {
	return s.edit(ctx, actor, id, func(sess *entity.FormSession, _ *forms.Form) error {
		delete(sess.Attachments, section)
		return nil
	})
}
