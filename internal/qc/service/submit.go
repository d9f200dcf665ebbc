package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/bitfantasy/nimo-qc/internal/qc/draft"
	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/forms"
	"github.com/bitfantasy/nimo-qc/internal/qc/gate"
	"github.com/bitfantasy/nimo-qc/internal/qc/render"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/qc/sse"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SubmitRequest carries the approval remarks of an HOD.
type SubmitRequest struct {
	Remarks string `json:"remarks"`
}

// SubmitResult is returned once the session reached Submitted.
type SubmitResult struct {
	SessionID        string          `json:"session_id"`
	Kind             entity.FormKind `json:"kind"`
	TrialID          string          `json:"trial_id,omitempty"`
	Action           string          `json:"action"`
	State            draft.State     `json:"state"`
	NextDepartmentID int             `json:"next_department_id,omitempty"`
	Redirect         string          `json:"redirect"`
	Warnings         []string        `json:"warnings"`
	Record           json.RawMessage `json:"record,omitempty"`
}

// SubmitError is a failed primary call. Message is shown to the user.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

type outcome struct {
	action   string
	trialID  string
	nextDept int
	record   json.RawMessage
	warnings []string
}

func (o *outcome) warn(msg string) {
	o.warnings = append(o.warnings, msg)
}

// Submit sends the frozen preview. A user's submit saves the record, then
// uploads held files and completes the department role step; those two
// only produce warnings on failure. An HOD approval advances the trial,
// saving the record first when the edit toggle is on.
//
// The flow runs to the end even if the caller goes away.
func (s *FormService) Submit(ctx context.Context, actor Actor, id string, req SubmitRequest) (*SubmitResult, error) {
	ctx = context.WithoutCancel(ctx)

	sess, err := s.claim(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	payload := sess.Draft.Payload()
	var out outcome
	if sess.IsReviewer() {
		err = s.approve(ctx, sess, payload, req.Remarks, &out)
	} else {
		err = s.submit(ctx, sess, payload, &out)
	}
	return s.finish(ctx, sess, payload, &out, err)
}

// claim moves the session to Submitting so a second submit is rejected
// while this one is in flight.
func (s *FormService) claim(ctx context.Context, actor Actor, id string) (*entity.FormSession, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Draft.BeginSubmit(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *FormService) submit(ctx context.Context, sess *entity.FormSession, payload json.RawMessage, out *outcome) error {
	out.action = entity.ActionSubmit

	record, err := s.saveRecord(ctx, sess, payload)
	if err != nil {
		return &SubmitError{Message: SubmitFailedMessage, Err: err}
	}
	out.record = record
	out.trialID = recordTrialID(record, sess.TrialID)
	sess.TrialID = out.trialID

	if out.trialID == "" {
		out.warn("record saved without a trial id; attachments and department update skipped")
		return nil
	}
	s.uploadAttachments(ctx, sess, out)
	if err := s.api.UpdateDepartmentRole(ctx, gate.RoleUpdateRequest(sess, out.trialID)); err != nil {
		s.logger.Warn("department role update failed",
			zap.String("session_id", sess.ID), zap.String("trial_id", out.trialID), zap.Error(err))
		out.warn("department update failed: " + err.Error())
	}
	return nil
}

func (s *FormService) approve(ctx context.Context, sess *entity.FormSession, payload json.RawMessage, remarks string, out *outcome) error {
	out.action = entity.ActionApprove
	out.trialID = sess.TrialID

	if sess.EditEnabled {
		record, err := s.saveRecord(ctx, sess, payload)
		if err != nil {
			return &SubmitError{Message: ApproveFailedMessage, Err: err}
		}
		out.record = record
		s.uploadAttachments(ctx, sess, out)
	}

	req := gate.AdvanceRequest(sess, remarks)
	if err := s.api.UpdateDepartment(ctx, req); err != nil {
		return &SubmitError{Message: ApproveFailedMessage, Err: err}
	}
	out.nextDept = req.NextDepartmentID
	return nil
}

func (s *FormService) saveRecord(ctx context.Context, sess *entity.FormSession, payload json.RawMessage) (json.RawMessage, error) {
	if sess.RecordExists {
		return s.api.UpdateRecord(ctx, string(sess.Kind), payload)
	}
	record, err := s.api.CreateRecord(ctx, string(sess.Kind), payload)
	if err != nil {
		return nil, err
	}
	sess.RecordExists = true
	return record, nil
}

// uploadAttachments sends each held file with its section remarks.
func (s *FormService) uploadAttachments(ctx context.Context, sess *entity.FormSession, out *outcome) {
	if len(sess.Attachments) == 0 {
		return
	}
	form, err := forms.Decode(sess.Form)
	if err != nil {
		out.warn("attachments not uploaded: " + err.Error())
		return
	}

	sections := make([]string, 0, len(sess.Attachments))
	for section := range sess.Attachments {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	for _, section := range sections {
		a := sess.Attachments[section]
		_, err := s.api.UploadFiles(ctx, foundryapi.UploadRequest{
			TrialID:    out.trialID,
			Category:   string(sess.Kind) + "/" + section,
			UploadedBy: sess.Username,
			Remarks:    form.Remarks[section],
			Files: []foundryapi.UploadFile{{
				Name:        a.FileName,
				ContentType: a.ContentType,
				Data:        a.Data,
			}},
		})
		if err != nil {
			s.logger.Warn("attachment upload failed",
				zap.String("session_id", sess.ID), zap.String("file", a.FileName), zap.Error(err))
			out.warn(fmt.Sprintf("upload of %s failed: %v", a.FileName, err))
		}
	}
}

func (s *FormService) finish(ctx context.Context, sess *entity.FormSession, payload json.RawMessage, out *outcome, cause error) (*SubmitResult, error) {
	unlock := s.lock(sess.ID)
	defer unlock()

	if cause != nil {
		if err := sess.Draft.FailSubmit(cause); err != nil {
			return nil, err
		}
		if err := s.save(ctx, sess); err != nil {
			s.logger.Error("save failed submit", zap.String("session_id", sess.ID), zap.Error(err))
		}
		s.logger.Warn("submit failed",
			zap.String("session_id", sess.ID),
			zap.String("kind", string(sess.Kind)),
			zap.String("trial_id", sess.TrialID),
			zap.Error(cause),
		)
		return nil, cause
	}

	s.archivePrint(ctx, sess, out)
	s.audit(ctx, sess, payload, out)

	if err := sess.Draft.CompleteSubmit(out.warnings...); err != nil {
		return nil, err
	}
	now := s.now()
	sess.SubmittedAt = &now
	if _, err := s.sessions.Get(ctx, sess.ID); err == nil {
		if err := s.save(ctx, sess); err != nil {
			s.logger.Error("save submitted session", zap.String("session_id", sess.ID), zap.Error(err))
		}
	} else if errors.Is(err, repository.ErrNotFound) {
		s.locks.Delete(sess.ID)
	} else {
		s.logger.Error("reload submitted session", zap.String("session_id", sess.ID), zap.Error(err))
	}

	if s.hub != nil {
		s.hub.PublishTrialUpdate(sse.TrialUpdate{
			TrialID:          out.trialID,
			Kind:             string(sess.Kind),
			DepartmentID:     sess.Kind.Department(),
			NextDepartmentID: out.nextDept,
			Action:           out.action,
			Username:         sess.Username,
		})
	}

	s.logger.Info("form submitted",
		zap.String("session_id", sess.ID),
		zap.String("kind", string(sess.Kind)),
		zap.String("trial_id", out.trialID),
		zap.String("action", out.action),
		zap.Int("warnings", len(out.warnings)),
	)

	warnings := out.warnings
	if warnings == nil {
		warnings = []string{}
	}
	return &SubmitResult{
		SessionID:        sess.ID,
		Kind:             sess.Kind,
		TrialID:          out.trialID,
		Action:           out.action,
		State:            sess.Draft.State,
		NextDepartmentID: out.nextDept,
		Redirect:         s.dashboard,
		Warnings:         warnings,
		Record:           out.record,
	}, nil
}

func (s *FormService) archivePrint(ctx context.Context, sess *entity.FormSession, out *outcome) {
	if s.objects == nil {
		return
	}
	doc, header, err := s.document(sess)
	if err == nil {
		header.TrialID = out.trialID
		var html []byte
		if html, err = render.PrintHTML(doc, header, s.palette); err == nil {
			err = s.storePrint(ctx, sess, out.trialID, html)
		}
	}
	if err != nil {
		s.logger.Warn("print archive failed", zap.String("session_id", sess.ID), zap.Error(err))
		out.warn("printout not archived: " + err.Error())
	}
}

func (s *FormService) storePrint(ctx context.Context, sess *entity.FormSession, trialID string, html []byte) error {
	folder := trialID
	if folder == "" {
		folder = "untracked"
	}
	key := fmt.Sprintf("prints/%s/%s/%s.html", folder, sess.Kind, sess.ID)
	if err := s.objects.Put(ctx, key, html, "text/html; charset=utf-8"); err != nil {
		return err
	}
	if s.archives == nil {
		return nil
	}
	return s.archives.Upsert(ctx, &entity.PrintArchive{
		ID:          uuid.New().String(),
		SessionID:   sess.ID,
		TrialID:     trialID,
		Kind:        string(sess.Kind),
		Bucket:      s.objects.Bucket(),
		ObjectKey:   key,
		Size:        int64(len(html)),
		ContentType: "text/html",
		CreatedBy:   sess.Username,
		CreatedAt:   s.now(),
	})
}

func (s *FormService) audit(ctx context.Context, sess *entity.FormSession, payload json.RawMessage, out *outcome) {
	if s.logs == nil {
		return
	}
	warnings, _ := json.Marshal(append([]string{}, out.warnings...))
	err := s.logs.Create(ctx, &entity.SubmissionLog{
		ID:           uuid.New().String(),
		SessionID:    sess.ID,
		Kind:         string(sess.Kind),
		TrialID:      out.trialID,
		DepartmentID: sess.Kind.Department(),
		NextDept:     out.nextDept,
		Username:     sess.Username,
		Role:         sess.Role,
		Action:       out.action,
		Payload:      datatypes.JSON(payload),
		Warnings:     datatypes.JSON(warnings),
		ClientIP:     sess.ClientIP,
		PublicIP:     sess.PublicIP,
		CreatedAt:    s.now(),
	})
	if err != nil {
		s.logger.Warn("submission log failed", zap.String("session_id", sess.ID), zap.Error(err))
		out.warn("submission log not written: " + err.Error())
	}
}

// recordTrialID reads trial_id from a saved record, else fallback.
func recordTrialID(record json.RawMessage, fallback string) string {
	if len(record) == 0 {
		return fallback
	}
	dec := json.NewDecoder(bytes.NewReader(record))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fallback
	}
	switch v := m["trial_id"].(type) {
	case string:
		if v != "" {
			return v
		}
	case json.Number:
		return v.String()
	}
	return fallback
}
