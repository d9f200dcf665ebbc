package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bitfantasy/nimo-qc/internal/qc/forms"
	"github.com/bitfantasy/nimo-qc/internal/qc/gate"
	"go.uber.org/zap"
)

// Preview validates the form and freezes its payload. A locked HOD review
// is frozen as loaded, without validation, since nothing was edited.
func (s *FormService) Preview(ctx context.Context, actor Actor, id string) (*SessionView, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	form, err := forms.Decode(sess.Form)
	if err != nil {
		return nil, err
	}
	if !gate.Locked(sess.Role, sess.TrialID, sess.EditEnabled) {
		if err := form.Validate(); err != nil {
			return nil, err
		}
	}
	payload, err := json.Marshal(form.Payload(sess.TrialID))
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	if err := sess.Draft.SaveAndContinue(payload); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Debug("preview saved", zap.String("session_id", id), zap.Int("bytes", len(payload)))
	return s.view(sess, form)
}

// BackToEdit drops the preview and reopens the form.
func (s *FormService) BackToEdit(ctx context.Context, actor Actor, id string) (*SessionView, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Draft.BackToEdit(); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	form, err := forms.Decode(sess.Form)
	if err != nil {
		return nil, err
	}
	return s.view(sess, form)
}
