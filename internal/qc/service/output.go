package service

import (
	"context"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/forms"
	"github.com/bitfantasy/nimo-qc/internal/qc/render"
	"github.com/xuri/excelize/v2"
)

func (s *FormService) document(sess *entity.FormSession) (render.Document, render.Header, error) {
	if len(sess.Draft.Snapshot) == 0 {
		return render.Document{}, render.Header{}, ErrNoPreview
	}
	doc, err := forms.BuildDocument(sess.Kind, sess.Draft.Snapshot, attachmentNames(sess))
	if err != nil {
		return render.Document{}, render.Header{}, err
	}
	header := render.Header{
		TrialID:     sess.TrialID,
		PatternCode: sess.PatternCode,
		PartName:    sess.PartName,
		Username:    sess.Username,
		Role:        sess.Role,
		PublicIP:    sess.PublicIP,
		PrintedAt:   s.now(),
	}
	if header.TrialID == "" {
		header.TrialID = doc.TrialID
	}
	return doc, header, nil
}

// Print renders the frozen preview as printable HTML.
func (s *FormService) Print(ctx context.Context, actor Actor, id string) ([]byte, error) {
	sess, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	doc, header, err := s.document(sess)
	if err != nil {
		return nil, err
	}
	return render.PrintHTML(doc, header, s.palette)
}

// Export writes the frozen preview to a workbook. The caller closes it.
func (s *FormService) Export(ctx context.Context, actor Actor, id string) (*excelize.File, string, error) {
	sess, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	doc, header, err := s.document(sess)
	if err != nil {
		return nil, "", err
	}
	return render.ExportXLSX(doc, header, s.palette)
}
