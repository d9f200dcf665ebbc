package service

import (
	"context"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/forms"
	"github.com/bitfantasy/nimo-qc/internal/qc/grid"
)

func (s *FormService) AddColumn(ctx context.Context, actor Actor, id, gridName, label string) (*SessionView, error) {
	return s.edit(ctx, actor, id, func(_ *entity.FormSession, f *forms.Form) error {
		_, err := f.AddColumn(gridName, label)
		return err
	})
}

func (s *FormService) RemoveColumn(ctx context.Context, actor Actor, id, gridName string, index int) (*SessionView, error) {
	return s.edit(ctx, actor, id, func(_ *entity.FormSession, f *forms.Form) error {
		return f.RemoveColumn(gridName, index)
	})
}

func (s *FormService) SetColumnLabel(ctx context.Context, actor Actor, id, gridName string, index int, label string) (*SessionView, error) {
	return s.edit(ctx, actor, id, func(_ *entity.FormSession, f *forms.Form) error {
		return f.SetColumnLabel(gridName, index, label)
	})
}

// CellEdit is one grid cell write.
type CellEdit struct {
	RowID  string `json:"row_id" binding:"required"`
	Column int    `json:"column"`
	Value  string `json:"value"`
}

// SetCells writes a batch of cells; the batch fails as a whole.
func (s *FormService) SetCells(ctx context.Context, actor Actor, id, gridName string, cells []CellEdit) (*SessionView, error) {
	return s.edit(ctx, actor, id, func(_ *entity.FormSession, f *forms.Form) error {
		for _, c := range cells {
			if err := f.SetCell(gridName, c.RowID, c.Column, c.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *FormService) AddRow(ctx context.Context, actor Actor, id, gridName, label string, kind grid.RowKind) (*SessionView, error) {
	return s.edit(ctx, actor, id, func(_ *entity.FormSession, f *forms.Form) error {
		_, err := f.AddRow(gridName, label, kind)
		return err
	})
}

func (s *FormService) RemoveRow(ctx context.Context, actor Actor, id, gridName, rowID string) (*SessionView, error) {
	return s.edit(ctx, actor, id, func(_ *entity.FormSession, f *forms.Form) error {
		return f.RemoveRow(gridName, rowID)
	})
}

// RowEdit renames a row or sets its note. Nil fields are left alone.
type RowEdit struct {
	Label *string `json:"label"`
	Text  *string `json:"text"`
}

func (s *FormService) UpdateRow(ctx context.Context, actor Actor, id, gridName, rowID string, edit RowEdit) (*SessionView, error) {
	return s.edit(ctx, actor, id, func(_ *entity.FormSession, f *forms.Form) error {
		if edit.Label != nil {
			if err := f.SetRowLabel(gridName, rowID, *edit.Label); err != nil {
				return err
			}
		}
		if edit.Text != nil {
			if err := f.SetRowText(gridName, rowID, *edit.Text); err != nil {
				return err
			}
		}
		return nil
	})
}
