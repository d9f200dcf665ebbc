package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bitfantasy/nimo-qc/internal/qc/entity"
	"github.com/bitfantasy/nimo-qc/internal/qc/repository"
	"github.com/bitfantasy/nimo-qc/internal/qc/specparse"
	"github.com/bitfantasy/nimo-qc/internal/shared/foundryapi"
	"go.uber.org/zap"
)

// MasterParts returns the master part list, cached when a cache is set.
func (s *FormService) MasterParts(ctx context.Context) ([]foundryapi.MasterPart, error) {
	if s.parts != nil {
		parts, err := s.parts.Get(ctx)
		if err == nil {
			return parts, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("master part cache read failed", zap.Error(err))
		}
	}

	parts, err := s.api.ListMasterParts(ctx)
	if err != nil {
		return nil, err
	}
	if s.parts != nil {
		if err := s.parts.Set(ctx, parts); err != nil {
			s.logger.Warn("master part cache write failed", zap.Error(err))
		}
	}
	return parts, nil
}

// FindMasterPart looks a part up by pattern code.
func (s *FormService) FindMasterPart(ctx context.Context, patternCode string) (*foundryapi.MasterPart, error) {
	parts, err := s.MasterParts(ctx)
	if err != nil {
		return nil, err
	}
	return findPart(parts, patternCode)
}

func findPart(parts []foundryapi.MasterPart, patternCode string) (*foundryapi.MasterPart, error) {
	code := strings.TrimSpace(patternCode)
	if code == "" {
		return nil, ErrPartNotFound
	}
	for i := range parts {
		if strings.EqualFold(parts[i].PatternCode, code) {
			return &parts[i], nil
		}
	}
	return nil, ErrPartNotFound
}

// PartSpecs is a master part with its specification texts parsed.
type PartSpecs struct {
	Part           foundryapi.MasterPart         `json:"part"`
	Chemical       specparse.ChemicalComposition `json:"chemical"`
	Tensile        specparse.Tensile             `json:"tensile"`
	Microstructure specparse.Microstructure      `json:"microstructure"`
	Hardness       specparse.Hardness            `json:"hardness"`
}

// MasterPartSpecs parses the specification texts of one part.
func (s *FormService) MasterPartSpecs(ctx context.Context, patternCode string) (*PartSpecs, error) {
	part, err := s.FindMasterPart(ctx, patternCode)
	if err != nil {
		return nil, err
	}
	return ParseSpecs(*part), nil
}

// ParseSpecs never fails; unparsable texts yield placeholder records.
func ParseSpecs(part foundryapi.MasterPart) *PartSpecs {
	return &PartSpecs{
		Part:           part,
		Chemical:       specparse.ParseChemicalComposition(part.ChemicalInput()),
		Tensile:        specparse.ParseTensileData(part.Tensile),
		Microstructure: specparse.ParseMicrostructureData(part.MicroStructure),
		Hardness:       specparse.ParseHardnessData(part.Hardness),
	}
}

// Progress returns the caller's pending assignments.
func (s *FormService) Progress(ctx context.Context, actor Actor) ([]foundryapi.Progress, error) {
	return s.api.GetProgress(ctx, actor.Username)
}

// Submissions lists the audit trail. Without a store the list is empty.
func (s *FormService) Submissions(ctx context.Context, f repository.SubmissionFilter) ([]entity.SubmissionLog, int64, error) {
	if s.logs == nil {
		return []entity.SubmissionLog{}, 0, nil
	}
	return s.logs.List(ctx, f)
}
