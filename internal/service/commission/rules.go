package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
)

func (s *commissionService) CreateRule(ctx context.Context, clinicID uuid.UUID, in RuleInput) (*model.CommissionRule, error) {
	if err := validateRuleInput(in); err != nil {
		return nil, err
	}

	rule := &model.CommissionRule{
		ClinicID:        clinicID,
		BeneficiaryType: in.BeneficiaryType,
		ProfessionalID:  in.ProfessionalID,
		BeneficiaryID:   in.BeneficiaryID,
		Procedure:       in.Procedure,
		Weekday:         in.Weekday,
		CalcType:        in.CalcType,
		CalcUnit:        in.CalcUnit,
		Value:           in.Value,
		IsActive:        in.IsActive,
		Notes:           in.Notes,
	}
	rule.Priority = DerivePriority(rule)

	if err := s.store.Rules().Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("create commission rule: %w", err)
	}
	return rule, nil
}

func (s *commissionService) UpdateRule(ctx context.Context, clinicID, ruleID uuid.UUID, in RuleInput) (*model.CommissionRule, error) {
	if err := validateRuleInput(in); err != nil {
		return nil, err
	}

	rule, err := s.store.Rules().GetByID(ctx, clinicID, ruleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("get commission rule: %w", err)
	}

	rule.BeneficiaryType = in.BeneficiaryType
	rule.ProfessionalID = in.ProfessionalID
	rule.BeneficiaryID = in.BeneficiaryID
	rule.Procedure = in.Procedure
	rule.Weekday = in.Weekday
	rule.CalcType = in.CalcType
	rule.CalcUnit = in.CalcUnit
	rule.Value = in.Value
	rule.IsActive = in.IsActive
	rule.Notes = in.Notes
	// Filters may have changed, so the priority is derived again. Historical
	// commissions keep their own calculation snapshot and are unaffected.
	rule.Priority = DerivePriority(rule)

	if err := s.store.Rules().Update(ctx, rule); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("update commission rule: %w", err)
	}
	return rule, nil
}

func (s *commissionService) GetRule(ctx context.Context, clinicID, ruleID uuid.UUID) (*model.CommissionRule, error) {
	rule, err := s.store.Rules().GetByID(ctx, clinicID, ruleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("get commission rule: %w", err)
	}
	return rule, nil
}

func (s *commissionService) ListRules(ctx context.Context, clinicID uuid.UUID) ([]model.CommissionRule, error) {
	rules, err := s.store.Rules().ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("list commission rules: %w", err)
	}
	return rules, nil
}

func (s *commissionService) DeleteRule(ctx context.Context, clinicID, ruleID uuid.UUID) error {
	if _, err := s.store.Rules().GetByID(ctx, clinicID, ruleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRuleNotFound
		}
		return fmt.Errorf("get commission rule: %w", err)
	}

	referenced, err := s.store.Commissions().ExistsForRule(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("check rule references: %w", err)
	}
	if referenced {
		// Historical commissions point at this rule; keep it for audit.
		if err := s.store.Rules().Deactivate(ctx, clinicID, ruleID); err != nil {
			return fmt.Errorf("deactivate commission rule: %w", err)
		}
		return nil
	}

	if err := s.store.Rules().Delete(ctx, clinicID, ruleID); err != nil {
		return fmt.Errorf("delete commission rule: %w", err)
	}
	return nil
}

func validateRuleInput(in RuleInput) error {
	if !in.BeneficiaryType.Valid() || !in.CalcType.Valid() || !in.CalcUnit.Valid() {
		return ErrInvalidRule
	}
	if in.Value.IsNegative() {
		return ErrInvalidRule
	}
	if in.Weekday != nil && (*in.Weekday < 0 || *in.Weekday > 6) {
		return ErrInvalidRule
	}
	return nil
}
