package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinio/clinio_backend/internal/model"
	"github.com/clinio/clinio_backend/internal/repository"
)

// Generate resolves the clinic's rules against one confirmed payment and
// persists the resulting commissions, all rows or none.
//
// The duplicate pre-check makes retries safe: a second call for the same
// appointment returns ErrDuplicateCommission without writing anything, and
// the storage uniqueness constraint closes the race between two concurrent
// calls that both pass the pre-check.
func (s *commissionService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 || in.ServiceValue.IsNegative() {
		return nil, ErrInvalidValue
	}

	exists, err := s.store.Commissions().ExistsActive(ctx, in.AppointmentID, model.BeneficiaryProfessional)
	if err != nil {
		return nil, fmt.Errorf("duplicate pre-check: %w", err)
	}

	rules, err := s.store.Rules().ListActiveByClinic(ctx, in.ClinicID)
	if err != nil {
		return nil, fmt.Errorf("load active rules: %w", err)
	}
	winners := Resolve(rules, MatchContext{
		ClinicID:       in.ClinicID,
		ProfessionalID: in.ProfessionalID,
		Procedure:      in.Procedure,
		Date:           in.Date,
		SellerID:       in.SellerID,
		ReceptionID:    in.ReceptionID,
	})

	professionalRuleFound := false
	for _, w := range winners {
		if w.BeneficiaryType == model.BeneficiaryProfessional {
			professionalRuleFound = true
			break
		}
	}

	switch CheckGuard(exists, professionalRuleFound) {
	case GuardBlockedDuplicate:
		return nil, ErrDuplicateCommission
	case GuardBlockedNoRule:
		if !in.AllowWithoutRule {
			return nil, ErrNoApplicableRule
		}
	}

	result := &GenerateResult{
		Total:                   decimal.Zero,
		WithoutProfessionalRule: !professionalRuleFound,
	}

	rows := make([]*model.Commission, 0, len(winners))
	for _, rule := range winners {
		var beneficiaryID = in.ProfessionalID
		switch rule.BeneficiaryType {
		case model.BeneficiarySeller:
			beneficiaryID = *in.SellerID
		case model.BeneficiaryReception:
			beneficiaryID = *in.ReceptionID
		}

		amount := Amount(rule.CalcType, rule.CalcUnit, rule.Value, in.ServiceValue, in.Quantity)
		rows = append(rows, &model.Commission{
			ClinicID:        in.ClinicID,
			AppointmentID:   in.AppointmentID,
			PaymentID:       in.PaymentID,
			RuleID:          rule.ID,
			BeneficiaryType: rule.BeneficiaryType,
			BeneficiaryID:   beneficiaryID,
			BeneficiaryKey:  rule.BeneficiaryKey(),
			BeneficiaryName: s.beneficiaryName(ctx, in.ClinicID, beneficiaryID),
			Procedure:       in.Procedure,
			ServiceValue:    in.ServiceValue,
			Quantity:        in.Quantity,
			CalcType:        rule.CalcType,
			CalcUnit:        rule.CalcUnit,
			CalcValue:       rule.Value,
			Amount:          amount,
			Status:          model.CommissionPending,
		})
		result.Total = result.Total.Add(amount)
	}

	if len(rows) == 0 {
		return result, nil
	}

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		return tx.Commissions().CreateBatch(ctx, rows)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateCommission
		}
		return nil, fmt.Errorf("persist commissions: %w", err)
	}

	result.Commissions = make([]model.Commission, 0, len(rows))
	for _, r := range rows {
		result.Commissions = append(result.Commissions, *r)

		if s.nc != nil {
			subject := fmt.Sprintf("clinio.commission.generated.%s", r.ID.String())
			_ = s.nc.Publish(subject, []byte(r.ClinicID.String()))
		}
	}
	return result, nil
}

// beneficiaryName snapshots the staff display name at generation time. A
// missing directory entry yields an empty snapshot, never a failed
// generation.
func (s *commissionService) beneficiaryName(ctx context.Context, clinicID, staffID uuid.UUID) string {
	member, err := s.store.Staff().GetByID(ctx, clinicID, staffID)
	if err != nil {
		return ""
	}
	return member.Name
}
