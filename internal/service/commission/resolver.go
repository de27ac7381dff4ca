package commission

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinio/clinio_backend/internal/model"
)

// MatchContext carries everything resolution needs about one appointment.
// Seller and reception ids are optional: rules for those beneficiary types
// never match when the corresponding id is absent.
type MatchContext struct {
	ClinicID       uuid.UUID
	ProfessionalID uuid.UUID
	Procedure      string
	Date           time.Time
	SellerID       *uuid.UUID
	ReceptionID    *uuid.UUID
}

// specificityWeight is the priority contribution of each non-wildcard filter.
// The exact number does not matter, only that every additional filter strictly
// outranks any combination with fewer filters.
const specificityWeight = 10

// DerivePriority computes a rule's priority from its filters. Called on every
// create and update; never hand-entered.
func DerivePriority(r *model.CommissionRule) int {
	p := 0
	if r.ProfessionalID != nil {
		p += specificityWeight
	}
	if r.Procedure != nil {
		p += specificityWeight
	}
	if r.Weekday != nil {
		p += specificityWeight
	}
	if r.BeneficiaryID != nil {
		p += specificityWeight
	}
	return p
}

// Resolve returns the winning rules for one appointment context, at most one
// per beneficiary group. Within a group the highest priority wins; on equal
// priority the rule seen first in the input wins. The tie-break is a plain
// stability guarantee, not business logic. An empty result is a normal
// outcome, not an error.
func Resolve(rules []model.CommissionRule, mc MatchContext) []model.CommissionRule {
	winners := make(map[string]model.CommissionRule)
	var keys []string

	for _, r := range rules {
		if !matches(&r, mc) {
			continue
		}
		key := string(r.BeneficiaryType) + ":" + r.BeneficiaryKey()
		cur, ok := winners[key]
		if !ok {
			winners[key] = r
			keys = append(keys, key)
			continue
		}
		if r.Priority > cur.Priority {
			winners[key] = r
		}
	}

	out := make([]model.CommissionRule, 0, len(keys))
	for _, key := range keys {
		out = append(out, winners[key])
	}
	return out
}

func matches(r *model.CommissionRule, mc MatchContext) bool {
	if !r.IsActive || r.ClinicID != mc.ClinicID {
		return false
	}
	if r.Procedure != nil && *r.Procedure != mc.Procedure {
		return false
	}
	if r.Weekday != nil && *r.Weekday != mc.Date.Weekday() {
		return false
	}
	// The professional filter applies to every beneficiary type: a seller or
	// reception rule bound to a professional only fires on that professional's
	// appointments.
	if r.ProfessionalID != nil && *r.ProfessionalID != mc.ProfessionalID {
		return false
	}

	switch r.BeneficiaryType {
	case model.BeneficiaryProfessional:
		return true
	case model.BeneficiarySeller:
		if mc.SellerID == nil {
			return false
		}
		return r.BeneficiaryID == nil || *r.BeneficiaryID == *mc.SellerID
	case model.BeneficiaryReception:
		if mc.ReceptionID == nil {
			return false
		}
		return r.BeneficiaryID == nil || *r.BeneficiaryID == *mc.ReceptionID
	default:
		return false
	}
}
