package domain

import "github.com/shopspring/decimal"

type PlanTier string

const (
	PlanTierFree    PlanTier = "free"
	PlanTierPremium PlanTier = "premium"
)

// UserProfile is the denormalized per-user profile document cached on the
// session: recurring baseline cash flow plus the plan tier.
type UserProfile struct {
	RecurringIncome   decimal.Decimal `json:"recurringIncome"`
	RecurringExpenses decimal.Decimal `json:"recurringExpenses"`
	PlanTier          PlanTier        `json:"planTier"`
}

// ProfilePatch carries a partial profile update; nil fields are left
// untouched.
type ProfilePatch struct {
	RecurringIncome   *decimal.Decimal `json:"recurringIncome,omitempty"`
	RecurringExpenses *decimal.Decimal `json:"recurringExpenses,omitempty"`
	PlanTier          *PlanTier        `json:"planTier,omitempty"`
}

// Fields returns only the fields present in the patch.
func (p *ProfilePatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.RecurringIncome != nil {
		fields["recurringIncome"] = p.RecurringIncome.String()
	}
	if p.RecurringExpenses != nil {
		fields["recurringExpenses"] = p.RecurringExpenses.String()
	}
	if p.PlanTier != nil {
		fields["planTier"] = string(*p.PlanTier)
	}
	return fields
}

// ProfileFromDocument decodes a profile document. Profiles tolerate any
// shape; absent fields default to zero / free tier.
func ProfileFromDocument(data map[string]any) *UserProfile {
	tier := PlanTier(stringField(data, "planTier"))
	if tier != PlanTierFree && tier != PlanTierPremium {
		tier = PlanTierFree
	}
	return &UserProfile{
		RecurringIncome:   decimalField(data, "recurringIncome"),
		RecurringExpenses: decimalField(data, "recurringExpenses"),
		PlanTier:          tier,
	}
}
