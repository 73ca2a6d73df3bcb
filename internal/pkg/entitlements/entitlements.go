package entitlements

import (
	"strings"

	"github.com/licitaflash/licitaflash/app/models"
)

type Tier string

const (
	TierFree  Tier = "free"
	TierPro   Tier = "pro"
	TierUltra Tier = "ultra"
)

// Feature names a metered capability.
type Feature string

const (
	FeatureAISummary     Feature = "ai_summary"
	FeatureProposalDraft Feature = "proposal_draft"
)

// Quota is a monthly allowance. Zero denies the feature, a negative value
// means no limit.
type Quota int

const (
	Denied    Quota = 0
	Unlimited Quota = -1
)

func (q Quota) Allowed() bool {
	return q != Denied
}

func (q Quota) IsUnlimited() bool {
	return q < 0
}

// Flags is the capability set granted to a tier.
type Flags struct {
	AISummaries           Quota `json:"ai_summaries"`
	MatchScore            bool  `json:"match_score"`
	ProposalDrafts        Quota `json:"proposal_drafts"`
	ExternalNotifications bool  `json:"external_notifications"`
}

// QuotaFor returns the allowance for a metered feature.
func (f Flags) QuotaFor(feature Feature) Quota {
	switch feature {
	case FeatureAISummary:
		return f.AISummaries
	case FeatureProposalDraft:
		return f.ProposalDrafts
	default:
		return Denied
	}
}

var flagTable = map[Tier]Flags{
	TierFree: {
		AISummaries:    3,
		ProposalDrafts: Denied,
	},
	TierPro: {
		AISummaries:    20,
		MatchScore:     true,
		ProposalDrafts: 10,
	},
	TierUltra: {
		AISummaries:           Unlimited,
		MatchScore:            true,
		ProposalDrafts:        Unlimited,
		ExternalNotifications: true,
	},
}

// PlanAliases maps legacy plan spellings found in stored rows to the
// canonical plan name.
var PlanAliases = map[string]string{
	"pro+": models.SubscriptionPlanPro,
}

// CanonicalPlan lower-cases a stored plan name and resolves aliases.
func CanonicalPlan(plan string) string {
	p := strings.ToLower(strings.TrimSpace(plan))
	if alias, ok := PlanAliases[p]; ok {
		return alias
	}
	return p
}

// ResolveTier maps a stored (status, plan) pair to a tier. Only an active
// subscription grants a paid tier; an unknown plan resolves to free.
func ResolveTier(status, plan string) Tier {
	if strings.ToLower(strings.TrimSpace(status)) != models.SubscriptionStatusActive {
		return TierFree
	}
	switch CanonicalPlan(plan) {
	case models.SubscriptionPlanUltra:
		return TierUltra
	case models.SubscriptionPlanPro:
		return TierPro
	default:
		return TierFree
	}
}

// FlagsFor returns the capability set of a tier. Unknown tiers get the free set.
func FlagsFor(tier Tier) Flags {
	if f, ok := flagTable[tier]; ok {
		return f
	}
	return flagTable[TierFree]
}

// Entitlements is the resolved view of a subscriber.
type Entitlements struct {
	Tier  Tier  `json:"tier"`
	Flags Flags `json:"flags"`
}

func Resolve(status, plan string) Entitlements {
	tier := ResolveTier(status, plan)
	return Entitlements{Tier: tier, Flags: FlagsFor(tier)}
}

// ForSubscriber resolves a stored subscriber. A nil subscriber is free.
func ForSubscriber(s *models.Subscriber) Entitlements {
	if s == nil {
		return Resolve("", "")
	}
	return Resolve(s.SubscriptionStatus, s.Plan())
}
