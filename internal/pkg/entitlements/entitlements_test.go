package entitlements

import (
	"testing"

	"github.com/licitaflash/licitaflash/app/models"
	"github.com/stretchr/testify/assert"
)

func TestResolveTier(t *testing.T) {
	tests := []struct {
		status string
		plan   string
		want   Tier
	}{
		{status: "active", plan: "ultra", want: TierUltra},
		{status: "active", plan: "pro", want: TierPro},
		{status: "active", plan: "pro+", want: TierPro},
		{status: "active", plan: "PRO", want: TierPro},
		{status: "active", plan: "", want: TierFree},
		{status: "active", plan: "enterprise", want: TierFree},
		{status: "cancelled", plan: "ultra", want: TierFree},
		{status: "cancelled", plan: "pro", want: TierFree},
		{status: "past_due", plan: "ultra", want: TierFree},
		{status: "past_due", plan: "pro", want: TierFree},
		{status: "inactive", plan: "pro", want: TierFree},
		{status: "", plan: "ultra", want: TierFree},
	}

	for _, tt := range tests {
		if got := ResolveTier(tt.status, tt.plan); got != tt.want {
			t.Fatalf("ResolveTier(%q, %q) = %q, want %q", tt.status, tt.plan, got, tt.want)
		}
	}
}

func TestFlagsFor(t *testing.T) {
	free := FlagsFor(TierFree)
	assert.Equal(t, Quota(3), free.AISummaries)
	assert.False(t, free.MatchScore)
	assert.False(t, free.ProposalDrafts.Allowed())
	assert.False(t, free.ExternalNotifications)

	pro := FlagsFor(TierPro)
	assert.Equal(t, Quota(20), pro.AISummaries)
	assert.True(t, pro.MatchScore)
	assert.Equal(t, Quota(10), pro.ProposalDrafts)
	assert.False(t, pro.ExternalNotifications)

	ultra := FlagsFor(TierUltra)
	assert.True(t, ultra.AISummaries.IsUnlimited())
	assert.True(t, ultra.MatchScore)
	assert.True(t, ultra.ProposalDrafts.IsUnlimited())
	assert.True(t, ultra.ExternalNotifications)

	assert.Equal(t, free, FlagsFor(Tier("gold")))
}

func TestQuotaFor(t *testing.T) {
	pro := FlagsFor(TierPro)
	assert.Equal(t, Quota(20), pro.QuotaFor(FeatureAISummary))
	assert.Equal(t, Quota(10), pro.QuotaFor(FeatureProposalDraft))
	assert.Equal(t, Denied, pro.QuotaFor(Feature("unknown")))
}

func TestCanonicalPlan(t *testing.T) {
	assert.Equal(t, "pro", CanonicalPlan("pro+"))
	assert.Equal(t, "pro", CanonicalPlan(" Pro+ "))
	assert.Equal(t, "ultra", CanonicalPlan("ultra"))
	assert.Equal(t, "", CanonicalPlan(""))
}

func TestForSubscriber(t *testing.T) {
	assert.Equal(t, TierFree, ForSubscriber(nil).Tier)

	plan := "ultra"
	s := &models.Subscriber{SubscriptionStatus: models.SubscriptionStatusActive, SubscriptionPlan: &plan}
	got := ForSubscriber(s)
	assert.Equal(t, TierUltra, got.Tier)
	assert.True(t, got.Flags.ExternalNotifications)

	s.SubscriptionStatus = models.SubscriptionStatusPastDue
	assert.Equal(t, TierFree, ForSubscriber(s).Tier)
}
