package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureEnableDisable(t *testing.T) {
	f := NewFeaturesDefault()
	assert.False(t, f.IsActive(StakeRaiseMinimumDelegationTo1Sol))

	f.EnableFeature(StakeRaiseMinimumDelegationTo1Sol)
	assert.True(t, f.IsActive(StakeRaiseMinimumDelegationTo1Sol))
	assert.False(t, f.IsActive(ReduceStakeWarmupCooldown))

	f.DisableFeature(StakeRaiseMinimumDelegationTo1Sol)
	assert.False(t, f.IsActive(StakeRaiseMinimumDelegationTo1Sol))
}

func TestZeroValueFeaturesIsInactive(t *testing.T) {
	var f Features
	assert.False(t, f.IsActive(ReduceStakeWarmupCooldown))
}
