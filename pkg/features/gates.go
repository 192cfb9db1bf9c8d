package features

import (
	"go.stakewheel.io/stakewheel/pkg/base58"
)

type FeatureGate struct {
	Name    string
	Address [32]byte
}

var StakeRaiseMinimumDelegationTo1Sol = FeatureGate{Name: "StakeRaiseMinimumDelegationTo1Sol", Address: base58.MustDecodeFromString("9onWzzvCzNC2jfhxxeqRgs5q7nFAAKpCUvkj6T6GJK9i")}
var ReduceStakeWarmupCooldown = FeatureGate{Name: "ReduceStakeWarmupCooldown", Address: base58.MustDecodeFromString("GwtDQBghCTBgmX2cpEGNPxTEBUTQRaDMGTr5qychdGMj")}
var RequireRentExemptSplitDestination = FeatureGate{Name: "RequireRentExemptSplitDestination", Address: base58.MustDecodeFromString("D2aip4BBr8NPWtU9vLrwrBvbuaQ8w1zV38zFLxx4pfBV")}

var AllFeatureGates = []FeatureGate{
	StakeRaiseMinimumDelegationTo1Sol,
	ReduceStakeWarmupCooldown,
	RequireRentExemptSplitDestination,
}
