package features

// Features is the set of active feature gates for the current invocation.
// The hosting runtime decides which gates are active; handlers only ever
// consult IsActive.
type Features struct {
	active map[[32]byte]bool
}

func NewFeaturesDefault() Features {
	return Features{active: make(map[[32]byte]bool)}
}

func (f *Features) EnableFeature(gate FeatureGate) {
	if f.active == nil {
		f.active = make(map[[32]byte]bool)
	}
	f.active[gate.Address] = true
}

func (f *Features) DisableFeature(gate FeatureGate) {
	delete(f.active, gate.Address)
}

func (f Features) IsActive(gate FeatureGate) bool {
	return f.active[gate.Address]
}
