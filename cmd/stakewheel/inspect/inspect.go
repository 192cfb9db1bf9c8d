package inspect

import (
	"os"

	"github.com/spf13/cobra"
	"go.stakewheel.io/stakewheel/pkg/base58"
	"go.stakewheel.io/stakewheel/pkg/stakeprog"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

var (
	Cmd = cobra.Command{
		Use:   "inspect",
		Short: "Decode a stake account image and print it as YAML",
		Run:   run,
	}

	path string
)

func init() {
	Cmd.Flags().StringVarP(&path, "path", "p", "", "Path of the raw account image to decode")
}

type lockupView struct {
	UnixTimestamp int64  `yaml:"unixTimestamp"`
	Epoch         uint64 `yaml:"epoch"`
	Custodian     string `yaml:"custodian"`
}

type metaView struct {
	RentExemptReserve uint64     `yaml:"rentExemptReserve"`
	Staker            string     `yaml:"staker"`
	Withdrawer        string     `yaml:"withdrawer"`
	Lockup            lockupView `yaml:"lockup"`
}

type delegationView struct {
	VoterPubkey       string `yaml:"voterPubkey"`
	StakeLamports     uint64 `yaml:"stakeLamports"`
	ActivationEpoch   uint64 `yaml:"activationEpoch"`
	DeactivationEpoch uint64 `yaml:"deactivationEpoch"`
}

type stakeView struct {
	Delegation      delegationView `yaml:"delegation"`
	CreditsObserved uint64         `yaml:"creditsObserved"`
	Flags           byte           `yaml:"flags"`
}

type accountView struct {
	Status string     `yaml:"status"`
	Meta   *metaView  `yaml:"meta,omitempty"`
	Stake  *stakeView `yaml:"stake,omitempty"`
}

func statusString(status uint32) string {
	switch status {
	case stakeprog.StakeStateV2StatusUninitialized:
		return "uninitialized"
	case stakeprog.StakeStateV2StatusInitialized:
		return "initialized"
	case stakeprog.StakeStateV2StatusStake:
		return "stake"
	case stakeprog.StakeStateV2StatusRewardsPool:
		return "rewardsPool"
	default:
		return "unknown"
	}
}

func metaToView(meta *stakeprog.Meta) *metaView {
	return &metaView{
		RentExemptReserve: meta.RentExemptReserve,
		Staker:            base58.EncodeToString(meta.Authorized.Staker),
		Withdrawer:        base58.EncodeToString(meta.Authorized.Withdrawer),
		Lockup: lockupView{
			UnixTimestamp: meta.Lockup.UnixTimestamp,
			Epoch:         meta.Lockup.Epoch,
			Custodian:     base58.EncodeToString(meta.Lockup.Custodian),
		},
	}
}

func stateToView(state *stakeprog.StakeStateV2) accountView {
	view := accountView{Status: statusString(state.Status)}

	switch state.Status {
	case stakeprog.StakeStateV2StatusInitialized:
		view.Meta = metaToView(&state.Initialized.Meta)

	case stakeprog.StakeStateV2StatusStake:
		view.Meta = metaToView(&state.Stake.Meta)
		view.Stake = &stakeView{
			Delegation: delegationView{
				VoterPubkey:       base58.EncodeToString(state.Stake.Stake.Delegation.VoterPubkey),
				StakeLamports:     state.Stake.Stake.Delegation.StakeLamports,
				ActivationEpoch:   state.Stake.Stake.Delegation.ActivationEpoch,
				DeactivationEpoch: state.Stake.Stake.Delegation.DeactivationEpoch,
			},
			CreditsObserved: state.Stake.Stake.CreditsObserved,
			Flags:           state.Stake.StakeFlags.Bits,
		}
	}

	return view
}

func run(c *cobra.Command, args []string) {
	if path == "" {
		klog.Errorf("must specify the path of an account image to decode")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		klog.Exitf("failed to read account image: %v", err)
	}

	state, err := stakeprog.UnmarshalStakeState(data)
	if err != nil {
		klog.Exitf("failed to decode account image: %v", err)
	}

	out, err := yaml.Marshal(stateToView(state))
	if err != nil {
		klog.Exitf("failed to marshal account state: %v", err)
	}
	os.Stdout.Write(out)
}
