package stakeprog

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizedCheck(t *testing.T) {
	staker := testPubkey(0x10)
	withdrawer := testPubkey(0x20)
	authorized := Authorized{Staker: staker, Withdrawer: withdrawer}

	assert.NoError(t, authorized.Check([]solana.PublicKey{staker}, StakeAuthorizeStaker))
	assert.NoError(t, authorized.Check([]solana.PublicKey{withdrawer}, StakeAuthorizeWithdrawer))

	assert.Equal(t, ErrMissingRequiredSignature, authorized.Check([]solana.PublicKey{withdrawer}, StakeAuthorizeStaker))
	assert.Equal(t, ErrMissingRequiredSignature, authorized.Check([]solana.PublicKey{staker}, StakeAuthorizeWithdrawer))
	assert.Equal(t, ErrMissingRequiredSignature, authorized.Check(nil, StakeAuthorizeStaker))

	assert.Equal(t, ErrInvalidArgument, authorized.Check([]solana.PublicKey{staker}, 2))
}

func TestAuthorizeStakerByEitherAuthority(t *testing.T) {
	staker := testPubkey(0x10)
	withdrawer := testPubkey(0x20)
	newStaker := testPubkey(0x30)
	clock := SysvarClock{}
	lockup := StakeLockup{}

	// the staker may rotate itself
	authorized := Authorized{Staker: staker, Withdrawer: withdrawer}
	err := authorized.Authorize([]solana.PublicKey{staker}, newStaker, StakeAuthorizeStaker, &lockup, &clock, nil)
	assert.NoError(t, err)
	assert.Equal(t, newStaker, authorized.Staker)

	// the withdrawer may rotate the staker too
	authorized = Authorized{Staker: staker, Withdrawer: withdrawer}
	err = authorized.Authorize([]solana.PublicKey{withdrawer}, newStaker, StakeAuthorizeStaker, &lockup, &clock, nil)
	assert.NoError(t, err)
	assert.Equal(t, newStaker, authorized.Staker)

	// a stranger may not
	authorized = Authorized{Staker: staker, Withdrawer: withdrawer}
	err = authorized.Authorize([]solana.PublicKey{testPubkey(0x99)}, newStaker, StakeAuthorizeStaker, &lockup, &clock, nil)
	assert.Equal(t, ErrMissingRequiredSignature, err)
}

func TestAuthorizeWithdrawerRequiresWithdrawer(t *testing.T) {
	staker := testPubkey(0x10)
	withdrawer := testPubkey(0x20)
	newWithdrawer := testPubkey(0x30)
	clock := SysvarClock{}
	lockup := StakeLockup{}

	// the staker alone cannot rotate the withdrawer
	authorized := Authorized{Staker: staker, Withdrawer: withdrawer}
	err := authorized.Authorize([]solana.PublicKey{staker}, newWithdrawer, StakeAuthorizeWithdrawer, &lockup, &clock, nil)
	assert.Equal(t, ErrMissingRequiredSignature, err)

	authorized = Authorized{Staker: staker, Withdrawer: withdrawer}
	err = authorized.Authorize([]solana.PublicKey{withdrawer}, newWithdrawer, StakeAuthorizeWithdrawer, &lockup, &clock, nil)
	assert.NoError(t, err)
	assert.Equal(t, newWithdrawer, authorized.Withdrawer)
}

func TestAuthorizeWithdrawerUnderLockup(t *testing.T) {
	withdrawer := testPubkey(0x20)
	custodian := testPubkey(0x40)
	newWithdrawer := testPubkey(0x30)
	clock := SysvarClock{Epoch: 10}
	lockup := StakeLockup{Epoch: 100, Custodian: custodian}

	// no custodian supplied
	authorized := Authorized{Staker: testPubkey(0x10), Withdrawer: withdrawer}
	err := authorized.Authorize([]solana.PublicKey{withdrawer}, newWithdrawer, StakeAuthorizeWithdrawer, &lockup, &clock, nil)
	assert.Equal(t, StakeErrCustodianMissing, err)

	// custodian supplied but not signing
	err = authorized.Authorize([]solana.PublicKey{withdrawer}, newWithdrawer, StakeAuthorizeWithdrawer, &lockup, &clock, &custodian)
	assert.Equal(t, StakeErrCustodianSignatureMissing, err)

	// wrong custodian signing: lockup stays in force
	wrongCustodian := testPubkey(0x41)
	err = authorized.Authorize([]solana.PublicKey{withdrawer, wrongCustodian}, newWithdrawer, StakeAuthorizeWithdrawer, &lockup, &clock, &wrongCustodian)
	assert.Equal(t, StakeErrLockupInForce, err)

	// custodian co-signs: rotation goes through
	err = authorized.Authorize([]solana.PublicKey{withdrawer, custodian}, newWithdrawer, StakeAuthorizeWithdrawer, &lockup, &clock, &custodian)
	assert.NoError(t, err)
	assert.Equal(t, newWithdrawer, authorized.Withdrawer)
}

func TestLockupIsInForce(t *testing.T) {
	custodian := testPubkey(0x40)
	lockup := StakeLockup{UnixTimestamp: 1000, Epoch: 10, Custodian: custodian}

	// both constraints expired
	clock := SysvarClock{Epoch: 10, UnixTimestamp: 1000}
	assert.False(t, lockup.IsInForce(&clock, nil))

	// timestamp still ahead
	clock = SysvarClock{Epoch: 10, UnixTimestamp: 999}
	assert.True(t, lockup.IsInForce(&clock, nil))

	// epoch still ahead
	clock = SysvarClock{Epoch: 9, UnixTimestamp: 1000}
	assert.True(t, lockup.IsInForce(&clock, nil))

	// custodian bypasses the lockup
	assert.False(t, lockup.IsInForce(&clock, &custodian))

	other := testPubkey(0x41)
	assert.True(t, lockup.IsInForce(&clock, &other))
}

func TestValidateAndCreateWithSeed(t *testing.T) {
	base := testPubkey(0x50)
	owner := testPubkey(0x60)

	derived, err := ValidateAndCreateWithSeed(base, "stake:0", owner)
	assert.NoError(t, err)
	assert.NotEqual(t, solana.PublicKey{}, derived)

	// deterministic
	derivedAgain, err := ValidateAndCreateWithSeed(base, "stake:0", owner)
	assert.NoError(t, err)
	assert.Equal(t, derived, derivedAgain)

	// seed-sensitive
	derivedOther, err := ValidateAndCreateWithSeed(base, "stake:1", owner)
	assert.NoError(t, err)
	assert.NotEqual(t, derived, derivedOther)

	_, err = ValidateAndCreateWithSeed(base, string(make([]byte, maxSeedLength+1)), owner)
	assert.Equal(t, PubkeyErrMaxSeedLengthExceeded, err)

	var pdaOwner solana.PublicKey
	copy(pdaOwner[32-len(pdaMarker):], pdaMarker)
	_, err = ValidateAndCreateWithSeed(base, "seed", pdaOwner)
	assert.Equal(t, PubkeyErrIllegalOwner, err)
}
