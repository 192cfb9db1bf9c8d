package stakeprog

import (
	"bytes"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/stretchr/testify/assert"
)

func TestSetLockupOptionEncoding(t *testing.T) {
	ts := int64(12345)
	custodian := testPubkey(0x40)

	instr := StakeInstrSetLockup{UnixTimestamp: &ts, Custodian: &custodian}

	buffer := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buffer)
	assert.NoError(t, instr.MarshalWithEncoder(encoder))

	// present timestamp, absent epoch, present custodian
	assert.Equal(t, byte(1), buffer.Bytes()[0])
	assert.Equal(t, byte(0), buffer.Bytes()[9])
	assert.Equal(t, byte(1), buffer.Bytes()[10])
	assert.Equal(t, 1+8+1+1+32, buffer.Len())

	var decoded StakeInstrSetLockup
	decoder := bin.NewBinDecoder(buffer.Bytes())
	assert.NoError(t, decoded.UnmarshalWithDecoder(decoder))
	assert.Equal(t, ts, *decoded.UnixTimestamp)
	assert.Nil(t, decoded.Epoch)
	assert.Equal(t, custodian, *decoded.Custodian)
}

func TestAuthorizeWithSeedEncoding(t *testing.T) {
	instr := StakeInstrAuthorizeWithSeed{
		NewAuthorizedPubkey: testPubkey(0x30),
		StakeAuthorize:      StakeAuthorizeWithdrawer,
		AuthoritySeed:       "vault",
		AuthorityOwner:      testPubkey(0x60),
	}

	buffer := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buffer)
	assert.NoError(t, instr.MarshalWithEncoder(encoder))

	var decoded StakeInstrAuthorizeWithSeed
	decoder := bin.NewBinDecoder(buffer.Bytes())
	assert.NoError(t, decoded.UnmarshalWithDecoder(decoder))
	assert.Equal(t, instr, decoded)
}

func TestInstructionPayloadRejectsTruncation(t *testing.T) {
	instr := StakeInstrAuthorize{NewAuthorized: testPubkey(0x30), StakeAuthorize: StakeAuthorizeStaker}

	buffer := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buffer)
	assert.NoError(t, instr.MarshalWithEncoder(encoder))

	var decoded StakeInstrAuthorize
	decoder := bin.NewBinDecoder(buffer.Bytes()[:buffer.Len()-2])
	assert.Error(t, decoded.UnmarshalWithDecoder(decoder))
}
