package stakeprog

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// VoteEpochCredits is one epoch's entry in a validator's credit history.
type VoteEpochCredits struct {
	Epoch       uint64
	Credits     uint64
	PrevCredits uint64
}

// VoteRecord is the slice of a vote account this program consumes: the
// ordered (oldest first) per-epoch credit history.
type VoteRecord struct {
	EpochCredits []VoteEpochCredits
}

func (voteRecord *VoteRecord) UnmarshalWithDecoder(decoder *bin.Decoder) (err error) {
	numEntries, err := decoder.ReadUint64(bin.LE)
	if err != nil {
		return fmt.Errorf("failed to read length of EpochCredits vec: %w", err)
	}

	for count := uint64(0); count < numEntries; count++ {
		var entry VoteEpochCredits

		entry.Epoch, err = decoder.ReadUint64(bin.LE)
		if err != nil {
			return fmt.Errorf("failed to read Epoch when decoding VoteRecord: %w", err)
		}
		entry.Credits, err = decoder.ReadUint64(bin.LE)
		if err != nil {
			return fmt.Errorf("failed to read Credits when decoding VoteRecord: %w", err)
		}
		entry.PrevCredits, err = decoder.ReadUint64(bin.LE)
		if err != nil {
			return fmt.Errorf("failed to read PrevCredits when decoding VoteRecord: %w", err)
		}

		voteRecord.EpochCredits = append(voteRecord.EpochCredits, entry)
	}

	return nil
}

func (voteRecord *VoteRecord) MarshalWithEncoder(encoder *bin.Encoder) error {
	err := encoder.WriteUint64(uint64(len(voteRecord.EpochCredits)), bin.LE)
	if err != nil {
		return err
	}
	for _, entry := range voteRecord.EpochCredits {
		_ = encoder.WriteUint64(entry.Epoch, bin.LE)
		_ = encoder.WriteUint64(entry.Credits, bin.LE)
		err = encoder.WriteUint64(entry.PrevCredits, bin.LE)
		if err != nil {
			return err
		}
	}
	return nil
}

func unmarshalVoteRecord(data []byte) (*VoteRecord, error) {
	voteRecord := new(VoteRecord)
	decoder := bin.NewBinDecoder(data)
	err := voteRecord.UnmarshalWithDecoder(decoder)
	if err != nil {
		return nil, ErrInvalidAccountData
	}
	return voteRecord, nil
}

// Credits returns the validator's cumulative credit total.
func (voteRecord *VoteRecord) Credits() uint64 {
	if len(voteRecord.EpochCredits) == 0 {
		return 0
	}
	return voteRecord.EpochCredits[len(voteRecord.EpochCredits)-1].Credits
}

// LastVoteEpoch returns the most recent epoch the validator earned credits
// in, and whether it has ever voted at all.
func (voteRecord *VoteRecord) LastVoteEpoch() (uint64, bool) {
	if len(voteRecord.EpochCredits) == 0 {
		return 0, false
	}
	return voteRecord.EpochCredits[len(voteRecord.EpochCredits)-1].Epoch, true
}

// HasConsecutiveVotes reports whether the validator earned credits in every
// one of the n epochs ending at currentEpoch.
func (voteRecord *VoteRecord) HasConsecutiveVotes(currentEpoch uint64, n uint64) bool {
	if uint64(len(voteRecord.EpochCredits)) < n {
		return false
	}

	expectedEpoch := currentEpoch
	for i := uint64(0); i < n; i++ {
		entry := voteRecord.EpochCredits[uint64(len(voteRecord.EpochCredits))-1-i]
		if entry.Epoch != expectedEpoch {
			return false
		}
		expectedEpoch--
	}
	return true
}

// eligibleForDeactivateDelinquent reports whether a vote account has gone
// quiet long enough for permissionless deactivation of its delegations.
func eligibleForDeactivateDelinquent(voteRecord *VoteRecord, currentEpoch uint64) bool {
	lastEpoch, voted := voteRecord.LastVoteEpoch()
	if !voted {
		return true
	}
	// fewer than the minimum delinquent epochs have elapsed since genesis,
	// so any recorded vote is within the window
	if currentEpoch < MinimumDelinquentEpochsForDeactivation {
		return false
	}
	return lastEpoch <= currentEpoch-MinimumDelinquentEpochsForDeactivation
}

// acceptableReferenceEpochCredits reports whether a vote account is current
// enough to vouch for another's delinquency.
func acceptableReferenceEpochCredits(voteRecord *VoteRecord, currentEpoch uint64) bool {
	return voteRecord.HasConsecutiveVotes(currentEpoch, MinimumDelinquentEpochsForDeactivation)
}
