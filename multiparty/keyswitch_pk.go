package multiparty

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
)

// PublicKeySwitchProtocol re-encrypts a ciphertext (c0, c1) encrypted under the
// collective key s = sum_i s_i to the owner of a public key pk, without decrypting it.
// Each party publishes (c1*s_i + u_i*pk_0 + e0_i, u_i*pk_1 + e1_i), where e0_i is
// drawn from the noise flooding distribution, and the output is
// (c0 + sum_i c1*s_i + u_i*pk_0 + e0_i, sum_i u_i*pk_1 + e1_i).
type PublicKeySwitchProtocol struct {
	params rlwe.Parameters
	*smudging
	enc  *rlwe.Encryptor
	buff ring.Poly
}

// PublicKeySwitchShare is a party's share in the [PublicKeySwitchProtocol], in the NTT domain.
type PublicKeySwitchShare struct {
	Value [2]ring.Poly
}

// Level returns the level of the share.
func (share PublicKeySwitchShare) Level() int {
	return share.Value[0].Level()
}

// NewPublicKeySwitchProtocol creates a new [PublicKeySwitchProtocol]. The noise flooding
// distribution must be a [ring.DiscreteGaussian].
func NewPublicKeySwitchProtocol(params rlwe.ParameterProvider, noiseFlooding ring.DistributionParameters) (*PublicKeySwitchProtocol, error) {

	p := *params.GetRLWEParameters()

	sm, err := newSmudging(p, noiseFlooding)
	if err != nil {
		return nil, fmt.Errorf("cannot NewPublicKeySwitchProtocol: %w", err)
	}

	return &PublicKeySwitchProtocol{
		params:   p,
		smudging: sm,
		enc:      rlwe.NewEncryptor(p, nil),
		buff:     p.RingQ().NewPoly(),
	}, nil
}

// ShallowCopy creates a shallow copy of [PublicKeySwitchProtocol] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// [PublicKeySwitchProtocol] can be used concurrently.
func (pcks PublicKeySwitchProtocol) ShallowCopy() *PublicKeySwitchProtocol {
	return &PublicKeySwitchProtocol{
		params:   pcks.params,
		smudging: pcks.smudging.shallowCopy(),
		enc:      pcks.enc.ShallowCopy(),
		buff:     pcks.params.RingQ().NewPoly(),
	}
}

// AllocateShare allocates a share at the given level.
func (pcks PublicKeySwitchProtocol) AllocateShare(level int) PublicKeySwitchShare {
	ringQ := pcks.params.RingQ().AtLevel(level)
	return PublicKeySwitchShare{[2]ring.Poly{ringQ.NewPoly(), ringQ.NewPoly()}}
}

// GenShare writes on shareOut the party's share of the re-encryption of ct under pk.
func (pcks PublicKeySwitchProtocol) GenShare(sk *rlwe.SecretKey, pk *rlwe.PublicKey, ct *rlwe.Ciphertext, shareOut *PublicKeySwitchShare) (err error) {

	if ct.Degree() != 1 {
		return fmt.Errorf("cannot GenShare: ciphertext must be of degree 1 but is %d", ct.Degree())
	}

	level := min(ct.Level(), shareOut.Level())
	shareOut.Value[0].Resize(level)
	shareOut.Value[1].Resize(level)

	// (u_i*pk_0 + e_i, u_i*pk_1 + e_i)
	zero := &rlwe.Ciphertext{MetaData: &rlwe.MetaData{}, Value: shareOut.Value[:]}
	if err = pcks.enc.WithKey(pk).EncryptZero(zero); err != nil {
		return fmt.Errorf("cannot GenShare: %w", err)
	}

	ringQ := pcks.params.RingQ().AtLevel(level)
	ringQ.MulCoeffsMontgomeryThenAdd(ct.Value[1], sk.Value.Q, shareOut.Value[0])

	pcks.addNoise(level, shareOut.Value[0], pcks.buff)

	return
}

// AggregateShares writes share1 + share2 on shareOut.
func (pcks PublicKeySwitchProtocol) AggregateShares(share1, share2 PublicKeySwitchShare, shareOut *PublicKeySwitchShare) (err error) {

	level := share1.Level()

	if level != share2.Level() {
		return fmt.Errorf("cannot AggregateShares: %w: shares at levels %d and %d", rlwe.ErrLevelMismatch, level, share2.Level())
	}

	ringQ := pcks.params.RingQ().AtLevel(level)
	for i := range shareOut.Value {
		shareOut.Value[i].Resize(level)
		ringQ.Add(share1.Value[i], share2.Value[i], shareOut.Value[i])
	}

	return
}

// KeySwitch writes on opOut the re-encryption of ctIn under the target public key, given the
// aggregation of the shares of all the parties. The key tag of opOut is the tag of pk.
func (pcks PublicKeySwitchProtocol) KeySwitch(ctIn *rlwe.Ciphertext, combined PublicKeySwitchShare, pk *rlwe.PublicKey, opOut *rlwe.Ciphertext) (err error) {

	level := ctIn.Level()

	if combined.Level() != level {
		return fmt.Errorf("cannot KeySwitch: %w: ciphertext at level %d but shares at level %d", rlwe.ErrLevelMismatch, level, combined.Level())
	}

	if ctIn != opOut {
		opOut.Resize(1, level)
		*opOut.MetaData = *ctIn.MetaData
	}

	ringQ := pcks.params.RingQ().AtLevel(level)
	ringQ.Add(ctIn.Value[0], combined.Value[0], opOut.Value[0])
	opOut.Value[1].CopyLvl(level, combined.Value[1])

	opOut.KeyTag = pk.Tag

	return
}
