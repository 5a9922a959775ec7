package multiparty

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
)

// ThresholdDecryptionProtocol is the collective decryption of a ciphertext (c0, c1)
// encrypted under s = sum_i s_i. The lead party publishes c0 + c1*s_0 + e_0, the
// others c1*s_i + e_i, and the fusion of all the shares is the plaintext.
// The e_i are drawn from the noise flooding distribution and hide the shares of s.
type ThresholdDecryptionProtocol struct {
	params rlwe.Parameters
	*smudging
	buff ring.Poly
}

// DecryptionShare is a party's share in the [ThresholdDecryptionProtocol], in the NTT domain.
type DecryptionShare struct {
	Value ring.Poly
}

// Level returns the level of the share.
func (share DecryptionShare) Level() int {
	return share.Value.Level()
}

// NewThresholdDecryptionProtocol creates a new [ThresholdDecryptionProtocol]. The noise flooding
// distribution must be a [ring.DiscreteGaussian].
func NewThresholdDecryptionProtocol(params rlwe.ParameterProvider, noiseFlooding ring.DistributionParameters) (*ThresholdDecryptionProtocol, error) {

	p := *params.GetRLWEParameters()

	sm, err := newSmudging(p, noiseFlooding)
	if err != nil {
		return nil, fmt.Errorf("cannot NewThresholdDecryptionProtocol: %w", err)
	}

	return &ThresholdDecryptionProtocol{
		params:   p,
		smudging: sm,
		buff:     p.RingQ().NewPoly(),
	}, nil
}

// ShallowCopy creates a shallow copy of [ThresholdDecryptionProtocol] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// [ThresholdDecryptionProtocol] can be used concurrently.
func (tdp ThresholdDecryptionProtocol) ShallowCopy() *ThresholdDecryptionProtocol {
	return &ThresholdDecryptionProtocol{
		params:   tdp.params,
		smudging: tdp.smudging.shallowCopy(),
		buff:     tdp.params.RingQ().NewPoly(),
	}
}

// AllocateShare allocates a share at the given level.
func (tdp ThresholdDecryptionProtocol) AllocateShare(level int) DecryptionShare {
	return DecryptionShare{tdp.params.RingQ().AtLevel(level).NewPoly()}
}

// GenShareLead writes c0 + c1*s_i + e_i on shareOut. Exactly one party must use it.
func (tdp ThresholdDecryptionProtocol) GenShareLead(sk *rlwe.SecretKey, ct *rlwe.Ciphertext, shareOut *DecryptionShare) (err error) {
	return tdp.genShare(sk, ct, true, shareOut)
}

// GenShare writes c1*s_i + e_i on shareOut.
func (tdp ThresholdDecryptionProtocol) GenShare(sk *rlwe.SecretKey, ct *rlwe.Ciphertext, shareOut *DecryptionShare) (err error) {
	return tdp.genShare(sk, ct, false, shareOut)
}

func (tdp ThresholdDecryptionProtocol) genShare(sk *rlwe.SecretKey, ct *rlwe.Ciphertext, lead bool, shareOut *DecryptionShare) (err error) {

	if ct.Degree() != 1 {
		return fmt.Errorf("cannot GenShare: ciphertext must be of degree 1 but is %d", ct.Degree())
	}

	level := min(ct.Level(), shareOut.Level())
	shareOut.Value.Resize(level)

	ringQ := tdp.params.RingQ().AtLevel(level)

	ringQ.MulCoeffsMontgomery(ct.Value[1], sk.Value.Q, shareOut.Value)

	if lead {
		ringQ.Add(shareOut.Value, ct.Value[0], shareOut.Value)
	}

	tdp.addNoise(level, shareOut.Value, tdp.buff)

	return
}

// AggregateShares writes share1 + share2 on shareOut.
func (tdp ThresholdDecryptionProtocol) AggregateShares(share1, share2 DecryptionShare, shareOut *DecryptionShare) (err error) {

	if share1.Level() != share2.Level() {
		return fmt.Errorf("cannot AggregateShares: %w: shares at levels %d and %d", rlwe.ErrLevelMismatch, share1.Level(), share2.Level())
	}

	shareOut.Value.Resize(share1.Level())
	tdp.params.RingQ().AtLevel(share1.Level()).Add(share1.Value, share2.Value, shareOut.Value)

	return
}

// Fusion writes on ptOut the plaintext given by the aggregation of the shares of all
// the parties, lead included. ptOut takes the metadata of ct and is in the coefficient
// domain, as the output of an [rlwe.Decryptor].
func (tdp ThresholdDecryptionProtocol) Fusion(ct *rlwe.Ciphertext, combined DecryptionShare, ptOut *rlwe.Plaintext) (err error) {

	if combined.Level() != ct.Level() {
		return fmt.Errorf("cannot Fusion: %w: ciphertext at level %d but shares at level %d", rlwe.ErrLevelMismatch, ct.Level(), combined.Level())
	}

	level := min(ct.Level(), ptOut.Level())

	ptOut.Value.Resize(level)
	*ptOut.MetaData = *ct.MetaData

	tdp.params.RingQ().AtLevel(level).INTT(combined.Value, ptOut.Value)
	ptOut.IsNTT = false

	return
}
