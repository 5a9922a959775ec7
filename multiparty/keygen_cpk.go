package multiparty

import (
	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// PublicKeyGenProtocol is the collective public key generation protocol.
// Given a common polynomial a, each party publishes -a*s_i + e_i and the
// public key is (sum_i -a*s_i + e_i, a).
type PublicKeyGenProtocol struct {
	params rlwe.Parameters
	*samplers
}

// PublicKeyGenShare is a party's share in the [PublicKeyGenProtocol].
type PublicKeyGenShare struct {
	Value ringqp.Poly
}

// PublicKeyGenCRP is the common reference polynomial of the [PublicKeyGenProtocol].
type PublicKeyGenCRP struct {
	Value ringqp.Poly
}

// NewPublicKeyGenProtocol creates a new [PublicKeyGenProtocol].
func NewPublicKeyGenProtocol(params rlwe.ParameterProvider) *PublicKeyGenProtocol {
	p := *params.GetRLWEParameters()
	return &PublicKeyGenProtocol{
		params:   p,
		samplers: newSamplers(p),
	}
}

// AllocateShare allocates a share of the protocol.
func (ckg PublicKeyGenProtocol) AllocateShare() PublicKeyGenShare {
	return PublicKeyGenShare{ckg.params.RingQP().NewPoly()}
}

// SampleCRP reads the common polynomial from the crs.
func (ckg PublicKeyGenProtocol) SampleCRP(crs CRS) PublicKeyGenCRP {
	return PublicKeyGenCRP{sampleCRPs(ckg.params, crs, 1)[0]}
}

// GenShare writes -crp*s_i + e_i on shareOut.
func (ckg PublicKeyGenProtocol) GenShare(sk *rlwe.SecretKey, crp PublicKeyGenCRP, shareOut *PublicKeyGenShare) {
	ringQP := ckg.params.RingQP()
	ckg.readErrorQP(shareOut.Value)
	ringQP.MulCoeffsMontgomeryThenSub(crp.Value, sk.Value, shareOut.Value)
}

// AggregateShares writes share1 + share2 on shareOut.
func (ckg PublicKeyGenProtocol) AggregateShares(share1, share2 PublicKeyGenShare, shareOut *PublicKeyGenShare) {
	ckg.params.RingQP().Add(share1.Value, share2.Value, shareOut.Value)
}

// GenPublicKey writes on pk the public key given by the aggregation of all the
// shares. The tag of the key is derived from its first element, since no party
// knows the collective secret.
func (ckg PublicKeyGenProtocol) GenPublicKey(share PublicKeyGenShare, crp PublicKeyGenCRP, pk *rlwe.PublicKey) {
	pk.Value[0].Copy(share.Value)
	pk.Value[1].Copy(crp.Value)
	pk.Tag = rlwe.NewKeyTag(pk.Value[0].Q)
}

// ShallowCopy creates a shallow copy of [PublicKeyGenProtocol] in which all the read-only data-structures are
// shared with the receiver and the samplers are reallocated. The receiver and the returned
// [PublicKeyGenProtocol] can be used concurrently.
func (ckg PublicKeyGenProtocol) ShallowCopy() *PublicKeyGenProtocol {
	return NewPublicKeyGenProtocol(ckg.params)
}
