package multiparty

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
)

// GaloisKeyGenProtocol is the collective generation of an [rlwe.GaloisKey]:
// the [EvaluationKeyGenProtocol] from sigma(s) to s, where sigma is the
// automorphism X -> X^galEl. Since sigma is linear, each party uses sigma(s_i).
type GaloisKeyGenProtocol struct {
	*EvaluationKeyGenProtocol
}

// GaloisKeyGenShare is a party's share in the [GaloisKeyGenProtocol].
type GaloisKeyGenShare struct {
	GaloisElement uint64
	EvaluationKeyGenShare
}

// GaloisKeyGenCRP is the common reference polynomials of the [GaloisKeyGenProtocol].
type GaloisKeyGenCRP struct {
	EvaluationKeyGenCRP
}

// NewGaloisKeyGenProtocol creates a new [GaloisKeyGenProtocol].
func NewGaloisKeyGenProtocol(params rlwe.ParameterProvider) *GaloisKeyGenProtocol {
	return &GaloisKeyGenProtocol{NewEvaluationKeyGenProtocol(params)}
}

// ShallowCopy creates a shallow copy of [GaloisKeyGenProtocol] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// [GaloisKeyGenProtocol] can be used concurrently.
func (gkg GaloisKeyGenProtocol) ShallowCopy() *GaloisKeyGenProtocol {
	return &GaloisKeyGenProtocol{gkg.EvaluationKeyGenProtocol.ShallowCopy()}
}

// AllocateShare allocates a share of the protocol.
func (gkg GaloisKeyGenProtocol) AllocateShare() GaloisKeyGenShare {
	return GaloisKeyGenShare{EvaluationKeyGenShare: gkg.EvaluationKeyGenProtocol.AllocateShare()}
}

// SampleCRP reads the common polynomials from the crs.
func (gkg GaloisKeyGenProtocol) SampleCRP(crs CRS) GaloisKeyGenCRP {
	return GaloisKeyGenCRP{gkg.EvaluationKeyGenProtocol.SampleCRP(crs)}
}

// GenShare writes on shareOut the party's share of the Galois key for galEl.
func (gkg GaloisKeyGenProtocol) GenShare(sk *rlwe.SecretKey, galEl uint64, crp GaloisKeyGenCRP, shareOut *GaloisKeyGenShare) (err error) {

	if err = gkg.checkShape(crp.EvaluationKeyGenCRP, shareOut.EvaluationKeyGenShare); err != nil {
		return fmt.Errorf("cannot GenShare: %w", err)
	}

	index := ring.AutomorphismNTTIndex(gkg.params.N(), gkg.params.NthRoot(), galEl)

	sigmaS := gkg.buffQP
	gkg.params.RingQP().AutomorphismNTTWithIndex(sk.Value, index, sigmaS)

	gkg.genShare(sigmaS, sk.Value, crp.EvaluationKeyGenCRP, &shareOut.EvaluationKeyGenShare)

	shareOut.GaloisElement = galEl

	return
}

// AggregateShares writes share1 + share2 on shareOut. The shares must be for the same Galois element.
func (gkg GaloisKeyGenProtocol) AggregateShares(share1, share2 GaloisKeyGenShare, shareOut *GaloisKeyGenShare) (err error) {

	if share1.GaloisElement != share2.GaloisElement {
		return fmt.Errorf("cannot AggregateShares: shares are for different Galois elements %d and %d", share1.GaloisElement, share2.GaloisElement)
	}

	if err = gkg.EvaluationKeyGenProtocol.AggregateShares(share1.EvaluationKeyGenShare, share2.EvaluationKeyGenShare, &shareOut.EvaluationKeyGenShare); err != nil {
		return
	}

	shareOut.GaloisElement = share1.GaloisElement

	return
}

// GenGaloisKey writes on gk the Galois key given by the aggregation of all the shares.
func (gkg GaloisKeyGenProtocol) GenGaloisKey(share GaloisKeyGenShare, crp GaloisKeyGenCRP, gk *rlwe.GaloisKey) (err error) {

	if err = gkg.GenEvaluationKey(share.EvaluationKeyGenShare, crp.EvaluationKeyGenCRP, &gk.EvaluationKey); err != nil {
		return
	}

	gk.GaloisElement = share.GaloisElement
	gk.NthRoot = gkg.params.NthRoot()

	return
}
