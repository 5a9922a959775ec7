package multiparty

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// EvaluationKeyGenProtocol is the collective generation of an [rlwe.EvaluationKey]
// from s_in = sum_i s_in_i to s_out = sum_i s_out_i. For each element g_k of the
// gadget vector and a common polynomial a_k, each party publishes
// -a_k*s_out_i + g_k*s_in_i + e_ik.
type EvaluationKeyGenProtocol struct {
	params rlwe.Parameters
	*samplers
	buffQP ringqp.Poly
}

// EvaluationKeyGenShare is a party's share in the [EvaluationKeyGenProtocol].
type EvaluationKeyGenShare struct {
	Value []ringqp.Poly
}

// EvaluationKeyGenCRP holds the common reference polynomials of the [EvaluationKeyGenProtocol],
// one per gadget element.
type EvaluationKeyGenCRP struct {
	Value []ringqp.Poly
}

// NewEvaluationKeyGenProtocol creates a new [EvaluationKeyGenProtocol].
func NewEvaluationKeyGenProtocol(params rlwe.ParameterProvider) *EvaluationKeyGenProtocol {
	p := *params.GetRLWEParameters()
	return &EvaluationKeyGenProtocol{
		params:   p,
		samplers: newSamplers(p),
		buffQP:   p.RingQP().NewPoly(),
	}
}

// ShallowCopy creates a shallow copy of [EvaluationKeyGenProtocol] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// [EvaluationKeyGenProtocol] can be used concurrently.
func (evkg EvaluationKeyGenProtocol) ShallowCopy() *EvaluationKeyGenProtocol {
	return NewEvaluationKeyGenProtocol(evkg.params)
}

func (evkg EvaluationKeyGenProtocol) digits() int {
	return evkg.params.GadgetDigits(evkg.params.MaxLevelQ())
}

// AllocateShare allocates a share of the protocol.
func (evkg EvaluationKeyGenProtocol) AllocateShare() EvaluationKeyGenShare {
	ringQP := evkg.params.RingQP()
	share := EvaluationKeyGenShare{Value: make([]ringqp.Poly, evkg.digits())}
	for i := range share.Value {
		share.Value[i] = ringQP.NewPoly()
	}
	return share
}

// SampleCRP reads the common polynomials from the crs.
func (evkg EvaluationKeyGenProtocol) SampleCRP(crs CRS) EvaluationKeyGenCRP {
	return EvaluationKeyGenCRP{sampleCRPs(evkg.params, crs, evkg.digits())}
}

// GenShare writes on shareOut the party's share of the key from skIn to skOut.
func (evkg EvaluationKeyGenProtocol) GenShare(skIn, skOut *rlwe.SecretKey, crp EvaluationKeyGenCRP, shareOut *EvaluationKeyGenShare) (err error) {
	if err = evkg.checkShape(crp, *shareOut); err != nil {
		return fmt.Errorf("cannot GenShare: %w", err)
	}
	evkg.genShare(skIn.Value, skOut.Value, crp, shareOut)
	return
}

// genShare computes -a_k*sOut + g_k*sIn + e_k for each gadget element.
// sIn and sOut are in the NTT and Montgomery domain.
func (evkg EvaluationKeyGenProtocol) genShare(sIn, sOut ringqp.Poly, crp EvaluationKeyGenCRP, shareOut *EvaluationKeyGenShare) {
	ringQP := evkg.params.RingQP()
	for k, h := range shareOut.Value {
		evkg.readErrorQP(h)
		ringQP.MulCoeffsMontgomeryThenSub(crp.Value[k], sOut, h)
		evkg.params.AddGadgetTimesPoly(k, sIn, h)
	}
}

// AggregateShares writes share1 + share2 on shareOut.
func (evkg EvaluationKeyGenProtocol) AggregateShares(share1, share2 EvaluationKeyGenShare, shareOut *EvaluationKeyGenShare) (err error) {

	if len(share1.Value) != len(share2.Value) || len(share1.Value) != len(shareOut.Value) {
		return fmt.Errorf("cannot AggregateShares: shares do not have the same number of elements")
	}

	ringQP := evkg.params.RingQP()
	for k := range shareOut.Value {
		ringQP.Add(share1.Value[k], share2.Value[k], shareOut.Value[k])
	}

	return
}

// GenEvaluationKey writes on evk the key given by the aggregation of all the shares.
// The source and target tags of evk are left unchanged.
func (evkg EvaluationKeyGenProtocol) GenEvaluationKey(share EvaluationKeyGenShare, crp EvaluationKeyGenCRP, evk *rlwe.EvaluationKey) (err error) {

	if err = evkg.checkShape(crp, share); err != nil {
		return fmt.Errorf("cannot GenEvaluationKey: %w", err)
	}

	if len(evk.Value) != len(share.Value) {
		return fmt.Errorf("cannot GenEvaluationKey: evaluation key has %d gadget elements but share has %d", len(evk.Value), len(share.Value))
	}

	ringQP := evkg.params.RingQP()

	for k := range evk.Value {
		ringQP.MForm(share.Value[k], evk.Value[k][0])
		ringQP.MForm(crp.Value[k], evk.Value[k][1])
	}

	evk.Technique = evkg.params.KeySwitchTechnique()

	return
}

func (evkg EvaluationKeyGenProtocol) checkShape(crp EvaluationKeyGenCRP, share EvaluationKeyGenShare) error {
	if d := evkg.digits(); len(crp.Value) != d || len(share.Value) != d {
		return fmt.Errorf("%w: gadget has %d elements but crp has %d and share has %d",
			rlwe.ErrInvalidParameters, d, len(crp.Value), len(share.Value))
	}
	return nil
}
