package multiparty

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// RelinearizationKeyGenProtocol is the two-round collective generation of an
// [rlwe.RelinearizationKey], an evaluation key from s^2 to s.
//
// Round one: with an ephemeral secret u_i, each party publishes, for each gadget element g_k,
//
//	h0_ik = -u_i*a_k + g_k*s_i + e0_ik
//	h1_ik = s_i*a_k + e1_ik
//
// Round two: given the aggregations h0_k and h1_k, each party publishes
//
//	h0'_ik = s_i*h0_k + e2_ik
//	h1'_ik = (u_i - s_i)*h1_k + e3_ik
//
// The key is (sum_i h0'_ik + h1'_ik, h1_k) = (-s*(s*a_k + e1_k) + g_k*s^2 + e_k, s*a_k + e1_k).
type RelinearizationKeyGenProtocol struct {
	params rlwe.Parameters
	*samplers
	buffQP ringqp.Poly
}

// RelinearizationKeyGenShare is a party's share in either round of the [RelinearizationKeyGenProtocol].
type RelinearizationKeyGenShare struct {
	Value [][2]ringqp.Poly
}

// RelinearizationKeyGenCRP is the common reference polynomials of the [RelinearizationKeyGenProtocol].
type RelinearizationKeyGenCRP struct {
	Value []ringqp.Poly
}

// NewRelinearizationKeyGenProtocol creates a new [RelinearizationKeyGenProtocol].
func NewRelinearizationKeyGenProtocol(params rlwe.ParameterProvider) *RelinearizationKeyGenProtocol {
	p := *params.GetRLWEParameters()
	return &RelinearizationKeyGenProtocol{
		params:   p,
		samplers: newSamplers(p),
		buffQP:   p.RingQP().NewPoly(),
	}
}

// ShallowCopy creates a shallow copy of [RelinearizationKeyGenProtocol] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// [RelinearizationKeyGenProtocol] can be used concurrently.
func (rkg RelinearizationKeyGenProtocol) ShallowCopy() *RelinearizationKeyGenProtocol {
	return NewRelinearizationKeyGenProtocol(rkg.params)
}

// AllocateShare allocates the party's ephemeral secret and its shares for the two rounds.
func (rkg RelinearizationKeyGenProtocol) AllocateShare() (ephSk *rlwe.SecretKey, r1, r2 RelinearizationKeyGenShare) {
	return rlwe.NewSecretKey(rkg.params), rkg.allocateShare(), rkg.allocateShare()
}

func (rkg RelinearizationKeyGenProtocol) allocateShare() RelinearizationKeyGenShare {
	ringQP := rkg.params.RingQP()
	share := RelinearizationKeyGenShare{Value: make([][2]ringqp.Poly, rkg.params.GadgetDigits(rkg.params.MaxLevelQ()))}
	for i := range share.Value {
		share.Value[i] = [2]ringqp.Poly{ringQP.NewPoly(), ringQP.NewPoly()}
	}
	return share
}

// SampleCRP reads the common polynomials from the crs.
func (rkg RelinearizationKeyGenProtocol) SampleCRP(crs CRS) RelinearizationKeyGenCRP {
	return RelinearizationKeyGenCRP{sampleCRPs(rkg.params, crs, rkg.params.GadgetDigits(rkg.params.MaxLevelQ()))}
}

// GenShareRoundOne samples the party's ephemeral secret on ephSkOut and writes its
// round one share on shareOut.
func (rkg RelinearizationKeyGenProtocol) GenShareRoundOne(sk *rlwe.SecretKey, crp RelinearizationKeyGenCRP, ephSkOut *rlwe.SecretKey, shareOut *RelinearizationKeyGenShare) (err error) {

	if len(crp.Value) != len(shareOut.Value) {
		return fmt.Errorf("cannot GenShareRoundOne: %w: crp has %d elements but share has %d", rlwe.ErrInvalidParameters, len(crp.Value), len(shareOut.Value))
	}

	ringQP := rkg.params.RingQP()

	rkg.readSecretQP(ephSkOut.Value)

	for k, a := range crp.Value {

		h0, h1 := shareOut.Value[k][0], shareOut.Value[k][1]

		rkg.readErrorQP(h0)
		ringQP.MulCoeffsMontgomeryThenSub(a, ephSkOut.Value, h0)
		rkg.params.AddGadgetTimesPoly(k, sk.Value, h0)

		rkg.readErrorQP(h1)
		ringQP.MulCoeffsMontgomeryThenAdd(a, sk.Value, h1)
	}

	return
}

// GenShareRoundTwo writes the party's round two share on shareOut, given the
// aggregation round1 of the round one shares of all the parties.
func (rkg RelinearizationKeyGenProtocol) GenShareRoundTwo(ephSk, sk *rlwe.SecretKey, round1 RelinearizationKeyGenShare, shareOut *RelinearizationKeyGenShare) (err error) {

	if len(round1.Value) != len(shareOut.Value) {
		return fmt.Errorf("cannot GenShareRoundTwo: %w: round one share has %d elements but output share has %d", rlwe.ErrInvalidParameters, len(round1.Value), len(shareOut.Value))
	}

	ringQP := rkg.params.RingQP()

	// u_i - s_i
	uMinusS := rkg.buffQP
	ringQP.Sub(ephSk.Value, sk.Value, uMinusS)

	for k := range round1.Value {

		h0, h1 := shareOut.Value[k][0], shareOut.Value[k][1]

		rkg.readErrorQP(h0)
		ringQP.MulCoeffsMontgomeryThenAdd(round1.Value[k][0], sk.Value, h0)

		rkg.readErrorQP(h1)
		ringQP.MulCoeffsMontgomeryThenAdd(round1.Value[k][1], uMinusS, h1)
	}

	return
}

// AggregateShares writes share1 + share2 on shareOut. It applies to the shares of both rounds.
func (rkg RelinearizationKeyGenProtocol) AggregateShares(share1, share2 RelinearizationKeyGenShare, shareOut *RelinearizationKeyGenShare) (err error) {

	if len(share1.Value) != len(share2.Value) || len(share1.Value) != len(shareOut.Value) {
		return fmt.Errorf("cannot AggregateShares: shares do not have the same number of elements")
	}

	ringQP := rkg.params.RingQP()
	for k := range shareOut.Value {
		ringQP.Add(share1.Value[k][0], share2.Value[k][0], shareOut.Value[k][0])
		ringQP.Add(share1.Value[k][1], share2.Value[k][1], shareOut.Value[k][1])
	}

	return
}

// GenRelinearizationKey writes on rlk the relinearization key given by the aggregated
// shares of the two rounds.
func (rkg RelinearizationKeyGenProtocol) GenRelinearizationKey(round1, round2 RelinearizationKeyGenShare, rlk *rlwe.RelinearizationKey) (err error) {

	if len(round1.Value) != len(round2.Value) || len(round1.Value) != len(rlk.Value) {
		return fmt.Errorf("cannot GenRelinearizationKey: %w: shares and key do not have the same number of elements", rlwe.ErrInvalidParameters)
	}

	ringQP := rkg.params.RingQP()

	for k := range rlk.Value {
		ringQP.Add(round2.Value[k][0], round2.Value[k][1], rlk.Value[k][0])
		ringQP.MForm(rlk.Value[k][0], rlk.Value[k][0])
		ringQP.MForm(round1.Value[k][1], rlk.Value[k][1])
	}

	rlk.Technique = rkg.params.KeySwitchTechnique()

	return
}
