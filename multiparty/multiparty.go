// Package multiparty implements the threshold variant of the RLWE schemes:
// a secret key s = s_0 + ... + s_{n-1} is additively shared among n parties,
// who jointly generate the public, relinearization, Galois and switching keys
// for s, and jointly decrypt ciphertexts encrypted under s.
//
// Every protocol follows the same pattern: each party produces a share from
// its secret key and, where needed, a common reference polynomial (CRP) read
// from a [CRS]; shares are summed with AggregateShares; the final key or
// plaintext is obtained from the aggregated share.
package multiparty

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/core/rlwe"
	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

// samplers are the private samplers of a party.
type samplers struct {
	params rlwe.Parameters
	xe     ring.Sampler
	xs     ring.Sampler
	buffQ  ring.Poly
}

func newSamplers(params rlwe.Parameters) *samplers {

	prng := sampling.NewPRNG()

	xe, err := ring.NewSampler(prng, params.RingQ(), params.Xe())

	// Sanity check, this error should not happen.
	if err != nil {
		panic(fmt.Errorf("newSamplers: %w", err))
	}

	xs, err := ring.NewSampler(prng, params.RingQ(), params.Xs())

	// Sanity check, this error should not happen.
	if err != nil {
		panic(fmt.Errorf("newSamplers: %w", err))
	}

	return &samplers{
		params: params,
		xe:     xe,
		xs:     xs,
		buffQ:  params.RingQ().NewPoly(),
	}
}

// readErrorQP samples an error scaled by the error scale of the parameters
// and writes it on e over QP in the NTT domain.
func (s *samplers) readErrorQP(e ringqp.Poly) {
	ringQP := s.params.RingQP()
	s.xe.Read(s.buffQ)
	if t := s.params.ErrorScale(); t > 1 {
		s.params.RingQ().MulScalar(s.buffQ, t, s.buffQ)
	}
	ringQP.ExtendBasisSmallNormAndCenter(s.buffQ, e.Q, e.P)
	ringQP.NTT(e, e)
}

// readSecretQP samples a polynomial from the secret distribution and writes it on
// u over QP in the NTT and Montgomery domain.
func (s *samplers) readSecretQP(u ringqp.Poly) {
	ringQP := s.params.RingQP()
	s.xs.Read(s.buffQ)
	ringQP.ExtendBasisSmallNormAndCenter(s.buffQ, u.Q, u.P)
	ringQP.NTT(u, u)
	ringQP.MForm(u, u)
}

// sampleCRPs reads n uniform polynomials over QP from the crs.
func sampleCRPs(params rlwe.Parameters, crs CRS, n int) []ringqp.Poly {
	return ringqp.NewUniformSampler(crs, *params.RingQP()).ReadVectorNew(n)
}

// smudging samples the flooding noise added to the shares of the protocols
// whose output is not encrypted under the collective key.
type smudging struct {
	params  rlwe.Parameters
	noise   ring.DiscreteGaussian
	sampler ring.Sampler
}

func newSmudging(params rlwe.Parameters, noiseFlooding ring.DistributionParameters) (*smudging, error) {

	noise, ok := noiseFlooding.(ring.DiscreteGaussian)
	if !ok {
		return nil, fmt.Errorf("invalid noise flooding distribution: must be %T but is %T", ring.DiscreteGaussian{}, noiseFlooding)
	}

	sampler, err := ring.NewSampler(sampling.NewPRNG(), params.RingQ(), noise)
	if err != nil {
		return nil, err
	}

	return &smudging{params: params, noise: noise, sampler: sampler}, nil
}

// addNoise samples a flooding noise scaled by the error scale and adds it on p,
// given in the NTT domain at the given level. buff is used as a buffer.
func (s *smudging) addNoise(level int, p, buff ring.Poly) {
	ringQ := s.params.RingQ().AtLevel(level)
	s.sampler.AtLevel(level).Read(buff)
	if t := s.params.ErrorScale(); t > 1 {
		ringQ.MulScalar(buff, t, buff)
	}
	ringQ.NTT(buff, buff)
	ringQ.Add(p, buff, p)
}

func (s *smudging) shallowCopy() *smudging {
	sm, err := newSmudging(s.params, s.noise)
	// Sanity check, this error should not happen.
	if err != nil {
		panic(err)
	}
	return sm
}
