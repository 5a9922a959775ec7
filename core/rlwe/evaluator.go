package rlwe

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// Evaluator is a struct that holds the necessary elements to execute general homomorphic
// operation on RLWE ciphertexts, such as automorphisms, key-switching and relinearization.
type Evaluator struct {
	params Parameters
	EvaluationKeySet
	*EvaluatorBuffers

	switcher          keySwitcher
	basisExtender     *ring.BasisExtender
	automorphismIndex map[uint64][]uint64
}

// EvaluatorBuffers are the scratch polynomials of an [Evaluator].
type EvaluatorBuffers struct {
	// BuffCt is a degree 2 ciphertext at the maximum level.
	BuffCt *Ciphertext
	// BuffQP[0-1]: accumulators of the gadget product
	// BuffQP[2]: permuted digit of the hoisted automorphism
	BuffQP [3]ringqp.Poly
	// BuffQ[0]: coefficient domain input of the decomposition
	// BuffQ[1-2]: output of the key switching
	BuffQ [3]ring.Poly
	// BuffDecompQP holds the digits of the decomposition.
	BuffDecompQP []ringqp.Poly
}

// NewEvaluatorBuffers allocates new [EvaluatorBuffers] for the parameters.
func NewEvaluatorBuffers(params Parameters) *EvaluatorBuffers {

	ringQP := params.RingQP()

	buff := &EvaluatorBuffers{
		BuffCt: NewCiphertext(params, 2, params.MaxLevel()),
		BuffQP: [3]ringqp.Poly{ringQP.NewPoly(), ringQP.NewPoly(), ringQP.NewPoly()},
		BuffQ:  [3]ring.Poly{params.RingQ().NewPoly(), params.RingQ().NewPoly(), params.RingQ().NewPoly()},
	}

	buff.BuffDecompQP = make([]ringqp.Poly, params.GadgetDigits(params.MaxLevelQ()))
	for i := range buff.BuffDecompQP {
		buff.BuffDecompQP[i] = ringQP.NewPoly()
	}

	return buff
}

// NewEvaluator creates a new [Evaluator]. evk can be nil if the evaluator
// is not used for key switching.
func NewEvaluator(params ParameterProvider, evk EvaluationKeySet) (eval *Evaluator) {

	p := params.GetRLWEParameters()

	eval = &Evaluator{
		params:           *p,
		EvaluatorBuffers: NewEvaluatorBuffers(*p),
		switcher:         p.CRTTables().switcher,
		basisExtender:    p.CRTTables().NewBasisExtender(),
	}

	return eval.withKey(evk)
}

// GetRLWEParameters returns the underlying [Parameters].
func (eval Evaluator) GetRLWEParameters() *Parameters {
	return &eval.params
}

func (eval Evaluator) withKey(evk EvaluationKeySet) *Evaluator {

	eval.EvaluationKeySet = evk
	eval.automorphismIndex = map[uint64][]uint64{}

	if evk != nil {
		for _, galEl := range evk.GetGaloisKeysList() {
			eval.automorphismIndex[galEl] = ring.AutomorphismNTTIndex(eval.params.N(), eval.params.NthRoot(), galEl)
		}
	}

	return &eval
}

// CheckAndGetGaloisKey returns an error if the [GaloisKey] for the given Galois element is missing or the [EvaluationKeySet] interface is nil.
func (eval Evaluator) CheckAndGetGaloisKey(galEl uint64) (evk *GaloisKey, err error) {

	if eval.EvaluationKeySet == nil {
		return nil, fmt.Errorf("evaluation key interface is nil")
	}

	if evk, err = eval.GetGaloisKey(galEl); err != nil {
		return nil, fmt.Errorf("%w: key for galEl %d is missing", err, galEl)
	}

	if evk.GaloisElement != galEl {
		return nil, fmt.Errorf("GaloisKey for galEl %d has GaloisElement %d", galEl, evk.GaloisElement)
	}

	if _, ok := eval.automorphismIndex[galEl]; !ok {
		eval.automorphismIndex[galEl] = ring.AutomorphismNTTIndex(eval.params.N(), eval.params.NthRoot(), galEl)
	}

	return
}

// CheckAndGetRelinearizationKey returns an error if the [RelinearizationKey] is missing or the [EvaluationKeySet] interface is nil.
func (eval Evaluator) CheckAndGetRelinearizationKey() (evk *RelinearizationKey, err error) {

	if eval.EvaluationKeySet == nil {
		return nil, fmt.Errorf("evaluation key interface is nil")
	}

	if evk, err = eval.GetRelinearizationKey(); err != nil {
		return nil, fmt.Errorf("%w: relinearization key is missing", err)
	}

	return
}

// AutomorphismIndex returns the NTT permutation of the automorphism X -> X^galEl,
// or nil if the evaluator has no key for galEl.
func (eval Evaluator) AutomorphismIndex(galEl uint64) []uint64 {
	return eval.automorphismIndex[galEl]
}

// ShallowCopy creates a shallow copy of this [Evaluator] in which all the read-only data-structures are
// shared with the receiver and the temporary buffers are reallocated. The receiver and the returned
// evaluators can be used concurrently.
func (eval Evaluator) ShallowCopy() *Evaluator {

	index := make(map[uint64][]uint64, len(eval.automorphismIndex))
	for galEl, idx := range eval.automorphismIndex {
		index[galEl] = idx
	}

	var be *ring.BasisExtender
	if eval.basisExtender != nil {
		be = eval.basisExtender.ShallowCopy()
	}

	return &Evaluator{
		params:            eval.params,
		EvaluationKeySet:  eval.EvaluationKeySet,
		EvaluatorBuffers:  NewEvaluatorBuffers(eval.params),
		switcher:          eval.switcher,
		basisExtender:     be,
		automorphismIndex: index,
	}
}

// WithKey creates a shallow copy of the receiver [Evaluator] for which the new [EvaluationKeySet] is evk
// and where the temporary buffers are shared. The receiver and the returned evaluators cannot be used concurrently.
func (eval Evaluator) WithKey(evk EvaluationKeySet) *Evaluator {
	return eval.withKey(evk)
}
