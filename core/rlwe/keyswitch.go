package rlwe

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// HoistedDecomposition is the decomposition of the second element of a
// ciphertext along the gadget of the key-switching technique, in the NTT
// domain. It can be reused to apply several automorphisms on the same
// ciphertext at the cost of a single decomposition.
type HoistedDecomposition struct {
	LevelQ int
	Value  []ringqp.Poly
}

// NewHoistedDecomposition allocates a new [HoistedDecomposition] at the maximum level.
func NewHoistedDecomposition(params ParameterProvider) *HoistedDecomposition {
	p := params.GetRLWEParameters()
	ringQP := p.RingQP()
	decomp := &HoistedDecomposition{LevelQ: p.MaxLevelQ(), Value: make([]ringqp.Poly, p.GadgetDigits(p.MaxLevelQ()))}
	for i := range decomp.Value {
		decomp.Value[i] = ringQP.NewPoly()
	}
	return decomp
}

func (eval Evaluator) checkEvaluationKey(evk *EvaluationKey, tag KeyTag) error {

	if evk.Technique != eval.params.KeySwitchTechnique() {
		return fmt.Errorf("%w: key generated for %s but parameters use %s", ErrTechniqueMismatch, evk.Technique, eval.params.KeySwitchTechnique())
	}

	if evk.Digits() != eval.params.GadgetDigits(eval.params.MaxLevelQ()) {
		return fmt.Errorf("%w: key has %d digits but parameters use %d", ErrTechniqueMismatch, evk.Digits(), eval.params.GadgetDigits(eval.params.MaxLevelQ()))
	}

	return CheckKeyTags(tag, evk.SourceTag)
}

// ApplyEvaluationKey re-encrypts ctIn, which decrypts under the source key of evk,
// into opOut, which decrypts under the target key of evk.
//
// The method returns an error if ctIn or opOut are not of degree 1, if evk was
// generated for another key-switching technique, or if the key tag of ctIn does
// not match the source key of evk.
func (eval Evaluator) ApplyEvaluationKey(ctIn *Ciphertext, evk *EvaluationKey, opOut *Ciphertext) (err error) {

	if ctIn.Degree() != 1 || opOut.Degree() != 1 {
		return fmt.Errorf("cannot ApplyEvaluationKey: input and output Ciphertext must be of degree 1")
	}

	if err = eval.checkEvaluationKey(evk, ctIn.KeyTag); err != nil {
		return fmt.Errorf("cannot ApplyEvaluationKey: %w", err)
	}

	level := min(ctIn.Level(), opOut.Level())

	d0, d1 := eval.BuffQ[1], eval.BuffQ[2]

	eval.KeySwitch(level, ctIn.Value[1], evk, d0, d1)

	opOut.Resize(1, level)
	eval.params.RingQ().AtLevel(level).Add(ctIn.Value[0], d0, opOut.Value[0])
	opOut.Value[1].CopyLvl(level, d1)

	*opOut.MetaData = *ctIn.MetaData
	opOut.KeyTag = evk.TargetTag

	return
}

// Relinearize applies the relinearization procedure on ctIn and returns the result in opOut.
// Relinearization takes as input a quadratic ciphertext, that decrypts with the key (1, sk, sk^2) and
// outputs a linear ciphertext that decrypts with the key (1, sk).
// The method will return an error if the input ciphertext degree isn't 2 or if
// the [RelinearizationKey] is missing.
func (eval Evaluator) Relinearize(ctIn *Ciphertext, opOut *Ciphertext) (err error) {

	if ctIn.Degree() != 2 {
		return fmt.Errorf("cannot Relinearize: ctIn.Degree() should be 2 but is %d", ctIn.Degree())
	}

	var rlk *RelinearizationKey
	if rlk, err = eval.CheckAndGetRelinearizationKey(); err != nil {
		return fmt.Errorf("cannot Relinearize: %w", err)
	}

	if err = eval.checkEvaluationKey(&rlk.EvaluationKey, ctIn.KeyTag); err != nil {
		return fmt.Errorf("cannot Relinearize: %w", err)
	}

	level := min(ctIn.Level(), opOut.Level())

	ringQ := eval.params.RingQ().AtLevel(level)

	d0, d1 := eval.BuffQ[1], eval.BuffQ[2]

	eval.KeySwitch(level, ctIn.Value[2], &rlk.EvaluationKey, d0, d1)

	opOut.Resize(1, level)
	ringQ.Add(ctIn.Value[0], d0, opOut.Value[0])
	ringQ.Add(ctIn.Value[1], d1, opOut.Value[1])

	if opOut != ctIn {
		*opOut.MetaData = *ctIn.MetaData
	}

	return
}

// Automorphism computes phi(ct), where phi is the map X -> X^galEl. The method requires
// that the corresponding [GaloisKey] has been added to the [Evaluator]. The method will
// return an error if either ctIn or opOut degree is not equal to 1.
func (eval Evaluator) Automorphism(ctIn *Ciphertext, galEl uint64, opOut *Ciphertext) (err error) {

	if ctIn.Degree() != 1 || opOut.Degree() != 1 {
		return fmt.Errorf("cannot apply Automorphism: input and output Ciphertext must be of degree 1")
	}

	if galEl == 1 {
		if opOut != ctIn {
			opOut.Copy(ctIn)
		}
		return
	}

	var evk *GaloisKey
	if evk, err = eval.CheckAndGetGaloisKey(galEl); err != nil {
		return fmt.Errorf("cannot apply Automorphism: %w", err)
	}

	if err = eval.checkEvaluationKey(&evk.EvaluationKey, ctIn.KeyTag); err != nil {
		return fmt.Errorf("cannot apply Automorphism: %w", err)
	}

	level := min(ctIn.Level(), opOut.Level())

	ringQ := eval.params.RingQ().AtLevel(level)
	index := eval.automorphismIndex[galEl]

	sigmaC0, sigmaC1 := eval.BuffCt.Value[0], eval.BuffCt.Value[1]
	d0, d1 := eval.BuffQ[1], eval.BuffQ[2]

	ringQ.AutomorphismNTTWithIndex(ctIn.Value[0], index, sigmaC0)
	ringQ.AutomorphismNTTWithIndex(ctIn.Value[1], index, sigmaC1)

	eval.KeySwitch(level, sigmaC1, &evk.EvaluationKey, d0, d1)

	opOut.Resize(1, level)
	ringQ.Add(sigmaC0, d0, opOut.Value[0])
	opOut.Value[1].CopyLvl(level, d1)

	if opOut != ctIn {
		*opOut.MetaData = *ctIn.MetaData
	}

	return
}

// DecomposeNTTNew decomposes the second element of ct along the gadget of the
// key-switching technique and returns the result on a new [HoistedDecomposition].
func (eval Evaluator) DecomposeNTTNew(ct *Ciphertext) (decomp *HoistedDecomposition) {
	decomp = NewHoistedDecomposition(eval.params)
	eval.DecomposeNTT(ct, decomp)
	return
}

// DecomposeNTT decomposes the second element of ct along the gadget of the
// key-switching technique and writes the result on decomp.
func (eval Evaluator) DecomposeNTT(ct *Ciphertext, decomp *HoistedDecomposition) {
	decomp.LevelQ = ct.Level()
	eval.switcher.decompose(ct.Level(), ct.Value[1], eval.BuffQ[0], decomp.Value)
}

// AutomorphismHoisted is identical to [Evaluator.Automorphism], except that it
// takes the decomposition of ctIn as an additional input, so that rotating the
// same ciphertext several times decomposes it only once.
func (eval Evaluator) AutomorphismHoisted(ctIn *Ciphertext, decomp *HoistedDecomposition, galEl uint64, opOut *Ciphertext) (err error) {

	if ctIn.Degree() != 1 || opOut.Degree() != 1 {
		return fmt.Errorf("cannot apply AutomorphismHoisted: input and output Ciphertext must be of degree 1")
	}

	if decomp.LevelQ != ctIn.Level() {
		return fmt.Errorf("cannot apply AutomorphismHoisted: decomposition level %d does not match the ciphertext level %d", decomp.LevelQ, ctIn.Level())
	}

	if galEl == 1 {
		if opOut != ctIn {
			opOut.Copy(ctIn)
		}
		return
	}

	var evk *GaloisKey
	if evk, err = eval.CheckAndGetGaloisKey(galEl); err != nil {
		return fmt.Errorf("cannot apply AutomorphismHoisted: %w", err)
	}

	if err = eval.checkEvaluationKey(&evk.EvaluationKey, ctIn.KeyTag); err != nil {
		return fmt.Errorf("cannot apply AutomorphismHoisted: %w", err)
	}

	level := ctIn.Level()

	ringQ := eval.params.RingQ().AtLevel(level)
	index := eval.automorphismIndex[galEl]

	d0, d1 := eval.BuffQ[1], eval.BuffQ[2]

	eval.gadgetProduct(level, decomp.Value, index, &evk.GadgetCiphertext, d0, d1)

	sigmaC0 := eval.BuffCt.Value[0]
	ringQ.AutomorphismNTTWithIndex(ctIn.Value[0], index, sigmaC0)

	opOut.Resize(1, level)
	ringQ.Add(sigmaC0, d0, opOut.Value[0])
	opOut.Value[1].CopyLvl(level, d1)

	if opOut != ctIn {
		*opOut.MetaData = *ctIn.MetaData
	}

	return
}

// KeySwitch computes (d0, d1) = <decomp(c1), evk> at levelQ, such that
// d0 + d1*s_out = c1*s_in + e. c1, d0 and d1 are in the NTT domain.
// d0 and d1 must not alias c1.
func (eval Evaluator) KeySwitch(levelQ int, c1 ring.Poly, evk *EvaluationKey, d0, d1 ring.Poly) {
	eval.switcher.decompose(levelQ, c1, eval.BuffQ[0], eval.BuffDecompQP)
	eval.gadgetProduct(levelQ, eval.BuffDecompQP, nil, &evk.GadgetCiphertext, d0, d1)
}

// gadgetProduct computes the inner product between the digits, permuted by the
// automorphism index if not nil, and the gadget ciphertext, and divides the result by P.
func (eval Evaluator) gadgetProduct(levelQ int, digits []ringqp.Poly, index []uint64, gct *GadgetCiphertext, d0, d1 ring.Poly) {

	levelP := eval.params.MaxLevelP()

	ringQP := eval.params.RingQP().AtLevel(levelQ, levelP)

	acc0, acc1 := eval.BuffQP[0], eval.BuffQP[1]

	for i := 0; i < eval.switcher.digits(levelQ); i++ {

		digit := digits[i]

		if index != nil {
			digit = eval.BuffQP[2]
			ringQP.AutomorphismNTTWithIndex(digits[i], index, digit)
		}

		if i == 0 {
			ringQP.MulCoeffsMontgomery(digit, gct.Value[i][0], acc0)
			ringQP.MulCoeffsMontgomery(digit, gct.Value[i][1], acc1)
		} else {
			ringQP.MulCoeffsMontgomeryThenAdd(digit, gct.Value[i][0], acc0)
			ringQP.MulCoeffsMontgomeryThenAdd(digit, gct.Value[i][1], acc1)
		}
	}

	if levelP < 0 {
		d0.CopyLvl(levelQ, acc0.Q)
		d1.CopyLvl(levelQ, acc1.Q)
		return
	}

	if eval.params.ErrorScale() > 1 {
		eval.basisExtender.ModDownQPtoQNTTLSB(levelQ, acc0.Q, acc0.P, d0)
		eval.basisExtender.ModDownQPtoQNTTLSB(levelQ, acc1.Q, acc1.P, d1)
	} else {
		eval.basisExtender.ModDownQPtoQNTT(levelQ, acc0.Q, acc0.P, d0)
		eval.basisExtender.ModDownQPtoQNTT(levelQ, acc1.Q, acc1.P, d1)
	}
}
