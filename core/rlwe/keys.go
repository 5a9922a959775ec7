package rlwe

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
)

// SecretKey is a type for generic RLWE secret keys.
// The Value field stores the polynomial in the NTT and Montgomery domain, over QP.
type SecretKey struct {
	Value ringqp.Poly
	Tag   KeyTag
}

// NewSecretKey generates a new [SecretKey] with zero values.
func NewSecretKey(params ParameterProvider) *SecretKey {
	return &SecretKey{Value: params.GetRLWEParameters().RingQP().NewPoly()}
}

// LevelQ returns the level of the modulus Q of the target.
func (sk SecretKey) LevelQ() int {
	return sk.Value.LevelQ()
}

// LevelP returns the level of the modulus P of the target.
// Returns -1 if P is absent.
func (sk SecretKey) LevelP() int {
	return sk.Value.LevelP()
}

// CopyNew creates a deep copy of the receiver secret key and returns it.
func (sk SecretKey) CopyNew() *SecretKey {
	return &SecretKey{Value: sk.Value.CopyNew(), Tag: sk.Tag}
}

// Equal performs a deep equal.
func (sk SecretKey) Equal(other *SecretKey) bool {
	return sk.Tag == other.Tag && sk.Value.Equal(other.Value)
}

// PublicKey is a type for generic RLWE public keys.
// The Value field stores the polynomials in the NTT domain, over QP.
type PublicKey struct {
	Value [2]ringqp.Poly
	Tag   KeyTag
}

// NewPublicKey returns a new [PublicKey] with zero values.
func NewPublicKey(params ParameterProvider) (pk *PublicKey) {
	ringQP := params.GetRLWEParameters().RingQP()
	return &PublicKey{Value: [2]ringqp.Poly{ringQP.NewPoly(), ringQP.NewPoly()}}
}

// LevelQ returns the level of the modulus Q of the target.
func (pk PublicKey) LevelQ() int {
	return pk.Value[0].LevelQ()
}

// LevelP returns the level of the modulus P of the target.
// Returns -1 if P is absent.
func (pk PublicKey) LevelP() int {
	return pk.Value[0].LevelP()
}

// CopyNew creates a deep copy of the target [PublicKey] and returns it.
func (pk PublicKey) CopyNew() *PublicKey {
	return &PublicKey{Value: [2]ringqp.Poly{pk.Value[0].CopyNew(), pk.Value[1].CopyNew()}, Tag: pk.Tag}
}

// Equal performs a deep equal.
func (pk PublicKey) Equal(other *PublicKey) bool {
	return pk.Tag == other.Tag && pk.Value[0].Equal(other.Value[0]) && pk.Value[1].Equal(other.Value[1])
}

// GadgetCiphertext is a vector of RLWE encryptions, over QP, of the products of a
// secret with the elements of the gadget vector of a key-switching technique.
// Value[i] = (b_i, a_i) with b_i = -a_i*s_out + e_i + g_i*s_in. The polynomials are
// stored in the NTT and Montgomery domain.
type GadgetCiphertext struct {
	Value [][2]ringqp.Poly
}

// NewGadgetCiphertext returns a new [GadgetCiphertext] with zero values for the gadget of the parameters.
func NewGadgetCiphertext(params ParameterProvider) *GadgetCiphertext {
	p := params.GetRLWEParameters()
	ringQP := p.RingQP()
	ct := &GadgetCiphertext{Value: make([][2]ringqp.Poly, p.GadgetDigits(p.MaxLevelQ()))}
	for i := range ct.Value {
		ct.Value[i] = [2]ringqp.Poly{ringQP.NewPoly(), ringQP.NewPoly()}
	}
	return ct
}

// LevelQ returns the level of the modulus Q of the target.
func (ct GadgetCiphertext) LevelQ() int {
	return ct.Value[0][0].LevelQ()
}

// LevelP returns the level of the modulus P of the target.
func (ct GadgetCiphertext) LevelP() int {
	return ct.Value[0][0].LevelP()
}

// Digits returns the number of digits of the gadget.
func (ct GadgetCiphertext) Digits() int {
	return len(ct.Value)
}

// CopyNew creates a deep copy of the target [GadgetCiphertext].
func (ct GadgetCiphertext) CopyNew() *GadgetCiphertext {
	v := make([][2]ringqp.Poly, len(ct.Value))
	for i := range v {
		v[i] = [2]ringqp.Poly{ct.Value[i][0].CopyNew(), ct.Value[i][1].CopyNew()}
	}
	return &GadgetCiphertext{Value: v}
}

// Equal performs a deep equal.
func (ct GadgetCiphertext) Equal(other *GadgetCiphertext) bool {
	if len(ct.Value) != len(other.Value) {
		return false
	}
	for i := range ct.Value {
		if !ct.Value[i][0].Equal(other.Value[i][0]) || !ct.Value[i][1].Equal(other.Value[i][1]) {
			return false
		}
	}
	return true
}

// EvaluationKey is a public key that re-encrypts ciphertexts decrypting
// under a source key into ciphertexts decrypting under a target key.
// It can only be used with parameters of the technique it was generated for.
type EvaluationKey struct {
	GadgetCiphertext
	Technique KeySwitchTechnique
	SourceTag KeyTag
	TargetTag KeyTag
}

// NewEvaluationKey returns a new [EvaluationKey] with zero values.
func NewEvaluationKey(params ParameterProvider) *EvaluationKey {
	return &EvaluationKey{
		GadgetCiphertext: *NewGadgetCiphertext(params),
		Technique:        params.GetRLWEParameters().KeySwitchTechnique(),
	}
}

// CopyNew creates a deep copy of the target [EvaluationKey].
func (evk EvaluationKey) CopyNew() *EvaluationKey {
	return &EvaluationKey{
		GadgetCiphertext: *evk.GadgetCiphertext.CopyNew(),
		Technique:        evk.Technique,
		SourceTag:        evk.SourceTag,
		TargetTag:        evk.TargetTag,
	}
}

// Equal performs a deep equal.
func (evk EvaluationKey) Equal(other *EvaluationKey) bool {
	return evk.Technique == other.Technique &&
		evk.SourceTag == other.SourceTag &&
		evk.TargetTag == other.TargetTag &&
		evk.GadgetCiphertext.Equal(&other.GadgetCiphertext)
}

// RelinearizationKey is an [EvaluationKey] from s^2 to s.
type RelinearizationKey struct {
	EvaluationKey
}

// NewRelinearizationKey allocates a new [RelinearizationKey] with zero values.
func NewRelinearizationKey(params ParameterProvider) *RelinearizationKey {
	return &RelinearizationKey{EvaluationKey: *NewEvaluationKey(params)}
}

// GaloisKey is an [EvaluationKey] from sigma(s) to s, where sigma is the
// automorphism X -> X^GaloisElement. Applying it after sigma on a ciphertext
// encrypted under s gives an encryption of sigma(m) under s.
type GaloisKey struct {
	GaloisElement uint64
	NthRoot       uint64
	EvaluationKey
}

// NewGaloisKey allocates a new [GaloisKey] with zero values.
func NewGaloisKey(params ParameterProvider) *GaloisKey {
	return &GaloisKey{EvaluationKey: *NewEvaluationKey(params), NthRoot: params.GetRLWEParameters().NthRoot()}
}

// CopyNew creates a deep copy of the target [GaloisKey].
func (gk GaloisKey) CopyNew() *GaloisKey {
	return &GaloisKey{GaloisElement: gk.GaloisElement, NthRoot: gk.NthRoot, EvaluationKey: *gk.EvaluationKey.CopyNew()}
}

// EvaluationKeySet is an interface implementing methods
// to load the [RelinearizationKey] and [GaloisKey] in the [Evaluator].
type EvaluationKeySet interface {

	// GetGaloisKey retrieves the Galois key for the automorphism X^{i} -> X^{i*galEl}.
	GetGaloisKey(galEl uint64) (evk *GaloisKey, err error)

	// GetGaloisKeysList returns the list of all the Galois elements
	// for which a Galois key exists in the object.
	GetGaloisKeysList() (galEls []uint64)

	// GetRelinearizationKey retrieves the RelinearizationKey.
	GetRelinearizationKey() (evk *RelinearizationKey, err error)
}

// MemEvaluationKeySet is a basic in-memory implementation of the [EvaluationKeySet] interface.
type MemEvaluationKeySet struct {
	RelinearizationKey *RelinearizationKey
	GaloisKeys         map[uint64]*GaloisKey
}

// NewMemEvaluationKeySet returns a new [EvaluationKeySet] with the provided [RelinearizationKey] and [GaloisKey].
func NewMemEvaluationKeySet(relinKey *RelinearizationKey, galoisKeys ...*GaloisKey) (eks *MemEvaluationKeySet) {
	eks = &MemEvaluationKeySet{GaloisKeys: map[uint64]*GaloisKey{}}
	eks.RelinearizationKey = relinKey
	for _, k := range galoisKeys {
		eks.GaloisKeys[k.GaloisElement] = k
	}
	return eks
}

// GetGaloisKey retrieves the Galois key for the automorphism X^{i} -> X^{i*galEl}.
func (evk MemEvaluationKeySet) GetGaloisKey(galEl uint64) (gk *GaloisKey, err error) {
	var ok bool
	if gk, ok = evk.GaloisKeys[galEl]; !ok {
		return nil, fmt.Errorf("GaloisKey[%d] is nil", galEl)
	}

	return
}

// GetGaloisKeysList returns the sorted list of all the Galois elements
// for which a Galois key exists in the object.
func (evk MemEvaluationKeySet) GetGaloisKeysList() (galEls []uint64) {

	if evk.GaloisKeys == nil {
		return []uint64{}
	}

	galEls = maps.Keys(evk.GaloisKeys)
	slices.Sort(galEls)

	return
}

// GetRelinearizationKey retrieves the [RelinearizationKey].
func (evk MemEvaluationKeySet) GetRelinearizationKey() (rk *RelinearizationKey, err error) {
	if evk.RelinearizationKey != nil {
		return evk.RelinearizationKey, nil
	}

	return nil, fmt.Errorf("RelinearizationKey is nil")
}
