package rlwe

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"math/bits"

	"github.com/google/go-cmp/cmp"

	"github.com/FlorentCLMichel/palisade-sub001/ring"
	"github.com/FlorentCLMichel/palisade-sub001/ring/ringqp"
	"github.com/FlorentCLMichel/palisade-sub001/utils"
	"github.com/FlorentCLMichel/palisade-sub001/utils/bignum"
)

// MaxLogN is the log2 of the largest supported polynomial modulus degree.
const MaxLogN = 17

// MinLogN is the log2 of the smallest supported polynomial modulus degree (needed to ensure the NTT correctness).
const MinLogN = 3

// MaxModuliSize is the largest bit-length supported for the moduli in the RNS representation.
const MaxModuliSize = ring.MaxModulusBits

// GaloisGen is an integer of order N/2 modulo 2N that spans Z_2N together with -1.
// The j-th ring automorphism takes the root zeta to zeta^(5^j).
const GaloisGen uint64 = 5

// KeySwitchTechnique identifies the key-switching protocol used by the
// evaluation keys of a parameter set.
type KeySwitchTechnique int

const (
	// HYBRID decomposes the ciphertext in NumLargeDigits groups of consecutive
	// RNS towers and uses an auxiliary modulus P larger than a single group.
	HYBRID KeySwitchTechnique = iota
	// BV decomposes each RNS tower in base 2^RelinWindow and does not use P.
	BV
	// GHS raises the ciphertext to QP with a single digit and requires P >= Q.
	GHS
)

var keySwitchTechniqueNames = [...]string{"HYBRID", "BV", "GHS"}

// String returns the name of the technique.
func (ks KeySwitchTechnique) String() string {
	if ks < 0 || int(ks) >= len(keySwitchTechniqueNames) {
		return fmt.Sprintf("KeySwitchTechnique(%d)", int(ks))
	}
	return keySwitchTechniqueNames[ks]
}

// MarshalText encodes the technique as its name.
func (ks KeySwitchTechnique) MarshalText() ([]byte, error) {
	if ks < 0 || int(ks) >= len(keySwitchTechniqueNames) {
		return nil, fmt.Errorf("invalid key-switching technique %d", int(ks))
	}
	return []byte(ks.String()), nil
}

// UnmarshalText decodes a technique from its name.
func (ks *KeySwitchTechnique) UnmarshalText(text []byte) error {
	for i, name := range keySwitchTechniqueNames {
		if name == string(text) {
			*ks = KeySwitchTechnique(i)
			return nil
		}
	}
	return fmt.Errorf("invalid key-switching technique %q", text)
}

// ParametersLiteral is a literal representation of RLWE parameters. It has public fields and
// is used to express unchecked user-defined parameters literally into Go programs.
// The [NewParametersFromLiteral] function is used to generate the actual checked parameters
// from the literal representation.
//
// Users must set the polynomial degree (LogN) and the coefficient modulus, by either setting
// the Q field to the desired moduli chain, or by setting the LogQ field to the desired moduli
// sizes. The auxiliary modulus can be given the same way with P or LogP; if both are left
// empty and the technique is GHS or HYBRID, P is generated with primes of AuxModuliSize bits.
//
// Optionally, users may specify
//   - the key-switching technique and its parameters (RelinWindow for BV, NumLargeDigits for HYBRID)
//   - the secret and error distributions (Xs, Xe)
//   - the error scale t: errors of keys and encryptions are multiples of t (BGV)
//
// If left unset, standard default values for these field are substituted at
// parameter creation (see [NewParametersFromLiteral]).
type ParametersLiteral struct {
	LogN               int
	Q                  []uint64                    `json:",omitempty"`
	P                  []uint64                    `json:",omitempty"`
	LogQ               []int                       `json:",omitempty"`
	LogP               []int                       `json:",omitempty"`
	Xe                 ring.DistributionParameters `json:",omitempty"`
	Xs                 ring.DistributionParameters `json:",omitempty"`
	KeySwitchTechnique KeySwitchTechnique
	RelinWindow        int    `json:",omitempty"`
	NumLargeDigits     int    `json:",omitempty"`
	AuxModuliSize      int    `json:",omitempty"`
	ErrorScale         uint64 `json:",omitempty"`
	DefaultScale       Scale  `json:",omitempty"`
}

// Parameters represents a set of generic RLWE parameters. Its fields are private and
// immutable. See [ParametersLiteral] for user-specified parameters.
type Parameters struct {
	logN          int
	qi            []uint64
	pi            []uint64
	xe            Distribution
	xs            Distribution
	technique     KeySwitchTechnique
	relinWindow   int
	dnum          int
	auxModuliSize int
	errorScale    uint64
	defaultScale  Scale
	ringQ         *ring.Ring
	ringP         *ring.Ring
	crt           *CRTTables
}

// NewParametersFromLiteral instantiate a set of generic RLWE parameters from a [ParametersLiteral].
// It returns the empty parameters Parameters{} and a non-nil error wrapping [ErrInvalidParameters]
// if the specified parameters are invalid.
//
// If the moduli chain is specified through the LogQ and LogP fields, the method generates a moduli chain matching
// the specified sizes (see [GenModuli]).
//
// If the auxiliary modulus is not specified and the technique is GHS or HYBRID, the method
// adds AuxModuliSize-bit primes to P until log2(P) is at least log2(Q) (GHS) or
// the log2 of the largest digit modulus (HYBRID).
//
// If NumLargeDigits is left unset, it is set to ceil(#Q/#P) when P is given and to min(#Q, 3) otherwise.
func NewParametersFromLiteral(paramDef ParametersLiteral) (params Parameters, err error) {

	if paramDef.Xs == nil {
		paramDef.Xs = DefaultXs
	}

	if paramDef.Xe == nil {
		paramDef.Xe = DefaultXe
	}

	if paramDef.DefaultScale.Cmp(Scale{}) == 0 {
		paramDef.DefaultScale = NewScale(1)
	}

	if paramDef.AuxModuliSize == 0 {
		paramDef.AuxModuliSize = DefaultAuxModuliSize
	}

	if paramDef.ErrorScale == 0 {
		paramDef.ErrorScale = 1
	}

	if err = checkSizeParams(paramDef.LogN); err != nil {
		return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	// Invalid moduli configurations: do not allow empty Q and LogQ as well double-set log and non-log fields.
	if len(paramDef.Q) == 0 && len(paramDef.LogQ) == 0 {
		return Parameters{}, fmt.Errorf("%w: both Q and LogQ fields are empty", ErrInvalidParameters)
	}
	if paramDef.Q != nil && paramDef.LogQ != nil {
		return Parameters{}, fmt.Errorf("%w: both Q and LogQ fields are set", ErrInvalidParameters)
	}
	if paramDef.P != nil && paramDef.LogP != nil {
		return Parameters{}, fmt.Errorf("%w: both P and LogP fields are set", ErrInvalidParameters)
	}

	q, p := paramDef.Q, paramDef.P

	if paramDef.LogQ != nil || paramDef.LogP != nil {
		var qGen, pGen []uint64
		if qGen, pGen, err = GenModuli(paramDef.LogN+1, paramDef.LogQ, paramDef.LogP); err != nil {
			return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
		}
		if paramDef.LogQ != nil {
			q = qGen
		}
		if paramDef.LogP != nil {
			p = pGen
		}
	}

	if err = CheckModuli(q, p); err != nil {
		return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	L := len(q)

	switch paramDef.KeySwitchTechnique {
	case BV:
		if len(p) != 0 {
			return Parameters{}, fmt.Errorf("%w: BV key switching does not use an auxiliary modulus but #P=%d", ErrInvalidParameters, len(p))
		}
		if paramDef.RelinWindow < 0 || paramDef.RelinWindow >= 64 {
			return Parameters{}, fmt.Errorf("%w: RelinWindow must be in [0, 63] but is %d", ErrInvalidParameters, paramDef.RelinWindow)
		}
	case GHS:
		if len(p) == 0 {
			if p, err = genAuxModuli(paramDef.LogN+1, paramDef.AuxModuliSize, bignum.Log2Int(productOf(q)), q); err != nil {
				return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
			}
		}
		if logP, logQ := bignum.Log2Int(productOf(p)), bignum.Log2Int(productOf(q)); logP < logQ {
			return Parameters{}, fmt.Errorf("%w: GHS key switching requires log2(P)=%.2f >= log2(Q)=%.2f", ErrInvalidParameters, logP, logQ)
		}
	case HYBRID:

		dnum := paramDef.NumLargeDigits

		if dnum == 0 {
			if len(p) != 0 {
				dnum = (L + len(p) - 1) / len(p)
			} else {
				dnum = utils.Min(L, 3)
			}
		}

		if dnum < 1 || dnum > L {
			return Parameters{}, fmt.Errorf("%w: NumLargeDigits must be in [1, #Q=%d] but is %d", ErrInvalidParameters, L, dnum)
		}

		paramDef.NumLargeDigits = dnum

		logDigit := maxDigitLog2(q, (L+dnum-1)/dnum)

		if len(p) == 0 {
			if p, err = genAuxModuli(paramDef.LogN+1, paramDef.AuxModuliSize, logDigit, q); err != nil {
				return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
			}
		}

		if logP := bignum.Log2Int(productOf(p)); logP < logDigit {
			return Parameters{}, fmt.Errorf("%w: HYBRID key switching requires log2(P)=%.2f >= log2 of the largest digit=%.2f", ErrInvalidParameters, logP, logDigit)
		}

	default:
		return Parameters{}, fmt.Errorf("%w: invalid key-switching technique %d", ErrInvalidParameters, paramDef.KeySwitchTechnique)
	}

	if err = CheckModuli(q, p); err != nil {
		return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	params = Parameters{
		logN:          paramDef.LogN,
		qi:            append([]uint64{}, q...),
		pi:            append([]uint64{}, p...),
		technique:     paramDef.KeySwitchTechnique,
		relinWindow:   paramDef.RelinWindow,
		dnum:          paramDef.NumLargeDigits,
		auxModuliSize: paramDef.AuxModuliSize,
		errorScale:    paramDef.ErrorScale,
		defaultScale:  paramDef.DefaultScale,
	}

	if len(params.pi) == 0 {
		params.pi = nil
	}

	switch xs := paramDef.Xs.(type) {
	case ring.Ternary, ring.DiscreteGaussian:
		params.xs = NewDistribution(xs, params.logN)
	default:
		return Parameters{}, fmt.Errorf("%w: secret distribution type must be Ternary or DiscreteGaussian but is %T", ErrInvalidParameters, xs)
	}

	switch xe := paramDef.Xe.(type) {
	case ring.Ternary, ring.DiscreteGaussian:
		params.xe = NewDistribution(xe, params.logN)
	default:
		return Parameters{}, fmt.Errorf("%w: error distribution type must be Ternary or DiscreteGaussian but is %T", ErrInvalidParameters, xe)
	}

	if err = params.initRings(); err != nil {
		return Parameters{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}

	params.crt = newCRTTables(params)

	return
}

// ParametersLiteral returns the [ParametersLiteral] of the target [Parameters].
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral{
		LogN:               p.logN,
		Q:                  p.Q(),
		P:                  p.P(),
		Xe:                 p.xe.DistributionParameters,
		Xs:                 p.xs.DistributionParameters,
		KeySwitchTechnique: p.technique,
		RelinWindow:        p.relinWindow,
		NumLargeDigits:     p.dnum,
		AuxModuliSize:      p.auxModuliSize,
		ErrorScale:         p.errorScale,
		DefaultScale:       p.defaultScale,
	}
}

// GetRLWEParameters returns a pointer to the underlying RLWE parameters.
func (p Parameters) GetRLWEParameters() *Parameters {
	return &p
}

// NewScale creates a new scale using the stored default scale as template.
func (p Parameters) NewScale(scale interface{}) Scale {
	newScale := NewScale(scale)
	newScale.Mod = p.defaultScale.Mod
	return newScale
}

// N returns the ring degree
func (p Parameters) N() int {
	return 1 << p.logN
}

// LogN returns the log of the degree of the polynomial ring
func (p Parameters) LogN() int {
	return p.logN
}

// NthRoot returns the NthRoot of the ring.
func (p Parameters) NthRoot() uint64 {
	return uint64(2 << p.logN)
}

// DefaultScale returns the default scaling factor of the plaintext, if any.
func (p Parameters) DefaultScale() Scale {
	return p.defaultScale
}

// RingQ returns a pointer to ringQ
func (p Parameters) RingQ() *ring.Ring {
	return p.ringQ
}

// RingP returns a pointer to ringP, which is nil if the parameters have no auxiliary modulus.
func (p Parameters) RingP() *ring.Ring {
	return p.ringP
}

// RingQP returns a pointer to ringQP
func (p Parameters) RingQP() *ringqp.Ring {
	return &ringqp.Ring{RingQ: p.ringQ, RingP: p.ringP}
}

// Xs returns the Distribution of the secret
func (p Parameters) Xs() ring.DistributionParameters {
	return p.xs.DistributionParameters
}

// Xe returns Distribution of the error
func (p Parameters) Xe() ring.DistributionParameters {
	return p.xe.DistributionParameters
}

// XsHammingWeight returns the expected Hamming weight of the secret.
func (p Parameters) XsHammingWeight() int {
	switch xs := p.xs.DistributionParameters.(type) {
	case ring.Ternary:
		if xs.H != 0 {
			return xs.H
		}
		return int(math.Ceil(float64(p.N()) * xs.P))
	case ring.DiscreteGaussian:
		return int(math.Ceil(float64(p.N()) * xs.Sigma * math.Sqrt(2.0/math.Pi)))
	default:
		panic(fmt.Sprintf("invalid error distribution: must be DiscreteGaussian, Ternary but is %T", xs))
	}
}

// NoiseBound returns truncation bound for the error distribution.
func (p Parameters) NoiseBound() float64 {
	return p.xe.AbsBound
}

// NoiseFreshSK returns the standard deviation
// of a fresh encryption with the secret key.
func (p Parameters) NoiseFreshSK() float64 {
	return p.xe.Std
}

// KeySwitchTechnique returns the key-switching technique of the parameters.
func (p Parameters) KeySwitchTechnique() KeySwitchTechnique {
	return p.technique
}

// RelinWindow returns the base 2 logarithm of the BV digit size (0 if the towers are not decomposed).
func (p Parameters) RelinWindow() int {
	return p.relinWindow
}

// NumLargeDigits returns the number of HYBRID digits requested at creation.
func (p Parameters) NumLargeDigits() int {
	return p.dnum
}

// AuxModuliSize returns the bit-size of the automatically generated auxiliary primes.
func (p Parameters) AuxModuliSize() int {
	return p.auxModuliSize
}

// ErrorScale returns the factor t of which the errors are multiples (1 if unused).
func (p Parameters) ErrorScale() uint64 {
	return p.errorScale
}

// CRTTables returns the precomputed RNS tables of the parameters.
func (p Parameters) CRTTables() *CRTTables {
	return p.crt
}

// GadgetDigits returns the number of digits of the decomposition of a ciphertext at levelQ.
func (p Parameters) GadgetDigits(levelQ int) int {
	return p.crt.switcher.digits(levelQ)
}

// AddGadgetTimesPoly adds g_digit * s on b, where g_digit is the digit-th
// element of the gadget vector. s is given in the NTT and Montgomery domain
// and b in the NTT domain, both at the maximum levels.
func (p Parameters) AddGadgetTimesPoly(digit int, s, b ringqp.Poly) {
	p.crt.switcher.addGadget(digit, s, b)
}

// MaxLevel returns the maximum level of a ciphertext.
func (p Parameters) MaxLevel() int {
	return p.MaxLevelQ()
}

// MaxLevelQ returns the maximum level of the modulus Q.
func (p Parameters) MaxLevelQ() int {
	return p.QCount() - 1
}

// MaxLevelP returns the maximum level of the modulus P.
func (p Parameters) MaxLevelP() int {
	return p.PCount() - 1
}

// Q returns a new slice with the factors of the ciphertext modulus q
func (p Parameters) Q() []uint64 {
	qi := make([]uint64, len(p.qi))
	copy(qi, p.qi)
	return qi
}

// QCount returns the number of factors of the ciphertext modulus Q
func (p Parameters) QCount() int {
	return len(p.qi)
}

// QBigInt return the ciphertext-space modulus Q in big.Integer, reconstructed, representation.
func (p Parameters) QBigInt() *big.Int {
	return productOf(p.qi)
}

// P returns a new slice with the factors of the ciphertext modulus extension P
func (p Parameters) P() []uint64 {
	if len(p.pi) == 0 {
		return nil
	}
	pi := make([]uint64, len(p.pi))
	copy(pi, p.pi)
	return pi
}

// PCount returns the number of factors of the ciphertext modulus extension P
func (p Parameters) PCount() int {
	return len(p.pi)
}

// PBigInt return the ciphertext-space extension modulus P in big.Integer, reconstructed, representation.
func (p Parameters) PBigInt() *big.Int {
	return productOf(p.pi)
}

// LogQ returns the size of the modulus Q in bits
func (p Parameters) LogQ() float64 {
	return bignum.Log2Int(p.QBigInt())
}

// LogP returns the size of the modulus P in bits
func (p Parameters) LogP() float64 {
	if len(p.pi) == 0 {
		return 0
	}
	return bignum.Log2Int(p.PBigInt())
}

// LogQi returns round(log2) of each primes of the modulus Q.
func (p Parameters) LogQi() (logqi []int) {
	logqi = make([]int, len(p.qi))
	for i := range p.qi {
		logqi[i] = int(math.Round(math.Log2(float64(p.qi[i]))))
	}
	return
}

// GaloisElements takes a list of integers k and returns the list [GaloisGen^{k[i]} mod NthRoot, ...].
func (p Parameters) GaloisElements(k []int) (galEls []uint64) {
	galEls = make([]uint64, len(k))
	for i, ki := range k {
		galEls[i] = p.GaloisElement(ki)
	}
	return
}

// GaloisElement takes an integer k and returns GaloisGen^{k} mod NthRoot.
func (p Parameters) GaloisElement(k int) uint64 {
	return ring.ModExp(GaloisGen, uint64(k)&(p.NthRoot()-1), p.NthRoot())
}

// GaloisElementForComplexConjugation returns -1 mod NthRoot, the Galois element of X -> X^-1.
func (p Parameters) GaloisElementForComplexConjugation() uint64 {
	return p.NthRoot() - 1
}

// ModInvGaloisElement takes a Galois element of the form GaloisGen^{k} mod NthRoot
// and returns GaloisGen^{-k} mod NthRoot.
func (p Parameters) ModInvGaloisElement(galEl uint64) uint64 {
	return ring.ModExp(galEl, p.NthRoot()/2-1, p.NthRoot())
}

// Equal checks two Parameter structs for equality.
func (p Parameters) Equal(other *Parameters) (res bool) {
	res = p.logN == other.logN
	res = res && (p.xs.DistributionParameters == other.xs.DistributionParameters)
	res = res && (p.xe.DistributionParameters == other.xe.DistributionParameters)
	res = res && cmp.Equal(p.qi, other.qi)
	res = res && cmp.Equal(p.pi, other.pi)
	res = res && (p.technique == other.technique)
	res = res && (p.relinWindow == other.relinWindow)
	res = res && (p.dnum == other.dnum)
	res = res && (p.errorScale == other.errorScale)
	res = res && (p.defaultScale.Equal(other.defaultScale))
	return
}

// MarshalJSON returns a JSON representation of this parameter set. See Marshal from the [encoding/json] package.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the receiver Parameter. See Unmarshal from the [encoding/json] package.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var params ParametersLiteral
	if err = json.Unmarshal(data, &params); err != nil {
		return err
	}
	*p, err = NewParametersFromLiteral(params)
	return
}

// UnpackLevelParams is an internal function for unpacking level values
// passed as variadic function parameters.
func (p Parameters) UnpackLevelParams(args []int) (levelQ, levelP int) {
	switch len(args) {
	case 0:
		return p.MaxLevelQ(), p.MaxLevelP()
	case 1:
		return args[0], p.MaxLevelP()
	default:
		return args[0], args[1]
	}
}

// CheckModuli checks that the provided q and p correspond to a valid moduli chain.
func CheckModuli(q, p []uint64) error {

	for i, qi := range q {
		if bits.Len64(qi) > MaxModuliSize {
			return fmt.Errorf("a Qi bit-size (i=%d) is larger than %d", i, MaxModuliSize)
		}
		if !ring.IsPrime(qi) {
			return fmt.Errorf("a Qi (i=%d) is not a prime", i)
		}
	}

	for i, pi := range p {
		if bits.Len64(pi) > MaxModuliSize {
			return fmt.Errorf("a Pi bit-size (i=%d) is larger than %d", i, MaxModuliSize)
		}
		if !ring.IsPrime(pi) {
			return fmt.Errorf("a Pi (i=%d) is not a prime", i)
		}
	}

	if !utils.AllDistinct(append(append([]uint64{}, q...), p...)) {
		return fmt.Errorf("the moduli of Q and P must be pairwise distinct")
	}

	return nil
}

func checkSizeParams(logN int) error {
	if logN > MaxLogN {
		return fmt.Errorf("logN=%d is larger than MaxLogN=%d", logN, MaxLogN)
	}
	if logN < MinLogN {
		return fmt.Errorf("logN=%d is smaller than MinLogN=%d", logN, MinLogN)
	}
	return nil
}

func checkModuliLogSize(logQ, logP []int) error {

	for i, qi := range logQ {
		if qi <= 0 || qi > MaxModuliSize {
			return fmt.Errorf("logQ[%d]=%d is not in ]0, %d]", i, qi, MaxModuliSize)
		}
	}

	for i, pi := range logP {
		if pi <= 0 || pi > MaxModuliSize {
			return fmt.Errorf("logP[%d]=%d is not in ]0, %d]", i, pi, MaxModuliSize)
		}
	}

	return nil
}

// GenModuli generates a valid moduli chain from the provided moduli sizes.
// The primes are congruent to 1 modulo 2^LogNthRoot.
func GenModuli(LogNthRoot int, logQ, logP []int) (q, p []uint64, err error) {

	if err = checkModuliLogSize(logQ, logP); err != nil {
		return
	}

	// Extracts all the different primes bit size and maps their number
	primesbitlen := make(map[int]int)
	for _, qi := range logQ {
		primesbitlen[qi]++
	}

	for _, pj := range logP {
		primesbitlen[pj]++
	}

	// For each bit-size, finds that many primes
	primes := make(map[int][]uint64)
	for bitsize, value := range primesbitlen {

		g := ring.NewNTTFriendlyPrimesGenerator(uint64(bitsize), uint64(1<<LogNthRoot))

		if bitsize == MaxModuliSize {
			if primes[bitsize], err = g.NextDownstreamPrimes(value); err != nil {
				return q, p, fmt.Errorf("cannot GenModuli: failed to generate %d primes of bit-size=%d for LogNthRoot=%d: %w", value, bitsize, LogNthRoot, err)
			}
		} else {
			if primes[bitsize], err = g.NextAlternatingPrimes(value); err != nil {
				return q, p, fmt.Errorf("cannot GenModuli: failed to generate %d primes of bit-size=%d for LogNthRoot=%d: %w", value, bitsize, LogNthRoot, err)
			}
		}
	}

	// Assigns the primes to the moduli chain
	for _, qi := range logQ {
		q = append(q, primes[qi][0])
		primes[qi] = primes[qi][1:]
	}

	// Assigns the primes to the special primes list for the extended ring
	for _, pj := range logP {
		p = append(p, primes[pj][0])
		primes[pj] = primes[pj][1:]
	}

	return
}

// genAuxModuli returns primes of logSize bits, distinct from the excluded
// primes, whose product has at least logTarget bits.
func genAuxModuli(LogNthRoot, logSize int, logTarget float64, exclude []uint64) (p []uint64, err error) {

	if logSize <= 0 || logSize > MaxModuliSize {
		return nil, fmt.Errorf("AuxModuliSize=%d is not in ]0, %d]", logSize, MaxModuliSize)
	}

	g := ring.NewNTTFriendlyPrimesGenerator(uint64(logSize), uint64(1<<LogNthRoot), exclude...)

	P := big.NewInt(1)
	for bignum.Log2Int(P) < logTarget {

		var pj []uint64
		if pj, err = g.NextAlternatingPrimes(1); err != nil {
			return nil, fmt.Errorf("cannot select the auxiliary moduli: %w", err)
		}

		p = append(p, pj[0])
		P.Mul(P, new(big.Int).SetUint64(pj[0]))
	}

	return
}

// maxDigitLog2 returns the log2 of the largest product of alpha consecutive moduli of q.
func maxDigitLog2(q []uint64, alpha int) (logMax float64) {
	for start := 0; start < len(q); start += alpha {
		end := utils.Min(start+alpha, len(q))
		logMax = math.Max(logMax, bignum.Log2Int(productOf(q[start:end])))
	}
	return
}

func productOf(moduli []uint64) *big.Int {
	m := big.NewInt(1)
	for _, qi := range moduli {
		m.Mul(m, new(big.Int).SetUint64(qi))
	}
	return m
}

func (p *Parameters) initRings() (err error) {
	if p.ringQ, err = ring.NewRing(1<<p.logN, p.qi); err != nil {
		return fmt.Errorf("initRings/ringQ: %w", err)
	}
	if len(p.pi) != 0 {
		if p.ringP, err = ring.NewRing(1<<p.logN, p.pi); err != nil {
			return fmt.Errorf("initRings/ringP: %w", err)
		}
	}
	return
}

// UnmarshalJSON decodes the JSON encoding of a [ParametersLiteral] on the receiver.
func (p *ParametersLiteral) UnmarshalJSON(b []byte) (err error) {
	var pl struct {
		LogN               int
		Q                  []uint64
		P                  []uint64
		LogQ               []int
		LogP               []int
		Xe                 map[string]interface{}
		Xs                 map[string]interface{}
		KeySwitchTechnique KeySwitchTechnique
		RelinWindow        int
		NumLargeDigits     int
		AuxModuliSize      int
		ErrorScale         uint64
		DefaultScale       Scale
	}

	if err = json.Unmarshal(b, &pl); err != nil {
		return err
	}

	p.LogN = pl.LogN
	p.Q, p.P, p.LogQ, p.LogP = pl.Q, pl.P, pl.LogQ, pl.LogP
	if pl.Xs != nil {
		if p.Xs, err = ring.ParametersFromMap(pl.Xs); err != nil {
			return err
		}
	}
	if pl.Xe != nil {
		if p.Xe, err = ring.ParametersFromMap(pl.Xe); err != nil {
			return err
		}
	}
	p.KeySwitchTechnique = pl.KeySwitchTechnique
	p.RelinWindow = pl.RelinWindow
	p.NumLargeDigits = pl.NumLargeDigits
	p.AuxModuliSize = pl.AuxModuliSize
	p.ErrorScale = pl.ErrorScale
	p.DefaultScale = pl.DefaultScale

	return
}
