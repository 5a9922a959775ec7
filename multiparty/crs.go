package multiparty

import (
	"fmt"

	"github.com/FlorentCLMichel/palisade-sub001/utils/sampling"
)

// CRS is an interface for Common Reference Strings.
// CRSs are PRNGs for which the read bits are the same for
// all parties.
type CRS interface {
	sampling.PRNG
}

// NewCRS returns a [CRS] keyed with seed. Parties instantiating it
// with the same seed read the same stream.
func NewCRS(seed []byte) (CRS, error) {
	prng, err := sampling.NewKeyedPRNG(seed)
	if err != nil {
		return nil, fmt.Errorf("cannot NewCRS: %w", err)
	}
	return prng, nil
}
