package nep2

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnsupportedParams is returned when key derivation parameters violate
// the scrypt invariants. The check runs before any derivation work so that
// a bad configuration never burns a full scrypt invocation.
var ErrUnsupportedParams = errors.New("unsupported scrypt parameters")

// ScryptParams is the canonical in-memory form of the scrypt cost
// parameters. External configuration is parsed through UnmarshalJSON which
// accepts the historical field aliases; once parsed, exactly these three
// fields carry the values.
type ScryptParams struct {
	// N is the CPU/memory cost. It must be a power of two greater than
	// one.
	N int `json:"n"`

	// R is the block size parameter.
	R int `json:"r"`

	// P is the parallelization parameter.
	P int `json:"p"`
}

// DefaultParams returns the standard cost parameters used when callers do
// not supply their own. A fresh value is returned every call; there is no
// mutable shared default.
func DefaultParams() ScryptParams {
	return ScryptParams{N: 16384, R: 8, P: 8}
}

// Validate checks the scrypt invariants: all parameters positive and N a
// power of two.
func (p ScryptParams) Validate() error {
	if p.N <= 1 || p.N&(p.N-1) != 0 {
		return fmt.Errorf("%w: N=%d is not a power of two > 1",
			ErrUnsupportedParams, p.N)
	}
	if p.R <= 0 || p.P <= 0 {
		return fmt.Errorf("%w: R=%d, P=%d must be positive",
			ErrUnsupportedParams, p.R, p.P)
	}
	return nil
}

// scryptParamsJSON carries every historical spelling of the three
// parameters seen in wallet files and RPC configuration.
type scryptParamsJSON struct {
	N    *int `json:"n"`
	Cost *int `json:"cost"`

	R          *int `json:"r"`
	BlockSize  *int `json:"blockSize"`
	BlockSize2 *int `json:"blocksize"`

	P        *int `json:"p"`
	Parallel *int `json:"parallel"`
}

// UnmarshalJSON parses scrypt parameters from external configuration,
// accepting the alias field names n/cost, r/blockSize/blocksize and
// p/parallel. Each parameter must be present under exactly one of its
// spellings.
func (p *ScryptParams) UnmarshalJSON(data []byte) error {
	var aux scryptParamsJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("unable to parse scrypt parameters: %w", err)
	}

	n, err := pickParam("cost (n)", aux.N, aux.Cost)
	if err != nil {
		return err
	}
	r, err := pickParam(
		"block size (r)", aux.R, aux.BlockSize, aux.BlockSize2,
	)
	if err != nil {
		return err
	}
	par, err := pickParam("parallelism (p)", aux.P, aux.Parallel)
	if err != nil {
		return err
	}

	p.N, p.R, p.P = n, r, par
	return nil
}

// pickParam resolves one parameter from its alias candidates, requiring it
// to be set exactly once.
func pickParam(name string, candidates ...*int) (int, error) {
	var (
		value int
		seen  int
	)
	for _, c := range candidates {
		if c != nil {
			value = *c
			seen++
		}
	}

	switch {
	case seen == 0:
		return 0, fmt.Errorf("%w: missing %s parameter",
			ErrUnsupportedParams, name)
	case seen > 1:
		return 0, fmt.Errorf("%w: %s parameter set more than once",
			ErrUnsupportedParams, name)
	}

	return value, nil
}
