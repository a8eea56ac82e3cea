package txprotocol

import "github.com/ccoin/core/internal/curve"

func decompressField(b [32]byte) (curve.Point, error) {
	return curve.Decompress(b)
}

func scalarOf(b [32]byte) curve.Scalar {
	return curve.ScalarFromBytesLE(b[:])
}

// Dict is the JSON-friendly shape a Transaction round-trips through
// when a host persists it (see internal/storage). Every curve value is
// stored as its fixed-width byte encoding so the dict is stable across
// process restarts and Go versions.
type Dict struct {
	Excess   [32]byte `json:"excess"`
	SigS     [32]byte `json:"sig_s"`
	SigR     [32]byte `json:"sig_r"`
	Fee      [32]byte `json:"fee"`
	Metadata [32]byte `json:"metadata"`
	Inputs   [32]byte `json:"inputs"`
	Changes  [32]byte `json:"changes"`
	Outputs  [32]byte `json:"outputs"`
}

// ToDict converts a Transaction to its JSON-friendly Dict form.
func (t *Transaction) ToDict() Dict {
	return Dict{
		Excess:   t.Kernel.Excess.Compress(),
		SigS:     t.Kernel.Signature.S.BytesLE(),
		SigR:     t.Kernel.Signature.R.Compress(),
		Fee:      t.Kernel.Fee.BytesLE(),
		Metadata: t.Kernel.Metadata.BytesLE(),
		Inputs:   t.Body.Inputs.Compress(),
		Changes:  t.Body.Outputs[0].Compress(),
		Outputs:  t.Body.Outputs[1].Compress(),
	}
}

// FromDict reconstructs and revalidates a Transaction from a Dict,
// re-running NewTransaction's balance and signature checks so a
// tampered snapshot is rejected on load rather than trusted blindly.
func FromDict(d Dict) (*Transaction, error) {
	excess, err := decompressField(d.Excess)
	if err != nil {
		return nil, err
	}
	sigR, err := decompressField(d.SigR)
	if err != nil {
		return nil, err
	}
	inputs, err := decompressField(d.Inputs)
	if err != nil {
		return nil, err
	}
	changes, err := decompressField(d.Changes)
	if err != nil {
		return nil, err
	}
	outputs, err := decompressField(d.Outputs)
	if err != nil {
		return nil, err
	}

	sig := Signature{S: scalarOf(d.SigS), R: sigR}
	fee := scalarOf(d.Fee)
	metadata := scalarOf(d.Metadata)

	return NewTransaction(excess, sig, fee, metadata, inputs, changes, outputs)
}
