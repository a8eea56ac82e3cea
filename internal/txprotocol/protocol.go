// Package txprotocol implements the two-party Mimblewimble send/receive
// protocol: a sender and a recipient each hold one half of a
// transaction's secrets, exchange a Request/Response pair, and each end
// up able to assemble (or verify) the same balanced, signed
// Transaction without either party learning the other's blinders.
package txprotocol

import (
	"context"
	"errors"

	"github.com/ccoin/core/internal/commitment"
	"github.com/ccoin/core/internal/curve"
	"github.com/ccoin/core/internal/oracle"
)

// Protocol errors.
var (
	ErrUnbalanced        = errors.New("txprotocol: inputs and outputs do not balance")
	ErrBadSignature      = errors.New("txprotocol: aggregated signature does not verify")
	ErrRequestInvalid    = errors.New("txprotocol: request carries an invalid curve point")
	ErrValueMismatch     = errors.New("txprotocol: response value does not match the request")
	ErrInsufficientSpend = errors.New("txprotocol: input value does not cover value plus fee plus change")
	ErrNoResponse        = errors.New("txprotocol: no response has been merged yet")
)

// Kernel carries a transaction's public excess, its aggregated
// signature, and the plaintext fee and metadata the signature commits
// to. Mirrors py934/mimblewimble.py:Kernel.
type Kernel struct {
	Excess    curve.Point
	Signature Signature
	Fee       curve.Scalar
	Metadata  curve.Scalar
}

// Body carries the commitments a transaction spends and creates.
// Outputs holds exactly two entries in this protocol's two-party model:
// [change, recipient output]. Mirrors
// py934/mimblewimble.py:Body.
type Body struct {
	Inputs  curve.Point
	Outputs [2]curve.Point
}

// Transaction is a complete, self-certifying Mimblewimble transaction:
// constructing one checks both the balance equation and the aggregated
// Schnorr signature, so a *Transaction that exists at all is valid by
// construction. Mirrors py934/mimblewimble.py:Transaction.__init__,
// generalized with the range_proofs/inclusion_proofs/mw_proof members
// spec §3's Transaction data model adds: each is the oracle.Proof zero
// value until the corresponding Set*/Compute* method fills it in, since
// all three are only ever available after the build-time balance and
// signature checks already passed.
type Transaction struct {
	Kernel Kernel
	Body   Body

	// RangeProofs are the memoized range proofs of the two outputs in
	// Body.Outputs order ([change, output]).
	RangeProofs [2]oracle.Proof

	// InclusionProofs are the MMR inclusion proofs of the two spent
	// inputs, filled in once their positions in the tree are known.
	InclusionProofs [2]oracle.Proof

	// MWProof attests the kernel's balance equation and aggregated
	// signature over the spent inputs' secrets without revealing them.
	MWProof oracle.Proof
}

// SetRangeProofs attaches previously computed range proofs for this
// transaction's two outputs (in Body.Outputs order: [change, output]).
func (t *Transaction) SetRangeProofs(change, output oracle.Proof) {
	t.RangeProofs = [2]oracle.Proof{change, output}
}

// SetInclusionProofs attaches previously computed MMR inclusion proofs
// for this transaction's two spent inputs.
func (t *Transaction) SetInclusionProofs(input0, input1 oracle.Proof) {
	t.InclusionProofs = [2]oracle.Proof{input0, input1}
}

// ComputeMWProof builds and runs the mimblewimble balance circuit's
// argument vector (spec §6) against prover and memoizes the result onto
// MWProof. tagInput0/tagInput1 are the two spent inputs' tags;
// rInputs/vInputs are their blinders and values in the same order, the
// second slot holding the zero dummy input's (r=0, v=0) pair when the
// transaction only spends one real input.
func (t *Transaction) ComputeMWProof(ctx context.Context, prover oracle.Prover, tagInput0, tagInput1 curve.Scalar, rInputs, vInputs [2]curve.Scalar) error {
	args := oracle.ArgsMimblewimble(
		t.Kernel.Fee, t.Kernel.Metadata,
		tagInput0, tagInput1,
		t.Body.Outputs,
		t.Kernel.Signature.R, t.Kernel.Excess, t.Kernel.Signature.S,
		rInputs, vInputs,
	)
	proof, err := prover.Prove(ctx, args)
	if err != nil {
		return err
	}
	t.MWProof = proof
	return nil
}

// NewTransaction assembles and validates a Transaction from its public
// quantities, returning ErrUnbalanced or ErrBadSignature if either
// invariant fails.
func NewTransaction(excess curve.Point, sig Signature, fee, metadata curve.Scalar, inputs, changes, outputs curve.Point) (*Transaction, error) {
	_, H := curve.Generators()
	lhs := inputs.Add(excess)
	rhs := changes.Add(outputs).Add(H.Mul(fee))
	if !lhs.Equal(rhs) {
		return nil, ErrUnbalanced
	}

	challenge := Challenge(excess, sig.R, fee, metadata)
	if !sig.Verify(excess, challenge) {
		return nil, ErrBadSignature
	}

	return &Transaction{
		Kernel: Kernel{Excess: excess, Signature: sig, Fee: fee, Metadata: metadata},
		Body:   Body{Inputs: inputs, Outputs: [2]curve.Point{changes, outputs}},
	}, nil
}

// Challenge recomputes the kernel's Fiat-Shamir challenge.
func (t *Transaction) Challenge() curve.Scalar {
	return Challenge(t.Kernel.Excess, t.Kernel.Signature.R, t.Kernel.Fee, t.Kernel.Metadata)
}

// Request is what a sender hands a recipient to ask them to build the
// other half of a transaction. It deliberately does not carry the
// sender's input or change commitments (the newer protocol variant);
// only the value being sent, the fee, the sender's public nonce and
// excess, and an opaque metadata field cross the wire.
type Request struct {
	Value    curve.Scalar
	Fee      curve.Scalar
	SigSalt  curve.Point
	Excess   curve.Point
	Metadata curve.Scalar
}

// Valid checks the request's public points are well-formed curve
// points. Unlike the older protocol variant, this Request carries
// neither hh_inputs nor hh_changes, so the full balance identity is not
// checkable from the Request alone: it is only checkable once the
// sender assembles the final Transaction after a Response is merged.
func (r Request) Valid() bool {
	return r.Excess.IsValid() && r.SigSalt.IsValid()
}

// Response is what a recipient hands back to the sender after building
// their own output: the commitment they created, their own public key
// contribution to the aggregate excess, and their partial signature.
// Mirrors py934/mimblewimble.py:Response.
type Response struct {
	Outputs   curve.Point
	Excess    curve.Point
	Signature Signature
}

// SendTxBuilder builds a TxSend from its required fields, validating
// eagerly rather than deferring to Build, matching the teacher's
// validating-setter builder idiom in internal/zkp/transaction.go's
// TransactionBuilder.
type SendTxBuilder struct {
	value    *curve.Scalar
	fee      *curve.Scalar
	input    *commitment.Output
	change   *commitment.Output
	metadata curve.Scalar
	sigSalt  *curve.Scalar
	prover   oracle.Prover
}

// NewSendTxBuilder returns an empty SendTxBuilder with zero metadata.
func NewSendTxBuilder() *SendTxBuilder {
	return &SendTxBuilder{metadata: curve.ScalarFromUint64(0)}
}

// Value sets the amount being sent.
func (b *SendTxBuilder) Value(v curve.Scalar) *SendTxBuilder { b.value = &v; return b }

// Fee sets the transaction fee.
func (b *SendTxBuilder) Fee(f curve.Scalar) *SendTxBuilder { b.fee = &f; return b }

// InputTxo sets the output being spent.
func (b *SendTxBuilder) InputTxo(o commitment.Output) *SendTxBuilder { b.input = &o; return b }

// ChangeTxo sets the sender's own change output; its value must equal
// input - value - fee.
func (b *SendTxBuilder) ChangeTxo(o commitment.Output) (*SendTxBuilder, error) {
	if b.input == nil || b.value == nil || b.fee == nil {
		return nil, ErrInsufficientSpend
	}
	inputValue, err := b.input.Value()
	if err != nil {
		return nil, err
	}
	changeValue, err := o.Value()
	if err != nil {
		return nil, err
	}
	want := b.value.Add(*b.fee).Add(changeValue)
	if inputValue.Cmp(want) != 0 {
		return nil, ErrInsufficientSpend
	}
	b.change = &o
	return b, nil
}

// Metadata sets the opaque metadata field committed to by the Schnorr
// challenge.
func (b *SendTxBuilder) Metadata(m curve.Scalar) *SendTxBuilder { b.metadata = m; return b }

// SigSalt sets the sender's signature nonce.
func (b *SendTxBuilder) SigSalt(s curve.Scalar) *SendTxBuilder { b.sigSalt = &s; return b }

// WithProver attaches a Prover that Merge uses to compute the finished
// Transaction's MWProof, mirroring commitment.Output.WithProver.
func (b *SendTxBuilder) WithProver(p oracle.Prover) *SendTxBuilder { b.prover = p; return b }

// Build validates the accumulated fields and returns a TxSend.
func (b *SendTxBuilder) Build() (*TxSend, error) {
	if b.value == nil || b.fee == nil || b.input == nil || b.change == nil || b.sigSalt == nil {
		return nil, ErrInsufficientSpend
	}
	ts, err := NewTxSend(*b.value, *b.fee, *b.input, *b.change, b.metadata, *b.sigSalt)
	if err != nil {
		return nil, err
	}
	ts.prover = b.prover
	return ts, nil
}

// TxSend is the sender's half of a two-party Mimblewimble exchange: it
// knows both the spent input's and its own change output's secrets, and
// so can compute its share of the excess and signature once a Response
// arrives. Mirrors py934/mimblewimble.py:TxSend.
type TxSend struct {
	Value    curve.Scalar
	Fee      curve.Scalar
	Input    commitment.Output
	Change   commitment.Output
	Metadata curve.Scalar
	SigSalt  curve.Scalar

	response *Response
	prover   oracle.Prover
}

// NewTxSend validates that the input covers value+fee+change and
// returns a TxSend.
func NewTxSend(value, fee curve.Scalar, input, change commitment.Output, metadata, sigSalt curve.Scalar) (*TxSend, error) {
	inputValue, err := input.Value()
	if err != nil {
		return nil, err
	}
	changeValue, err := change.Value()
	if err != nil {
		return nil, err
	}
	if inputValue.Cmp(value.Add(fee).Add(changeValue)) != 0 {
		return nil, ErrInsufficientSpend
	}
	return &TxSend{Value: value, Fee: fee, Input: input, Change: change, Metadata: metadata, SigSalt: sigSalt}, nil
}

// Excess is r_change - r_input, the sender's share of the kernel
// excess's discrete log.
func (t *TxSend) Excess() (curve.Scalar, error) {
	changeR, err := t.Change.PrivateKey()
	if err != nil {
		return curve.Scalar{}, err
	}
	inputR, err := t.Input.PrivateKey()
	if err != nil {
		return curve.Scalar{}, err
	}
	return changeR.Sub(inputR), nil
}

// HHExcess is the sender's public excess contribution, Excess*G.
func (t *TxSend) HHExcess() (curve.Point, error) {
	excess, err := t.Excess()
	if err != nil {
		return curve.Point{}, err
	}
	G, _ := curve.Generators()
	return G.Mul(excess), nil
}

// HHSigSalt is the sender's public nonce, SigSalt*G.
func (t *TxSend) HHSigSalt() curve.Point {
	G, _ := curve.Generators()
	return G.Mul(t.SigSalt)
}

// Request builds the Request this TxSend hands to its counterparty.
func (t *TxSend) Request() (Request, error) {
	excess, err := t.HHExcess()
	if err != nil {
		return Request{}, err
	}
	return Request{
		Value:    t.Value,
		Fee:      t.Fee,
		SigSalt:  t.HHSigSalt(),
		Excess:   excess,
		Metadata: t.Metadata,
	}, nil
}

// Merge attaches the counterparty's Response and assembles the final
// Transaction. When a Prover was attached via
// SendTxBuilder.WithProver, the mimblewimble balance circuit is run
// against it and the result memoized onto the returned Transaction's
// MWProof.
func (t *TxSend) Merge(ctx context.Context, response Response) (*Transaction, error) {
	t.response = &response
	return t.transaction(ctx)
}

func (t *TxSend) challenge() (curve.Scalar, error) {
	if t.response == nil {
		return curve.Scalar{}, ErrNoResponse
	}
	req, err := t.Request()
	if err != nil {
		return curve.Scalar{}, err
	}
	return Challenge(
		req.Excess.Add(t.response.Excess),
		req.SigSalt.Add(t.response.Signature.R),
		req.Fee, req.Metadata,
	), nil
}

func (t *TxSend) signature() (Signature, error) {
	challenge, err := t.challenge()
	if err != nil {
		return Signature{}, err
	}
	excess, err := t.Excess()
	if err != nil {
		return Signature{}, err
	}
	return Signature{S: t.SigSalt.Add(challenge.Mul(excess)), R: t.HHSigSalt()}, nil
}

func (t *TxSend) transaction(ctx context.Context) (*Transaction, error) {
	if t.response == nil {
		return nil, ErrNoResponse
	}
	req, err := t.Request()
	if err != nil {
		return nil, err
	}
	mySig, err := t.signature()
	if err != nil {
		return nil, err
	}
	aggregated := mySig.Add(t.response.Signature)
	tx, err := NewTransaction(
		req.Excess.Add(t.response.Excess),
		aggregated,
		t.Fee,
		t.Metadata,
		t.Input.Commitment(),
		t.Change.Commitment(),
		t.response.Outputs,
	)
	if err != nil {
		return nil, err
	}
	if t.prover != nil {
		if err := t.computeMWProof(ctx, tx); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// computeMWProof gathers this send's input secrets (and the implicit
// zero dummy input spec §4.6 pads single-input sends with) and runs
// them through tx.ComputeMWProof.
func (t *TxSend) computeMWProof(ctx context.Context, tx *Transaction) error {
	tag0, err := t.Input.Tag()
	if err != nil {
		return err
	}
	r0, err := t.Input.PrivateKey()
	if err != nil {
		return err
	}
	v0, err := t.Input.Value()
	if err != nil {
		return err
	}

	dummy := commitment.ZeroOutput()
	tag1, err := dummy.Tag()
	if err != nil {
		return err
	}
	r1, err := dummy.PrivateKey()
	if err != nil {
		return err
	}
	v1, err := dummy.Value()
	if err != nil {
		return err
	}

	return tx.ComputeMWProof(ctx, t.prover, tag0, tag1, [2]curve.Scalar{r0, r1}, [2]curve.Scalar{v0, v1})
}

// ReceiveTxBuilder builds a TxReceive from its required fields.
type ReceiveTxBuilder struct {
	request *Request
	output  *commitment.Output
	sigSalt *curve.Scalar
}

// NewReceiveTxBuilder returns an empty ReceiveTxBuilder.
func NewReceiveTxBuilder() *ReceiveTxBuilder {
	return &ReceiveTxBuilder{}
}

// FromRequest sets the sender's request.
func (b *ReceiveTxBuilder) FromRequest(r Request) *ReceiveTxBuilder { b.request = &r; return b }

// OutputTxo sets the recipient's own newly created output; its value
// must equal the request's value.
func (b *ReceiveTxBuilder) OutputTxo(o commitment.Output) (*ReceiveTxBuilder, error) {
	if b.request == nil {
		return nil, ErrValueMismatch
	}
	v, err := o.Value()
	if err != nil {
		return nil, err
	}
	if v.Cmp(b.request.Value) != 0 {
		return nil, ErrValueMismatch
	}
	b.output = &o
	return b, nil
}

// SigSalt sets the recipient's signature nonce.
func (b *ReceiveTxBuilder) SigSalt(s curve.Scalar) *ReceiveTxBuilder { b.sigSalt = &s; return b }

// Build returns a TxReceive.
func (b *ReceiveTxBuilder) Build() (*TxReceive, error) {
	if b.request == nil || b.output == nil || b.sigSalt == nil {
		return nil, ErrValueMismatch
	}
	return &TxReceive{Request: *b.request, Output: *b.output, SigSalt: *b.sigSalt}, nil
}

// TxReceive is the recipient's half of the exchange: given the
// sender's Request and its own freshly created output, it can compute
// its partial signature and Response. Mirrors
// py934/mimblewimble.py:TxReceive.
type TxReceive struct {
	Request Request
	Output  commitment.Output
	SigSalt curve.Scalar
}

// Challenge recomputes the shared Fiat-Shamir challenge from the
// recipient's point of view.
func (t *TxReceive) Challenge() (curve.Scalar, error) {
	pub, err := t.Output.PublicKey()
	if err != nil {
		return curve.Scalar{}, err
	}
	G, _ := curve.Generators()
	return Challenge(
		t.Request.Excess.Add(pub),
		t.Request.SigSalt.Add(G.Mul(t.SigSalt)),
		t.Request.Fee, t.Request.Metadata,
	), nil
}

// Signature computes the recipient's partial Schnorr signature.
func (t *TxReceive) Signature() (Signature, error) {
	challenge, err := t.Challenge()
	if err != nil {
		return Signature{}, err
	}
	r, err := t.Output.PrivateKey()
	if err != nil {
		return Signature{}, err
	}
	G, _ := curve.Generators()
	return Signature{S: t.SigSalt.Add(challenge.Mul(r)), R: G.Mul(t.SigSalt)}, nil
}

// Response builds the Response this TxReceive hands back to the sender.
func (t *TxReceive) Response() (Response, error) {
	sig, err := t.Signature()
	if err != nil {
		return Response{}, err
	}
	pub, err := t.Output.PublicKey()
	if err != nil {
		return Response{}, err
	}
	return Response{Outputs: t.Output.Commitment(), Excess: pub, Signature: sig}, nil
}
