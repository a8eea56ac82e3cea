package txprotocol

import (
	"encoding/json"
	"errors"

	"github.com/ccoin/core/internal/curve"
	"github.com/ccoin/core/internal/oracle"
)

// Codec errors.
var (
	ErrShortBuffer  = errors.New("txprotocol: encoded buffer too short")
	ErrBadRangeTail = errors.New("txprotocol: malformed trailing range proof payload")
)

const (
	requestEncodedLen = 32 * 5
	responsePrefixLen = 32 * 4
)

// Serialize encodes a Request as five fixed 32-byte little-endian
// fields: value, fee, sig_salt (compressed point), excess (compressed
// point), metadata. Mirrors py934/mimblewimble.py:Request.serialize.
func (r Request) Serialize() []byte {
	out := make([]byte, 0, requestEncodedLen)
	valueB := r.Value.BytesLE()
	feeB := r.Fee.BytesLE()
	sigSaltB := r.SigSalt.Compress()
	excessB := r.Excess.Compress()
	metadataB := r.Metadata.BytesLE()
	out = append(out, valueB[:]...)
	out = append(out, feeB[:]...)
	out = append(out, sigSaltB[:]...)
	out = append(out, excessB[:]...)
	out = append(out, metadataB[:]...)
	return out
}

// DeserializeRequest decodes a Request from its 160-byte wire form and
// checks it is well-formed (Request.Valid).
func DeserializeRequest(buf []byte) (Request, error) {
	if len(buf) != requestEncodedLen {
		return Request{}, ErrShortBuffer
	}
	value := curve.ScalarFromBytesLE(buf[0:32])
	fee := curve.ScalarFromBytesLE(buf[32:64])
	sigSalt, err := curve.DecompressSlice(buf[64:96])
	if err != nil {
		return Request{}, err
	}
	excess, err := curve.DecompressSlice(buf[96:128])
	if err != nil {
		return Request{}, err
	}
	metadata := curve.ScalarFromBytesLE(buf[128:160])

	req := Request{Value: value, Fee: fee, SigSalt: sigSalt, Excess: excess, Metadata: metadata}
	if !req.Valid() {
		return Request{}, ErrRequestInvalid
	}
	return req, nil
}

// rangeProofTail is the JSON shape the trailing portion of a serialized
// Response carries: the opaque zk range proof attesting the recipient's
// new output is in range, plus the circuit id it was produced against.
type rangeProofTail struct {
	Circuit      oracle.CircuitID `json:"circuit"`
	Proof        []byte           `json:"proof"`
	PublicInputs []byte           `json:"public_inputs"`
}

// Serialize encodes a Response as a 128-byte fixed prefix (hh_outputs,
// hh_excess, signature.R, signature.s, each 32 bytes) followed by the
// recipient's range proof JSON-encoded. This resolves the wire-format
// ambiguity in py934/mimblewimble.py:Response (whose own
// deserialize asserts a length the serialize method does not actually
// produce) by fixing the prefix length explicitly and treating
// everything past it as an opaque, length-prefix-free JSON tail.
func (r Response) Serialize(rangeProof oracle.Proof) []byte {
	outputsB := r.Outputs.Compress()
	excessB := r.Excess.Compress()
	rB := r.Signature.R.Compress()
	sB := r.Signature.S.BytesLE()

	out := make([]byte, 0, responsePrefixLen)
	out = append(out, outputsB[:]...)
	out = append(out, excessB[:]...)
	out = append(out, rB[:]...)
	out = append(out, sB[:]...)

	tail := rangeProofTail{Circuit: rangeProof.Circuit, Proof: rangeProof.Bytes, PublicInputs: rangeProof.PublicInputs}
	tailBytes, err := json.Marshal(tail)
	if err != nil {
		return out
	}
	return append(out, tailBytes...)
}

// DeserializeResponse decodes a Response and its accompanying range
// proof from the wire form Serialize produces.
func DeserializeResponse(buf []byte) (Response, oracle.Proof, error) {
	if len(buf) < responsePrefixLen {
		return Response{}, oracle.Proof{}, ErrShortBuffer
	}
	outputs, err := curve.DecompressSlice(buf[0:32])
	if err != nil {
		return Response{}, oracle.Proof{}, err
	}
	excess, err := curve.DecompressSlice(buf[32:64])
	if err != nil {
		return Response{}, oracle.Proof{}, err
	}
	r, err := curve.DecompressSlice(buf[64:96])
	if err != nil {
		return Response{}, oracle.Proof{}, err
	}
	s := curve.ScalarFromBytesLE(buf[96:128])

	var tail rangeProofTail
	if len(buf) > responsePrefixLen {
		if err := json.Unmarshal(buf[responsePrefixLen:], &tail); err != nil {
			return Response{}, oracle.Proof{}, ErrBadRangeTail
		}
	}

	resp := Response{Outputs: outputs, Excess: excess, Signature: Signature{S: s, R: r}}
	proof := oracle.Proof{Circuit: tail.Circuit, Bytes: tail.Proof, PublicInputs: tail.PublicInputs}
	return resp, proof, nil
}
