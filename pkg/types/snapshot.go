package types

// KernelSnapshot is the JSON-friendly shape of a transaction kernel:
// every curve value already reduced to its fixed-width encoding, ready
// to marshal into a JSONB column.
type KernelSnapshot struct {
	Excess   Hash `json:"excess"`
	SigS     Hash `json:"sig_s"`
	SigR     Hash `json:"sig_r"`
	Fee      Hash `json:"fee"`
	Metadata Hash `json:"metadata"`
}

// BodySnapshot is the JSON-friendly shape of a transaction body.
type BodySnapshot struct {
	Inputs  Hash `json:"inputs"`
	Changes Hash `json:"changes"`
	Outputs Hash `json:"outputs"`
}

// TransactionSnapshot is the row shape internal/storage persists a
// transaction as: the pair of tags (Pedersen MMR item tags derived from
// the two spent/created outputs) the host indexes on, plus the kernel
// and body each reduced to their JSON-friendly forms. TagB is the zero
// Hash when a transaction only touches one tag.
type TransactionSnapshot struct {
	TagA   Hash           `json:"tag_a"`
	TagB   Hash           `json:"tag_b"`
	Kernel KernelSnapshot `json:"kernel"`
	Body   BodySnapshot   `json:"body"`
}

// MMRSnapshot is the row shape internal/storage persists a Pedersen
// MMR's state as: its bagged root, current width, and the full peak
// slice needed to reconstruct the tree with mmr.FromPeaks.
type MMRSnapshot struct {
	Root       Hash   `json:"root"`
	Width      uint64 `json:"width"`
	Peaks      []Hash `json:"peaks"`
	CapturedAt uint64 `json:"captured_at"`
}
