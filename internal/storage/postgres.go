// Package storage implements the PostgreSQL storage layer for the
// Mimblewimble layer: transactions and Pedersen MMR snapshots persisted
// as JSON blobs, round-tripped through internal/txprotocol and
// internal/mmr's own codecs rather than decoded in SQL.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ccoin/core/internal/curve"
	"github.com/ccoin/core/internal/mmr"
	"github.com/ccoin/core/internal/txprotocol"
	"github.com/ccoin/core/pkg/types"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrInvalidData  = errors.New("invalid data")
	ErrDBConnection = errors.New("database connection error")
)

// PostgresStore implements persistent storage using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Config holds database configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
}

// DefaultConfig returns default database configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		User:     "ccoin",
		Password: "",
		Database: "ccoin",
		SSLMode:  "disable",
		MaxConns: 20,
	}
}

// NewPostgresStore creates a new PostgreSQL store.
func NewPostgresStore(ctx context.Context, cfg *Config) (*PostgresStore, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode, cfg.MaxConns,
	)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBConnection, err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDBConnection, err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// ============================================
// Transaction Operations
// ============================================

// dictToSnapshot converts a txprotocol.Dict into its JSON-friendly
// types.TransactionSnapshot form, tagging the row under tagA/tagB.
func dictToSnapshot(tagA, tagB types.Hash, d txprotocol.Dict) types.TransactionSnapshot {
	return types.TransactionSnapshot{
		TagA: tagA,
		TagB: tagB,
		Kernel: types.KernelSnapshot{
			Excess:   types.Hash(d.Excess),
			SigS:     types.Hash(d.SigS),
			SigR:     types.Hash(d.SigR),
			Fee:      types.Hash(d.Fee),
			Metadata: types.Hash(d.Metadata),
		},
		Body: types.BodySnapshot{
			Inputs:  types.Hash(d.Inputs),
			Changes: types.Hash(d.Changes),
			Outputs: types.Hash(d.Outputs),
		},
	}
}

func snapshotToDict(snap types.TransactionSnapshot) txprotocol.Dict {
	return txprotocol.Dict{
		Excess:   [32]byte(snap.Kernel.Excess),
		SigS:     [32]byte(snap.Kernel.SigS),
		SigR:     [32]byte(snap.Kernel.SigR),
		Fee:      [32]byte(snap.Kernel.Fee),
		Metadata: [32]byte(snap.Kernel.Metadata),
		Inputs:   [32]byte(snap.Body.Inputs),
		Changes:  [32]byte(snap.Body.Changes),
		Outputs:  [32]byte(snap.Body.Outputs),
	}
}

// SaveTransaction persists tx under the given tags, storing its kernel
// and body as JSONB blobs keyed by tag.
func (s *PostgresStore) SaveTransaction(ctx context.Context, tagA, tagB types.Hash, tx *txprotocol.Transaction) error {
	snap := dictToSnapshot(tagA, tagB, tx.ToDict())

	kernelJSON, err := json.Marshal(snap.Kernel)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	bodyJSON, err := json.Marshal(snap.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	query := `
		INSERT INTO transactions (tag_a, tag_b, kernel_json, body_json)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tag_a) DO UPDATE SET tag_b = $2, kernel_json = $3, body_json = $4
	`
	_, err = s.pool.Exec(ctx, query, tagA.Bytes(), nullIfEmpty(tagB.Bytes()), kernelJSON, bodyJSON)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// LoadTransaction fetches the transaction stored under tagA, decodes
// its JSON kernel/body back into a txprotocol.Dict, and revalidates it
// through txprotocol.FromDict so a tampered row is rejected on load.
func (s *PostgresStore) LoadTransaction(ctx context.Context, tagA types.Hash) (*txprotocol.Transaction, error) {
	query := `SELECT kernel_json, body_json FROM transactions WHERE tag_a = $1`

	var kernelJSON, bodyJSON []byte
	err := s.pool.QueryRow(ctx, query, tagA.Bytes()).Scan(&kernelJSON, &bodyJSON)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	var kernel types.KernelSnapshot
	var body types.BodySnapshot
	if err := json.Unmarshal(kernelJSON, &kernel); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if err := json.Unmarshal(bodyJSON, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	snap := types.TransactionSnapshot{Kernel: kernel, Body: body}
	return txprotocol.FromDict(snapshotToDict(snap))
}

// ============================================
// MMR Snapshot Operations
// ============================================

// SaveMMRSnapshot persists a tree's current peaks so it can be rebuilt
// with mmr.FromPeaks after a restart.
func (s *PostgresStore) SaveMMRSnapshot(ctx context.Context, tree *mmr.Tree, capturedAt uint64) error {
	peaks := tree.Peaks()
	peakHashes := make([]types.Hash, len(peaks))
	for i, p := range peaks {
		peakHashes[i] = types.Hash(p.Compress())
	}

	root, err := tree.Root()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	snap := types.MMRSnapshot{
		Root:       types.Hash(root.BytesLE()),
		Width:      tree.Width(),
		Peaks:      peakHashes,
		CapturedAt: capturedAt,
	}

	peaksJSON, err := json.Marshal(snap.Peaks)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	query := `
		INSERT INTO mmr_snapshots (root, width, peaks_json, captured_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (root) DO NOTHING
	`
	_, err = s.pool.Exec(ctx, query, snap.Root.Bytes(), snap.Width, peaksJSON, snap.CapturedAt)
	if err != nil {
		return fmt.Errorf("failed to save mmr snapshot: %w", err)
	}
	return nil
}

// LoadMMRSnapshot fetches the most recently captured snapshot and
// reconstructs a live *mmr.Tree from its peaks.
func (s *PostgresStore) LoadMMRSnapshot(ctx context.Context, bitsN int) (*mmr.Tree, error) {
	query := `SELECT peaks_json FROM mmr_snapshots ORDER BY captured_at DESC LIMIT 1`

	var peaksJSON []byte
	err := s.pool.QueryRow(ctx, query).Scan(&peaksJSON)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mmr snapshot: %w", err)
	}

	var peakHashes []types.Hash
	if err := json.Unmarshal(peaksJSON, &peakHashes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	peaks := make([]curve.Point, len(peakHashes))
	for i, h := range peakHashes {
		p, err := curve.Decompress([32]byte(h))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		peaks[i] = p
	}

	return mmr.FromPeaks(bitsN, peaks)
}

// ============================================
// Helper Functions
// ============================================

func nullIfEmpty(b []byte) interface{} {
	if isZeroBytes(b) {
		return nil
	}
	return b
}

// isZeroBytes reports whether every byte in b is zero, used to collapse
// a zero-valued hash column (e.g. a transaction's unused second tag)
// down to SQL NULL instead of storing 32 zero bytes.
func isZeroBytes(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
