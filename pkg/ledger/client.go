// Package ledger fetches the two pieces of chain state a checkout transaction
// needs: a recent blockhash and the payment mint's decimal precision.
package ledger

import (
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrMintNotFound is returned when the mint account does not exist.
var ErrMintNotFound = errors.New("mint account not found")

// rpcAPI is the subset of *rpc.Client used here.
type rpcAPI interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// Client reads chain state over JSON-RPC. It holds no per-request state.
type Client struct {
	rpc        rpcAPI
	commitment rpc.CommitmentType
}

func NewClient(endpoint string, commitment string) *Client {
	return &Client{
		rpc:        rpc.New(endpoint),
		commitment: rpc.CommitmentType(commitment),
	}
}

// LatestBlockhash returns the most recent blockhash at the configured commitment.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash: empty result")
	}
	return out.Value.Blockhash, nil
}

// MintDecimals loads the mint account and returns its decimals.
func (c *Client) MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	out, err := c.rpc.GetAccountInfoWithOpts(ctx, mint, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	if err != nil {
		return 0, fmt.Errorf("getAccountInfo %s: %w", mint, err)
	}
	if out == nil || out.Value == nil {
		return 0, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	return decodeMintDecimals(mint, out.Value)
}

func decodeMintDecimals(mint solana.PublicKey, acc *rpc.Account) (uint8, error) {
	if !acc.Owner.Equals(token.ProgramID) {
		return 0, fmt.Errorf("account %s is owned by %s, not the token program", mint, acc.Owner)
	}

	var m token.Mint
	if err := bin.NewBinDecoder(acc.Data.GetBinary()).Decode(&m); err != nil {
		return 0, fmt.Errorf("failed to decode mint %s: %w", mint, err)
	}
	if !m.IsInitialized {
		return 0, fmt.Errorf("mint %s is not initialized", mint)
	}
	return m.Decimals, nil
}
