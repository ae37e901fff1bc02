// Package checkout turns a storefront purchase into an unsigned Solana
// payment transaction for the buyer's wallet.
package checkout

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/uhyunpark/solcheckout/pkg/catalog"
	"github.com/uhyunpark/solcheckout/pkg/transaction"
)

// ItemLookup resolves catalog entries. ok=false means the item does not exist.
type ItemLookup interface {
	Lookup(ctx context.Context, id string) (item catalog.Item, ok bool, err error)
}

// Ledger is the chain state the service reads per request.
type Ledger interface {
	MintReader
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// Result is a successfully built checkout transaction.
type Result struct {
	Transaction string // Base64 wire bytes with an empty signature slot
	Unsigned    *transaction.UnsignedTransaction
	Item        catalog.Item
}

// Amount returns the transferred base units.
func (r *Result) Amount() uint64 { return r.Unsigned.Instructions[0].Amount }

type Service struct {
	items     ItemLookup
	ledger    Ledger
	assembler *Assembler
}

func NewService(items ItemLookup, ledger Ledger, mint solana.PublicKey) *Service {
	return &Service{
		items:     items,
		ledger:    ledger,
		assembler: NewAssembler(mint, ledger),
	}
}

// CreateTransaction validates req, resolves the item and returns the
// serialized unsigned transaction. The first failure ends the request.
func (s *Service) CreateTransaction(ctx context.Context, req TransferRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item, ok, err := s.items.Lookup(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup %q: %w", req.ItemID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, req.ItemID)
	}

	checkpoint, err := s.ledger.LatestBlockhash(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: recent blockhash: %w", ErrUpstreamUnavailable, err)
	}

	tx, err := s.assembler.Build(ctx, req, item, checkpoint)
	if err != nil {
		return nil, err
	}

	encoded, err := transaction.EncodeBase64(tx, transaction.SerializeOptions{AllowMissingSignatures: true})
	if err != nil {
		return nil, fmt.Errorf("serialize transaction: %w", err)
	}

	return &Result{Transaction: encoded, Unsigned: tx, Item: item}, nil
}
