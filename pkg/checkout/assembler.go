package checkout

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"golang.org/x/sync/errgroup"

	"github.com/uhyunpark/solcheckout/pkg/catalog"
	"github.com/uhyunpark/solcheckout/pkg/transaction"
)

// MintReader supplies the payment mint's decimal precision.
type MintReader interface {
	MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// TransferRequest is one checkout request as received from the storefront.
type TransferRequest struct {
	BuyerAddress string
	OrderID      string // Base58, attached to the transfer as a read-only account
	ItemID       string
}

// Validate checks presence first, then address shape, stopping at the first failure.
func (r TransferRequest) Validate() error {
	if r.BuyerAddress == "" {
		return &MissingFieldError{Field: "buyer address"}
	}
	if r.OrderID == "" {
		return &MissingFieldError{Field: "order ID"}
	}
	if _, err := ParseAddress(r.BuyerAddress); err != nil {
		return fmt.Errorf("buyer: %w", err)
	}
	if _, err := ParseAddress(r.OrderID); err != nil {
		return fmt.Errorf("order ID: %w", err)
	}
	return nil
}

// Assembler builds the unsigned payment transaction for one catalog item.
// It holds only immutable configuration and is safe for concurrent use.
type Assembler struct {
	mint  solana.PublicKey
	mints MintReader
}

func NewAssembler(mint solana.PublicKey, mints MintReader) *Assembler {
	return &Assembler{mint: mint, mints: mints}
}

// Build returns a transaction with exactly one TransferChecked from the
// buyer's token account to the seller's, tagged with the order ID.
func (a *Assembler) Build(ctx context.Context, req TransferRequest, item catalog.Item, checkpoint solana.Hash) (*transaction.UnsignedTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	buyer, _ := ParseAddress(req.BuyerAddress)
	orderTag, _ := ParseAddress(req.OrderID)

	if item.SellerAddress == "" {
		return nil, &MissingFieldError{Field: "seller address"}
	}
	seller, err := ParseAddress(item.SellerAddress)
	if err != nil {
		return nil, fmt.Errorf("seller of item %q: %w", item.ID, err)
	}
	if !item.Price.IsPositive() {
		return nil, fmt.Errorf("%w: item %q has price %s", ErrInvalidAmount, item.ID, item.Price)
	}
	if err := checkOrderTag(orderTag, buyer, a.mint, token.ProgramID); err != nil {
		return nil, err
	}

	var (
		buyerToken  solana.PublicKey
		sellerToken solana.PublicKey
		decimals    uint8
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		buyerToken, err = DeriveTokenAccount(buyer, a.mint)
		return err
	})
	g.Go(func() error {
		var err error
		sellerToken, err = DeriveTokenAccount(seller, a.mint)
		return err
	})
	g.Go(func() error {
		d, err := a.mints.MintDecimals(gctx, a.mint)
		if err != nil {
			return fmt.Errorf("%w: mint decimals: %w", ErrUpstreamUnavailable, err)
		}
		decimals = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := checkOrderTag(orderTag, buyerToken, sellerToken); err != nil {
		return nil, err
	}

	amount, err := ToBaseUnits(item.Price, decimals)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", item.ID, err)
	}

	return &transaction.UnsignedTransaction{
		FeePayer:        buyer,
		RecentBlockhash: checkpoint,
		Instructions: []transaction.TransferInstruction{{
			Source:      buyerToken,
			Mint:        a.mint,
			Destination: sellerToken,
			Authority:   buyer,
			Amount:      amount,
			Decimals:    decimals,
			Extra: []transaction.AccountRef{
				{Address: orderTag, IsSigner: false, IsWritable: false},
			},
		}},
	}, nil
}

// checkOrderTag rejects an order tag that is also one of the transfer's own
// accounts. The message compiler merges duplicate keys, so the tag would take
// on that account's signer/writable flags and lose its position.
func checkOrderTag(tag solana.PublicKey, accounts ...solana.PublicKey) error {
	for _, acc := range accounts {
		if tag == acc {
			return fmt.Errorf("%w: order ID %s collides with a transfer account", ErrInvalidAddress, tag)
		}
	}
	return nil
}
