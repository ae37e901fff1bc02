// Package transaction holds the unsigned checkout transaction and its Solana wire codec.
package transaction

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AccountRef is an extra account appended after an instruction's own accounts.
type AccountRef struct {
	Address    solana.PublicKey
	IsSigner   bool
	IsWritable bool
}

// TransferInstruction is an SPL token TransferChecked plus any extra account refs.
// Extra refs are encoded in order, after the four transfer accounts; indexers
// locate the order tag by its position, so the order must never be changed.
type TransferInstruction struct {
	Source      solana.PublicKey // Payer's token account
	Mint        solana.PublicKey
	Destination solana.PublicKey // Recipient's token account
	Authority   solana.PublicKey // Owner of Source, must sign
	Amount      uint64           // Base units
	Decimals    uint8            // Checked against the mint on-chain
	Extra       []AccountRef
}

// UnsignedTransaction is what the checkout endpoint hands to the buyer's wallet.
type UnsignedTransaction struct {
	FeePayer        solana.PublicKey
	RecentBlockhash solana.Hash
	Instructions    []TransferInstruction
}

// Validate performs basic validation on transaction structure
func (tx *UnsignedTransaction) Validate() error {
	if tx.FeePayer == (solana.PublicKey{}) {
		return fmt.Errorf("missing fee payer")
	}
	if tx.RecentBlockhash == (solana.Hash{}) {
		return fmt.Errorf("missing recent blockhash")
	}
	if len(tx.Instructions) == 0 {
		return fmt.Errorf("transaction has no instructions")
	}
	return nil
}
