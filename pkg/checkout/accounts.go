package checkout

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ParseAddress decodes a base58 wallet address. The all-zero key is rejected
// since it is the system program, never a buyer, seller or order tag.
func ParseAddress(s string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w %q: %v", ErrInvalidAddress, s, err)
	}
	if pk == (solana.PublicKey{}) {
		return solana.PublicKey{}, fmt.Errorf("%w %q: zero key", ErrInvalidAddress, s)
	}
	return pk, nil
}

// DeriveTokenAccount returns the associated token account of owner for mint.
// It is a pure function of its inputs; no RPC call is made.
func DeriveTokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	if owner == (solana.PublicKey{}) || mint == (solana.PublicKey{}) {
		return solana.PublicKey{}, fmt.Errorf("%w: zero owner or mint", ErrInvalidAddress)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: derive token account of %s: %v", ErrInvalidAddress, owner, err)
	}
	return ata, nil
}
