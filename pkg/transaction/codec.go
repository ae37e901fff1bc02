package transaction

import (
	"encoding/base64"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// ErrMissingSignatures is returned when a transaction lacks signatures and the
// caller did not opt in to unsigned serialization.
var ErrMissingSignatures = errors.New("transaction is missing required signatures")

// SerializeOptions controls wire encoding.
type SerializeOptions struct {
	// AllowMissingSignatures fills every empty signature slot with zeros
	// instead of failing. Wallets overwrite their own slot when they sign.
	AllowMissingSignatures bool
}

// ToSolana compiles tx into a legacy Solana transaction with no signatures.
func (tx *UnsignedTransaction) ToSolana() (*solana.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	ixs := make([]solana.Instruction, 0, len(tx.Instructions))
	for i, ix := range tx.Instructions {
		built, err := ix.toSolana()
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		ixs = append(ixs, built)
	}

	stx, err := solana.NewTransaction(ixs, tx.RecentBlockhash, solana.TransactionPayer(tx.FeePayer))
	if err != nil {
		return nil, fmt.Errorf("failed to compile transaction: %w", err)
	}
	return stx, nil
}

func (ix TransferInstruction) toSolana() (solana.Instruction, error) {
	transfer, err := token.NewTransferCheckedInstruction(
		ix.Amount,
		ix.Decimals,
		ix.Source,
		ix.Mint,
		ix.Destination,
		ix.Authority,
		nil,
	).ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("invalid transfer: %w", err)
	}

	data, err := transfer.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transfer data: %w", err)
	}

	base := transfer.Accounts()
	accounts := make(solana.AccountMetaSlice, 0, len(base)+len(ix.Extra))
	accounts = append(accounts, base...)
	for _, ref := range ix.Extra {
		accounts = append(accounts, solana.NewAccountMeta(ref.Address, ref.IsWritable, ref.IsSigner))
	}

	return solana.NewInstruction(transfer.ProgramID(), accounts, data), nil
}

// Serialize encodes tx in the Solana wire format. tx is not modified.
func Serialize(tx *UnsignedTransaction, opts SerializeOptions) ([]byte, error) {
	stx, err := tx.ToSolana()
	if err != nil {
		return nil, err
	}
	return marshalWire(stx, opts)
}

// EncodeBase64 serializes tx and encodes it the way wallets expect to receive it.
func EncodeBase64(tx *UnsignedTransaction, opts SerializeOptions) (string, error) {
	raw, err := Serialize(tx, opts)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func marshalWire(stx *solana.Transaction, opts SerializeOptions) ([]byte, error) {
	required := int(stx.Message.Header.NumRequiredSignatures)
	if len(stx.Signatures) < required {
		if !opts.AllowMissingSignatures {
			return nil, fmt.Errorf("%w: have %d, need %d", ErrMissingSignatures, len(stx.Signatures), required)
		}
		padded := make([]solana.Signature, required)
		copy(padded, stx.Signatures)
		stx.Signatures = padded
	}

	raw, err := stx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}
	return raw, nil
}

// DecodeBase64 is the inverse of EncodeBase64.
func DecodeBase64(s string) (*UnsignedTransaction, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 transaction: %w", err)
	}
	return Deserialize(raw)
}

// Deserialize parses wire bytes back into an UnsignedTransaction. Signatures
// are ignored. Only SPL token TransferChecked instructions are understood.
func Deserialize(data []byte) (*UnsignedTransaction, error) {
	stx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return FromSolana(stx)
}

// FromSolana converts a compiled transaction back into its unsigned form.
func FromSolana(stx *solana.Transaction) (*UnsignedTransaction, error) {
	msg := &stx.Message
	keys := msg.AccountKeys
	if len(keys) == 0 {
		return nil, fmt.Errorf("transaction has no account keys")
	}

	out := &UnsignedTransaction{
		FeePayer:        keys[0],
		RecentBlockhash: msg.RecentBlockhash,
	}

	for i, ci := range msg.Instructions {
		if int(ci.ProgramIDIndex) >= len(keys) {
			return nil, fmt.Errorf("instruction %d: program index %d out of range", i, ci.ProgramIDIndex)
		}
		if program := keys[ci.ProgramIDIndex]; !program.Equals(token.ProgramID) {
			return nil, fmt.Errorf("instruction %d: unsupported program %s", i, program)
		}

		metas := make([]*solana.AccountMeta, len(ci.Accounts))
		for j, idx := range ci.Accounts {
			if int(idx) >= len(keys) {
				return nil, fmt.Errorf("instruction %d: account index %d out of range", i, idx)
			}
			metas[j] = solana.NewAccountMeta(
				keys[idx],
				isWritable(msg.Header, len(keys), int(idx)),
				int(idx) < int(msg.Header.NumRequiredSignatures),
			)
		}
		if len(metas) < 4 {
			return nil, fmt.Errorf("instruction %d: expected at least 4 accounts, got %d", i, len(metas))
		}

		decoded, err := token.DecodeInstruction(metas, ci.Data)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		transfer, ok := decoded.Impl.(*token.TransferChecked)
		if !ok || transfer.Amount == nil || transfer.Decimals == nil {
			return nil, fmt.Errorf("instruction %d: not a checked transfer", i)
		}

		ix := TransferInstruction{
			Source:      metas[0].PublicKey,
			Mint:        metas[1].PublicKey,
			Destination: metas[2].PublicKey,
			Authority:   metas[3].PublicKey,
			Amount:      *transfer.Amount,
			Decimals:    *transfer.Decimals,
		}
		for _, m := range metas[4:] {
			ix.Extra = append(ix.Extra, AccountRef{Address: m.PublicKey, IsSigner: m.IsSigner, IsWritable: m.IsWritable})
		}
		out.Instructions = append(out.Instructions, ix)
	}

	return out, nil
}

// isWritable applies the legacy message header layout: signed accounts first,
// read-only signed at the end of that block, read-only unsigned at the very end.
func isWritable(h solana.MessageHeader, n, idx int) bool {
	signed := int(h.NumRequiredSignatures)
	if idx < signed {
		return idx < signed-int(h.NumReadonlySignedAccounts)
	}
	return idx < n-int(h.NumReadonlyUnsignedAccounts)
}
