package transaction

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

var (
	buyer       = solana.MustPublicKeyFromBase58("8PNeMNJQFFAU5phCnn12MVHk6sAorobNqatfvDvRpVkG")
	seller      = solana.MustPublicKeyFromBase58("EcupuBKqsbkdG3pBeCVyj3ikYnjC2sDodC2aZ9FmX5Sw")
	orderTag    = solana.MustPublicKeyFromBase58("nd38iVaSSddcTpzK1CHV4w8PtCLdQ1ReJpL5jABFaSS")
	usdc        = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	buyerToken  = solana.MustPublicKeyFromBase58("HJfEZYbQw8XxFPWkV1NEiREyPdwLtzkjmBd91x2nXugj")
	sellerToken = solana.MustPublicKeyFromBase58("FciD4i2WPEYinnKaCzFZAPTUsRxTCpJM6FyQmezmkkoj")
	blockhash   = solana.Hash{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
)

func sampleTx() *UnsignedTransaction {
	return &UnsignedTransaction{
		FeePayer:        buyer,
		RecentBlockhash: blockhash,
		Instructions: []TransferInstruction{{
			Source:      buyerToken,
			Mint:        usdc,
			Destination: sellerToken,
			Authority:   buyer,
			Amount:      12_500_000,
			Decimals:    6,
			Extra:       []AccountRef{{Address: orderTag}},
		}},
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	tx := sampleTx()

	encoded, err := EncodeBase64(tx, SerializeOptions{AllowMissingSignatures: true})
	if err != nil {
		t.Fatalf("EncodeBase64: %v", err)
	}

	decoded, err := DecodeBase64(encoded)
	if err != nil {
		t.Fatalf("DecodeBase64: %v", err)
	}

	if !reflect.DeepEqual(decoded, tx) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", decoded, tx)
	}
}

func TestSerialize_Deterministic(t *testing.T) {
	opts := SerializeOptions{AllowMissingSignatures: true}

	a, err := Serialize(sampleTx(), opts)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	b, err := Serialize(sampleTx(), opts)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical transactions serialized to different bytes")
	}
}

func TestSerialize_RequiresFlagForUnsigned(t *testing.T) {
	_, err := Serialize(sampleTx(), SerializeOptions{})
	if !errors.Is(err, ErrMissingSignatures) {
		t.Fatalf("error = %v, want ErrMissingSignatures", err)
	}
}

func TestSerialize_ZeroSignatureSlot(t *testing.T) {
	raw, err := Serialize(sampleTx(), SerializeOptions{AllowMissingSignatures: true})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	// compact-u16 signature count followed by one empty 64-byte slot for the buyer
	if raw[0] != 1 {
		t.Fatalf("signature count = %d, want 1", raw[0])
	}
	if !bytes.Equal(raw[1:65], make([]byte, 64)) {
		t.Error("signature slot is not zero-filled")
	}
}

func TestSerialize_DoesNotMutate(t *testing.T) {
	tx := sampleTx()
	before := sampleTx()

	if _, err := Serialize(tx, SerializeOptions{AllowMissingSignatures: true}); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !reflect.DeepEqual(tx, before) {
		t.Error("Serialize modified its input")
	}
}

func TestSerialize_WireLayout(t *testing.T) {
	raw, err := Serialize(sampleTx(), SerializeOptions{AllowMissingSignatures: true})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	stx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	h := stx.Message.Header
	// buyer signs; mint, order tag and the token program are read-only
	if h.NumRequiredSignatures != 1 || h.NumReadonlySignedAccounts != 0 || h.NumReadonlyUnsignedAccounts != 3 {
		t.Errorf("header = %+v, want {1 0 3}", h)
	}
	if !stx.Message.AccountKeys[0].Equals(buyer) {
		t.Errorf("fee payer = %s, want buyer", stx.Message.AccountKeys[0])
	}
	if stx.Message.RecentBlockhash != blockhash {
		t.Errorf("blockhash = %s", stx.Message.RecentBlockhash)
	}

	if len(stx.Message.Instructions) != 1 {
		t.Fatalf("instructions = %d, want 1", len(stx.Message.Instructions))
	}
	ci := stx.Message.Instructions[0]
	if program := stx.Message.AccountKeys[ci.ProgramIDIndex]; !program.Equals(token.ProgramID) {
		t.Errorf("program = %s, want token program", program)
	}
	if len(ci.Accounts) != 5 {
		t.Fatalf("instruction accounts = %d, want 5", len(ci.Accounts))
	}
	if tag := stx.Message.AccountKeys[ci.Accounts[4]]; !tag.Equals(orderTag) {
		t.Errorf("last account = %s, want order tag", tag)
	}

	// TransferChecked: tag 12, u64 LE amount, u8 decimals
	data := []byte(ci.Data)
	if len(data) != 10 || data[0] != 12 {
		t.Fatalf("data = %x, want 10 bytes starting with 0x0c", data)
	}
	if amount := binary.LittleEndian.Uint64(data[1:9]); amount != 12_500_000 {
		t.Errorf("amount = %d, want 12500000", amount)
	}
	if data[9] != 6 {
		t.Errorf("decimals = %d, want 6", data[9])
	}
}

func TestDeserialize_OrderTagFlags(t *testing.T) {
	raw, err := Serialize(sampleTx(), SerializeOptions{AllowMissingSignatures: true})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	tx, err := Deserialize(raw)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	extra := tx.Instructions[0].Extra
	if len(extra) != 1 {
		t.Fatalf("extra refs = %d, want 1", len(extra))
	}
	if extra[0].Address != orderTag || extra[0].IsSigner || extra[0].IsWritable {
		t.Errorf("order tag = %+v, want read-only non-signer %s", extra[0], orderTag)
	}
}

func TestDeserialize_Rejects(t *testing.T) {
	system, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(solana.SystemProgramID, solana.AccountMetaSlice{solana.Meta(buyer).WRITE().SIGNER()}, []byte{2, 0, 0, 0})},
		blockhash,
		solana.TransactionPayer(buyer),
	)
	if err != nil {
		t.Fatalf("build system tx: %v", err)
	}
	systemRaw, err := marshalWire(system, SerializeOptions{AllowMissingSignatures: true})
	if err != nil {
		t.Fatalf("marshal system tx: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte{0xff, 0xff, 0xff}},
		{"foreign program", systemRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Deserialize(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*UnsignedTransaction)
	}{
		{"no fee payer", func(tx *UnsignedTransaction) { tx.FeePayer = solana.PublicKey{} }},
		{"no blockhash", func(tx *UnsignedTransaction) { tx.RecentBlockhash = solana.Hash{} }},
		{"no instructions", func(tx *UnsignedTransaction) { tx.Instructions = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := sampleTx()
			tt.mutate(tx)
			if _, err := Serialize(tx, SerializeOptions{AllowMissingSignatures: true}); err == nil {
				t.Error("expected error")
			}
		})
	}
}
