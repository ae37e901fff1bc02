// Command inspect-tx decodes a base64 checkout transaction and prints the
// payment it carries. Reads the transaction from the first argument or stdin.
package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/uhyunpark/solcheckout/pkg/transaction"
)

func main() {
	raw, err := readInput()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	tx, err := transaction.DecodeBase64(raw)
	if err != nil {
		fmt.Printf("Error decoding transaction: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Transaction:")
	fmt.Printf("  Fee Payer: %s\n", tx.FeePayer)
	fmt.Printf("  Recent Blockhash: %s\n\n", tx.RecentBlockhash)

	for i, ix := range tx.Instructions {
		fmt.Printf("Transfer #%d:\n", i)
		fmt.Printf("  Source: %s\n", ix.Source)
		fmt.Printf("  Destination: %s\n", ix.Destination)
		fmt.Printf("  Mint: %s\n", ix.Mint)
		fmt.Printf("  Authority: %s\n", ix.Authority)
		fmt.Printf("  Amount: %d (%s)\n", ix.Amount, decimal.NewFromBigInt(new(big.Int).SetUint64(ix.Amount), -int32(ix.Decimals)).String())
		fmt.Printf("  Decimals: %d\n", ix.Decimals)
		for _, ref := range ix.Extra {
			fmt.Printf("  Order Tag: %s (signer=%t, writable=%t)\n", ref.Address, ref.IsSigner, ref.IsWritable)
		}
	}
}

func readInput() (string, error) {
	if len(os.Args) > 1 {
		return strings.TrimSpace(os.Args[1]), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "", fmt.Errorf("usage: inspect-tx <base64 transaction> (or pipe it on stdin)")
	}
	return s, nil
}
