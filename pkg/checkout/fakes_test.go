package checkout

import (
	"context"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/uhyunpark/solcheckout/pkg/catalog"
)

const (
	buyerAddr  = "8PNeMNJQFFAU5phCnn12MVHk6sAorobNqatfvDvRpVkG"
	sellerAddr = "EcupuBKqsbkdG3pBeCVyj3ikYnjC2sDodC2aZ9FmX5Sw"
	orderAddr  = "nd38iVaSSddcTpzK1CHV4w8PtCLdQ1ReJpL5jABFaSS"
	otherOrder = "58ZB31oJrdog2x6hQKPasiGpPaJ48ULJtrEdeeogZJxS"
)

var (
	usdc       = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	checkpoint = solana.Hash{0xaa, 0xbb, 0xcc}
)

type fakeLedger struct {
	decimals     uint8
	blockhash    solana.Hash
	mintErr      error
	blockhashErr error

	mintCalls      atomic.Int32
	blockhashCalls atomic.Int32
}

func newFakeLedger(decimals uint8) *fakeLedger {
	return &fakeLedger{decimals: decimals, blockhash: checkpoint}
}

func (f *fakeLedger) MintDecimals(_ context.Context, _ solana.PublicKey) (uint8, error) {
	f.mintCalls.Add(1)
	return f.decimals, f.mintErr
}

func (f *fakeLedger) LatestBlockhash(_ context.Context) (solana.Hash, error) {
	f.blockhashCalls.Add(1)
	return f.blockhash, f.blockhashErr
}

type spyCatalog struct {
	*catalog.MemoryCatalog
	err     error
	lookups atomic.Int32
}

func newSpyCatalog(items ...catalog.Item) *spyCatalog {
	return &spyCatalog{MemoryCatalog: catalog.NewMemoryCatalog(items)}
}

func (s *spyCatalog) Lookup(ctx context.Context, id string) (catalog.Item, bool, error) {
	s.lookups.Add(1)
	if s.err != nil {
		return catalog.Item{}, false, s.err
	}
	return s.MemoryCatalog.Lookup(ctx, id)
}

func item(id, price, seller string) catalog.Item {
	return catalog.Item{ID: id, Price: decimal.RequireFromString(price), SellerAddress: seller}
}

func validRequest() TransferRequest {
	return TransferRequest{BuyerAddress: buyerAddr, OrderID: orderAddr, ItemID: "1"}
}
