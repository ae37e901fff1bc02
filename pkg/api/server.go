package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/solcheckout/pkg/catalog"
	"github.com/uhyunpark/solcheckout/pkg/checkout"
	"github.com/uhyunpark/solcheckout/pkg/util"
)

const (
	maxBodyBytes = 64 << 10
	itemNotFound = "item not found, please check item ID"
)

// Options configures a Server. Zero values fall back to safe defaults.
type Options struct {
	Logger         *zap.SugaredLogger
	Clock          util.Clock
	CORSOrigins    []string
	RequestTimeout time.Duration
	TxLog          io.Writer // JSON lines audit of produced transactions; nil disables it
}

// Server handles the checkout REST API
type Server struct {
	checkout *checkout.Service
	items    catalog.Catalog
	router   *mux.Router
	log      *zap.SugaredLogger
	clock    util.Clock
	origins  []string
	timeout  time.Duration

	txLogMu sync.Mutex
	txLog   io.Writer
}

// NewServer creates a new API server
func NewServer(svc *checkout.Service, items catalog.Catalog, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Clock == nil {
		opts.Clock = util.RealClock{}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	s := &Server{
		checkout: svc,
		items:    items,
		router:   mux.NewRouter(),
		log:      opts.Logger,
		clock:    opts.Clock,
		origins:  opts.CORSOrigins,
		timeout:  opts.RequestTimeout,
		txLog:    opts.TxLog,
	}

	s.setupRoutes()
	return s
}

// OpenTxLog opens (creating if needed) the append-only transaction audit file.
func OpenTxLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/items", s.handleListItems).Methods("GET")
	api.HandleFunc("/items/{id}", s.handleGetItem).Methods("GET")

	// POST-only routes live on the root router, after the subrouter: a
	// subrouter miss clears the method mismatch and turns 405 into 404.
	s.router.HandleFunc("/api/v1/transactions", s.handleCreateTransaction).Methods("POST")
	// Route used by existing storefront builds
	s.router.HandleFunc("/api/createTransaction", s.handleCreateTransaction).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the router wrapped with CORS handling
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(s.router)
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("api_server_starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Infow("api_server_stopping", "addr", addr)
		return srv.Shutdown(shutdownCtx)
	}
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.checkout.CreateTransaction(ctx, checkout.TransferRequest{
		BuyerAddress: req.Buyer,
		OrderID:      req.OrderID,
		ItemID:       req.ItemID,
	})
	if err != nil {
		s.respondCheckoutError(w, req, err)
		return
	}

	s.log.Infow("transaction_created",
		"order_id", req.OrderID,
		"item_id", req.ItemID,
		"buyer", req.Buyer,
		"amount", res.Amount())

	s.logTransaction("TX_CREATED", map[string]interface{}{
		"order_id": req.OrderID,
		"item_id":  req.ItemID,
		"buyer":    req.Buyer,
		"seller":   res.Item.SellerAddress,
		"price":    res.Item.Price.String(),
		"amount":   res.Amount(),
	})

	respondJSON(w, CreateTransactionResponse{Transaction: res.Transaction})
}

// respondCheckoutError writes exactly one error body. Client errors echo the
// cause; server errors get a generic message and the detail goes to the log.
func (s *Server) respondCheckoutError(w http.ResponseWriter, req CreateTransactionRequest, err error) {
	var missing *checkout.MissingFieldError

	switch {
	case errors.As(err, &missing):
		respondError(w, http.StatusBadRequest, missing.Error(), "")
	case errors.Is(err, checkout.ErrInvalidAddress):
		respondError(w, http.StatusBadRequest, "invalid address", err.Error())
	case errors.Is(err, checkout.ErrItemNotFound):
		respondError(w, http.StatusNotFound, itemNotFound, "")
	case errors.Is(err, checkout.ErrUpstreamUnavailable):
		s.log.Warnw("create_transaction_upstream_failed", "order_id", req.OrderID, "item_id", req.ItemID, "err", err)
		respondError(w, http.StatusServiceUnavailable, "ledger unavailable", "")
	default:
		s.log.Errorw("create_transaction_failed", "order_id", req.OrderID, "item_id", req.ItemID, "err", err)
		respondError(w, http.StatusInternalServerError, "error creating transaction", "")
	}
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.List(r.Context())
	if err != nil {
		s.log.Errorw("list_items_failed", "err", err)
		respondError(w, http.StatusInternalServerError, "error listing items", "")
		return
	}

	response := make([]ItemInfo, len(items))
	for i, it := range items {
		response[i] = toItemInfo(it)
	}
	respondJSON(w, response)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	it, ok, err := s.items.Lookup(r.Context(), id)
	if err != nil {
		s.log.Errorw("get_item_failed", "item_id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "error loading item", "")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, itemNotFound, "")
		return
	}
	respondJSON(w, toItemInfo(it))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Helper Functions
// ==============================

func toItemInfo(it catalog.Item) ItemInfo {
	return ItemInfo{
		ID:            it.ID,
		Name:          it.Name,
		Price:         it.Price.String(),
		SellerAddress: it.SellerAddress,
	}
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, errMsg string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errMsg,
		Message: message,
	})
}

// logTransaction appends one JSON line per produced transaction
func (s *Server) logTransaction(eventType string, data map[string]interface{}) {
	if s.txLog == nil {
		return
	}

	entry := map[string]interface{}{
		"timestamp": s.clock.Now().UTC().Format(time.RFC3339),
		"event":     eventType,
		"data":      data,
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		s.log.Warnw("tx_log_marshal_failed", "err", err)
		return
	}

	s.txLogMu.Lock()
	defer s.txLogMu.Unlock()
	if _, err := s.txLog.Write(append(jsonData, '\n')); err != nil {
		s.log.Warnw("tx_log_write_failed", "err", err)
	}
}
