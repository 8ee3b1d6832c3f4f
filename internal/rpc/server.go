// Package rpc exposes the node's external JSON-RPC surface: the single
// submit_tx method spec §6 names, plus read-only account/block endpoints
// and a Prometheus /metrics endpoint. Routing and middleware follow
// kevinruellan-Rmit's api layer (gorilla/mux + gorilla/handlers), and the
// handler-returns-error convention is the same one its api/utils package
// uses to map errors to status codes.
package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/decred/slog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/methalox/methaloxd/internal/core"
	"github.com/methalox/methaloxd/internal/ledger"
	"github.com/methalox/methaloxd/internal/mempool"
	"github.com/methalox/methaloxd/internal/network"
)

// SubmittedOK is the literal success string spec §6 requires submit_tx to
// return.
const SubmittedOK = "Transaction submitted successfully"

// Server is the node's JSON-RPC + REST HTTP surface.
type Server struct {
	ledger  *ledger.Ledger
	mempool *mempool.Mempool
	fabric  *network.Fabric
	log     slog.Logger

	httpServer *http.Server
}

// NewServer builds the router and wraps it with CORS and access logging
// middleware, per spec §6's ":9933" listen address.
func NewServer(addr string, l *ledger.Ledger, mp *mempool.Mempool, fabric *network.Fabric, log slog.Logger) *Server {
	s := &Server{ledger: l, mempool: mp, fabric: fabric, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/", wrapHandlerFunc(s.handleJSONRPC)).Methods(http.MethodPost)
	r.HandleFunc("/account/{address}/{asset}", wrapHandlerFunc(s.handleGetAccount)).Methods(http.MethodGet)
	r.HandleFunc("/block/latest", wrapHandlerFunc(s.handleGetLatestBlock)).Methods(http.MethodGet)
	r.HandleFunc("/block/{index}", wrapHandlerFunc(s.handleGetBlock)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())

	handler := handlers.CORS()(handlers.CombinedLoggingHandler(logWriter{log}, r))

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// logWriter adapts slog.Logger to io.Writer for gorilla/handlers' access
// log, which expects a plain writer.
type logWriter struct{ log slog.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Info(string(p))
	return len(p), nil
}

// ListenAndServe blocks serving HTTP until the server is shut down.
func (s *Server) ListenAndServe() error {
	s.log.Infof("rpc server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type jsonrpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      json.RawMessage   `json:"id"`
}

type jsonrpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) error {
	var req jsonrpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return badRequest(err)
	}

	switch req.Method {
	case "submit_tx":
		return s.handleSubmitTx(w, req)
	default:
		return writeJSONRPC(w, jsonrpcResponse{
			JSONRPC: "2.0",
			Error:   &jsonrpcError{Code: -32601, Message: "method not found"},
			ID:      req.ID,
		})
	}
}

func (s *Server) handleSubmitTx(w http.ResponseWriter, req jsonrpcRequest) error {
	if len(req.Params) != 1 {
		return writeJSONRPC(w, jsonrpcResponse{
			JSONRPC: "2.0",
			Error:   &jsonrpcError{Code: -32602, Message: "expected exactly one param: the canonical transaction bytes"},
			ID:      req.ID,
		})
	}

	var raw []byte
	if err := json.Unmarshal(req.Params[0], &raw); err != nil {
		return writeJSONRPC(w, jsonrpcResponse{
			JSONRPC: "2.0",
			Error:   &jsonrpcError{Code: -32602, Message: err.Error()},
			ID:      req.ID,
		})
	}

	tx, err := core.DecodeTransaction(raw)
	if err != nil {
		return writeJSONRPC(w, jsonrpcResponse{
			JSONRPC: "2.0",
			Error:   &jsonrpcError{Code: -32000, Message: err.Error()},
			ID:      req.ID,
		})
	}

	if err := s.ledger.ValidateTransaction(tx); err != nil {
		return writeJSONRPC(w, jsonrpcResponse{
			JSONRPC: "2.0",
			Error:   &jsonrpcError{Code: -32000, Message: err.Error()},
			ID:      req.ID,
		})
	}

	if err := s.mempool.Add(tx); err != nil {
		return writeJSONRPC(w, jsonrpcResponse{
			JSONRPC: "2.0",
			Error:   &jsonrpcError{Code: -32000, Message: err.Error()},
			ID:      req.ID,
		})
	}

	s.fabric.PublishTransaction(raw)

	return writeJSONRPC(w, jsonrpcResponse{
		JSONRPC: "2.0",
		Result:  SubmittedOK,
		ID:      req.ID,
	})
}

func writeJSONRPC(w http.ResponseWriter, resp jsonrpcResponse) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

type accountView struct {
	Address string `json:"address"`
	Asset   string `json:"asset"`
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	balance, nonce := s.ledger.GetBalance(vars["address"], core.Asset(vars["asset"]))
	return writeJSON(w, accountView{
		Address: vars["address"],
		Asset:   vars["asset"],
		Balance: balance,
		Nonce:   nonce,
	})
}

type blockView struct {
	Index         uint64            `json:"index"`
	Timestamp     uint64            `json:"timestamp"`
	PrevHash      string            `json:"prev_hash"`
	Hash          string            `json:"hash"`
	Validator     string            `json:"validator"`
	FeesCollected map[string]uint64 `json:"fees_collected"`
	TxCount       int               `json:"tx_count"`
}

func toBlockView(b *core.Block) blockView {
	fees := make(map[string]uint64, len(b.FeesCollected))
	for a, v := range b.FeesCollected {
		fees[string(a)] = v
	}
	return blockView{
		Index:         b.Index,
		Timestamp:     b.Timestamp,
		PrevHash:      b.PrevHash,
		Hash:          b.Hash,
		Validator:     b.Validator,
		FeesCollected: fees,
		TxCount:       len(b.Transactions),
	}
}

func (s *Server) handleGetLatestBlock(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, toBlockView(s.ledger.Tip()))
}

func (s *Server) handleGetBlock(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	index, err := scanUint64(vars["index"])
	if err != nil {
		return badRequest(err)
	}
	blk, ok := s.ledger.BlockAt(index)
	if !ok {
		return &httpError{cause: errNotFound, status: http.StatusNotFound}
	}
	return writeJSON(w, toBlockView(blk))
}

func writeJSON(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// requestTimeout is a per-request time limit. Nothing in this package
// applies it: handlers and the http.Server run without a deadline.
const requestTimeout = 5 * time.Second
