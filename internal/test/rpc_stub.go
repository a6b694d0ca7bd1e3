package test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
)

// RPCError is returned as the JSON-RPC error object of a stubbed call
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCHandler answers one JSON-RPC call. Return a non-nil *RPCError to fail the call.
type RPCHandler func(params json.RawMessage) (any, *RPCError)

// RESTHandler answers a POST to a REST path with a status code and a JSON body.
type RESTHandler func(body json.RawMessage) (int, any)

// RPCStub is a scripted JSON-RPC / REST node for tests.
type RPCStub struct {
	Server *httptest.Server

	mu    sync.Mutex
	rpc   map[string]RPCHandler
	rest  map[string]RESTHandler
	calls map[string]int
}

type stubRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

func NewRPCStub(t *testing.T) *RPCStub {
	t.Helper()

	s := &RPCStub{
		rpc:   make(map[string]RPCHandler),
		rest:  make(map[string]RESTHandler),
		calls: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Server.Close)

	return s
}

func (s *RPCStub) URL() string {
	return s.Server.URL
}

func (s *RPCStub) Handle(method string, h RPCHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rpc[method] = h
}

// HandleResult always answers method with result.
func (s *RPCStub) HandleResult(method string, result any) {
	s.Handle(method, func(json.RawMessage) (any, *RPCError) { return result, nil })
}

// HandleError always fails method with message.
func (s *RPCStub) HandleError(method string, code int, message string) {
	s.Handle(method, func(json.RawMessage) (any, *RPCError) {
		return nil, &RPCError{Code: code, Message: message}
	})
}

func (s *RPCStub) HandleREST(path string, h RESTHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rest[path] = h
}

// Calls returns how often method (or REST path) was requested.
func (s *RPCStub) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[method]
}

func (s *RPCStub) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path != "/" && r.URL.Path != "" {
		s.serveREST(w, r.URL.Path, body)
		return
	}

	var req stubRequest
	if err := json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.calls[req.Method]++
	h, ok := s.rpc[req.Method]
	s.mu.Unlock()

	res := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		res["error"] = RPCError{Code: -32601, Message: "method not found: " + req.Method}
	} else if result, rpcErr := h(req.Params); rpcErr != nil {
		res["error"] = rpcErr
	} else {
		res["result"] = result
	}

	_ = json.NewEncoder(w).Encode(res)
}

func (s *RPCStub) serveREST(w http.ResponseWriter, path string, body []byte) {
	s.mu.Lock()
	s.calls[path]++
	h, ok := s.rest[path]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	status, res := h(body)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}

// EchoRawTransactions answers eth_sendRawTransaction with the hash of the submitted bytes.
func (s *RPCStub) EchoRawTransactions() {
	s.Handle("eth_sendRawTransaction", func(params json.RawMessage) (any, *RPCError) {
		var args []string
		if err := json.Unmarshal(params, &args); err != nil || len(args) != 1 {
			return nil, &RPCError{Code: -32602, Message: "invalid params"}
		}

		raw, err := hexutil.Decode(args[0])
		if err != nil {
			return nil, &RPCError{Code: -32602, Message: err.Error()}
		}

		var tx types.Transaction
		if err := tx.UnmarshalBinary(raw); err != nil {
			return nil, &RPCError{Code: -32602, Message: err.Error()}
		}

		return tx.Hash().Hex(), nil
	})
}
