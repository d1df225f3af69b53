// Package test provides in-memory fakes of the ledger, the signing relay, the faucet and
// the embedded session for tests.
package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/AlexZinkM/xrp-genie/internal/common"
	"github.com/AlexZinkM/xrp-genie/internal/tx"
)

const (
	// DefaultFaucetDrops is what the fake faucet sends when no amount is asked for
	DefaultFaucetDrops uint64 = 100_000_000
	reserveDrops       uint64 = 1_000_000
	genesisLedger      uint32 = 1000
)

// FakeLedger is a JSON-RPC and WebSocket ledger server that applies Payment and TrustSet
// transactions to an in-memory account table. It also serves the faucet at /accounts.
type FakeLedger struct {
	Server *httptest.Server

	mu          sync.Mutex
	accounts    map[string]*fakeAccount
	txs         map[string]*fakeTx
	order       []string
	ledgerIndex uint32
	calls       map[string]int
	wsConns     map[*websocket.Conn]bool
	wsDials     int

	// NetworkID is reported by server_info
	NetworkID uint32
	// BaseFee and OpenLedgerFee are reported by fee, in drops
	BaseFee, OpenLedgerFee uint64
	// ForceResult replaces the outcome of every submitted transaction
	ForceResult string
	// NeverValidate keeps submitted transactions out of validated ledgers
	NeverValidate bool
	// FailMethods answers the named methods with an internal error
	FailMethods map[string]bool
}

type fakeAccount struct {
	drops    uint64
	sequence uint32
	lines    []*fakeLine
}

type fakeLine struct {
	issuer   string
	currency string
	balance  string
	limit    string
	noRipple bool
}

type fakeTx struct {
	hash      string
	tx        *tx.Transaction
	result    string
	ledger    uint32
	validated bool
}

// NewFakeLedger starts the server
func NewFakeLedger() *FakeLedger {
	l := &FakeLedger{
		accounts:      map[string]*fakeAccount{},
		txs:           map[string]*fakeTx{},
		calls:         map[string]int{},
		wsConns:       map[*websocket.Conn]bool{},
		ledgerIndex:   genesisLedger,
		BaseFee:       10,
		OpenLedgerFee: 10,
		FailMethods:   map[string]bool{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", l.handleRPC)
	mux.HandleFunc("/ws", l.handleWS)
	mux.HandleFunc("/accounts", l.handleFaucet)
	l.Server = httptest.NewServer(mux)
	return l
}

// URL is the JSON-RPC endpoint
func (l *FakeLedger) URL() string { return l.Server.URL }

// WSURL is the WebSocket endpoint
func (l *FakeLedger) WSURL() string { return "ws" + strings.TrimPrefix(l.Server.URL, "http") + "/ws" }

// FaucetURL is the faucet endpoint
func (l *FakeLedger) FaucetURL() string { return l.Server.URL + "/accounts" }

// Close stops the server
func (l *FakeLedger) Close() { l.Server.Close() }

// Fund credits drops to address, creating the account if needed
func (l *FakeLedger) Fund(address string, drops uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(address, drops)
}

// Drops returns the balance of address, 0 for unknown accounts
func (l *FakeLedger) Drops(address string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a, ok := l.accounts[address]; ok {
		return a.drops
	}
	return 0
}

// SetLineBalance sets the balance of an existing trust line
func (l *FakeLedger) SetLineBalance(holder, issuer, currency, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if line := l.line(holder, issuer, currency); line != nil {
		line.balance = value
	}
}

// Calls returns how often method was called
func (l *FakeLedger) Calls(method string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[method]
}

// TransactionCount returns the number of submitted transactions that reached the ledger
func (l *FakeLedger) TransactionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}

func (l *FakeLedger) credit(address string, drops uint64) {
	a, ok := l.accounts[address]
	if !ok {
		a = &fakeAccount{sequence: l.ledgerIndex}
		l.accounts[address] = a
	}
	a.drops += drops
}

func (l *FakeLedger) line(holder, issuer, currency string) *fakeLine {
	a, ok := l.accounts[holder]
	if !ok {
		return nil
	}
	for _, line := range a.lines {
		if line.issuer == issuer && common.SameCurrency(line.currency, currency) {
			return line
		}
	}
	return nil
}

type rpcError struct {
	code    string
	message string
}

func (l *FakeLedger) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	params := json.RawMessage(`{}`)
	if len(req.Params) > 0 {
		params = req.Params[0]
	}

	result, rerr := l.dispatch(req.Method, params)
	if rerr != nil {
		result = map[string]any{"status": "error", "error": rerr.code, "error_message": rerr.message}
	} else {
		result["status"] = "success"
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"result": result})
}

var upgrader = websocket.Upgrader{}

func (l *FakeLedger) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	l.mu.Lock()
	l.wsConns[conn] = true
	l.wsDials++
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		delete(l.wsConns, conn)
		l.mu.Unlock()
		conn.Close()
	}()
	for {
		var cmd map[string]json.RawMessage
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		var method string
		_ = json.Unmarshal(cmd["command"], &method)
		id := cmd["id"]
		delete(cmd, "command")
		delete(cmd, "id")
		params, _ := json.Marshal(cmd)

		reply := map[string]any{"id": id, "type": "response"}
		result, rerr := l.dispatch(method, params)
		if rerr != nil {
			reply["status"] = "error"
			reply["error"] = rerr.code
			reply["error_message"] = rerr.message
		} else {
			reply["status"] = "success"
			reply["result"] = result
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

// DropConnections closes every open WebSocket connection from the server side
func (l *FakeLedger) DropConnections() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for conn := range l.wsConns {
		_ = conn.Close()
	}
}

// WSDials is how many WebSocket connections the server has accepted
func (l *FakeLedger) WSDials() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wsDials
}

func (l *FakeLedger) dispatch(method string, params json.RawMessage) (map[string]any, *rpcError) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[method]++

	if l.FailMethods[method] {
		return nil, &rpcError{code: "internal", message: "injected failure"}
	}

	var p struct {
		Account     string `json:"account"`
		Transaction string `json:"transaction"`
		TxBlob      string `json:"tx_blob"`
		Limit       int    `json:"limit"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &rpcError{code: "invalidParams", message: err.Error()}
	}

	switch method {
	case "server_info":
		return map[string]any{"info": map[string]any{
			"build_version":    "2.3.0",
			"complete_ledgers": fmt.Sprintf("%d-%d", genesisLedger, l.ledgerIndex),
			"network_id":       l.NetworkID,
			"server_state":     "full",
			"validated_ledger": map[string]any{"seq": l.ledgerIndex - 1, "base_fee_xrp": 0.00001},
		}}, nil
	case "fee":
		return map[string]any{
			"drops": map[string]any{
				"base_fee":        strconv.FormatUint(l.BaseFee, 10),
				"open_ledger_fee": strconv.FormatUint(l.OpenLedgerFee, 10),
			},
			"ledger_current_index": l.ledgerIndex,
		}, nil
	case "ledger_current":
		return map[string]any{"ledger_current_index": l.ledgerIndex}, nil
	case "account_info":
		a, ok := l.accounts[p.Account]
		if !ok {
			return nil, &rpcError{code: "actNotFound", message: "Account not found."}
		}
		return map[string]any{"account_data": map[string]any{
			"Account":    p.Account,
			"Balance":    strconv.FormatUint(a.drops, 10),
			"Sequence":   a.sequence,
			"OwnerCount": len(a.lines),
		}, "ledger_current_index": l.ledgerIndex}, nil
	case "account_lines":
		a, ok := l.accounts[p.Account]
		if !ok {
			return nil, &rpcError{code: "actNotFound", message: "Account not found."}
		}
		lines := make([]map[string]any, 0, len(a.lines))
		for _, line := range a.lines {
			lines = append(lines, map[string]any{
				"account":    line.issuer,
				"balance":    line.balance,
				"currency":   line.currency,
				"limit":      line.limit,
				"limit_peer": "0",
				"no_ripple":  line.noRipple,
			})
		}
		return map[string]any{"account": p.Account, "lines": lines}, nil
	case "account_tx":
		if _, ok := l.accounts[p.Account]; !ok {
			return nil, &rpcError{code: "actNotFound", message: "Account not found."}
		}
		return l.accountTx(p.Account, p.Limit), nil
	case "submit":
		return l.submit(p.TxBlob)
	case "tx":
		return l.lookup(p.Transaction)
	}
	return nil, &rpcError{code: "unknownCmd", message: "Unknown method."}
}

func (l *FakeLedger) accountTx(account string, limit int) map[string]any {
	var out []map[string]any
	for i := len(l.order) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		ft := l.txs[l.order[i]]
		if ft.tx.Account != account && ft.tx.Destination != account {
			continue
		}
		raw, _ := json.Marshal(ft.tx)
		var txJSON map[string]any
		_ = json.Unmarshal(raw, &txJSON)
		txJSON["hash"] = ft.hash
		txJSON["ledger_index"] = ft.ledger
		txJSON["date"] = 800000000 + int64(ft.ledger)
		out = append(out, map[string]any{
			"tx":        txJSON,
			"meta":      map[string]any{"TransactionResult": ft.result},
			"validated": ft.validated,
		})
	}
	return map[string]any{"account": account, "transactions": out}
}

func (l *FakeLedger) submit(blob string) (map[string]any, *rpcError) {
	t, err := tx.DecodeHex(blob)
	if err != nil {
		return nil, &rpcError{code: "invalidTransaction", message: err.Error()}
	}
	raw, _ := hexDecode(blob)
	hash := tx.Hash(raw)
	reply := func(code string) map[string]any {
		return map[string]any{
			"engine_result":         code,
			"engine_result_message": code,
			"accepted":              code == "tesSUCCESS" || strings.HasPrefix(code, "tec"),
			"tx_json":               map[string]any{"hash": hash},
		}
	}

	if ok, err := tx.VerifySignature(t); err != nil || !ok {
		return reply("temBAD_SIGNATURE"), nil
	}
	if code := l.ForceResult; code != "" && (strings.HasPrefix(code, "tem") || strings.HasPrefix(code, "tef") || strings.HasPrefix(code, "tel")) {
		return reply(code), nil
	}

	a, ok := l.accounts[t.Account]
	if !ok {
		return reply("terNO_ACCOUNT"), nil
	}
	if t.Sequence < a.sequence {
		return reply("tefPAST_SEQ"), nil
	}
	if t.Sequence > a.sequence {
		return reply("terPRE_SEQ"), nil
	}
	fee, _ := strconv.ParseUint(t.Fee, 10, 64)
	if a.drops < fee {
		return reply("terINSUF_FEE_B"), nil
	}
	if t.LastLedgerSequence != 0 && t.LastLedgerSequence < l.ledgerIndex {
		return reply("tefMAX_LEDGER"), nil
	}

	a.drops -= fee
	a.sequence++
	result := l.ForceResult
	if result == "" {
		result = l.apply(t, a)
	}

	l.ledgerIndex++
	l.txs[hash] = &fakeTx{hash: hash, tx: t, result: result, ledger: l.ledgerIndex}
	l.order = append(l.order, hash)
	return reply(result), nil
}

func (l *FakeLedger) apply(t *tx.Transaction, a *fakeAccount) string {
	switch t.TransactionType {
	case tx.TypePayment:
		if t.Amount.IsNative() {
			if a.drops < t.Amount.Drops+reserveDrops {
				return "tecUNFUNDED_PAYMENT"
			}
			if _, exists := l.accounts[t.Destination]; !exists && t.Amount.Drops < reserveDrops {
				return "tecNO_DST_INSUF_XRP"
			}
			a.drops -= t.Amount.Drops
			l.credit(t.Destination, t.Amount.Drops)
			return "tesSUCCESS"
		}
		return l.applyIssued(t)
	case tx.TypeTrustSet:
		limit := t.LimitAmount
		line := l.line(t.Account, limit.Issuer, limit.Currency)
		if line == nil {
			if _, ok := l.accounts[limit.Issuer]; !ok {
				return "tecNO_ISSUER"
			}
			line = &fakeLine{issuer: limit.Issuer, currency: limit.Currency, balance: "0"}
			a.lines = append(a.lines, line)
		}
		line.limit = limit.Value
		line.noRipple = t.Flags&tx.TfSetNoRipple != 0
		return "tesSUCCESS"
	case tx.TypeAccountSet:
		return "tesSUCCESS"
	}
	return "temUNKNOWN"
}

func (l *FakeLedger) applyIssued(t *tx.Transaction) string {
	amt := t.Amount
	dest := l.line(t.Destination, amt.Issuer, amt.Currency)
	if dest == nil {
		return "tecPATH_DRY"
	}
	if t.Account != amt.Issuer {
		src := l.line(t.Account, amt.Issuer, amt.Currency)
		if src == nil {
			return "tecPATH_DRY"
		}
		if c, err := common.CompareAmounts(src.balance, amt.Value); err != nil || c < 0 {
			return "tecPATH_PARTIAL"
		}
		src.balance, _ = common.AddAmounts(src.balance, "-"+amt.Value)
	}
	dest.balance, _ = common.AddAmounts(dest.balance, amt.Value)
	return "tesSUCCESS"
}

func (l *FakeLedger) lookup(hash string) (map[string]any, *rpcError) {
	ft, ok := l.txs[hash]
	if !ok {
		return nil, &rpcError{code: "txnNotFound", message: "Transaction not found."}
	}
	if l.NeverValidate {
		l.ledgerIndex += 5
	} else {
		ft.validated = true
	}
	return map[string]any{
		"hash":         ft.hash,
		"validated":    ft.validated,
		"ledger_index": ft.ledger,
		"meta":         map[string]any{"TransactionResult": ft.result},
	}, nil
}

func (l *FakeLedger) handleFaucet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Destination string `json:"destination"`
		XRPAmount   string `json:"xrpAmount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Destination == "" {
		http.Error(w, "destination required", http.StatusBadRequest)
		return
	}
	drops := DefaultFaucetDrops
	if req.XRPAmount != "" {
		d, err := common.XRPToDrops(req.XRPAmount)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		drops = d
	}
	l.Fund(req.Destination, drops)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"account": map[string]any{
			"address":        req.Destination,
			"classicAddress": req.Destination,
		},
		"amount":          json.Number(common.DropsToXRP(drops)),
		"transactionHash": strings.Repeat("AB", 32),
	})
}

// Lines returns the trust lines of holder sorted by issuer, as (issuer, currency, limit) triples
func (l *FakeLedger) Lines(holder string) [][3]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.accounts[holder]
	if !ok {
		return nil
	}
	out := make([][3]string, 0, len(a.lines))
	for _, line := range a.lines {
		out = append(out, [3]string{line.issuer, line.currency, line.limit})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
