package odoorpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type rpcFault struct {
	Code    int
	Message string
	Name    string
}

type recordedCall struct {
	Model  string
	Method string
	Cookie string
	Params map[string]any
}

// fakeOdoo is a minimal Odoo JSON-RPC endpoint.
type fakeOdoo struct {
	mu        sync.Mutex
	db        string
	passwords map[string]string
	uids      map[string]int64
	sessions  map[string]int64
	nextToken int

	// denyWithFault makes bad logins fail with an AccessDenied fault
	// instead of uid=false.
	denyWithFault bool
	// alwaysExpired rejects every call_kw as expired.
	alwaysExpired bool
	// status, when set, is returned for every request.
	status int

	authCount int
	calls     []recordedCall

	handle func(model, method string, params map[string]any) (any, *rpcFault)
}

func newFakeOdoo(t *testing.T) (*fakeOdoo, *httptest.Server) {
	t.Helper()
	f := &fakeOdoo{
		db:        "odoo",
		passwords: map[string]string{"tech": "secret", "admin": "admin"},
		uids:      map[string]int64{"tech": 7, "admin": 2},
		sessions:  map[string]int64{},
	}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeOdoo) expireAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = map[string]int64{}
}

func (f *fakeOdoo) setPassword(login, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[login] = password
}

func (f *fakeOdoo) auths() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authCount
}

func (f *fakeOdoo) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func (f *fakeOdoo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	var req struct {
		JSONRPC string         `json:"jsonrpc"`
		Method  string         `json:"method"`
		Params  map[string]any `json:"params"`
		ID      any            `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JSONRPC != "2.0" || req.Method != "call" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch {
	case r.URL.Path == authenticatePath:
		f.authenticate(w, req.ID, req.Params)
	case strings.HasPrefix(r.URL.Path, callKWPath):
		f.callKW(w, r, req.ID, req.Params)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeOdoo) authenticate(w http.ResponseWriter, id any, params map[string]any) {
	f.authCount++
	login, _ := params["login"].(string)
	password, _ := params["password"].(string)

	if params["db"] != f.db || f.passwords[login] == "" || f.passwords[login] != password {
		if f.denyWithFault {
			writeRPC(w, id, nil, &rpcFault{Code: 200, Message: "Odoo Server Error", Name: "odoo.exceptions.AccessDenied"})
			return
		}
		writeRPC(w, id, map[string]any{"uid": false}, nil)
		return
	}

	f.nextToken++
	token := fmt.Sprintf("tok-%d", f.nextToken)
	f.sessions[token] = f.uids[login]
	http.SetCookie(w, &http.Cookie{Name: SessionCookieName, Value: token, Path: "/", HttpOnly: true})
	writeRPC(w, id, map[string]any{
		"uid":      f.uids[login],
		"name":     strings.ToUpper(login[:1]) + login[1:],
		"username": login,
	}, nil)
}

func (f *fakeOdoo) callKW(w http.ResponseWriter, r *http.Request, id any, params map[string]any) {
	cookie, _ := r.Cookie(SessionCookieName)
	var token string
	if cookie != nil {
		token = cookie.Value
	}

	model, _ := params["model"].(string)
	method, _ := params["method"].(string)
	f.calls = append(f.calls, recordedCall{Model: model, Method: method, Cookie: r.Header.Get("Cookie"), Params: params})

	if _, ok := f.sessions[token]; !ok || f.alwaysExpired {
		writeRPC(w, id, nil, &rpcFault{Code: 100, Message: "Odoo Session Expired", Name: "odoo.http.SessionExpiredException"})
		return
	}

	if f.handle == nil {
		writeRPC(w, id, true, nil)
		return
	}
	result, fault := f.handle(model, method, params)
	writeRPC(w, id, result, fault)
}

func writeRPC(w http.ResponseWriter, id any, result any, fault *rpcFault) {
	resp := map[string]any{"jsonrpc": "2.0", "id": id}
	if fault != nil {
		resp["error"] = map[string]any{
			"code":    fault.Code,
			"message": fault.Message,
			"data":    map[string]any{"name": fault.Name, "message": fault.Message, "debug": ""},
		}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
