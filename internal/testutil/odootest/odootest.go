// Package odootest runs a fake Odoo JSON-RPC endpoint for tests. It
// implements session authentication with cookies and dispatches call_kw
// requests to handlers registered per model and method.
package odootest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const (
	DefaultDB = "odoo"

	authenticatePath = "/web/session/authenticate"
	callKWPath       = "/web/dataset/call_kw/"
	cookieName       = "session_id"
)

// Fault is a JSON-RPC error returned by a handler.
type Fault struct {
	Code    int
	Message string
	Name    string
}

// Call is a recorded call_kw request.
type Call struct {
	Model  string
	Method string
	Cookie string
	Args   []any
	Kwargs map[string]any
}

// Domain returns the "domain" kwarg, or the first positional argument
// when the domain was passed positionally.
func (c Call) Domain() []any {
	if d, ok := c.Kwargs["domain"].([]any); ok {
		return d
	}
	if len(c.Args) > 0 {
		if d, ok := c.Args[0].([]any); ok {
			return d
		}
	}
	return nil
}

// HandlerFunc answers one call_kw request.
type HandlerFunc func(c Call) (any, *Fault)

type user struct {
	password string
	uid      int64
	name     string
}

type Server struct {
	*httptest.Server
	DB string

	mu       sync.Mutex
	users    map[string]user
	sessions map[string]int64
	next     int
	handlers map[string]HandlerFunc
	calls    []Call
	auths    int
}

// New starts a server with no users. It is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		DB:       DefaultDB,
		users:    map[string]user{},
		sessions: map[string]int64{},
		handlers: map[string]HandlerFunc{},
	}
	s.Server = httptest.NewServer(s)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) AddUser(login, password string, uid int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[login] = user{password: password, uid: uid, name: name}
}

// SetPassword changes the password of an existing user.
func (s *Server) SetPassword(login, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[login]
	u.password = password
	s.users[login] = u
}

// Handle registers fn for model.method, replacing any previous handler.
func (s *Server) Handle(model, method string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[model+"/"+method] = fn
}

// Result registers a handler that always returns v.
func (s *Server) Result(model, method string, v any) {
	s.Handle(model, method, func(Call) (any, *Fault) { return v, nil })
}

// ExpireSessions invalidates every issued session token.
func (s *Server) ExpireSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = map[string]int64{}
}

func (s *Server) Auths() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auths
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the recorded calls of model.method.
func (s *Server) CallsTo(model, method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Model == model && c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
		s.authenticate(w, req.ID, req.Params)
	case strings.HasPrefix(r.URL.Path, callKWPath):
		s.callKW(w, r, req.ID, req.Params)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) authenticate(w http.ResponseWriter, id any, params map[string]any) {
	s.mu.Lock()
	s.auths++
	login, _ := params["login"].(string)
	password, _ := params["password"].(string)
	u, ok := s.users[login]
	if !ok || params["db"] != s.DB || u.password != password {
		s.mu.Unlock()
		writeRPC(w, id, map[string]any{"uid": false}, nil)
		return
	}
	s.next++
	token := fmt.Sprintf("sess-%d", s.next)
	s.sessions[token] = u.uid
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: token, Path: "/", HttpOnly: true})
	writeRPC(w, id, map[string]any{"uid": u.uid, "name": u.name, "username": login}, nil)
}

func (s *Server) callKW(w http.ResponseWriter, r *http.Request, id any, params map[string]any) {
	var token string
	if c, err := r.Cookie(cookieName); err == nil {
		token = c.Value
	}

	call := Call{Cookie: r.Header.Get("Cookie")}
	call.Model, _ = params["model"].(string)
	call.Method, _ = params["method"].(string)
	call.Args, _ = params["args"].([]any)
	call.Kwargs, _ = params["kwargs"].(map[string]any)

	s.mu.Lock()
	s.calls = append(s.calls, call)
	_, live := s.sessions[token]
	fn := s.handlers[call.Model+"/"+call.Method]
	s.mu.Unlock()

	if !live {
		writeRPC(w, id, nil, &Fault{Code: 100, Message: "Odoo Session Expired", Name: "odoo.http.SessionExpiredException"})
		return
	}
	if fn == nil {
		writeRPC(w, id, nil, &Fault{
			Code:    200,
			Message: fmt.Sprintf("no handler for %s.%s", call.Model, call.Method),
			Name:    "builtins.AttributeError",
		})
		return
	}
	result, fault := fn(call)
	writeRPC(w, id, result, fault)
}

func writeRPC(w http.ResponseWriter, id any, result any, fault *Fault) {
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
