// Package odoorpc talks JSON-RPC to an Odoo server on behalf of callers,
// holding one Odoo session per identity and transparently re-establishing
// a session that the server reports as expired.
package odoorpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ithesk/qraxer/pkg/slogx"
)

// Mode selects how identities map to sessions.
type Mode int

const (
	// PerIdentity keeps a session per caller. Sessions are only created by
	// Authenticate; a call for an unknown identity fails with
	// ErrSessionNotFound.
	PerIdentity Mode = iota
	// Shared uses a single service session for every caller, created
	// lazily on first use.
	Shared
)

// SharedIdentity is the store key used in Shared mode.
const SharedIdentity = "_shared"

const (
	authenticatePath = "/web/session/authenticate"
	callKWPath       = "/web/dataset/call_kw/"
)

const DefaultTimeout = 20 * time.Second

// Observer receives call outcomes, typically to feed metrics.
type Observer interface {
	ObserveCall(proxy, model, method string, elapsed time.Duration, err error)
	ObserveReauth(proxy string)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(string, string, string, time.Duration, error) {}
func (nopObserver) ObserveReauth(string)                                     {}

// Config describes one Odoo endpoint and how sessions against it are held.
type Config struct {
	Name    string // used in logs and metrics
	BaseURL string
	DB      string
	Mode    Mode

	Store       SessionStore
	Credentials CredentialSource

	HTTPClient *http.Client
	Timeout    time.Duration // ignored when HTTPClient is set

	// ExpiryPatterns defaults to DefaultExpiryPatterns.
	ExpiryPatterns []string

	Observer Observer
	Now      func() time.Time
}

// Proxy executes model methods against Odoo. It is safe for concurrent use.
type Proxy struct {
	cfg      Config
	baseURL  string
	client   *http.Client
	patterns []string
	observer Observer
	now      func() time.Time
}

func New(cfg Config) (*Proxy, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("odoorpc: base url is required")
	}
	if cfg.DB == "" {
		return nil, errors.New("odoorpc: database is required")
	}
	if cfg.Mode == Shared && cfg.Credentials == nil {
		return nil, errors.New("odoorpc: shared mode requires credentials")
	}

	p := &Proxy{
		cfg:      cfg,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   cfg.HTTPClient,
		patterns: cfg.ExpiryPatterns,
		observer: cfg.Observer,
		now:      cfg.Now,
	}
	if p.cfg.Name == "" {
		p.cfg.Name = "odoo"
	}
	if p.cfg.Store == nil {
		p.cfg.Store = NewMemoryStore()
	}
	if p.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		p.client = &http.Client{Timeout: timeout}
	}
	if len(p.patterns) == 0 {
		p.patterns = DefaultExpiryPatterns
	}
	if p.observer == nil {
		p.observer = nopObserver{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Name is the configured proxy name.
func (p *Proxy) Name() string { return p.cfg.Name }

func (p *Proxy) key(identity string) string {
	if p.cfg.Mode == Shared {
		return SharedIdentity
	}
	return identity
}

// Authenticate logs in to Odoo and stores the resulting session under
// identity. It returns (nil, nil) when Odoo does not recognise the
// credentials.
func (p *Proxy) Authenticate(ctx context.Context, identity string, creds Credentials) (*Session, error) {
	params := map[string]any{
		"db":       p.cfg.DB,
		"login":    creds.Login,
		"password": creds.Password,
	}

	result, header, err := p.post(ctx, authenticatePath, params, "")
	if err != nil {
		var remote *RemoteError
		if errors.As(err, &remote) && remote.IsAccessDenied() {
			return nil, nil
		}
		return nil, err
	}

	var info struct {
		UID       json.RawMessage `json:"uid"`
		Name      string          `json:"name"`
		Username  string          `json:"username"`
		SessionID string          `json:"session_id"`
	}
	if err := json.Unmarshal(result, &info); err != nil {
		return nil, &TransportError{Op: authenticatePath, Err: fmt.Errorf("decode result: %w", err)}
	}

	var uid int64
	if err := json.Unmarshal(info.UID, &uid); err != nil || uid == 0 {
		// uid is false for rejected credentials.
		return nil, nil
	}

	token, ok := SessionCookie(header)
	if !ok {
		// Older servers also return the token in the result body.
		token = info.SessionID
	}
	if token == "" {
		return nil, fmt.Errorf("%w: no session token in response", ErrAuthenticationFailed)
	}

	login := info.Username
	if login == "" {
		login = creds.Login
	}
	s := Session{
		Identity:    p.key(identity),
		Token:       token,
		UID:         uid,
		DisplayName: info.Name,
		Login:       login,
		CreatedAt:   p.now().UTC(),
	}
	if err := p.cfg.Store.Set(ctx, s); err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Debug("odoo session established",
		"proxy", p.cfg.Name, "identity", s.Identity, "uid", uid)
	return &s, nil
}

// Session returns the stored session for identity.
func (p *Proxy) Session(ctx context.Context, identity string) (Session, error) {
	return p.cfg.Store.Get(ctx, p.key(identity))
}

// RemoveSession forgets the session of identity. It does not log out of
// Odoo.
func (p *Proxy) RemoveSession(ctx context.Context, identity string) error {
	return p.cfg.Store.Remove(ctx, p.key(identity))
}

// Execute runs model.method with args and kwargs as identity and returns
// the raw result. When Odoo reports the session as expired the proxy logs
// in again and retries exactly once; the outcome of the retry is returned
// as is.
func (p *Proxy) Execute(ctx context.Context, identity, model, method string, args []any, kwargs map[string]any) (json.RawMessage, error) {
	key := p.key(identity)

	s, err := p.session(ctx, key)
	if err != nil {
		return nil, err
	}

	result, err := p.callKW(ctx, s, model, method, args, kwargs)
	if err == nil || !p.expired(err) {
		return result, err
	}

	log := slogx.FromContext(ctx)
	log.Info("odoo session expired, re-authenticating",
		"proxy", p.cfg.Name, "identity", key, "model", model, "method", method)
	p.observer.ObserveReauth(p.cfg.Name)

	if err := p.cfg.Store.Remove(ctx, key); err != nil {
		log.Warn("failed to drop expired odoo session", "proxy", p.cfg.Name, "error", err)
	}

	s, err = p.login(ctx, key)
	if err != nil {
		return nil, err
	}
	return p.callKW(ctx, s, model, method, args, kwargs)
}

// ExecuteInto runs Execute and decodes the result into out.
func (p *Proxy) ExecuteInto(ctx context.Context, identity, model, method string, args []any, kwargs map[string]any, out any) error {
	result, err := p.Execute(ctx, identity, model, method, args, kwargs)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return &TransportError{Op: model + "." + method, Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}

func (p *Proxy) session(ctx context.Context, key string) (Session, error) {
	s, err := p.cfg.Store.Get(ctx, key)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return Session{}, err
	}
	if p.cfg.Mode != Shared {
		return Session{}, ErrSessionNotFound
	}
	return p.login(ctx, key)
}

// login authenticates key with credentials from the configured source.
// Every failure is reported as ErrAuthenticationFailed.
func (p *Proxy) login(ctx context.Context, key string) (Session, error) {
	if p.cfg.Credentials == nil {
		return Session{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, ErrNoCredentials)
	}
	creds, err := p.cfg.Credentials.Credentials(ctx, key)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	s, err := p.Authenticate(ctx, key, creds)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if s == nil {
		return Session{}, ErrAuthenticationFailed
	}
	return *s, nil
}

func (p *Proxy) expired(err error) bool {
	var remote *RemoteError
	return errors.As(err, &remote) && remote.matches(p.patterns)
}

func (p *Proxy) callKW(ctx context.Context, s Session, model, method string, args []any, kwargs map[string]any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	params := map[string]any{
		"model":  model,
		"method": method,
		"args":   args,
		"kwargs": kwargs,
	}

	start := p.now()
	result, _, err := p.post(ctx, callKWPath+model+"/"+method, params, s.Token)
	p.observer.ObserveCall(p.cfg.Name, model, method, p.now().Sub(start), err)
	return result, err
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      string `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			Name    string `json:"name"`
			Message string `json:"message"`
			Debug   string `json:"debug"`
		} `json:"data"`
	} `json:"error"`
}

// post sends one JSON-RPC call and returns its result and the response
// headers.
func (p *Proxy) post(ctx context.Context, path string, params any, token string) (json.RawMessage, http.Header, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  params,
		ID:      uuid.NewString(),
	})
	if err != nil {
		return nil, nil, &TransportError{Op: path, Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, nil, &TransportError{Op: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.AddCookie(sessionCookie(token))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.Header, &TransportError{Op: path, Status: resp.StatusCode}
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, resp.Header, &TransportError{Op: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.Error != nil {
		return nil, resp.Header, &RemoteError{
			Code:    out.Error.Code,
			Message: out.Error.Message,
			Name:    out.Error.Data.Name,
			Detail:  out.Error.Data.Message,
			Debug:   out.Error.Data.Debug,
		}
	}
	return out.Result, resp.Header, nil
}
