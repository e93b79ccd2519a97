package odoorpc

import "context"

// Credentials are the login and password presented to Odoo.
type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// CredentialSource supplies credentials when a proxy has to log in on its
// own, either lazily in shared mode or after a session expired.
type CredentialSource interface {
	Credentials(ctx context.Context, identity string) (Credentials, error)
}

// StaticCredentials returns the same credentials for every identity. It is
// meant for shared service accounts.
type StaticCredentials Credentials

func (s StaticCredentials) Credentials(context.Context, string) (Credentials, error) {
	if s.Login == "" {
		return Credentials{}, ErrNoCredentials
	}
	return Credentials(s), nil
}

// CredentialsFunc adapts a function to CredentialSource.
type CredentialsFunc func(ctx context.Context, identity string) (Credentials, error)

func (f CredentialsFunc) Credentials(ctx context.Context, identity string) (Credentials, error) {
	return f(ctx, identity)
}
