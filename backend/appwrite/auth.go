package appwrite

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campusbite/backend"
)

type accountDoc struct {
	ID        string    `json:"$id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"$createdAt"`
}

type sessionDoc struct {
	ID      string    `json:"$id"`
	UserID  string    `json:"userId"`
	Expire  time.Time `json:"expire"`
	Current bool      `json:"current"`
	Secret  string    `json:"secret"`
}

// Auth is the account API. Session ids it hands out carry the session
// secret ("<id>:<secret>") so another process can resume them.
type Auth struct {
	c *Client
}

func (a *Auth) CreateAccount(ctx context.Context, email, password, name string) (*backend.Account, error) {
	var acc accountDoc
	err := a.c.do(ctx, http.MethodPost, "/account", nil, map[string]any{
		"userId":   "unique()",
		"email":    strings.TrimSpace(email),
		"password": password,
		"name":     name,
	}, &acc)
	if err != nil {
		return nil, err
	}
	return &backend.Account{ID: acc.ID, Email: acc.Email, Name: acc.Name, CreatedAt: acc.CreatedAt}, nil
}

func (a *Auth) CreateSession(ctx context.Context, email, password string) (*backend.Session, error) {
	var doc sessionDoc
	err := a.c.do(ctx, http.MethodPost, "/account/sessions/email", nil, map[string]any{
		"email":    strings.TrimSpace(email),
		"password": password,
	}, &doc)
	if err != nil {
		return nil, err
	}
	secret := doc.Secret
	if secret == "" {
		secret = a.cookieSecret()
	}
	a.c.setSession(secret, doc.UserID)
	return a.toSession(doc, secret), nil
}

func (a *Auth) GetSession(ctx context.Context, id string) (*backend.Session, error) {
	sessID, _ := splitToken(id)
	var doc sessionDoc
	if err := a.c.do(ctx, http.MethodGet, "/account/sessions/"+url.PathEscape(sessID), nil, nil, &doc); err != nil {
		return nil, err
	}
	secret, _ := a.c.session()
	if _, s := splitToken(id); s != "" {
		secret = s
	}
	return a.toSession(doc, secret), nil
}

func (a *Auth) Resume(ctx context.Context, id string) (*backend.Session, error) {
	if id == backend.CurrentSessionID {
		return a.CurrentSession(ctx)
	}
	_, secret := splitToken(id)
	prevSecret, prevAccount := a.c.session()
	if secret != "" {
		a.c.setSession(secret, "")
	}
	sess, err := a.GetSession(ctx, id)
	if err != nil {
		a.c.setSession(prevSecret, prevAccount)
		return nil, err
	}
	if secret == "" {
		secret = prevSecret
	}
	a.c.setSession(secret, sess.UserID)
	return sess, nil
}

func (a *Auth) CurrentSession(ctx context.Context) (*backend.Session, error) {
	return a.GetSession(ctx, backend.CurrentSessionID)
}

func (a *Auth) DeleteSession(ctx context.Context, id string) error {
	sessID, secret := splitToken(id)
	if err := a.c.do(ctx, http.MethodDelete, "/account/sessions/"+url.PathEscape(sessID), nil, nil, nil); err != nil {
		return err
	}
	if cur, _ := a.c.session(); sessID == backend.CurrentSessionID || (secret != "" && secret == cur) {
		a.c.setSession("", "")
	}
	return nil
}

func (a *Auth) UpdateName(ctx context.Context, name string) error {
	return a.c.do(ctx, http.MethodPatch, "/account/name", nil, map[string]any{"name": name}, nil)
}

func (a *Auth) toSession(doc sessionDoc, secret string) *backend.Session {
	id := doc.ID
	if secret != "" {
		id += ":" + secret
	}
	return &backend.Session{ID: id, UserID: doc.UserID, ExpiresAt: doc.Expire, Current: doc.Current}
}

// cookieSecret reads the session cookie Appwrite set on the endpoint.
func (a *Auth) cookieSecret() string {
	u, err := url.Parse(a.c.cfg.Endpoint)
	if err != nil {
		return ""
	}
	name := "a_session_" + strings.ToLower(a.c.cfg.ProjectID)
	for _, ck := range a.c.http.Jar.Cookies(u) {
		if strings.ToLower(ck.Name) == name {
			return ck.Value
		}
	}
	return ""
}

func splitToken(token string) (id, secret string) {
	id, secret, _ = strings.Cut(token, ":")
	return id, secret
}
