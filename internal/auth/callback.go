package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

const successPage = `<!DOCTYPE html>
<html>
<head>
<title>spotql</title>
<script>setTimeout(function () { window.close() }, 1000)</script>
</head>
<body>Authenticated successfully. You can close this window.</body>
</html>
`

type callbackResult struct {
	code string
	err  error
}

// Callback receives the authorization redirect on a local listener.
type Callback struct {
	state    string
	listener net.Listener
	server   *http.Server
	path     string
	result   chan callbackResult
}

// Listen binds the host and port of redirectURI. The listener is bound before
// the browser is opened so the redirect cannot arrive early.
func Listen(redirectURI, state string) (*Callback, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect_uri %q: %w", redirectURI, err)
	}
	if u.Scheme != "http" || u.Host == "" {
		return nil, fmt.Errorf("redirect_uri must be a local http URL, got %q", redirectURI)
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", u.Host, err)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	cb := &Callback{
		state:    state,
		listener: ln,
		path:     path,
		result:   make(chan callbackResult, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, cb.handle)
	cb.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := cb.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cb.deliver(callbackResult{err: err})
		}
	}()
	return cb, nil
}

// Addr returns the bound address.
func (cb *Callback) Addr() string { return cb.listener.Addr().String() }

func (cb *Callback) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != cb.path {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	var res callbackResult
	switch {
	case q.Get("error") != "":
		res.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
	case cb.state != "" && q.Get("state") != cb.state:
		res.err = fmt.Errorf("authorization response has a mismatched state")
	case q.Get("code") == "":
		res.err = fmt.Errorf("invalid redirect parameters: no code")
	default:
		res.code = q.Get("code")
	}

	if res.err != nil {
		http.Error(w, res.err.Error(), http.StatusBadRequest)
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, successPage)
	}
	cb.deliver(res)
}

// deliver keeps only the first result.
func (cb *Callback) deliver(res callbackResult) {
	select {
	case cb.result <- res:
	default:
	}
}

// Wait blocks until the redirect arrives or ctx is done, then shuts the
// listener down.
func (cb *Callback) Wait(ctx context.Context) (string, error) {
	defer cb.Close()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-cb.result:
		return res.code, res.err
	}
}

// Close stops the listener.
func (cb *Callback) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return cb.server.Shutdown(ctx)
}
