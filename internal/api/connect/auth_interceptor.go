// Package connect provides the Connect RPC remote-control service.
package connect

import (
	"context"
	"crypto/subtle"
	"net/http"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
)

const (
	// RemoteTokenHeader is the header name for the remote-control token.
	RemoteTokenHeader = "X-Remote-Token"
)

var errInvalidToken = errors.New("invalid or missing remote token")

// tokenAuthInterceptor validates the remote-control token on unary and streaming calls.
type tokenAuthInterceptor struct {
	token string
}

// NewTokenAuthInterceptor creates an interceptor that validates the remote-control
// token from request metadata.
func NewTokenAuthInterceptor(token string) connect.Interceptor {
	return &tokenAuthInterceptor{token: token}
}

func (i *tokenAuthInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if err := i.authorize(req.Header()); err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

func (i *tokenAuthInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (i *tokenAuthInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		if err := i.authorize(conn.RequestHeader()); err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

func (i *tokenAuthInterceptor) authorize(header http.Header) error {
	got := header.Get(RemoteTokenHeader)
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(i.token)) != 1 {
		return connect.NewError(connect.CodeUnauthenticated, errInvalidToken)
	}
	return nil
}

// tokenClientInterceptor attaches the token to outgoing calls.
type tokenClientInterceptor struct {
	token string
}

// NewTokenClientInterceptor creates an interceptor that attaches the token to outgoing requests.
func NewTokenClientInterceptor(token string) connect.Interceptor {
	return &tokenClientInterceptor{token: token}
}

func (i *tokenClientInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient && i.token != "" {
			req.Header().Set(RemoteTokenHeader, i.token)
		}
		return next(ctx, req)
	}
}

func (i *tokenClientInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		if i.token != "" {
			conn.RequestHeader().Set(RemoteTokenHeader, i.token)
		}
		return conn
	}
}

func (i *tokenClientInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
