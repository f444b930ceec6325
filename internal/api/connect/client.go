package connect

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RemoteClient calls a RemoteService.
type RemoteClient struct {
	execute *connect.Client[wrapperspb.StringValue, wrapperspb.StringValue]
	status  *connect.Client[emptypb.Empty, structpb.Struct]
	watch   *connect.Client[emptypb.Empty, structpb.Struct]
}

// NewRemoteClient creates a client for the server at baseURL.
// The token is sent with every request when set.
func NewRemoteClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *RemoteClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append(opts, connect.WithInterceptors(NewTokenClientInterceptor(token)))
	return &RemoteClient{
		execute: connect.NewClient[wrapperspb.StringValue, wrapperspb.StringValue](httpClient, baseURL+ExecuteProcedure, opts...),
		status:  connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+StatusProcedure, opts...),
		watch:   connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+WatchProcedure, opts...),
	}
}

// Execute runs a command line on the server and returns its output.
func (c *RemoteClient) Execute(ctx context.Context, line string) (string, error) {
	res, err := c.execute.CallUnary(ctx, connect.NewRequest(wrapperspb.String(line)))
	if err != nil {
		return "", errors.Wrap(err, "execute failed")
	}
	return res.Msg.GetValue(), nil
}

// Status fetches the playback status as a generic map.
func (c *RemoteClient) Status(ctx context.Context) (map[string]any, error) {
	res, err := c.status.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return nil, errors.Wrap(err, "status failed")
	}
	return res.Msg.AsMap(), nil
}

// Watch calls fn for every playback notification until ctx is done, the stream ends or fn fails.
func (c *RemoteClient) Watch(ctx context.Context, fn func(map[string]any) error) error {
	stream, err := c.watch.CallServerStream(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return errors.Wrap(err, "watch failed")
	}
	defer stream.Close()

	for stream.Receive() {
		if err := fn(stream.Msg().AsMap()); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "watch stream failed")
	}
	return nil
}
