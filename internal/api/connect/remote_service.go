package connect

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/osa030/ytmusic/internal/app/notification"
	"github.com/osa030/ytmusic/internal/app/session"
	"github.com/osa030/ytmusic/internal/domain/track"
)

const (
	// RemoteServiceName is the fully-qualified name of the remote-control service.
	RemoteServiceName = "ytmusic.v1.RemoteService"

	// ExecuteProcedure runs one command line.
	ExecuteProcedure = "/" + RemoteServiceName + "/Execute"
	// StatusProcedure reports the playback status.
	StatusProcedure = "/" + RemoteServiceName + "/Status"
	// WatchProcedure streams playback notifications.
	WatchProcedure = "/" + RemoteServiceName + "/Watch"
)

// Session is the command loop the service forwards to.
type Session interface {
	Submit(ctx context.Context, line string, w io.Writer) (bool, error)
	Status(ctx context.Context) (session.Status, error)
}

// RemoteService implements the RemoteService RPC.
type RemoteService struct {
	session       Session
	notifications *notification.Manager
}

// NewRemoteService creates a new RemoteService.
// Watch is unavailable when notifications is nil.
func NewRemoteService(s Session, notifications *notification.Manager) *RemoteService {
	return &RemoteService{
		session:       s,
		notifications: notifications,
	}
}

// NewRemoteServiceHandler builds an HTTP handler for the service.
// It returns the path to mount the handler on.
func NewRemoteServiceHandler(svc *RemoteService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(ExecuteProcedure, connect.NewUnaryHandler(ExecuteProcedure, svc.Execute, opts...))
	mux.Handle(StatusProcedure, connect.NewUnaryHandler(StatusProcedure, svc.Status, opts...))
	mux.Handle(WatchProcedure, connect.NewServerStreamHandler(WatchProcedure, svc.Watch, opts...))
	return "/" + RemoteServiceName + "/", mux
}

// Execute runs a command line through the session and returns its output.
// Command failures are part of the output; only transport-level problems are errors.
func (s *RemoteService) Execute(
	ctx context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[wrapperspb.StringValue], error) {
	line := strings.TrimSpace(req.Msg.GetValue())
	if line == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("empty command"))
	}
	zlog.Info().Msgf("remote: execute: line=%q peer=%s", line, req.Peer().Addr)

	var out bytes.Buffer
	if _, err := s.session.Submit(ctx, line, &out); err != nil {
		if code, ok := transportCode(err); ok {
			return nil, connect.NewError(code, err)
		}
	}

	return connect.NewResponse(wrapperspb.String(out.String())), nil
}

// Status returns the playback status.
func (s *RemoteService) Status(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	st, err := s.session.Status(ctx)
	if err != nil {
		code, ok := transportCode(err)
		if !ok {
			code = connect.CodeInternal
		}
		return nil, connect.NewError(code, err)
	}

	msg, err := statusStruct(st)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// Watch streams playback notifications until the client goes away.
func (s *RemoteService) Watch(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
	stream *connect.ServerStream[structpb.Struct],
) error {
	if s.notifications == nil {
		return connect.NewError(connect.CodeUnimplemented, errors.New("notifications are disabled"))
	}

	id, ch := s.notifications.Subscribe()
	defer s.notifications.Unsubscribe(id)
	zlog.Info().Msgf("remote: watch started: subscription=%s peer=%s", id, req.Peer().Addr)

	for {
		select {
		case <-ctx.Done():
			zlog.Info().Msgf("remote: watch ended: subscription=%s", id)
			return nil
		case n, ok := <-ch:
			if !ok {
				return nil
			}
			msg, err := notificationStruct(n)
			if err != nil {
				return connect.NewError(connect.CodeInternal, err)
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

// transportCode maps errors that did not come from the command itself.
func transportCode(err error) (connect.Code, bool) {
	switch {
	case errors.Is(err, session.ErrSessionNotRunning):
		return connect.CodeUnavailable, true
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled, true
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded, true
	default:
		return 0, false
	}
}

func statusStruct(st session.Status) (*structpb.Struct, error) {
	fields := map[string]any{
		"state":        st.State.String(),
		"volume":       st.Volume,
		"queue_size":   st.QueueSize,
		"queue_index":  st.QueueIndex,
		"position_sec": st.Position.Seconds(),
		"duration_sec": st.Duration.Seconds(),
	}
	if st.Track != nil {
		fields["track"] = trackFields(*st.Track)
	}
	return structpb.NewStruct(fields)
}

func notificationStruct(n notification.Notification) (*structpb.Struct, error) {
	fields := map[string]any{
		"sequence_no": n.SequenceNo,
		"type":        n.Type,
		"state":       n.State,
		"time":        n.Time.Format(time.RFC3339),
	}
	if n.Message != "" {
		fields["message"] = n.Message
	}
	if n.Track != nil {
		fields["track"] = trackFields(*n.Track)
	}
	return structpb.NewStruct(fields)
}

func trackFields(t track.Track) map[string]any {
	return map[string]any{
		"id":     t.ID,
		"title":  t.Title,
		"artist": t.Artist(),
		"album":  t.Album,
		"url":    t.URL,
		"source": string(t.Source),
	}
}
