package grpc

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/farhapartex/stream-search/internal/handlers"
	"github.com/farhapartex/stream-search/internal/logging"
	"github.com/farhapartex/stream-search/internal/view"
)

const (
	ServiceName = "streamsearch.v1.StreamSearch"

	// SearchMethod is the full method name of the Search RPC
	SearchMethod = "/" + ServiceName + "/Search"
)

// SearchServer is implemented by anything that can answer Search calls.
// Requests and responses are google.protobuf.Struct values.
type SearchServer interface {
	Search(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type Server struct {
	searchHandler *handlers.SearchHandler
}

func NewServer(searchHandler *handlers.SearchHandler) *Server {
	return &Server{
		searchHandler: searchHandler,
	}
}

// NewGRPCServer builds a gRPC server with the search, health and
// reflection services registered.
func NewGRPCServer(logger zerolog.Logger, searchHandler *handlers.SearchHandler) *grpc.Server {
	srv := grpc.NewServer(
		grpc.MaxConcurrentStreams(1000),
		grpc.UnaryInterceptor(logging.UnaryServerInterceptor(logger)),
	)

	RegisterSearchServer(srv, NewServer(searchHandler))

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthSrv)

	reflection.Register(srv)

	return srv
}

// Search runs one search. The request carries query, token, offset and
// limit; the response is the page summary.
func (s *Server) Search(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	searchReq, err := s.validateSearchRequest(req)
	if err != nil {
		return nil, err
	}

	l := logging.Ctx(ctx)
	l.Info().
		Str(logging.FieldQuery, searchReq.Query).
		Int(logging.FieldOffset, searchReq.Offset).
		Int(logging.FieldLimit, searchReq.Limit).
		Msg("received search request")

	page, err := s.searchHandler.Search(ctx, searchReq)
	if err != nil {
		l.Error().Err(err).Msg("search failed")
		return nil, statusFor(err)
	}

	resp, err := summaryToStruct(view.Summarize(page))
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}

	return resp, nil
}

// validateSearchRequest checks the shape of the Struct. Query and range
// rules belong to the search handler and come back through statusFor.
func (s *Server) validateSearchRequest(req *structpb.Struct) (handlers.SearchRequest, error) {
	fields := req.GetFields()

	query, err := stringField(fields, "query")
	if err != nil {
		return handlers.SearchRequest{}, err
	}
	token, err := stringField(fields, "token")
	if err != nil {
		return handlers.SearchRequest{}, err
	}
	offset, err := intField(fields, "offset")
	if err != nil {
		return handlers.SearchRequest{}, err
	}
	limit, err := intField(fields, "limit")
	if err != nil {
		return handlers.SearchRequest{}, err
	}

	return handlers.SearchRequest{
		Query:  query,
		Token:  token,
		Offset: offset,
		Limit:  limit,
	}, nil
}

func stringField(fields map[string]*structpb.Value, name string) (string, error) {
	v, ok := fields[name]
	if !ok {
		return "", nil
	}

	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Error(codes.InvalidArgument, fmt.Sprintf("%s must be a string", name))
	}
	return str.StringValue, nil
}

func intField(fields map[string]*structpb.Value, name string) (int, error) {
	v, ok := fields[name]
	if !ok {
		return 0, nil
	}

	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Error(codes.InvalidArgument, fmt.Sprintf("%s must be a number", name))
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, status.Error(codes.InvalidArgument, fmt.Sprintf("%s must be an integer", name))
	}

	return int(n.NumberValue), nil
}

func statusFor(err error) error {
	switch handlers.Classify(err) {
	case handlers.KindInvalid:
		return status.Error(codes.InvalidArgument, err.Error())
	case handlers.KindTimeout:
		return status.Error(codes.DeadlineExceeded, "streaming platform did not answer in time")
	case handlers.KindUpstream:
		return status.Error(codes.Unavailable, fmt.Sprintf("streaming platform unavailable: %v", err))
	case handlers.KindEmpty:
		return status.Error(codes.NotFound, "no streams matched the search")
	default:
		return status.Error(codes.Internal, fmt.Sprintf("search failed: %v", err))
	}
}
