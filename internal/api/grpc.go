package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"sentidash/internal/dashboard"
	"sentidash/internal/series"
	"sentidash/internal/upstream"
	"sentidash/pkg/sentidash"
)

// Backend is the data the Dashboard service exposes. *dashboard.Service
// satisfies it.
type Backend interface {
	Products() []string
	Summary(ctx context.Context, product string) (*upstream.Summary, error)
	Graph(ctx context.Context, product string) (series.MergedSeries, error)
	Overview(ctx context.Context, products []string) []dashboard.OverviewRow
}

// DashboardService implements the sentidash.v1.Dashboard gRPC service over
// well-known protobuf types.
type DashboardService struct {
	backend Backend
	log     *slog.Logger
}

// NewDashboardService creates a DashboardService backed by b.
func NewDashboardService(b Backend, log *slog.Logger) *DashboardService {
	if log == nil {
		log = slog.Default()
	}
	return &DashboardService{backend: b, log: log}
}

// RegisterGRPC registers the service on the given gRPC server instance.
func (s *DashboardService) RegisterGRPC(gs *grpc.Server) {
	gs.RegisterService(&dashboardServiceDesc, s)
}

// GetSummary returns the product's summary as a Struct.
func (s *DashboardService) GetSummary(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	sum, err := s.backend.Summary(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(sum)
}

type graphPayload struct {
	Product string              `json:"product"`
	Points  series.MergedSeries `json:"points"`
}

// GetGraph returns the product's merged series as {product, points}.
func (s *DashboardService) GetGraph(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	ms, err := s.backend.Graph(ctx, in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(graphPayload{Product: in.GetValue(), Points: ms})
}

// ListProducts returns the catalog as a list of strings.
func (s *DashboardService) ListProducts(_ context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	products := s.backend.Products()
	values := make([]any, len(products))
	for i, p := range products {
		values[i] = p
	}
	list, err := structpb.NewList(values)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

// GetOverview returns one row per catalog product.
func (s *DashboardService) GetOverview(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	rows := s.backend.Overview(ctx, nil)
	out := new(structpb.ListValue)
	if err := marshalInto(rows, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// toStatus maps service errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrEmptyProduct):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, upstream.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}

func toStruct(v any) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := marshalInto(v, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func marshalInto(v any, m proto.Message) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %T: %w", v, err)
	}
	return protojson.Unmarshal(b, m)
}

// --- Service descriptor ---

type dashboardServer interface {
	GetSummary(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetGraph(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListProducts(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetOverview(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

var dashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: sentidash.ServiceName,
	HandlerType: (*dashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetSummary",
			Handler: unary(sentidash.MethodGetSummary, newStringValue,
				func(s dashboardServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
					return s.GetSummary(ctx, in)
				}),
		},
		{
			MethodName: "GetGraph",
			Handler: unary(sentidash.MethodGetGraph, newStringValue,
				func(s dashboardServer, ctx context.Context, in *wrapperspb.StringValue) (any, error) {
					return s.GetGraph(ctx, in)
				}),
		},
		{
			MethodName: "ListProducts",
			Handler: unary(sentidash.MethodListProducts, newEmpty,
				func(s dashboardServer, ctx context.Context, in *emptypb.Empty) (any, error) {
					return s.ListProducts(ctx, in)
				}),
		},
		{
			MethodName: "GetOverview",
			Handler: unary(sentidash.MethodGetOverview, newEmpty,
				func(s dashboardServer, ctx context.Context, in *emptypb.Empty) (any, error) {
					return s.GetOverview(ctx, in)
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sentidash/v1/dashboard.proto",
}

func newStringValue() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newEmpty() *emptypb.Empty                { return new(emptypb.Empty) }

// unary adapts a typed method to the grpc.MethodDesc handler signature.
func unary[In proto.Message](
	fullMethod string,
	newIn func() In,
	call func(dashboardServer, context.Context, In) (any, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newIn()
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(dashboardServer), ctx, req.(In))
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, handler)
	}
}

// loggingInterceptor logs every unary call with its code and latency.
func loggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		level := slog.LevelDebug
		if code != codes.OK && code != codes.NotFound && code != codes.InvalidArgument {
			level = slog.LevelWarn
		}
		log.Log(ctx, level, "grpc call",
			"method", info.FullMethod,
			"code", code.String(),
			"elapsed", time.Since(start),
		)
		return resp, err
	}
}
