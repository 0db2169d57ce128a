// Package sentidash is a Go SDK for the sentidash-server gRPC API.
package sentidash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls the Dashboard service.
type Client struct {
	conn   grpc.ClientConnInterface
	closer io.Closer
}

// Dial creates a client for the server at addr. Connections are plaintext
// unless opts supply credentials.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return &Client{conn: conn, closer: conn}, nil
}

// NewClient wraps an existing connection. Close does not close it.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Close releases the connection created by Dial.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

// Summary returns a product's aggregates. IsNotFound reports an unknown
// product.
func (c *Client) Summary(ctx context.Context, product string) (*Summary, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodGetSummary, wrapperspb.String(product), out); err != nil {
		return nil, err
	}
	var s Summary
	if err := decode(out, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Graph returns a product's merged chart data.
func (c *Client) Graph(ctx context.Context, product string) (*Graph, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodGetGraph, wrapperspb.String(product), out); err != nil {
		return nil, err
	}
	var g Graph
	if err := decode(out, &g); err != nil {
		return nil, err
	}
	if g.Points == nil {
		g.Points = []Point{}
	}
	return &g, nil
}

// Products returns the server's product catalog.
func (c *Client) Products(ctx context.Context) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, MethodListProducts, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	products := make([]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		products = append(products, v.GetStringValue())
	}
	return products, nil
}

// Overview returns the summaries of every catalog product.
func (c *Client) Overview(ctx context.Context) ([]OverviewRow, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, MethodGetOverview, &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	var rows []OverviewRow
	if err := decode(out, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// IsNotFound reports whether err is the server's unknown-product error.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func decode(m proto.Message, v any) error {
	b, err := protojson.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
