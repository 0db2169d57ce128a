package sentidash

import (
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestDialAndClose(t *testing.T) {
	c, err := Dial("localhost:9090")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	if c.conn == nil {
		t.Fatal("expected non-nil connection")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestNewClientCloseIsNoop(t *testing.T) {
	c := NewClient(nil)
	if err := c.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestDecodeGraph(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"product": "hat",
		"points": []any{
			map[string]any{"date": "1/1/2024", "current": 0.2},
			map[string]any{"date": "1/2/2024", "future": 0.3},
		},
	})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}

	var g Graph
	if err := decode(s, &g); err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if g.Product != "hat" || len(g.Points) != 2 {
		t.Fatalf("decoded %+v", g)
	}
	if g.Points[0].Current == nil || *g.Points[0].Current != 0.2 {
		t.Errorf("Points[0].Current = %v, want 0.2", g.Points[0].Current)
	}
	if g.Points[0].Future != nil {
		t.Errorf("Points[0].Future = %v, want nil", *g.Points[0].Future)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(status.Error(codes.NotFound, "no such product")) {
		t.Error("IsNotFound(NotFound) = false")
	}
	if IsNotFound(status.Error(codes.Unavailable, "down")) {
		t.Error("IsNotFound(Unavailable) = true")
	}
	if IsNotFound(nil) {
		t.Error("IsNotFound(nil) = true")
	}
}
