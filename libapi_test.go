package cantonstream

import (
	"context"
	"errors"
	"testing"
)

func TestNewPropagatesDependencyErrors(t *testing.T) {
	if _, err := New(nil, Dependencies{}); !errors.Is(err, ErrConfigRequired) {
		t.Fatalf("expected config required error, got %v", err)
	}

	if _, err := New(&Config{}, Dependencies{}); !errors.Is(err, ErrTransportRequired) {
		t.Fatalf("expected transport required error, got %v", err)
	}
}

func TestSubscribeRequiresFilter(t *testing.T) {
	es, err := New(&Config{}, Dependencies{Transport: stubTransport{}})
	if err != nil {
		t.Fatalf("unexpected error creating stream: %v", err)
	}

	if _, err := es.Subscribe(context.Background(), TransactionFilter{}); !errors.Is(err, ErrFilterRequired) {
		t.Fatalf("expected filter required error, got %v", err)
	}
}

func TestOffsetExports(t *testing.T) {
	if got := OffsetBegin().String(); got != "begin" {
		t.Fatalf("expected 'begin', got %q", got)
	}
	if got := OffsetAt(42).String(); got != "42" {
		t.Fatalf("expected '42', got %q", got)
	}
	if OffsetBegin().Compare(OffsetEnd()) >= 0 {
		t.Fatal("expected begin to order before end")
	}
}

func TestFilterExports(t *testing.T) {
	tpl, err := ParseTemplateID("pkg:Wallet:Holding")
	if err != nil {
		t.Fatalf("unexpected error parsing template id: %v", err)
	}

	filter := NewTransactionFilter("alice")
	filter["bob"] = Templates(tpl)
	if got := len(filter.Parties()); got != 2 {
		t.Fatalf("expected 2 parties, got %d", got)
	}
}

func TestEncodingExportAliases(t *testing.T) {
	payload := map[string]string{"hello": "world"}
	if _, err := Marshal(payload); err != nil {
		t.Fatalf("marshal alias failed: %v", err)
	}
	if _, err := MarshalIndent(payload, "", "  "); err != nil {
		t.Fatalf("marshal indent alias failed: %v", err)
	}
	if err := Unmarshal([]byte(`{"hello":"world"}`), &payload); err != nil {
		t.Fatalf("unmarshal alias failed: %v", err)
	}
}

func TestErrorClassificationExports(t *testing.T) {
	if !IsFatal(ErrInvalidOffset) {
		t.Fatal("expected invalid offset to classify as fatal")
	}
	if IsRetryable(ErrInvalidFilter) {
		t.Fatal("expected invalid filter to be non-retryable")
	}
	if !IsRetryable(errors.New("connection reset")) {
		t.Fatal("expected plain transport error to be retryable")
	}
}

type stubTransport struct{}

func (stubTransport) OpenStream(context.Context, Offset, TransactionFilter) (TransportStream, error) {
	return nil, errors.New("not connected")
}
