package usecase

import (
	"context"
	"testing"
	"time"
)

func TestKafkaBarsHandlerStoresBar(t *testing.T) {
	store := &fakeBarStore{}
	h := NewKafkaBarsHandler("bars", store, nopMetrics{})

	msg := []byte(`{"symbol":"600519","market":"sh","date":"2024-03-15","o":1700,"h":1720,"l":1690,"c":1710,"v":1000000,"a":1710000000}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.stored) != 1 {
		t.Fatalf("stored bars = %d, want 1", len(store.stored))
	}
	b := store.stored[0]
	if b.Symbol != "600519" || b.Market != "sh" {
		t.Fatalf("unexpected identity: %s %s", b.Symbol, b.Market)
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !b.Date.Equal(want) {
		t.Fatalf("date = %v, want %v", b.Date, want)
	}
	if b.High != 1720 || b.Low != 1690 || b.Close != 1710 {
		t.Fatalf("unexpected prices: %+v", b)
	}
}

func TestKafkaBarsHandlerRejectsBadJSON(t *testing.T) {
	store := &fakeBarStore{}
	h := NewKafkaBarsHandler("bars", store, nopMetrics{})

	if err := h.Handle(context.Background(), []byte("not json")); err == nil {
		t.Fatal("malformed payload should error")
	}
	if err := h.Handle(context.Background(), []byte(`{"symbol":"x","date":"15/03/2024"}`)); err == nil {
		t.Fatal("unparseable date should error")
	}
	if len(store.stored) != 0 {
		t.Fatalf("nothing should be stored, got %d", len(store.stored))
	}
}
