package testfixtures

import (
	"reflect"
	"testing"
)

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator("bk")

	var got []string
	for i := 0; i < 36; i++ {
		got = append(got, gen.Next())
	}
	if got[0] != "BK001" || got[9] != "BK00A" || got[35] != "BK010" {
		t.Fatalf("unexpected identifiers: %q, %q, %q", got[0], got[9], got[35])
	}
	if first := NewIDGenerator("").Next(); first != "ID001" {
		t.Fatalf("expected default prefix, got %q", first)
	}
}

func TestIDGeneratorQueue(t *testing.T) {
	gen := NewIDGenerator("BK")
	gen.Queue("DUP", "DUP")

	got := []string{gen.Next(), gen.Next(), gen.Next()}
	want := []string{"DUP", "DUP", "BK001"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if issued := gen.Issued(); !reflect.DeepEqual(issued, want) {
		t.Fatalf("expected issued %v, got %v", want, issued)
	}
}
