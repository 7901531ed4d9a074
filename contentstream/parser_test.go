package contentstream

import (
	"testing"

	"github.com/tsawler/pdftranslate/core"
)

// TestParseOperators tests operator and operand splitting.
func TestParseOperators(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		operators []string
		operands  []int
	}{
		{"single operator", "q", []string{"q"}, []int{0}},
		{"integer operand", "100 Tz", []string{"Tz"}, []int{1}},
		{"text block", "BT /F1 12 Tf 72 712 Td (Hello) Tj ET", []string{"BT", "Tf", "Td", "Tj", "ET"}, []int{0, 2, 2, 1, 0}},
		{"matrix", "1 0 0 1 50.5 -20 cm", []string{"cm"}, []int{6}},
		{"quote operators", "(a) ' 1 2 (b) \"", []string{"'", "\""}, []int{1, 3}},
		{"star operators", "T* f* B*", []string{"T*", "f*", "B*"}, []int{0, 0, 0}},
		{"comments", "% header\nq % save\nQ", []string{"q", "Q"}, []int{0, 0}},
		{"booleans and null", "true false null xx", []string{"xx"}, []int{3}},
		{"empty", "", nil, nil},
		{"whitespace only", " \r\n\t ", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := NewParser([]byte(tt.input)).Parse()
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(ops) != len(tt.operators) {
				t.Fatalf("got %d operations, want %d", len(ops), len(tt.operators))
			}
			for i, op := range ops {
				if op.Operator != tt.operators[i] {
					t.Errorf("op %d = %q, want %q", i, op.Operator, tt.operators[i])
				}
				if len(op.Operands) != tt.operands[i] {
					t.Errorf("op %d has %d operands, want %d", i, len(op.Operands), tt.operands[i])
				}
			}
		})
	}
}

// TestParseOperandTypes tests the decoded operand values.
func TestParseOperandTypes(t *testing.T) {
	ops, err := NewParser([]byte(`/F1 -3 .5 (a\(b\)c) <48 65 6c6C6f> op`)).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("got %d operations, want 1", len(ops))
	}

	args := ops[0].Operands
	if got, ok := args[0].(core.Name); !ok || got != "F1" {
		t.Errorf("operand 0 = %v, want /F1", args[0])
	}
	if got, ok := args[1].(core.Int); !ok || got != -3 {
		t.Errorf("operand 1 = %v, want -3", args[1])
	}
	if got, ok := args[2].(core.Real); !ok || got != 0.5 {
		t.Errorf("operand 2 = %v, want 0.5", args[2])
	}
	if got, ok := args[3].(core.String); !ok || got != "a(b)c" {
		t.Errorf("operand 3 = %q, want %q", args[3], "a(b)c")
	}
	if got, ok := args[4].(core.String); !ok || got != "Hello" {
		t.Errorf("operand 4 = %q, want %q", args[4], "Hello")
	}
}

// TestParseArrayOperand tests TJ arrays with mixed strings and numbers.
func TestParseArrayOperand(t *testing.T) {
	ops, err := NewParser([]byte("[(Hel) -120 (lo) 3.5 (!)] TJ")).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ops) != 1 || ops[0].Operator != "TJ" {
		t.Fatalf("got %v, want one TJ", ops)
	}
	arr, ok := ops[0].Operands[0].(core.Array)
	if !ok {
		t.Fatalf("operand = %T, want core.Array", ops[0].Operands[0])
	}
	if len(arr) != 5 {
		t.Fatalf("array length = %d, want 5", len(arr))
	}
	if s, ok := arr[2].(core.String); !ok || s != "lo" {
		t.Errorf("arr[2] = %v, want (lo)", arr[2])
	}
}

// TestParseDictOperand tests marked-content property lists.
func TestParseDictOperand(t *testing.T) {
	ops, err := NewParser([]byte("/Span << /ActualText (x) /MCID 3 >> BDC EMC")).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("got %d operations, want 2", len(ops))
	}
	dict, ok := ops[0].Operands[1].(core.Dict)
	if !ok {
		t.Fatalf("operand = %T, want core.Dict", ops[0].Operands[1])
	}
	if mcid, _ := dict.GetInt("MCID"); mcid != 3 {
		t.Errorf("MCID = %d, want 3", mcid)
	}
}

// TestParseInlineImage tests that inline image data is skipped.
func TestParseInlineImage(t *testing.T) {
	input := "q BI /W 2 /H 2 /CS /G /BPC 8 ID \x00EI\xff\x10 EI Q (after) Tj"
	ops, err := NewParser([]byte(input)).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"q", "BI", "Q", "Tj"}
	if len(ops) != len(want) {
		t.Fatalf("got %d operations, want %d", len(ops), len(want))
	}
	for i, op := range ops {
		if op.Operator != want[i] {
			t.Errorf("op %d = %q, want %q", i, op.Operator, want[i])
		}
	}

	dict := ops[1].Operands[0].(core.Dict)
	if w, _ := dict.GetInt("W"); w != 2 {
		t.Errorf("W = %d, want 2", w)
	}
	if cs, _ := dict.GetName("CS"); cs != "G" {
		t.Errorf("CS = %q, want G", cs)
	}
}

// TestParseOperandStackIsolated tests that parsers do not share operands.
func TestParseOperandStackIsolated(t *testing.T) {
	// Dangling operands at the end of one stream must not leak into the next.
	if _, err := NewParser([]byte("1 2 3")).Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ops, err := NewParser([]byte("Q")).Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(ops[0].Operands) != 0 {
		t.Errorf("Q has %d operands, want 0", len(ops[0].Operands))
	}
}

// TestParsePartialOnError tests that operations before a syntax error are
// returned.
func TestParsePartialOnError(t *testing.T) {
	ops, err := NewParser([]byte("q 1 w ] Q")).Parse()
	if err == nil {
		t.Fatal("Parse() error = nil, want error")
	}
	if len(ops) != 2 {
		t.Errorf("got %d operations, want 2", len(ops))
	}
}
