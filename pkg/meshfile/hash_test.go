package meshfile

import "testing"

type testOptions struct {
	Scale          float32 `cbor:"1,keyasint"`
	ReverseWinding bool    `cbor:"2,keyasint"`
}

func TestSourceKey(t *testing.T) {
	source := []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	base, err := SourceKey(source, testOptions{Scale: 1})
	if err != nil {
		t.Fatalf("SourceKey() error = %v", err)
	}
	again, _ := SourceKey(source, testOptions{Scale: 1})
	if base != again {
		t.Error("SourceKey() is not deterministic")
	}

	tests := []struct {
		name   string
		source []byte
		opts   testOptions
	}{
		{"different scale", source, testOptions{Scale: 2}},
		{"different winding", source, testOptions{Scale: 1, ReverseWinding: true}},
		{"different source", []byte("f 1 2 3\n"), testOptions{Scale: 1}},
	}
	for _, tt := range tests {
		got, err := SourceKey(tt.source, tt.opts)
		if err != nil {
			t.Fatalf("%s: SourceKey() error = %v", tt.name, err)
		}
		if got == base {
			t.Errorf("%s: key did not change", tt.name)
		}
	}
}

func TestSourceKeyBoundary(t *testing.T) {
	// Without a boundary both hash the bytes "x" 0x62 0x07 0x07: the CBOR
	// encoding of 7 is 0x07 and of "\x07\x07" is 0x62 0x07 0x07.
	a, err := SourceKey([]byte("x\x62\x07"), 7)
	if err != nil {
		t.Fatalf("SourceKey() error = %v", err)
	}
	b, err := SourceKey([]byte("x"), "\x07\x07")
	if err != nil {
		t.Fatalf("SourceKey() error = %v", err)
	}
	if a == b {
		t.Error("source and options boundary is ambiguous")
	}
}

func TestHashString(t *testing.T) {
	h := HashBytes([]byte("mesh"))

	s := h.String()
	if len(s) != 64 {
		t.Fatalf("String() length = %d, want 64", len(s))
	}

	parsed, err := ParseHash(s)
	if err != nil {
		t.Fatalf("ParseHash() error = %v", err)
	}
	if parsed != h {
		t.Errorf("ParseHash(String()) = %v, want %v", parsed, h)
	}

	if _, err := ParseHash("abcd"); err == nil {
		t.Error("ParseHash(short) error = nil")
	}
	if _, err := ParseHash("zz"); err == nil {
		t.Error("ParseHash(non-hex) error = nil")
	}
	if h.IsZero() || !(Hash{}).IsZero() {
		t.Error("IsZero() wrong")
	}
}
