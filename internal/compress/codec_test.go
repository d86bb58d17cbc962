package compress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty": {},
		"css":   []byte(strings.Repeat(".btn{color:red;padding:4px}", 200)),
		"js":    []byte("(function(){return 42})();"),
	}

	for _, codec := range Codecs {
		for name, input := range inputs {
			t.Run(string(codec)+"/"+name, func(t *testing.T) {
				compressed, err := Compress(codec, input)
				if err != nil {
					t.Fatalf("compress error: %v", err)
				}
				decoded, err := Decompress(codec, compressed)
				if err != nil {
					t.Fatalf("decompress error: %v", err)
				}
				if !bytes.Equal(decoded, input) {
					t.Fatalf("round trip mismatch")
				}
			})
		}
	}
}

func TestCompressShrinksRepetitiveInput(t *testing.T) {
	input := []byte(strings.Repeat("a", 4096))
	for _, codec := range Codecs {
		compressed, err := Compress(codec, input)
		if err != nil {
			t.Fatalf("%s compress error: %v", codec, err)
		}
		if len(compressed) >= len(input) {
			t.Fatalf("%s output should be smaller: %d >= %d", codec, len(compressed), len(input))
		}
	}
}

func TestUnknownCodec(t *testing.T) {
	if _, err := Compress(Codec("zstd"), []byte("x")); err == nil {
		t.Fatalf("expected error for unsupported codec")
	}
	if _, err := Decompress(Codec("zstd"), []byte("x")); err == nil {
		t.Fatalf("expected error for unsupported codec")
	}
}

func TestIsVariant(t *testing.T) {
	testCases := map[string]bool{
		"css/main.min.css":    false,
		"css/main.min.css.br": true,
		"js/htmx.min.js.gz":   true,
		"archive.tgz":         false,
		"br":                  false,
	}
	for input, want := range testCases {
		if got := IsVariant(input); got != want {
			t.Fatalf("IsVariant(%q) = %v, want %v", input, got, want)
		}
	}
}
