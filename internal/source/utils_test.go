package source

import (
	"bytes"
	"testing"
)

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		changed bool
	}{
		{"no carriage returns", "ab\ncd\n", "ab\ncd\n", false},
		{"crlf pairs", "ab\r\ncd\r\n", "ab\ncd\n", true},
		{"lone cr preserved", "ab\rcd", "ab\rcd", false},
		{"mixed", "a\r\nb\rc\n", "a\nb\rc\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := normalizeCRLF([]byte(tt.in))
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if changed != tt.changed {
				t.Errorf("changed = %v, want %v", changed, tt.changed)
			}
		})
	}
}

func TestRemoveBOM(t *testing.T) {
	got, had := removeBOM([]byte{0xEF, 0xBB, 0xBF, 'h', 'i'})
	if !had || string(got) != "hi" {
		t.Errorf("BOM not stripped: %q, %v", got, had)
	}
	got, had = removeBOM([]byte("hi"))
	if had || string(got) != "hi" {
		t.Errorf("no-BOM input changed: %q, %v", got, had)
	}
}

func TestNormalizeContent(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\n")...)
	got, flags := NormalizeContent(in)
	if !bytes.Equal(got, []byte("a\nb\n")) {
		t.Errorf("content = %q", got)
	}
	if flags&FileHadBOM == 0 {
		t.Error("FileHadBOM not set")
	}
	if flags&FileNormalizedCRLF == 0 {
		t.Error("FileNormalizedCRLF not set")
	}

	got, flags = NormalizeContent([]byte("plain\n"))
	if flags != 0 || string(got) != "plain\n" {
		t.Errorf("plain content changed: %q flags=%b", got, flags)
	}
}

func TestBuildLineIndex(t *testing.T) {
	idx := buildLineIndex([]byte("ab\ncde\nf"))
	if len(idx) != 2 || idx[0] != 2 || idx[1] != 6 {
		t.Errorf("line index = %v, want [2 6]", idx)
	}
	if got := buildLineIndex(nil); len(got) != 0 {
		t.Errorf("empty content produced index %v", got)
	}
}
