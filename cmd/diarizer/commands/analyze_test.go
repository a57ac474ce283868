package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lawrencel1ng/recordio-diarizer/pkg/storage"
)

func TestContentIDTracksAudioBytes(t *testing.T) {
	dir := t.TempDir()
	blobs, err := storage.NewLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	write := func(name string, data []byte) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.wav", []byte("same bytes"))
	write("b.wav", []byte("same bytes"))
	write("c.wav", []byte("other bytes"))

	ctx := context.Background()
	a, err := contentID(ctx, blobs, "a.wav")
	if err != nil {
		t.Fatal(err)
	}
	b, err := contentID(ctx, blobs, "b.wav")
	if err != nil {
		t.Fatal(err)
	}
	c, err := contentID(ctx, blobs, "c.wav")
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Errorf("renamed copy got a different id: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("different audio got the same id %q", a)
	}
	if len(a) != 32 || strings.ContainsAny(a, ": /") {
		t.Errorf("id %q is not a plain hex token", a)
	}

	if _, err := contentID(ctx, blobs, "missing.wav"); err == nil {
		t.Error("expected an error for a missing recording")
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00.0"},
		{500 * time.Millisecond, "0:00.5"},
		{12*time.Second + 300*time.Millisecond, "0:12.3"},
		{90 * time.Second, "1:30.0"},
		{10 * time.Minute, "10:00.0"},
	}
	for _, tt := range tests {
		if got := formatOffset(tt.d); got != tt.want {
			t.Errorf("formatOffset(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPad(t *testing.T) {
	if got := pad("ab", 5); got != "ab   " {
		t.Errorf("pad short = %q", got)
	}
	if got := pad("abcdef", 3); got != "abcdef" {
		t.Errorf("pad long = %q", got)
	}
}
