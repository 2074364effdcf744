package object

import (
	"testing"
	"time"
)

func TestStorageName(t *testing.T) {
	at := time.UnixMilli(1700000000123).UTC()
	got, err := StorageName(at, "meu cv.pdf")
	if err != nil {
		t.Fatalf("StorageName: %v", err)
	}
	if got != "1700000000123-meu cv.pdf" {
		t.Fatalf("unexpected name %q", got)
	}

	if _, err := StorageName(at, "  "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestOriginalName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{key: "1700000000123-cv.pdf", want: "cv.pdf"},
		{key: "uploads/1700000000123-cv-final.pdf", want: "cv-final.pdf"},
		{key: `uploads\1700000000123-cv.pdf`, want: "cv.pdf"},
		{key: "resumes/1700000000123-a-b-c.docx", want: "a-b-c.docx"},
		{key: "no-timestamp.pdf", want: "no-timestamp.pdf"},
		{key: "plain.pdf", want: "plain.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			if got := OriginalName(tt.key); got != tt.want {
				t.Fatalf("OriginalName(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
