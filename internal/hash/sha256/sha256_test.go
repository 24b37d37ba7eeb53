package sha256

import "testing"

func TestHasherHashKnownDigest(t *testing.T) {
	t.Parallel()

	h := New()
	got, err := h.Hash([]byte("hello world"))
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestHasherHashEmptyInput(t *testing.T) {
	t.Parallel()

	got, err := New().Hash(nil)
	if err != nil {
		t.Fatalf("Hash(nil) error = %v", err)
	}
	if got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("unexpected empty digest %s", got)
	}
}
