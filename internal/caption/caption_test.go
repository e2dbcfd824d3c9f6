package caption

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nguyentantai21042004/clipnorm/internal/failure"
)

func TestAssociateCopies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.txt")
	content := []byte("a dog runs\n\tthrough \xffgrass")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"clip_segment1.txt", "clip_segment2.txt"} {
		dst := filepath.Join(dir, name)
		outcome, err := Associate(src, dst)
		if err != nil || outcome != Copied {
			t.Fatalf("Associate() = %v, %v; want copied", outcome, err)
		}
		got, err := os.ReadFile(dst)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(content) {
			t.Errorf("%s = %q, want %q", name, got, content)
		}
	}
}

func TestAssociateStubsMissingCaption(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "clip_segment1.txt")

	outcome, err := Associate("", dst)
	if err != nil {
		t.Fatalf("Associate() error = %v", err)
	}
	if outcome != Stubbed {
		t.Errorf("outcome = %v, want stubbed", outcome)
	}
	fi, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 0 {
		t.Errorf("stub caption has %d bytes, want 0", fi.Size())
	}
}

func TestAssociateFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "clip_segment1.txt")

	outcome, err := Associate(filepath.Join(dir, "vanished.txt"), dst)
	if outcome != Fallback {
		t.Errorf("outcome = %v, want fallback", outcome)
	}
	if !failure.Is(err, failure.KindCaptionIO) {
		t.Errorf("error = %v, want caption-io", err)
	}
	if fi, statErr := os.Stat(dst); statErr != nil || fi.Size() != 0 {
		t.Errorf("fallback caption missing or not empty: %v", statErr)
	}
}

func TestAssociateMissingDirectory(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "no-such-dir", "clip_segment1.txt")

	outcome, err := Associate("", dst)
	if outcome != Missing {
		t.Errorf("outcome = %v, want missing", outcome)
	}
	if !failure.Is(err, failure.KindCaptionIO) {
		t.Errorf("error = %v, want caption-io", err)
	}
}
