package temp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunDirLifecycle(t *testing.T) {
	base := t.TempDir()

	d, err := NewRunDir(base)
	if err != nil {
		t.Fatalf("NewRunDir: %v", err)
	}

	if !strings.HasPrefix(filepath.Base(d.Path()), "crfseek-") {
		t.Errorf("unexpected run dir name: %s", d.Path())
	}
	if info, err := os.Stat(d.Path()); err != nil || !info.IsDir() {
		t.Fatalf("run dir not created: %v", err)
	}

	trial, err := d.TrialDir(30)
	if err != nil {
		t.Fatalf("TrialDir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(trial, "sample_0.mkv"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	d.RemoveTrial(30)
	if _, err := os.Stat(trial); !os.IsNotExist(err) {
		t.Error("trial dir should be removed")
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(d.Path()); !os.IsNotExist(err) {
		t.Error("run dir should be removed")
	}
}

func TestRunDirsAreUnique(t *testing.T) {
	base := t.TempDir()

	a, err := NewRunDir(base)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	b, err := NewRunDir(base)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if a.Path() == b.Path() {
		t.Error("two runs must not share a directory")
	}
}

func TestSamplePath(t *testing.T) {
	d, err := NewRunDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	p := d.SamplePath(2)
	if filepath.Base(p) != "sample_2.mkv" {
		t.Errorf("SamplePath(2) = %s", p)
	}
	if filepath.Dir(p) != d.Path() {
		t.Errorf("sample should live at the run dir root: %s", p)
	}
}
