package history

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRecentFiles_AddList(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.mp4")
	b := touch(t, dir, "b.mp3")
	c := touch(t, dir, "c.mkv")

	r, err := Load(filepath.Join(dir, "recent.yaml"), 2)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	r.Add(a)
	r.Add(b)
	r.Add(c)

	want := []string{c, b}
	if got := r.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	// re-adding moves an entry to the front
	r.Add(b)
	want = []string{b, c}
	if got := r.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List() after re-add = %v, want %v", got, want)
	}
}

func TestRecentFiles_SkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.mp4")
	b := touch(t, dir, "b.mp4")

	r, err := Load(filepath.Join(dir, "recent.yaml"), 0)
	if err != nil {
		t.Fatal(err)
	}
	r.Add(a)
	r.Add(b)

	if err := os.Remove(a); err != nil {
		t.Fatal(err)
	}

	if got := r.List(); !reflect.DeepEqual(got, []string{b}) {
		t.Errorf("List() = %v, want only existing files", got)
	}
}

func TestRecentFiles_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.mp4")
	b := touch(t, dir, "b.mp4")
	path := filepath.Join(dir, "state", "recent.yaml")

	r, err := Load(path, 5)
	if err != nil {
		t.Fatal(err)
	}
	r.Add(a)
	r.Add(b)
	if err := r.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path, 5)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := loaded.List(), []string{b, a}; !reflect.DeepEqual(got, want) {
		t.Errorf("List() after reload = %v, want %v", got, want)
	}
}

func TestLoad_Missing(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), 3)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(r.List()) != 0 {
		t.Error("expected empty history")
	}
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recent.yaml")
	if err := os.WriteFile(path, []byte("recent: {broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, 3); err == nil {
		t.Error("Load() expected parse error")
	}
}
