package ffmpeg

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/piyusharama/transcript-generator/internal/adapters/proc"
	"github.com/piyusharama/transcript-generator/internal/domain"
)

// fakeRunner simulates command execution.
type fakeRunner struct {
	calls [][]string
	run   func(name string, args ...string) (proc.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (proc.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.run == nil {
		return proc.Result{}, nil
	}
	return f.run(name, args...)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatal(err)
	}
}

func noLookPath(string) (string, error) { return "", errors.New("not found") }

func TestBinaryName(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"windows", "ffmpeg.exe"},
		{"linux", "ffmpeg"},
		{"darwin", "ffmpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			e := NewExtractor(WithPlatform(tt.goos, "amd64"))
			if got := e.binaryName(); got != tt.want {
				t.Errorf("binaryName() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetFFmpegPath_PrefersBundled(t *testing.T) {
	binDir := t.TempDir()
	bundled := filepath.Join(binDir, "ffmpeg")
	mustWriteFile(t, bundled, "bin")

	e := NewExtractor(WithBinDir(binDir), WithPlatform("linux", "amd64"))
	e.lookPath = func(string) (string, error) { return "/usr/bin/ffmpeg", nil }

	if got := e.GetFFmpegPath(); got != bundled {
		t.Errorf("GetFFmpegPath() = %s, want %s", got, bundled)
	}
}

func TestGetFFmpegPath_Override(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "my-ffmpeg")
	mustWriteFile(t, custom, "bin")

	e := NewExtractor(WithBinaryPath(custom), WithBinDir(dir))
	if got := e.GetFFmpegPath(); got != custom {
		t.Errorf("GetFFmpegPath() = %s, want %s", got, custom)
	}

	missing := NewExtractor(WithBinaryPath(filepath.Join(dir, "nope")))
	if missing.IsFFmpegAvailable() {
		t.Error("a missing override should not fall back to PATH")
	}
}

func TestExtractAudio(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	mustWriteFile(t, bin, "bin")
	out := filepath.Join(dir, "talk", "talk.mp3.part")

	runner := &fakeRunner{
		run: func(name string, args ...string) (proc.Result, error) {
			mustWriteFile(t, args[len(args)-1], "mp3")
			return proc.Result{}, nil
		},
	}
	e := NewExtractor(WithBinaryPath(bin), WithRunner(runner))

	if err := e.ExtractAudio(context.Background(), "/media/talk.mp4", out); err != nil {
		t.Fatalf("ExtractAudio() error = %v", err)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("runner calls = %d, want 1", len(runner.calls))
	}
	call := strings.Join(runner.calls[0], " ")
	for _, want := range []string{bin, "-i /media/talk.mp4", "-vn", "-f mp3", out} {
		if !strings.Contains(call, want) {
			t.Errorf("command %q missing %q", call, want)
		}
	}
}

func TestExtractAudio_Failure(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	mustWriteFile(t, bin, "bin")

	runner := &fakeRunner{
		run: func(name string, args ...string) (proc.Result, error) {
			return proc.Result{Stderr: "Output file does not contain any stream", ExitCode: 1}, errors.New("exit status 1")
		},
	}
	e := NewExtractor(WithBinaryPath(bin), WithRunner(runner))

	err := e.ExtractAudio(context.Background(), "/media/silent.mp4", filepath.Join(dir, "out.mp3"))
	if err == nil || !strings.Contains(err.Error(), "does not contain any stream") {
		t.Fatalf("ExtractAudio() error = %v, want stderr in message", err)
	}
}

func TestExtractAudio_MissingOutput(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	mustWriteFile(t, bin, "bin")

	e := NewExtractor(WithBinaryPath(bin), WithRunner(&fakeRunner{}))
	err := e.ExtractAudio(context.Background(), "/media/talk.mp4", filepath.Join(dir, "out.mp3"))
	if err == nil || !strings.Contains(err.Error(), "output file is missing") {
		t.Fatalf("ExtractAudio() error = %v", err)
	}
}

func TestExtractAudio_NoBinary(t *testing.T) {
	e := NewExtractor(WithBinDir(t.TempDir()), WithRunner(&fakeRunner{}))
	e.lookPath = noLookPath

	err := e.ExtractAudio(context.Background(), "in.mp4", "out.mp3")
	if !errors.Is(err, domain.ErrFFmpegNotFound) {
		t.Errorf("ExtractAudio() error = %v, want ErrFFmpegNotFound", err)
	}
}

func TestConvertToWAV(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	mustWriteFile(t, bin, "bin")
	runner := &fakeRunner{}
	e := NewExtractor(WithBinaryPath(bin), WithRunner(runner))

	if err := e.ConvertToWAV(context.Background(), "a.mp3", "a.wav"); err != nil {
		t.Fatalf("ConvertToWAV() error = %v", err)
	}
	call := strings.Join(runner.calls[0], " ")
	if !strings.Contains(call, "-ar 16000") || !strings.Contains(call, "-ac 1") {
		t.Errorf("command %q should resample to mono 16 kHz", call)
	}
}

func TestRelease(t *testing.T) {
	tests := []struct {
		goos, goarch string
		wantFormat   archiveFormat
		wantErr      bool
	}{
		{"windows", "amd64", format7z, false},
		{"linux", "amd64", formatTarXz, false},
		{"linux", "arm64", formatTarXz, false},
		{"linux", "386", 0, true},
		{"darwin", "arm64", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			e := NewExtractor(WithPlatform(tt.goos, tt.goarch))
			rel, err := e.release()
			if (err != nil) != tt.wantErr {
				t.Fatalf("release() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && rel.format != tt.wantFormat {
				t.Errorf("format = %v, want %v", rel.format, tt.wantFormat)
			}
			if tt.wantErr && e.FFmpegInstructions() == "" {
				t.Error("expected manual instructions when no build exists")
			}
			if !tt.wantErr && e.FFmpegInstructions() != "" {
				t.Error("expected no instructions when a build exists")
			}
		})
	}
}

func TestMatchesBinary(t *testing.T) {
	tests := []struct {
		entry string
		name  string
		want  bool
	}{
		{"ffmpeg-7.0-amd64-static/ffmpeg", "ffmpeg", true},
		{"ffmpeg-7.0-amd64-static/ffprobe", "ffmpeg", false},
		{"ffmpeg-7.0-amd64-static/manpages/ffmpeg.1", "ffmpeg", false},
		{"ffmpeg-7.1-essentials_build\\bin\\ffmpeg.exe", "ffmpeg.exe", true},
		{"ffmpeg-7.1-essentials_build/bin/ffplay.exe", "ffmpeg.exe", false},
	}

	for _, tt := range tests {
		if got := matchesBinary(tt.entry, tt.name); got != tt.want {
			t.Errorf("matchesBinary(%q, %q) = %v, want %v", tt.entry, tt.name, got, tt.want)
		}
	}
}

func buildTarXz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	tw := tar.NewWriter(xw)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0755, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := xw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractFromTarXz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "ffmpeg.tar.xz")
	data := buildTarXz(t, map[string]string{
		"ffmpeg-7.0-amd64-static/ffprobe": "probe",
		"ffmpeg-7.0-amd64-static/ffmpeg":  "the binary",
	})
	if err := os.WriteFile(archive, data, 0644); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(dir, "bin", "ffmpeg")
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		t.Fatal(err)
	}
	if err := extractFromTarXz(archive, "ffmpeg", dest); err != nil {
		t.Fatalf("extractFromTarXz() error = %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "the binary" {
		t.Errorf("extracted %q, want the ffmpeg entry", got)
	}
}

func TestExtractFromTarXz_Missing(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "ffmpeg.tar.xz")
	if err := os.WriteFile(archive, buildTarXz(t, map[string]string{"readme.txt": "hi"}), 0644); err != nil {
		t.Fatal(err)
	}
	if err := extractFromTarXz(archive, "ffmpeg", filepath.Join(dir, "ffmpeg")); err == nil {
		t.Fatal("extractFromTarXz() expected error when the binary is absent")
	}
}

func TestInstallFFmpeg_Linux(t *testing.T) {
	archive := buildTarXz(t, map[string]string{"ffmpeg-static/ffmpeg": "static ffmpeg"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(archive)
	}))
	defer srv.Close()

	binDir := t.TempDir()
	e := NewExtractor(WithBinDir(binDir), WithPlatform("linux", "amd64"), WithHTTPClient(redirectClient(srv)))

	var progressed bool
	if err := e.InstallFFmpeg(context.Background(), func(d, total int64) { progressed = true }); err != nil {
		t.Fatalf("InstallFFmpeg() error = %v", err)
	}

	want := filepath.Join(binDir, "ffmpeg")
	if got := e.GetFFmpegPath(); got != want {
		t.Errorf("GetFFmpegPath() = %s, want %s", got, want)
	}
	if !progressed {
		t.Error("progress callback never called")
	}
}

func TestInstallFFmpeg_Unsupported(t *testing.T) {
	e := NewExtractor(WithBinDir(t.TempDir()), WithPlatform("darwin", "arm64"))
	err := e.InstallFFmpeg(context.Background(), nil)
	if !errors.Is(err, errNoStaticBuild) {
		t.Fatalf("InstallFFmpeg() error = %v, want errNoStaticBuild", err)
	}
	if !strings.Contains(err.Error(), "brew install ffmpeg") {
		t.Errorf("error should carry instructions: %v", err)
	}
}

// redirectClient sends every request to srv regardless of host
func redirectClient(srv *httptest.Server) *http.Client {
	client := srv.Client()
	base := client.Transport
	client.Transport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		r = r.Clone(r.Context())
		r.URL.Scheme = "http"
		r.URL.Host = strings.TrimPrefix(srv.URL, "http://")
		return base.RoundTrip(r)
	})
	return client
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
