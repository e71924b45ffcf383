package ffmpeg

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/ulikunitz/xz"

	"github.com/piyusharama/transcript-generator/internal/adapters/fetch"
)

type archiveFormat int

const (
	format7z archiveFormat = iota
	formatTarXz
)

// release is a static ffmpeg build for one platform
type release struct {
	url    string
	format archiveFormat
}

var errNoStaticBuild = errors.New("no static ffmpeg build for this platform")

func (e *Extractor) release() (release, error) {
	switch e.goos {
	case "windows":
		return release{url: "https://www.gyan.dev/ffmpeg/builds/ffmpeg-release-essentials.7z", format: format7z}, nil
	case "linux":
		switch e.goarch {
		case "amd64":
			return release{url: "https://johnvansickle.com/ffmpeg/releases/ffmpeg-release-amd64-static.tar.xz", format: formatTarXz}, nil
		case "arm64":
			return release{url: "https://johnvansickle.com/ffmpeg/releases/ffmpeg-release-arm64-static.tar.xz", format: formatTarXz}, nil
		}
	}
	return release{}, errNoStaticBuild
}

// FFmpegInstructions returns manual install steps where no static build is offered
func (e *Extractor) FFmpegInstructions() string {
	if _, err := e.release(); err == nil {
		return ""
	}
	switch e.goos {
	case "darwin":
		return "Install ffmpeg with Homebrew:\n  brew install ffmpeg"
	case "linux":
		return "Install ffmpeg with your package manager, e.g.:\n  sudo apt install ffmpeg"
	default:
		return "Download ffmpeg from https://ffmpeg.org/download.html and put it on your PATH."
	}
}

// InstallFFmpeg downloads a static build and places the ffmpeg binary in the bin directory.
func (e *Extractor) InstallFFmpeg(ctx context.Context, progress func(downloaded, total int64)) error {
	rel, err := e.release()
	if err != nil {
		return fmt.Errorf("%w: %s", err, e.FFmpegInstructions())
	}

	if err := os.MkdirAll(e.binDir, 0755); err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "transcriptgen-ffmpeg-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, path.Base(rel.url))
	if err := fetch.ToFile(ctx, e.client, rel.url, archivePath, progress); err != nil {
		return err
	}

	destPath := filepath.Join(e.binDir, e.binaryName())
	switch rel.format {
	case format7z:
		err = extractFrom7z(archivePath, e.binaryName(), destPath)
	case formatTarXz:
		err = extractFromTarXz(archivePath, e.binaryName(), destPath)
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.ffmpegPath = destPath
	e.mu.Unlock()
	return nil
}

// extractFrom7z copies the first bin/<name> entry of a 7z archive to dest
func extractFrom7z(archivePath, name, dest string) error {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !matchesBinary(f.Name, name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		return writeExecutable(rc, dest)
	}
	return fmt.Errorf("%s not found in archive", name)
}

// extractFromTarXz copies the <name> entry of a .tar.xz archive to dest
func extractFromTarXz(archivePath, name, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	tr := tar.NewReader(xr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !matchesBinary(hdr.Name, name) {
			continue
		}
		return writeExecutable(tr, dest)
	}
	return fmt.Errorf("%s not found in archive", name)
}

// matchesBinary reports whether an archive entry is the ffmpeg binary itself,
// not a similarly named file such as ffmpeg.1 or ffprobe.
func matchesBinary(entry, name string) bool {
	entry = strings.ReplaceAll(entry, "\\", "/")
	return path.Base(entry) == name
}

func writeExecutable(r io.Reader, dest string) error {
	tmp := dest + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
