package drpzip

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// A .drp project is a zip archive holding project.xml plus a SeqContainer
// directory of timeline documents.

var (
	ErrInvalidStructure = errors.New("archive is missing project.xml or SeqContainer")
	ErrUnsafeArchive    = errors.New("archive contains an unsafe entry path")
	ErrTooLarge         = errors.New("archive exceeds the extracted size limit")
)

const defaultMaxExtracted = 200 << 20

type Adapter struct {
	maxExtracted int64
}

func New() *Adapter { return &Adapter{maxExtracted: defaultMaxExtracted} }

// NewWithLimit caps the total extracted size; limit <= 0 uses the default.
func NewWithLimit(limit int64) *Adapter {
	if limit <= 0 {
		limit = defaultMaxExtracted
	}
	return &Adapter{maxExtracted: limit}
}

func (a *Adapter) Unpack(ctx context.Context, archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	var total int64
	for _, f := range r.File {
		if !filepath.IsLocal(filepath.FromSlash(f.Name)) {
			return fmt.Errorf("%w: %q", ErrUnsafeArchive, f.Name)
		}
		total += int64(f.UncompressedSize64)
	}
	if total > a.maxExtracted {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, total)
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractOne(f, destDir); err != nil {
			return err
		}
	}
	return verifyStructure(destDir)
}

func extractOne(f *zip.File, destDir string) error {
	target := filepath.Join(destDir, filepath.FromSlash(f.Name))
	if strings.HasSuffix(f.Name, "/") {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %q: %w", f.Name, err)
	}
	defer rc.Close()
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %q: %w", f.Name, err)
	}
	return out.Close()
}

func verifyStructure(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, "project.xml")); err != nil {
		return ErrInvalidStructure
	}
	info, err := os.Stat(filepath.Join(dir, "SeqContainer"))
	if err != nil || !info.IsDir() {
		return ErrInvalidStructure
	}
	return nil
}

// Repack zips srcDir into archivePath. It writes a temp file first and
// renames it into place so a failed repack never leaves a truncated output.
func (a *Adapter) Repack(ctx context.Context, srcDir, archivePath string) error {
	tmp := archivePath + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
	if err == nil {
		err = zw.Close()
	} else {
		zw.Close()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("repack %q: %w", archivePath, err)
	}
	return os.Rename(tmp, archivePath)
}

// OutputName builds the sibling filename for a processed project, e.g.
// "My Project (J cuts added).drp".
func OutputName(inputPath, mode string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	switch strings.ToUpper(mode) {
	case "J":
		return stem + " (J cuts added).drp"
	case "L":
		return stem + " (L cuts added).drp"
	}
	return stem + " (modified).drp"
}
