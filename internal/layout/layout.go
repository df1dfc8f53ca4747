// Package layout decides where packaged files go and places them there.
//
// Every root gets its own directory:
//
//	<root>/<platform>/<profile>/<package>/<kind>/<target>
//
// with a binary slot for cross-linked images and a library slot for host
// dynamic libraries.
package layout

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/pdbuild/internal/model"
)

const (
	DefaultBinaryName  = "pdex.elf"
	DefaultLibraryName = "pdex"
)

// ErrNoRoot is returned by Validate for a layout without a root directory.
var ErrNoRoot = errors.New("layout root is not configured")

// Layout is the package layout configuration.
type Layout struct {
	Root        string
	BinaryName  string
	LibraryName string
}

// Validate checks that the layout can place files.
func (l Layout) Validate() error {
	if l.Root == "" {
		return ErrNoRoot
	}
	return nil
}

// Dir is the layout directory of one root. The kind segment keeps a lib and
// a bin sharing the crate name apart.
func (l Layout) Dir(u model.Unit, profile string) string {
	return filepath.Join(l.Root, u.Platform.ShortName(), profile, u.PackageName(), kindSegment(u.Target), u.Target.Name)
}

func kindSegment(t model.Target) string {
	if len(t.Kind) == 0 {
		return "unknown"
	}
	return strings.Join(t.Kind, "-")
}

// BinarySlot is the path of the cross-linked image of u.
func (l Layout) BinarySlot(u model.Unit, profile string) string {
	name := l.BinaryName
	if name == "" {
		name = DefaultBinaryName
	}
	return filepath.Join(l.Dir(u, profile), name)
}

// LibrarySlot is the path of the dynamic library of u. ext keeps the
// extension of the compiled file, leading dot included.
func (l Layout) LibrarySlot(u model.Unit, profile, ext string) string {
	name := l.LibraryName
	if name == "" {
		name = DefaultLibraryName
	}
	return filepath.Join(l.Dir(u, profile), name+ext)
}

// Method tells how LinkOrCopy placed a file.
type Method string

const (
	MethodLink Method = "link"
	MethodCopy Method = "copy"
)

// LinkOrCopy places src at dst. A hard link is tried first and verified
// to point at the same file; when linking fails or cannot be verified the
// file is copied and the copy verified by size. A stale dst is replaced.
func LinkOrCopy(src, dst string) (Method, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("source %s: %w", src, err)
	}
	if !srcInfo.Mode().IsRegular() {
		return "", fmt.Errorf("source %s is not a regular file", src)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	if err := removeStale(dst); err != nil {
		return "", err
	}

	if err := os.Link(src, dst); err == nil {
		if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
			return MethodLink, nil
		}
		if err := removeStale(dst); err != nil {
			return "", err
		}
	}

	if err := copyFile(src, dst, srcInfo.Mode().Perm()); err != nil {
		return "", err
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return "", fmt.Errorf("verifying %s: %w", dst, err)
	}
	if dstInfo.Size() != srcInfo.Size() {
		return "", fmt.Errorf("verifying %s: size %d, expected %d", dst, dstInfo.Size(), srcInfo.Size())
	}
	return MethodCopy, nil
}

func removeStale(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale %s: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return nil
}
