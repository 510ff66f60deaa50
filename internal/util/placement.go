package util

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EmptyName replaces names that sanitize to nothing.
const EmptyName = "_empty_"

var unsafeChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_",
	"/", "_", `\`, "_", "|", "_", "?", "_", "*", "_",
)

// SanitizeName replaces characters that are unsafe in file names with '_'
// and trims surrounding whitespace. The result is always a single path
// element.
func SanitizeName(s string) string {
	s = strings.TrimSpace(unsafeChars.Replace(s))
	switch s {
	case "":
		return EmptyName
	case ".", "..":
		return strings.Repeat("_", len(s))
	}
	return s
}

// SafeTailName keeps the last n characters of name and sanitizes them.
func SafeTailName(name string, n int) string {
	r := []rune(name)
	if n > 0 && len(r) > n {
		r = r[len(r)-n:]
	}
	return SanitizeName(string(r))
}

// UniqueDir creates base/name, or base/name_1, base/name_2, ... when taken,
// and returns the directory it created. Creation is atomic, so concurrent
// callers never share a directory.
func UniqueDir(base, name string) (string, error) {
	for i := 0; ; i++ {
		cand := name
		if i > 0 {
			cand = name + "_" + strconv.Itoa(i)
		}
		dir := filepath.Join(base, cand)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
}

// SplitExt splits a file name into stem and extension. A leading dot does
// not start an extension, so ".hidden" has none.
func SplitExt(name string) (stem, ext string) {
	trimmed := strings.TrimLeft(name, ".")
	lead := len(name) - len(trimmed)
	i := strings.LastIndexByte(trimmed, '.')
	if i <= 0 {
		return name, ""
	}
	return name[:lead+i], name[lead+i:]
}

// CopyUnique copies src into dir as "<prefix>_<base>". When that name is
// taken it tries "<prefix>_<stem>_1<ext>", "<prefix>_<stem>_2<ext>", ...
// Existing files are never overwritten. The source is left in place.
func CopyUnique(src, dir, prefix string) (string, error) {
	return placeUnique(src, dir, prefix, copyExclusive)
}

// MoveUnique moves src into dir under its own name, or "<stem>_1<ext>" and
// so on when the name is taken. Existing files are never overwritten.
func MoveUnique(src, dir string) (string, error) {
	return placeUnique(src, dir, "", moveExclusive)
}

func placeUnique(src, dir, prefix string, place func(src, dst string) error) (string, error) {
	base := filepath.Base(src)
	stem, ext := SplitExt(base)
	head := ""
	if prefix != "" {
		head = prefix + "_"
	}

	for i := 0; ; i++ {
		name := head + base
		if i > 0 {
			name = head + stem + "_" + strconv.Itoa(i) + ext
		}
		dst := filepath.Join(dir, name)
		err := place(src, dst)
		if err == nil {
			return dst, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
}

// moveExclusive renames src to dst through a hard link, which fails when dst
// exists. Filesystems without links, or a dst on another device, fall back
// to an exclusive copy.
func moveExclusive(src, dst string) error {
	err := os.Link(src, dst)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		if err := copyExclusive(src, dst); err != nil {
			return err
		}
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", src, err)
	}
	return nil
}

// copyExclusive copies src to dst, failing with fs.ErrExist when dst exists.
// Mode and modification time are carried over.
func copyExclusive(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source %s: %w", src, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("close %s: %w", dst, err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("set mode on %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("set times on %s: %w", dst, err)
	}
	return nil
}
