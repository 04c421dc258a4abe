package pipeline

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// TemplateName is the file name of the page template inside the static dir.
// Files with this name are never copied to the public dir.
const TemplateName = "template.html"

// CopyStatic recursively copies src into dest and returns the number of
// files copied. A missing src is not an error.
func CopyStatic(src, dest string) (int, error) {
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		tracer().Infof("static dir %s does not exist, nothing to copy", src)
		return 0, nil
	}

	copied := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if d.Name() == TemplateName {
			tracer().Debugf("skipping %s", path)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
