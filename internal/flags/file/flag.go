// Package file provides a pflag value for file paths that records whether the file exists.
package file

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
)

// Type is the type name of path flags.
const Type = "path"

// Flag holds a file path and the file info of the path at the time it was set.
type Flag struct {
	path *string
	fs.FileInfo
}

func (f *Flag) String() string {
	if f.path == nil {
		return ""
	}
	return *f.path
}

// Exists reports whether the path existed when it was set.
func (f *Flag) Exists() bool {
	return f.FileInfo != nil
}

// Open opens the file. A missing file is reported as [fs.ErrNotExist].
func (f *Flag) Open() (io.ReadCloser, error) {
	if !f.Exists() {
		return nil, &fs.PathError{Op: "open", Path: f.String(), Err: fs.ErrNotExist}
	}
	if f.IsDir() {
		return nil, fmt.Errorf("path %q is a directory", f.String())
	}
	return os.Open(f.String())
}

func (f *Flag) Set(s string) error {
	if f.path == nil {
		f.path = new(string)
	}
	*f.path = s
	f.FileInfo = nil
	if s == "" {
		return nil
	}
	info, err := os.Stat(s)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to stat path %q: %w", s, err)
	}
	f.FileInfo = info
	return nil
}

func (f *Flag) Type() string {
	return Type
}

// In returns a new flag for the path resolved against dir.
// Absolute paths and an empty dir keep the path as it is. The file is looked up again.
func (f *Flag) In(dir string) (*Flag, error) {
	path := f.String()
	if dir != "" && path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	resolved := &Flag{}
	if err := resolved.Set(path); err != nil {
		return nil, err
	}
	return resolved, nil
}

func Var(f *pflag.FlagSet, name string, value string, usage string) {
	VarP(f, name, "", value, usage)
}

func VarP(f *pflag.FlagSet, name, shorthand string, value string, usage string) {
	flag := &Flag{}
	_ = flag.Set(strings.Clone(value))
	f.VarP(flag, name, shorthand, usage)
}

func Get(f *pflag.FlagSet, name string) (*Flag, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return nil, fmt.Errorf("flag accessed but not defined: %s", name)
	}
	val, ok := flag.Value.(*Flag)
	if !ok {
		return nil, fmt.Errorf("trying to get %s value of flag of type %s", Type, flag.Value.Type())
	}
	return val, nil
}
