// Package snapshot caches the token list of a translation unit on disk so
// that editors can offer completion without rebuilding the session.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"snex/internal/namespace"
)

// SchemaVersion is bumped whenever File changes shape.
const SchemaVersion uint16 = 1

// File is the on-disk payload.
type File struct {
	Schema  uint16            `msgpack:"schema"`
	Source  string            `msgpack:"source"`
	Created time.Time         `msgpack:"created"`
	Tokens  []namespace.Token `msgpack:"tokens"`
}

// SchemaError reports a snapshot written by another version.
type SchemaError struct {
	Path string
	Got  uint16
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("snapshot %s: schema %d, want %d", e.Path, e.Got, SchemaVersion)
}

// Save writes tokens for source to path. The file is replaced atomically.
func Save(path, source string, tokens []namespace.Token) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	payload := &File{
		Schema:  SchemaVersion,
		Source:  source,
		Created: time.Now().UTC(),
		Tokens:  tokens,
	}
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Load reads the snapshot at path. A missing file yields (nil, false, nil).
func Load(path string) (*File, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var out File
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, err
	}
	if out.Schema != SchemaVersion {
		return nil, false, &SchemaError{Path: path, Got: out.Schema}
	}
	return &out, true, nil
}
