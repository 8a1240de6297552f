package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"xorkevin.dev/forgeresult/result"
	"xorkevin.dev/kerrors"
	"xorkevin.dev/kfs"
)

const (
	outputFileMode = 0o644
	outputFileFlag = os.O_WRONLY | os.O_TRUNC | os.O_CREATE
)

type (
	pageFlags struct {
		offset int
		limit  int
		output string
	}

	nopWriteCloser struct {
		io.Writer
	}
)

func (w nopWriteCloser) Close() error {
	return nil
}

func openOutput(name string) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return nopWriteCloser{Writer: os.Stdout}, nil
	}
	f, err := kfs.OpenFile(kfs.DirFS("."), name, outputFileFlag, outputFileMode)
	if err != nil {
		return nil, kerrors.WithMsg(err, fmt.Sprintf("Failed to open output file %s", name))
	}
	return f, nil
}

// writePage writes the rows of res from offset as JSON lines, at most limit
// rows if limit is positive, and returns the number of rows written
func writePage(w io.Writer, res *result.Result, offset, limit int) (int, error) {
	if offset != res.Key() && !res.Seek(offset) {
		if !res.OffsetExists(offset) {
			return 0, nil
		}
		return 0, res.Err()
	}
	enc := json.NewEncoder(w)
	n := 0
	for ; res.Valid() && (limit <= 0 || n < limit); res.Next() {
		v, ok := res.Current()
		if !ok {
			return n, res.Err()
		}
		if err := enc.Encode(v); err != nil {
			return n, kerrors.WithMsg(err, fmt.Sprintf("Failed to write row %d", res.Key()))
		}
		n++
	}
	return n, nil
}

// writeOutput writes a page of res to the named output
func writeOutput(name string, res *result.Result, page pageFlags) (_ int, retErr error) {
	f, err := openOutput(name)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			retErr = errors.Join(retErr, kerrors.WithMsg(err, fmt.Sprintf("Failed to close output %s", name)))
		}
	}()
	w := bufio.NewWriter(f)
	n, err := writePage(w, res, page.offset, page.limit)
	if err != nil {
		return n, err
	}
	if err := w.Flush(); err != nil {
		return n, kerrors.WithMsg(err, fmt.Sprintf("Failed to write to output %s", name))
	}
	return n, nil
}
