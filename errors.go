package layerfs

import (
	"errors"

	"github.com/mwantia/layerfs/data"
)

// wrap annotates err with op and path. Errors that already carry an
// operation, such as resolver failures, are returned unchanged.
func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var pe *data.PathError
	if errors.As(err, &pe) {
		if pe.Op == "" {
			return &data.PathError{Op: op, Path: path, Code: pe.Code, Err: pe.Err}
		}
		return err
	}

	var code data.Errno
	if errors.As(err, &code) {
		return data.NewPathError(code, op, path)
	}
	return &data.PathError{Op: op, Path: path, Code: data.EIO, Err: err}
}
