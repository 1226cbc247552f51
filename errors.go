package respcodec

import (
	"strconv"
	"strings"
)

// maxErrorPath limits the length of the path shown by Error. Longer paths are shortened in the middle.
const maxErrorPath = 256

// DecodeError is returned for all failures while reading RESP data or storing it into a Go value.
//
// Offset is the byte offset of the failure in the input for errors detected by the Reader and -1 otherwise. Path
// describes the location of the failing value inside the target, e.g. `.Users[2]["name"]`, and is empty for errors
// at the top level.
type DecodeError struct {
	Offset int
	Path   string
	Err    error

	// path elements added while unwinding, innermost first
	rev []string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	msg := "respcodec: decode"
	if e.Offset >= 0 {
		msg += " at offset " + strconv.Itoa(e.Offset)
	}
	if e.Path != "" {
		msg += " " + shortenPath(e.Path)
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError is returned for all failures while converting a Go value into RESP.
type EncodeError struct {
	Path string
	Err  error

	rev []string
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	if e.Path == "" {
		return "respcodec: encode: " + e.Err.Error()
	}
	return "respcodec: encode " + shortenPath(e.Path) + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *EncodeError) Unwrap() error {
	return e.Err
}

func indexPath(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func keyPath(k string) string {
	return "[" + strconv.Quote(k) + "]"
}

func fieldPath(name string) string {
	return "." + name
}

func shortenPath(path string) string {
	if len(path) <= maxErrorPath {
		return path
	}
	return path[:maxErrorPath/2] + "..." + path[len(path)-maxErrorPath/2:]
}

func joinPath(rev []string, tail string) string {
	var sb strings.Builder
	for i := len(rev) - 1; i >= 0; i-- {
		sb.WriteString(rev[i])
	}
	sb.WriteString(tail)
	return sb.String()
}

// withDecodePath records elem as parent of the current path of err, wrapping err if needed. The path is only
// assembled by finishPath.
func withDecodePath(err error, elem string) error {
	de, ok := err.(*DecodeError)
	if !ok {
		de = &DecodeError{Offset: -1, Err: err}
	}
	if elem != "" {
		de.rev = append(de.rev, elem)
	}
	return de
}

func withEncodePath(err error, elem string) error {
	ee, ok := err.(*EncodeError)
	if !ok {
		ee = &EncodeError{Err: err}
	}
	if elem != "" {
		ee.rev = append(ee.rev, elem)
	}
	return ee
}

// finishPath builds the Path of err from the recorded elements. It must be called once before an error leaves the
// package.
func finishPath(err error) error {
	switch e := err.(type) {
	case *DecodeError:
		if len(e.rev) > 0 {
			e.Path = joinPath(e.rev, e.Path)
			e.rev = nil
		}
	case *EncodeError:
		if len(e.rev) > 0 {
			e.Path = joinPath(e.rev, e.Path)
			e.rev = nil
		}
	}
	return err
}
