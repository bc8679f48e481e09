package frontmatter

import "errors"

var (
	// ErrMissingHeader indicates the first line is not the --- delimiter.
	ErrMissingHeader = errors.New("missing_header")
	// ErrUnterminatedHeader indicates no closing --- delimiter was found.
	ErrUnterminatedHeader = errors.New("unterminated_header")
	// ErrMissingTitle indicates neither title nor name was set.
	ErrMissingTitle = errors.New("missing_title")
	// ErrMissingDescription indicates the description was absent or empty.
	ErrMissingDescription = errors.New("missing_description")
	// ErrReadFailed wraps I/O errors reading a document.
	ErrReadFailed = errors.New("read_failed")
	// ErrWriteFailed wraps I/O errors writing a document.
	ErrWriteFailed = errors.New("write_failed")
)

var codes = []error{
	ErrMissingHeader,
	ErrUnterminatedHeader,
	ErrMissingTitle,
	ErrMissingDescription,
	ErrReadFailed,
	ErrWriteFailed,
}

// Code maps err to its stable diagnostic code, e.g. "missing_header".
// Errors outside this package map to "error"; nil maps to "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c) {
			return c.Error()
		}
	}
	return "error"
}
