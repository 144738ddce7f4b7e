package parser

import "fmt"

// NoValidTextsError is returned when a file yields no usable text.
type NoValidTextsError struct {
	MinLength int
}

func (e *NoValidTextsError) Error() string {
	return fmt.Sprintf("the file contains no valid texts (minimum length %d characters)", e.MinLength)
}

// CsvReadError wraps an I/O or decoding fault while reading an upload.
// Line is the last line read successfully before the fault.
type CsvReadError struct {
	Line int
	Err  error
}

func (e *CsvReadError) Error() string {
	return fmt.Sprintf("failed to read file after line %d: %v", e.Line, e.Err)
}

func (e *CsvReadError) Unwrap() error {
	return e.Err
}
