package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/temirov/snapshot/internal/types"
)

// ErrInvalidText reports content that is not valid UTF-8 text.
var ErrInvalidText = errors.New("content is not valid UTF-8 text")

// ReadTextFile opens path, reads it fully and closes it before returning.
// Open, read and decode failures are carried in the result instead of being returned.
//
// #nosec G304
func ReadTextFile(path string) (result types.FileContent) {
	result.Path = path
	fileHandle, openError := os.Open(path)
	if openError != nil {
		result.Err = openError
		return result
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil && result.Err == nil {
			result.Err = closeError
			result.Content = EmptyString
		}
	}()

	fileBytes, readError := io.ReadAll(fileHandle)
	if readError != nil {
		result.Err = readError
		return result
	}
	if !utf8.Valid(fileBytes) {
		result.Err = fmt.Errorf("%w: %s", ErrInvalidText, firstInvalidByteDescription(fileBytes))
		return result
	}
	result.Content = string(fileBytes)
	return result
}

func firstInvalidByteDescription(data []byte) string {
	for offset := 0; offset < len(data); {
		decodedRune, width := utf8.DecodeRune(data[offset:])
		if decodedRune == utf8.RuneError && width <= 1 {
			return fmt.Sprintf("invalid byte 0x%02x at position %d", data[offset], offset)
		}
		offset += width
	}
	return "invalid byte sequence"
}
