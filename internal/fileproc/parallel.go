// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/junovhs/slopchop/pkg/parser"
)

// FileError pins a processing failure to the file that caused it.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

// ErrorList gathers per-file failures from concurrent workers. The zero
// value is ready to use.
type ErrorList struct {
	mu    sync.Mutex
	items []FileError
}

// Append records a failure. Safe for concurrent use.
func (l *ErrorList) Append(path string, err error) {
	l.mu.Lock()
	l.items = append(l.items, FileError{Path: path, Err: err})
	l.mu.Unlock()
}

// Empty reports whether no failures were recorded.
func (l *ErrorList) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items) == 0
}

// All returns the recorded failures.
func (l *ErrorList) All() []FileError {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items
}

// Error summarizes the list as a single message.
func (l *ErrorList) Error() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch len(l.items) {
	case 0:
		return "no errors"
	case 1:
		return l.items[0].Error()
	default:
		return fmt.Sprintf("%d files failed (first: %v)", len(l.items), l.items[0])
	}
}

// ProgressFunc is invoked after each file completes. Must be non-blocking.
type ProgressFunc func(path string)

// MapFiles processes files in parallel with one worker per hardware thread.
// Each worker owns its parser; results keep the order of the input list.
func MapFiles[T any](files []string, fn func(*parser.Parser, string) (T, error)) ([]T, *ErrorList) {
	return MapFilesWithProgress(files, fn, nil)
}

// MapFilesWithProgress processes files in parallel with an optional progress
// callback. Failed files yield their zero value in the ordered result slice
// and their error in the returned list.
func MapFilesWithProgress[T any](files []string, fn func(*parser.Parser, string) (T, error), onProgress ProgressFunc) ([]T, *ErrorList) {
	if len(files) == 0 {
		return nil, nil
	}

	results := make([]T, len(files))
	errs := &ErrorList{}

	p := pool.New().WithMaxGoroutines(runtime.NumCPU())
	for i, path := range files {
		p.Go(func() {
			psr := parser.New()
			defer psr.Close()

			result, err := fn(psr, path)
			if err != nil {
				errs.Append(path, err)
			} else {
				results[i] = result
			}

			if onProgress != nil {
				onProgress(path)
			}
		})
	}
	p.Wait()

	if errs.Empty() {
		return results, nil
	}
	return results, errs
}

// ForEachFile processes files in parallel without a parser; use this for
// non-AST operations.
func ForEachFile[T any](files []string, fn func(string) (T, error)) ([]T, *ErrorList) {
	if len(files) == 0 {
		return nil, nil
	}

	results := make([]T, len(files))
	errs := &ErrorList{}

	p := pool.New().WithMaxGoroutines(runtime.NumCPU())
	for i, path := range files {
		p.Go(func() {
			result, err := fn(path)
			if err != nil {
				errs.Append(path, err)
				return
			}
			results[i] = result
		})
	}
	p.Wait()

	if errs.Empty() {
		return results, nil
	}
	return results, errs
}
