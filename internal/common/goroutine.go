package common

import (
	"fmt"
)

// PanicError is a recovered panic converted into an error
type PanicError struct {
	Name  string
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Name, e.Value)
}

// RunRecovered calls fn and converts a panic into *PanicError, so a
// faulty job fails its own unit of work instead of the process
func RunRecovered(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Name: name, Value: r, Stack: stackTrace()}
		}
	}()
	return fn()
}
