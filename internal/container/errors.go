package container

import "fmt"

// Stage names the decoding step that failed.
type Stage string

const (
	StageJSON    Stage = "json"
	StageBase64  Stage = "base64"
	StageInflate Stage = "inflate"
)

// DecodeError reports a whole-file decoding failure. No records are returned
// alongside it.
type DecodeError struct {
	Stage Stage
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("container %s decode failed: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
