package media

import (
	"errors"
	"fmt"
)

// Stage names the step of an upload that failed.
type Stage string

const (
	StageInit     Stage = "init"
	StageTransfer Stage = "transfer"
	StageConfirm  Stage = "confirm"
)

var (
	ErrInit     = errors.New("media init failed")
	ErrTransfer = errors.New("media transfer failed")
	ErrConfirm  = errors.New("media confirm failed")
)

// UploadError reports which step of an upload failed. PartNumber is set for
// multi-part transfer failures.
type UploadError struct {
	Stage      Stage
	PartNumber int
	Err        error
}

func (e *UploadError) Error() string {
	if e.PartNumber > 0 {
		return fmt.Sprintf("upload %s part %d: %v", e.Stage, e.PartNumber, e.Err)
	}
	return fmt.Sprintf("upload %s: %v", e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Is matches the stage sentinel.
func (e *UploadError) Is(target error) bool {
	switch target {
	case ErrInit:
		return e.Stage == StageInit
	case ErrTransfer:
		return e.Stage == StageTransfer
	case ErrConfirm:
		return e.Stage == StageConfirm
	}
	return false
}

// StageOf returns the failed step of err, if err is an upload failure.
func StageOf(err error) (Stage, bool) {
	var ue *UploadError
	if errors.As(err, &ue) {
		return ue.Stage, true
	}
	return "", false
}
