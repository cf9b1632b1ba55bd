package audio

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/blaubaer/stfu/pkg/common"
)

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrDeviceUnavailable  = errors.New("device unavailable")
	ErrUnknownAcquisition = errors.New("unknown acquisition failure")
)

// AcquisitionError is returned by everything which acquires the microphone.
// Kind is always one of ErrPermissionDenied, ErrDeviceUnavailable or
// ErrUnknownAcquisition.
type AcquisitionError struct {
	Kind    error
	Cause   error
	Holders Holders
}

func (this *AcquisitionError) Error() string {
	var sb strings.Builder
	sb.WriteString("cannot acquire microphone: ")
	sb.WriteString(this.Kind.Error())
	if this.Cause != nil && this.Cause != this.Kind {
		sb.WriteString(": ")
		sb.WriteString(this.Cause.Error())
	}
	return sb.String()
}

func (this *AcquisitionError) Unwrap() []error {
	if this.Cause == nil {
		return []error{this.Kind}
	}
	return []error{this.Kind, this.Cause}
}

// Message returns a short text which can be presented to the user as it is.
func (this *AcquisitionError) Message() string {
	switch this.Kind {
	case ErrPermissionDenied:
		return "Microphone access was denied"
	case ErrDeviceUnavailable:
		if this.Holders.HasContent() {
			return "Microphone is busy (used by " + this.Holders.String() + ")"
		}
		return "No usable microphone found"
	default:
		return "Failed to access microphone"
	}
}

// NewAcquisitionError wraps cause into an AcquisitionError of the given kind.
func NewAcquisitionError(kind, cause error) *AcquisitionError {
	return &AcquisitionError{
		Kind:  kind,
		Cause: cause,
	}
}

// Classify ensures that err is an *AcquisitionError. Errors which are not
// recognized end up as ErrUnknownAcquisition.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsAcquisitionError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, fs.ErrPermission):
		return NewAcquisitionError(ErrPermissionDenied, err)
	case errors.Is(err, ErrDeviceUnavailable), errors.Is(err, fs.ErrNotExist):
		return NewAcquisitionError(ErrDeviceUnavailable, err)
	default:
		return NewAcquisitionError(ErrUnknownAcquisition, err)
	}
}

func AsAcquisitionError(err error) (*AcquisitionError, bool) {
	return common.AsError[*AcquisitionError](err)
}

// Message returns a user facing text for any error of the acquisition.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if ae, ok := AsAcquisitionError(Classify(err)); ok {
		return ae.Message()
	}
	return "Failed to access microphone"
}
