package oioerror

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	OIO_UNEXPECTED      = "OIOU"
	OIO_VALIDATION      = "OIOV"
	OIO_PRECONDITION    = "OIOP"
	OIO_NOT_IMPLEMENTED = "OION"
	OIO_BACKEND         = "OIOB"
	OIO_PROTOCOL        = "OIOR"
	OIO_ORPHAN_CHUNK    = "OIOO"
)

var existingErrorCodeMap = map[string]string{
	OIO_VALIDATION:      "invalid shard ranges",
	OIO_PRECONDITION:    "precondition failed",
	OIO_NOT_IMPLEMENTED: "not implemented",
	OIO_BACKEND:         "backend error",
	OIO_PROTOCOL:        "protocol error",
	OIO_ORPHAN_CHUNK:    "orphan chunk",
}

func GetMessageByCode(errorCode string) string {
	rep, ok := existingErrorCodeMap[errorCode]
	if ok {
		return rep
	}
	return "Unexpected error"
}

var _ error = &OioError{}

type OioError struct {
	Err error

	ErrorCode string
}

func New(errorCode string, errorMsg string) *OioError {
	return &OioError{
		Err:       errors.New(errorMsg),
		ErrorCode: errorCode,
	}
}

func Newf(errorCode string, format string, a ...any) *OioError {
	return &OioError{
		Err:       fmt.Errorf(format, a...),
		ErrorCode: errorCode,
	}
}

func (er *OioError) Error() string {
	return fmt.Sprintf("Code: %s. Name: %s. Description: %s.",
		er.ErrorCode, GetMessageByCode(er.ErrorCode), er.Err)
}

func (er *OioError) Unwrap() error {
	return er.Err
}

// IsCode reports whether err carries a coded error with the given code.
func IsCode(err error, code string) bool {
	var oe *OioError
	if errors.As(err, &oe) {
		return oe.ErrorCode == code
	}
	var be *BackendError
	if errors.As(err, &be) {
		return code == OIO_BACKEND
	}
	return false
}

// IsPrecondition reports whether err rejected an operation because of the
// current state of the container, before any change was made.
func IsPrecondition(err error) bool {
	return IsCode(err, OIO_PRECONDITION) || IsCode(err, OIO_NOT_IMPLEMENTED)
}

// BackendError is returned when the control plane answers with a status
// other than the documented success status. Body is kept verbatim.
type BackendError struct {
	StatusCode int
	Body       []byte

	// Decoded from the body when it is the proxy's JSON error document.
	Status  int
	Message string
}

var _ error = &BackendError{}

func NewBackendError(statusCode int, body []byte) *BackendError {
	be := &BackendError{
		StatusCode: statusCode,
		Body:       body,
	}
	var doc struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if len(body) > 0 && json.Unmarshal(body, &doc) == nil {
		be.Status = doc.Status
		be.Message = doc.Message
	}
	return be
}

func (be *BackendError) Error() string {
	if be.Message != "" {
		return fmt.Sprintf("Code: %s. Name: %s. Description: http %d: %s (backend status %d).",
			OIO_BACKEND, GetMessageByCode(OIO_BACKEND), be.StatusCode, be.Message, be.Status)
	}
	return fmt.Sprintf("Code: %s. Name: %s. Description: http %d: %s.",
		OIO_BACKEND, GetMessageByCode(OIO_BACKEND), be.StatusCode, string(be.Body))
}
