package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// DB失敗は「説明: 元のエラー」で500
func dbError(desc string, err error) error {
	if he, ok := AsHTTPError(err); ok {
		return he
	}
	return NewHTTPError(http.StatusInternalServerError, desc+": "+err.Error())
}
