package symenc

import (
	"errors"
	"strconv"
)

// Error is a developer friendly error wrapper that speaks encryption language.
// Its base error contains more technical details,
// and it can be enriched with meta-data e.g namespace and cipher version.
type Error struct {
	msg, namespace string
	version        int
	// Err is the base err
	Err error
}

func newErr(msg string) Error {
	return Error{
		msg: msg,
	}
}

func IsError(err error) (bool, *Error) {
	terr := Error{}
	if ok := errors.As(err, &terr); ok {
		return true, &terr
	}
	return false, nil
}

func (e Error) Message() string {
	return e.msg
}

func (e Error) Namespace() string {
	if e.namespace == "" {
		if err, ok := e.Err.(Error); ok {
			return err.Namespace()
		}
	}
	return e.namespace
}

func (e Error) Version() int {
	if e.version == 0 {
		if err, ok := e.Err.(Error); ok {
			return err.Version()
		}
	}
	return e.version
}

func (e Error) withNamespace(nspace string) Error {
	e.namespace = nspace
	return e
}

func (e Error) withVersion(v int) Error {
	e.version = v
	return e
}

func (e Error) withBase(err error) Error {
	e.Err = err
	return e
}

func (e Error) Error() string {
	str := "" + e.msg
	if n := e.Namespace(); n != "" {
		str += " [ns:'" + n + "']"
	}

	if v := e.Version(); v != 0 {
		str += " [v:'" + strconv.Itoa(v) + "']"
	}

	if e.Err != nil {
		str += ": " + e.Err.Error()
	}

	return str
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) Is(err error) bool {
	if perr, ok := err.(Error); ok {
		return e.msg == perr.msg
	}

	return false
}
