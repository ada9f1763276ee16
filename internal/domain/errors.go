package domain

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

var (
	ErrContentPolicy = errors.New("content policy rejection")
	ErrTransient     = errors.New("transient backend failure")
	ErrBackend       = errors.New("backend failure")
	ErrMalformedCall = errors.New("malformed structured call")
	ErrInvalidRating = errors.New("invalid rating")
	ErrSessionEnded  = errors.New("session ended")
	ErrEmptyResponse = errors.New("backend returned no choices")
)

// ErrorKind is the retry class of a backend failure.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindTransient
	KindContentPolicy
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindContentPolicy:
		return "content_policy"
	default:
		return "other"
	}
}

// Sentinel returns the error value callers match with errors.Is.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindTransient:
		return ErrTransient
	case KindContentPolicy:
		return ErrContentPolicy
	default:
		return ErrBackend
	}
}

// ClassifyError maps a backend error onto its retry class.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, ErrContentPolicy) {
		return KindContentPolicy
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTransient
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindTransient
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "timeout") {
		return KindTransient
	}
	return KindOther
}
