package rewrite

import "errors"

var (
	ErrEmptyText     = errors.New("text to rewrite is required")
	ErrRewriteFailed = errors.New("rewrite request failed")
	ErrNoOutput      = errors.New("rewrite response contained no outputs")
)
