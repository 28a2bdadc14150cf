package errs

import (
	"errors"
	"fmt"
)

// Kind 客户端错误分类，调用方据此决定是否重试
type Kind int

const (
	KindUnknown Kind = iota
	FundingFailed
	AccountCreationFailed
	SubmissionFailed
	ConfirmationFailed
	MissingSigner
)

func (k Kind) String() string {
	switch k {
	case FundingFailed:
		return "FundingFailed"
	case AccountCreationFailed:
		return "AccountCreationFailed"
	case SubmissionFailed:
		return "SubmissionFailed"
	case ConfirmationFailed:
		return "ConfirmationFailed"
	case MissingSigner:
		return "MissingSigner"
	default:
		return "Unknown"
	}
}

// Error 带分类与底层原因的错误
type Error struct {
	Kind Kind
	Op   string // 出错的操作，例如 "create data account"
	Err  error
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按 Kind 匹配，errors.Is(err, &errs.Error{Kind: errs.SubmissionFailed}) 即可判断类别
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf 取错误链上第一个 *Error 的分类
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind 判断错误链上是否存在指定分类
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}
