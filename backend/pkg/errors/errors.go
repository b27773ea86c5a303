package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：文档已被其他写入者修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// Kind 错误分类，决定请求边界上的 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Error 带分类的业务错误
//
// Message 面向调用方，可直接写入响应；Err 为内部原因，只进日志。
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is 同类且同消息的错误视为相等，便于以哨兵错误比较
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// ── 构造函数 ──

func Validation(message string) *Error { return &Error{Kind: KindValidation, Message: message} }

func NotFound(message string) *Error { return &Error{Kind: KindNotFound, Message: message} }

func Conflict(message string) *Error { return &Error{Kind: KindConflict, Message: message} }

func Unauthorized(message string) *Error { return &Error{Kind: KindUnauthorized, Message: message} }

// Storage 包装持久化失败的底层原因
func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// Wrap 为哨兵错误附加底层原因，保留其分类与消息
func Wrap(sentinel *Error, err error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: err}
}

// WithMessage 以新消息细化哨兵错误，errors.Is 仍可匹配到哨兵
func WithMessage(sentinel *Error, message string) *Error {
	return &Error{Kind: sentinel.Kind, Message: message, Err: sentinel}
}

// KindOf 提取错误分类；非 *Error 一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf 提取面向调用方的错误消息
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
