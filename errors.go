package bingo

import (
	"errors"
	"fmt"
	"maps"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 错误代码常量
const (
	// 系统级错误 (1000-1999)
	ErrCodeSystem          ErrorCode = "BINGO_1000"
	ErrCodeStoreConnection ErrorCode = "BINGO_1001"
	ErrCodeStoreTimeout    ErrorCode = "BINGO_1002"
	ErrCodeConfigInvalid   ErrorCode = "BINGO_1003"
	ErrCodeRandomSource    ErrorCode = "BINGO_1004"

	// 校验错误 (2000-2999)
	ErrCodeInvalidParameters   ErrorCode = "BINGO_2000"
	ErrCodeInvalidCard         ErrorCode = "BINGO_2001"
	ErrCodeInvalidBallNumber   ErrorCode = "BINGO_2002"
	ErrCodeDuplicateCall       ErrorCode = "BINGO_2003"
	ErrCodeDrawExhausted       ErrorCode = "BINGO_2004"
	ErrCodeDuplicateTicket     ErrorCode = "BINGO_2005"
	ErrCodeInvalidTicketRange  ErrorCode = "BINGO_2006"
	ErrCodeInvalidCount        ErrorCode = "BINGO_2007"
	ErrCodeInvalidProbability  ErrorCode = "BINGO_2008"
	ErrCodeInvalidPrizeTier    ErrorCode = "BINGO_2009"
	ErrCodeTicketUnavailable   ErrorCode = "BINGO_2010"
	ErrCodeNoTicketsSold       ErrorCode = "BINGO_2011"
	ErrCodePrizeAlreadyClaimed ErrorCode = "BINGO_2012"
	ErrCodeInvalidState        ErrorCode = "BINGO_2013"
	ErrCodeInvalidRange        ErrorCode = "BINGO_2014"
	ErrCodePrizeNotFound       ErrorCode = "BINGO_2015"

	// 状态相关错误 (3000-3999)
	ErrCodeStateNotFound         ErrorCode = "BINGO_3000"
	ErrCodeStateCorrupted        ErrorCode = "BINGO_3001"
	ErrCodeSerializationFailed   ErrorCode = "BINGO_3002"
	ErrCodeDeserializationFailed ErrorCode = "BINGO_3003"

	// 熔断相关错误 (5000-5999)
	ErrCodeCircuitBreakerOpen ErrorCode = "BINGO_5000"
)

// ErrorSeverity 错误严重程度
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "critical"
	SeverityHigh     ErrorSeverity = "high"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityLow      ErrorSeverity = "low"
)

// BingoError is the coded error returned by every operation of the package
type BingoError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Details    string         `json:"details,omitempty"`
	Severity   ErrorSeverity  `json:"severity"`
	Timestamp  time.Time      `json:"timestamp"`
	Operation  string         `json:"operation,omitempty"`
	StackTrace string         `json:"stack_trace,omitempty"`
	Cause      error          `json:"-"`
	Retryable  bool           `json:"retryable"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Error 实现 error 接口
func (e *BingoError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap 接口
func (e *BingoError) Unwrap() error { return e.Cause }

// Is matches any *BingoError carrying the same code
func (e *BingoError) Is(target error) bool {
	if t, ok := target.(*BingoError); ok {
		return e.Code == t.Code
	}
	return false
}

// clone copies e so the predefined errors below are never mutated
func (e *BingoError) clone() *BingoError {
	c := *e
	c.Timestamp = time.Now()
	if e.Metadata != nil {
		c.Metadata = maps.Clone(e.Metadata)
	}
	return &c
}

// WithCause 添加原因错误
func (e *BingoError) WithCause(cause error) *BingoError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetails 添加详细信息
func (e *BingoError) WithDetails(details string) *BingoError {
	c := e.clone()
	c.Details = details
	return c
}

// WithDetailsf is WithDetails with a format string
func (e *BingoError) WithDetailsf(format string, args ...any) *BingoError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithOperation 添加操作信息
func (e *BingoError) WithOperation(operation string) *BingoError {
	c := e.clone()
	c.Operation = operation
	return c
}

// WithMetadata 添加元数据
func (e *BingoError) WithMetadata(key string, value any) *BingoError {
	c := e.clone()
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	c.Metadata[key] = value
	return c
}

// WithStackTrace 添加堆栈跟踪
func (e *BingoError) WithStackTrace() *BingoError {
	c := e.clone()
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	c.StackTrace = string(buf[:n])
	return c
}

// NewError 创建新的错误
func NewError(code ErrorCode, message string) *BingoError {
	return &BingoError{
		Code:      code,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
	}
}

// NewRetryableError 创建可重试的错误
func NewRetryableError(code ErrorCode, message string) *BingoError {
	err := NewError(code, message)
	err.Retryable = true
	return err
}

// NewCriticalError 创建严重错误
func NewCriticalError(code ErrorCode, message string) *BingoError {
	err := NewError(code, message)
	err.Severity = SeverityCritical
	return err
}

// 预定义的错误实例
var (
	// 系统级错误
	ErrSystemError           = NewCriticalError(ErrCodeSystem, "system error occurred")
	ErrStoreConnectionFailed = NewRetryableError(ErrCodeStoreConnection, "state store connection failed")
	ErrStoreTimeout          = NewRetryableError(ErrCodeStoreTimeout, "state store operation timeout")
	ErrConfigInvalid         = NewCriticalError(ErrCodeConfigInvalid, "configuration is invalid")
	ErrRandomSourceFailed    = NewCriticalError(ErrCodeRandomSource, "random source failed")

	// 校验错误
	ErrInvalidParameters   = NewError(ErrCodeInvalidParameters, "invalid parameters provided")
	ErrInvalidCard         = NewError(ErrCodeInvalidCard, "malformed bingo card")
	ErrInvalidBallNumber   = NewError(ErrCodeInvalidBallNumber, "ball number must be between 1 and 75")
	ErrDuplicateCall       = NewError(ErrCodeDuplicateCall, "number has already been called")
	ErrDrawExhausted       = NewError(ErrCodeDrawExhausted, "all 75 numbers have been called")
	ErrDuplicateTicket     = NewError(ErrCodeDuplicateTicket, "ticket pool contains duplicate numbers")
	ErrInvalidTicketRange  = NewError(ErrCodeInvalidTicketRange, "invalid ticket range: min must not exceed max and the pool is capped")
	ErrInvalidCount        = NewError(ErrCodeInvalidCount, "invalid count: must be greater than 0")
	ErrInvalidProbability  = NewError(ErrCodeInvalidProbability, "invalid probability: must be within [0, 1] and sum to at most 1")
	ErrInvalidPrizeTier    = NewError(ErrCodeInvalidPrizeTier, "invalid prize tier configuration")
	ErrTicketUnavailable   = NewError(ErrCodeTicketUnavailable, "ticket number is not available")
	ErrNoTicketsSold       = NewError(ErrCodeNoTicketsSold, "no tickets have been sold")
	ErrPrizeAlreadyClaimed = NewError(ErrCodePrizeAlreadyClaimed, "instant prize already claimed")
	ErrPrizeNotFound       = NewError(ErrCodePrizeNotFound, "instant prize not found")
	ErrInvalidState        = NewError(ErrCodeInvalidState, "operation not allowed in current state")
	ErrInvalidRange        = NewError(ErrCodeInvalidRange, "invalid range: min must be less than or equal to max")

	// 状态相关错误
	ErrStateNotFound         = NewError(ErrCodeStateNotFound, "state not found")
	ErrStateCorrupted        = NewError(ErrCodeStateCorrupted, "state data is corrupted")
	ErrSerializationFailed   = NewError(ErrCodeSerializationFailed, "serialization failed")
	ErrDeserializationFailed = NewError(ErrCodeDeserializationFailed, "deserialization failed")

	// 熔断相关错误
	ErrCircuitBreakerOpen = NewRetryableError(ErrCodeCircuitBreakerOpen, "circuit breaker is open")
)

var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"timeout",
	"network is unreachable",
	"temporary failure",
	"server closed",
	"broken pipe",
	"i/o timeout",
	"dial tcp",
	"read tcp",
	"write tcp",
	"connection timed out",
	"no route to host",
	"host is down",
	"connection aborted",
	"socket is not connected",
	"operation timed out",
	"redis: connection pool timeout",
	"redis: client is closed",
	"context deadline exceeded",
}

// IsRetryableError 检查是否为可重试错误
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var be *BingoError
	if errors.As(err, &be) {
		return be.Retryable
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
