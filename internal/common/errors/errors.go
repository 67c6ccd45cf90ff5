// Package errors: 숨바꼭질 저장소 서비스 전체에서 공용으로 사용되는 에러 타입들을 정의한다.
// 저장소(Valkey) 장애, 입력 검증 실패, 레코드 부재, 권한 부족을 구분한다.
package errors

import (
	"errors"
	"fmt"
)

// StorageError: 키-값 저장소 작업을 수행하는 도중 발생한 에러 (일시적, 재시도 가능)
type StorageError struct {
	Operation string
	Err       error
}

func (e StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage error operation=%s", e.Operation)
	}
	return fmt.Sprintf("storage error operation=%s: %v", e.Operation, e.Err)
}

func (e StorageError) Unwrap() error { return e.Err }

// ValidationError: 입력 형식/범위가 잘못되었을 때 발생하는 에러 (항상 호출자 책임)
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed field=%s: %s", e.Field, e.Reason)
}

// NotFoundError: 요청한 레코드가 존재하지 않을 때 발생하는 에러
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s not found id=%s", e.Entity, e.ID)
}

// AuthorizationError: 호출자 식별자가 요청한 레코드에 대한 권한이 없을 때 발생하는 에러
type AuthorizationError struct {
	UserID string
	Reason string
}

func (e AuthorizationError) Error() string {
	msg := "access denied"
	if e.Reason != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Reason)
	}
	if e.UserID != "" {
		msg = fmt.Sprintf("%s user=%s", msg, e.UserID)
	}
	return msg
}

// expectedUserBehaviorTypes: 사용자의 정상적인 패턴 내 실수로 간주되는 에러 타입들
var expectedUserBehaviorTypes = []func() any{
	func() any { return new(ValidationError) },
	func() any { return new(NotFoundError) },
	func() any { return new(AuthorizationError) },
}

// IsExpectedUserBehavior: 에러가 사용자의 정상적인(예상된) 패턴 내의 실수인지 확인한다.
// (로그 레벨을 낮추는 용도)
func IsExpectedUserBehavior(err error) bool {
	if err == nil {
		return false
	}
	for _, targetFn := range expectedUserBehaviorTypes {
		if errors.As(err, targetFn()) {
			return true
		}
	}
	return false
}

// IsStorage: 에러 체인에 StorageError가 포함되어 있는지 확인한다.
func IsStorage(err error) bool {
	var target StorageError
	return errors.As(err, &target)
}

// IsValidation: 에러 체인에 ValidationError가 포함되어 있는지 확인한다.
func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

// IsNotFound 는 에러 체인에 NotFoundError가 포함되어 있는지 확인한다.
func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

// IsAuthorization 는 에러 체인에 AuthorizationError가 포함되어 있는지 확인한다.
func IsAuthorization(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}
