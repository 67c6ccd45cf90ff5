package valkeyx

import (
	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
)

// WrapStorageError: 저장소 관련 에러를 공통 타입으로 감싼다.
func WrapStorageError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return cerrors.StorageError{Operation: operation, Err: err}
}
