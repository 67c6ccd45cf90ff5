package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookupEnv: 공백을 제거한 환경 변수 값을 반환합니다. 비어 있으면 ok=false.
func lookupEnv(key string) (string, bool) {
	rawValue, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	rawValue = strings.TrimSpace(rawValue)
	return rawValue, rawValue != ""
}

// lookupFirstEnv: 여러 키 중 첫 번째로 값이 존재하는 키와 값을 반환합니다.
func lookupFirstEnv(keys []string) (string, string, bool) {
	for _, key := range keys {
		if rawValue, ok := lookupEnv(key); ok {
			return key, rawValue, true
		}
	}
	return "", "", false
}

func parseEnv[T any](keys []string, defaultValue T, kind string, parse func(string) (T, error)) (T, error) {
	key, rawValue, ok := lookupFirstEnv(keys)
	if !ok {
		return defaultValue, nil
	}
	value, err := parse(rawValue)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("invalid %s env %s=%q: %w", kind, key, rawValue, err)
	}
	return value, nil
}

func parseBool(rawValue string) (bool, error) {
	switch strings.ToLower(rawValue) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("not a bool")
	}
}

func parseInt64(rawValue string) (int64, error) {
	return strconv.ParseInt(rawValue, 10, 64)
}

func parseFloat64(rawValue string) (float64, error) {
	return strconv.ParseFloat(rawValue, 64)
}

func splitList(rawValue string) []string {
	parts := strings.FieldsFunc(rawValue, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// IntFromEnv: 환경 변수에서 정수 값을 읽어옵니다.
func IntFromEnv(key string, defaultValue int) (int, error) {
	return IntFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// Int64FromEnv: 환경 변수에서 64비트 정수 값을 읽어옵니다.
func Int64FromEnv(key string, defaultValue int64) (int64, error) {
	return Int64FromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// Float64FromEnv: 환경 변수에서 64비트 실수 값을 읽어옵니다.
func Float64FromEnv(key string, defaultValue float64) (float64, error) {
	return parseEnv([]string{key}, defaultValue, "float64", parseFloat64)
}

// DurationSecondsFromEnv: 환경 변수에서 초 단위 시간을 읽어 Duration으로 변환합니다.
func DurationSecondsFromEnv(key string, defaultSeconds int64) (time.Duration, error) {
	valueSeconds, err := Int64FromEnv(key, defaultSeconds)
	if err != nil {
		return 0, err
	}
	if valueSeconds < 0 {
		return 0, fmt.Errorf("invalid duration seconds env %s=%d", key, valueSeconds)
	}
	return time.Duration(valueSeconds) * time.Second, nil
}

// DurationMillisFromEnv: 환경 변수에서 밀리초 단위 시간을 읽어 Duration으로 변환합니다.
func DurationMillisFromEnv(key string, defaultMillis int64) (time.Duration, error) {
	valueMillis, err := Int64FromEnv(key, defaultMillis)
	if err != nil {
		return 0, err
	}
	if valueMillis < 0 {
		return 0, fmt.Errorf("invalid duration millis env %s=%d", key, valueMillis)
	}
	return time.Duration(valueMillis) * time.Millisecond, nil
}

// BoolFromEnv: 환경 변수에서 불리언 값을 읽어옵니다. (true/1/yes/y, false/0/no/n)
func BoolFromEnv(key string, defaultValue bool) (bool, error) {
	return BoolFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// StringFromEnv: 환경 변수에서 문자열 값을 읽어옵니다.
func StringFromEnv(key string, defaultValue string) string {
	return StringFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// StringListFromEnv: 환경 변수에서 구분자(공백, 콤마 등)로 분리된 문자열 목록을 읽어옵니다.
func StringListFromEnv(key string, defaultValue []string) []string {
	return StringListFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// StringFromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 것을 반환합니다.
func StringFromEnvFirstNonEmpty(keys []string, defaultValue string) string {
	if _, rawValue, ok := lookupFirstEnv(keys); ok {
		return rawValue
	}
	return defaultValue
}

// IntFromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 정수를 반환합니다.
func IntFromEnvFirstNonEmpty(keys []string, defaultValue int) (int, error) {
	return parseEnv(keys, defaultValue, "int", strconv.Atoi)
}

// Int64FromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 64비트 정수를 반환합니다.
func Int64FromEnvFirstNonEmpty(keys []string, defaultValue int64) (int64, error) {
	return parseEnv(keys, defaultValue, "int64", parseInt64)
}

// BoolFromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 불리언을 반환합니다.
func BoolFromEnvFirstNonEmpty(keys []string, defaultValue bool) (bool, error) {
	return parseEnv(keys, defaultValue, "bool", parseBool)
}

// StringListFromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 문자열 목록을 반환합니다.
func StringListFromEnvFirstNonEmpty(keys []string, defaultValue []string) []string {
	for _, key := range keys {
		rawValue, ok := lookupEnv(key)
		if !ok {
			continue
		}
		if items := splitList(rawValue); len(items) > 0 {
			return items
		}
	}
	return defaultValue
}
