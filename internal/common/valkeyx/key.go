// Package valkeyx 는 Redis/Valkey 클라이언트 공통 유틸리티를 제공한다.
// 키 생성, 연결, nil 체크, 그리고 저장소 어댑터(Adapter)를 포함한다.
package valkeyx

import (
	"strings"
)

// 키 생성 헬퍼 함수들

// BuildKey 는 prefix와 id를 결합하여 키를 생성한다.
// 형식: {prefix}:{id}
func BuildKey(prefix, id string) string {
	return JoinKey(prefix, id)
}

// BuildKey2 는 prefix와 두 개의 id를 결합하여 키를 생성한다.
// 형식: {prefix}:{id1}:{id2}
func BuildKey2(prefix, id1, id2 string) string {
	return JoinKey(prefix, id1, id2)
}

// BuildKey3 는 prefix와 세 개의 id를 결합하여 키를 생성한다.
// 형식: {prefix}:{id1}:{id2}:{id3}
func BuildKey3(prefix, id1, id2, id3 string) string {
	return JoinKey(prefix, id1, id2, id3)
}

// JoinKey: prefix 뒤에 공백을 제거한 세그먼트들을 ':' 로 이어 붙인다.
func JoinKey(prefix string, segments ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, seg := range segments {
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(seg))
	}
	return b.String()
}

// Pattern: prefix 아래 모든 키에 매칭되는 SCAN 패턴을 만든다. 형식: {prefix}:*
func Pattern(prefix string) string {
	return prefix + ":*"
}

// SplitKey: prefix 를 제거한 나머지 세그먼트를 반환한다. prefix 가 다르면 ok=false.
func SplitKey(key, prefix string) ([]string, bool) {
	rest, ok := strings.CutPrefix(key, prefix+":")
	if !ok || rest == "" {
		return nil, false
	}
	return strings.Split(rest, ":"), true
}
