package service

import "time"

// Clock: 현재 시각 공급자. 테스트에서 고정 시각을 주입한다.
type Clock func() time.Time

func (c Clock) nowMillis() int64 {
	if c == nil {
		return time.Now().UnixMilli()
	}
	return c().UnixMilli()
}
