package model

import (
	"fmt"
	"strings"
)

// Rank: 플레이어 등급 (낮음 → 높음 순서의 정수 열거형)
type Rank int

// RankRookie 등: 등급 상수 (값 순서 = 등급 순서)
const (
	RankRookie Rank = iota
	RankSeeker
	RankTracker
	RankDetective
	RankHawkeye
	RankLegend
)

var rankNames = [...]string{
	RankRookie:    "rookie",
	RankSeeker:    "seeker",
	RankTracker:   "tracker",
	RankDetective: "detective",
	RankHawkeye:   "hawkeye",
	RankLegend:    "legend",
}

// RankThreshold: 등급 진입 조건. 두 조건을 모두 만족해야 한다.
type RankThreshold struct {
	Rank           Rank
	MinTotalFinds  int
	MinSuccessRate float64
}

// RankThresholds: 낮은 등급부터 정렬된 등급 조건표
var RankThresholds = []RankThreshold{
	{Rank: RankRookie, MinTotalFinds: 0, MinSuccessRate: 0},
	{Rank: RankSeeker, MinTotalFinds: 5, MinSuccessRate: 0.25},
	{Rank: RankTracker, MinTotalFinds: 15, MinSuccessRate: 0.35},
	{Rank: RankDetective, MinTotalFinds: 40, MinSuccessRate: 0.45},
	{Rank: RankHawkeye, MinTotalFinds: 100, MinSuccessRate: 0.55},
	{Rank: RankLegend, MinTotalFinds: 250, MinSuccessRate: 0.65},
}

// String: 등급 이름
func (r Rank) String() string {
	if !r.Valid() {
		return fmt.Sprintf("rank(%d)", int(r))
	}
	return rankNames[r]
}

// Valid: 정의된 등급인지 확인한다.
func (r Rank) Valid() bool {
	return r >= RankRookie && r <= RankLegend
}

// MarshalText: JSON 에는 등급 이름으로 기록한다.
func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid rank: %d", int(r))
	}
	return []byte(rankNames[r]), nil
}

// UnmarshalText: 등급 이름을 파싱한다. (대소문자 무시)
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRank: 등급 이름 → Rank
func ParseRank(raw string) (Rank, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for i, candidate := range rankNames {
		if candidate == name {
			return Rank(i), nil
		}
	}
	return RankRookie, fmt.Errorf("unknown rank: %q", raw)
}

// ThresholdFor: 등급의 진입 조건을 반환한다.
func ThresholdFor(r Rank) (RankThreshold, bool) {
	for _, t := range RankThresholds {
		if t.Rank == r {
			return t, true
		}
	}
	return RankThreshold{}, false
}

// RankFor: 누적 통계로 만족하는 가장 높은 등급을 계산하는 순수 함수.
// successful 이 minTotalFinds 와 비교되는 발견 횟수다.
func RankFor(total, successful int, rate float64) Rank {
	if total <= 0 {
		return RankRookie
	}
	for i := len(RankThresholds) - 1; i >= 0; i-- {
		t := RankThresholds[i]
		if successful >= t.MinTotalFinds && rate >= t.MinSuccessRate {
			return t.Rank
		}
	}
	return RankRookie
}

// SuccessRate: successful/total 정확한 비율 (total 이 0 이면 0)
func SuccessRate(total, successful int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(successful) / float64(total)
}
