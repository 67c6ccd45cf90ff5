package service

import "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"

// RankProgression: 다음 등급까지의 진행도. 최고 등급이면 NextRank=nil, Progress=1.
type RankProgression struct {
	CurrentRank model.Rank  `json:"currentRank"`
	NextRank    *model.Rank `json:"nextRank,omitempty"`
	Progress    float64     `json:"progress"`
}

// CalculateRankProgression: 다음 등급 조건(발견 수, 성공률) 각각의 달성 비율 중 작은 값을 진행도로 쓴다.
func CalculateRankProgression(profile model.PlayerProfile) RankProgression {
	current := model.RankFor(profile.TotalGuesses, profile.SuccessfulGuesses, profile.SuccessRate)
	if current == model.RankLegend {
		return RankProgression{CurrentRank: current, Progress: 1}
	}

	next := current + 1
	threshold, ok := model.ThresholdFor(next)
	if !ok {
		return RankProgression{CurrentRank: current, Progress: 1}
	}

	finds := ratio(float64(profile.SuccessfulGuesses), float64(threshold.MinTotalFinds))
	rate := ratio(profile.SuccessRate, threshold.MinSuccessRate)
	return RankProgression{CurrentRank: current, NextRank: &next, Progress: min(finds, rate)}
}

func ratio(value, target float64) float64 {
	if target <= 0 {
		return 1
	}
	return max(0, min(1, value/target))
}
