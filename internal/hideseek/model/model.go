// Package model: 숨바꼭질 게임 세션/추측/플레이어 레코드 정의.
// JSON 필드명은 저장소 레코드의 와이어 계약이다.
package model

// HidingSpot: 숨긴 오브젝트와 정규화 좌표 ([0,1]²)
type HidingSpot struct {
	ObjectKey string  `json:"objectKey" validate:"required,objectkey"`
	RelX      float64 `json:"relX" validate:"gte=0,lte=1"`
	RelY      float64 `json:"relY" validate:"gte=0,lte=1"`
}

// GameSession: 숨바꼭질 챌린지 1건 (TTL 30일)
type GameSession struct {
	GameID     string     `json:"gameId" validate:"required,keysafe,max=128"`
	Creator    string     `json:"creator" validate:"required,keysafe,max=128"`
	MapKey     string     `json:"mapKey" validate:"required,mapkey"`
	HidingSpot HidingSpot `json:"hidingSpot"`
	CreatedAt  int64      `json:"createdAt" validate:"gte=0"`
	IsActive   bool       `json:"isActive"`
	PostID     string     `json:"postId,omitempty" validate:"omitempty,keysafe,max=256"`
	PostURL    string     `json:"postUrl,omitempty" validate:"omitempty,max=2048"`
}

// GuessData: 제출된 추측 1건. 저장 후 변경되지 않는다.
type GuessData struct {
	GameID    string  `json:"gameId" validate:"required,keysafe,max=128"`
	UserID    string  `json:"userId" validate:"required,keysafe,max=128"`
	Username  string  `json:"username" validate:"max=128,nfc"`
	ObjectKey string  `json:"objectKey" validate:"required,objectkey"`
	RelX      float64 `json:"relX" validate:"gte=0,lte=1"`
	RelY      float64 `json:"relY" validate:"gte=0,lte=1"`
	Timestamp int64   `json:"timestamp" validate:"gte=0"`
	Distance  float64 `json:"distance" validate:"gte=0"`
	IsCorrect bool    `json:"isCorrect"`
}

// GuessStatistics: 게임별 추측 집계 (저장하지 않고 조회 시마다 재계산)
type GuessStatistics struct {
	TotalGuesses    int     `json:"totalGuesses"`
	CorrectGuesses  int     `json:"correctGuesses"`
	UniqueGuessers  int     `json:"uniqueGuessers"`
	AverageDistance float64 `json:"averageDistance"`
}

// PlayerProfile: 플레이어 누적 통계. 유일하게 장기간 변경되는 레코드다. (TTL 90일, 쓰기마다 갱신)
type PlayerProfile struct {
	UserID            string  `json:"userId" validate:"required,keysafe,max=128"`
	Username          string  `json:"username" validate:"max=128,nfc"`
	Rank              Rank    `json:"rank"`
	TotalGuesses      int     `json:"totalGuesses" validate:"gte=0"`
	SuccessfulGuesses int     `json:"successfulGuesses" validate:"gte=0"`
	SuccessRate       float64 `json:"successRate" validate:"gte=0,lte=1"`
	JoinedAt          int64   `json:"joinedAt" validate:"gte=0"`
	LastActive        int64   `json:"lastActive" validate:"gte=0"`
}

// BBox: 맵 오브젝트의 정규화 좌표 경계 상자
type BBox struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Contains: 좌표가 경계 상자 안에 있는지 확인한다. (경계 포함)
func (b BBox) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H
}

// MapObject: 맵에 배치 가능한 오브젝트
type MapObject struct {
	Key         string `json:"key" yaml:"key"`
	Name        string `json:"name" yaml:"name"`
	BBox        BBox   `json:"bbox" yaml:"bbox"`
	Interactive bool   `json:"interactive" yaml:"interactive"`
}

// VirtualMap: 플레이 가능한 맵 카탈로그 항목 (읽기 전용)
type VirtualMap struct {
	Key     string      `json:"key" yaml:"key"`
	Name    string      `json:"name" yaml:"name"`
	Objects []MapObject `json:"objects" yaml:"objects"`
}

// Object: 키로 오브젝트를 찾는다.
func (m VirtualMap) Object(key string) (MapObject, bool) {
	for _, obj := range m.Objects {
		if obj.Key == key {
			return obj, true
		}
	}
	return MapObject{}, false
}

// Identity: 외부 인증 계층이 전달하는 호출자 정보. 인증은 수행하지 않고 그대로 신뢰한다.
type Identity struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	IsModerator bool   `json:"isModerator"`
}
