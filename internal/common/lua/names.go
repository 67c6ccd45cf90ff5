package lua

// hideseek 스크립트 이름 상수.
const (
	// ScriptGuessCooldown: 플레이어별 추측 쿨다운 (SET NX EX + 남은 TTL 반환)
	ScriptGuessCooldown = "hideseek_guess_cooldown"
)
