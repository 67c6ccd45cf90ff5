// Package validation: 저장 전/읽은 후 레코드 불변식을 검사한다.
// 값을 보정하지 않고 거부한다. 실패는 cerrors.ValidationError{Field, Reason} 로 반환되며
// Field 는 JSON 와이어 이름 경로다. (예: hidingSpot.relX)
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/catalog"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
)

// 커스텀 규칙 태그
const (
	tagObjectKey      = "objectkey"
	tagMapKey         = "mapkey"
	tagKeySafe        = "keysafe"
	tagNFC            = "nfc"
	tagMapHasObject   = "maphasobject"
	tagFinite         = "finite"
	tagSuccessBound   = "successbound"
	tagExactRatio     = "exactratio"
	tagRankConsistent = "rankconsistent"
)

var objectKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// 키 세그먼트에 들어가면 키 구분/패턴 매칭을 깨뜨리는 문자
const keyUnsafeChars = ":*?[]"

// Validator: 레코드 검증기. 생성 후 동시 사용에 안전하다.
type Validator struct {
	validate *validator.Validate
	catalog  *catalog.Catalog
}

// New: 맵 카탈로그를 닫힌 집합으로 사용하는 검증기를 생성한다.
func New(cat *catalog.Catalog) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	val := &Validator{validate: v, catalog: cat}

	mustRegister(v, tagObjectKey, func(fl validator.FieldLevel) bool {
		return objectKeyPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, tagMapKey, func(fl validator.FieldLevel) bool {
		return cat != nil && cat.HasMap(fl.Field().String())
	})
	mustRegister(v, tagKeySafe, func(fl validator.FieldLevel) bool {
		return isKeySafe(fl.Field().String())
	})
	mustRegister(v, tagNFC, func(fl validator.FieldLevel) bool {
		return norm.NFC.IsNormalString(fl.Field().String())
	})

	v.RegisterStructValidation(val.sessionRules, model.GameSession{})
	v.RegisterStructValidation(guessRules, model.GuessData{})
	v.RegisterStructValidation(profileRules, model.PlayerProfile{})
	return val
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

func isKeySafe(s string) bool {
	for _, r := range s {
		if r <= ' ' || strings.ContainsRune(keyUnsafeChars, r) {
			return false
		}
	}
	return true
}

func (v *Validator) sessionRules(sl validator.StructLevel) {
	session, ok := sl.Current().Interface().(model.GameSession)
	if !ok {
		return
	}
	// mapKey 자체가 잘못된 경우는 mapkey 태그가 보고한다.
	if v.catalog == nil || !v.catalog.HasMap(session.MapKey) {
		return
	}
	if !v.catalog.HasObject(session.MapKey, session.HidingSpot.ObjectKey) {
		sl.ReportError(session.HidingSpot.ObjectKey, "hidingSpot.objectKey", "ObjectKey", tagMapHasObject, session.MapKey)
	}
}

func guessRules(sl validator.StructLevel) {
	guess, ok := sl.Current().Interface().(model.GuessData)
	if !ok {
		return
	}
	if math.IsInf(guess.Distance, 0) || math.IsNaN(guess.Distance) {
		sl.ReportError(guess.Distance, "distance", "Distance", tagFinite, "")
	}
}

func profileRules(sl validator.StructLevel) {
	profile, ok := sl.Current().Interface().(model.PlayerProfile)
	if !ok {
		return
	}
	if profile.SuccessfulGuesses > profile.TotalGuesses {
		sl.ReportError(profile.SuccessfulGuesses, "successfulGuesses", "SuccessfulGuesses", tagSuccessBound, "")
		return
	}
	if profile.SuccessRate != model.SuccessRate(profile.TotalGuesses, profile.SuccessfulGuesses) {
		sl.ReportError(profile.SuccessRate, "successRate", "SuccessRate", tagExactRatio, "")
		return
	}
	want := model.RankFor(profile.TotalGuesses, profile.SuccessfulGuesses, profile.SuccessRate)
	if profile.Rank != want {
		sl.ReportError(profile.Rank, "rank", "Rank", tagRankConsistent, want.String())
	}
}

// ValidateSession: GameSession 불변식 검사 (좌표 범위, objectKey 형식, 맵/오브젝트 닫힌 집합)
func (v *Validator) ValidateSession(session *model.GameSession) error {
	if session == nil {
		return cerrors.ValidationError{Field: "session", Reason: "is required"}
	}
	return v.translate(v.validate.Struct(session), "")
}

// ValidateHidingSpot: 맵 기준으로 숨을 위치를 검사한다.
func (v *Validator) ValidateHidingSpot(mapKey string, spot model.HidingSpot) error {
	if err := v.validate.Var(mapKey, "required,"+tagMapKey); err != nil {
		return v.translate(err, "mapKey")
	}
	if err := v.translate(v.validate.Struct(spot), "hidingSpot"); err != nil {
		return err
	}
	if !v.catalog.HasObject(mapKey, spot.ObjectKey) {
		return cerrors.ValidationError{Field: "hidingSpot.objectKey", Reason: reasonFor(tagMapHasObject, mapKey)}
	}
	return nil
}

// ValidateGuessObject: 추측한 오브젝트가 게임 맵에 존재하는지 검사한다. (정답 여부와 무관)
func (v *Validator) ValidateGuessObject(mapKey, objectKey string) error {
	if err := v.validate.Var(objectKey, "required,"+tagObjectKey); err != nil {
		return v.translate(err, "objectKey")
	}
	if v.catalog == nil || !v.catalog.HasObject(mapKey, objectKey) {
		return cerrors.ValidationError{Field: "objectKey", Reason: reasonFor(tagMapHasObject, mapKey)}
	}
	return nil
}

// ValidateGuess: GuessData 검사
func (v *Validator) ValidateGuess(guess *model.GuessData) error {
	if guess == nil {
		return cerrors.ValidationError{Field: "guess", Reason: "is required"}
	}
	return v.translate(v.validate.Struct(guess), "")
}

// ValidateProfile: PlayerProfile 검사 (successful ≤ total, 정확한 비율, 등급 일관성)
func (v *Validator) ValidateProfile(profile *model.PlayerProfile) error {
	if profile == nil {
		return cerrors.ValidationError{Field: "profile", Reason: "is required"}
	}
	return v.translate(v.validate.Struct(profile), "")
}

// ValidateIdentifier: 키 세그먼트로 쓰이는 식별자(gameId, userId, postId) 검사
func (v *Validator) ValidateIdentifier(field, value string) error {
	return v.translate(v.validate.Var(value, "required,"+tagKeySafe+",max=256"), field)
}

// NormalizeUsername: 표시 이름을 NFC 정규화하고 앞뒤 공백을 제거한다.
func NormalizeUsername(username string) string {
	return norm.NFC.String(strings.TrimSpace(username))
}

// translate: validator 에러를 첫 번째 위반 필드의 ValidationError 로 변환한다.
// prefix 가 있으면 최상위 타입 이름 대신 사용한다. (Var 검사는 prefix 가 필드명 전체)
func (v *Validator) translate(err error, prefix string) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return cerrors.ValidationError{Field: prefix, Reason: "is required"}
		}
		return cerrors.ValidationError{Field: prefix, Reason: err.Error()}
	}

	fe := fieldErrs[0]
	return cerrors.ValidationError{Field: fieldPath(fe.Namespace(), prefix), Reason: reasonFor(fe.Tag(), fe.Param())}
}

func fieldPath(namespace, prefix string) string {
	_, rest, found := strings.Cut(namespace, ".")
	switch {
	case !found:
		// Var 검사: 네임스페이스가 비어있다.
		return prefix
	case prefix == "":
		return rest
	default:
		return prefix + "." + rest
	}
}

func reasonFor(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "gte":
		return "must be >= " + param
	case "lte":
		return "must be <= " + param
	case "max":
		return "must be at most " + param + " characters"
	case tagObjectKey:
		return "must match " + objectKeyPattern.String()
	case tagMapKey:
		return "unknown map"
	case tagKeySafe:
		return "must not contain whitespace or key separators"
	case tagNFC:
		return "must be NFC-normalized"
	case tagMapHasObject:
		return "object does not belong to map " + param
	case tagFinite:
		return "must be finite"
	case tagSuccessBound:
		return "must not exceed totalGuesses"
	case tagExactRatio:
		return "must equal successfulGuesses/totalGuesses"
	case tagRankConsistent:
		return "must equal rank computed from statistics (" + param + ")"
	default:
		return "failed " + tag
	}
}
