package httpapi

import (
	"net/http"

	cerrors "github.com/park285/llm-kakao-bots/hideseek-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/model"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/service"
)

// moderatorUserID: 관리자 API 로 들어온 요청의 행위자 ID (로그/권한 판단용)
const moderatorUserID = "admin-api"

var moderator = model.Identity{UserID: moderatorUserID, Username: "admin", IsModerator: true}

func registerGameRoutes(mux *http.ServeMux, admin *adminHandler) {
	// GET /admin/games/{gameId} - 게임 현황 (세션, 통계, 추측자 요약)
	mux.HandleFunc("GET /admin/games/{gameId}", admin.guard(admin.handleGetGame))
	// GET /admin/posts/{postId} - 게시글로 게임 찾기
	mux.HandleFunc("GET /admin/posts/{postId}", admin.guard(admin.handleGetGameByPost))
	// DELETE /admin/games/{gameId} - 게임과 추측 기록 삭제
	mux.HandleFunc("DELETE /admin/games/{gameId}", admin.guard(admin.handleDeleteGame))
	// GET /admin/players/{userId} - 플레이어 프로필과 등급 진행도
	mux.HandleFunc("GET /admin/players/{userId}", admin.guard(admin.handleGetPlayer))
}

// PlayerResponse: 프로필과 다음 등급까지의 진행도
type PlayerResponse struct {
	Profile     *model.PlayerProfile     `json:"profile"`
	Progression *service.RankProgression `json:"progression"`
}

// DeleteGameResponse: 삭제 결과
type DeleteGameResponse struct {
	GameID  string `json:"gameId"`
	Deleted bool   `json:"deleted"`
}

func (h *adminHandler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.games.GetCreatorDashboard(r.Context(), moderator, r.PathValue("gameId"))
	if err != nil {
		h.writeDomainError(w, "admin_game_lookup_failed", err)
		return
	}
	if dashboard == nil {
		writeError(w, http.StatusNotFound, adminErrorNotFound, "game not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dashboard, h.logger)
}

func (h *adminHandler) handleGetGameByPost(w http.ResponseWriter, r *http.Request) {
	session, err := h.games.GetGameByPostID(r.Context(), r.PathValue("postId"))
	if err != nil {
		h.writeDomainError(w, "admin_post_lookup_failed", err)
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, adminErrorNotFound, "game not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, session, h.logger)
}

func (h *adminHandler) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	deleted, err := h.games.DeleteGame(r.Context(), moderator, gameID)
	if err != nil {
		h.writeDomainError(w, "admin_game_delete_failed", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, adminErrorNotFound, "game not found", h.logger)
		return
	}
	h.logger.Info("admin_game_deleted", "game_id", gameID)
	writeJSON(w, http.StatusOK, DeleteGameResponse{GameID: gameID, Deleted: true}, h.logger)
}

func (h *adminHandler) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	profile, err := h.games.GetPlayer(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, "admin_player_lookup_failed", err)
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, adminErrorNotFound, "player not found", h.logger)
		return
	}
	progression := service.CalculateRankProgression(*profile)
	writeJSON(w, http.StatusOK, PlayerResponse{Profile: profile, Progression: &progression}, h.logger)
}

// writeDomainError: 도메인 에러를 HTTP 상태로 옮긴다. 저장소 장애만 에러 로그를 남긴다.
func (h *adminHandler) writeDomainError(w http.ResponseWriter, logKey string, err error) {
	switch {
	case cerrors.IsValidation(err):
		writeError(w, http.StatusBadRequest, adminErrorInvalidRequest, err.Error(), h.logger)
	case cerrors.IsNotFound(err):
		writeError(w, http.StatusNotFound, adminErrorNotFound, err.Error(), h.logger)
	case cerrors.IsAuthorization(err):
		h.logger.Warn(logKey, "err", err)
		writeError(w, http.StatusForbidden, adminErrorForbidden, err.Error(), h.logger)
	default:
		h.logger.Error(logKey, "err", err)
		writeError(w, http.StatusInternalServerError, adminErrorInternalError, "internal error", h.logger)
	}
}
