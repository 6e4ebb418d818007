package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/questdo/questdo/internal/app/progression"
	"github.com/questdo/questdo/internal/domain"
)

// ─── Gamification API ───────────────────────────────────────────────────────
//
// POST   /api/users                                — register a user
// GET    /api/users/{id}/progression               — level, XP, title
// GET    /api/users/{id}/streak                    — streak summary + heatmap
// GET    /api/users/{id}/badges                    — catalog with unlock status
// GET    /api/users/{id}/xp/history                — XP ledger, newest first
// POST   /api/users/{id}/tasks/complete            — finish a task, earn XP
// POST   /api/users/{id}/habits/{habit}/checkin    — daily habit check-in
// DELETE /api/users/{id}/habits/{habit}/checkin    — undo today's check-in

// handleCreateUser registers a new user at level 1.
// POST /api/users
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Locale string `json:"locale"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if req.Locale == "" {
		req.Locale = progression.DefaultLocale
	}

	user := domain.UserProgression{
		UserID: req.UserID,
		Level:  1,
		Title:  progression.TitleForLevel(1, req.Locale),
		Locale: req.Locale,
	}
	if err := s.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			writeError(w, http.StatusConflict, "user already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.WithField("user", req.UserID).Info("user created")
	writeJSON(w, http.StatusCreated, user)
}

// handleProgression returns level, XP, and title state.
// GET /api/users/{id}/progression
func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":      user.UserID,
		"level":        user.Level,
		"title":        user.Title,
		"total_xp":     user.TotalXP,
		"current_xp":   progression.CurrentXP(user.Level, user.TotalXP),
		"xp_to_next":   progression.XPForNextLevel(user.Level),
		"progress_pct": progression.LevelProgress(user.Level, user.TotalXP) * 100,
		"max_level":    user.Level >= progression.MaxLevel,
	})
}

// handleStreak returns the streak summary and a recent-days heatmap.
// GET /api/users/{id}/streak?days=30
func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	days := 30
	if q := r.URL.Query().Get("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 365 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = n
	}

	stats, window, marked, err := s.streaks.Summary(r.Context(), user.UserID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	type heatmapDay struct {
		Day  string `json:"day"`
		Done bool   `json:"done"`
	}
	heatmap := make([]heatmapDay, 0, len(window))
	for _, d := range window {
		heatmap = append(heatmap, heatmapDay{Day: d, Done: marked[d]})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current_streak":     stats.CurrentStreak,
		"longest_streak":     stats.LongestStreak,
		"total_habit_checks": stats.TotalHabitChecks,
		"total_completed":    stats.TotalCompleted,
		"heatmap":            heatmap,
	})
}

// handleBadges returns the full catalog with unlock status, plus the closest
// unearned badges by progress.
// GET /api/users/{id}/badges
func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	earned, err := s.badges.ListEarnedBadges(r.Context(), user.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	earnedAt := make(map[string]time.Time, len(earned))
	for _, e := range earned {
		earnedAt[e.BadgeID] = e.EarnedAt
	}

	type badgeResponse struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Icon     string  `json:"icon"`
		Rarity   string  `json:"rarity"`
		RewardXP int64   `json:"reward_xp"`
		Earned   bool    `json:"earned"`
		EarnedAt string  `json:"earned_at,omitempty"`
		Progress float64 `json:"progress"`
	}

	stats, err := s.users.GetStats(r.Context(), user.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	eval := s.orch.Evaluator()
	earnedIDs := make(map[string]bool, len(earnedAt))
	for id := range earnedAt {
		earnedIDs[id] = true
	}
	progressByID := make(map[string]float64)
	for _, bp := range eval.NextAchievable(stats, user.Level, earnedIDs) {
		progressByID[bp.Badge.ID] = bp.Progress
	}

	var all []badgeResponse
	for _, def := range eval.Catalog() {
		b := badgeResponse{
			ID:       def.ID,
			Name:     def.Name,
			Icon:     def.Icon,
			Rarity:   string(def.Rarity),
			RewardXP: def.XPReward,
			Progress: progressByID[def.ID],
		}
		if at, ok := earnedAt[def.ID]; ok {
			b.Earned = true
			b.EarnedAt = at.Format(time.RFC3339)
			b.Progress = 1
		}
		all = append(all, b)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"badges":       all,
		"earned_count": len(earned),
		"total_count":  len(eval.Catalog()),
	})
}

// handleXPHistory returns ledger entries, newest first.
// GET /api/users/{id}/xp/history?limit=50
func (s *Server) handleXPHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := s.ledger.XPHistory(r.Context(), user.UserID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"balance": user.TotalXP,
	})
}

// handleCompleteTask records a finished task and returns the resulting event.
// POST /api/users/{id}/tasks/complete
func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}

	event, err := s.streaks.CompleteTask(r.Context(), user.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// handleCheckIn records today's habit check-in and returns the resulting
// event. Checking the same habit twice in a day returns an empty event.
// POST /api/users/{id}/habits/{habit}/checkin
func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habitID")
	if habitID == "" {
		writeError(w, http.StatusBadRequest, "habit id is required")
		return
	}

	event, err := s.streaks.CheckIn(r.Context(), user.UserID, habitID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// handleUndoCheckIn removes today's check-in for a habit. XP already granted
// stays granted.
// DELETE /api/users/{id}/habits/{habit}/checkin
func (s *Server) handleUndoCheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := s.lookupUser(w, r)
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habitID")
	if habitID == "" {
		writeError(w, http.StatusBadRequest, "habit id is required")
		return
	}

	if err := s.streaks.Undo(r.Context(), user.UserID, habitID); err != nil {
		if errors.Is(err, domain.ErrNothingToUndo) {
			writeError(w, http.StatusNotFound, "no check-in today for this habit")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// lookupUser resolves the {userID} route param. Writes a 404 and returns
// ok=false when the user does not exist.
func (s *Server) lookupUser(w http.ResponseWriter, r *http.Request) (*domain.UserProgression, bool) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return nil, false
	}
	user, err := s.users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return nil, false
	}
	return user, true
}
