package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

const settingsCacheKey = "global_settings"

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	cached, err := h.redisClient.Get(ctx, settingsCacheKey).Result()
	if err == nil {
		settings := &domain.GlobalSettings{}
		if err := json.Unmarshal([]byte(cached), settings); err == nil {
			h.successResponse(w, r, "", settings)
			return
		}
		// fall through to the database on a corrupt cache entry
	} else if err != redis.Nil {
		h.internalServerError(w, r, err)
		return
	}

	settings, err := h.repository.GetGlobalSettings()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if data, err := json.Marshal(settings); err == nil {
		// cache failures are not fatal, the next read tries again
		h.redisClient.Set(ctx, settingsCacheKey, data, time.Duration(h.config.Redis.SettingsCacheTTL)*time.Second)
	}

	h.successResponse(w, r, "", settings)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DefaultTimeZone string `json:"default_time_zone" validate:"required,timezone"`
		WeekStart       int32  `json:"week_start" validate:"min=0,max=6"`
		Use24h          bool   `json:"use_24h"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	settings := &domain.GlobalSettings{
		DefaultTimeZone: req.DefaultTimeZone,
		WeekStart:       req.WeekStart,
		Use24h:          req.Use24h,
	}

	if err := h.repository.UpdateGlobalSettings(settings); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	if err := h.redisClient.Del(ctx, settingsCacheKey).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "settings updated", settings)
}
