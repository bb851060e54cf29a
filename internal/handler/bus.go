package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/everydaycare/server/internal/config"
	"github.com/everydaycare/server/internal/provider"
)

// busStopRe matches a five-digit bus stop code.
var busStopRe = regexp.MustCompile(`^\d{5}$`)

// busCacheTTL keeps arrival feeds hot for 30 seconds; the upstream feed
// updates roughly once a minute.
const busCacheTTL = 30 * time.Second

// BusHandler serves live bus arrival timings, cached in Redis per stop.
type BusHandler struct {
	Cfg config.Config
	Bus *provider.BusClient
	RDB *redis.Client
	Log *zap.Logger
}

func NewBusHandler(cfg config.Config, bus *provider.BusClient, rdb *redis.Client, log *zap.Logger) *BusHandler {
	return &BusHandler{Cfg: cfg, Bus: bus, RDB: rdb, Log: log}
}

// Arrivals returns next-bus timings for one stop. Redis outage degrades to a
// direct provider call.
func (h *BusHandler) Arrivals(c echo.Context) error {
	stop := c.Param("stop")
	if !busStopRe.MatchString(stop) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stop must be a 5-digit code"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 8*time.Second)
	defer cancel()

	key := "bus:" + stop
	if h.RDB != nil {
		if raw, err := h.RDB.Get(ctx, key).Bytes(); err == nil {
			var arrivals []provider.BusArrival
			if json.Unmarshal(raw, &arrivals) == nil {
				return c.JSON(http.StatusOK, echo.Map{"stop": stop, "arrivals": arrivals, "cached": true})
			}
		}
	}

	arrivals, err := h.Bus.Arrivals(ctx, stop)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "bus arrival feed unavailable"})
	}
	if h.RDB != nil {
		if raw, err := json.Marshal(arrivals); err == nil {
			if err := h.RDB.Set(ctx, key, raw, busCacheTTL).Err(); err != nil {
				h.Log.Warn("bus cache write failed", zap.String("stop", stop), zap.Error(err))
			}
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"stop": stop, "arrivals": arrivals, "cached": false})
}
