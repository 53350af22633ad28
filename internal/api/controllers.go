package api

import (
	"log"
	"net/http"

	"paper-core/pkg/i18n"

	"github.com/gin-gonic/gin"
)

func (s *Server) health(c *gin.Context) {
	status := s.Engine.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":         status.Status,
		"paused":         status.Paused,
		"last_tick":      status.LastTick,
		"assets":         status.Assets,
		"balance":        status.Balance,
		"open_positions": status.OpenPositions,
		"closed_trades":  status.ClosedTrades,
		"mock_feed":      s.Meta.UseMockQuotes,
		"version":        s.Meta.Version,
		"tick_every":     s.Meta.TickInterval.String(),
	})
}

// getState returns the full simulation snapshot.
func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.Engine.State())
}

// getQuotes returns the latest cached quote per asset.
func (s *Server) getQuotes(c *gin.Context) {
	c.JSON(http.StatusOK, s.Quotes.GetAll())
}

// getMetrics returns runtime performance counters and latencies.
func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.Metrics.GetSnapshot())
}

// persist rewrites the stored snapshot after a control mutation.
func (s *Server) persist(c *gin.Context) {
	if s.Store == nil {
		return
	}
	if err := s.Engine.Save(c.Request.Context(), s.Store); err != nil {
		log.Printf(i18n.M().SnapshotSaveFailed, err)
	}
}

func (s *Server) pauseTrading(c *gin.Context) {
	s.Engine.Pause()
	s.persist(c)
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

func (s *Server) resumeTrading(c *gin.Context) {
	s.Engine.Resume()
	s.persist(c)
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

// resetSession restores initial state and rewrites the persisted snapshot.
func (s *Server) resetSession(c *gin.Context) {
	s.Engine.Reset()

	if s.Store != nil {
		if err := s.Store.ClearTrades(c.Request.Context()); err != nil {
			log.Printf(i18n.M().SnapshotSaveFailed, err)
		}
	}
	s.persist(c)

	c.JSON(http.StatusOK, gin.H{"reset": true})
}

// toggleStrategy enables or disables one strategy by name.
func (s *Server) toggleStrategy(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.BindJSON(&req); err != nil || req.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  "INVALID_PAYLOAD",
			"error": "body must carry an enabled flag",
		})
		return
	}

	name := c.Param("name")
	kind, err := s.Engine.SetStrategyEnabled(name, *req.Enabled)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":  "UNKNOWN_STRATEGY",
			"error": err.Error(),
		})
		return
	}

	s.persist(c)
	c.JSON(http.StatusOK, gin.H{
		"strategy": kind.String(),
		"enabled":  *req.Enabled,
	})
}

func (s *Server) clearNotices(c *gin.Context) {
	s.Engine.ClearNotices()
	s.persist(c)
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
