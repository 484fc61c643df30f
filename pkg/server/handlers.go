package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
	"github.com/codeGROOVE-dev/sleuth/pkg/webfilter"
)

const maxQuerySize = 1 << 10

func (s *Server) handleIdentify(c *gin.Context) {
	var req profile.IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := s.searcher.Identify(c.Request.Context(), req)
	if err != nil {
		s.fail(c, "identify", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleDeep(c *gin.Context) {
	var req profile.DeepSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := s.searcher.DeepSearch(c.Request.Context(), req)
	if err != nil {
		s.fail(c, "deep search", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if len(query) > maxQuerySize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query too long"})
		return
	}
	mode := webfilter.Mode(c.DefaultQuery("mode", string(webfilter.Simple)))
	if mode != webfilter.Simple && mode != webfilter.Strict {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be simple or strict"})
		return
	}

	items, err := s.searcher.Search(c.Request.Context(), query, mode)
	if err != nil {
		s.fail(c, "search", err)
		return
	}
	if items == nil {
		items = []profile.Item{}
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (s *Server) handleListHistory(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, []profile.HistoryEntry{})
		return
	}
	entries, err := s.store.ListHistory(c.Request.Context())
	if err != nil {
		s.fail(c, "list history", err)
		return
	}
	if entries == nil {
		entries = []profile.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleDeleteHistory(c *gin.Context) {
	if s.store == nil {
		s.fail(c, "delete history", errNoStore)
		return
	}
	if err := s.store.DeleteHistory(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, "delete history", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleFormInfo(c *gin.Context) {
	if s.store == nil {
		s.fail(c, "form info", errNoStore)
		return
	}
	var f profile.FormInfo
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	saved, err := s.store.SaveFormInfo(c.Request.Context(), profile.FormInfo{Name: f.Name, Keyword: f.Keyword, Location: f.Location})
	if err != nil {
		s.fail(c, "form info", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// fail maps err to a status code. Validation errors are shown to the
// client; anything else is logged and reported generically.
func (s *Server) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, profile.ErrQueryRequired),
		errors.Is(err, profile.ErrPersonRequired),
		errors.Is(err, profile.ErrFormInfoRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, profile.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errNoStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.logger.ErrorContext(c.Request.Context(), op+" failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}
