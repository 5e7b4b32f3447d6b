// Package readings serves the read instance log over HTTP: appending a read,
// undoing the most recent one, and querying the log.
package readings

import (
	"net/http"
	"strconv"
	"strings"
	gosync "sync"
	"time"

	"github.com/gin-gonic/gin"

	"readlog/internal/apperr"
	"readlog/internal/normalize"
	"readlog/internal/reconcile"
	"readlog/internal/storage"
	"readlog/internal/sync"
	"readlog/pkg/models"
)

type Handler struct {
	Reconciler *reconcile.Reconciler
	Store      *storage.Store
	Hub        *sync.Hub

	// mu orders each mutation with its broadcast, so sync clients see
	// events in commit order.
	mu gosync.Mutex

	// now is swapped in tests.
	now func() time.Time
}

func NewHandler(rec *reconcile.Reconciler, store *storage.Store, hub *sync.Hub) *Handler {
	return &Handler{Reconciler: rec, Store: store, Hub: hub, now: time.Now}
}

// RegisterRoutes mounts the log under rg. guard protects the two routes that
// change it.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/last", h.last)
	rg.GET("/count", h.count)
	rg.POST("", guard, h.add)
	rg.DELETE("/last", guard, h.undo)
}

func (h *Handler) add(c *gin.Context) {
	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(apperr.Response(apperr.Wrap(apperr.CodeValidation, "invalid json", err)))
		return
	}

	if strings.TrimSpace(string(req.Title)) == "" || strings.TrimSpace(string(req.Author)) == "" {
		c.JSON(apperr.Response(apperr.New(apperr.CodeValidation, "title and author required")))
		return
	}

	unsure := "0"
	if req.UnsureOfDate != nil {
		unsure = string(*req.UnsureOfDate)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	book, err := h.Reconciler.AppendReadInstance(c.Request.Context(), models.ParsedFields{
		Title:        string(req.Title),
		Author:       string(req.Author),
		ReadYear:     string(req.ReadYear),
		ReadMonth:    string(req.ReadMonth),
		UnsureOfDate: unsure,
		Format:       string(req.Format),
		Context:      string(req.Context),
	})
	if err != nil {
		c.JSON(apperr.Response(err))
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(sync.UpdateEvent(*book))
	}

	c.JSON(http.StatusOK, book)
}

func (h *Handler) undo(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, err := h.Reconciler.DeleteLastReadInstance(c.Request.Context())
	if err != nil {
		c.JSON(apperr.Response(err))
		return
	}

	if h.Hub != nil {
		h.Hub.BroadcastJSON(sync.RetractEvent(*r))
	}

	c.JSON(http.StatusOK, r)
}

func (h *Handler) last(c *gin.Context) {
	ri, err := h.Store.LastReadInstance(c.Request.Context())
	if err != nil {
		c.JSON(apperr.Response(err))
		return
	}
	if ri == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no read instances yet"})
		return
	}
	c.JSON(http.StatusOK, ri)
}

func (h *Handler) list(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 50)
	offset := parseInt(c.Query("offset"), 0)
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	// stored titles are title-cased, so filters are too
	title := normalize.Title(c.Query("title"))
	author := normalize.Title(c.Query("author"))

	items, total, err := h.Store.ListReadInstances(c.Request.Context(), title, author, limit, offset)
	if err != nil {
		c.JSON(apperr.Response(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  items,
	})
}

func (h *Handler) count(c *gin.Context) {
	year := h.now().Year()
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(apperr.Response(apperr.Wrap(apperr.CodeValidation, "year must be a number", err)))
			return
		}
		year = y
	}

	n, err := h.Store.CountReadInstancesInYear(c.Request.Context(), year)
	if err != nil {
		c.JSON(apperr.Response(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "count": n})
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
