// Package books serves the per-book summaries derived from the read log.
package books

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"readlog/internal/apperr"
	"readlog/internal/normalize"
	"readlog/internal/storage"
)

type Handler struct {
	Store *storage.Store
}

func NewHandler(store *storage.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/times-read", h.timesRead)
	rg.GET("/last-read", h.lastRead)
	rg.GET("/:id", h.getOne)
}

func (h *Handler) list(c *gin.Context) {
	q := storage.ListQuery{
		Q:      c.Query("q"),
		Format: c.Query("format"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	total, err := h.Store.CountBooks(c.Request.Context(), q)
	if err != nil {
		c.JSON(apperr.Response(err))
		return
	}
	items, err := h.Store.ListBooks(c.Request.Context(), q)
	if err != nil {
		c.JSON(apperr.Response(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(apperr.Response(apperr.Wrap(apperr.CodeValidation, "id must be a number", err)))
		return
	}

	b, err := h.Store.GetBook(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.Response(err))
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// timesRead answers for the first book matching title (and author, if
// given).
func (h *Handler) timesRead(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(apperr.Response(apperr.New(apperr.CodeValidation, "title required")))
		return
	}

	matches, err := h.Store.FindBooksFuzzy(c.Request.Context(), title, c.Query("author"))
	if err != nil {
		c.JSON(apperr.Response(err))
		return
	}
	if len(matches) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no matching book"})
		return
	}

	b := matches[0]
	c.JSON(http.StatusOK, gin.H{
		"id":         b.ID,
		"title":      b.Title,
		"author":     b.Author,
		"times_read": b.TimesRead,
		"matches":    len(matches),
	})
}

type lastRead struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	LastReadYear  int    `json:"last_read_year"`
	LastReadMonth string `json:"last_read_month"`
	MonthName     string `json:"month_name"`
}

// lastRead lists every matching book with its last read date.
func (h *Handler) lastRead(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(apperr.Response(apperr.New(apperr.CodeValidation, "title required")))
		return
	}

	matches, err := h.Store.FindBooksFuzzy(c.Request.Context(), title, c.Query("author"))
	if err != nil {
		c.JSON(apperr.Response(err))
		return
	}
	if len(matches) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no matching book"})
		return
	}

	out := make([]lastRead, 0, len(matches))
	for _, b := range matches {
		out = append(out, lastRead{
			ID:            b.ID,
			Title:         b.Title,
			Author:        b.Author,
			LastReadYear:  b.LastReadYear,
			LastReadMonth: b.LastReadMonth,
			MonthName:     normalize.MonthName(b.LastReadMonth),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
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
