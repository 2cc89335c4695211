package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openclaw/newsbrief/app/briefing"
	"github.com/openclaw/newsbrief/app/cfg"
	"github.com/openclaw/newsbrief/app/database"
	"github.com/openclaw/newsbrief/app/tasks"
	"github.com/openclaw/newsbrief/app/vector"
)

func NewHandler(newsRepo database.NewsRepository, trendRepo database.TrendRepository,
	index *vector.Index, generator *briefing.Generator,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	cfg := cfg.Get()

	return &Handler{
		newsRepo:         newsRepo,
		trendRepo:        trendRepo,
		index:            index,
		generator:        generator,
		scheduler:        scheduler,
		indexWindowHours: cfg.IndexWindowHours,
		retentionDays:    cfg.RetentionDays,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   cfg.GetVersion(),
		"vectors":   h.index.Size(),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	storeStats, err := h.newsRepo.GetStats()
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store": storeStats,
		"index": h.index.Stats(),
	})
}

func (h *Handler) GetRecentNews(c *gin.Context) {
	hours := intQuery(c, "hours", 24)
	limit := intQuery(c, "limit", 50)
	minImportance := floatQuery(c, "min_importance", 0)
	category := c.Query("category")

	items, err := h.newsRepo.GetRecentNews(hours, category, minImportance, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_news", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load news"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(items),
		"items": toNewsItemResponses(items),
	})
}

func (h *Handler) SearchNews(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	days := intQuery(c, "days", 7)
	limit := intQuery(c, "limit", 50)
	category := c.Query("category")

	items, err := h.newsRepo.SearchNews(query, category, days, limit)
	if err != nil {
		slog.Error("Database error", "operation", "search_news", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search news"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query": query,
		"count": len(items),
		"items": toNewsItemResponses(items),
	})
}

func (h *Handler) SemanticSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	topK := intQuery(c, "top_k", 10)
	minScore := floatQuery(c, "min_score", 0)
	category := c.Query("category")

	results, err := h.index.Search(c.Request.Context(), query, topK, category, minScore)
	if err != nil {
		slog.Error("Semantic search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to run semantic search"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}

func (h *Handler) GetSimilar(c *gin.Context) {
	hash := c.Param("hash")
	topK := intQuery(c, "top_k", 5)

	results := h.index.FindSimilar(hash, topK)

	c.JSON(http.StatusOK, gin.H{
		"content_hash": hash,
		"count":        len(results),
		"results":      results,
	})
}

func (h *Handler) GetClusters(c *gin.Context) {
	k := intQuery(c, "k", 5)

	clusters := h.index.Clusters(k)

	c.JSON(http.StatusOK, gin.H{
		"requested": k,
		"count":     len(clusters),
		"clusters":  clusters,
	})
}

func (h *Handler) GetTrends(c *gin.Context) {
	hours := intQuery(c, "hours", 6)
	source := c.Query("source")

	trends, err := h.trendRepo.GetTrendingTopics(hours, source)
	if err != nil {
		slog.Error("Database error", "operation", "get_trends", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load trends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":  len(trends),
		"trends": toTrendResponses(trends),
	})
}

func (h *Handler) GetBriefing(c *gin.Context) {
	briefingType := c.Param("type")
	hours := intQuery(c, "hours", 0)
	format := c.DefaultQuery("format", "json")

	if briefingType == "breaking" {
		h.breakingNews(c, hours, format)
		return
	}

	var (
		b   *briefing.Briefing
		err error
	)
	switch briefingType {
	case "morning":
		b, err = h.generator.Morning(hours)
	case "evening":
		b, err = h.generator.Evening(hours)
	case "category":
		category := c.Query("category")
		if category == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'category' is required"})
			return
		}
		b, err = h.generator.Category(category, hours)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown briefing type, expected morning, evening, category, or breaking"})
		return
	}

	if err != nil {
		slog.Error("Briefing generation failed", "type", briefingType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate briefing"})
		return
	}

	switch format {
	case "text":
		c.String(http.StatusOK, briefing.FormatText(b))
	case "markdown":
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, briefing.FormatMarkdown(b))
	default:
		c.JSON(http.StatusOK, b)
	}
}

func (h *Handler) breakingNews(c *gin.Context, hours int, format string) {
	minImportance := floatQuery(c, "min_importance", 0)

	alert, err := h.generator.BreakingNews(minImportance, hours)
	if err != nil {
		slog.Error("Breaking news alert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate alert"})
		return
	}

	if format == "text" || format == "markdown" {
		c.String(http.StatusOK, briefing.FormatAlertText(alert))
		return
	}
	c.JSON(http.StatusOK, alert)
}

// APIReindex queues a forced reindex of the recent window. The
// scheduler worker pool serializes it against periodic passes.
func (h *Handler) APIReindex(c *gin.Context) {
	hours := intQuery(c, "hours", h.indexWindowHours)

	task := tasks.NewIndexVectorsTask(h.index, hours, true)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue reindex task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "task queue unavailable"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "queued",
		"task_id": task.GetID(),
		"hours":   hours,
	})
}

func (h *Handler) APICleanup(c *gin.Context) {
	days := intQuery(c, "days", h.retentionDays)

	task := tasks.NewCleanupVectorsTask(h.index, days)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue cleanup task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "task queue unavailable"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "queued",
		"task_id": task.GetID(),
		"days":    days,
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func floatQuery(c *gin.Context, name string, fallback float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
