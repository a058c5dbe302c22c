package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zynapses/radiant-graph/internal/config"
	"github.com/Zynapses/radiant-graph/internal/core/cluster"
	"github.com/Zynapses/radiant-graph/internal/core/conflict"
	"github.com/Zynapses/radiant-graph/internal/core/duplicate"
	"github.com/Zynapses/radiant-graph/internal/core/expansion"
	"github.com/Zynapses/radiant-graph/internal/core/inference"
	"github.com/Zynapses/radiant-graph/internal/core/model"
	"github.com/Zynapses/radiant-graph/internal/core/pattern"
	"github.com/Zynapses/radiant-graph/internal/driver"
	"github.com/Zynapses/radiant-graph/internal/llm"
	"github.com/Zynapses/radiant-graph/internal/notify"
)

type Server struct {
	Manager      *expansion.Manager
	Orchestrator *conflict.Orchestrator
	Logger       *zap.Logger
}

func NewServer() *Server {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to construct logger: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("could not load config file, using defaults", zap.String("path", cfgPath), zap.Error(err))
		cfg = &config.Config{Heuristics: config.DefaultHeuristics()}
	}

	// Env vars win over the file.
	if uri := os.Getenv("MEMGRAPH_URI"); uri != "" {
		cfg.Memgraph.URI = uri
	}
	if cfg.Memgraph.URI == "" {
		cfg.Memgraph.URI = "bolt://localhost:7687"
	}
	if user := os.Getenv("MEMGRAPH_USER"); user != "" {
		cfg.Memgraph.User = user
	}
	if pass := os.Getenv("MEMGRAPH_PASSWORD"); pass != "" {
		cfg.Memgraph.Password = pass
	}
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		cfg.LLM.Model = envModel
	}
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("LLM_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.Model = "gpt-oss:latest"
		cfg.LLM.BaseURL = "http://localhost:11434"
	}

	d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
	if err != nil {
		logger.Fatal("failed to connect to Memgraph", zap.Error(err))
	}
	if err := d.BuildIndices(context.Background()); err != nil {
		logger.Fatal("failed to build indices", zap.Error(err))
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		logger.Fatal("failed to initialize LLM client", zap.Error(err))
	}

	return New(d, llmClient, cfg, logger)
}

// New wires the engines onto an already-connected store. Split out of
// NewServer so tests can inject a mock driver.
func New(d driver.GraphDriver, llmClient llm.LLMClient, cfg *config.Config, logger *zap.Logger) *Server {
	h := cfg.Heuristics

	manager := expansion.NewManager(d,
		inference.NewEngine(d, h, logger),
		cluster.NewDetector(d, h, logger),
		pattern.NewDetector(d, h, logger),
		duplicate.NewDetector(d, h, logger),
		logger)

	notifier := notify.NewStoreNotifier(d)
	orchestrator := conflict.NewOrchestrator(d,
		conflict.NewBasicResolver(h),
		conflict.NewLLMResolver(llmClient, h),
		conflict.NewHumanResolver(d, notifier, logger),
		h, logger)

	return &Server{
		Manager:      manager,
		Orchestrator: orchestrator,
		Logger:       logger,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/tasks", s.CreateTask)
	r.POST("/tasks/:id/run", s.RunTask)
	r.GET("/tasks/:id", s.GetTask)

	r.GET("/links", s.ListPendingLinks)
	r.GET("/links/:id", s.GetLink)
	r.POST("/links/:id/approve", s.ApproveLink)
	r.POST("/links/:id/reject", s.RejectLink)

	r.POST("/conflicts/resolve", s.ResolveConflicts)
	r.POST("/conflicts/:id/resolve-manually", s.ResolveManually)

	return r
}

type CreateTaskRequest struct {
	GroupID         string   `json:"group_id" binding:"required"`
	Type            string   `json:"type" binding:"required"`
	SourceNodeUUIDs []string `json:"source_node_uuids"`
	Scope           string   `json:"scope"`
}

func (s *Server) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := s.Manager.CreateTask(c.Request.Context(), req.GroupID, model.TaskType(req.Type), req.SourceNodeUUIDs, model.TaskScope(req.Scope))
	if err != nil {
		s.Logger.Error("failed to create task", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (s *Server) RunTask(c *gin.Context) {
	groupID := c.Query("group_id")
	taskID := c.Param("id")

	err := s.Manager.RunTask(c.Request.Context(), taskID, groupID)
	switch {
	case errors.Is(err, expansion.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, expansion.ErrTaskNotRunnable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		s.Logger.Error("task run failed", zap.String("task_uuid", taskID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Task failed"})
	default:
		task, getErr := s.Manager.GetTask(c.Request.Context(), taskID, groupID)
		if getErr != nil {
			c.JSON(http.StatusOK, gin.H{"status": "completed"})
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

func (s *Server) GetTask(c *gin.Context) {
	task, err := s.Manager.GetTask(c.Request.Context(), c.Param("id"), c.Query("group_id"))
	if errors.Is(err, expansion.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if err != nil {
		s.Logger.Error("failed to load task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load task"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) ListPendingLinks(c *gin.Context) {
	links, err := s.Manager.ListPendingLinks(c.Request.Context(), c.Query("group_id"))
	if err != nil {
		s.Logger.Error("failed to list links", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list links"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (s *Server) GetLink(c *gin.Context) {
	link, err := s.Manager.GetLink(c.Request.Context(), c.Param("id"), c.Query("group_id"))
	if errors.Is(err, expansion.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}
	if err != nil {
		s.Logger.Error("failed to load link", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load link"})
		return
	}
	c.JSON(http.StatusOK, link)
}

type ReviewLinkRequest struct {
	GroupID string `json:"group_id" binding:"required"`
	UserID  string `json:"user_id"`
}

func (s *Server) ApproveLink(c *gin.Context) {
	var req ReviewLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err := s.Manager.ApproveLink(c.Request.Context(), c.Param("id"), req.GroupID, req.UserID)
	switch {
	case errors.Is(err, expansion.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
	case errors.Is(err, expansion.ErrLinkAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": "Link already reviewed"})
	case err != nil:
		s.Logger.Error("failed to approve link", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve link"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "approved"})
	}
}

func (s *Server) RejectLink(c *gin.Context) {
	var req ReviewLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err := s.Manager.RejectLink(c.Request.Context(), c.Param("id"), req.GroupID)
	switch {
	case errors.Is(err, expansion.ErrLinkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
	case errors.Is(err, expansion.ErrLinkAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": "Link already reviewed"})
	case err != nil:
		s.Logger.Error("failed to reject link", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject link"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "rejected"})
	}
}

type ResolveConflictsRequest struct {
	GroupID string `json:"group_id" binding:"required"`
}

func (s *Server) ResolveConflicts(c *gin.Context) {
	var req ResolveConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	summary, err := s.Orchestrator.ResolveConflicts(c.Request.Context(), req.GroupID)
	if err != nil {
		s.Logger.Error("conflict batch failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve conflicts"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

type ResolveManuallyRequest struct {
	GroupID    string `json:"group_id" binding:"required"`
	UserID     string `json:"user_id" binding:"required"`
	Winner     string `json:"winner" binding:"required"`
	Reason     string `json:"reason"`
	MergedFact string `json:"merged_fact"`
}

func (s *Server) ResolveManually(c *gin.Context) {
	var req ResolveManuallyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	err := s.Orchestrator.ResolveManually(c.Request.Context(), c.Param("id"), req.GroupID, req.UserID, model.Winner(req.Winner), req.Reason, req.MergedFact)
	switch {
	case errors.Is(err, conflict.ErrConflictNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Conflict not found"})
	case errors.Is(err, conflict.ErrConflictAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict already resolved"})
	case err != nil:
		s.Logger.Error("manual resolution failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "resolved"})
	}
}
