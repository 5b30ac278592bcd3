// The simulator is a local stand-in for both SMS providers. It accepts the
// primary gateway's send and feed endpoints and the transactional gateway's
// sendSMS, keeps everything in memory, and can be seeded with inbound
// messages so the full ingest pipeline can be exercised without a SIM card.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const feedTimeLayout = "2006-01-02 15:04:05"

// StoredMessage is one message held by the simulator, inbound or outbound.
type StoredMessage struct {
	ID     string
	Number string
	Body   string
	At     time.Time
}

// Simulator holds the in-memory inbox and send history.
type Simulator struct {
	mu      sync.Mutex
	inbox   []StoredMessage
	history []StoredMessage
}

func NewSimulator() *Simulator {
	return &Simulator{}
}

// Seed puts an inbound message into the inbox, as if a subscriber had texted.
func (s *Simulator) Seed(number, body string) StoredMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := StoredMessage{
		ID:     uuid.New().String(),
		Number: number,
		Body:   body,
		At:     time.Now(),
	}
	s.inbox = append(s.inbox, m)
	return m
}

// RecordSend appends to the send history, as both providers' send paths do.
func (s *Simulator) RecordSend(number, body string) StoredMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := StoredMessage{
		ID:     uuid.New().String(),
		Number: number,
		Body:   body,
		At:     time.Now(),
	}
	s.history = append(s.history, m)
	return m
}

type Handler struct {
	sim *Simulator
}

func NewHandler(sim *Simulator) *Handler {
	return &Handler{sim: sim}
}

// PrimarySend mimics the primary gateway's form-encoded send endpoint.
func (h *Handler) PrimarySend(c *gin.Context) {
	numbers := c.PostForm("numbers")
	message := c.PostForm("message")
	if c.PostForm("apikey") == "" || numbers == "" || message == "" {
		c.JSON(http.StatusOK, gin.H{
			"status": "failure",
			"errors": []gin.H{{"code": 3, "message": "Invalid request"}},
		})
		return
	}

	m := h.sim.RecordSend(numbers, message)
	log.Info().Str("number", numbers).Str("id", m.ID).Msg("primary send accepted")

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  gin.H{"num_parts": 1, "sender": c.PostForm("sender"), "content": message},
		"messages": []gin.H{{"id": m.ID, "recipient": numbers}},
	})
}

// GetMessages mimics the primary inbox feed.
func (h *Handler) GetMessages(c *gin.Context) {
	if c.Query("apikey") == "" {
		c.JSON(http.StatusForbidden, gin.H{"errors": []gin.H{{"code": 1, "message": "No API key"}}})
		return
	}

	h.sim.mu.Lock()
	defer h.sim.mu.Unlock()
	messages := make([]gin.H, 0, len(h.sim.inbox))
	for _, m := range h.sim.inbox {
		messages = append(messages, gin.H{
			"id":      m.ID,
			"number":  m.Number,
			"message": m.Body,
			"date":    m.At.Format(feedTimeLayout),
			"isNew":   true,
			"status":  "?",
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetHistory mimics the send-history feed.
func (h *Handler) GetHistory(c *gin.Context) {
	if c.Query("apikey") == "" {
		c.JSON(http.StatusForbidden, gin.H{"errors": []gin.H{{"code": 1, "message": "No API key"}}})
		return
	}

	h.sim.mu.Lock()
	defer h.sim.mu.Unlock()
	messages := make([]gin.H, 0, len(h.sim.history))
	for _, m := range h.sim.history {
		messages = append(messages, gin.H{
			"number":   m.Number,
			"content":  m.Body,
			"datetime": m.At.Format(feedTimeLayout),
			"status":   "D",
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// TransactionalSend mimics the transactional gateway's GET send endpoint.
func (h *Handler) TransactionalSend(c *gin.Context) {
	numbers := c.Query("numbers")
	message := c.Query("message")
	if c.Query("apikey") == "" || c.Query("username") == "" {
		c.JSON(http.StatusOK, []gin.H{{"responseCode": "Invalid Credentials"}})
		return
	}
	if numbers == "" || message == "" {
		c.JSON(http.StatusOK, []gin.H{{"invalidnumber": numbers}})
		return
	}

	m := h.sim.RecordSend(numbers, message)
	log.Info().Str("number", numbers).Str("id", m.ID).Msg("transactional send accepted")

	c.JSON(http.StatusOK, []gin.H{
		{"responseCode": "Message SuccessFully Submitted", "msgid": m.ID},
	})
}

// SeedInbound is the simulator's own endpoint for injecting a subscriber
// text: POST /simulate/inbound {"number": "...", "body": "..."}.
func (h *Handler) SeedInbound(c *gin.Context) {
	var req struct {
		Number string `json:"number" binding:"required"`
		Body   string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	m := h.sim.Seed(req.Number, req.Body)
	log.Info().Str("number", req.Number).Str("id", m.ID).Msg("inbound seeded")
	c.JSON(http.StatusOK, gin.H{"id": m.ID})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})

	// Primary gateway surface.
	router.POST("/send/", handler.PrimarySend)
	router.GET("/get_messages/", handler.GetMessages)
	router.GET("/get_history_api/", handler.GetHistory)

	// Transactional gateway surface.
	router.GET("/sendSMS", handler.TransactionalSend)

	// Simulator controls.
	router.POST("/simulate/inbound", handler.SeedInbound)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8090")

	sim := NewSimulator()
	handler := NewHandler(sim)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Simulator started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down simulator...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
