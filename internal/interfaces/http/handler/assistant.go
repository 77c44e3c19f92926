package handler

import (
	"github.com/clothshop/backend/internal/application/assistant"
	"github.com/clothshop/backend/internal/interfaces/http/dto"
	"github.com/clothshop/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AssistantHandler serves /assistant, the natural-language front end of the ledger
type AssistantHandler struct {
	BaseHandler
	agent *assistant.Agent
}

// NewAssistantHandler creates a new AssistantHandler. A nil agent answers 503.
func NewAssistantHandler(agent *assistant.Agent) *AssistantHandler {
	return &AssistantHandler{agent: agent}
}

// Chat handles POST /assistant/chat
func (h *AssistantHandler) Chat(c *gin.Context) {
	tenantID, ok := h.TenantID(c)
	if !ok {
		return
	}
	if !h.agent.Available() {
		h.HandleError(c, assistant.ErrUnavailable)
		return
	}
	var req dto.ChatRequest
	if !h.BindJSON(c, &req) {
		return
	}
	session := assistant.Session{TenantID: tenantID, RequestID: middleware.GetRequestID(c)}
	reply, err := h.agent.Chat(c.Request.Context(), session, req.Message)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reply)
}

// RegisterRoutes mounts the assistant routes
func (h *AssistantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/assistant/chat", h.Chat)
}
