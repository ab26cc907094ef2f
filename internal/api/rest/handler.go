package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/mapping"
	"github.com/crosslink-crm/crosslink/internal/orchestrator"
)

// Handler exposes the sync pipeline over HTTP
type Handler struct {
	syncer orchestrator.Syncer
}

// NewHandler creates a new REST handler
func NewHandler(syncer orchestrator.Syncer) *Handler {
	return &Handler{syncer: syncer}
}

// webhookRequest is the body of a single inbound webhook notification
type webhookRequest struct {
	EventType domain.EventType       `json:"event_type" binding:"required"`
	ContactID string                 `json:"contact_id"`
	Record    map[string]interface{} `json:"record"`
}

// batchWebhookRequest is the body of a webhook batch
type batchWebhookRequest struct {
	Events []webhookRequest `json:"events" binding:"required"`
}

// batchItemResponse is one batch event's outcome
type batchItemResponse struct {
	Index  int                `json:"index"`
	Result *domain.SyncResult `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func parseSide(c *gin.Context) (domain.Side, bool) {
	side := domain.Side(c.Param("side"))
	if !side.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be \"a\" or \"b\""})
		return "", false
	}
	return side, true
}

// HandleWebhook processes one inbound notification
// POST /v1/webhooks/:tenant/:side
func (h *Handler) HandleWebhook(c *gin.Context) {
	side, ok := parseSide(c)
	if !ok {
		return
	}

	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := domain.WebhookEvent{
		Side:      side,
		EventType: req.EventType,
		ContactID: req.ContactID,
		Record:    req.Record,
	}

	result, err := h.syncer.HandleWebhookEvent(c.Request.Context(), c.Param("tenant"), event)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleWebhookBatch processes a batch of notifications concurrently
// POST /v1/webhooks/:tenant/:side/batch
func (h *Handler) HandleWebhookBatch(c *gin.Context) {
	side, ok := parseSide(c)
	if !ok {
		return
	}

	var req batchWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events := make([]domain.WebhookEvent, len(req.Events))
	for i, e := range req.Events {
		events[i] = domain.WebhookEvent{
			Side:      side,
			EventType: e.EventType,
			ContactID: e.ContactID,
			Record:    e.Record,
		}
	}

	results := h.syncer.ProcessWebhookBatch(c.Request.Context(), c.Param("tenant"), events)

	resp := make([]batchItemResponse, len(results))
	for i, r := range results {
		resp[i] = batchItemResponse{Index: r.Index, Result: r.Result}
		if r.Err != nil {
			resp[i].Error = r.Err.Error()
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": resp})
}

// TriggerFullSync runs a full reconciliation for one tenant
// POST /v1/tenants/:tenant/full-sync
func (h *Handler) TriggerFullSync(c *gin.Context) {
	stats, err := h.syncer.FullSync(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "stats": stats})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// validateRulesRequest carries a rule set to validate before saving
type validateRulesRequest struct {
	Rules []mapping.Rule `json:"rules" binding:"required"`
}

// ValidateRules checks a proposed rule set and reports every problem
// POST /v1/tenants/:tenant/rules/validate
func (h *Handler) ValidateRules(c *gin.Context) {
	var req validateRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	known := mapping.KnownFields(domain.SideA)
	for f := range mapping.KnownFields(domain.SideB) {
		known[f] = struct{}{}
	}

	ruleErrors := mapping.ValidateRules(req.Rules, known, known)
	resp := make([]gin.H, 0, len(ruleErrors))
	for _, re := range ruleErrors {
		resp = append(resp, gin.H{
			"source_field": re.SourceField,
			"target_field": re.TargetField,
			"reason":       re.Reason,
		})
	}
	c.JSON(http.StatusOK, gin.H{"valid": len(resp) == 0, "errors": resp})
}

// Healthz reports liveness
// GET /healthz
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownSide),
		errors.Is(err, domain.ErrUnknownEventType),
		errors.Is(err, domain.ErrMissingContactID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrContactNotFound),
		errors.Is(err, domain.ErrMappingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
