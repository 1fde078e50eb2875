// Messenger webhook receiver. Facebook delivers page events here; we
// decode any embedded job ref, persist the sender→job link, then relay
// the event to the n8n workflow that runs the actual conversation.

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"go-fbauto-automation/internal/automation"
	"go-fbauto-automation/internal/models"

	"github.com/gin-gonic/gin"
)

type ContextStore interface {
	StoreJobContext(ctx context.Context, jc *models.JobContext) error
}

type Handler struct {
	verifyToken string
	relayURL    string
	store       ContextStore
	client      *http.Client
}

func NewHandler(verifyToken, relayURL string, store ContextStore) *Handler {
	return &Handler{
		verifyToken: verifyToken,
		relayURL:    relayURL,
		store:       store,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Verify answers Facebook's subscription handshake: echo hub.challenge
// when the verify token matches, 403 otherwise.
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		log.Println("✅ Webhook verified")
		c.String(http.StatusOK, challenge)
		return
	}
	log.Println("⚠️ Webhook verification failed: token mismatch")
	c.Status(http.StatusForbidden)
}

type messagingEvent struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Referral *referral `json:"referral,omitempty"`
	Postback *struct {
		Payload  string    `json:"payload"`
		Referral *referral `json:"referral,omitempty"`
	} `json:"postback,omitempty"`
	Message *struct {
		Text string `json:"text"`
	} `json:"message,omitempty"`
}

type referral struct {
	Ref    string `json:"ref"`
	Source string `json:"source"`
}

type pageEvent struct {
	Object string `json:"object"`
	Entry  []struct {
		Messaging []messagingEvent `json:"messaging"`
	} `json:"entry"`
}

// Receive handles POSTed page events. Always answers 200 EVENT_RECEIVED
// once the body parses; Facebook retries aggressively on anything else.
func (h *Handler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	var event pageEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("⚠️ Failed to parse webhook body: %v", err)
		c.Status(http.StatusBadRequest)
		return
	}
	if event.Object != "page" {
		c.Status(http.StatusNotFound)
		return
	}

	for _, entry := range event.Entry {
		for _, msg := range entry.Messaging {
			h.handleMessaging(c.Request.Context(), msg)
		}
	}

	h.relay(c.Request.Context(), body)
	c.String(http.StatusOK, "EVENT_RECEIVED")
}

func (h *Handler) handleMessaging(ctx context.Context, msg messagingEvent) {
	ref := msg.Referral
	if ref == nil && msg.Postback != nil {
		ref = msg.Postback.Referral
	}
	if ref == nil || ref.Ref == "" || msg.Sender.ID == "" {
		return
	}

	jobRef, err := automation.DecodeJobRef(ref.Ref)
	if err != nil {
		log.Printf("⚠️ Ignoring undecodable ref from %s: %v", msg.Sender.ID, err)
		return
	}

	payload, _ := json.Marshal(jobRef)
	jc := &models.JobContext{
		SenderID: msg.Sender.ID,
		JobID:    jobRef.JobID,
		Payload:  payload,
	}
	if err := h.store.StoreJobContext(ctx, jc); err != nil {
		log.Printf("❌ Failed to store job context for %s: %v", msg.Sender.ID, err)
		return
	}
	log.Printf("💬 Linked sender %s to job %s", msg.Sender.ID, jobRef.JobID)
}

// relay forwards the raw event to the workflow engine. Best effort: a
// dead relay must not make Facebook re-deliver the event.
func (h *Handler) relay(ctx context.Context, body []byte) {
	if h.relayURL == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.relayURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ Failed to build relay request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		log.Printf("⚠️ Relay to workflow engine failed: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		log.Printf("⚠️ Workflow engine answered %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
}
