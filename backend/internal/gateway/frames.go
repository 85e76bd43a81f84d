package gateway

import (
	"github.com/user/tonpilot/backend/internal/nav"
	"github.com/user/tonpilot/backend/internal/ticker"
)

// InboundFrame is one message from a chat client. Type selects which of the
// remaining fields are meaningful.
type InboundFrame struct {
	Type       string   `json:"type"` // "command", "navigation" or "free_text"
	Name       string   `json:"name,omitempty"`
	Args       []string `json:"args,omitempty"`
	Token      string   `json:"token,omitempty"`
	Text       string   `json:"text,omitempty"`
	MessageRef string   `json:"message_ref,omitempty"`
}

// OutboundFrame is one message to a chat client: a screen render, an
// acknowledgment, or a price update.
type OutboundFrame struct {
	Type       string              `json:"type"` // "render", "ack" or "price"
	MessageRef string              `json:"message_ref,omitempty"`
	Text       string              `json:"text,omitempty"`
	Controls   [][]nav.Control     `json:"controls,omitempty"`
	Price      *ticker.PriceUpdate `json:"price,omitempty"`
}
