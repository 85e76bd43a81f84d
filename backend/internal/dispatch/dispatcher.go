// Package dispatch routes inbound chat events through the navigation state
// machine and the wallet registry, and turns the outcome into exactly one
// render instruction or acknowledgment per event. No inbound event, however
// malformed, may crash a session or go unanswered.
package dispatch

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/user/tonpilot/backend/internal/locale"
	"github.com/user/tonpilot/backend/internal/models"
	"github.com/user/tonpilot/backend/internal/nav"
	"github.com/user/tonpilot/backend/internal/registry"
	"github.com/user/tonpilot/backend/internal/session"
	"github.com/user/tonpilot/backend/internal/txbuilder"
)

// EventKind distinguishes the three inbound event shapes the transport
// delivers.
type EventKind int

const (
	EventCommand EventKind = iota
	EventNavigation
	EventFreeText
)

// Event is one inbound interaction from the transport.
type Event struct {
	Kind       EventKind
	UserID     string
	Name       string   // EventCommand: command name without the slash
	Args       []string // EventCommand arguments
	Token      string   // EventNavigation callback token
	Text       string   // EventFreeText body
	MessageRef string   // message to edit in place, if any
}

// InstructionKind is the outcome type of handling an event.
type InstructionKind int

const (
	// InstructionRender tells the transport to draw (or redraw) a message.
	InstructionRender InstructionKind = iota
	// InstructionAck tells the transport to acknowledge the interaction
	// without touching the message (nothing changed).
	InstructionAck
)

// Instruction is the single outbound effect of one event.
type Instruction struct {
	Kind       InstructionKind
	MessageRef string
	Text       string
	Controls   [][]nav.Control
}

// Settler is the external settlement collaborator.
type Settler interface {
	Submit(ctx context.Context, req *models.TransactionRequest) (*models.SettlementResult, error)
}

// Dispatcher wires the engine together.
type Dispatcher struct {
	reg      *registry.Registry
	sessions *session.Store
	builder  *txbuilder.Builder
	settler  Settler
	renderer *nav.Renderer
	locales  *locale.Store
	log      *zap.Logger
}

// New builds a dispatcher over the given collaborators.
func New(reg *registry.Registry, sessions *session.Store, builder *txbuilder.Builder,
	settler Settler, renderer *nav.Renderer, locales *locale.Store, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		reg:      reg,
		sessions: sessions,
		builder:  builder,
		settler:  settler,
		renderer: renderer,
		locales:  locales,
		log:      log,
	}
}

// Handle processes one inbound event and always returns an instruction.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) Instruction {
	switch ev.Kind {
	case EventCommand:
		return d.handleCommand(ctx, ev)
	case EventNavigation:
		return d.handleNavigation(ctx, ev)
	case EventFreeText:
		return d.handleFreeText(ctx, ev)
	}
	_, cur := d.sessions.Snapshot(ev.UserID)
	return d.finish(ev, cur)
}

func (d *Dispatcher) handleCommand(ctx context.Context, ev Event) Instruction {
	_, cur := d.sessions.Snapshot(ev.UserID)
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ev.Name), "/"))

	switch name {
	case "start":
		return d.finish(ev, nav.Welcome())
	case "home":
		return d.finish(ev, nav.MainMenu())
	case "help":
		return d.finish(ev, nav.Help())

	case "connect":
		if len(ev.Args) < 2 {
			return d.finish(ev, cur.WithNotice("notice.usage_connect"))
		}
		index, w, err := d.reg.ConnectWallet(ev.UserID, ev.Args[0], ev.Args[1])
		if err != nil {
			return d.finish(ev, cur.WithNotice("notice.usage_connect"))
		}
		// The one render allowed to carry the secret.
		return d.finish(ev, nav.WalletDetail(index).WithNotice("notice.wallet_secret", w.Secret))

	case "addposition":
		return d.handleAddPosition(ev, cur)

	case "buy":
		return d.handleTrade(ctx, ev, cur, models.Buy, "notice.usage_buy")
	case "sell":
		return d.handleTrade(ctx, ev, cur, models.Sell, "notice.usage_sell")
	}

	return d.finish(ev, cur.WithNotice("notice.unknown_input"))
}

func (d *Dispatcher) handleAddPosition(ev Event, cur nav.Screen) Instruction {
	if len(ev.Args) < 3 {
		return d.finish(ev, cur.WithNotice("notice.usage_addposition"))
	}
	index, err := strconv.Atoi(ev.Args[0])
	if err != nil {
		return d.finish(ev, cur.WithNotice("notice.usage_addposition"))
	}
	asset := strings.ToUpper(strings.TrimSpace(ev.Args[1]))
	amount, err := decimal.NewFromString(ev.Args[2])
	if err != nil {
		return d.finish(ev, cur.WithNotice("notice.invalid_amount"))
	}

	switch err := d.reg.AddPosition(ev.UserID, index, asset, amount); {
	case errors.Is(err, registry.ErrIndexOutOfRange):
		return d.finish(ev, nav.WalletsList().WithNotice("notice.invalid_index"))
	case errors.Is(err, registry.ErrInvalidInput):
		return d.finish(ev, cur.WithNotice("notice.invalid_amount"))
	case err != nil:
		return d.finish(ev, cur.WithNotice("notice.unknown_input"))
	}
	return d.finish(ev, nav.WalletDetail(index).
		WithNotice("notice.position_added", amount.String(), asset, strconv.Itoa(index)))
}

// handleTrade validates a /buy or /sell command, builds the settlement
// request and submits it. The collaborator call happens with no per-user
// lock held; a failure leaves registry and session untouched.
func (d *Dispatcher) handleTrade(ctx context.Context, ev Event, cur nav.Screen,
	direction models.Direction, usageKey string) Instruction {
	if len(ev.Args) < 2 {
		return d.finish(ev, cur.WithNotice(usageKey))
	}

	req, err := d.builder.BuildRequest(direction, ev.Args[0], ev.Args[1])
	switch {
	case errors.Is(err, txbuilder.ErrInvalidAmount):
		return d.finish(ev, cur.WithNotice("notice.invalid_amount"))
	case errors.Is(err, txbuilder.ErrInvalidDestination):
		return d.finish(ev, cur.WithNotice("notice.invalid_destination"))
	case err != nil:
		return d.finish(ev, cur.WithNotice(usageKey))
	}

	result, err := d.settler.Submit(ctx, req)
	if err != nil {
		d.log.Warn("settlement submit failed",
			zap.String("user", ev.UserID), zap.String("request_id", req.ID.String()), zap.Error(err))
		return d.finish(ev, cur.WithNotice("notice.settlement_err", err.Error()))
	}
	if !result.OK {
		// Collaborator errors are surfaced verbatim.
		return d.finish(ev, cur.WithNotice("notice.settlement_err", result.Details))
	}
	// Positions are deliberately not adjusted on settlement success; only
	// /addposition touches them.
	return d.finish(ev, cur.WithNotice("notice.settlement_ok", result.Details))
}

func (d *Dispatcher) handleNavigation(ctx context.Context, ev Event) Instruction {
	_, cur := d.sessions.Snapshot(ev.UserID)

	cmd, err := nav.ParseToken(ev.Token)
	if err != nil {
		// Unknown tokens re-render the current screen; suppression turns
		// that into an acknowledgment when nothing changed.
		d.log.Debug("unknown navigation token",
			zap.String("user", ev.UserID), zap.String("token", ev.Token))
		return d.finish(ev, cur)
	}

	res := nav.Resolve(cur, cmd, d.reg.Count(ev.UserID))
	switch res.Effect {
	case nav.EffectCreateWallet:
		index, w, err := d.reg.CreateWallet(ctx, ev.UserID)
		if err != nil {
			return d.finish(ev, cur.WithNotice("notice.generation_failed", err.Error()))
		}
		return d.finish(ev, nav.WalletDetail(index).WithNotice("notice.wallet_secret", w.Secret))

	case nav.EffectDeleteWallet:
		remaining, err := d.reg.DeleteWallet(ev.UserID, res.Index)
		if err != nil {
			return d.finish(ev, nav.WalletsList().WithNotice("notice.invalid_index"))
		}
		if remaining == 0 {
			// No wallets left: the session snaps back to Welcome.
			return d.finish(ev, nav.Welcome().WithNotice("notice.wallet_deleted"))
		}
		return d.finish(ev, nav.WalletsList().WithNotice("notice.wallet_deleted"))

	case nav.EffectSetLocale:
		if !d.locales.Has(res.Locale) {
			return d.finish(ev, cur.WithNotice("notice.language_unknown"))
		}
		d.sessions.SetLocale(ev.UserID, res.Locale)
		return d.finish(ev, nav.Settings().WithNotice("notice.language_set"))
	}

	return d.finish(ev, res.Screen)
}

func (d *Dispatcher) handleFreeText(ctx context.Context, ev Event) Instruction {
	text := strings.TrimSpace(ev.Text)

	if strings.HasPrefix(text, "/") {
		fields := strings.Fields(text)
		cmd := ev
		cmd.Kind = EventCommand
		cmd.Name = fields[0]
		cmd.Args = fields[1:]
		return d.handleCommand(ctx, cmd)
	}

	if looksLikeCoinAddress(text) {
		return d.finish(ev, nav.CoinLookup(text))
	}

	_, cur := d.sessions.Snapshot(ev.UserID)
	return d.finish(ev, cur.WithNotice("notice.unknown_input"))
}

// finish renders the screen, commits the session, and emits the outbound
// instruction. The session is updated only after the payload exists, so a
// failure earlier in the pipeline leaves the previous state intact.
func (d *Dispatcher) finish(ev Event, screen nav.Screen) Instruction {
	loc, _ := d.sessions.Snapshot(ev.UserID)
	wallets := d.reg.ListWallets(ev.UserID)

	screen = nav.Clamp(screen, len(wallets))
	payload := d.renderer.Render(screen, wallets, loc)

	if !d.sessions.Commit(ev.UserID, screen, payload) {
		return Instruction{Kind: InstructionAck, MessageRef: ev.MessageRef}
	}

	ref := ev.MessageRef
	if ref == "" {
		ref = uuid.NewString()
	}
	return Instruction{
		Kind:       InstructionRender,
		MessageRef: ref,
		Text:       payload.Text,
		Controls:   payload.Controls,
	}
}

// looksLikeCoinAddress accepts raw-form addresses ("0:" plus hex) and
// friendly 48-character encodings. Anything else is treated as chatter.
func looksLikeCoinAddress(text string) bool {
	if strings.ContainsAny(text, " \t\n") {
		return false
	}
	if strings.HasPrefix(text, "0:") && len(text) > 10 {
		return true
	}
	return len(text) == 48
}
