package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/user/tonpilot/backend/internal/locale"
	"github.com/user/tonpilot/backend/internal/models"
	"github.com/user/tonpilot/backend/internal/nav"
	"github.com/user/tonpilot/backend/internal/registry"
	"github.com/user/tonpilot/backend/internal/session"
	"github.com/user/tonpilot/backend/internal/txbuilder"
)

type seqGen struct {
	mu   sync.Mutex
	n    int
	fail bool
}

func (g *seqGen) Generate(_ context.Context) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail {
		return "", "", errors.New("generator offline")
	}
	g.n++
	return fmt.Sprintf("0:addr%04d", g.n), fmt.Sprintf("tower lunar castle %d", g.n), nil
}

type fakeSettler struct {
	mu       sync.Mutex
	requests []*models.TransactionRequest
	result   *models.SettlementResult
	err      error
}

func (s *fakeSettler) Submit(_ context.Context, req *models.TransactionRequest) (*models.SettlementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type fixedPrices struct{}

func (fixedPrices) Price(string) float64 { return 2.5 }

type fixture struct {
	d        *Dispatcher
	reg      *registry.Registry
	sessions *session.Store
	settler  *fakeSettler
	gen      *seqGen
}

func newFixture() *fixture {
	gen := &seqGen{}
	reg := registry.New(gen, zap.NewNop())
	sessions := session.NewStore("en")
	locales := locale.NewStore("en")
	settler := &fakeSettler{result: &models.SettlementResult{OK: true, Details: "tx accepted"}}
	d := New(
		reg,
		sessions,
		txbuilder.New(decimal.RequireFromString("0.01")),
		settler,
		nav.NewRenderer(locales, fixedPrices{}),
		locales,
		zap.NewNop(),
	)
	return &fixture{d: d, reg: reg, sessions: sessions, settler: settler, gen: gen}
}

func navEvent(user, token string) Event {
	return Event{Kind: EventNavigation, UserID: user, Token: token, MessageRef: "m1"}
}

func cmdEvent(user, name string, args ...string) Event {
	return Event{Kind: EventCommand, UserID: user, Name: name, Args: args}
}

func TestStartRendersWelcome(t *testing.T) {
	f := newFixture()

	instr := f.d.Handle(context.Background(), cmdEvent("u1", "start"))
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render", instr.Kind)
	}
	if instr.Text == "" || len(instr.Controls) == 0 {
		t.Errorf("welcome render incomplete: %+v", instr)
	}
	if instr.MessageRef == "" {
		t.Error("render with no inbound ref got no generated ref")
	}
}

func TestDoublePressIsAcknowledged(t *testing.T) {
	f := newFixture()

	first := f.d.Handle(context.Background(), navEvent("u1", "mainmenu"))
	if first.Kind != InstructionRender {
		t.Fatalf("first press: kind = %v, want render", first.Kind)
	}
	second := f.d.Handle(context.Background(), navEvent("u1", "mainmenu"))
	if second.Kind != InstructionAck {
		t.Errorf("second press: kind = %v, want ack", second.Kind)
	}
	if second.MessageRef != "m1" {
		t.Errorf("ack ref = %q, want m1", second.MessageRef)
	}
}

func TestUnknownTokenNeverCrashes(t *testing.T) {
	f := newFixture()

	f.d.Handle(context.Background(), navEvent("u1", "mainmenu"))
	for _, token := range []string{"bogus", "viewwallet_abc", "", "buy_"} {
		instr := f.d.Handle(context.Background(), navEvent("u1", token))
		// Screen unchanged, so suppression answers with an ack.
		if instr.Kind != InstructionAck {
			t.Errorf("token %q: kind = %v, want ack", token, instr.Kind)
		}
	}
}

func TestNewWalletShowsSecretExactlyOnce(t *testing.T) {
	f := newFixture()

	instr := f.d.Handle(context.Background(), navEvent("u1", "newwallet"))
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render", instr.Kind)
	}
	w, err := f.reg.GetWallet("u1", 0)
	if err != nil {
		t.Fatalf("wallet not created: %v", err)
	}
	if !strings.Contains(instr.Text, w.Secret) {
		t.Fatalf("confirmation render is missing the secret: %q", instr.Text)
	}

	// Any later render of the same wallet no longer shows it.
	again := f.d.Handle(context.Background(), navEvent("u1", "viewwallet_0"))
	if again.Kind == InstructionRender && strings.Contains(again.Text, w.Secret) {
		t.Errorf("secret shown twice: %q", again.Text)
	}
}

func TestGenerationFailureKeepsScreen(t *testing.T) {
	f := newFixture()
	f.d.Handle(context.Background(), navEvent("u1", "mainmenu"))
	f.gen.fail = true

	instr := f.d.Handle(context.Background(), navEvent("u1", "newwallet"))
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render with failure notice", instr.Kind)
	}
	if f.reg.Count("u1") != 0 {
		t.Error("failed generation left a wallet behind")
	}
	_, screen := f.sessions.Snapshot("u1")
	if screen.Kind != nav.ScreenMainMenu {
		t.Errorf("session screen = %v, want main menu", screen.Kind)
	}
}

func TestConnectCommand(t *testing.T) {
	f := newFixture()

	usage := f.d.Handle(context.Background(), cmdEvent("u1", "connect", "0:abc"))
	if usage.Kind != InstructionRender {
		t.Fatalf("usage reply kind = %v", usage.Kind)
	}
	if f.reg.Count("u1") != 0 {
		t.Fatal("partial connect created a wallet")
	}

	instr := f.d.Handle(context.Background(), cmdEvent("u1", "connect", "0:abc", "tower lunar castle"))
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render", instr.Kind)
	}
	if !strings.Contains(instr.Text, "tower lunar castle") {
		t.Errorf("connect confirmation missing the secret: %q", instr.Text)
	}
	if f.reg.Count("u1") != 1 {
		t.Errorf("wallet count = %d, want 1", f.reg.Count("u1"))
	}
}

func TestDeleteLastWalletReturnsToWelcome(t *testing.T) {
	f := newFixture()
	f.d.Handle(context.Background(), navEvent("u1", "newwallet"))

	instr := f.d.Handle(context.Background(), navEvent("u1", "deletewallet_0"))
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render", instr.Kind)
	}
	_, screen := f.sessions.Snapshot("u1")
	if screen.Kind != nav.ScreenWelcome {
		t.Errorf("screen after deleting last wallet = %v, want welcome", screen.Kind)
	}
	if f.reg.Count("u1") != 0 {
		t.Errorf("count = %d, want 0", f.reg.Count("u1"))
	}
}

func TestDeleteWithRemainingWalletsShowsList(t *testing.T) {
	f := newFixture()
	f.d.Handle(context.Background(), navEvent("u1", "newwallet"))
	f.d.Handle(context.Background(), navEvent("u1", "newwallet"))

	f.d.Handle(context.Background(), navEvent("u1", "deletewallet_0"))
	_, screen := f.sessions.Snapshot("u1")
	if screen.Kind != nav.ScreenWalletsList {
		t.Errorf("screen = %v, want wallet list", screen.Kind)
	}
	if f.reg.Count("u1") != 1 {
		t.Errorf("count = %d, want 1", f.reg.Count("u1"))
	}
}

func TestStaleDeleteIndexDegrades(t *testing.T) {
	f := newFixture()
	f.d.Handle(context.Background(), navEvent("u1", "newwallet"))

	instr := f.d.Handle(context.Background(), navEvent("u1", "deletewallet_7"))
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render", instr.Kind)
	}
	if f.reg.Count("u1") != 1 {
		t.Error("stale index deleted a wallet")
	}
	_, screen := f.sessions.Snapshot("u1")
	if screen.Kind != nav.ScreenWalletsList {
		t.Errorf("screen = %v, want wallet list", screen.Kind)
	}
}

func TestSetLanguage(t *testing.T) {
	f := newFixture()

	f.d.Handle(context.Background(), navEvent("u1", "set_lang_ru"))
	code, screen := f.sessions.Snapshot("u1")
	if code != "ru" {
		t.Errorf("locale = %q, want ru", code)
	}
	if screen.Kind != nav.ScreenSettings {
		t.Errorf("screen = %v, want settings", screen.Kind)
	}

	// A syntactically valid but unknown code is rejected without changing
	// the stored locale.
	f.d.Handle(context.Background(), navEvent("u1", "set_lang_zz"))
	if code, _ := f.sessions.Snapshot("u1"); code != "ru" {
		t.Errorf("locale after unknown code = %q, want ru", code)
	}
}

func TestBuyCommandSubmitsSettlement(t *testing.T) {
	f := newFixture()

	instr := f.d.Handle(context.Background(), cmdEvent("u1", "buy", "100", "0:dest"))
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render", instr.Kind)
	}
	if len(f.settler.requests) != 1 {
		t.Fatalf("settler saw %d requests, want 1", len(f.settler.requests))
	}
	req := f.settler.requests[0]
	if req.Direction != models.Buy {
		t.Errorf("direction = %q, want buy", req.Direction)
	}
	if !req.NetAmount.Equal(decimal.NewFromInt(99)) {
		t.Errorf("net = %s, want 99 (1%% fee on 100)", req.NetAmount)
	}
	if !strings.Contains(instr.Text, "tx accepted") {
		t.Errorf("success details not surfaced: %q", instr.Text)
	}
}

func TestTradeFailureSurfacesDetailsVerbatim(t *testing.T) {
	f := newFixture()
	f.settler.result = &models.SettlementResult{OK: false, Details: `{"error":"insufficient liquidity"}`}

	instr := f.d.Handle(context.Background(), cmdEvent("u1", "sell", "10", "0:dest"))
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render", instr.Kind)
	}
	if !strings.Contains(instr.Text, `{"error":"insufficient liquidity"}`) {
		t.Errorf("failure details not verbatim: %q", instr.Text)
	}
	if len(f.settler.requests) != 1 || f.settler.requests[0].Direction != models.Sell {
		t.Errorf("sell request not submitted: %+v", f.settler.requests)
	}
}

func TestTradeTransportErrorDoesNotCrash(t *testing.T) {
	f := newFixture()
	f.settler.err = errors.New("connection refused")

	instr := f.d.Handle(context.Background(), cmdEvent("u1", "buy", "10", "0:dest"))
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render", instr.Kind)
	}
	if !strings.Contains(instr.Text, "connection refused") {
		t.Errorf("transport error not surfaced: %q", instr.Text)
	}
}

func TestTradeValidationSkipsSettler(t *testing.T) {
	f := newFixture()

	cases := [][]string{
		{"abc", "0:dest"},
		{"0", "0:dest"},
		{"-5", "0:dest"},
		{"10"},
	}
	for _, args := range cases {
		// Repeated identical notices may be suppressed to acks; the point is
		// that every event is answered and none reaches the settler.
		f.d.Handle(context.Background(), cmdEvent("u1", "buy", args...))
	}
	if len(f.settler.requests) != 0 {
		t.Errorf("settler saw %d requests for invalid input", len(f.settler.requests))
	}
}

func TestTradeLeavesPositionsUntouched(t *testing.T) {
	f := newFixture()
	f.d.Handle(context.Background(), navEvent("u1", "newwallet"))
	f.d.Handle(context.Background(), cmdEvent("u1", "addposition", "0", "TON", "5"))

	f.d.Handle(context.Background(), cmdEvent("u1", "buy", "100", "0:dest"))

	w, err := f.reg.GetWallet("u1", 0)
	if err != nil {
		t.Fatalf("GetWallet: %v", err)
	}
	if !w.Positions["TON"].Equal(decimal.NewFromInt(5)) {
		t.Errorf("settlement mutated positions: %s", w.Positions["TON"])
	}
}

func TestAddPositionCommand(t *testing.T) {
	f := newFixture()
	f.d.Handle(context.Background(), navEvent("u1", "newwallet"))

	instr := f.d.Handle(context.Background(), cmdEvent("u1", "addposition", "0", "ton", "2.5"))
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render", instr.Kind)
	}
	w, _ := f.reg.GetWallet("u1", 0)
	if !w.Positions["TON"].Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("position = %v, want TON 2.5 (asset uppercased)", w.Positions)
	}

	// Bad index degrades to the list; bad amount re-renders with a notice.
	f.d.Handle(context.Background(), cmdEvent("u1", "addposition", "9", "TON", "1"))
	_, screen := f.sessions.Snapshot("u1")
	if screen.Kind != nav.ScreenWalletsList {
		t.Errorf("screen after bad index = %v, want wallet list", screen.Kind)
	}
	f.d.Handle(context.Background(), cmdEvent("u1", "addposition", "0", "TON", "garbage"))
	w, _ = f.reg.GetWallet("u1", 0)
	if !w.Positions["TON"].Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("invalid amount changed a position: %v", w.Positions)
	}
}

func TestFreeTextCoinAddress(t *testing.T) {
	f := newFixture()

	instr := f.d.Handle(context.Background(), Event{
		Kind: EventFreeText, UserID: "u1", Text: "0:aabbccddeeff00112233",
	})
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render", instr.Kind)
	}
	_, screen := f.sessions.Snapshot("u1")
	if screen.Kind != nav.ScreenCoinLookup {
		t.Errorf("screen = %v, want coin lookup", screen.Kind)
	}
	if len(instr.Controls) == 0 {
		t.Error("coin lookup rendered no buy controls")
	}
}

func TestFreeTextSlashIsReparsedAsCommand(t *testing.T) {
	f := newFixture()

	f.d.Handle(context.Background(), Event{Kind: EventFreeText, UserID: "u1", Text: "/help"})
	_, screen := f.sessions.Snapshot("u1")
	if screen.Kind != nav.ScreenHelp {
		t.Errorf("screen = %v, want help", screen.Kind)
	}
}

func TestFreeTextChatterKeepsScreen(t *testing.T) {
	f := newFixture()
	f.d.Handle(context.Background(), navEvent("u1", "settings"))

	instr := f.d.Handle(context.Background(), Event{Kind: EventFreeText, UserID: "u1", Text: "hello there"})
	if instr.Kind != InstructionRender {
		t.Fatalf("kind = %v, want render with unknown-input notice", instr.Kind)
	}
	_, screen := f.sessions.Snapshot("u1")
	if screen.Kind != nav.ScreenSettings {
		t.Errorf("screen = %v, want settings", screen.Kind)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	f := newFixture()

	f.d.Handle(context.Background(), navEvent("u1", "newwallet"))
	f.d.Handle(context.Background(), navEvent("u2", "mainmenu"))

	if f.reg.Count("u2") != 0 {
		t.Error("u1's wallet leaked to u2")
	}
	_, s1 := f.sessions.Snapshot("u1")
	_, s2 := f.sessions.Snapshot("u2")
	if s1.Kind == s2.Kind {
		t.Errorf("sessions not isolated: both on %v", s1.Kind)
	}
}

func TestConcurrentEventsAlwaysAnswered(t *testing.T) {
	f := newFixture()
	tokens := []string{"mainmenu", "wallets", "newwallet", "settings", "help", "viewwallet_0", "bogus"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user%d", i%3)
			for _, token := range tokens {
				instr := f.d.Handle(context.Background(), navEvent(user, token))
				if instr.Kind != InstructionRender && instr.Kind != InstructionAck {
					t.Errorf("token %q: unexpected instruction kind %v", token, instr.Kind)
				}
			}
		}(i)
	}
	wg.Wait()
}
