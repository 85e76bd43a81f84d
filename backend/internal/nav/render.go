package nav

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/user/tonpilot/backend/internal/locale"
	"github.com/user/tonpilot/backend/internal/models"
)

// Control is one pressable button: a visible label and the opaque token the
// transport feeds back on press. The controls emitted with screen N are the
// only legal tokens reachable from N.
type Control struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Payload is a fully rendered screen: text plus rows of controls.
type Payload struct {
	Text     string      `json:"text"`
	Controls [][]Control `json:"controls"`
}

// Equal reports whether two payloads would produce identical messages.
// Used for redundant re-render suppression.
func (p Payload) Equal(o Payload) bool {
	if p.Text != o.Text || len(p.Controls) != len(o.Controls) {
		return false
	}
	for i, row := range p.Controls {
		if len(row) != len(o.Controls[i]) {
			return false
		}
		for j, c := range row {
			if c != o.Controls[i][j] {
				return false
			}
		}
	}
	return true
}

// PriceSource supplies current prices for coin lookup screens.
type PriceSource interface {
	Price(address string) float64
}

// Renderer turns screens into payloads. Identical (screen, wallet snapshot,
// locale) inputs always render identical payloads; only the price source can
// make a refresh differ.
type Renderer struct {
	locales *locale.Store
	prices  PriceSource
}

// NewRenderer builds a renderer over the given locale store and price feed.
func NewRenderer(locales *locale.Store, prices PriceSource) *Renderer {
	return &Renderer{locales: locales, prices: prices}
}

// Render produces the payload for a screen. A wallet-indexed screen whose
// index no longer fits the snapshot degrades to the wallet list with an
// invalid-index banner instead of failing.
func (r *Renderer) Render(s Screen, wallets []models.Wallet, code string) Payload {
	s = Clamp(s, len(wallets))

	msg := func(key string) string { return r.locales.Lookup(code, key) }

	var body string
	var controls [][]Control

	switch s.Kind {
	case ScreenWelcome:
		body = msg("welcome")
		controls = [][]Control{
			{{msg("btn.newwallet"), "newwallet"}, {msg("btn.connectwallet"), "connectwallet"}},
			{{msg("btn.help"), "help"}},
		}

	case ScreenMainMenu:
		body = msg("mainmenu.title")
		controls = [][]Control{
			{{msg("btn.wallets"), "wallets"}},
			{{msg("btn.newwallet"), "newwallet"}, {msg("btn.connectwallet"), "connectwallet"}},
			{{msg("btn.settings"), "settings"}, {msg("btn.help"), "help"}},
		}

	case ScreenWalletsList:
		if len(wallets) == 0 {
			body = msg("wallets.empty")
		} else {
			var b strings.Builder
			fmt.Fprintf(&b, msg("wallets.title"), len(wallets))
			for i, w := range wallets {
				fmt.Fprintf(&b, "\n  #%d  %s", i, shortAddr(w.Address))
			}
			body = b.String()
		}
		for i := range wallets {
			controls = append(controls, []Control{
				{fmt.Sprintf(msg("btn.wallet"), i), "viewwallet_" + strconv.Itoa(i)},
			})
		}
		controls = append(controls,
			[]Control{{msg("btn.newwallet"), "newwallet"}, {msg("btn.connectwallet"), "connectwallet"}},
			[]Control{{msg("btn.mainmenu"), "mainmenu"}},
		)

	case ScreenWalletDetail:
		w := wallets[s.Index]
		var b strings.Builder
		fmt.Fprintf(&b, msg("wallet.title"), s.Index, w.Address)
		if len(w.Positions) == 0 {
			b.WriteString("\n" + msg("wallet.no_positions"))
		} else {
			b.WriteString("\n" + msg("wallet.positions"))
			for _, asset := range sortedAssets(w) {
				fmt.Fprintf(&b, "\n"+msg("wallet.position"), asset, w.Positions[asset].String())
			}
		}
		body = b.String()
		i := strconv.Itoa(s.Index)
		controls = [][]Control{
			{{msg("btn.sell_manage"), "sell_manage_" + i}, {msg("btn.deposit"), "deposit_" + i}},
			{{msg("btn.delete"), "deletewallet"}},
			{{msg("btn.back"), "viewwallets"}, {msg("btn.mainmenu"), "mainmenu"}},
		}

	case ScreenManageWallet:
		w := wallets[s.Index]
		body = fmt.Sprintf(msg("manage.title"), s.Index, shortAddr(w.Address))
		i := strconv.Itoa(s.Index)
		controls = [][]Control{
			{{msg("btn.confirm_delete"), "deletewallet_" + i}},
			{{msg("btn.cancel"), "cancel_delete"}},
		}

	case ScreenSellAndManage:
		w := wallets[s.Index]
		body = fmt.Sprintf(msg("sell.title"), s.Index, shortAddr(w.Address))
		i := strconv.Itoa(s.Index)
		controls = [][]Control{
			{{msg("btn.withdraw_all"), "withdraw_all_" + i}, {msg("btn.withdraw_x"), "withdraw_x_" + i}},
			{{msg("btn.disconnect"), "disconnect_" + i}},
			{{msg("btn.back"), "viewwallet_" + i}, {msg("btn.mainmenu"), "mainmenu"}},
		}

	case ScreenSettings:
		body = fmt.Sprintf(msg("settings.title"), code)
		controls = [][]Control{
			{{msg("btn.change_language"), "change_language"}},
			{{msg("btn.mainmenu"), "mainmenu"}},
		}

	case ScreenLanguagePicker:
		body = msg("language.title")
		var row []Control
		for _, c := range r.locales.Codes() {
			row = append(row, Control{strings.ToUpper(c), "set_lang_" + c})
		}
		controls = [][]Control{row, {{msg("btn.cancel"), "cancel_language"}}}

	case ScreenHelp:
		body = msg("help.text")
		controls = [][]Control{{{msg("btn.mainmenu"), "mainmenu"}}}

	case ScreenConnectPrompt:
		body = msg("connect.prompt")
		controls = [][]Control{{{msg("btn.cancel"), "cancel_connect"}}}

	case ScreenDepositPrompt:
		w := wallets[s.Index]
		body = fmt.Sprintf(msg("deposit.prompt"), s.Index, w.Address)
		controls = [][]Control{{{msg("btn.cancel"), "cancel_deposit"}}}

	case ScreenWithdrawAllPrompt:
		w := wallets[s.Index]
		body = fmt.Sprintf(msg("withdraw_all.prompt"), s.Index, w.Address)
		controls = [][]Control{{{msg("btn.cancel"), "cancel_withdraw"}}}

	case ScreenWithdrawXPrompt:
		w := wallets[s.Index]
		body = fmt.Sprintf(msg("withdraw_x.prompt"), s.Index, w.Address)
		controls = [][]Control{{{msg("btn.cancel"), "cancel_withdraw"}}}

	case ScreenCoinLookup:
		body = fmt.Sprintf(msg("coin.title"), shortAddr(s.Address), r.prices.Price(s.Address))
		controls = [][]Control{
			{
				{fmt.Sprintf(msg("btn.buy"), "1"), "buy_1_" + s.Address},
				{fmt.Sprintf(msg("btn.buy"), "5"), "buy_5_" + s.Address},
				{msg("btn.buy_custom"), "buy_x_" + s.Address},
			},
			{{msg("btn.chart"), "chart_" + s.Address}, {msg("btn.refresh"), "refresh_" + s.Address}},
			{{msg("btn.mainmenu"), "mainmenu"}},
		}

	case ScreenChartLink:
		body = fmt.Sprintf(msg("chart.text"), shortAddr(s.Address), s.Address)
		controls = [][]Control{
			{{msg("btn.refresh"), "refresh_" + s.Address}},
			{{msg("btn.mainmenu"), "mainmenu"}},
		}

	case ScreenBuyChoice:
		if s.Amount == "x" {
			body = fmt.Sprintf(msg("buychoice.custom"), shortAddr(s.Address), s.Address)
		} else {
			body = fmt.Sprintf(msg("buychoice.fixed"), s.Amount, shortAddr(s.Address), s.Amount, s.Address)
		}
		controls = [][]Control{{{msg("btn.cancel"), "cancel_buy"}}}
	}

	text := body
	if s.Notice != "" {
		args := make([]any, len(s.NoticeArgs))
		for i, a := range s.NoticeArgs {
			args[i] = a
		}
		text = fmt.Sprintf(msg(s.Notice), args...) + "\n\n" + body
	}

	return Payload{Text: text, Controls: controls}
}

func sortedAssets(w models.Wallet) []string {
	assets := make([]string, 0, len(w.Positions))
	for asset := range w.Positions {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

// shortAddr truncates long chain addresses for display.
func shortAddr(addr string) string {
	if len(addr) <= 16 {
		return addr
	}
	return addr[:10] + "…" + addr[len(addr)-4:]
}
