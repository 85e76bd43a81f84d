package nav

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownToken marks a token outside the grammar. It is never fatal:
// the dispatcher answers it by re-rendering the current screen.
var ErrUnknownToken = errors.New("unknown navigation token")

// CommandKind enumerates the typed navigation commands the token grammar
// can encode.
type CommandKind int

const (
	CmdMainMenu CommandKind = iota
	CmdWallets
	CmdViewWallet
	CmdNewWallet
	CmdConnectWallet
	CmdDeleteWalletMenu // bare "deletewallet": confirm screen for the current wallet
	CmdDeleteWallet
	CmdSettings
	CmdChangeLanguage
	CmdSetLanguage
	CmdSellManage
	CmdDeposit
	CmdWithdrawAll
	CmdWithdrawX
	CmdDisconnect
	CmdBuy
	CmdChart
	CmdRefresh
	CmdCancel
	CmdHelp
)

// Command is a decoded navigation token.
type Command struct {
	Kind    CommandKind
	Index   int    // wallet index commands
	Code    string // CmdSetLanguage
	Address string // coin commands
	Amount  string // CmdBuy: decimal text or "x"
}

// ParseToken decodes an opaque callback token into a typed command.
// Structurally malformed tokens fail with ErrUnknownToken; they must never
// reach dispatch as partially-decoded commands.
func ParseToken(token string) (Command, error) {
	switch token {
	case "mainmenu":
		return Command{Kind: CmdMainMenu}, nil
	case "wallets", "viewwallets":
		return Command{Kind: CmdWallets}, nil
	case "newwallet":
		return Command{Kind: CmdNewWallet}, nil
	case "connectwallet":
		return Command{Kind: CmdConnectWallet}, nil
	case "deletewallet":
		return Command{Kind: CmdDeleteWalletMenu}, nil
	case "settings":
		return Command{Kind: CmdSettings}, nil
	case "change_language":
		return Command{Kind: CmdChangeLanguage}, nil
	case "help":
		return Command{Kind: CmdHelp}, nil
	}

	// The cancel escape hatch accepts any suffix.
	if strings.HasPrefix(token, "cancel_") && len(token) > len("cancel_") {
		return Command{Kind: CmdCancel}, nil
	}

	if code, ok := strings.CutPrefix(token, "set_lang_"); ok {
		if !validLangCode(code) {
			return Command{}, ErrUnknownToken
		}
		return Command{Kind: CmdSetLanguage, Code: code}, nil
	}

	for prefix, kind := range indexedTokens {
		if rest, ok := strings.CutPrefix(token, prefix); ok {
			index, err := strconv.Atoi(rest)
			if err != nil || index < 0 {
				return Command{}, ErrUnknownToken
			}
			return Command{Kind: kind, Index: index}, nil
		}
	}

	for prefix, kind := range addressTokens {
		if addr, ok := strings.CutPrefix(token, prefix); ok {
			if addr == "" {
				return Command{}, ErrUnknownToken
			}
			return Command{Kind: kind, Address: addr}, nil
		}
	}

	if rest, ok := strings.CutPrefix(token, "buy_"); ok {
		// buy_<amount|x>_<address>; the address may itself contain
		// underscores, so split only once.
		amount, addr, found := strings.Cut(rest, "_")
		if !found || addr == "" {
			return Command{}, ErrUnknownToken
		}
		if amount != "x" {
			d, err := decimal.NewFromString(amount)
			if err != nil || !d.IsPositive() {
				return Command{}, ErrUnknownToken
			}
		}
		return Command{Kind: CmdBuy, Amount: amount, Address: addr}, nil
	}

	return Command{}, ErrUnknownToken
}

var indexedTokens = map[string]CommandKind{
	"viewwallet_":   CmdViewWallet,
	"deletewallet_": CmdDeleteWallet,
	"sell_manage_":  CmdSellManage,
	"deposit_":      CmdDeposit,
	"withdraw_all_": CmdWithdrawAll,
	"withdraw_x_":   CmdWithdrawX,
	"disconnect_":   CmdDisconnect,
}

var addressTokens = map[string]CommandKind{
	"chart_":   CmdChart,
	"refresh_": CmdRefresh,
}

func validLangCode(code string) bool {
	if len(code) < 2 || len(code) > 5 {
		return false
	}
	for _, r := range code {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
