package nav

// EffectKind names a registry or session mutation a transition requires.
// Resolve never mutates anything itself; the dispatcher executes the effect
// and then decides the final screen from its outcome.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectCreateWallet
	EffectDeleteWallet
	EffectSetLocale
)

// Resolution is the outcome of resolving one navigation command.
// Screen is meaningful only when Effect is EffectNone.
type Resolution struct {
	Screen Screen
	Effect EffectKind
	Index  int    // EffectDeleteWallet target
	Locale string // EffectSetLocale target
}

func stay(s Screen) Resolution       { return Resolution{Screen: s} }
func mutate(e EffectKind) Resolution { return Resolution{Effect: e} }

// Resolve computes the next screen (or required effect) for a command,
// given the current screen and the user's wallet count. Identical inputs
// always produce identical resolutions.
func Resolve(current Screen, cmd Command, walletCount int) Resolution {
	switch cmd.Kind {
	case CmdMainMenu:
		return stay(MainMenu())
	case CmdCancel:
		// Universal escape hatch, legal from any state.
		return stay(MainMenu())
	case CmdWallets:
		return stay(WalletsList())
	case CmdHelp:
		return stay(Help())
	case CmdSettings:
		return stay(Settings())
	case CmdChangeLanguage:
		return stay(LanguagePicker())
	case CmdConnectWallet:
		return stay(ConnectPrompt())

	case CmdNewWallet:
		return mutate(EffectCreateWallet)

	case CmdSetLanguage:
		return Resolution{Effect: EffectSetLocale, Locale: cmd.Code}

	case CmdViewWallet:
		if cmd.Index >= walletCount {
			return stay(WalletsList().WithNotice("notice.invalid_index"))
		}
		return stay(WalletDetail(cmd.Index))

	case CmdDeleteWalletMenu:
		// The bare token relies on the current screen to know which wallet
		// is being managed; anywhere else it falls back to the list.
		if current.references() && current.Index < walletCount {
			return stay(ManageWallet(current.Index))
		}
		return stay(WalletsList().WithNotice("notice.invalid_index"))

	case CmdDeleteWallet, CmdDisconnect:
		if cmd.Index >= walletCount {
			return stay(WalletsList().WithNotice("notice.invalid_index"))
		}
		return Resolution{Effect: EffectDeleteWallet, Index: cmd.Index}

	case CmdSellManage:
		if cmd.Index >= walletCount {
			return stay(WalletsList().WithNotice("notice.invalid_index"))
		}
		return stay(SellAndManage(cmd.Index))

	case CmdDeposit:
		if cmd.Index >= walletCount {
			return stay(WalletsList().WithNotice("notice.invalid_index"))
		}
		return stay(DepositPrompt(cmd.Index))

	case CmdWithdrawAll:
		if cmd.Index >= walletCount {
			return stay(WalletsList().WithNotice("notice.invalid_index"))
		}
		return stay(WithdrawAllPrompt(cmd.Index))

	case CmdWithdrawX:
		if cmd.Index >= walletCount {
			return stay(WalletsList().WithNotice("notice.invalid_index"))
		}
		return stay(WithdrawXPrompt(cmd.Index))

	case CmdBuy:
		return stay(BuyChoice(cmd.Amount, cmd.Address))
	case CmdChart:
		return stay(ChartLink(cmd.Address))
	case CmdRefresh:
		return stay(CoinLookup(cmd.Address))
	}

	// Unreachable for commands produced by ParseToken; re-render in place.
	return stay(current)
}
