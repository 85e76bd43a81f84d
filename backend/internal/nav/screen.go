// Package nav is the navigation state machine: it decodes opaque callback
// tokens into typed commands, resolves transitions between screens, and
// renders screens into payloads. Everything here is a pure function of its
// inputs; mutations are requested as effects and executed by the dispatcher.
package nav

// ScreenKind enumerates the renderable states of the state machine.
type ScreenKind int

const (
	ScreenWelcome ScreenKind = iota
	ScreenMainMenu
	ScreenWalletsList
	ScreenWalletDetail
	ScreenManageWallet
	ScreenSellAndManage
	ScreenSettings
	ScreenLanguagePicker
	ScreenHelp
	ScreenConnectPrompt
	ScreenDepositPrompt
	ScreenWithdrawAllPrompt
	ScreenWithdrawXPrompt
	ScreenCoinLookup
	ScreenChartLink
	ScreenBuyChoice
)

// Screen identifies a render target. Index addresses a wallet for the wallet
// screens; Address carries a coin address for lookup screens; Amount is the
// chosen buy amount ("x" means free choice).
//
// Notice is a transient banner: a locale key plus arguments, rendered above
// the screen body exactly once. Sessions store screens with the notice
// stripped, so re-renders never repeat a notice (or a wallet secret).
type Screen struct {
	Kind       ScreenKind
	Index      int
	Address    string
	Amount     string
	Notice     string
	NoticeArgs []string
}

// WithNotice returns a copy of s carrying the given banner.
func (s Screen) WithNotice(key string, args ...string) Screen {
	s.Notice = key
	s.NoticeArgs = args
	return s
}

// Stripped returns s without its transient banner.
func (s Screen) Stripped() Screen {
	s.Notice = ""
	s.NoticeArgs = nil
	return s
}

func Welcome() Screen                { return Screen{Kind: ScreenWelcome} }
func MainMenu() Screen               { return Screen{Kind: ScreenMainMenu} }
func WalletsList() Screen            { return Screen{Kind: ScreenWalletsList} }
func WalletDetail(i int) Screen      { return Screen{Kind: ScreenWalletDetail, Index: i} }
func ManageWallet(i int) Screen      { return Screen{Kind: ScreenManageWallet, Index: i} }
func SellAndManage(i int) Screen     { return Screen{Kind: ScreenSellAndManage, Index: i} }
func Settings() Screen               { return Screen{Kind: ScreenSettings} }
func LanguagePicker() Screen         { return Screen{Kind: ScreenLanguagePicker} }
func Help() Screen                   { return Screen{Kind: ScreenHelp} }
func ConnectPrompt() Screen          { return Screen{Kind: ScreenConnectPrompt} }
func DepositPrompt(i int) Screen     { return Screen{Kind: ScreenDepositPrompt, Index: i} }
func WithdrawAllPrompt(i int) Screen { return Screen{Kind: ScreenWithdrawAllPrompt, Index: i} }
func WithdrawXPrompt(i int) Screen   { return Screen{Kind: ScreenWithdrawXPrompt, Index: i} }
func CoinLookup(addr string) Screen  { return Screen{Kind: ScreenCoinLookup, Address: addr} }
func ChartLink(addr string) Screen   { return Screen{Kind: ScreenChartLink, Address: addr} }
func BuyChoice(amount, addr string) Screen {
	return Screen{Kind: ScreenBuyChoice, Amount: amount, Address: addr}
}

// Clamp degrades a wallet-indexed screen whose index no longer fits the
// registry to the wallet list with an invalid-index banner. This is the
// guard against stale indices after a concurrent delete.
func Clamp(s Screen, walletCount int) Screen {
	if s.references() && (s.Index < 0 || s.Index >= walletCount) {
		return WalletsList().WithNotice("notice.invalid_index")
	}
	return s
}

// references reports whether the screen addresses a wallet by index.
func (s Screen) references() bool {
	switch s.Kind {
	case ScreenWalletDetail, ScreenManageWallet, ScreenSellAndManage,
		ScreenDepositPrompt, ScreenWithdrawAllPrompt, ScreenWithdrawXPrompt:
		return true
	}
	return false
}
