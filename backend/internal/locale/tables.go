package locale

// tables holds the compiled-in message templates. Placeholders are fmt verbs
// filled in by the renderer. "en" must stay complete; other languages may be
// partial and fall back.
var tables = map[string]map[string]string{
	"en": {
		"welcome":             "Welcome! I manage TON wallets and buy/sell requests.\nCreate a new wallet or connect an existing one to get started.",
		"mainmenu.title":      "Main menu — what would you like to do?",
		"wallets.title":       "Your wallets (%d):",
		"wallets.empty":       "You have no wallets yet.",
		"wallet.title":        "Wallet #%d\nAddress: %s",
		"wallet.positions":    "Positions:",
		"wallet.position":     "  %s: %s",
		"wallet.no_positions": "No positions recorded.",
		"manage.title":        "Wallet #%d (%s)\nDeleting removes the wallet from this bot. It does not move funds.",
		"sell.title":          "Wallet #%d (%s)\nSell or manage this wallet:",
		"settings.title":      "Settings\nLanguage: %s",
		"language.title":      "Pick a language:",
		"help.text":           "Commands:\n/start - open the welcome screen\n/home - main menu\n/help - this message\n/connect <address> <secret> - connect an existing wallet\n/addposition <index> <asset> <amount> - record a holding\n/buy <amount> <destination> - buy TON coins\n/sell <amount> <source> - sell TON coins",
		"connect.prompt":      "Send /connect <address> <secret> to link an existing wallet.",
		"deposit.prompt":      "To deposit (buy) into wallet #%d, send:\n/buy <amount> %s",
		"withdraw_all.prompt": "To withdraw everything from wallet #%d, send:\n/sell <amount> %s\nusing your full balance as the amount.",
		"withdraw_x.prompt":   "To withdraw a custom amount from wallet #%d, send:\n/sell <amount> %s",
		"coin.title":          "Coin %s\nPrice: %.6f TON",
		"chart.text":          "Chart for %s:\nhttps://dexscreener.com/ton/%s",
		"buychoice.fixed":     "To buy %s TON of %s, send:\n/buy %s %s",
		"buychoice.custom":    "To buy a custom amount of %s, send:\n/buy <amount> %s",

		"btn.wallets":         "My wallets",
		"btn.newwallet":       "New wallet",
		"btn.connectwallet":   "Connect wallet",
		"btn.settings":        "Settings",
		"btn.help":            "Help",
		"btn.mainmenu":        "Main menu",
		"btn.back":            "Back",
		"btn.wallet":          "Wallet #%d",
		"btn.delete":          "Delete wallet",
		"btn.confirm_delete":  "Yes, delete",
		"btn.cancel":          "Cancel",
		"btn.change_language": "Change language",
		"btn.sell_manage":     "Sell & manage",
		"btn.deposit":         "Deposit",
		"btn.withdraw_all":    "Withdraw all",
		"btn.withdraw_x":      "Withdraw X",
		"btn.disconnect":      "Disconnect",
		"btn.chart":           "Chart",
		"btn.refresh":         "Refresh",
		"btn.buy":             "Buy %s",
		"btn.buy_custom":      "Buy X",

		"notice.invalid_index":       "That wallet no longer exists.",
		"notice.wallet_secret":       "Wallet ready. Save this secret now, it will not be shown again:\n%s",
		"notice.wallet_deleted":      "Wallet deleted.",
		"notice.language_set":        "Language updated.",
		"notice.language_unknown":    "That language is not available.",
		"notice.generation_failed":   "Could not generate a wallet: %s",
		"notice.settlement_ok":       "Transaction successful: %s",
		"notice.settlement_err":      "Error: %s",
		"notice.invalid_amount":      "That amount is not a positive number.",
		"notice.invalid_destination": "A destination address is required.",
		"notice.position_added":      "Recorded %s %s on wallet #%s.",
		"notice.usage_connect":       "Usage: /connect <address> <secret>",
		"notice.usage_addposition":   "Usage: /addposition <index> <asset> <amount>",
		"notice.usage_buy":           "Usage: /buy <amount> <destination_wallet>",
		"notice.usage_sell":          "Usage: /sell <amount> <source_wallet>",
		"notice.unknown_input":       "I did not understand that. Try /help.",
	},
	"es": {
		"welcome":             "¡Bienvenido! Gestiono billeteras TON y órdenes de compra/venta.\nCrea una billetera nueva o conecta una existente para empezar.",
		"mainmenu.title":      "Menú principal — ¿qué quieres hacer?",
		"wallets.title":       "Tus billeteras (%d):",
		"wallets.empty":       "Todavía no tienes billeteras.",
		"wallet.title":        "Billetera #%d\nDirección: %s",
		"settings.title":      "Ajustes\nIdioma: %s",
		"language.title":      "Elige un idioma:",
		"btn.wallets":         "Mis billeteras",
		"btn.newwallet":       "Nueva billetera",
		"btn.connectwallet":   "Conectar billetera",
		"btn.settings":        "Ajustes",
		"btn.help":            "Ayuda",
		"btn.mainmenu":        "Menú principal",
		"btn.cancel":          "Cancelar",
		"btn.change_language": "Cambiar idioma",
		"notice.language_set": "Idioma actualizado.",
	},
	"ru": {
		"welcome":             "Добро пожаловать! Я управляю TON-кошельками и заявками на покупку/продажу.\nСоздайте новый кошелёк или подключите существующий.",
		"mainmenu.title":      "Главное меню — что вы хотите сделать?",
		"wallets.title":       "Ваши кошельки (%d):",
		"wallets.empty":       "У вас пока нет кошельков.",
		"settings.title":      "Настройки\nЯзык: %s",
		"language.title":      "Выберите язык:",
		"btn.wallets":         "Мои кошельки",
		"btn.newwallet":       "Новый кошелёк",
		"btn.mainmenu":        "Главное меню",
		"btn.cancel":          "Отмена",
		"notice.language_set": "Язык обновлён.",
	},
}
