// internal/core/domain/checkout/texts.go
package checkout

import (
	"fmt"
	"strings"

	"solboost-bot/internal/core/domain/catalog"
)

const (
	WebsiteURL   = "https://www.solboostervolumebot.com"
	DocsURL      = "https://solboostvolumeboost.gitbook.io/solboostevolumebot"
	SupportEmail = "solboostervolumebot@gmail.com"
)

var moreInfoLine = fmt.Sprintf(
	"For more information, visit our website at [www.solboostervolumebot.com](%s) and our documentation at [GitBook](%s).",
	WebsiteURL, DocsURL,
)

// ButtonTexts тексты кнопок
var ButtonTexts = struct {
	Subscription string
	Partnership  string
	Help         string
	Back         string
	BackToMenu   string
	BackToMain   string
	ContactUs    string
	Paid         string
}{
	Subscription: "📅 Subscription",
	Partnership:  "🤝 Partnership",
	Help:         "❓ Help",
	Back:         "🔙 Back",
	BackToMenu:   "🔙 Back to Menu",
	BackToMain:   "🔙 Back to Main Menu",
	ContactUs:    "📧 Contact Us",
	Paid:         "💸 Paid ✅",
}

// Messages статические ответы бота
var Messages = struct {
	InvalidService     string
	InvalidDuration    string
	InvalidCA          string
	InvalidURL         string
	InvalidSignature   string
	SelectServiceFirst string
	PressPaid          string
	UseMenu            string
	AskSignature       string
	Verifying          string
	NotFound           string
	VerificationFailed string
	AlreadyUsed        string
	VerificationError  string
	PaymentConfirmed   string
	Unauthorized       string
}{
	InvalidService:     "❌ *Invalid service selection. Please try again.*",
	InvalidDuration:    "❌ *Invalid duration selection. Please try again.*",
	InvalidCA:          "❌ *Invalid Contract Address (CA). Please enter a valid Solana address.*",
	InvalidURL:         "❌ *Invalid URL format. Please provide a valid transaction signature.*",
	InvalidSignature:   "❌ *Invalid transaction signature format. Please enter a valid signature.*",
	SelectServiceFirst: "❗ *Please select a service first by typing* `/start`.",
	PressPaid:          "❗ *Please click 'Paid' ✅ once you have sent the payment.*",
	UseMenu:            "❗ *Please use the menu buttons above, or type* `/start` *to start over.*",
	AskSignature:       "🔍 *Please enter only the transaction signature (txSignature) for verification:*",
	Verifying:          "🔍 *Verifying your transaction. Please wait...*",
	NotFound:           "❌ *Transaction not found. Please ensure the signature is correct and try again.*",
	VerificationFailed: "❌ *Payment verification failed.* Please ensure you've sent the correct amount to the specified wallet and try again.",
	AlreadyUsed:        "❌ *This transaction has already been used for another order.*",
	VerificationError:  "⚠️ *An error occurred while verifying your transaction. Please try again later.*",
	PaymentConfirmed:   "✅ *Payment confirmed!* Your service will start shortly.",
	Unauthorized:       "❌ *You are not authorized to use this command.*",
}

func mainMenuText() string {
	return "🔰 *Welcome to SolBooster Volume Bot!*\n" +
		moreInfoLine + "\n\n" +
		"Please select a service:"
}

// HelpText справка /help
func HelpText() string {
	return "❓ *SolBoost Volume Bot Help*\n" +
		"- */start*: Start the bot and select a service package.\n" +
		"- */help*: Display this help message.\n" +
		"- *Provide CA*: After selecting a service, enter your Contract Address when prompted.\n" +
		"- *Click 'Paid'*: Confirm your payment after sending SOL by clicking the 'Paid' button.\n" +
		moreInfoLine + "\n" +
		fmt.Sprintf("📧 For further assistance, contact our support team at [%s](mailto:%s).", SupportEmail, SupportEmail)
}

func subscriptionText() string {
	return "📅 *Subscription Plans*\n\n" +
		"We offer *Monthly Subscription Plans* for projects seeking continuous volume boosting. Enjoy significant discounts and exclusive benefits.\n\n" +
		"*What's Included:*\n" +
		"- Continuous volume boosting for your project.\n" +
		"- Priority support and maintenance.\n" +
		"- Exclusive access to premium features.\n\n" +
		moreInfoLine + "\n" +
		contactLine()
}

func partnershipText() string {
	return "🤝 *Partnership Program*\n\n" +
		"Collaborate with *SolBoost Volume Bot* and elevate your project's success.\n\n" +
		"*Partnership Packages:*\n" +
		"1. *Silver Partner*\n   - Enhanced visibility\n   - Shared resources\n" +
		"2. *Gold Partner*\n   - Priority support\n   - Custom solutions\n" +
		"3. *Platinum Partner*\n   - Exclusive offers\n   - Dedicated account manager\n\n" +
		moreInfoLine + "\n" +
		contactLine()
}

func contactLine() string {
	return fmt.Sprintf("📧 *Contact Us:* [%s](mailto:%s)", SupportEmail, SupportEmail)
}

func customTierText(tier *catalog.ServiceTier) string {
	return fmt.Sprintf("🛠️ *%s*\n\n", tier.Name) +
		"With the Customizable Volume Boost, you can fully tailor buy/sell ratios and intervals to align with your project's unique goals.\n" +
		fmt.Sprintf("For pricing and further customization, please contact us at [%s](mailto:%s).\n", SupportEmail, SupportEmail) +
		moreInfoLine
}

func durationMenuText(tier *catalog.ServiceTier) string {
	return fmt.Sprintf("🛠️ *You selected:* %s\n\nPlease select the duration:", tier.Name)
}

// tierSummaryText экран выбранного тарифа с запросом CA
func tierSummaryText(tier *catalog.ServiceTier, hours int, price string) string {
	strategy := tier.BuyStrategy
	if tier.Mode() == catalog.ModeFixed {
		strategy = fmt.Sprintf("%s and %s", tier.BuyStrategy, tier.SellStrategy)
	}

	benefits := make([]string, 0, len(tier.Benefits))
	for _, b := range tier.Benefits {
		benefits = append(benefits, "• "+b)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ *You've selected:* %s\n", tier.Name)
	if tier.Description != "" {
		sb.WriteString(tier.Description + "\n")
	}
	fmt.Fprintf(&sb, "*Duration:* %s\n", catalog.DurationLabel(hours))
	fmt.Fprintf(&sb, "*Price:* %s SOL\n", price)
	fmt.Fprintf(&sb, "*Buy/Sell Strategy:* %s\n", strategy)
	fmt.Fprintf(&sb, "*Frequency:* Every 1-2 minutes depending on market conditions (%s)\n", catalog.ModeName(tier, hours))
	sb.WriteString("*Benefits:*\n")
	sb.WriteString(strings.Join(benefits, "\n"))
	sb.WriteString("\n🔺 *Buys are larger than sells to enhance volume.*\n")
	sb.WriteString("🔗 Please provide the *Contract Address (CA)* for your token.")
	return sb.String()
}

func paymentInstructionsText(ca, price, wallet string) string {
	return fmt.Sprintf("✅ *You've entered CA:* `%s`.\nPlease send 💰 *%s SOL* to the wallet: `%s` and click 'Paid' once done.",
		ca, price, wallet)
}

// PurchaseNotificationText уведомление админам о покупке
func PurchaseNotificationText(p Purchase) string {
	duration := "Custom"
	if p.DurationHours != nil {
		duration = hoursText(*p.DurationHours)
	}

	return fmt.Sprintf("📦 *New Service Purchase:*\n"+
		"• *User:* %s (ID: %d)\n"+
		"• *Service:* %s\n"+
		"• *Duration:* %s\n"+
		"• *Price:* %s SOL\n"+
		"• *Contract Address (CA):* `%s`\n"+
		"• *Signature:* `%s`",
		p.Buyer.DisplayName(), p.Buyer.ID,
		p.TierName,
		duration,
		catalog.FormatPrice(p.Price),
		p.ContractAddress,
		p.Signature,
	)
}

// NewUserNotificationText уведомление админам о новом пользователе
func NewUserNotificationText(user Sender) string {
	return fmt.Sprintf("📢 *New User Started the Bot:*\n• *User:* %s\n• *User ID:* `%d`", user.DisplayName(), user.ID)
}

func hoursText(hours int) string {
	if hours == 1 {
		return "1 Hour"
	}
	return fmt.Sprintf("%d Hours", hours)
}

func adminCommandsText() string {
	return "👑 *Admin Commands:*\n" +
		"• /addadmin <UserID> - Add a new admin\n" +
		"• /removeadmin <UserID> - Remove an admin\n" +
		"• /listadmins - List all admins"
}
