// internal/core/domain/checkout/keyboards.go
package checkout

import (
	"fmt"
	"strconv"

	"solboost-bot/internal/core/domain/catalog"
)

// mainMenuKeyboard по кнопке на тариф, затем подписка/партнерство и помощь
func mainMenuKeyboard(c *catalog.Catalog) *Keyboard {
	rows := make([][]Button, 0, c.Len()+2)
	for _, tier := range c.Tiers() {
		rows = append(rows, []Button{{Text: tier.Name, Data: tier.ID}})
	}
	rows = append(rows,
		[]Button{
			{Text: ButtonTexts.Subscription, Data: CallbackMonthlySub},
			{Text: ButtonTexts.Partnership, Data: CallbackPartnership},
		},
		[]Button{{Text: ButtonTexts.Help, Data: CallbackHelp}},
	)
	return &Keyboard{Rows: rows}
}

func durationKeyboard(tier *catalog.ServiceTier) *Keyboard {
	rows := make([][]Button, 0, len(tier.Durations)+1)
	for _, hours := range tier.Durations {
		price, _ := catalog.PriceFor(tier, hours)
		rows = append(rows, []Button{{
			Text: fmt.Sprintf("%s - %s SOL 💸", catalog.DurationLabel(hours), catalog.FormatPrice(price)),
			Data: strconv.Itoa(hours),
		}})
	}
	rows = append(rows, []Button{{Text: ButtonTexts.Back, Data: CallbackBack}})
	return &Keyboard{Rows: rows}
}

func contactKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Text: ButtonTexts.ContactUs, URL: WebsiteURL}},
		{{Text: ButtonTexts.BackToMenu, Data: CallbackBack}},
	}}
}

func backKeyboard(text string) *Keyboard {
	return &Keyboard{Rows: [][]Button{{{Text: text, Data: CallbackBack}}}}
}

func paymentKeyboard() *Keyboard {
	return &Keyboard{Rows: [][]Button{
		{{Text: ButtonTexts.Paid, Data: CallbackPaid}},
		{{Text: ButtonTexts.Back, Data: CallbackBack}},
	}}
}
