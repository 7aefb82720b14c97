package usecases

import (
	"commercebot/internal/entities"
	"fmt"
	"strings"
)

// WelcomeMessageKey overrides the Home menu body when set in bot_config.
const WelcomeMessageKey = "welcome_message"

const maxCatalogueRows = 10

const (
	defaultWelcomeText = "👋 *Welcome!*\n\nI can show you our catalogue, answer common questions or take your order.\nPick an option below to get started."

	faqText = "❓ *Frequently asked questions*\n\n" +
		"*How do I order?* Open the catalogue and pick an item. We confirm instantly.\n" +
		"*How do I pay?* Cash on delivery or bank transfer. We share details after confirming.\n" +
		"*Delivery time?* Same day in the city, 2-3 days elsewhere.\n" +
		"*Need a person?* Tap Contact under More and our team will reach out."

	bookingText = "📅 *Book an appointment*\n\n" +
		"Reply with your preferred day and time (for example: *Saturday 4pm*) and our team will confirm the slot with you.\n" +
		"Opening hours: Mon-Sat, 10am-8pm."

	unsupportedText = "Sorry, I can only read text messages and menu selections for now."

	itemNotRecognizedText = "Sorry, that item is not recognized. Please pick one from the catalogue below."

	leadNewText       = "🙌 Thanks for your interest! Our team will contact you on this number shortly."
	leadReturningText = "🙌 Thanks, we already have your details. Our team will be in touch soon."
)

func homeMenu(body string) entities.Reply {
	return entities.ButtonsReply(body,
		entities.ReplyButton{ID: ButtonCatalogue, Title: "🛍️ Catalogue"},
		entities.ReplyButton{ID: ButtonFAQ, Title: "❓ FAQ"},
		entities.ReplyButton{ID: ButtonMore, Title: "➕ More"},
	)
}

func moreMenu() entities.Reply {
	return entities.ButtonsReply("What else can I help you with?",
		entities.ReplyButton{ID: ButtonBooking, Title: "📅 Book"},
		entities.ReplyButton{ID: ButtonContact, Title: "📞 Contact us"},
		entities.ReplyButton{ID: ButtonHistory, Title: "🧾 My orders"},
	)
}

// catalogueList groups items by category, keeping the first rows that fit
// in one list message.
func catalogueList(items []entities.CatalogueItem) entities.Reply {
	var (
		sections []entities.ListSection
		index    = map[string]int{}
		rows     int
	)
	for _, it := range items {
		if rows == maxCatalogueRows {
			break
		}
		category := it.Category
		if category == "" {
			category = "Items"
		}
		i, ok := index[category]
		if !ok {
			i = len(sections)
			index[category] = i
			sections = append(sections, entities.ListSection{Title: category})
		}

		desc := it.PriceLabel()
		if it.Description != "" {
			desc += " · " + it.Description
		}
		sections[i].Rows = append(sections[i].Rows, entities.ListRow{ID: it.ID, Title: it.Name, Description: desc})
		rows++
	}

	return entities.ListReply("🛍️ *Our catalogue*\n\nTap the button to browse and pick an item to order.", "View items", sections...)
}

func orderConfirmationText(o *entities.Order) string {
	item := entities.CatalogueItem{Price: o.Price, Currency: o.Currency}
	return fmt.Sprintf("✅ *Order received!*\n\nItem: %s\nPrice: %s\nReference: %s\n\nWe will message you shortly to arrange payment and delivery.",
		o.ItemName, item.PriceLabel(), o.Reference())
}

func historyText(orders []entities.Order) string {
	if len(orders) == 0 {
		return "🧾 You have no orders yet. Open the catalogue to place your first one."
	}

	var sb strings.Builder
	sb.WriteString("🧾 *Your recent orders*\n")
	for _, o := range orders {
		item := entities.CatalogueItem{Price: o.Price, Currency: o.Currency}
		sb.WriteString(fmt.Sprintf("\n• %s (%s) - %s, %s, ref %s",
			o.ItemName, item.PriceLabel(), o.Status, o.CreatedAt.Format("02 Jan 2006"), o.Reference()))
	}
	return sb.String()
}

// DemoCatalogue is shown and ordered from while the catalogue store is empty.
func DemoCatalogue() []entities.CatalogueItem {
	return []entities.CatalogueItem{
		{ID: "DEMO_BIRYANI", Name: "Chicken Biryani", Category: "Meals", Description: "Full plate with raita", Price: 650, Currency: "PKR"},
		{ID: "DEMO_KARAHI", Name: "Mutton Karahi", Category: "Meals", Description: "Half kg, serves two", Price: 2400, Currency: "PKR"},
		{ID: "DEMO_NIHARI", Name: "Beef Nihari", Category: "Meals", Description: "With two naan", Price: 900, Currency: "PKR"},
		{ID: "DEMO_LASSI", Name: "Sweet Lassi", Category: "Drinks", Description: "Chilled, 500ml", Price: 250, Currency: "PKR"},
		{ID: "DEMO_CHAI", Name: "Doodh Patti", Category: "Drinks", Description: "Strong milk tea", Price: 120, Currency: "PKR"},
		{ID: "DEMO_KHEER", Name: "Kheer", Category: "Desserts", Description: "Rice pudding with nuts", Price: 300, Currency: "PKR"},
	}
}
