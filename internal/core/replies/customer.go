package replies

import (
	"fmt"

	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

// Customer menu selection ids.
const (
	MenuBooking      = "menu_booking"
	MenuAvailability = "menu_availability"
	MenuPricing      = "menu_pricing"
	MenuSales        = "menu_sales"
)

const (
	CustomerApology    = "Sorry, something went wrong on our side. Please try again."
	CustomerMenuBody   = "Hi! How can we help you today?"
	CustomerMenuButton = "Options"
	CustomerHelp       = "You can book a site visit, check availability and pricing, or talk to our sales team. Type 'menu' any time to see the options."
	CustomerSaveFailed = "We couldn't save that right now. Please try again in a few minutes."

	PromptName  = "Great! What name should we put the visit under?"
	InvalidName = "Please enter a valid name (at least 2 characters)."
	PromptDate  = "Which date works for you? (YYYY-MM-DD or DD/MM/YYYY)"
	InvalidDate = "Please send a valid future date (YYYY-MM-DD or DD/MM/YYYY)."
	PromptTime  = "What time suits you? (24-hour HH:MM, e.g. 14:30)"
	InvalidTime = "Please send a time like 14:30 (24-hour HH:MM)."

	AvailabilityInfo = "Site visits are available Monday to Saturday, 09:00–18:00. Type 'book' to reserve a slot."
	PricingInfo      = "Our team shares an up-to-date price sheet on request. Type 'sales' and we'll connect you."
	SalesConnect     = "Thanks! A member of our sales team will reach out to you on this number shortly."
)

// BookingConfirmed renders the booking confirmation with formatted date/time
// and a short record-id excerpt.
func BookingConfirmed(date, timeOfDay, idExcerpt string) string {
	return fmt.Sprintf("Your site visit is booked for %s at %s (ref %s). Our team will confirm shortly.", date, timeOfDay, idExcerpt)
}

// CustomerMenuSections builds the customer main menu as a list payload.
func CustomerMenuSections() []ports.ListSection {
	return []ports.ListSection{{
		Title: "Options",
		Rows: []ports.ListRow{
			{ID: MenuBooking, Title: "Book a site visit", Description: "Reserve a date and time"},
			{ID: MenuAvailability, Title: "Check availability", Description: "Visiting hours and open slots"},
			{ID: MenuPricing, Title: "Pricing", Description: "Get our latest price sheet"},
			{ID: MenuSales, Title: "Talk to sales", Description: "We'll call you back"},
		},
	}}
}
