// Package replies builds the outbound message payloads for both roles.
// Employees are addressed in Gujarati, customers in English. Actual delivery
// is the transport's job; this package only shapes text, button, and list
// payloads.
package replies

import (
	"fmt"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/ports"
)

// Employee menu selection ids.
const (
	MenuLogActivity      = "menu_log_activity"
	MenuRequestMaterials = "menu_request_materials"
	MenuDashboard        = "menu_dashboard"
	MenuHelp             = "menu_help"
)

// Verification texts.
const (
	OTPFirstContact = "નમસ્તે! સિસ્ટમમાં તમારી ઓળખ ચકાસવા માટે તમને 6 અંકનો કોડ મોકલ્યો છે. કૃપા કરીને તે કોડ અહીં લખો."
	OTPResent       = "નવો ચકાસણી કોડ મોકલ્યો છે. કૃપા કરીને 6 અંકનો કોડ દાખલ કરો."
	OTPSendFailed   = "કોડ મોકલી શકાયો નથી. કૃપા કરીને થોડી વાર પછી ફરી પ્રયાસ કરો."
	OTPReminder     = "કૃપા કરીને તમને મોકલેલો 6 અંકનો કોડ દાખલ કરો, અથવા નવો કોડ મેળવવા 'resend' લખો."
	OTPVerified     = "ચકાસણી સફળ! સ્વાગત છે."
	OTPExpired      = "કોડની મુદત પૂરી થઈ ગઈ છે. નવો કોડ મેળવવા 'resend' લખો."
	OTPTooMany      = "ઘણા બધા ખોટા પ્રયાસ થયા છે. નવો કોડ મેળવવા 'resend' લખો."
	OTPNotFound     = "કોઈ સક્રિય કોડ મળ્યો નથી. નવો કોડ મેળવવા 'resend' લખો."
)

// OTPMessage renders the code delivery text.
func OTPMessage(code string) string {
	return fmt.Sprintf("તમારો ચકાસણી કોડ છે: %s\nઆ કોડ 10 મિનિટ માટે માન્ય છે.", code)
}

// OTPWrongCode renders the mismatch text with the remaining attempt count.
func OTPWrongCode(remaining int) string {
	return fmt.Sprintf("ખોટો કોડ. %d પ્રયાસ બાકી છે.", remaining)
}

// Flow prompts and confirmations.
const (
	EmployeeApology       = "માફ કરશો, કંઈક ખોટું થયું છે. કૃપા કરીને ફરી પ્રયાસ કરો."
	EmployeeMenuBody      = "મુખ્ય મેનુ — નીચેથી વિકલ્પ પસંદ કરો:"
	EmployeeMenuButton    = "વિકલ્પો"
	EmployeeHelp          = "આ સિસ્ટમથી તમે કામની નોંધ કરી શકો છો, સામગ્રીની માંગણી કરી શકો છો અને તમારું ડેશબોર્ડ જોઈ શકો છો. મેનુ જોવા 'menu' લખો."
	PromptSelectSite      = "કૃપા કરીને સાઇટ પસંદ કરો:"
	PromptSiteFreeText    = "કૃપા કરીને સાઇટનું નામ અથવા ID લખો:"
	InvalidSite           = "કૃપા કરીને યાદીમાંથી સાઇટ પસંદ કરો."
	PromptActivityType    = "કામનો પ્રકાર પસંદ કરો:"
	InvalidActivityType   = "માન્ય કામનો પ્રકાર પસંદ કરો."
	PromptHours           = "કેટલા કલાક કામ કર્યું? (1 થી 24)"
	InvalidHours          = "માન્ય કલાક લખો (1 થી 24)."
	PromptDescription     = "કામનું ટૂંકું વર્ણન લખો, અથવા 'skip' લખો."
	PromptImage           = "ફોટો મોકલો, અથવા 'skip' લખો."
	ImageUploadFailed     = "ફોટો અપલોડ થઈ શક્યો નથી. ફરી મોકલો અથવા 'skip' લખો."
	PromptMaterial        = "કઈ સામગ્રી જોઈએ છે?"
	PromptQuantity        = "જથ્થો લખો, દા.ત. '10 bags'"
	InvalidQuantity       = "કૃપા કરીને સંખ્યાથી શરૂ થતો જથ્થો લખો, દા.ત. '10 bags'."
	PromptUrgency         = "કેટલું તાત્કાલિક છે?"
	InvalidUrgency        = "કૃપા કરીને આપેલા વિકલ્પમાંથી પસંદ કરો."
	EmployeeSaveFailed    = "અત્યારે સાચવી શકાયું નથી. કૃપા કરીને થોડી વાર પછી ફરી પ્રયાસ કરો."
	DashboardUnavailable  = "ડેશબોર્ડ અત્યારે ઉપલબ્ધ નથી. કૃપા કરીને થોડી વાર પછી ફરી પ્રયાસ કરો."
	EmployeeWelcome       = "સ્વાગત છે! મેનુ જોવા 'menu' લખો."
)

// ActivitySaved confirms a logged activity with a short record-id excerpt.
func ActivitySaved(idExcerpt string) string {
	return fmt.Sprintf("કામની નોંધ થઈ ગઈ (ID: %s). આભાર!", idExcerpt)
}

// MaterialSaved confirms a material request with a short record-id excerpt.
func MaterialSaved(idExcerpt string) string {
	return fmt.Sprintf("સામગ્રીની માંગણી નોંધાઈ ગઈ (ID: %s). ટીમ જલદી સંપર્ક કરશે.", idExcerpt)
}

// EmployeeMenuSections builds the employee main menu as a list payload.
func EmployeeMenuSections() []ports.ListSection {
	return []ports.ListSection{{
		Title: "વિકલ્પો",
		Rows: []ports.ListRow{
			{ID: MenuLogActivity, Title: "કામની નોંધ કરો", Description: "આજના કામના કલાક નોંધો"},
			{ID: MenuRequestMaterials, Title: "સામગ્રીની માંગણી", Description: "સાઇટ માટે સામગ્રી મંગાવો"},
			{ID: MenuDashboard, Title: "ડેશબોર્ડ", Description: "તાજેતરની નોંધો જુઓ"},
			{ID: MenuHelp, Title: "મદદ", Description: "સિસ્ટમ કેવી રીતે વાપરવી"},
		},
	}}
}

// SiteSections builds the site picker list from the active site catalog.
func SiteSections(sites []*domain.Site) []ports.ListSection {
	rows := make([]ports.ListRow, 0, len(sites))
	for _, s := range sites {
		rows = append(rows, ports.ListRow{ID: s.ID, Title: s.Name})
	}
	return []ports.ListSection{{Title: "સાઇટ", Rows: rows}}
}

// ActivityTypeSections builds the closed activity-type picker.
func ActivityTypeSections() []ports.ListSection {
	labels := map[string]string{
		"construction": "બાંધકામ",
		"electrical":   "ઇલેક્ટ્રિકલ",
		"plumbing":     "પ્લમ્બિંગ",
		"painting":     "રંગકામ",
		"inspection":   "નિરીક્ષણ",
		"other":        "અન્ય",
	}
	rows := make([]ports.ListRow, 0, len(domain.ActivityTypes))
	for _, t := range domain.ActivityTypes {
		rows = append(rows, ports.ListRow{ID: t, Title: labels[t]})
	}
	return []ports.ListSection{{Title: "કામનો પ્રકાર", Rows: rows}}
}

// UrgencyButtons builds the three-way urgency picker.
func UrgencyButtons() []ports.Button {
	return []ports.Button{
		{ID: string(domain.UrgencyLow), Title: "ઓછું"},
		{ID: string(domain.UrgencyMedium), Title: "મધ્યમ"},
		{ID: string(domain.UrgencyHigh), Title: "તાત્કાલિક"},
	}
}

// Dashboard renders the employee summary. Either slice may be empty when the
// underlying reads degraded.
func Dashboard(activities []*domain.ActivityLog, materials []*domain.MaterialRequest, totalHours int) string {
	body := "તમારું ડેશબોર્ડ\n"
	body += fmt.Sprintf("કુલ કલાક (તાજેતરના): %d\n\n", totalHours)
	body += fmt.Sprintf("કામની નોંધ: %d\n", len(activities))
	for _, a := range activities {
		body += fmt.Sprintf("• %s — %d કલાક (%s)\n", a.ActivityType, a.Hours, a.CreatedAt.Format("02/01"))
	}
	body += fmt.Sprintf("\nસામગ્રીની માંગણી: %d\n", len(materials))
	for _, m := range materials {
		body += fmt.Sprintf("• %s x%d %s (%s)\n", m.Material, m.Quantity, m.Unit, m.CreatedAt.Format("02/01"))
	}
	return body
}
