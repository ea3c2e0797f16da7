// Package page renders the single formpulse page as templ components and
// embeds the client script that relays DOM events over the websocket.
//
// Components live in page.templ; run templ generate after editing it.
package page

import (
	"embed"

	"github.com/conneroisu/formpulse/internal/form"
	"github.com/conneroisu/formpulse/internal/widgets"
)

// Static holds static/app.js.
//
//go:embed static
var Static embed.FS

// Tab is one panel of the tab switcher.
type Tab struct {
	ID    string
	Title string
	Body  string
}

// FAQItem is one accordion entry.
type FAQItem struct {
	Question string
	Answer   string
}

// FieldSpec describes how a form field is rendered.
type FieldSpec struct {
	Name         form.FieldName
	Label        string
	InputType    string
	Placeholder  string
	Autocomplete string
}

// Data is everything the page needs at render time.
type Data struct {
	Title         string
	Language      string
	DarkMode      bool
	HighScore     int
	Tabs          []Tab
	FAQ           []FAQItem
	Fields        []FieldSpec
	WebsocketPath string
}

var DefaultTabs = []Tab{
	{ID: "features", Title: "Features", Body: "Live validation, a password strength meter and a counter that remembers your best run."},
	{ID: "about", Title: "About", Body: "Every interaction is checked on the server as you type, so the rules live in one place."},
	{ID: "contact", Title: "Contact", Body: "Fill in the registration form below and we will be in touch."},
}

var DefaultFAQ = []FAQItem{
	{Question: "When is a field checked?", Answer: "When you leave it. Typing again clears any error until you leave the field again."},
	{Question: "What makes a strong password?", Answer: "At least eight characters mixing lowercase, uppercase, digits and symbols."},
	{Question: "Why must I be 13 or older?", Answer: "Registration is open to ages 13 to 120."},
	{Question: "Is my high score saved?", Answer: "Yes. The best count is stored and shown the next time you visit."},
}

// DefaultFields lists the form fields in submission order.
func DefaultFields() []FieldSpec {
	return []FieldSpec{
		{Name: form.FieldFullName, Label: "Full Name", InputType: "text", Placeholder: "Jane Doe", Autocomplete: "name"},
		{Name: form.FieldEmail, Label: "Email Address", InputType: "email", Placeholder: "jane@example.com", Autocomplete: "email"},
		{Name: form.FieldPhone, Label: "Phone Number", InputType: "tel", Placeholder: "+1 (555) 123-4567", Autocomplete: "tel"},
		{Name: form.FieldPassword, Label: "Password", InputType: "password", Autocomplete: "new-password"},
		{Name: form.FieldConfirmPassword, Label: "Confirm Password", InputType: "password", Autocomplete: "new-password"},
		{Name: form.FieldAge, Label: "Age", InputType: "number", Placeholder: "18"},
		{Name: form.FieldTerms, Label: "I agree to the terms and conditions", InputType: "checkbox"},
	}
}

// NewData builds page data from a widget snapshot.
func NewData(snap widgets.Snapshot, lang string) Data {
	if lang == "" {
		lang = "en"
	}
	return Data{
		Title:         "Interactive Web App",
		Language:      lang,
		DarkMode:      snap.DarkMode,
		HighScore:     snap.HighScore,
		Tabs:          DefaultTabs,
		FAQ:           DefaultFAQ,
		Fields:        DefaultFields(),
		WebsocketPath: "/ws",
	}
}

func themeIcon(dark bool) string {
	if dark {
		return "☀️"
	}
	return "🌙"
}
