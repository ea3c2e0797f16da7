package form

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Code is the stable identifier of one validation failure.
type Code string

const (
	CodeNone Code = ""

	CodeFullNameRequired Code = "fullName.required"
	CodeFullNameLength   Code = "fullName.length"
	CodeFullNamePattern  Code = "fullName.pattern"

	CodeEmailRequired Code = "email.required"
	CodeEmailPattern  Code = "email.pattern"

	CodePhoneRequired Code = "phone.required"
	CodePhonePattern  Code = "phone.pattern"

	CodePasswordRequired   Code = "password.required"
	CodePasswordLength     Code = "password.length"
	CodePasswordComplexity Code = "password.complexity"

	CodeConfirmRequired Code = "confirmPassword.required"
	CodeConfirmMismatch Code = "confirmPassword.mismatch"

	CodeAgeRequired Code = "age.required"
	CodeAgeRange    Code = "age.range"

	CodeTermsRequired Code = "terms.required"
)

// english holds the canonical message of every failure code.
var english = map[Code]string{
	CodeFullNameRequired:   "Full name is required.",
	CodeFullNameLength:     "Full name must be at least 2 characters long.",
	CodeFullNamePattern:    "Full name should only contain letters and spaces.",
	CodeEmailRequired:      "Email address is required.",
	CodeEmailPattern:       "Please enter a valid email address.",
	CodePhoneRequired:      "Phone number is required.",
	CodePhonePattern:       "Please enter a valid phone number.",
	CodePasswordRequired:   "Password is required.",
	CodePasswordLength:     "Password must be at least 8 characters long.",
	CodePasswordComplexity: "Password must contain at least one uppercase letter, one lowercase letter, and one number.",
	CodeConfirmRequired:    "Please confirm your password.",
	CodeConfirmMismatch:    "Passwords do not match.",
	CodeAgeRequired:        "Age is required.",
	CodeAgeRange:           "Please enter a valid age between 13 and 120.",
	CodeTermsRequired:      "You must agree to the terms and conditions.",
}

var spanish = map[Code]string{
	CodeFullNameRequired:   "El nombre completo es obligatorio.",
	CodeFullNameLength:     "El nombre completo debe tener al menos 2 caracteres.",
	CodeFullNamePattern:    "El nombre completo solo puede contener letras y espacios.",
	CodeEmailRequired:      "El correo electrónico es obligatorio.",
	CodeEmailPattern:       "Introduce un correo electrónico válido.",
	CodePhoneRequired:      "El número de teléfono es obligatorio.",
	CodePhonePattern:       "Introduce un número de teléfono válido.",
	CodePasswordRequired:   "La contraseña es obligatoria.",
	CodePasswordLength:     "La contraseña debe tener al menos 8 caracteres.",
	CodePasswordComplexity: "La contraseña debe contener al menos una mayúscula, una minúscula y un número.",
	CodeConfirmRequired:    "Confirma tu contraseña.",
	CodeConfirmMismatch:    "Las contraseñas no coinciden.",
	CodeAgeRequired:        "La edad es obligatoria.",
	CodeAgeRange:           "Introduce una edad válida entre 13 y 120.",
	CodeTermsRequired:      "Debes aceptar los términos y condiciones.",
}

// Catalog resolves failure codes to display messages in one language.
type Catalog struct {
	printer *message.Printer
	tag     language.Tag
}

var messageCatalog = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for code, msg := range english {
		_ = b.SetString(language.English, string(code), msg)
	}
	for code, msg := range spanish {
		_ = b.SetString(language.Spanish, string(code), msg)
	}
	return b
}

// SupportedLanguages lists the languages with a full message set.
func SupportedLanguages() []language.Tag {
	return []language.Tag{language.English, language.Spanish}
}

// NewCatalog returns a catalog for the best match of lang. Unknown or empty
// languages fall back to English.
func NewCatalog(lang string) *Catalog {
	tag := language.English
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			matcher := language.NewMatcher(SupportedLanguages())
			_, idx, conf := matcher.Match(parsed)
			if conf != language.No {
				tag = SupportedLanguages()[idx]
			}
		}
	}
	return &Catalog{
		printer: message.NewPrinter(tag, message.Catalog(messageCatalog)),
		tag:     tag,
	}
}

// NewCatalogAccept picks the best supported language from an Accept-Language
// header value. Without a usable match it uses fallback.
func NewCatalogAccept(acceptLanguage, fallback string) *Catalog {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return NewCatalog(fallback)
	}
	_, idx, conf := language.NewMatcher(SupportedLanguages()).Match(tags...)
	if conf == language.No {
		return NewCatalog(fallback)
	}
	return NewCatalog(SupportedLanguages()[idx].String())
}

// Language returns the resolved language tag.
func (c *Catalog) Language() language.Tag { return c.tag }

// Message returns the display text for code.
func (c *Catalog) Message(code Code) string {
	if code == CodeNone {
		return ""
	}
	if c == nil {
		return english[code]
	}
	return c.printer.Sprintf(string(code))
}
