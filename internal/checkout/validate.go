package checkout

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ShippingInfo is the shipping form captured at the first checkout step.
// Field names mirror the form field keys used in validation error maps.
type ShippingInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	SaveInfo  bool   `json:"saveInfo,omitempty"`
}

// FullName joins first and last name for display and order records.
func (s ShippingInfo) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// PaymentInfo is the card form captured at the second checkout step.
// The full card number and CVV never leave the active checkout session;
// only CardBrand + Last4 survive into order records.
type PaymentInfo struct {
	CardNumber string `json:"cardNumber"`
	CardName   string `json:"cardName"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	SaveCard   bool   `json:"saveCard,omitempty"`
}

// Locale carries the country-specific validation rules for a storefront.
// Which locale is active is a configuration choice.
type Locale struct {
	Country string

	// Regions enumerates the valid region/state values. Matching is
	// case-insensitive on the submitted value.
	Regions []string

	postalPattern *regexp.Regexp
	postalMessage string
	phonePattern  *regexp.Regexp
	phoneMessage  string
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	localeUS = Locale{
		Country: "US",
		Regions: []string{
			"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
			"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
			"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
			"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
			"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
			"DC",
		},
		postalPattern: regexp.MustCompile(`^\d{5}(-\d{4})?$`),
		postalMessage: "Please enter a valid ZIP code",
		phonePattern:  regexp.MustCompile(`^\d{10}$`),
		phoneMessage:  "Please enter a valid 10-digit phone number",
	}

	localeIN = Locale{
		Country: "IN",
		Regions: []string{
			"Andhra Pradesh", "Arunachal Pradesh", "Assam", "Bihar",
			"Chhattisgarh", "Goa", "Gujarat", "Haryana", "Himachal Pradesh",
			"Jharkhand", "Karnataka", "Kerala", "Madhya Pradesh",
			"Maharashtra", "Manipur", "Meghalaya", "Mizoram", "Nagaland",
			"Odisha", "Punjab", "Rajasthan", "Sikkim", "Tamil Nadu",
			"Telangana", "Tripura", "Uttar Pradesh", "Uttarakhand",
			"West Bengal", "Delhi",
		},
		postalPattern: regexp.MustCompile(`^\d{6}$`),
		postalMessage: "Please enter a valid 6-digit PIN code",
		phonePattern:  regexp.MustCompile(`^[6-9]\d{9}$`),
		phoneMessage:  "Please enter a valid 10-digit Indian phone number",
	}

	locales = map[string]Locale{
		"US": localeUS,
		"IN": localeIN,
	}
)

// LocaleFor returns the validation rules for a country code. Unknown codes
// fall back to US rules.
func LocaleFor(country string) Locale {
	if l, ok := locales[strings.ToUpper(country)]; ok {
		return l
	}
	return localeUS
}

func (l Locale) validRegion(region string) bool {
	for _, r := range l.Regions {
		if strings.EqualFold(r, region) {
			return true
		}
	}
	return false
}

// ValidateShipping checks the shipping form against the locale's rules.
// An empty map means the form is valid.
func (l Locale) ValidateShipping(info ShippingInfo) map[string]string {
	errs := make(map[string]string)

	required := []struct {
		field, value string
	}{
		{"firstName", info.FirstName},
		{"lastName", info.LastName},
		{"email", info.Email},
		{"phone", info.Phone},
		{"address", info.Address},
		{"city", info.City},
		{"state", info.State},
		{"zipCode", info.ZipCode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs[f.field] = "This field is required"
		}
	}

	if info.Email != "" && !emailPattern.MatchString(info.Email) {
		errs["email"] = "Please enter a valid email address"
	}
	if info.Phone != "" && !l.phonePattern.MatchString(digitsOnly(info.Phone)) {
		errs["phone"] = l.phoneMessage
	}
	if info.ZipCode != "" && !l.postalPattern.MatchString(info.ZipCode) {
		errs["zipCode"] = l.postalMessage
	}
	if info.State != "" && !l.validRegion(info.State) {
		errs["state"] = "Please select a valid state"
	}

	return errs
}

// ValidatePayment checks the card form. Expiry is compared against now at
// month granularity: a card expiring this month is still valid.
func ValidatePayment(info PaymentInfo, now time.Time) map[string]string {
	errs := make(map[string]string)

	number := digitsOnly(info.CardNumber)
	if number == "" {
		errs["cardNumber"] = "Card number is required"
	} else if len(number) != 16 {
		errs["cardNumber"] = "Card number must be 16 digits"
	}

	if strings.TrimSpace(info.CardName) == "" {
		errs["cardName"] = "Name on card is required"
	}

	if info.ExpiryDate == "" {
		errs["expiryDate"] = "Expiry date is required"
	} else if msg := validateExpiry(info.ExpiryDate, now); msg != "" {
		errs["expiryDate"] = msg
	}

	if info.CVV == "" {
		errs["cvv"] = "Security code is required"
	} else if !cvvPattern.MatchString(info.CVV) {
		errs["cvv"] = "Security code must be 3-4 digits"
	}

	return errs
}

var cvvPattern = regexp.MustCompile(`^\d{3,4}$`)

func validateExpiry(expiry string, now time.Time) string {
	month, year, ok := strings.Cut(expiry, "/")
	if !ok || len(month) != 2 || len(year) != 2 {
		return "Please enter a valid date (MM/YY)"
	}

	numMonth, errM := strconv.Atoi(month)
	numYear, errY := strconv.Atoi(year)
	if errM != nil || errY != nil {
		return "Please enter a valid date (MM/YY)"
	}
	if numMonth < 1 || numMonth > 12 {
		return "Please enter a valid month (01-12)"
	}

	currentYear := now.Year() % 100
	currentMonth := int(now.Month())
	if numYear < currentYear || (numYear == currentYear && numMonth < currentMonth) {
		return "Card has expired"
	}
	return ""
}

// CardBrand derives the card network from the leading digit of the number.
func CardBrand(cardNumber string) string {
	number := digitsOnly(cardNumber)
	if number == "" {
		return ""
	}
	switch number[0] {
	case '4':
		return "Visa"
	case '5':
		return "Mastercard"
	case '3':
		return "American Express"
	case '6':
		return "Discover"
	default:
		return "Card"
	}
}

// Last4 returns the final four digits of the card number for display.
func Last4(cardNumber string) string {
	number := digitsOnly(cardNumber)
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
