package shared

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// RequireText trims s and checks it is present and at most limit runes long.
// A limit of zero disables the length check.
func RequireText(field, s string, limit int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(field, "is required")
	}
	if limit > 0 && utf8.RuneCountInString(s) > limit {
		return "", invalid(field, fmt.Sprintf("must be at most %d characters", limit))
	}
	return s, nil
}

// Slug is a lowercase, hyphen separated URL identifier.
type Slug string

const maxSlugLength = 100

func ParseSlug(s string) (Slug, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("slug", "is required")
	}
	if len(s) > maxSlugLength || !slugPattern.MatchString(s) {
		return "", invalid("slug", fmt.Sprintf("%q must be lowercase letters, digits and single hyphens", s))
	}
	return Slug(s), nil
}

func (s Slug) String() string { return string(s) }

// Email is a normalized e-mail address.
type Email string

const maxEmailLength = 255

func ParseEmail(s string) (Email, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", invalid("email", "is required")
	}
	if len(s) > maxEmailLength {
		return "", invalid("email", fmt.Sprintf("must be at most %d characters", maxEmailLength))
	}
	if !emailPattern.MatchString(s) {
		return "", invalid("email", fmt.Sprintf("%q is not a valid address", s))
	}
	return Email(s), nil
}

// LookupEmail returns the parsed address and whether s was valid.
func LookupEmail(s string) (Email, bool) {
	e, err := ParseEmail(s)
	return e, err == nil
}

func (e Email) String() string { return string(e) }

// PhoneNumber holds the digits of a phone number.
type PhoneNumber string

func ParsePhoneNumber(s string) (PhoneNumber, error) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", invalid("phone", "is required")
	}
	if len(digits) < 7 || len(digits) > 15 {
		return "", invalid("phone", "must have between 7 and 15 digits")
	}
	return PhoneNumber(digits), nil
}

// LookupPhoneNumber returns the parsed number and whether s was valid.
func LookupPhoneNumber(s string) (PhoneNumber, bool) {
	p, err := ParsePhoneNumber(s)
	return p, err == nil
}

func (p PhoneNumber) String() string { return string(p) }

// Format renders North American numbers for display. Other numbers are
// returned as digits.
func (p PhoneNumber) Format() string {
	s := string(p)
	switch {
	case len(s) == 10:
		return fmt.Sprintf("(%s) %s-%s", s[:3], s[3:6], s[6:])
	case len(s) == 11 && s[0] == '1':
		return fmt.Sprintf("+1 (%s) %s-%s", s[1:4], s[4:7], s[7:])
	default:
		return s
	}
}

// Address is a postal address.
type Address struct {
	street  string
	city    string
	state   string
	zipCode string
	country string
}

// AddressParams are the raw fields of an address.
type AddressParams struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country"`
}

func NewAddress(p AddressParams) (Address, error) {
	street, err := RequireText("street", p.Street, 200)
	if err != nil {
		return Address{}, err
	}
	city, err := RequireText("city", p.City, 100)
	if err != nil {
		return Address{}, err
	}
	country, err := RequireText("country", p.Country, 100)
	if err != nil {
		return Address{}, err
	}
	return Address{
		street:  street,
		city:    city,
		state:   strings.TrimSpace(p.State),
		zipCode: strings.TrimSpace(p.ZipCode),
		country: country,
	}, nil
}

func (a Address) Street() string { return a.street }
func (a Address) City() string { return a.city }
func (a Address) State() string { return a.state }
func (a Address) ZipCode() string { return a.zipCode }
func (a Address) Country() string { return a.country }
func (a Address) IsZero() bool { return a == Address{} }

// SingleLine joins the populated parts with commas.
func (a Address) SingleLine() string {
	parts := []string{a.street, a.city}
	if a.state != "" {
		parts = append(parts, a.state)
	}
	if a.zipCode != "" {
		parts = append(parts, a.zipCode)
	}
	parts = append(parts, a.country)
	return strings.Join(parts, ", ")
}

func (a Address) Params() AddressParams {
	return AddressParams{Street: a.street, City: a.city, State: a.state, ZipCode: a.zipCode, Country: a.country}
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Params())
}

func (a *Address) UnmarshalJSON(b []byte) error {
	var p AddressParams
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	parsed, err := NewAddress(p)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	start time.Time
	end   time.Time
}

func NewDateRange(start, end time.Time) (DateRange, error) {
	s, e := dateOf(start), dateOf(end)
	if s.After(e) {
		return DateRange{}, invalid("date_range", "start must not be after end")
	}
	return DateRange{start: s, end: e}, nil
}

func (r DateRange) Start() time.Time { return r.start }
func (r DateRange) End() time.Time { return r.end }

// Days counts calendar days including both ends.
func (r DateRange) Days() int {
	return int(r.end.Sub(r.start).Hours()/24) + 1
}

func (r DateRange) Contains(t time.Time) bool {
	d := dateOf(t.In(r.start.Location()))
	return !d.Before(r.start) && !d.After(r.end)
}

func (r DateRange) Overlaps(other DateRange) bool {
	return !r.start.After(other.end) && !other.start.After(r.end)
}
