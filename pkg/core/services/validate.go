package services

import (
	"encoding/json"
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"github.com/juju/errors"
	"golang.org/x/text/unicode/norm"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewNotValid(nil, field+" is required")
	}
	return nil
}

// Slugify derives a URL slug from a title: "Casa Árbol, Lisbon" becomes "casa-arbol-lisbon".
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(title)) {
		switch {
		case unicode.Is(unicode.Mn, r):
			// drop combining accents
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// resolveSlug returns slug, or one derived from title when slug is empty.
func resolveSlug(slug, title string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if !slugPattern.MatchString(slug) {
		return "", errors.NotValidf("slug %q", slug)
	}
	return slug, nil
}

func validEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return errors.NotValidf("email %q", email)
	}
	return nil
}

// normalizeSectionContent accepts an empty value or a JSON object.
func normalizeSectionContent(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return json.RawMessage("{}"), nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, errors.NewNotValid(nil, "content must be a JSON object")
	}
	return json.RawMessage(trimmed), nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return errors.NotValidf("%s %q", field, value)
}
