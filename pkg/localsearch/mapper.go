package localsearch

import (
	"fmt"
	"strings"

	"github.com/codeGROOVE-dev/sleuth/pkg/contact"
	"github.com/codeGROOVE-dev/sleuth/pkg/profile"
)

// aliases lists, per logical attribute, the field names sources use for it.
// The first non-empty field wins.
var aliases = struct {
	name, location, description, company, email, image, phone []string
}{
	name:        []string{"Name", "name", "full_name", "fullName"},
	location:    []string{"Address", "location", "address", "city"},
	description: []string{"JobTitle", "description", "bio", "title"},
	company:     []string{"CompanyName", "company", "organization"},
	email:       []string{"Email", "email"},
	image:       []string{"Image", "image", "profile_pic"},
	phone:       []string{"Number", "phone", "mobile", "contact", "telephone", "phone_number", "phoneNumbers"},
}

// UnknownName is the Name of a record with no name field or text.
const UnknownName = "Unknown"

// Row is one raw result from a Source.
type Row struct {
	ID     string
	Origin string // e.g. "SQLite", "Documents", "CSV:people.csv"
	Fields map[string]any
}

// Map converts a row to a Record using the alias table. Every phone-bearing
// field is unioned into PhoneNumbers as digits.
func Map(row Row, typ profile.RecordType, priority int) profile.Record {
	r := profile.Record{
		ID:          row.ID,
		Text:        first(row.Fields, "text"),
		Name:        first(row.Fields, aliases.name...),
		Location:    first(row.Fields, aliases.location...),
		Description: first(row.Fields, aliases.description...),
		Company:     first(row.Fields, aliases.company...),
		Email:       strings.ToLower(first(row.Fields, aliases.email...)),
		Image:       first(row.Fields, aliases.image...),
		Source:      row.Origin,
		Priority:    priority,
		Type:        typ,
	}

	seen := make(map[string]bool)
	for _, key := range aliases.phone {
		for _, v := range phoneValues(row.Fields[key]) {
			if d := contact.NormalizePhone(v); d != "" && !seen[d] {
				seen[d] = true
				r.PhoneNumbers = append(r.PhoneNumbers, d)
			}
		}
	}

	if r.Name == "" && r.Text != "" {
		name, desc, _ := strings.Cut(r.Text, " - ")
		r.Name = strings.TrimSpace(name)
		if r.Description == "" {
			r.Description = strings.TrimSpace(desc)
		}
	}
	if r.Name == "" {
		r.Name = UnknownName
	}
	if r.Text == "" {
		r.Text = r.Name
		if r.Description != "" {
			r.Text += " - " + r.Description
		}
	}
	return r
}

// first returns the first non-empty string value among keys.
func first(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		for _, v := range values(fields[k]) {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// values flattens a field value to strings.
func values(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return []string{x}
	case []string:
		return x
	case []any:
		var out []string
		for _, e := range x {
			out = append(out, values(e)...)
		}
		return out
	case []byte:
		return []string{string(x)}
	default:
		return []string{fmt.Sprint(x)}
	}
}

// phoneValues is values with comma and semicolon separated lists split, so a
// single phoneNumbers column can hold several numbers.
func phoneValues(v any) []string {
	var out []string
	for _, s := range values(v) {
		out = append(out, strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })...)
	}
	return out
}
