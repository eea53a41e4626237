package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Text field length limits, shared by the JSON API and the page templates.
const (
	MaxTitleLength          = 200
	MaxVideoLinkLength      = 500
	MaxSubjectLength        = 100
	MaxFileNameLength       = 255
	MaxContactNameLength    = 100
	MaxContactPhoneLength   = 20
	MaxContactEmailLength   = 254
	MaxContactMessageLength = 2000
	MaxUsernameLength       = 64
)

func checkLen(value string, max int, field string) string {
	if utf8.RuneCountInString(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

// Required reports a message when value is blank.
func Required(value, field string) string {
	if strings.TrimSpace(value) == "" {
		return field + " is required"
	}
	return ""
}

func Title(s string) string     { return checkLen(s, MaxTitleLength, "title") }
func VideoLink(s string) string { return checkLen(s, MaxVideoLinkLength, "video link") }
func Subject(s string) string   { return checkLen(s, MaxSubjectLength, "subject") }
func FileName(s string) string  { return checkLen(s, MaxFileNameLength, "file name") }
func ContactName(s string) string {
	return checkLen(s, MaxContactNameLength, "name")
}
func ContactPhone(s string) string { return checkLen(s, MaxContactPhoneLength, "phone") }
func ContactEmail(s string) string { return checkLen(s, MaxContactEmailLength, "email") }
func ContactMessage(s string) string {
	return checkLen(s, MaxContactMessageLength, "message")
}
func Username(s string) string { return checkLen(s, MaxUsernameLength, "username") }

// First returns the first non-empty message.
func First(msgs ...string) string {
	for _, m := range msgs {
		if m != "" {
			return m
		}
	}
	return ""
}

// FieldLimits returns field names mapped to max lengths for /api/limits.
func FieldLimits() map[string]int {
	return map[string]int{
		"title":          MaxTitleLength,
		"videoLink":      MaxVideoLinkLength,
		"subject":        MaxSubjectLength,
		"fileName":       MaxFileNameLength,
		"contactName":    MaxContactNameLength,
		"contactPhone":   MaxContactPhoneLength,
		"contactEmail":   MaxContactEmailLength,
		"contactMessage": MaxContactMessageLength,
	}
}
