package schema

import (
	"fmt"
	"strings"
)

// ValidateDefaultValue checks if a default value expression is likely valid
// SQL. Returns an error with a suggested fix when a common mistake is found.
func ValidateDefaultValue(defaultVal string) error {
	trimmed := strings.TrimSpace(defaultVal)
	upperVal := strings.ToUpper(trimmed)

	commonMistakes := map[string]string{
		"CURRENT TIMESTAMP": "CURRENT_TIMESTAMP",
		"CURRENT DATE":      "CURRENT_DATE",
		"NOW ()":            "NOW()",
		"GEN RANDOM UUID":   "gen_random_uuid()",
	}
	for mistake, correct := range commonMistakes {
		if strings.Contains(upperVal, mistake) {
			return fmt.Errorf("invalid DEFAULT value: %q contains %q which should be %q", defaultVal, mistake, correct)
		}
	}

	sqlKeywords := map[string]bool{
		"NULL": true, "TRUE": true, "FALSE": true,
		"CURRENT_TIMESTAMP": true, "CURRENT_DATE": true, "LOCALTIMESTAMP": true,
	}
	if !sqlKeywords[upperVal] && !strings.Contains(trimmed, "(") && !strings.Contains(trimmed, "'") &&
		!isNumeric(trimmed) && len(trimmed) > 3 {
		lower := strings.ToLower(trimmed)
		if strings.Contains(lower, "random") || strings.Contains(lower, "uuid") {
			return fmt.Errorf("invalid DEFAULT value: %q looks like a function but is missing parentheses", defaultVal)
		}
	}

	return nil
}

// ValidateEnumValue checks that v belongs to the closed set of a registered
// enum type.
func ValidateEnumValue(enumName, v string) error {
	enum, ok := LookupEnum(enumName)
	if !ok {
		return fmt.Errorf("enum type %q is not registered", enumName)
	}
	if !enum.Contains(v) {
		return fmt.Errorf("value %q is not a member of enum %s (%s)", v, enumName, strings.Join(enum.Values, ", "))
	}
	return nil
}

// isNumeric checks if a string is a valid number.
func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, c := range s {
		if i == 0 && (c == '-' || c == '+') {
			continue
		}
		if c == '.' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
