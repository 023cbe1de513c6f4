package schema

import (
	"strings"
	"testing"
)

func TestValidateDefaultValue(t *testing.T) {
	valid := []string{
		"now()",
		"0",
		"false",
		"NULL",
		"CURRENT_TIMESTAMP",
		"gen_random_uuid()",
		"'{}'::jsonb",
		"jsonb_build_object('bann', false, 'suspended', false)",
	}
	for _, v := range valid {
		if err := ValidateDefaultValue(v); err != nil {
			t.Errorf("expected %q to be valid, got: %v", v, err)
		}
	}

	invalid := []string{
		"CURRENT TIMESTAMP",
		"NOW ()",
		"gen_random_uuid",
	}
	for _, v := range invalid {
		if err := ValidateDefaultValue(v); err == nil {
			t.Errorf("expected %q to be rejected", v)
		}
	}
}

func TestValidateEnumValue(t *testing.T) {
	RegisterEnum(EnumType{Name: "validator_color", Values: []string{"red", "green"}})

	if err := ValidateEnumValue("validator_color", "red"); err != nil {
		t.Errorf("expected 'red' to be a member, got: %v", err)
	}

	err := ValidateEnumValue("validator_color", "blue")
	if err == nil {
		t.Fatal("expected error for value outside the closed set")
	}
	if !strings.Contains(err.Error(), "blue") {
		t.Errorf("expected error to name the value, got: %v", err)
	}

	if err := ValidateEnumValue("no_such_enum", "x"); err == nil {
		t.Fatal("expected error for unregistered enum")
	}
}
