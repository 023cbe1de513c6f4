package schema

import (
	"testing"
)

func TestJSONB_Scan(t *testing.T) {
	var j JSONB
	if err := j.Scan([]byte(`{"bann": false, "suspended": true}`)); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if j["bann"] != false {
		t.Errorf("expected bann=false, got %v", j["bann"])
	}
	if j["suspended"] != true {
		t.Errorf("expected suspended=true, got %v", j["suspended"])
	}
}

func TestJSONB_ScanNil(t *testing.T) {
	j := JSONB{"existing": "value"}
	if err := j.Scan(nil); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if j != nil {
		t.Errorf("expected nil map after scanning NULL, got %v", j)
	}
}

func TestJSONB_Value(t *testing.T) {
	var j JSONB
	val, err := j.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil for nil map, got %v", val)
	}

	j = JSONB{"private_account": true}
	val, err = j.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if string(val.([]byte)) != `{"private_account":true}` {
		t.Errorf("unexpected JSON: %s", val)
	}
}
