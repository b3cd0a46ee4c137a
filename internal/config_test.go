package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := HTTPConfig{Port: port}
		if err := cfg.Validate(); err == nil {
			t.Errorf("port %d should fail validation", port)
		}
	}
}

func TestTutorConfig_TemperatureBounds(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Tutor.Temperature = 3.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("temperature above 2 should fail")
	}
}

func TestCurriculumConfig_DefaultsWhenEmpty(t *testing.T) {
	var cfg CurriculumConfig
	cur := cfg.Curriculum()
	if len(cur.Groups) != 6 {
		t.Errorf("groups = %d, want the 6 IB defaults", len(cur.Groups))
	}
}

func TestCurriculumConfig_Override(t *testing.T) {
	cfg := CurriculumConfig{Groups: []CurriculumGroup{
		{Name: "Custom", Subjects: []string{"Astronomy"}},
	}}
	cur := cfg.Curriculum()
	if len(cur.Groups) != 1 || !cur.Has("Astronomy") {
		t.Errorf("curriculum = %+v", cur)
	}
}
