package overconfig

import "testing"

func mapLookup(m map[string]string) envLookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestLoadExplicitPulse(t *testing.T) {
	cfg, lines := Load(mapLookup(map[string]string{
		"OVERTHROWER_STRATEGY": "2",
		"OVERTHROWER_DELAY":    "3",
		"OVERTHROWER_DURATION": "2",
	}))

	if cfg.Strategy != StrategyPulse {
		t.Fatalf("strategy = %v, want pulse", cfg.Strategy)
	}
	if cfg.Delay != 3 {
		t.Fatalf("delay = %d, want 3", cfg.Delay)
	}
	if cfg.Duration != 2 {
		t.Fatalf("duration = %d, want 2", cfg.Duration)
	}
	if len(lines) == 0 {
		t.Fatal("expected banner lines")
	}
}

func TestLoadInvalidFallsBackToRandom(t *testing.T) {
	cfg, lines := Load(mapLookup(map[string]string{
		"OVERTHROWER_STRATEGY":   "1",
		"OVERTHROWER_DELAY":      "not-a-number",
		"OVERTHROWER_DUTY_CYCLE": "999999", // out of [1,4096] range, ignored for step strategy anyway
	}))

	if cfg.Strategy != StrategyStep {
		t.Fatalf("strategy = %v, want step", cfg.Strategy)
	}
	if cfg.Delay > uint32(RandomDelayDefaultMax) {
		t.Fatalf("fallback delay %d exceeds random default max %d", cfg.Delay, RandomDelayDefaultMax)
	}

	found := false
	for _, l := range lines {
		if l == "OVERTHROWER_DELAY has incorrect value (not-a-number). Using a random value ("+itoa(cfg.Delay)+")." {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning line about OVERTHROWER_DELAY, got %v", lines)
	}
}

func TestLoadSelfOverthrowPresenceOnly(t *testing.T) {
	cfg, _ := Load(mapLookup(map[string]string{
		"OVERTHROWER_STRATEGY":      "3",
		"OVERTHROWER_SELF_OVERTHROW": "",
	}))
	if !cfg.SelfOverthrow {
		t.Fatal("expected SelfOverthrow to be enabled merely by the variable's presence")
	}
	if cfg.Strategy != StrategyNone {
		t.Fatalf("strategy = %v, want none", cfg.Strategy)
	}
}

func TestDutyCycleOutOfRangeUsesRandom(t *testing.T) {
	cfg, _ := Load(mapLookup(map[string]string{
		"OVERTHROWER_STRATEGY":   "0",
		"OVERTHROWER_SEED":       "42",
		"OVERTHROWER_DUTY_CYCLE": "0", // below DutyCycleMin
	}))
	if cfg.DutyCycle < 1 || cfg.DutyCycle > 4096 {
		t.Fatalf("duty cycle %d out of documented [1,4096] range", cfg.DutyCycle)
	}
}

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	digits := []byte{}
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}
	return string(digits)
}
