package dnaAuth

import (
	"strings"
	"testing"

	"github.com/MrEthical07/dnaAuth/profile"
)

func TestBuildRejectsInvalidConfigWithReason(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Matcher.SimilarityThreshold = 0

	_, err := New().WithConfig(cfg).Build()
	if err == nil || !strings.Contains(err.Error(), "SimilarityThreshold") {
		t.Fatalf("expected similarity threshold rejection, got %v", err)
	}
}

func TestBuildRejectsProfileWithBadAlphabet(t *testing.T) {
	_, err := New().WithProfiles([]profile.Profile{{
		Sequence:      "ATCGXX",
		Role:          "intruder",
		SecurityLevel: 1,
	}}).Build()
	if err == nil || !strings.Contains(err.Error(), "A, T, C, G") {
		t.Fatalf("expected alphabet rejection, got %v", err)
	}
}

func TestBuildRejectsDuplicateProfileSequence(t *testing.T) {
	profiles := profile.Defaults()
	profiles = append(profiles, profiles[0])
	profiles[len(profiles)-1].Role = "shadow"

	_, err := New().WithProfiles(profiles).Build()
	if err == nil || !strings.Contains(err.Error(), "duplicate sequence") {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestBuildRejectsOutOfRangeSecurityLevel(t *testing.T) {
	profiles := profile.Defaults()
	profiles[1].SecurityLevel = 11

	_, err := New().WithProfiles(profiles).Build()
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Fatalf("expected level rejection, got %v", err)
	}
}

func TestBuildPermissionsFrozen(t *testing.T) {
	engine := newTestEngine(t, nil)
	if _, err := engine.Permissions().Register("late"); err == nil {
		t.Fatal("expected registry to be frozen after Build")
	}
}

func TestEngineConfigIsCopy(t *testing.T) {
	engine := newTestEngine(t, nil)
	cfg := engine.Config()
	cfg.Trust.Multiplier = 1
	if engine.TrustScore(&profile.Profile{SecurityLevel: 5}) != 100 {
		t.Fatal("mutating the returned config must not affect the engine")
	}
}
