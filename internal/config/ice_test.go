package config

import (
	"strings"
	"testing"
)

func TestICEServersJSON(t *testing.T) {
	cfg := &Config{ICEServersJSON: `[
		{"urls": "stun:stun.example.org:3478"},
		{"urls": ["turn:turn.example.org:3478"], "username": "u", "credential": "c"}
	]`}

	servers, err := cfg.ICEServers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(servers))
	}
	if servers[0].URLs[0] != "stun:stun.example.org:3478" {
		t.Errorf("unexpected stun url: %q", servers[0].URLs[0])
	}
	if servers[1].Username != "u" {
		t.Errorf("unexpected turn username: %q", servers[1].Username)
	}
}

func TestICEServersJSON_TurnWithoutCredentials(t *testing.T) {
	cfg := &Config{ICEServersJSON: `[{"urls": ["turn:turn.example.org:3478"]}]`}
	if _, err := cfg.ICEServers(); err == nil {
		t.Fatal("expected error for turn url without credentials")
	}
}

func TestICEServersJSON_BadScheme(t *testing.T) {
	cfg := &Config{ICEServersJSON: `[{"urls": ["https://example.org"]}]`}
	_, err := cfg.ICEServers()
	if err == nil || !strings.Contains(err.Error(), "unsupported url scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

func TestICEServersFromParts(t *testing.T) {
	cfg := &Config{
		STUNURLs:       "stun:a.example.org, stun:b.example.org",
		TURNURLs:       "turn:t.example.org",
		TURNUsername:   "user",
		TURNCredential: "pass",
	}

	servers, err := cfg.ICEServers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(servers))
	}
	if len(servers[0].URLs) != 2 {
		t.Errorf("expected 2 stun urls, got %d", len(servers[0].URLs))
	}
}

func TestICEServersFromParts_TurnMissingUsername(t *testing.T) {
	cfg := &Config{TURNURLs: "turn:t.example.org", TURNCredential: "pass"}
	if _, err := cfg.ICEServers(); err == nil {
		t.Fatal("expected error for missing turn username")
	}
}

func TestICEServersEmptyConfig(t *testing.T) {
	cfg := &Config{}
	servers, err := cfg.ICEServers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(servers) != 0 {
		t.Fatalf("expected no servers, got %d", len(servers))
	}
}
