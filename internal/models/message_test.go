package models

import "testing"

func TestCounterpart(t *testing.T) {
	msg := Message{SenderID: "a", RecipientID: "b"}

	if got := msg.Counterpart("a"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := msg.Counterpart("b"); got != "a" {
		t.Fatalf("expected a, got %q", got)
	}
	if got := msg.Counterpart("c"); got != "" {
		t.Fatalf("expected empty for non-participant, got %q", got)
	}
}

func TestBetween(t *testing.T) {
	msg := Message{SenderID: "a", RecipientID: "b"}

	if !msg.Between("a", "b") || !msg.Between("b", "a") {
		t.Fatal("pair match should be direction-agnostic")
	}
	if msg.Between("a", "c") || msg.Between("c", "b") {
		t.Fatal("partial pair must not match")
	}
	if msg.Between("c", "d") {
		t.Fatal("unrelated pair must not match")
	}
}

func TestDisplayName(t *testing.T) {
	full := "Alice Person"

	p := Profile{ID: "id-1", Username: "alice", FullName: &full}
	if got := p.DisplayName(); got != "Alice Person" {
		t.Fatalf("expected full name, got %q", got)
	}

	p.FullName = nil
	if got := p.DisplayName(); got != "alice" {
		t.Fatalf("expected username, got %q", got)
	}

	p.Username = ""
	if got := p.DisplayName(); got != "id-1" {
		t.Fatalf("expected ID fallback, got %q", got)
	}
}

func TestPlaceholderProfile(t *testing.T) {
	p := PlaceholderProfile("some-id")
	if p.ID != "some-id" || p.Username != "Unknown" {
		t.Fatalf("unexpected placeholder: %+v", p)
	}
	if p.AvatarURL != nil {
		t.Fatal("placeholder must not carry an avatar")
	}
}
