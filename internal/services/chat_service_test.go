package services_test

import (
	"math/rand"
	"strings"
	"testing"

	"fashionstore/internal/services"
)

func newChat() *services.ChatService {
	return services.NewChatService(rand.New(rand.NewSource(1)))
}

func TestChatReply_KeywordRouting(t *testing.T) {
	svc := newChat()

	cases := []struct {
		message string
		want    string
	}{
		{"when will my delivery arrive", "shipping"},
		{"what are your opening hours", "open 24/7"},
		{"I want a refund", "returns within 30 days"},
		{"can I pay with a credit card", "Visa, MasterCard"},
		{"does this fit true to size", "size guide"},
	}
	for _, tc := range cases {
		got := svc.Reply(tc.message)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("Reply(%q) = %q, want it to mention %q", tc.message, got, tc.want)
		}
	}
}

func TestChatReply_GreetingPicksFromGreetingSet(t *testing.T) {
	svc := newChat()
	greetings := []string{
		"Hello! How can I help you today?",
		"Hi there! Looking for something special?",
		"Welcome to our store! Need assistance?",
	}
	for i := 0; i < 10; i++ {
		got := svc.Reply("hello")
		known := false
		for _, g := range greetings {
			if got == g {
				known = true
			}
		}
		if !known {
			t.Fatalf("greeting reply %q not in greeting set", got)
		}
	}
}

func TestChatReply_FallbackForUnknownTopic(t *testing.T) {
	svc := newChat()
	got := svc.Reply("quantum entanglement")
	if !strings.Contains(got, "customer service") {
		t.Fatalf("want fallback reply, got %q", got)
	}
}

func TestChatReply_CaseInsensitive(t *testing.T) {
	svc := newChat()
	if got := svc.Reply("SHIPPING COST?"); !strings.Contains(got, "shipping") {
		t.Fatalf("uppercase message not matched: %q", got)
	}
}

func TestChatSuggestions(t *testing.T) {
	svc := newChat()
	if got := svc.Suggestions(); len(got) != 4 {
		t.Fatalf("want 4 suggestions, got %d", len(got))
	}
}
