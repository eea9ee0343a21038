package services

import (
	"math/rand"
	"strings"
	"unicode"
)

// ChatService answers support messages from a static keyword table. The rand
// source is injected so reply selection is deterministic in tests.
type ChatService struct {
	rng *rand.Rand
}

func NewChatService(rng *rand.Rand) *ChatService { return &ChatService{rng: rng} }

type chatRule struct {
	keywords []string
	replies  []string
}

// Rules are matched in order; the first keyword hit wins.
var chatRules = []chatRule{
	{
		keywords: []string{"hello", "hi", "hey"},
		replies: []string{
			"Hello! How can I help you today?",
			"Hi there! Looking for something special?",
			"Welcome to our store! Need assistance?",
		},
	},
	{
		keywords: []string{"hour", "open", "close"},
		replies:  []string{"We're open 24/7 online! Orders ship Monday-Friday 9AM-5PM."},
	},
	{
		keywords: []string{"ship", "delivery", "shipping"},
		replies:  []string{"Standard shipping: 3-5 business days, $4.99\nExpress shipping: 1-2 business days, $9.99"},
	},
	{
		keywords: []string{"return", "refund", "exchange"},
		replies:  []string{"We accept returns within 30 days of purchase. Items must be unworn with tags attached."},
	},
	{
		keywords: []string{"pay", "payment", "card", "credit"},
		replies:  []string{"We accept Visa, MasterCard, American Express, PayPal, and Apple Pay."},
	},
	{
		keywords: []string{"size", "fit", "measurement"},
		replies:  []string{"Check our size guide on each product page. If unsure, order multiple sizes and return what doesn't fit!"},
	},
}

var chatFallback = []string{
	"I'm not sure about that. Can you contact customer service at support@fashionstore.com?",
}

func (s *ChatService) Reply(message string) string {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, rule := range chatRules {
		for _, kw := range rule.keywords {
			if hasKeyword(words, kw) {
				return rule.replies[s.rng.Intn(len(rule.replies))]
			}
		}
	}
	return chatFallback[s.rng.Intn(len(chatFallback))]
}

// hasKeyword matches a keyword against word prefixes so "ship" covers
// "shipping" without "hi" firing inside it.
func hasKeyword(words []string, kw string) bool {
	for _, w := range words {
		if strings.HasPrefix(w, kw) {
			return true
		}
	}
	return false
}

func (s *ChatService) Suggestions() []string {
	return []string{"Shipping policy", "Return policy", "Size guide", "Payment methods"}
}
