// Package narrator produces written commentary over a pre-calculated metrics
// report using a hosted language model.
package narrator

import (
	"errors"
	"strings"
)

// Message is a single chat turn. Role is "system", "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// ErrEmptyReport is returned when there is nothing to narrate
var ErrEmptyReport = errors.New("report is empty")

var personas = map[string]string{
	"buffett": "You are Warren Buffett. Judge the business on durable competitive advantage, " +
		"owner earnings, return on invested capital and conservative financing.",
	"graham": "You are Benjamin Graham. Judge the stock on margin of safety, balance sheet " +
		"strength, earnings stability and price relative to the Graham Number.",
	"lynch": "You are Peter Lynch. Judge the company on growth at a reasonable price, " +
		"the PEG ratio and whether the story is simple and sustainable.",
	"wood": "You are Cathie Wood. Judge the company on disruptive growth potential, " +
		"revenue acceleration and reinvestment capacity.",
	"soros": "You are George Soros. Judge the stock on reflexivity, market perception " +
		"versus fundamentals and where the prevailing bias may break.",
	"dalio": "You are Ray Dalio. Judge the company on debt cycle exposure, leverage " +
		"and resilience across economic environments.",
	"burry": "You are Michael Burry. Look for what the market is missing: accounting " +
		"red flags, hidden balance sheet risk and deep value.",
	"credit_analyst": "You are a senior credit analyst. Judge the issuer on debt service " +
		"capacity, liquidity, leverage and default risk.",
}

const defaultPersona = "You are a fundamental equity analyst."

const instructions = `The user message is a report of pre-calculated financial metrics.
Use the figures exactly as given. Do not recompute them and do not invent numbers.
Where a metric is N/A, say the data is unavailable rather than guessing.
Write four to six short paragraphs in plain prose, ending with a one-line verdict.`

// Persona returns the system persona for an expert profile. Unknown profiles
// get the generic analyst persona.
func Persona(profile string) string {
	if p, ok := personas[strings.ToLower(strings.TrimSpace(profile))]; ok {
		return p
	}
	return defaultPersona
}

// BuildMessages assembles the system and user turns for one narration.
func BuildMessages(profile, report string) ([]Message, error) {
	if strings.TrimSpace(report) == "" {
		return nil, ErrEmptyReport
	}
	return []Message{
		{Role: "system", Content: Persona(profile) + "\n\n" + instructions},
		{Role: "user", Content: report},
	}, nil
}

// splitSystem separates the first system message from the chat turns
func splitSystem(messages []Message) ([]Message, string, error) {
	if len(messages) == 0 {
		return nil, "", errors.New("messages cannot be empty")
	}

	var system string
	turns := make([]Message, 0, len(messages))
	hasUser := false
	for _, msg := range messages {
		if msg.Role == "system" {
			if system == "" {
				system = msg.Content
			}
			continue
		}
		if msg.Role != "assistant" {
			hasUser = true
		}
		turns = append(turns, msg)
	}
	if !hasUser {
		return nil, "", errors.New("at least one message must have role 'user'")
	}
	return turns, system, nil
}
