// Package llm – prompt assembly.
//
// The system prompt is composed from three layers: the tenant's base system
// prompt (or a neutral default), the tenant's free-form custom instructions,
// and a compact profile of the friend being replied to. History and the new
// user message follow as separate transcript entries.
package llm

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// defaultSystemPrompt is used when a tenant has not authored one.
const defaultSystemPrompt = "You are a helpful customer support assistant " +
	"for a LINE official account. Reply concisely and politely in the " +
	"language the customer writes in."

// FriendContext is the CRM profile bundle folded into the system prompt.
type FriendContext struct {
	ID                string
	DisplayName       string
	CustomFields      map[string]string
	Tags              []string
	LastInteractionAt *time.Time
}

// BuildSystemPrompt renders the layered system prompt. Empty layers are
// skipped; custom field keys are sorted for deterministic output.
func BuildSystemPrompt(systemPrompt, customInstructions string, fc FriendContext) string {
	var b strings.Builder

	base := strings.TrimSpace(systemPrompt)
	if base == "" {
		base = defaultSystemPrompt
	}
	b.WriteString(base)

	if ci := strings.TrimSpace(customInstructions); ci != "" {
		b.WriteString("\n\nAdditional instructions:\n")
		b.WriteString(ci)
	}

	b.WriteString("\n\nCustomer profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orUnknown(fc.DisplayName))
	if len(fc.Tags) > 0 {
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(fc.Tags, ", "))
	}
	if len(fc.CustomFields) > 0 {
		keys := make([]string, 0, len(fc.CustomFields))
		for k := range fc.CustomFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, fc.CustomFields[k])
		}
	}
	if fc.LastInteractionAt != nil {
		fmt.Fprintf(&b, "- Last interaction: %s\n", fc.LastInteractionAt.UTC().Format(time.RFC3339))
	}

	return strings.TrimRight(b.String(), "\n")
}

// BuildMessages assembles the full transcript for one completion call:
// system prompt, then the (already truncated) history oldest first, then the
// new user message.
func BuildMessages(systemPrompt string, history []Message, userMessage string) []Message {
	out := make([]Message, 0, len(history)+2)
	out = append(out, Message{Role: "system", Content: systemPrompt})
	out = append(out, history...)
	out = append(out, Message{Role: "user", Content: userMessage})
	return out
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unknown)"
	}
	return s
}
