// Package role defines the fixed set of assistant personas.
//
// A role is ambient view state: it selects the greeting and suggested prompts
// shown for an empty chat, the short title used when a chat is titled
// automatically, and the role parameter sent with every query.
package role

import (
	"fmt"
	"strings"
)

// Key identifies a role. It is the value sent to the backend.
type Key string

// Role keys.
const (
	Scientist Key = "scientist"
	Manager   Key = "manager"
	Architect Key = "architect"
	Student   Key = "student"
)

// Default is the role used when none is selected.
// The backend falls back to the scientist prompt for unknown roles as well.
const Default = Scientist

// Role is the configuration attached to a role key.
type Role struct {
	Key              Key
	Title            string
	ShortTitle       string
	Greeting         string
	SuggestedPrompts []string
}

var table = map[Key]Role{
	Scientist: {
		Key:        Scientist,
		Title:      "Research Scientist",
		ShortTitle: "Scientist",
		Greeting: "Hello! I'm your NASA BioExplorer research assistant. Ask me about " +
			"space biology experiments, results, and their implications for lunar and Martian exploration.",
		SuggestedPrompts: []string{
			"What are the effects of microgravity on bone density?",
			"Summarize plant growth experiments conducted on the ISS.",
			"How does spaceflight affect microbial virulence?",
			"What gene expression changes were observed in astronauts?",
		},
	},
	Manager: {
		Key:        Manager,
		Title:      "Investment Manager",
		ShortTitle: "Manager",
		Greeting: "Hello! I can summarize NASA's space bioscience portfolio for decision-makers. " +
			"Ask me about breakthroughs, risk reduction, and commercial opportunities.",
		SuggestedPrompts: []string{
			"Which research areas have the highest commercial potential?",
			"What breakthroughs reduced risk for Moon and Mars missions?",
			"Summarize key findings that influenced mission planning.",
		},
	},
	Architect: {
		Key:        Architect,
		Title:      "Mission Architect",
		ShortTitle: "Architect",
		Greeting: "Hello! I help mission architects plan safe human exploration. Ask me how " +
			"bioscience results affect spacecraft systems, habitats, and crew health.",
		SuggestedPrompts: []string{
			"How should habitat design account for radiation effects on crew?",
			"What life-support lessons come from plant growth experiments?",
			"Which health risks matter most for long-duration missions?",
		},
	},
	Student: {
		Key:        Student,
		Title:      "Student",
		ShortTitle: "Student",
		Greeting: "Hi! I'm your space biology tutor. Ask me anything about NASA experiments " +
			"and I'll explain the science step by step.",
		SuggestedPrompts: []string{
			"What happens to the human body in space?",
			"Why do scientists grow plants in space?",
			"What is astrobiology?",
		},
	},
}

// order is the display order for role pickers.
var order = []Key{Scientist, Manager, Architect, Student}

// Get returns the role for key.
func Get(key Key) (Role, bool) {
	r, ok := table[key]
	return r, ok
}

// MustGet returns the role for key, or the default role if key is unknown.
func MustGet(key Key) Role {
	if r, ok := table[key]; ok {
		return r
	}
	return table[Default]
}

// Parse resolves a user supplied role name. Matching is case-insensitive and
// accepts either the key or the short title.
func Parse(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Default, nil
	}
	for _, k := range order {
		r := table[k]
		if string(k) == name || strings.ToLower(r.ShortTitle) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown role %q (valid roles: %s)", name, strings.Join(Names(), ", "))
}

// All returns every role in display order.
func All() []Role {
	roles := make([]Role, 0, len(order))
	for _, k := range order {
		roles = append(roles, table[k])
	}
	return roles
}

// Names returns every role key in display order.
func Names() []string {
	names := make([]string, 0, len(order))
	for _, k := range order {
		names = append(names, string(k))
	}
	return names
}

// Next returns the role following key in display order, wrapping around.
func Next(key Key) Key {
	for i, k := range order {
		if k == key {
			return order[(i+1)%len(order)]
		}
	}
	return Default
}

// Prompts returns a copy of the role's suggested prompts.
func (r Role) Prompts() []string {
	out := make([]string, len(r.SuggestedPrompts))
	copy(out, r.SuggestedPrompts)
	return out
}
