package interview

import (
	"strings"

	"github.com/leadlens-ai/leadlens/internal/catalog"
)

var personaMarkers = map[catalog.Persona][]string{
	catalog.PersonaOwner: {
		"founder", "i own", "my company", "my business", "ceo", "started the company",
	},
	catalog.PersonaOperations: {
		"operations", "ops manager", "workflow", "fulfillment", "scheduling",
		"day-to-day", "logistics",
	},
	catalog.PersonaFinance: {
		"cfo", "finance", "accounting", "bookkeep", "margins", "p&l", "invoicing",
	},
	catalog.PersonaTechnical: {
		"cto", "engineer", "developer", "our stack", "api", "integration",
		"codebase", "it manager",
	},
}

// updatePersona accumulates lexical evidence for each persona and keeps the
// best-supported one. Confidence is the winner's share of all evidence,
// dampened so a single matching answer never claims certainty.
func updatePersona(c *Context, answerText string) {
	text := strings.ToLower(answerText)
	if text == "" {
		return
	}

	matched := false
	for persona, markers := range personaMarkers {
		for _, m := range markers {
			if strings.Contains(text, m) {
				if c.PersonaScores == nil {
					c.PersonaScores = make(map[catalog.Persona]float64)
				}
				c.PersonaScores[persona]++
				matched = true
				break
			}
		}
	}
	if !matched {
		return
	}

	var best catalog.Persona
	var bestScore, total float64
	for persona, score := range c.PersonaScores {
		total += score
		if score > bestScore || (score == bestScore && persona < best) {
			best = persona
			bestScore = score
		}
	}
	c.Persona = best
	c.PersonaConfidence = bestScore / (total + 1)
}
