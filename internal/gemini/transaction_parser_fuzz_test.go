package gemini

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/centavo/ingest-bot/internal/models"
)

func FuzzParseCandidateResponse(f *testing.F) {
	// Valid JSON responses.
	f.Add(`{"date": "2026-09-01", "type": "expense", "description": "Coffee", "category": "Dining", "amount": "4.50"}`)
	f.Add(`{"date": "", "type": "income", "description": "", "category": "Salary", "amount": "2500"}`)

	// Markdown-wrapped (common LLM output).
	f.Add("```json\n{\"date\": \"2026-09-01\", \"category\": \"Dining\", \"amount\": \"4.50\"}\n```")
	f.Add("```\n{\"amount\": \"5.50\", \"category\": \"Dining\"}\n```")

	// Invalid/edge cases.
	f.Add(`{"amount": "abc", "category": "Dining"}`)
	f.Add(`{}`)
	f.Add(`not json`)
	f.Add(``)
	f.Add(`   `)
	f.Add(`{"amount": "-5.00", "category": "Dining"}`)
	f.Add(`{"amount": "4.50", "category": "Dining", "date": "invalid-date"}`)
	f.Add(`{"amount": "999999999999.99", "category": "Big"}`)

	// Prompt injection in fields.
	f.Add(`{"amount": "4.50", "category": "Dining\"; DROP TABLE receipts;--"}`)
	f.Add(`{"amount": "4.50", "category": "<script>alert(1)</script>"}`)

	// Unicode.
	f.Add(`{"amount": "4.50", "category": "コーヒー"}`)
	f.Add(`{"amount": "4.50", "category": "Café ☕"}`)

	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	f.Fuzz(func(t *testing.T, input string) {
		candidate, err := parseCandidateResponse(input, today)
		if err != nil || candidate == nil {
			return
		}

		// A successful parse must never carry a negative amount.
		if candidate.Amount.LessThan(decimal.Zero) {
			t.Errorf("parseCandidateResponse(%q) returned negative amount: %v", input, candidate.Amount)
		}

		// The date must always be a valid ISO date after fallback.
		if _, err := time.Parse(models.ReceiptDateLayout, candidate.Date); err != nil {
			t.Errorf("parseCandidateResponse(%q) returned bad date: %q", input, candidate.Date)
		}

		// The type is either empty or one of the two known values.
		if candidate.Type != "" && candidate.Type != models.CategoryTypeIncome && candidate.Type != models.CategoryTypeExpense {
			t.Errorf("parseCandidateResponse(%q) returned bad type: %q", input, candidate.Type)
		}
	})
}
