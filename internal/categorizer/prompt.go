package categorizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/statement-ledger/internal/models"
)

// BuildPrompt asks the model for exactly one allowed category as JSON.
// description must already be sanitized.
func BuildPrompt(description string) string {
	return fmt.Sprintf(`Categorize this bank transaction description into ONE of these categories: %s.

Transaction: "%s"

Respond with valid JSON only in this format: {"category": "CategoryName"}. Do not add any other text.`,
		strings.Join(models.AllowedCategories, ", "), description)
}

type categoryReply struct {
	Category string `json:"category"`
}

// parseCategoryReply reads the category from a model reply. Text around the
// outermost JSON object, such as markdown fences, is ignored.
func parseCategoryReply(reply string) (string, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end < start {
		return "", fmt.Errorf("no JSON object in reply %q", reply)
	}

	var out categoryReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &out); err != nil {
		return "", fmt.Errorf("invalid JSON in reply: %w", err)
	}
	return strings.TrimSpace(out.Category), nil
}
