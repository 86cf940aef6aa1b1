package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"statement-ingest/internal/models"

	"github.com/shopspring/decimal"
)

var (
	categoryAliases = map[string]models.TransactionCategory{
		"FOOD":          models.CategoryFood,
		"ALIMENTACAO":   models.CategoryFood,
		"TRANSPORT":     models.CategoryTransport,
		"TRANSPORTE":    models.CategoryTransport,
		"HEALTH":        models.CategoryHealth,
		"HEALTHCARE":    models.CategoryHealth,
		"SAUDE":         models.CategoryHealth,
		"ENTERTAINMENT": models.CategoryEntertainment,
		"LAZER":         models.CategoryEntertainment,
		"HOUSING":       models.CategoryHousing,
		"UTILITIES":     models.CategoryHousing,
		"MORADIA":       models.CategoryHousing,
		"EDUCATION":     models.CategoryEducation,
		"EDUCACAO":      models.CategoryEducation,
		"OTHER":         models.CategoryOther,
		"OUTROS":        models.CategoryOther,
	}

	currencySymbols = regexp.MustCompile(`(?i)(r\$|us\$|\$|€|£|brl|usd|eur)`)
)

type rawResponse struct {
	Transactions []rawItem `json:"transactions"`
	Items        []rawItem `json:"items"`
}

type rawItem struct {
	Date              string          `json:"date"`
	ShortDescription  string          `json:"shortDescription"`
	Detail            string          `json:"detail"`
	ExternalReference json.RawMessage `json:"externalReference"`
	Amount            json.RawMessage `json:"amount"`
	Currency          string          `json:"currency"`
	Kind              string          `json:"kind"`
	Category          string          `json:"category"`
}

// cleanModelJSON strips Markdown fences and any prose around the JSON payload.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return s
	}
	closing := "}"
	if s[start] == '[' {
		closing = "]"
	}
	if end := strings.LastIndex(s, closing); end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

// parseItems accepts either {"transactions": [...]} or a bare array.
// Items without a usable date or amount are returned in skipped.
func parseItems(raw string) (items []models.ClassifiedItem, skipped []string, err error) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, nil, fmt.Errorf("%w: empty model response", ErrClassification)
	}

	var rawItems []rawItem
	if strings.HasPrefix(clean, "[") {
		err = json.Unmarshal([]byte(clean), &rawItems)
	} else {
		var resp rawResponse
		err = json.Unmarshal([]byte(clean), &resp)
		rawItems = resp.Transactions
		if len(rawItems) == 0 {
			rawItems = resp.Items
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid JSON from model: %v", ErrClassification, err)
	}

	items = make([]models.ClassifiedItem, 0, len(rawItems))
	for i, r := range rawItems {
		item, convErr := r.toItem()
		if convErr != nil {
			skipped = append(skipped, fmt.Sprintf("item %d: %v", i, convErr))
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

func (r rawItem) toItem() (models.ClassifiedItem, error) {
	date, err := models.ParseDate(r.Date)
	if err != nil {
		return models.ClassifiedItem{}, err
	}
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return models.ClassifiedItem{}, err
	}

	return models.ClassifiedItem{
		Date:              date,
		ShortDescription:  strings.TrimSpace(r.ShortDescription),
		Detail:            strings.TrimSpace(r.Detail),
		ExternalReference: rawString(r.ExternalReference),
		Amount:            amount,
		Currency:          strings.ToUpper(strings.TrimSpace(r.Currency)),
		Kind:              strings.ToUpper(strings.TrimSpace(r.Kind)),
		Category:          string(NormalizeCategory(r.Category)),
	}, nil
}

func NormalizeCategory(category string) models.TransactionCategory {
	if c, ok := categoryAliases[strings.ToUpper(strings.TrimSpace(category))]; ok {
		return c
	}
	return models.CategoryOther
}

// rawString renders a JSON string or number as text; null becomes "".
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// parseAmount accepts JSON numbers and strings such as "1.234,56" or "R$ 150,50".
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	s := rawString(raw)
	if s == "" {
		return decimal.Decimal{}, errors.New("missing amount")
	}

	s = currencySymbols.ReplaceAllString(s, "")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma > lastDot:
		// comma is the decimal separator
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma != -1:
		s = strings.ReplaceAll(s, ",", "")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", rawString(raw))
	}
	return amount.Abs(), nil
}
