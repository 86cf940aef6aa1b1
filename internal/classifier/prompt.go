package classifier

import (
	"fmt"

	"statement-ingest/internal/models"
)

const systemInstruction = `You are an expert in financial transaction analysis. You read text extracted
from bank statements and credit card invoices and return the transactions it contains as strict JSON.
Never invent transactions. Return only JSON, without Markdown fences or commentary.`

const promptTemplate = `Analyse the text below, extracted from a %s issued by %s in %s, and return ONLY a valid JSON object.

For each transaction extract:
- date (format yyyy-MM-dd)
- shortDescription (short label of the entry)
- detail (full description)
- externalReference (document or reference number, empty string if none)
- amount (decimal number using a dot as separator, always positive)
- kind (DEBIT, CREDIT, PAYMENT, PURCHASE, TRANSFER, FEE)
- category (one of FOOD, TRANSPORT, HEALTH, ENTERTAINMENT, HOUSING, EDUCATION, OTHER)

Expected format:
{
  "transactions": [
    {
      "date": "2024-01-15",
      "shortDescription": "PURCHASE",
      "detail": "SUPERMARKET XYZ",
      "externalReference": "123456",
      "amount": 150.50,
      "kind": "DEBIT",
      "category": "FOOD"
    }
  ]
}

If the text contains no transactions return {"transactions": []}.

DOCUMENT TEXT:
%s`

func buildPrompt(text, institution, currency string, docType models.DocumentType) string {
	return fmt.Sprintf(promptTemplate, docType.Label(), institution, currency, text)
}
