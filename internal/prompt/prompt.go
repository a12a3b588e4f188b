package prompt

import (
	"encoding/json"
	"fmt"

	"stealthcompany.com/oncoaide/internal/records"
)

const recordTemplate = `I am OncoAide, an oncology assistant. Below is the complete record for %s:
%s

Answer the user's question: %s
Provide a clear, structured, and medically relevant response based only on this data.
Do not invent patients or add information not present in the record.`

const generalTemplate = `I am OncoAide, an oncology assistant. No patient data is provided for this query.
Answer the user's question: %s
Provide a clear, relevant response as OncoAide. If the query requires patient data, inform the user to specify a patient name (e.g., 'Tell me about Alice Johnson').`

// ForRecord builds the record-bound prompt. The record is dumped in full, without redaction.
func ForRecord(name string, rec records.Record, question string) (string, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("serialize patient record: %w", err)
	}
	return fmt.Sprintf(recordTemplate, name, payload, question), nil
}

// General builds the prompt used when no record was resolved
func General(question string) string {
	return fmt.Sprintf(generalTemplate, question)
}
