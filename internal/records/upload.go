package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedFileType is returned for uploads that are neither .json nor .txt
	ErrUnsupportedFileType = errors.New("unsupported file type, use JSON or TXT")
	// ErrMalformedUpload wraps any decoding failure of an uploaded file
	ErrMalformedUpload = errors.New("error processing file")
)

// Upload is the decoded content of an uploaded patient file
type Upload struct {
	Records []Record
	// Batch is true when the file held a JSON array
	Batch bool
	// Text is true when the file was parsed as key: value lines
	Text bool
}

// ParseUpload decodes an uploaded file by extension. JSON files hold one
// object or an array of objects; TXT files hold "key: value" lines forming a
// single flat record.
func ParseUpload(filename string, content []byte) (*Upload, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".json" && ext != ".txt" {
		return nil, ErrUnsupportedFileType
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrMalformedUpload)
	}

	if ext == ".txt" {
		return &Upload{Records: []Record{ParseKeyValueText(string(content))}, Text: true}, nil
	}

	recs, batch, err := DecodeJSON(content)
	if err != nil {
		return nil, err
	}
	return &Upload{Records: recs, Batch: batch}, nil
}

// DecodeJSON decodes a single JSON object or an array of objects. batch
// reports whether the input was an array.
func DecodeJSON(content []byte) (recs []Record, batch bool, err error) {
	var raw interface{}
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedUpload, err)
	}

	switch v := raw.(type) {
	case map[string]interface{}:
		return []Record{Record(v)}, false, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, true, fmt.Errorf("%w: array holds no records", ErrMalformedUpload)
		}
		recs = make([]Record, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, true, fmt.Errorf("%w: element %d is not an object", ErrMalformedUpload, i)
			}
			recs = append(recs, Record(m))
		}
		return recs, true, nil
	default:
		return nil, false, fmt.Errorf("%w: expected an object or an array of objects", ErrMalformedUpload)
	}
}

// ParseKeyValueText splits each line on its first colon into a flat field.
// Lines without a colon are skipped. There is no escaping and no multi-line
// value support; a later duplicate key overwrites an earlier one.
func ParseKeyValueText(text string) Record {
	rec := Record{}
	for _, line := range strings.Split(text, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		rec[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return rec
}

// Acknowledgement is the success message returned to the uploader
func (u *Upload) Acknowledgement() string {
	if u.Batch {
		return fmt.Sprintf("Uploaded %d patients successfully!", len(u.Records))
	}
	name := "record"
	if len(u.Records) == 1 {
		if u.Text {
			if v, ok := u.Records[0].lookup("name"); ok {
				name = v
			}
		} else {
			name = u.Records[0].DisplayName("record")
		}
	}
	return fmt.Sprintf("Patient %s uploaded successfully!", name)
}
