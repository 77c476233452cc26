package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Answer is a validated, normalized answer to one question
type Answer struct {
	Key   string
	Value string
}

// Answers keeps answers in question order
type Answers []Answer

// Get returns the value stored under key
func (a Answers) Get(key string) (string, bool) {
	for _, ans := range a {
		if ans.Key == key {
			return ans.Value, true
		}
	}
	return "", false
}

// Keys returns the question keys in insertion order
func (a Answers) Keys() []string {
	keys := make([]string, len(a))
	for i, ans := range a {
		keys[i] = ans.Key
	}
	return keys
}

// Clone returns an independent copy
func (a Answers) Clone() Answers {
	if a == nil {
		return nil
	}
	out := make(Answers, len(a))
	copy(out, a)
	return out
}

// MarshalJSON encodes answers as a JSON object preserving question order
func (a Answers) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ans := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(ans.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(ans.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the key order of the document
func (a *Answers) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("answers: expected object, got %v", tok)
	}

	var out Answers
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("answers: expected key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("answers: value for %q: %w", key, err)
		}
		out = append(out, Answer{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}
