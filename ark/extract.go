package ark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSON = regexp.MustCompile("```(?i:json)?\\s*(\\{[\\s\\S]*?\\})\\s*```")
	greedyJSON = regexp.MustCompile(`\{[\s\S]*\}`)
	lazyJSON   = regexp.MustCompile(`\{[\s\S]*?\}`)
)

// ExtractText pulls the model's answer text out of a response body. The
// responses API nests it in output[].content[]; chat-completion style
// bodies and bare text/content fields are accepted too. When no known
// envelope matches, the body itself is returned.
func ExtractText(body []byte) string {
	trimmed := bytes.TrimSpace(body)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil || obj == nil {
		if s, ok := rawString(trimmed); ok {
			return s
		}
		return string(trimmed)
	}

	if text := outputMessageText(obj["output"]); text != "" {
		return text
	}
	if s, ok := rawString(obj["output"]); ok && s != "" {
		return s
	}
	if content, ok := choiceContent(obj["choices"]); ok {
		return content
	}
	if s, ok := rawString(obj["text"]); ok && s != "" {
		return s
	}
	if raw, ok := obj["content"]; ok && !isNull(raw) {
		s, ok := rawString(raw)
		if !ok {
			return string(bytes.TrimSpace(raw))
		}
		if s != "" {
			return s
		}
	}
	return string(trimmed)
}

type outputItem struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// outputMessageText scans output[] from the end for a message item and
// returns its first non-empty output_text part.
func outputMessageText(raw json.RawMessage) string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	for i := len(items) - 1; i >= 0; i-- {
		var item outputItem
		if err := json.Unmarshal(items[i], &item); err != nil || item.Type != "message" {
			continue
		}
		var parts []contentPart
		if err := json.Unmarshal(item.Content, &parts); err != nil {
			continue
		}
		for _, p := range parts {
			if p.Type == "output_text" && p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// choiceContent returns choices[0].message.content. ok is true whenever the
// message exists, even if its content is empty.
func choiceContent(raw json.RawMessage) (string, bool) {
	var choices []struct {
		Message *struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(raw, &choices); err != nil || len(choices) == 0 || choices[0].Message == nil {
		return "", false
	}
	s, _ := rawString(choices[0].Message.Content)
	return s, true
}

// ExtractJSON finds the JSON object in free-form model text. It tries, in
// order: the whole text, the first markdown code fence, the widest
// brace-delimited span, and finally every minimal brace span from last to
// first.
func ExtractJSON(text string) (map[string]json.RawMessage, error) {
	if obj, ok := parseObject(strings.TrimSpace(text)); ok {
		return obj, nil
	}

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if obj, ok := parseObject(m[1]); ok {
			return obj, nil
		}
	}

	span := greedyJSON.FindString(text)
	if span == "" {
		return nil, fmt.Errorf("%w; first 500 chars: %s", ErrNoJSON, preview(text, 500))
	}
	if obj, ok := parseObject(span); ok {
		return obj, nil
	}

	spans := lazyJSON.FindAllString(text, -1)
	for i := len(spans) - 1; i >= 0; i-- {
		if obj, ok := parseObject(spans[i]); ok {
			return obj, nil
		}
	}
	return nil, fmt.Errorf("%w; first 500 chars: %s", ErrMalformedJSON, preview(text, 500))
}

func parseObject(s string) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
