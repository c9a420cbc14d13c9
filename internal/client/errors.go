package client

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rryowa/candidate_session/internal/models"
)

// ExtractMessage turns an error payload into the message shown to the
// candidate. Probe order:
//
//  1. errors[0] of an object body (string, or object with description/message);
//     an errors object keyed by field uses the first field's first entry
//  2. [0] of an array body
//  3. message
//  4. title
//  5. the whole body when it is a JSON string
//
// Anything else yields fallback.
func ExtractMessage(body []byte, fallback string) string {
	payload, ok := decodePayload(body)
	if !ok {
		return fallback
	}

	switch v := payload.(type) {
	case map[string]interface{}:
		if msg := errorsFieldMessage(v["errors"]); msg != "" {
			return msg
		}
		for _, field := range []string{"message", "title"} {
			if msg := stringField(v, field); msg != "" {
				return msg
			}
		}
	case []interface{}:
		if len(v) > 0 {
			if msg := elementMessage(v[0]); msg != "" {
				return msg
			}
		}
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return fallback
}

// extractCode looks for a machine readable error code such as REAUTH_REQUIRED.
func extractCode(body []byte) string {
	payload, ok := decodePayload(body)
	if !ok {
		return ""
	}

	switch v := payload.(type) {
	case map[string]interface{}:
		for _, field := range []string{"code", "errorCode"} {
			if code := stringField(v, field); code != "" {
				return code
			}
		}
		if list, ok := v["errors"].([]interface{}); ok && len(list) > 0 {
			if obj, ok := list[0].(map[string]interface{}); ok {
				if code := stringField(obj, "code"); code != "" {
					return code
				}
			}
		}
		if stringField(v, "message") == models.ReauthRequiredCode {
			return models.ReauthRequiredCode
		}
	case string:
		if strings.TrimSpace(v) == models.ReauthRequiredCode {
			return models.ReauthRequiredCode
		}
	}
	return ""
}

func decodePayload(body []byte) (interface{}, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, false
	}
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}
	return payload, true
}

func errorsFieldMessage(raw interface{}) string {
	switch v := raw.(type) {
	case []interface{}:
		if len(v) > 0 {
			return elementMessage(v[0])
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if msg := errorsFieldMessage(v[k]); msg != "" {
				return msg
			}
			if msg := elementMessage(v[k]); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func elementMessage(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]interface{}:
		for _, field := range []string{"description", "message"} {
			if msg := stringField(v, field); msg != "" {
				return msg
			}
		}
	}
	return ""
}

func stringField(obj map[string]interface{}, field string) string {
	s, _ := obj[field].(string)
	return strings.TrimSpace(s)
}
