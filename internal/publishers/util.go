package publishers

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"retag/internal/engine"
	"retag/internal/logger"
	"retag/internal/parser"
)

const (
	FieldModifiedLink = "modified_link"
	FieldOriginalName = "original_name"
)

// GenerateSubscriptionPayload renders one line per record. Params:
//
//	field:     modified_link (default) or original_name
//	protocols: optional list of protocol names to keep
//	dedupe:    drop repeated output lines
//	base64:    encode the whole payload as a base64 subscription
func GenerateSubscriptionPayload(records []*parser.Record, config map[string]interface{}) (string, error) {
	field, _ := config["field"].(string)
	if field == "" {
		field = FieldModifiedLink
	}
	if field != FieldModifiedLink && field != FieldOriginalName {
		return "", fmt.Errorf("unknown field %q (expected %s or %s)", field, FieldModifiedLink, FieldOriginalName)
	}

	allowed, err := protocolFilter(config["protocols"])
	if err != nil {
		return "", err
	}

	dedupe, _ := config["dedupe"].(bool)
	seen := make(map[string]struct{}, len(records))
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		if allowed != nil && !allowed[rec.Protocol] {
			continue
		}
		line := rec.ModifiedLink
		if field == FieldOriginalName {
			line = rec.OriginalName
		}
		if dedupe {
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
		}
		lines = append(lines, line)
	}
	logger.Log.Debugf("Payload: %d of %d records selected", len(lines), len(records))

	finalText := strings.Join(lines, "\n")

	useBase64, _ := config["base64"].(bool)
	if useBase64 {
		return base64.StdEncoding.EncodeToString([]byte(finalText)), nil
	}
	return finalText, nil
}

func protocolFilter(raw interface{}) (map[parser.Protocol]bool, error) {
	var names []string
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		names = []string{v}
	case []string:
		names = v
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("protocols must be a list of names")
			}
			names = append(names, s)
		}
	default:
		return nil, fmt.Errorf("protocols must be a list of names")
	}

	allowed := make(map[parser.Protocol]bool, len(names))
	for _, name := range names {
		p := parser.ParseProtocol(name)
		if p == parser.Unknown {
			return nil, fmt.Errorf("unknown protocol %q", name)
		}
		allowed[p] = true
	}
	return allowed, nil
}

// WriteFailures writes one "line<TAB>reason" row per failure.
func WriteFailures(w io.Writer, failures []engine.Failure) error {
	for _, f := range failures {
		line := strings.NewReplacer("\t", " ", "\n", " ").Replace(f.Line)
		if _, err := fmt.Fprintf(w, "%s\t%s\n", line, f.Reason); err != nil {
			return err
		}
	}
	return nil
}
