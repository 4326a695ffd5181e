package main

import (
	"encoding/json"
	"fmt"

	"github.com/Jeanclaudech98/Sol-txns-exporter/service/ledger"
	"github.com/itchyny/gojq"
)

// compileFilters parses and compiles --must-jq expressions.
func compileFilters(filters []string) ([]*gojq.Code, error) {
	codes := make([]*gojq.Code, len(filters))
	for i, filter := range filters {
		query, err := gojq.Parse(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
		}
		codes[i], err = gojq.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
		}
	}
	return codes, nil
}

// filterRecords keeps the records whose JSON form makes every filter truthy.
func filterRecords(records []ledger.Record, codes []*gojq.Code) ([]ledger.Record, error) {
	if len(codes) == 0 {
		return records, nil
	}

	kept := make([]ledger.Record, 0, len(records))
	for _, r := range records {
		doc, err := recordDocument(r)
		if err != nil {
			return nil, err
		}
		if matchesAll(doc, codes) {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// recordDocument converts r to the generic form gojq runs on.
func recordDocument(r ledger.Record) (interface{}, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record %s: %w", r.TransactionHash, err)
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", r.TransactionHash, err)
	}
	return doc, nil
}

func matchesAll(doc interface{}, codes []*gojq.Code) bool {
	for _, code := range codes {
		iter := code.Run(doc)
		v, ok := iter.Next()
		if !ok {
			// No result means filter failed
			return false
		}
		if _, isErr := v.(error); isErr {
			return false
		}
		if !isTruthy(v) {
			return false
		}
	}
	return true
}

// isTruthy follows jq: only null and false are falsy.
func isTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}
