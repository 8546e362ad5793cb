package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func getIntFromRecord(record *neo4j.Record, key string) int {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0
	}
	if i, ok := val.(int64); ok {
		return int(i)
	}
	if i, ok := val.(int); ok {
		return i
	}
	return 0
}

func getFloat64FromRecord(record *neo4j.Record, key string) float64 {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return 0.0
	}
	if f, ok := val.(float64); ok {
		return f
	}
	if i, ok := val.(int64); ok {
		return float64(i)
	}
	return 0.0
}

// floatList converts an embedding to the []any shape the driver expects
// for list parameters
func floatList(vec []float32) []interface{} {
	list := make([]interface{}, len(vec))
	for i, v := range vec {
		list[i] = float64(v)
	}
	return list
}
