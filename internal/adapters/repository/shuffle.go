package repository

import (
	"database/sql/driver"
	"fmt"
	"math"

	sqlite "modernc.org/sqlite"
)

// shuffleKeyFunc orders rows pseudo-randomly but reproducibly for a seed.
const shuffleKeyFunc = "shuffle_key"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(shuffleKeyFunc, 2, shuffleKey); err != nil {
		panic(fmt.Sprintf("registering %s: %v", shuffleKeyFunc, err))
	}
}

// shuffleKey implements shuffle_key(seed REAL, id INTEGER) -> INTEGER.
func shuffleKey(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	var seed float64
	switch v := args[0].(type) {
	case float64:
		seed = v
	case int64:
		seed = float64(v)
	default:
		return nil, fmt.Errorf("%s: seed must be numeric, got %T", shuffleKeyFunc, args[0])
	}
	id, ok := args[1].(int64)
	if !ok {
		return nil, fmt.Errorf("%s: id must be INTEGER, got %T", shuffleKeyFunc, args[1])
	}
	return mixSeed(float32(seed), id), nil
}

// mixSeed is a splitmix64 finalizer over the seed bits and the row id.
// The result is non-negative so it sorts the same as a signed column.
func mixSeed(seed float32, id int64) int64 {
	x := uint64(math.Float32bits(seed))<<32 ^ uint64(id)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x >> 1)
}
