package config

import (
	"io"
	"time"
)

// Config defines the typed lookups the application performs on its
// configuration source.
type Config interface {
	io.Closer

	// GetBool retrieves the value associated with key as a bool.
	GetBool(key string) bool

	// GetString retrieves the value associated with key as a string.
	GetString(key string) string

	// GetInt retrieves the value associated with key as an int.
	GetInt(key string) int

	// GetUint retrieves the value associated with key as a uint.
	GetUint(key string) uint

	// GetFloat64 retrieves the value associated with key as a float64.
	GetFloat64(key string) float64

	// GetSecond retrieves the value associated with key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetArray retrieves the value associated with key as a list of strings.
	// Values are stored either as a list or as "<element1>,<element2>,...";
	// elements are trimmed and empty ones dropped.
	GetArray(key string) []string

	// GetMap retrieves the value associated with key as a string map.
	// Values are stored either as a map or as "<key1>:<value1>,<key2>:<value2>,...".
	GetMap(key string) map[string]string
}
