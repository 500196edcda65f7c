package constants

import "time"

var APIConfig = struct {
	DirectoryBaseURL string
	DirectoryTimeout time.Duration
	UserAgent        string
}{
	DirectoryBaseURL: "https://randomuser.me/api/",
	DirectoryTimeout: 10 * time.Second,
	UserAgent:        "randomuser-swipe-go/1.0",
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 0,                // 0 = off, explicit retry always reaches the directory
	ResetTimeout:     30 * time.Second, // wait before a probe request once enabled
}

var CacheKeys = struct {
	LastProfile string
}{
	LastProfile: "randomuser:last_profile",
}

var StoreConfig = struct {
	OperationTimeout time.Duration
	PostgresTable    string
}{
	OperationTimeout: 3 * time.Second,
	PostgresTable:    "profile_cache",
}

var GestureConfig = struct {
	CardWidth         float64
	ThresholdFraction float64
	ExitOvershoot     float64
	ExitDuration      time.Duration
	SettleDuration    time.Duration
}{
	CardWidth:         360,
	ThresholdFraction: 0.25,                   // a quarter of the card width
	ExitOvershoot:     1.2,                    // exit target, in card widths
	ExitDuration:      250 * time.Millisecond, // 200ms ease-in plus a short tail
	SettleDuration:    300 * time.Millisecond,
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
	HandshakeTimeout:     10 * time.Second,
}

var StringLimits = struct {
	CardLine int
}{
	CardLine: 60,
}
