package jwtauth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SecurityEvent represents a structured security log entry
type SecurityEvent struct {
	EventType     string        // "success" or "failure"
	Timestamp     time.Time     // Event timestamp
	RequestID     string        // Correlation ID
	UserID        string        // sub or email from claims (empty on failure)
	Algorithm     string        // Algorithm used or attempted
	FailureReason string        // Error code (on failure)
	TokenPreview  string        // Redacted on marshal
	Latency       time.Duration // Validation latency
}

// MarshalLogObject implements zapcore.ObjectMarshaler with token redaction
func (e SecurityEvent) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("event", e.EventType)
	enc.AddTime("timestamp", e.Timestamp)
	enc.AddString("request_id", e.RequestID)
	enc.AddString("user_id", e.UserID)
	enc.AddString("algorithm", e.Algorithm)
	enc.AddString("failure_reason", e.FailureReason)
	enc.AddString("token", redactToken(e.TokenPreview))
	enc.AddDuration("latency", e.Latency)
	return nil
}

// redactToken redacts sensitive token data
func redactToken(token string) string {
	if len(token) == 0 {
		return ""
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:8] + "..."
}

// logSecurityEvent emits a security event via the configured logger
func logSecurityEvent(logger *zap.Logger, event SecurityEvent) {
	if logger == nil {
		return
	}

	if event.EventType == "failure" {
		logger.Warn("authentication failed", zap.Object("auth_event", event))
	} else {
		logger.Info("authentication succeeded", zap.Object("auth_event", event))
	}
}

func logAuthSuccess(cfg *Config, requestID string, claims *Claims, token string, latency time.Duration) {
	userID := claims.Subject
	if userID == "" {
		userID = claims.Email()
	}
	logSecurityEvent(cfg.Logger(), SecurityEvent{
		EventType:    "success",
		Timestamp:    time.Now(),
		RequestID:    requestID,
		UserID:       userID,
		Algorithm:    extractAlgorithmFromToken(token),
		TokenPreview: token,
		Latency:      latency,
	})
}

func logAuthFailure(cfg *Config, requestID string, token string, err error, latency time.Duration) {
	logSecurityEvent(cfg.Logger(), SecurityEvent{
		EventType:     "failure",
		Timestamp:     time.Now(),
		RequestID:     requestID,
		Algorithm:     extractAlgorithmFromToken(token),
		FailureReason: getErrorCode(err),
		TokenPreview:  token,
		Latency:       latency,
	})
}

// extractAlgorithmFromToken extracts the algorithm from a JWT token header.
// Returns "" for an absent token and MALFORMED when the header can't be read.
func extractAlgorithmFromToken(token string) string {
	if token == "" {
		return ""
	}

	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return "MALFORMED"
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "MALFORMED"
	}

	var header map[string]interface{}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return "MALFORMED"
	}

	if alg, ok := header["alg"].(string); ok {
		return alg
	}

	return "MALFORMED"
}
