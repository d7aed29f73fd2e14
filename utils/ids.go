package utils

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const agentIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateAgentID returns a public agent identifier of the form AGENT-XXXXXX.
func GenerateAgentID() string {
	var b strings.Builder
	b.WriteString("AGENT-")
	max := big.NewInt(int64(len(agentIDAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms; fall back to uuid entropy.
			b.WriteByte(agentIDAlphabet[int(uuid.New()[0])%len(agentIDAlphabet)])
			continue
		}
		b.WriteByte(agentIDAlphabet[n.Int64()])
	}
	return b.String()
}

// NewSocketID returns an opaque id for a websocket connection.
func NewSocketID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// NewRefreshToken returns an opaque 64 hex char token built from two random uuids.
func NewRefreshToken() (string, error) {
	var b strings.Builder
	for i := 0; i < 2; i++ {
		id, err := uuid.NewRandom()
		if err != nil {
			return "", err
		}
		b.WriteString(strings.ReplaceAll(id.String(), "-", ""))
	}
	return b.String(), nil
}
