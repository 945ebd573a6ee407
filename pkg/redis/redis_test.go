package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInfo(t *testing.T) {
	info := "# Server\r\nredis_version:7.2.4\r\nos:Linux\r\n\r\n# Clients\r\nconnected_clients:3\r\n# Stats\r\nkeyspace_hits:10\r\n"

	assert.Equal(t, map[string]string{
		"redis_version":     "7.2.4",
		"connected_clients": "3",
		"keyspace_hits":     "10",
	}, parseInfo(info))
}
