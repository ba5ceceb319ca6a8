package validation

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURLValidator(t *testing.T) {
	v := NewBaseURLValidator()

	tests := []struct {
		name     string
		input    string
		expected string
		errMsg   string
	}{
		{name: "empty", input: "  ", errMsg: "URL cannot be empty"},
		{name: "default local backend", input: "http://localhost:8000", expected: "http://localhost:8000"},
		{name: "missing scheme gets http", input: "127.0.0.1:8000", expected: "http://127.0.0.1:8000"},
		{name: "private network host", input: "http://192.168.1.20:8000", expected: "http://192.168.1.20:8000"},
		{name: "https with path", input: "https://news.example.org/backend", expected: "https://news.example.org/backend"},
		{name: "ftp rejected", input: "ftp://news.example.org", errMsg: "http or https"},
		{name: "no host", input: "http://", errMsg: "valid hostname"},
		{name: "angle brackets", input: "http://host/<script>", errMsg: "invalid characters"},
		{name: "unroutable", input: "http://0.0.0.0:8000", errMsg: "unroutable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLinkValidator(t *testing.T) {
	v := NewLinkValidator()

	got, err := v.ValidateAndNormalize("www.reuters.com/world/some-story")
	require.NoError(t, err)
	assert.Equal(t, "https://www.reuters.com/world/some-story", got)

	_, err = v.ValidateAndNormalize("http://localhost/admin")
	assert.ErrorContains(t, err, "localhost")

	_, err = v.ValidateAndNormalize("http://10.1.2.3/")
	assert.ErrorContains(t, err, "private IP")

	_, err = v.ValidateAndNormalize("https://site.org/?next=javascript:alert(1)")
	assert.ErrorContains(t, err, "suspicious")
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip      string
		private bool
	}{
		{"10.0.0.1", true},
		{"172.16.5.4", true},
		{"172.32.0.1", false},
		{"192.168.0.10", true},
		{"127.0.0.1", true},
		{"8.8.8.8", false},
		{"fd12::1", true},
		{"fe80::1", true},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.private, isPrivateIP(net.ParseIP(tt.ip)), tt.ip)
	}
}
