// Copyright (c) 2026 Vaultgate. All rights reserved.
// Author: td.nguyen.vn@gmail.com

package requestutil_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	requestutil "github.com/tdnguyen/vaultgate/internal/platform/request"
)

/*
TestBearerToken tests extraction of the bearer value from the
Authorization header.
*/
func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer token", header: "Bearer abc123", want: "abc123"},
		{name: "missing header", header: "", want: ""},
		{name: "wrong scheme", header: "Basic abc123", want: ""},
		{name: "bare value without scheme", header: "abc123", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			assert.Equal(t, tt.want, requestutil.BearerToken(request))
		})
	}
}

/*
TestClientIP tests the proxy-aware client address resolution order:
X-Real-IP, then X-Forwarded-For, then the socket address.
*/
func TestClientIP(t *testing.T) {
	tests := []struct {
		name         string
		realIP       string
		forwardedFor string
		want         string
	}{
		{name: "x-real-ip wins", realIP: "203.0.113.7", forwardedFor: "198.51.100.9", want: "203.0.113.7"},
		{name: "x-forwarded-for fallback", forwardedFor: "198.51.100.9", want: "198.51.100.9"},
		{name: "remote addr fallback", want: "192.0.2.1:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/", nil)
			request.RemoteAddr = "192.0.2.1:1234"
			if tt.realIP != "" {
				request.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwardedFor != "" {
				request.Header.Set("X-Forwarded-For", tt.forwardedFor)
			}

			assert.Equal(t, tt.want, requestutil.ClientIP(request))
		})
	}
}
