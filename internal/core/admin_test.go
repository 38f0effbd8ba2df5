package core

import "testing"

func TestAuthorizerVerify(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		token  string
		want   bool
	}{
		{name: "exact match", secret: "s3cret", token: "s3cret", want: true},
		{name: "wrong token", secret: "s3cret", token: "wrong-token", want: false},
		{name: "prefix", secret: "s3cret", token: "s3cre", want: false},
		{name: "case differs", secret: "s3cret", token: "S3CRET", want: false},
		{name: "empty token", secret: "s3cret", token: "", want: false},
		{name: "unconfigured", secret: "", token: "", want: false},
		{name: "unconfigured any token", secret: "", token: "anything", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewAuthorizer(tt.secret).Verify(tt.token); got != tt.want {
				t.Fatalf("Verify(%q) with secret %q = %v, want %v", tt.token, tt.secret, got, tt.want)
			}
		})
	}
}

func TestNilAuthorizerFailsClosed(t *testing.T) {
	var a *Authorizer
	if a.Verify("anything") {
		t.Fatal("nil authorizer must deny")
	}
}
