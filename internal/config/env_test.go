package config

import (
	"testing"

	"github.com/gin-gonic/gin"
)

func TestValidateRejectsDefaultSecretInRelease(t *testing.T) {
	env := Env{GinMode: gin.ReleaseMode, JWTSecret: DefaultJWTSecret}
	if err := env.Validate(); err == nil {
		t.Fatalf("expected error for default secret in release mode")
	}
	env.JWTSecret = ""
	if err := env.Validate(); err == nil {
		t.Fatalf("expected error for empty secret in release mode")
	}
}

func TestValidateAllowsDefaultSecretOutsideRelease(t *testing.T) {
	if err := (Env{GinMode: gin.DebugMode, JWTSecret: DefaultJWTSecret}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (Env{GinMode: gin.ReleaseMode, JWTSecret: "a-real-secret"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadEnvJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if got := LoadEnv().JWTSecret; got != DefaultJWTSecret {
		t.Fatalf("JWTSecret = %q, want default", got)
	}
	t.Setenv("JWT_SECRET", "s3cret")
	if got := LoadEnv().JWTSecret; got != "s3cret" {
		t.Fatalf("JWTSecret = %q", got)
	}
}
