package auth

import (
	"context"
	"testing"
)

func TestPrincipalContext(t *testing.T) {
	t.Parallel()

	if got := PrincipalFromContext(context.Background()); got != "" {
		t.Errorf("empty context principal = %q, want empty", got)
	}

	ctx := ContextWithPrincipal(context.Background(), "u1")
	if got := PrincipalFromContext(ctx); got != "u1" {
		t.Errorf("principal = %q, want u1", got)
	}
}
