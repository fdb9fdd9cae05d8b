package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScopeDeclaration(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		declaration := NewScopeDeclaration("app_a", nil, "", "")

		assert.Equal(t, "app_a", declaration.WriteScope)
		assert.Equal(t, PolicyExplicit, declaration.Policy)
		assert.False(t, declaration.CreatedAt.IsZero())
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		declaration := NewScopeDeclaration("app_a", []string{"app_b"}, "shared", PolicyDenyAll)

		assert.Equal(t, "shared", declaration.WriteScope)
		assert.Equal(t, PolicyDenyAll, declaration.Policy)
	})
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    Policy
		wantErr bool
	}{
		{name: "explicit", value: "explicit", want: PolicyExplicit},
		{name: "deny_all", value: "deny_all", want: PolicyDenyAll},
		{name: "empty defaults to explicit", value: "", want: PolicyExplicit},
		{name: "unknown", value: "allow_some", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := ParsePolicy(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, policy)
		})
	}
}

func TestScopeDeclaration_Validate(t *testing.T) {
	declaration := NewScopeDeclaration("app_a", []string{"app_a", "app_b"}, "", PolicyExplicit)

	t.Run("requested subset is authorized", func(t *testing.T) {
		decision := declaration.Validate([]string{"app_a", "app_b"})

		assert.True(t, decision.Authorized)
		assert.Equal(t, ReasonNone, decision.Reason)
		assert.ElementsMatch(t, []string{"app_a", "app_b"}, decision.ResolvedReadScopes)
	})

	t.Run("scope outside declaration is denied", func(t *testing.T) {
		decision := declaration.Validate([]string{"app_c"})

		assert.False(t, decision.Authorized)
		assert.Equal(t, ReasonScopeNotAuthorized, decision.Reason)
	})

	t.Run("mixed request is denied on exact containment", func(t *testing.T) {
		decision := declaration.Validate([]string{"app_a", "app_c"})

		assert.False(t, decision.Authorized)
		assert.Equal(t, ReasonScopeNotAuthorized, decision.Reason)
	})

	t.Run("nil request defaults to declared scopes plus own partition", func(t *testing.T) {
		decision := declaration.Validate(nil)

		assert.True(t, decision.Authorized)
		assert.ElementsMatch(t, []string{"app_a", "app_b"}, decision.ResolvedReadScopes)
	})

	t.Run("own partition is implied even when not declared", func(t *testing.T) {
		narrow := NewScopeDeclaration("app_a", []string{"app_b"}, "", PolicyExplicit)

		decision := narrow.Validate([]string{"app_a"})
		assert.True(t, decision.Authorized)

		decision = narrow.Validate(nil)
		assert.True(t, decision.Authorized)
		assert.ElementsMatch(t, []string{"app_a", "app_b"}, decision.ResolvedReadScopes)
	})

	t.Run("empty request is valid and resolves to own partition", func(t *testing.T) {
		decision := declaration.Validate([]string{})

		assert.True(t, decision.Authorized)
		assert.Equal(t, []string{"app_a"}, decision.ResolvedReadScopes)
	})

	t.Run("no wildcard matching", func(t *testing.T) {
		decision := declaration.Validate([]string{"app_*"})

		assert.False(t, decision.Authorized)
		assert.Equal(t, ReasonScopeNotAuthorized, decision.Reason)
	})

	t.Run("duplicate requested scopes are deduplicated", func(t *testing.T) {
		decision := declaration.Validate([]string{"app_b", "app_b", "app_a"})

		assert.True(t, decision.Authorized)
		assert.Equal(t, []string{"app_a", "app_b"}, decision.ResolvedReadScopes)
	})
}

func TestScopeDeclaration_Validate_DenyAll(t *testing.T) {
	// deny_all overrides whatever the declaration lists.
	declaration := NewScopeDeclaration("app_a", []string{"app_a", "app_b", "app_c"}, "", PolicyDenyAll)

	t.Run("own partition is authorized", func(t *testing.T) {
		decision := declaration.Validate([]string{"app_a"})

		assert.True(t, decision.Authorized)
		assert.Equal(t, []string{"app_a"}, decision.ResolvedReadScopes)
	})

	t.Run("declared cross-tenant scope is still denied", func(t *testing.T) {
		decision := declaration.Validate([]string{"app_b"})

		assert.False(t, decision.Authorized)
		assert.Equal(t, ReasonDeniedByPolicy, decision.Reason)
	})

	t.Run("nil request resolves to own partition only", func(t *testing.T) {
		decision := declaration.Validate(nil)

		assert.True(t, decision.Authorized)
		assert.Equal(t, []string{"app_a"}, decision.ResolvedReadScopes)
	})

	t.Run("empty request resolves to own partition only", func(t *testing.T) {
		decision := declaration.Validate([]string{})

		assert.True(t, decision.Authorized)
		assert.Equal(t, []string{"app_a"}, decision.ResolvedReadScopes)
	})
}
