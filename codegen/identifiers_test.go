package codegen

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/effectgen/effectgen/validation"
)

func TestPascalCase_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "hyphenated",
			in:       "user-management",
			expected: "UserManagement",
		},
		{
			name:     "already valid",
			in:       "Users",
			expected: "Users",
		},
		{
			name:     "snake case",
			in:       "api_key_settings",
			expected: "ApiKeySettings",
		},
		{
			name:     "interior capitals preserved",
			in:       "userID",
			expected: "UserID",
		},
		{
			name:     "spaces and punctuation",
			in:       "pet store (v2)",
			expected: "PetStoreV2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, PascalCase(context.Background(), tt.in))
		})
	}
}

func TestCamelCase_Success(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "userManagement", CamelCase(context.Background(), "user-management"))
	assert.Equal(t, "default", CamelCase(context.Background(), "default"))
}

func TestSanitization_Warnings(t *testing.T) {
	t.Parallel()

	t.Run("altered name warns with both forms", func(t *testing.T) {
		t.Parallel()

		ctx := validation.ContextWithWarnings(context.Background())
		PascalCase(ctx, "user-management")

		warnings := validation.GetWarnings(ctx)
		require.Len(t, warnings, 1)
		assert.Equal(t, validation.RuleSanitizedIdentifier, warnings[0].Rule)
		assert.Contains(t, warnings[0].Message, "user-management")
		assert.Contains(t, warnings[0].Message, "UserManagement")
	})

	t.Run("already valid name does not warn", func(t *testing.T) {
		t.Parallel()

		ctx := validation.ContextWithWarnings(context.Background())
		PascalCase(ctx, "Users")

		assert.Empty(t, validation.GetWarnings(ctx))
	})
}

func TestOutputIdentifiers_Naming(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	assert.Equal(t, "UserSchema", SchemaIdentifier(ctx, "User"))
	assert.Equal(t, "userManagementGroup", GroupIdentifier(ctx, "user-management"))
	assert.Equal(t, "getUser_idParam", ParamIdentifier(ctx, "getUser", "id"))
	assert.Equal(t, "GetUser_idParam", ParamIdentifier(ctx, "GetUser", "id"))
}

func TestOperationIdentifier_KeepsValidIdsVerbatim(t *testing.T) {
	t.Parallel()

	ctx := validation.ContextWithWarnings(context.Background())

	assert.Equal(t, "getPost", OperationIdentifier(ctx, "getPost"))
	assert.Equal(t, "GetPost", OperationIdentifier(ctx, "GetPost"))
	assert.Empty(t, validation.GetWarnings(ctx), "valid ids bind verbatim without warnings")

	assert.Equal(t, "getPost", OperationIdentifier(ctx, "get-post"))

	warnings := validation.GetWarnings(ctx)
	require.Len(t, warnings, 1)
	assert.Equal(t, validation.RuleSanitizedIdentifier, warnings[0].Rule)
}

func TestIdentifiers_ConcurrentUse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var wg sync.WaitGroup
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "UserManagementSchema", SchemaIdentifier(ctx, "user-management"))
			assert.Equal(t, "userManagementGroup", GroupIdentifier(ctx, "user-management"))
		}()
	}
	wg.Wait()
}

func TestPropertyKey_QuotesNonIdentifiers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "id", propertyKey("id"))
	assert.Equal(t, `"X-Request-Id"`, propertyKey("X-Request-Id"))
}
