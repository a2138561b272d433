package authz

import (
	"testing"

	"github.com/google/uuid"

	"inkpress/internal/models"
)

func TestCanMutate(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name   string
		caller Caller
		want   bool
	}{
		{"owner member", Caller{ID: owner, Role: models.RoleMember}, true},
		{"other member", Caller{ID: uuid.New(), Role: models.RoleMember}, false},
		{"other admin", Caller{ID: uuid.New(), Role: models.RoleAdmin}, true},
		{"owner admin", Caller{ID: owner, Role: models.RoleAdmin}, true},
		{"zero caller", Caller{}, false},
		{"unknown role", Caller{ID: uuid.New(), Role: "editor"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutate(tt.caller, owner); got != tt.want {
				t.Errorf("CanMutate = %v, want %v", got, tt.want)
			}
		})
	}
}
