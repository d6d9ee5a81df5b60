package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"buildtrack/internal/apperr"
	"buildtrack/internal/model"
)

func TestAuthorize(t *testing.T) {
	manager := uuid.New()
	client := uuid.New()
	stranger := uuid.New()

	project := &model.Project{
		ID:       uuid.New(),
		ClientID: client,
		Managers: []uuid.UUID{manager},
	}

	tests := []struct {
		name    string
		caller  Caller
		cap     Capability
		allowed bool
	}{
		{"admin reads any project", Caller{ID: stranger, Role: RoleAdmin}, CapabilityRead, true},
		{"admin writes any project", Caller{ID: stranger, Role: RoleAdmin}, CapabilityWrite, true},
		{"assigned manager reads", Caller{ID: manager, Role: RoleManager}, CapabilityRead, true},
		{"assigned manager writes", Caller{ID: manager, Role: RoleManager}, CapabilityWrite, true},
		{"unassigned manager denied", Caller{ID: stranger, Role: RoleManager}, CapabilityRead, false},
		{"owning client reads", Caller{ID: client, Role: RoleClient}, CapabilityRead, true},
		{"owning client cannot write", Caller{ID: client, Role: RoleClient}, CapabilityWrite, false},
		{"other client denied", Caller{ID: stranger, Role: RoleClient}, CapabilityRead, false},
		{"unknown role denied", Caller{ID: manager, Role: "intern"}, CapabilityRead, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(project, tt.caller, tt.cap)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, apperr.AccessDenied, apperr.KindOf(err))
			}
		})
	}
}
