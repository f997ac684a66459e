package models

import "testing"

func TestRoleRequiresLineOfBusiness(t *testing.T) {
	needs := []Role{RoleTrainer, RoleQualityAnalyst, RoleTrainee}
	for _, r := range needs {
		if !RoleRequiresLineOfBusiness(r) {
			t.Errorf("RoleRequiresLineOfBusiness(%s) = false, want true", r)
		}
	}
	for _, r := range []Role{RoleAdmin, RoleManager} {
		if RoleRequiresLineOfBusiness(r) {
			t.Errorf("RoleRequiresLineOfBusiness(%s) = true, want false", r)
		}
	}
}
