package access

import "testing"

func TestCapabilities(t *testing.T) {
	tests := []struct {
		name       string
		caps       Capabilities
		canCreate  bool
		editOwn    bool
		editOther  bool
		canViewAll bool
		catalog    bool
	}{
		{"admin", For(RoleAdmin, ""), true, true, true, true, true},
		{"global viewer", For(RoleGlobalViewer, "site-1"), false, false, false, true, false},
		{"site leader", For(RoleSiteLeader, "site-1"), true, true, false, false, false},
		{"site leader without site", For(RoleSiteLeader, ""), false, false, false, false, false},
		{"no role", For(RoleNone, "site-1"), false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.caps.CanCreate(); got != tt.canCreate {
				t.Errorf("CanCreate = %v, want %v", got, tt.canCreate)
			}
			if got := tt.caps.CanEdit("site-1"); got != tt.editOwn {
				t.Errorf("CanEdit(own) = %v, want %v", got, tt.editOwn)
			}
			if got := tt.caps.CanEdit("site-2"); got != tt.editOther {
				t.Errorf("CanEdit(other) = %v, want %v", got, tt.editOther)
			}
			if got := tt.caps.CanViewAll(); got != tt.canViewAll {
				t.Errorf("CanViewAll = %v, want %v", got, tt.canViewAll)
			}
			if got := tt.caps.CanManageCatalog(); got != tt.catalog {
				t.Errorf("CanManageCatalog = %v, want %v", got, tt.catalog)
			}
		})
	}
}

func TestFor_DropsSiteForNonLeaders(t *testing.T) {
	if c := For(RoleGlobalViewer, "site-1"); c.SiteID != "" {
		t.Errorf("expected site to be dropped, got %q", c.SiteID)
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole("campus_leader") != RoleSiteLeader {
		t.Error("expected campus_leader to map to RoleSiteLeader")
	}
	if ParseRole("superuser") != RoleNone {
		t.Error("expected unknown role to map to RoleNone")
	}
}

func TestCheckEdit(t *testing.T) {
	if err := For(RoleAdmin, "").CheckEdit("x").Error(); err != nil {
		t.Errorf("expected admin to pass, got %v", err)
	}
	if err := For(RoleNone, "").CheckEdit("x").Error(); err == nil {
		t.Error("expected error for user without role")
	}
	if err := For(RoleSiteLeader, "a").CheckEdit("b").Error(); err == nil {
		t.Error("expected error for foreign site")
	}
}
