package access

import (
	"context"
	"errors"
	"testing"

	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
)

func TestDecide_PhotoVisibilityScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.photo.IsVisibleToCustomer = false
	d := f.decide(t, f.customer, ActionViewPhoto, ForMedia(f.photo))
	if d.Allowed || d.Reason != ReasonNotVisibleToCustomer {
		t.Fatalf("hidden photo: got %+v, want deny %s", d, ReasonNotVisibleToCustomer)
	}

	if err := f.store.Media().SetVisibility(ctx, models.MediaKindPhoto, f.photo.ID, true); err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}
	res, err := f.resolver.Resolve(ctx, Ref{Kind: KindPhoto, ID: f.photo.ID, ObjectID: f.object.ID})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d := f.decide(t, f.customer, ActionViewPhoto, res); !d.Allowed {
		t.Fatalf("visible photo: got %+v, want allow", d)
	}
}

func TestDecide_UnassignedDesignerDeniedRegardlessOfVisibility(t *testing.T) {
	f := newFixture(t)

	for _, visible := range []bool{true, false} {
		f.photo.IsVisibleToCustomer = visible
		d := f.decide(t, f.designer, ActionViewPhoto, ForMedia(f.photo))
		if d.Allowed || d.Reason != ReasonNotAssigned {
			t.Errorf("visible=%v: got %+v, want deny %s", visible, d, ReasonNotAssigned)
		}
	}
}

func TestDecide_AssignedStaffBypassVisibility(t *testing.T) {
	f := newFixture(t)
	f.assign(t, f.designer)
	f.photo.IsVisibleToCustomer = false

	bim := &models.BimModel{ID: "bim-1", ObjectID: f.object.ID, ObjectOwnerID: f.customer.ID}
	video := &models.MediaFile{ID: "video-1", Kind: models.MediaKindVideo, ObjectID: f.object.ID, ObjectOwnerID: f.customer.ID}

	tests := []struct {
		action Action
		res    *Resource
	}{
		{ActionViewPhoto, ForMedia(f.photo)},
		{ActionViewVideo, ForMedia(video)},
		{ActionViewBimModel, ForBimModel(bim)},
	}
	for _, p := range []*models.Principal{f.designer, f.builder, f.admin} {
		for _, tt := range tests {
			if d := f.decide(t, p, tt.action, tt.res); !d.Allowed {
				t.Errorf("%s %s: got %+v, want allow", p.Role, tt.action, d)
			}
		}
	}
}

func TestDecide_OtherCustomerDeniedEvenWhenVisible(t *testing.T) {
	f := newFixture(t)
	f.photo.IsVisibleToCustomer = true

	for _, action := range []Action{ActionViewPhoto, ActionViewVideo, ActionViewBimModel} {
		d := f.decide(t, f.otherCustomer, action, ForMedia(f.photo))
		if d.Allowed || d.Reason != ReasonNotOwner {
			t.Errorf("%s: got %+v, want deny %s", action, d, ReasonNotOwner)
		}
	}
}

func TestDecide_StructuralDenyBeatsOwnership(t *testing.T) {
	f := newFixture(t)
	f.assign(t, f.designer)
	table, _ := NewCapabilityTable()

	res := ForMedia(f.photo)
	principals := []*models.Principal{f.customer, f.otherCustomer, f.designer, f.builder, f.admin}
	for action := range knownActions {
		for _, p := range principals {
			if table.Permitted(p.Role, action) {
				continue
			}
			d := f.decide(t, p, action, res)
			if d.Allowed || d.Reason != ReasonRoleNotPermitted {
				t.Errorf("%s %s: got %+v, want deny %s", p.Role, action, d, ReasonRoleNotPermitted)
			}
		}
	}
}

func TestDecide_CommentDeletion(t *testing.T) {
	f := newFixture(t)
	comment := &models.Comment{
		ID:            "comment-3",
		ParentKind:    models.CommentParentPhoto,
		ParentID:      f.photo.ID,
		AuthorUserID:  f.customer.ID,
		ObjectID:      f.object.ID,
		ObjectOwnerID: f.customer.ID,
	}
	res := ForComment(comment)

	tests := []struct {
		name   string
		p      *models.Principal
		allow  bool
		reason Reason
	}{
		{"admin deletes any comment", f.admin, true, ReasonNone},
		{"author deletes own comment", f.customer, true, ReasonNone},
		{"other customer is not the author", f.otherCustomer, false, ReasonNotAuthor},
		{"assigned builder is not the author", f.builder, false, ReasonNotAuthor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.decide(t, tt.p, ActionDeleteComment, res)
			if d.Allowed != tt.allow || d.Reason != tt.reason {
				t.Errorf("got %+v, want allowed=%v reason=%q", d, tt.allow, tt.reason)
			}
		})
	}
}

func TestDecide_AuthorLosesAccessWithAssignment(t *testing.T) {
	f := newFixture(t)
	comment := &models.Comment{ID: "c", AuthorUserID: f.designer.ID, ObjectID: f.object.ID, ObjectOwnerID: f.customer.ID}

	d := f.decide(t, f.designer, ActionDeleteComment, ForComment(comment))
	if d.Allowed || d.Reason != ReasonNotAssigned {
		t.Errorf("got %+v, want deny %s", d, ReasonNotAssigned)
	}
}

func TestDecide_HiddenCommentVisibleToItsCustomerAuthor(t *testing.T) {
	f := newFixture(t)
	own := &models.Comment{ID: "own", AuthorUserID: f.customer.ID, ObjectID: f.object.ID, ObjectOwnerID: f.customer.ID}
	staff := &models.Comment{ID: "staff", AuthorUserID: f.builder.ID, ObjectID: f.object.ID, ObjectOwnerID: f.customer.ID}

	if d := f.decide(t, f.customer, ActionViewComment, ForComment(own)); !d.Allowed {
		t.Errorf("own hidden comment: got %+v, want allow", d)
	}
	if d := f.decide(t, f.customer, ActionViewComment, ForComment(staff)); d.Reason != ReasonNotVisibleToCustomer {
		t.Errorf("staff hidden comment: got %+v, want deny %s", d, ReasonNotVisibleToCustomer)
	}
}

func TestDecide_CustomerMutationsIgnoreVisibility(t *testing.T) {
	f := newFixture(t)
	f.photo.IsVisibleToCustomer = false

	if d := f.decide(t, f.customer, ActionUploadPhoto, ForObject(f.object)); !d.Allowed {
		t.Errorf("upload to own object: got %+v, want allow", d)
	}
	if d := f.decide(t, f.otherCustomer, ActionUploadPhoto, ForObject(f.object)); d.Reason != ReasonNotOwner {
		t.Errorf("upload to foreign object: got %+v, want deny %s", d, ReasonNotOwner)
	}
}

func TestDecide_GlobalResources(t *testing.T) {
	f := newFixture(t)
	item := &models.DownloadableItem{ID: "item-1", UploaderUserID: f.designer.ID}
	otherDesigner := principal("user-99", models.RoleDesigner)

	tests := []struct {
		name   string
		p      *models.Principal
		action Action
		res    *Resource
		allow  bool
		reason Reason
	}{
		{"customer views item", f.customer, ActionViewItem, ForItem(item), true, ReasonNone},
		{"builder downloads item", f.builder, ActionDownloadItem, ForItem(item), true, ReasonNone},
		{"designer creates item", f.designer, ActionCreateItem, Catalog(KindItem), true, ReasonNone},
		{"uploader manages item", f.designer, ActionManageItem, ForItem(item), true, ReasonNone},
		{"other designer manages item", otherDesigner, ActionManageItem, ForItem(item), false, ReasonNotAuthor},
		{"customer creates item", f.customer, ActionCreateItem, Catalog(KindItem), false, ReasonRoleNotPermitted},
		{"builder manages users", f.builder, ActionManageUsers, ForUser("x"), false, ReasonRoleNotPermitted},
		{"customer creates own object", f.customer, ActionCreateObject, NewObject(f.customer.ID), true, ReasonNone},
		{"customer creates object for another", f.customer, ActionCreateObject, NewObject(f.otherCustomer.ID), false, ReasonNotOwner},
		{"admin creates object for customer", f.admin, ActionCreateObject, NewObject(f.customer.ID), true, ReasonNone},
		{"designer creates object", f.designer, ActionCreateObject, NewObject(f.designer.ID), false, ReasonRoleNotPermitted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.decide(t, tt.p, tt.action, tt.res)
			if d.Allowed != tt.allow || d.Reason != tt.reason {
				t.Errorf("got %+v, want allowed=%v reason=%q", d, tt.allow, tt.reason)
			}
		})
	}
}

func TestDecide_FailsClosed(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		p    *models.Principal
		res  *Resource
	}{
		{"nil resource", f.customer, nil},
		{"unknown kind", f.customer, &Resource{Kind: "blueprint", ID: "x", ObjectID: f.object.ID, OwnerUserID: f.customer.ID}},
		{"broken chain", f.builder, &Resource{Kind: KindPhoto, ID: "x"}},
		{"owner missing", f.customer, &Resource{Kind: KindPhoto, ID: "x", ObjectID: f.object.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := f.decide(t, tt.p, ActionViewPhoto, tt.res)
			if d.Allowed {
				t.Errorf("got allow, want deny")
			}
		})
	}
}

func TestDecide_UnauthenticatedPrincipals(t *testing.T) {
	f := newFixture(t)
	suspended := principal("user-5", models.RoleCustomer)
	suspended.Status = models.UserStatusSuspended

	for _, p := range []*models.Principal{nil, suspended} {
		_, err := f.engine.Decide(context.Background(), p, ActionViewPhoto, ForMedia(f.photo))
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("Decide(%v) error = %v, want ErrUnauthorized", p, err)
		}
	}
}

func TestDecide_StoreFailureIsNotADeny(t *testing.T) {
	f := newFixture(t)
	f.store.FailWith(errors.New("connection reset"))

	_, err := f.engine.Decide(context.Background(), f.builder, ActionViewPhoto, ForMedia(f.photo))
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}

	err = f.engine.Authorize(context.Background(), f.builder, ActionViewPhoto, ForMedia(f.photo))
	if errors.Is(err, domain.ErrForbidden) {
		t.Fatal("store failure must not surface as forbidden")
	}
}

func TestAuthorize_CarriesReason(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Authorize(context.Background(), f.designer, ActionViewPhoto, ForMedia(f.photo))
	var forbidden *domain.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("error = %v, want *domain.ForbiddenError", err)
	}
	if forbidden.Reason != string(ReasonNotAssigned) {
		t.Errorf("Reason = %q, want %q", forbidden.Reason, ReasonNotAssigned)
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Error("ForbiddenError must match domain.ErrForbidden")
	}
}

func TestDecide_AssignmentRevocationTakesEffectImmediately(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if d := f.decide(t, f.builder, ActionUploadPhoto, ForObject(f.object)); !d.Allowed {
		t.Fatalf("assigned builder: got %+v, want allow", d)
	}
	if err := f.store.Assignments().Delete(ctx, f.builder.ID, f.object.ID); err != nil {
		t.Fatalf("Delete assignment: %v", err)
	}
	if d := f.decide(t, f.builder, ActionUploadPhoto, ForObject(f.object)); d.Reason != ReasonNotAssigned {
		t.Fatalf("unassigned builder: got %+v, want deny %s", d, ReasonNotAssigned)
	}
}

func TestFilter(t *testing.T) {
	f := newFixture(t)
	files := []models.MediaFile{
		{ID: "a", Kind: models.MediaKindPhoto, ObjectID: f.object.ID, ObjectOwnerID: f.customer.ID, IsVisibleToCustomer: true},
		{ID: "b", Kind: models.MediaKindPhoto, ObjectID: f.object.ID, ObjectOwnerID: f.customer.ID, IsVisibleToCustomer: false},
		{ID: "c", Kind: models.MediaKindPhoto, ObjectID: f.object.ID, ObjectOwnerID: f.customer.ID, IsVisibleToCustomer: true},
	}

	got, err := Filter(context.Background(), f.engine, f.customer, ActionViewPhoto, files, ForMedia)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Filter() = %v, want [a c]", ids(got))
	}

	got, err = Filter(context.Background(), f.engine, f.builder, ActionViewPhoto, files, ForMedia)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("builder Filter() = %v, want all three", ids(got))
	}
}

func ids(files []models.MediaFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.ID
	}
	return out
}
