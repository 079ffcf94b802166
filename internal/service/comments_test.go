package service

import (
	"context"
	"testing"

	"buildportal/internal/access"
	"buildportal/internal/domain"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/services"
)

func TestComments_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photo := f.uploadPhoto(t, f.builder)

	create := func(p *models.Principal, body string) (*models.Comment, error) {
		return f.comments.CreateComment(ctx, p, &services.CreateCommentRequest{
			ObjectID:   f.object.ID,
			ParentKind: models.CommentParentPhoto,
			ParentID:   photo.ID,
			Body:       body,
		})
	}

	byBuilder, err := create(f.builder, "poured today")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	byCustomer, err := create(f.customer, "looks good")
	if err != nil {
		t.Fatalf("CreateComment(customer) error = %v", err)
	}

	_, err = create(f.outsider, "hi")
	wantReason(t, err, access.ReasonNotAssigned)
	_, err = create(f.builder, "   ")
	wantErr(t, err, domain.ErrValidation)

	// the builder hides their own comment; the customer stops seeing it
	if _, err := f.comments.SetVisibility(ctx, f.builder, byBuilder.ID, false); err != nil {
		t.Fatalf("SetVisibility() error = %v", err)
	}
	// the customer hides their own comment and still sees it
	if _, err := f.comments.SetVisibility(ctx, f.customer, byCustomer.ID, false); err != nil {
		t.Fatalf("SetVisibility(customer) error = %v", err)
	}

	list, err := f.comments.ListComments(ctx, f.customer, f.object.ID, models.CommentParentPhoto, photo.ID)
	if err != nil {
		t.Fatalf("ListComments(customer) error = %v", err)
	}
	if len(list) != 1 || list[0].ID != byCustomer.ID {
		t.Errorf("customer sees %+v", list)
	}

	list, err = f.comments.ListComments(ctx, f.designer, f.object.ID, models.CommentParentPhoto, photo.ID)
	if err != nil || len(list) != 2 {
		t.Errorf("ListComments(designer) = %d, %v", len(list), err)
	}

	_, err = f.comments.SetVisibility(ctx, f.designer, byBuilder.ID, true)
	wantReason(t, err, access.ReasonNotAuthor)
	err = f.comments.DeleteComment(ctx, f.customer, byBuilder.ID)
	wantReason(t, err, access.ReasonNotAuthor)

	if err := f.comments.DeleteComment(ctx, f.admin, byBuilder.ID); err != nil {
		t.Fatalf("DeleteComment(admin) error = %v", err)
	}
	err = f.comments.DeleteComment(ctx, f.builder, byBuilder.ID)
	wantErr(t, err, domain.ErrNotFound)
}

func TestComments_HiddenParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	photo := f.uploadPhoto(t, f.builder)
	if _, err := f.media.SetVisibility(ctx, f.admin, models.MediaKindPhoto, f.object.ID, photo.ID, false); err != nil {
		t.Fatal(err)
	}

	_, err := f.comments.ListComments(ctx, f.customer, f.object.ID, models.CommentParentPhoto, photo.ID)
	wantReason(t, err, access.ReasonNotVisibleToCustomer)

	_, err = f.comments.CreateComment(ctx, f.customer, &services.CreateCommentRequest{
		ObjectID:   f.object.ID,
		ParentKind: models.CommentParentPhoto,
		ParentID:   photo.ID,
		Body:       "what is this?",
	})
	wantReason(t, err, access.ReasonNotVisibleToCustomer)
}

func TestComments_OnBimModel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	model := f.uploadModel(t, f.designer)

	c, err := f.comments.CreateComment(ctx, f.customer, &services.CreateCommentRequest{
		ObjectID:   f.object.ID,
		ParentKind: models.CommentParentBimModel,
		ParentID:   model.ID,
		Body:       "bigger windows please",
	})
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if c.ObjectID != f.object.ID {
		t.Errorf("ObjectID = %q", c.ObjectID)
	}

	_, err = f.comments.ListComments(ctx, f.customer, "object-other", models.CommentParentBimModel, model.ID)
	wantErr(t, err, domain.ErrNotFound)
	_, err = f.comments.ListComments(ctx, f.customer, f.object.ID, models.CommentParentKind("video"), model.ID)
	wantErr(t, err, domain.ErrValidation)
}
