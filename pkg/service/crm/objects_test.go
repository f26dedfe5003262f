package crm_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/service/crm/crmtest"
)

func TestObjectLifecycle(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	client := newClient(t, srv)
	token, _ := srv.IssueToken()
	ctx := context.Background()

	created, err := client.CreateObject(ctx, token, model.ObjectContacts, map[string]string{
		"email":     "jane@example.com",
		"firstname": "Jane",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, created.ID).NotEqual("")
	gt.Value(t, created.Property("email")).Equal("jane@example.com")

	updated, err := client.UpdateObject(ctx, token, model.ObjectContacts, created.ID, map[string]string{"lastname": "Doe"})
	gt.NoError(t, err).Required()
	gt.Value(t, updated.Property("firstname")).Equal("Jane")
	gt.Value(t, updated.Property("lastname")).Equal("Doe")

	got, err := client.GetObject(ctx, token, model.ObjectContacts, created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Property("lastname")).Equal("Doe")

	found, err := client.SearchObjects(ctx, token, model.ObjectContacts, "email", "jane")
	gt.NoError(t, err).Required()
	gt.Array(t, found).Length(1)

	gt.NoError(t, client.DeleteObject(ctx, token, model.ObjectContacts, created.ID)).Required()
	_, err = client.GetObject(ctx, token, model.ObjectContacts, created.ID)
	gt.Error(t, err).Is(model.ErrRemoteValidation)
}

func TestListObjectsPaging(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	client := newClient(t, srv)
	token, _ := srv.IssueToken()
	ctx := context.Background()

	for range 250 {
		srv.PutObject(model.ObjectDeals, map[string]string{"dealname": "job"})
	}

	t.Run("without limit every page is read", func(t *testing.T) {
		all, err := client.ListObjects(ctx, token, model.ObjectDeals, interfaces.ListOptions{})
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(250)
	})

	t.Run("with limit a single page is read", func(t *testing.T) {
		page, err := client.ListObjects(ctx, token, model.ObjectDeals, interfaces.ListOptions{Limit: 20})
		gt.NoError(t, err).Required()
		gt.Array(t, page).Length(20)
	})
}

func TestAssociationAndNotes(t *testing.T) {
	srv := crmtest.NewServer()
	defer srv.Close()
	client := newClient(t, srv)
	token, _ := srv.IssueToken()
	ctx := context.Background()

	contactID := srv.PutObject(model.ObjectContacts, map[string]string{"email": "a@example.com"})
	dealID := srv.PutObject(model.ObjectDeals, map[string]string{"dealname": "SRE"})

	gt.NoError(t, client.AssociateDealContact(ctx, token, dealID, contactID)).Required()
	assocs := srv.Associations()
	gt.Array(t, assocs).Length(1).Required()
	gt.Value(t, assocs[0]).Equal(crmtest.Association{DealID: dealID, ContactID: contactID})

	gt.NoError(t, client.CreateNote(ctx, token, contactID, "Candidate moved from Screening to Interview")).Required()
	notes := srv.Notes()
	gt.Array(t, notes).Length(1).Required()
	gt.Value(t, notes[0].ContactID).Equal(contactID)
	gt.Value(t, notes[0].Body).Equal("Candidate moved from Screening to Interview")

	t.Run("non numeric contact id is rejected", func(t *testing.T) {
		err := client.CreateNote(ctx, token, "abc", "x")
		gt.Error(t, err).Is(model.ErrRemoteValidation)
	})
}
